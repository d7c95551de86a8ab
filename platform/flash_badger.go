//go:build badger2040 || badger2040_w

package platform

import "machine"

// flashRegion is the last erase block of the data area after the firmware
// image.
type flashRegion struct {
	block int64
	size  int64
}

func newFlashRegion() *flashRegion {
	eb := machine.Flash.EraseBlockSize()
	n := machine.Flash.Size() / eb
	return &flashRegion{block: n - 1, size: eb}
}

func (r *flashRegion) off() int64 { return r.block * r.size }
func (r *flashRegion) Size() int  { return int(r.size) }

func (r *flashRegion) Erase() error {
	return machine.Flash.EraseBlocks(r.block, 1)
}

func (r *flashRegion) Write(p []byte) error {
	_, err := machine.Flash.WriteAt(p, r.off())
	return err
}

func (r *flashRegion) Read(p []byte) (int, error) {
	if len(p) > int(r.size) {
		p = p[:r.size]
	}
	return machine.Flash.ReadAt(p, r.off())
}
