package storage

import (
	"errors"
	"os"
	"sync"
)

// MemRegion is an in-memory Region that behaves like erased NOR flash.
type MemRegion struct {
	mu   sync.Mutex
	data []byte

	// Fault hooks for tests.
	FailErase error
	FailWrite error
}

func NewMemRegion(size int) *MemRegion {
	r := &MemRegion{data: make([]byte, size)}
	for i := range r.data {
		r.data[i] = 0xFF
	}
	return r
}

func (r *MemRegion) Size() int { return len(r.data) }

func (r *MemRegion) Erase() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailErase != nil {
		return r.FailErase
	}
	for i := range r.data {
		r.data[i] = 0xFF
	}
	return nil
}

// Write programs from offset zero. Like NOR flash it can only clear bits.
func (r *MemRegion) Write(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWrite != nil {
		return r.FailWrite
	}
	if len(p) > len(r.data) {
		return errors.New("mem region: write past end")
	}
	for i, b := range p {
		r.data[i] &= b
	}
	return nil
}

func (r *MemRegion) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copy(p, r.data), nil
}

// FileRegion stores the region in a regular file (Linux builds).
type FileRegion struct {
	Path string
	Len  int
}

func (f FileRegion) Size() int { return f.Len }

func (f FileRegion) Erase() error {
	blank := make([]byte, f.Len)
	for i := range blank {
		blank[i] = 0xFF
	}
	return os.WriteFile(f.Path, blank, 0o600)
}

func (f FileRegion) Write(p []byte) error {
	if len(p) > f.Len {
		return errors.New("file region: write past end")
	}
	fh, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	if _, err := fh.WriteAt(p, 0); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

func (f FileRegion) Read(p []byte) (int, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return copy(p, b), nil
}
