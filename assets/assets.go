// Package assets embeds the rotating badge images.
package assets

import (
	"bytes"
	"embed"
	"image"
	"image/draw"
	"io/fs"
	"path"
	"sort"
	"sync"

	"golang.org/x/image/bmp"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

//go:embed images/*.bmp
var files embed.FS

var (
	once   sync.Once
	images []*image1bit.VerticalLSB
	names  []string
	decErr error
)

// Images decodes every embedded BMP once, in file-name order.
func Images() ([]*image1bit.VerticalLSB, error) {
	once.Do(func() { images, names, decErr = decodeDir(files, "images") })
	return images, decErr
}

// Names lists the decoded image files, index-aligned with Images.
func Names() []string {
	_, _ = Images()
	return names
}

func decodeDir(fsys fs.FS, dir string) ([]*image1bit.VerticalLSB, []string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []*image1bit.VerticalLSB
	var ns []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".bmp" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, nil, err
		}
		img, err := Decode(raw)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, img)
		ns = append(ns, e.Name())
	}
	return out, ns, nil
}

// Decode converts a BMP into a 1-bit image; light pixels become On (paper).
func Decode(raw []byte) (*image1bit.VerticalLSB, error) {
	src, err := bmp.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	dst := image1bit.NewVerticalLSB(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}
