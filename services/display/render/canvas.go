package render

import (
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
)

type clipped struct {
	d drivers.Displayer
	r image.Rectangle
}

// Clip returns a Displayer that drops pixels outside r.
func Clip(d drivers.Displayer, r image.Rectangle) drivers.Displayer {
	return &clipped{d: d, r: r}
}

func (c *clipped) Size() (int16, int16) { return c.d.Size() }
func (c *clipped) Display() error       { return c.d.Display() }

func (c *clipped) SetPixel(x, y int16, col color.RGBA) {
	if !image.Pt(int(x), int(y)).In(c.r) {
		return
	}
	c.d.SetPixel(x, y, col)
}

// Fill paints r with col.
func Fill(d drivers.Displayer, r image.Rectangle, col color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			d.SetPixel(int16(x), int16(y), col)
		}
	}
}

// Blit copies a 1-bit image with its origin at off. Off bits are ink.
func Blit(d drivers.Displayer, img *image1bit.VerticalLSB, off image.Point) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			col := Paper
			if img.BitAt(x, y) == image1bit.Off {
				col = Ink
			}
			d.SetPixel(int16(off.X+x-b.Min.X), int16(off.Y+y-b.Min.Y), col)
		}
	}
}

// IsInk reports whether a colour counts as ink on a monochrome panel.
func IsInk(c color.RGBA) bool {
	return int(c.R)+int(c.G)+int(c.B) < 3*128
}
