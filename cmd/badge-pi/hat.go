//go:build linux && !(badger2040 || badger2040_w)

package main

import (
	"errors"
	"image"
	"image/color"
	"reflect"
	"unsafe"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"

	"badgecode-go/services/display"
)

// hatPanel renders into a landscape framebuffer and pushes each commit to
// the portrait-mounted HAT.
type hatPanel struct {
	*display.FramePanel
	dev *waveshare2in13v4.Dev
}

func newHatPanel(dev *waveshare2in13v4.Dev) *hatPanel {
	b := dev.Bounds()
	// The HAT reports portrait bounds; the badge draws landscape.
	p := &hatPanel{FramePanel: display.NewFramePanel(b.Dy(), b.Dx()), dev: dev}
	p.OnCommit = p.push
	return p
}

// Reset re-initialises the controller, which also wakes it from sleep.
func (p *hatPanel) Reset() error {
	if err := p.FramePanel.Reset(); err != nil {
		return err
	}
	if err := p.dev.Init(); err != nil {
		return err
	}
	_ = setDisplayMode(p.dev, false)
	return p.dev.Clear(color.White)
}

func (p *hatPanel) DeepSleep() error {
	if err := p.FramePanel.DeepSleep(); err != nil {
		return err
	}
	return p.dev.Sleep()
}

func (p *hatPanel) push(fb *image1bit.VerticalLSB, c display.Commit) error {
	portrait := landscapeToPortrait(fb)
	r := p.dev.Bounds()
	if !c.Full {
		r = alignRectForEPD(portraitRect(c.Rect, fb.Bounds().Dy()), r)
	}
	if err := setDisplayMode(p.dev, !c.Full); err != nil {
		return err
	}
	return p.dev.Draw(r, portrait, r.Min)
}

// landscapeToPortrait rotates a W x H frame to H x W, clockwise.
func landscapeToPortrait(src *image1bit.VerticalLSB) *image1bit.VerticalLSB {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image1bit.NewVerticalLSB(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			dst.SetBit(x, y, src.BitAt(y, h-1-x))
		}
	}
	return dst
}

// portraitRect maps a landscape rectangle through landscapeToPortrait.
func portraitRect(r image.Rectangle, h int) image.Rectangle {
	return image.Rect(h-r.Max.Y, r.Min.X, h-r.Min.Y, r.Max.X)
}

func alignRectForEPD(r, bounds image.Rectangle) image.Rectangle {
	if r.Empty() {
		return r
	}
	x0 := r.Min.X &^ 7
	x1 := (r.Max.X + 7) &^ 7
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	if x1 > bounds.Max.X {
		x1 = bounds.Max.X
	}
	if x1 <= x0 {
		return bounds
	}
	return image.Rect(x0, r.Min.Y, x1, r.Max.Y).Intersect(bounds)
}

// setDisplayMode flips the driver's unexported refresh mode; the package
// only selects it at construction.
func setDisplayMode(dev *waveshare2in13v4.Dev, partial bool) error {
	v := reflect.ValueOf(dev).Elem().FieldByName("mode")
	if !v.IsValid() || !v.CanAddr() {
		return errors.New("display mode field unavailable")
	}
	ptr := reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
	if partial {
		ptr.Set(reflect.ValueOf(waveshare2in13v4.Partial))
	} else {
		ptr.Set(reflect.ValueOf(waveshare2in13v4.Full))
	}
	return nil
}
