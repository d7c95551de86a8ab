// Package render draws the badge widgets onto any drivers.Displayer.
package render

import (
	"image"

	"badgecode-go/types"
)

const (
	headerHeight = 24
	clockWidth   = 88
	imageWidth   = 136
)

// Layout fixes each widget's rectangle. Widgets never draw outside their own.
type Layout struct {
	Bounds image.Rectangle
	Header image.Rectangle // full-width top strip, clock included
	Clock  image.Rectangle
	Name   image.Rectangle
	Image  image.Rectangle
	Body   image.Rectangle // Name and Image together; network list view
}

// NewLayout places the widgets on a landscape panel of the given bounds.
// For the 296x128 badge panel the header is (0,0)-(296,24), the clock
// (208,0)-(296,24), the name block (0,24)-(160,128) and the image
// (160,24)-(296,128).
func NewLayout(b image.Rectangle) Layout {
	l := Layout{Bounds: b}
	l.Header = image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+headerHeight).Intersect(b)
	l.Clock = image.Rect(b.Max.X-clockWidth, b.Min.Y, b.Max.X, b.Min.Y+headerHeight).Intersect(b)
	l.Body = image.Rect(b.Min.X, l.Header.Max.Y, b.Max.X, b.Max.Y)
	split := b.Max.X - imageWidth
	if split < b.Min.X {
		split = b.Min.X
	}
	l.Name = image.Rect(b.Min.X, l.Body.Min.Y, split, b.Max.Y)
	l.Image = image.Rect(split, l.Body.Min.Y, b.Max.X, b.Max.Y)
	return l
}

// Default is the Badger 2040 layout.
func Default() Layout { return NewLayout(image.Rect(0, 0, 296, 128)) }

// RectFor returns the region a request repaints.
func (l Layout) RectFor(s types.Screen, m types.Mode) image.Rectangle {
	switch s {
	case types.ScreenTopBar:
		return l.Header
	case types.ScreenTime:
		return l.Clock
	case types.ScreenImage:
		if m == types.ModeNetworks {
			return l.Body
		}
		return l.Image
	case types.ScreenFull:
		return l.Bounds
	default:
		return image.Rectangle{}
	}
}
