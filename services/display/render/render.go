package render

import (
	"image"
	"image/color"
	"time"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"

	"badgecode-go/types"
)

var (
	Ink   = color.RGBA{0, 0, 0, 255}
	Paper = color.RGBA{255, 255, 255, 255}
)

// Model is a copy of everything a redraw reads from shared state.
type Model struct {
	Name    string
	Details string

	Now     time.Time
	HasTime bool

	Weather    types.Weather
	HasWeather bool

	Climate    types.Climate
	HasClimate bool

	Seen     uint16
	Mode     types.Mode
	Networks []string

	Image *image1bit.VerticalLSB
}

type Renderer struct {
	L Layout

	small tinyfont.Fonter
	large tinyfont.Fonter
}

func New(l Layout) *Renderer {
	return &Renderer{L: l, small: &proggy.TinySZ8pt7b, large: &freemono.Bold9pt7b}
}

// Draw paints the widgets covered by s and returns the rectangle touched.
// Shutdown and None draw nothing.
func (r *Renderer) Draw(d drivers.Displayer, s types.Screen, m Model) image.Rectangle {
	switch s {
	case types.ScreenFull:
		r.header(d, m)
		r.body(d, m)
	case types.ScreenTopBar:
		r.header(d, m)
	case types.ScreenTime:
		r.clock(d, m)
	case types.ScreenImage:
		if m.Mode == types.ModeNetworks {
			r.networks(d, m)
		} else {
			r.image(d, m)
		}
	default:
		return image.Rectangle{}
	}
	return r.L.RectFor(s, m.Mode)
}

func (r *Renderer) header(d drivers.Displayer, m Model) {
	c := Clip(d, r.L.Header)
	Fill(c, r.L.Header, Ink)
	text := Clip(d, image.Rect(r.L.Header.Min.X, r.L.Header.Min.Y, r.L.Clock.Min.X, r.L.Header.Max.Y))
	tinyfont.WriteLine(text, r.small, int16(r.L.Header.Min.X+4), int16(r.L.Header.Min.Y+15), HeaderText(m), Paper)
	r.clock(d, m)
}

func (r *Renderer) clock(d drivers.Displayer, m Model) {
	c := Clip(d, r.L.Clock)
	Fill(c, r.L.Clock, Ink)
	s := ClockText(m)
	_, w := tinyfont.LineWidth(r.small, s)
	x := r.L.Clock.Min.X + (r.L.Clock.Dx()-int(w))/2
	tinyfont.WriteLine(c, r.small, int16(x), int16(r.L.Clock.Min.Y+15), s, Paper)
}

func (r *Renderer) body(d drivers.Displayer, m Model) {
	if m.Mode == types.ModeNetworks {
		r.networks(d, m)
		return
	}
	r.name(d, m)
	r.image(d, m)
}

func (r *Renderer) name(d drivers.Displayer, m Model) {
	c := Clip(d, r.L.Name)
	Fill(c, r.L.Name, Paper)
	x := int16(r.L.Name.Min.X + 6)
	tinyfont.WriteLine(c, r.large, x, int16(r.L.Name.Min.Y+30), m.Name, Ink)
	tinyfont.WriteLine(c, r.small, x, int16(r.L.Name.Min.Y+56), m.Details, Ink)
}

// image clears the whole area before blitting so a smaller picture does not
// leave parts of the previous one behind.
func (r *Renderer) image(d drivers.Displayer, m Model) {
	c := Clip(d, r.L.Image)
	Fill(c, r.L.Image, Paper)
	if m.Image == nil {
		return
	}
	ib := m.Image.Bounds()
	off := image.Pt(
		r.L.Image.Min.X+(r.L.Image.Dx()-ib.Dx())/2,
		r.L.Image.Min.Y+(r.L.Image.Dy()-ib.Dy())/2,
	)
	Blit(c, m.Image, off)
}

func (r *Renderer) networks(d drivers.Displayer, m Model) {
	c := Clip(d, r.L.Body)
	Fill(c, r.L.Body, Paper)
	x := int16(r.L.Body.Min.X + 4)
	y := r.L.Body.Min.Y + 12
	if len(m.Networks) == 0 {
		tinyfont.WriteLine(c, r.small, x, int16(y), "no networks seen", Ink)
		return
	}
	const lineHeight = 11
	for _, ssid := range m.Networks {
		if y > r.L.Body.Max.Y {
			break
		}
		tinyfont.WriteLine(c, r.small, x, int16(y), ssid, Ink)
		y += lineHeight
	}
}
