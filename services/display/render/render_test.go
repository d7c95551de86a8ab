package render

import (
	"image"
	"image/color"
	"testing"
	"time"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"badgecode-go/types"
)

func TestTwelveHour(t *testing.T) {
	ts, err := time.Parse("2006-01-02T15:04:05", "2026-03-01T13:05:09.123")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		in   time.Time
		want string
	}{
		{ts, "01:05 PM"},
		{time.Date(2026, 1, 1, 0, 7, 0, 0, time.UTC), "12:07 AM"},
		{time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "12:00 PM"},
		{time.Date(2026, 1, 1, 9, 30, 59, 0, time.UTC), "09:30 AM"},
	}
	for _, c := range cases {
		if got := TwelveHour(c.in); got != c.want {
			t.Errorf("TwelveHour(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWeatherDescription(t *testing.T) {
	cases := map[uint8]string{
		0: "Clear", 1: "Mainly Clear", 2: "Part Cloudy", 3: "Cloudy",
		45: "Fog", 48: "Fog", 53: "Drizzle", 57: "Frizzle",
		61: "Light Rain", 63: "Rain", 65: "Heavy Rain", 66: "Frzing Rain",
		71: "Light Snow", 73: "Snow", 75: "Heavy Snow", 77: "Snow Grains",
		81: "Rain Showers", 86: "Snow Showers", 95: "Thunderstorm",
		96: "Hailstorm", 99: "Hailstorm",
		40: "Unknown", 4: "Unknown", 255: "Unknown",
	}
	for code, want := range cases {
		if got := WeatherDescription(code); got != want {
			t.Errorf("WeatherDescription(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestHeaderText(t *testing.T) {
	m := Model{
		HasClimate: true,
		Climate:    types.Climate{DeciC: 214, RHx100: 4012},
		Seen:       3,
		HasWeather: true,
		Weather:    types.Weather{DeciC: 125, Code: 3},
	}
	if got, want := HeaderText(m), "21C 40% W:3 | 12.5C Cloudy"; got != want {
		t.Fatalf("HeaderText = %q, want %q", got, want)
	}
	m.Weather.DeciC = -35
	m.HasClimate = false
	if got, want := HeaderText(m), "--C --% W:3 | -3.5C Cloudy"; got != want {
		t.Fatalf("HeaderText = %q, want %q", got, want)
	}
	if got := ClockText(Model{}); got != "--:--" {
		t.Fatalf("ClockText = %q", got)
	}
}

func TestDefaultLayout(t *testing.T) {
	l := Default()
	want := map[string]image.Rectangle{
		"header": image.Rect(0, 0, 296, 24),
		"clock":  image.Rect(208, 0, 296, 24),
		"name":   image.Rect(0, 24, 160, 128),
		"image":  image.Rect(160, 24, 296, 128),
	}
	got := map[string]image.Rectangle{"header": l.Header, "clock": l.Clock, "name": l.Name, "image": l.Image}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %v, want %v", k, got[k], w)
		}
	}
	if l.RectFor(types.ScreenImage, types.ModeNetworks) != l.Body {
		t.Error("network mode image request should cover the body")
	}
	if !l.RectFor(types.ScreenShutdown, types.ModeBadge).Empty() {
		t.Error("shutdown has no rectangle")
	}
}

// grid is a minimal Displayer recording writes.
type grid struct {
	w, h    int
	px      map[image.Point]bool
	touched image.Rectangle
}

func newGrid(w, h int) *grid { return &grid{w: w, h: h, px: map[image.Point]bool{}} }

func (g *grid) Size() (int16, int16) { return int16(g.w), int16(g.h) }
func (g *grid) Display() error       { return nil }
func (g *grid) SetPixel(x, y int16, c color.RGBA) {
	p := image.Pt(int(x), int(y))
	g.px[p] = IsInk(c)
	g.touched = g.touched.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
}

func TestPartialDrawsStayInsideRect(t *testing.T) {
	r := New(Default())
	m := Model{Name: "Badger", Details: "hello", HasTime: true, Now: time.Date(2026, 3, 1, 13, 5, 0, 0, time.UTC)}
	m.Image = image1bit.NewVerticalLSB(image.Rect(0, 0, 200, 200)) // larger than the area: clipped

	for _, s := range []types.Screen{types.ScreenTopBar, types.ScreenTime, types.ScreenImage} {
		g := newGrid(296, 128)
		rect := r.Draw(g, s, m)
		if rect != r.L.RectFor(s, types.ModeBadge) {
			t.Fatalf("%v: returned %v", s, rect)
		}
		if !g.touched.In(rect) {
			t.Errorf("%v: touched %v outside %v", s, g.touched, rect)
		}
	}

	g := newGrid(296, 128)
	if rect := r.Draw(g, types.ScreenFull, m); rect != r.L.Bounds {
		t.Fatalf("full returned %v", rect)
	}
	if g.touched != r.L.Bounds {
		t.Fatalf("full touched %v", g.touched)
	}
}

func TestImageAreaClearedBeforeBlit(t *testing.T) {
	r := New(Default())
	g := newGrid(296, 128)
	Fill(g, r.L.Image, Ink) // previous, larger picture

	small := image1bit.NewVerticalLSB(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			small.SetBit(x, y, image1bit.On)
		}
	}
	r.Draw(g, types.ScreenImage, Model{Image: small})
	for p, ink := range g.px {
		if p.In(r.L.Image) && ink {
			t.Fatalf("ink left at %v", p)
		}
	}
}

func TestClipDropsOutside(t *testing.T) {
	g := newGrid(10, 10)
	c := Clip(g, image.Rect(2, 2, 4, 4))
	Fill(c, image.Rect(0, 0, 10, 10), Ink)
	if len(g.px) != 4 {
		t.Fatalf("wrote %d pixels, want 4", len(g.px))
	}
}
