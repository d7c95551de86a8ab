// Package display owns the e-ink panel: it turns invalidation requests into
// power-gated redraw cycles.
package display

import (
	"image"
	"image/color"
	"sync"

	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"

	"badgecode-go/services/display/render"
	"badgecode-go/types"
)

// Panel is the display driver as the controller sees it. SetPixel draws into
// the driver's buffer, Display is the full commit and DisplayRect the partial
// one. Every call may touch the shared rail.
type Panel interface {
	drivers.Displayer
	Enable() error
	Disable() error
	Reset() error
	Configure(w types.Waveform) error
	DisplayRect(r image.Rectangle) error
	DeepSleep() error
}

// Commit records one panel update.
type Commit struct {
	Rect     image.Rectangle
	Waveform types.Waveform
	Full     bool
}

// FramePanel is a Panel backed by an in-memory 1-bit framebuffer. It backs
// the simulator, the Pi HAT adapter and the tests.
type FramePanel struct {
	mu sync.Mutex
	fb *image1bit.VerticalLSB

	enabled  bool
	asleep   bool
	waveform types.Waveform
	commits  []Commit
	resets   int

	// Committed is the framebuffer as last pushed to the glass.
	Committed *image1bit.VerticalLSB

	// FailCommit, when set, is returned by Display and DisplayRect.
	FailCommit error
	// OnCommit, when set, is called with the committed rectangle.
	OnCommit func(fb *image1bit.VerticalLSB, c Commit) error
}

func NewFramePanel(w, h int) *FramePanel {
	r := image.Rect(0, 0, w, h)
	p := &FramePanel{fb: image1bit.NewVerticalLSB(r), Committed: image1bit.NewVerticalLSB(r)}
	render.Fill(p, r, render.Paper)
	return p
}

func (p *FramePanel) Size() (int16, int16) {
	b := p.fb.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (p *FramePanel) SetPixel(x, y int16, c color.RGBA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !image.Pt(int(x), int(y)).In(p.fb.Bounds()) {
		return
	}
	p.fb.SetBit(int(x), int(y), image1bit.Bit(!render.IsInk(c)))
}

func (p *FramePanel) Enable() error {
	p.mu.Lock()
	p.enabled, p.asleep = true, false
	p.mu.Unlock()
	return nil
}

func (p *FramePanel) Disable() error {
	p.mu.Lock()
	p.enabled = false
	p.mu.Unlock()
	return nil
}

func (p *FramePanel) Reset() error {
	p.mu.Lock()
	p.resets++
	p.mu.Unlock()
	return nil
}

func (p *FramePanel) Configure(w types.Waveform) error {
	p.mu.Lock()
	p.waveform = w
	p.mu.Unlock()
	return nil
}

func (p *FramePanel) Display() error {
	return p.commit(p.fb.Bounds(), true)
}

func (p *FramePanel) DisplayRect(r image.Rectangle) error {
	return p.commit(r.Intersect(p.fb.Bounds()), false)
}

func (p *FramePanel) commit(r image.Rectangle, full bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailCommit != nil {
		return p.FailCommit
	}
	c := Commit{Rect: r, Waveform: p.waveform, Full: full}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p.Committed.SetBit(x, y, p.fb.BitAt(x, y))
		}
	}
	p.commits = append(p.commits, c)
	if p.OnCommit != nil {
		return p.OnCommit(p.Committed, c)
	}
	return nil
}

func (p *FramePanel) DeepSleep() error {
	p.mu.Lock()
	p.asleep, p.enabled = true, false
	p.mu.Unlock()
	return nil
}

// Commits returns a copy of the commit log.
func (p *FramePanel) Commits() []Commit {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Commit(nil), p.commits...)
}

// Asleep reports whether DeepSleep was the last power transition.
func (p *FramePanel) Asleep() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asleep
}

// Resets counts Reset calls.
func (p *FramePanel) Resets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resets
}

// Snapshot copies the working framebuffer.
func (p *FramePanel) Snapshot() *image1bit.VerticalLSB {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := image1bit.NewVerticalLSB(p.fb.Bounds())
	copy(out.Pix, p.fb.Pix)
	return out
}

func rectWH(w, h int) image.Rectangle { return image.Rect(0, 0, w, h) }
