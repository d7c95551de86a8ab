//go:build badger2040 || badger2040_w

package platform

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/uc8151"

	"badgecode-go/types"
)

// uc8151Panel adapts the UC8151 driver to display.Panel. The panel is
// mounted landscape (Rotation270).
type uc8151Panel struct {
	dev   uc8151.Device
	speed uc8151.Speed
	ready bool
}

func newUC8151Panel(dev uc8151.Device) *uc8151Panel {
	return &uc8151Panel{dev: dev, speed: uc8151.MEDIUM}
}

func speedFor(w types.Waveform) uc8151.Speed {
	if w == types.WaveformFast {
		return uc8151.TURBO
	}
	return uc8151.MEDIUM
}

func (p *uc8151Panel) Size() (int16, int16)              { return p.dev.Size() }
func (p *uc8151Panel) SetPixel(x, y int16, c color.RGBA) { p.dev.SetPixel(x, y, c) }
func (p *uc8151Panel) Display() error                    { return p.dev.Display() }

func (p *uc8151Panel) Enable() error {
	p.dev.WaitUntilIdle()
	return nil
}

func (p *uc8151Panel) Disable() error {
	p.dev.PowerOff()
	return nil
}

// configure resets the controller as a side effect.
func (p *uc8151Panel) configure(s uc8151.Speed) { p.dev.Configure(p.config(s)) }

func (p *uc8151Panel) config(s uc8151.Speed) uc8151.Config {
	return uc8151.Config{
		Rotation:    drivers.Rotation270,
		Speed:       s,
		Blocking:    true,
		FlickerFree: true,
	}
}

// Reset pulses the reset line and reloads the registers.
func (p *uc8151Panel) Reset() error {
	p.configure(p.speed)
	p.ready = true
	return nil
}

// Configure switches the LUT. The driver only changes speed through a full
// reconfigure, which clears its buffer, so it is skipped when unchanged.
func (p *uc8151Panel) Configure(w types.Waveform) error {
	s := speedFor(w)
	if p.ready && s == p.speed {
		return nil
	}
	p.speed = s
	p.configure(s)
	p.ready = true
	return nil
}

// DisplayRect pushes a landscape rectangle. The driver takes the top-left
// corner in rotated coordinates but the span in native ones, and does not
// adjust for Rotation270, so the native corner is passed directly.
func (p *uc8151Panel) DisplayRect(r image.Rectangle) error {
	if r.Empty() {
		return nil
	}
	return p.dev.DisplayRect(int16(r.Max.X-1), int16(r.Min.Y), int16(r.Dy()), int16(r.Dx()))
}

// DeepSleep powers off and sends DSLP with its check code.
func (p *uc8151Panel) DeepSleep() error {
	p.dev.PowerOff()
	p.dev.SendCommand(uc8151.DSLP)
	p.dev.SendData(0xA5)
	p.ready = false
	return nil
}
