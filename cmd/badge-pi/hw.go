//go:build linux && !(badger2040 || badger2040_w)

package main

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"badgecode-go/services/buttons"
	"badgecode-go/types"
)

// systemRTC uses the host clock, which NTP keeps trusted. Network time only
// updates the badge's in-memory clock.
type systemRTC struct {
	mu    sync.Mutex
	alarm time.Time
	armed bool
}

func (r *systemRTC) ReadTime() (time.Time, error) {
	return time.Now().Truncate(time.Second), nil
}

func (r *systemRTC) SetTime(time.Time) error          { return nil }
func (r *systemRTC) OscillatorStopped() (bool, error) { return false, nil }
func (r *systemRTC) ClearOscillatorStopped() error    { return nil }

func (r *systemRTC) SetAlarm(t time.Time) error {
	r.mu.Lock()
	r.alarm, r.armed = t, true
	r.mu.Unlock()
	return nil
}

func (r *systemRTC) ClearAlarm() error {
	r.mu.Lock()
	r.armed = false
	r.mu.Unlock()
	return nil
}

func (r *systemRTC) AlarmFired() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed && !time.Now().Before(r.alarm), nil
}

// gpioButton adapts a periph pin to buttons.IRQPin. periph reports edges
// through a blocking wait, so a goroutine stands in for the interrupt.
type gpioButton struct {
	p    gpio.PinIO
	stop chan struct{}
}

func (b *gpioButton) Get() bool { return b.p.Read() == gpio.High }

func (b *gpioButton) SetIRQ(_ buttons.Edge, h func()) error {
	if err := b.p.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return err
	}
	stop := make(chan struct{})
	b.stop = stop
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if b.p.WaitForEdge(200 * time.Millisecond) {
				h()
			}
		}
	}()
	return nil
}

func (b *gpioButton) ClearIRQ() error {
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	return b.p.In(gpio.PullDown, gpio.NoEdge)
}

// openButtons looks up the BCM pins named in the config. Unknown names are
// skipped.
func openButtons(names map[string]string) map[types.Button]buttons.IRQPin {
	ids := map[string]types.Button{
		"a":    types.ButtonA,
		"b":    types.ButtonB,
		"c":    types.ButtonC,
		"up":   types.ButtonUp,
		"down": types.ButtonDown,
	}
	pins := make(map[types.Button]buttons.IRQPin, len(names))
	for k, name := range names {
		id, ok := ids[k]
		if !ok {
			continue
		}
		if p := gpioreg.ByName(name); p != nil {
			pins[id] = &gpioButton{p: p}
		}
	}
	return pins
}
