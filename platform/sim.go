//go:build !(badger2040 || badger2040_w)

package platform

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"badgecode-go/services/buttons"
)

// SimRTC keeps time as an offset from the host clock. It starts stopped,
// like a chip that has just lost its backup supply.
type SimRTC struct {
	mu      sync.Mutex
	offset  time.Duration
	stopped bool
	alarm   time.Time
	armed   bool
	now     func() time.Time
}

func NewSimRTC() *SimRTC { return &SimRTC{stopped: true, now: time.Now} }

func (r *SimRTC) ReadTime() (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Add(r.offset).UTC().Truncate(time.Second), nil
}

func (r *SimRTC) SetTime(t time.Time) error {
	r.mu.Lock()
	r.offset = t.Sub(r.now())
	r.mu.Unlock()
	return nil
}

func (r *SimRTC) SetAlarm(t time.Time) error {
	r.mu.Lock()
	r.alarm, r.armed = t, true
	r.mu.Unlock()
	return nil
}

func (r *SimRTC) ClearAlarm() error {
	r.mu.Lock()
	r.armed = false
	r.mu.Unlock()
	return nil
}

func (r *SimRTC) AlarmFired() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed && !r.now().Add(r.offset).Before(r.alarm), nil
}

func (r *SimRTC) OscillatorStopped() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped, nil
}

func (r *SimRTC) ClearOscillatorStopped() error {
	r.mu.Lock()
	r.stopped = false
	r.mu.Unlock()
	return nil
}

// Alarm returns the armed alarm time, if any.
func (r *SimRTC) Alarm() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alarm, r.armed
}

var errSensorAsleep = errors.New("sim: sensor asleep")

// SimSensor drifts gently around 21 °C / 40 %RH and enforces the
// wake/read/sleep sequence of the real part.
type SimSensor struct {
	mu    sync.Mutex
	awake bool
	n     int
}

func (s *SimSensor) WakeUp() error {
	s.mu.Lock()
	s.awake = true
	s.mu.Unlock()
	return nil
}

func (s *SimSensor) Sleep() error {
	s.mu.Lock()
	s.awake = false
	s.mu.Unlock()
	return nil
}

func (s *SimSensor) ReadTemperatureHumidity() (int32, int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.awake {
		return 0, 0, errSensorAsleep
	}
	s.n++
	d := math.Sin(float64(s.n) / 10)
	return 21_000 + int32(d*500), 4_000 + int16(d*300), nil
}

// SimPin is an active-high input whose level the simulator drives.
type SimPin struct {
	mu    sync.Mutex
	level bool
	h     func()
}

func (p *SimPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *SimPin) SetIRQ(_ buttons.Edge, h func()) error {
	p.mu.Lock()
	p.h = h
	p.mu.Unlock()
	return nil
}

func (p *SimPin) ClearIRQ() error {
	p.mu.Lock()
	p.h = nil
	p.mu.Unlock()
	return nil
}

// Set drives the level and fires the handler on a change.
func (p *SimPin) Set(v bool) {
	p.mu.Lock()
	changed := p.level != v
	p.level = v
	h := p.h
	p.mu.Unlock()
	if changed && h != nil {
		h()
	}
}

// Press holds the pin high for d.
func (p *SimPin) Press(ctx context.Context, d time.Duration) {
	p.Set(true)
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
	p.Set(false)
}

// SimOutput counts transitions on a digital output (latch or LED).
type SimOutput struct {
	on    atomic.Bool
	highs atomic.Uint32
}

func (o *SimOutput) High() {
	o.on.Store(true)
	o.highs.Add(1)
}

func (o *SimOutput) Low()          { o.on.Store(false) }
func (o *SimOutput) On() bool      { return o.on.Load() }
func (o *SimOutput) Highs() uint32 { return o.highs.Load() }
