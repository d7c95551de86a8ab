// Package indicator drives the activity LED from blink requests on the bus.
package indicator

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"badgecode-go/bus"
	"badgecode-go/types"
	"badgecode-go/x/logx"
	"badgecode-go/x/timex"
)

var TopicBlink = bus.T("indicator", "blink")

// DefaultPeriod is one on/off pulse.
const DefaultPeriod = 200 * time.Millisecond

// maxCount bounds a single request so a bad payload cannot pin the LED.
const maxCount = 16

// LED matches machine.Pin's output methods.
type LED interface {
	High()
	Low()
}

type Service struct {
	led    LED
	period time.Duration
	log    *slog.Logger

	pulses atomic.Int32
}

func New(led LED, period time.Duration, log *slog.Logger) *Service {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Service{led: led, period: period, log: logx.Or(log)}
}

// Pulses is the total number of completed flashes.
func (s *Service) Pulses() int { return int(s.pulses.Load()) }

// Blink flashes n times. It returns false if ctx ends first; the LED is left
// off either way.
func (s *Service) Blink(ctx context.Context, n int) bool {
	defer s.led.Low()
	half := s.period / 2
	for i := 0; i < n; i++ {
		s.led.High()
		if !timex.Sleep(ctx.Done(), half) {
			return false
		}
		s.led.Low()
		if !timex.Sleep(ctx.Done(), half) {
			return false
		}
		s.pulses.Add(1)
	}
	return true
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(TopicBlink)
	defer conn.Unsubscribe(sub)

	s.led.Low()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			b, ok := msg.Payload.(types.Blink)
			if !ok || b.Count <= 0 {
				continue
			}
			if b.Count > maxCount {
				s.log.Debug("indicator: clamping blink", "count", b.Count)
				b.Count = maxCount
			}
			if !s.Blink(ctx, b.Count) {
				return
			}
		}
	}
}

// Start runs the blink loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}
