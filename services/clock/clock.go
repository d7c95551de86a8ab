// Package clock keeps the shared clock in step with the real-time clock chip
// and schedules the wake alarm.
package clock

import (
	"context"
	"log/slog"
	"time"

	"badgecode-go/bus"
	"badgecode-go/errcode"
	"badgecode-go/services/power"
	"badgecode-go/services/signal"
	"badgecode-go/services/state"
	"badgecode-go/types"
	"badgecode-go/x/logx"
	"badgecode-go/x/timex"
)

var topicStateClock = bus.T("state", "clock")

// RTC is the subset of the clock chip the badge uses. Calls touch the shared
// rail and must run under the power arbiter.
type RTC interface {
	ReadTime() (time.Time, error)
	SetTime(t time.Time) error
	SetAlarm(t time.Time) error
	ClearAlarm() error
	AlarmFired() (bool, error)
	OscillatorStopped() (bool, error)
	ClearOscillatorStopped() error
}

type Service struct {
	rtc    RTC
	arb    *power.Arbiter
	clk    *state.Clock
	screen *signal.Signal[types.Screen]
	conn   *bus.Connection
	log    *slog.Logger

	// until is the wait before the next read; tests shorten it.
	until func(now time.Time, known bool) time.Duration
}

// New wires the clock service. conn may be nil.
func New(rtc RTC, arb *power.Arbiter, clk *state.Clock, screen *signal.Signal[types.Screen], conn *bus.Connection, log *slog.Logger) *Service {
	return &Service{
		rtc: rtc, arb: arb, clk: clk, screen: screen, conn: conn, log: logx.Or(log),
		until: timex.UntilMinuteTick,
	}
}

// CheckTrust reads the oscillator-stopped flag once. A stopped oscillator
// means the chip lost power and its time cannot be used until the network
// sets it again.
func (s *Service) CheckTrust(ctx context.Context) (bool, error) {
	var stopped bool
	err := s.arb.Do(ctx, "clock", func(context.Context) error {
		var err error
		stopped, err = s.rtc.OscillatorStopped()
		return err
	})
	if err != nil {
		s.log.Warn("clock: oscillator flag read failed", "err", err)
		s.clk.SetTrusted(false)
		return false, errcode.Wrap(errcode.Of(err), "clock.trust", err)
	}
	s.clk.SetTrusted(!stopped)
	if stopped {
		s.log.Warn("clock: oscillator stopped, time untrusted")
	}
	return !stopped, nil
}

// Read refreshes the shared clock from the chip. An untrusted chip leaves the
// shared clock untouched and reports errcode.Stale.
func (s *Service) Read(ctx context.Context) (time.Time, error) {
	if !s.clk.Trusted() {
		return time.Time{}, errcode.New(errcode.Stale, "clock.read", "rtc untrusted")
	}
	var now time.Time
	err := s.arb.Do(ctx, "clock", func(context.Context) error {
		var err error
		now, err = s.rtc.ReadTime()
		return err
	})
	if err != nil {
		s.log.Warn("clock: read failed", "err", err)
		return time.Time{}, errcode.Wrap(errcode.Error, "clock.read", err)
	}
	s.clk.Set(now)
	s.publish(now)
	return now, nil
}

// SetFromNetwork writes a network time into the chip and the shared clock.
// The caller already holds the rail.
func (s *Service) SetFromNetwork(t time.Time) error {
	if err := s.rtc.SetTime(t); err != nil {
		s.log.Warn("clock: rtc write failed", "err", err)
		// Keep the in-memory time; the chip is retried on the next sync.
		s.clk.Set(t)
		return errcode.Wrap(errcode.Error, "clock.set", err)
	}
	if err := s.rtc.ClearOscillatorStopped(); err != nil {
		s.log.Warn("clock: oscillator flag clear failed", "err", err)
	}
	s.clk.Set(t)
	s.clk.SetTrusted(true)
	s.publish(t)
	s.log.Info("clock: set from network", "time", t.Format(time.DateTime))
	return nil
}

// ArmAlarm schedules the next wake `after` from the chip's own notion of now.
// The chip's counter is used even when untrusted: the alarm only has to fire
// relative to it.
func (s *Service) ArmAlarm(ctx context.Context, after time.Duration) (time.Time, error) {
	var at time.Time
	err := s.arb.Do(ctx, "clock", func(context.Context) error {
		now, err := s.rtc.ReadTime()
		if err != nil {
			return err
		}
		at = now.Add(after).Truncate(time.Second)
		return s.rtc.SetAlarm(at)
	})
	if err != nil {
		s.log.Warn("clock: alarm arm failed", "err", err)
		return time.Time{}, errcode.Wrap(errcode.Error, "clock.alarm", err)
	}
	s.log.Info("clock: alarm armed", "at", at.Format(time.DateTime))
	return at, nil
}

// TakeAlarm reports whether the alarm caused this wake and disarms it.
func (s *Service) TakeAlarm(ctx context.Context) (bool, error) {
	var fired bool
	err := s.arb.Do(ctx, "clock", func(context.Context) error {
		var err error
		if fired, err = s.rtc.AlarmFired(); err != nil {
			return err
		}
		return s.rtc.ClearAlarm()
	})
	return fired, err
}

// Run reads the chip just after each minute boundary and asks for a Time
// redraw. The boot read only refreshes the shared clock: the first Time post
// waits for the next minute so it cannot displace the boot Full on the
// screen signal. It returns when ctx ends.
func (s *Service) Run(ctx context.Context) {
	now, err := s.Read(ctx)
	for {
		if !timex.Sleep(ctx.Done(), s.until(now, err == nil)) {
			s.log.Info("clock: stopping")
			return
		}
		if now, err = s.Read(ctx); err == nil {
			s.screen.Post(types.ScreenTime)
		}
	}
}

func (s *Service) publish(t time.Time) {
	if s.conn == nil {
		return
	}
	s.conn.Publish(s.conn.NewMessage(topicStateClock, types.ClockValue{Unix: t.Unix(), Trusted: s.clk.Trusted()}, true))
}
