// Package climate samples the onboard temperature/humidity sensor.
package climate

import (
	"context"
	"log/slog"
	"time"

	"badgecode-go/errcode"
	"badgecode-go/services/power"
	"badgecode-go/services/state"
	"badgecode-go/types"
	"badgecode-go/x/logx"
	"badgecode-go/x/mathx"
)

// Sensor matches tinygo.org/x/drivers/shtc3.Device: temperature in milli-°C,
// humidity in hundredths of %RH.
type Sensor interface {
	WakeUp() error
	ReadTemperatureHumidity() (int32, int16, error)
	Sleep() error
}

type Sampler struct {
	sensor Sensor
	arb    *power.Arbiter
	out    *state.Climate
	every  time.Duration
	log    *slog.Logger
	now    func() time.Time
}

func New(sensor Sensor, arb *power.Arbiter, out *state.Climate, every time.Duration, log *slog.Logger) *Sampler {
	if every <= 0 {
		every = 30 * time.Second
	}
	return &Sampler{sensor: sensor, arb: arb, out: out, every: every, log: logx.Or(log), now: time.Now}
}

// Sample performs one wake/read/sleep cycle under the rail, waiting for it
// if another task holds it.
func (s *Sampler) Sample(ctx context.Context) error { return s.sample(ctx, s.arb.Do) }

// TrySample is Sample without waiting. A held rail returns errcode.Busy and
// the previous reading stands.
func (s *Sampler) TrySample(ctx context.Context) error {
	err := s.sample(ctx, s.arb.TryDo)
	if errcode.Of(err) == errcode.Busy {
		s.log.Debug("climate: rail busy, tick skipped")
	}
	return err
}

type railFunc func(ctx context.Context, who string, fn func(context.Context) error) error

func (s *Sampler) sample(ctx context.Context, rail railFunc) error {
	var (
		tmc int32
		rh  int16
	)
	err := rail(ctx, "climate", func(context.Context) error {
		if err := s.sensor.WakeUp(); err != nil {
			return err
		}
		defer func() { _ = s.sensor.Sleep() }()
		var err error
		tmc, rh, err = s.sensor.ReadTemperatureHumidity()
		return err
	})
	if err != nil {
		if errcode.Of(err) != errcode.Busy {
			s.log.Warn("climate: read failed", "err", err)
		}
		return err
	}
	s.out.Set(types.Climate{
		DeciC:  int16(mathx.Clamp(mathx.RoundDiv(tmc, 100), -32768, 32767)),
		RHx100: uint16(mathx.Clamp(rh, 0, 10000)),
		TS:     s.now().Unix(),
	})
	return nil
}

// Run samples immediately and then every interval until ctx ends. Ticks that
// find the rail busy are skipped rather than queued behind a sync.
func (s *Sampler) Run(ctx context.Context) {
	t := time.NewTicker(s.every)
	defer t.Stop()
	_ = s.Sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = s.TrySample(ctx)
		}
	}
}
