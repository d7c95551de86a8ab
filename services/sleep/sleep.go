// Package sleep decides at boot whether the badge runs one battery pass and
// cuts its own power, or stays resident on external power.
package sleep

import (
	"context"
	"log/slog"
	"time"

	"badgecode-go/bus"
	"badgecode-go/errcode"
	"badgecode-go/services/state"
	"badgecode-go/types"
	"badgecode-go/x/logx"
	"badgecode-go/x/timex"
)

var topicStatePower = bus.T("state", "power")

// Latch is the power-hold output. machine.Pin satisfies it.
type Latch interface {
	High()
	Low()
}

type Clock interface {
	CheckTrust(ctx context.Context) (bool, error)
	Read(ctx context.Context) (time.Time, error)
	ArmAlarm(ctx context.Context, after time.Duration) (time.Time, error)
	TakeAlarm(ctx context.Context) (bool, error)
}

type Display interface {
	Refresh(ctx context.Context, s types.Screen) error
	Shutdown(ctx context.Context) error
	Reopen()
}

type Syncer interface {
	SyncOnce(ctx context.Context) types.SyncResult
}

type Persister interface {
	Save(p types.PersistedState) error
	Load() (types.PersistedState, error)
}

type Config struct {
	AlarmEvery time.Duration
	// SyncStale is the weather age past which a battery pass syncs.
	SyncStale   time.Duration
	LatchGrace  time.Duration
	DisableSync bool
}

// Deps are the collaborators the scheduler drives. PowerGood, Held and Sync
// may be nil.
type Deps struct {
	Latch     Latch
	PowerGood func() bool
	Held      func() (types.Button, bool)
	Clock     Clock
	Display   Display
	Sync      Syncer
	Persist   Persister
	Store     *state.Store
	Conn      *bus.Connection
	// Resident runs the long-lived tasks and returns when ctx ends.
	Resident func(ctx context.Context, syncNow bool)
}

// Boot is what the scheduler learned while classifying the wake.
type Boot struct {
	Reason  types.WakeReason
	Held    types.Button
	HasHeld bool
	Trusted bool
}

type Scheduler struct {
	cfg Config
	d   Deps
	log *slog.Logger
	now func() time.Time
}

func New(cfg Config, d Deps, log *slog.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, d: d, log: logx.Or(log), now: time.Now}
}

// Run holds the latch, classifies the wake and then either stays resident or
// performs one battery pass and drops the latch. If the process survives the
// latch grace period, external power appeared and it falls through to
// resident mode. Run returns when ctx ends.
func (s *Scheduler) Run(ctx context.Context) error {
	s.d.Latch.High()
	b := s.Classify(ctx)
	forceSync := s.applyHeld(b)

	if b.Reason == types.WakeExternalPower {
		s.resident(ctx, b, s.syncNeeded(forceSync))
		return ctx.Err()
	}

	s.BatteryPass(ctx, b.Reason, forceSync)
	if !timex.Sleep(ctx.Done(), s.cfg.LatchGrace) {
		return ctx.Err()
	}

	err := errcode.New(errcode.StillPowered, "sleep.latch", "alive after latch release")
	s.log.Warn("sleep: still powered, going resident", "grace", s.cfg.LatchGrace.String(), "err", err)
	s.d.Latch.High()
	s.d.Display.Reopen()
	b.Reason = types.WakeExternalPower
	s.resident(ctx, b, false)
	return err
}

// Classify restores persisted state and samples the wake sources once.
// External power outranks the alarm, which outranks a held button.
func (s *Scheduler) Classify(ctx context.Context) Boot {
	var b Boot
	if s.d.Persist != nil {
		p, err := s.d.Persist.Load()
		switch {
		case err == nil:
			s.d.Store.Restore(p)
		case errcode.Of(err) == errcode.NotFound:
			s.log.Info("sleep: no persisted state, using defaults")
		default:
			s.log.Warn("sleep: persisted state unreadable", "err", err)
		}
	}

	b.Trusted, _ = s.d.Clock.CheckTrust(ctx)
	fired, err := s.d.Clock.TakeAlarm(ctx)
	if err != nil {
		s.log.Warn("sleep: alarm flag read failed", "err", err)
	}
	if s.d.Held != nil {
		b.Held, b.HasHeld = s.d.Held()
	}

	switch {
	case s.d.PowerGood != nil && s.d.PowerGood():
		b.Reason = types.WakeExternalPower
	case fired:
		b.Reason = types.WakeAlarm
	case b.HasHeld:
		b.Reason = types.WakeButton
	default:
		b.Reason = types.WakeCold
	}
	s.log.Info("sleep: boot",
		"reason", b.Reason.String(),
		"held", heldName(b),
		"clock_trusted", b.Trusted,
	)
	return b
}

// BatteryPass reads the clock, syncs when asked or when data is stale,
// redraws once, persists, arms the alarm, puts the panel to sleep and
// finally releases the latch. Persisting and arming always precede the latch
// release. A sync that already saved the snapshot is not saved again, so a
// wake costs at most one erase.
func (s *Scheduler) BatteryPass(ctx context.Context, reason types.WakeReason, forceSync bool) {
	s.publish(types.PowerState{Reason: reason, Resident: false, TS: s.now().UnixMilli()})

	if _, err := s.d.Clock.Read(ctx); err != nil && errcode.Of(err) != errcode.Stale {
		s.log.Warn("sleep: clock read failed", "err", err)
	}
	persisted := false
	if s.syncNeeded(forceSync) {
		res := s.d.Sync.SyncOnce(ctx)
		persisted = res.Persisted
		s.log.Info("sleep: one-shot sync", "associated", res.Associated, "time_ok", res.TimeOK, "weather_ok", res.WeatherOK)
	}
	_ = s.d.Display.Refresh(ctx, types.ScreenFull)

	if s.d.Persist != nil && !persisted {
		if err := s.d.Persist.Save(s.d.Store.Snapshot()); err != nil {
			s.log.Warn("sleep: persist skipped", "err", err)
		}
	}
	if at, err := s.d.Clock.ArmAlarm(ctx, s.cfg.AlarmEvery); err == nil {
		s.log.Info("sleep: next wake", "at", at.Format(time.DateTime))
	}
	_ = s.d.Display.Shutdown(ctx)

	s.log.Info("sleep: releasing power latch")
	s.d.Latch.Low()
}

// syncNeeded is true when sync is possible and either forced, the clock is
// untrusted, or the weather is missing or older than SyncStale.
func (s *Scheduler) syncNeeded(force bool) bool {
	if s.cfg.DisableSync || s.d.Sync == nil {
		return false
	}
	if force || !s.d.Store.Clock.Trusted() {
		return true
	}
	w, ok := s.d.Store.Weather.Get()
	if !ok || w.FetchedAt == 0 {
		return true
	}
	now, known := s.d.Store.Clock.Get()
	if !known {
		return true
	}
	return now.Sub(time.Unix(w.FetchedAt, 0)) > s.cfg.SyncStale
}

// applyHeld applies the effect of a button held through boot and reports
// whether it asks for a sync.
func (s *Scheduler) applyHeld(b Boot) bool {
	if !b.HasHeld {
		return false
	}
	st := s.d.Store
	switch types.ActionFor(b.Held) {
	case types.ActionSync:
		return true
	case types.ActionNextImage:
		st.Images.Next()
	case types.ActionPrevImage:
		st.Images.Prev()
	case types.ActionToggleMode:
		st.Mode.Toggle()
	}
	return false
}

func (s *Scheduler) resident(ctx context.Context, b Boot, syncNow bool) {
	s.publish(types.PowerState{Reason: b.Reason, Resident: true, TS: s.now().UnixMilli()})
	s.log.Info("sleep: resident on external power", "sync_now", syncNow)
	if s.d.Resident != nil {
		s.d.Resident(ctx, syncNow)
	}
}

func (s *Scheduler) publish(p types.PowerState) {
	if s.d.Conn == nil {
		return
	}
	s.d.Conn.Publish(s.d.Conn.NewMessage(topicStatePower, p, true))
}

func heldName(b Boot) string {
	if !b.HasHeld {
		return "none"
	}
	return b.Held.String()
}
