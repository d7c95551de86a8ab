package sleep

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"badgecode-go/bus"
	"badgecode-go/errcode"
	"badgecode-go/services/state"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

var base = time.Date(2026, 3, 1, 13, 5, 0, 0, time.UTC)

// recorder collects the order in which the scheduler touches collaborators.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *recorder) count(e string) int {
	n := 0
	for _, x := range r.list() {
		if x == e {
			n++
		}
	}
	return n
}

func (r *recorder) before(t *testing.T, a, b string) {
	t.Helper()
	ev := r.list()
	ia, ib := slices.Index(ev, a), slices.Index(ev, b)
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("want %q before %q in %v", a, b, ev)
	}
}

type fakeLatch struct {
	rec   *recorder
	onLow func()
}

func (l *fakeLatch) High() { l.rec.add("latch:high") }
func (l *fakeLatch) Low() {
	l.rec.add("latch:low")
	if l.onLow != nil {
		l.onLow()
	}
}

type fakeClock struct {
	rec     *recorder
	clk     *state.Clock
	trusted bool
	fired   bool
	armErr  error
}

func (c *fakeClock) CheckTrust(context.Context) (bool, error) {
	c.rec.add("clock:trust")
	c.clk.SetTrusted(c.trusted)
	return c.trusted, nil
}

func (c *fakeClock) Read(context.Context) (time.Time, error) {
	c.rec.add("clock:read")
	if !c.trusted {
		return time.Time{}, errcode.New(errcode.Stale, "clock.read", "untrusted")
	}
	c.clk.Set(base)
	return base, nil
}

func (c *fakeClock) ArmAlarm(_ context.Context, after time.Duration) (time.Time, error) {
	c.rec.add("clock:alarm")
	return base.Add(after), c.armErr
}

func (c *fakeClock) TakeAlarm(context.Context) (bool, error) {
	c.rec.add("clock:take")
	return c.fired, nil
}

type fakeDisplay struct{ rec *recorder }

func (d *fakeDisplay) Refresh(_ context.Context, s types.Screen) error {
	d.rec.add("display:" + s.String())
	return nil
}

func (d *fakeDisplay) Shutdown(context.Context) error {
	d.rec.add("display:sleep")
	return nil
}

func (d *fakeDisplay) Reopen() { d.rec.add("display:reopen") }

// fakeSync saves through the shared persister after a good weather fetch,
// the way the orchestrator does.
type fakeSync struct {
	rec       *recorder
	persist   *fakePersist
	store     *state.Store
	weatherOK bool
}

func (f *fakeSync) SyncOnce(context.Context) types.SyncResult {
	f.rec.add("sync")
	res := types.SyncResult{Associated: true, TimeOK: true, WeatherOK: f.weatherOK}
	if f.weatherOK && f.persist != nil {
		res.Persisted = f.persist.Save(f.store.Snapshot()) == nil
	}
	return res
}

type fakePersist struct {
	rec     *recorder
	saved   []types.PersistedState
	load    types.PersistedState
	loadErr error
	saveErr error
}

func (p *fakePersist) Save(s types.PersistedState) error {
	p.rec.add("persist:save")
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved = append(p.saved, s)
	return nil
}

func (p *fakePersist) Load() (types.PersistedState, error) {
	p.rec.add("persist:load")
	return p.load, p.loadErr
}

type rig struct {
	rec     *recorder
	store   *state.Store
	latch   *fakeLatch
	clock   *fakeClock
	persist *fakePersist
	sync    *fakeSync
	deps    Deps
	cfg     Config
}

func newRig() *rig {
	rec := &recorder{}
	store := state.NewStore(3)
	r := &rig{
		rec:     rec,
		store:   store,
		latch:   &fakeLatch{rec: rec},
		clock:   &fakeClock{rec: rec, clk: &store.Clock, trusted: true},
		persist: &fakePersist{rec: rec},
		cfg: Config{
			AlarmEvery: 15 * time.Minute,
			SyncStale:  time.Hour,
			LatchGrace: time.Hour,
		},
	}
	// Fresh weather so a trusted clock does not trigger a sync.
	r.persist.load = types.PersistedState{
		ImageIndex:   1,
		WeatherValid: true,
		Weather:      types.Weather{DeciC: 125, Code: 3, FetchedAt: base.Add(-10 * time.Minute).Unix()},
	}
	r.sync = &fakeSync{rec: rec, persist: r.persist, store: store, weatherOK: true}
	r.deps = Deps{
		Latch:   r.latch,
		Clock:   r.clock,
		Display: &fakeDisplay{rec: rec},
		Sync:    r.sync,
		Persist: r.persist,
		Store:   store,
		Resident: func(context.Context, bool) {
			rec.add("resident")
		},
	}
	return r
}

// runBattery runs the scheduler and stops it as soon as the latch drops.
func (r *rig) runBattery(t *testing.T) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.latch.onLow = cancel
	s := New(r.cfg, r.deps, logx.Discard())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not finish")
		return nil
	}
}

func TestBatteryPassOrder(t *testing.T) {
	r := newRig()
	if err := r.runBattery(t); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}

	want := []string{
		"latch:high",
		"persist:load",
		"clock:trust",
		"clock:take",
		"clock:read",
		"display:full",
		"persist:save",
		"clock:alarm",
		"display:sleep",
		"latch:low",
	}
	if got := r.rec.list(); !slices.Equal(got, want) {
		t.Fatalf("events\n got %v\nwant %v", got, want)
	}
	if len(r.persist.saved) != 1 || r.persist.saved[0].ImageIndex != 1 {
		t.Fatalf("saved = %+v", r.persist.saved)
	}
}

func TestBatteryPassSyncsWhenClockUntrusted(t *testing.T) {
	r := newRig()
	r.clock.trusted = false
	_ = r.runBattery(t)

	if r.rec.count("sync") != 1 || r.rec.count("display:full") != 1 {
		t.Fatalf("events = %v", r.rec.list())
	}
	r.rec.before(t, "sync", "display:full")
	r.rec.before(t, "persist:save", "clock:alarm")
	r.rec.before(t, "clock:alarm", "latch:low")
}

func TestBatteryPassWithSyncSavesOnce(t *testing.T) {
	r := newRig()
	r.clock.trusted = false
	_ = r.runBattery(t)

	if n := r.rec.count("persist:save"); n != 1 {
		t.Fatalf("saves = %d, want 1: %v", n, r.rec.list())
	}
	r.rec.before(t, "sync", "persist:save")
	r.rec.before(t, "persist:save", "display:full")
	r.rec.before(t, "clock:alarm", "latch:low")
}

func TestBatteryPassSavesWhenSyncDidNot(t *testing.T) {
	r := newRig()
	r.clock.trusted = false
	r.sync.weatherOK = false
	_ = r.runBattery(t)

	if n := r.rec.count("persist:save"); n != 1 {
		t.Fatalf("saves = %d, want 1: %v", n, r.rec.list())
	}
	r.rec.before(t, "display:full", "persist:save")
	r.rec.before(t, "persist:save", "clock:alarm")
}

func TestBatteryPassSyncsWhenWeatherStale(t *testing.T) {
	r := newRig()
	r.persist.load.Weather.FetchedAt = base.Add(-2 * time.Hour).Unix()
	_ = r.runBattery(t)
	if r.rec.count("sync") != 1 {
		t.Fatalf("stale weather did not sync: %v", r.rec.list())
	}
}

func TestDisableSyncSkipsOneShot(t *testing.T) {
	r := newRig()
	r.clock.trusted = false
	r.cfg.DisableSync = true
	_ = r.runBattery(t)
	if r.rec.count("sync") != 0 {
		t.Fatalf("sync ran while disabled: %v", r.rec.list())
	}
}

func TestHeldButtons(t *testing.T) {
	cases := []struct {
		b     types.Button
		sync  bool
		image int
		mode  types.Mode
	}{
		{types.ButtonA, true, 1, types.ModeBadge},
		{types.ButtonB, false, 1, types.ModeBadge},
		{types.ButtonC, false, 2, types.ModeBadge},
		{types.ButtonDown, false, 0, types.ModeBadge},
		{types.ButtonUp, false, 1, types.ModeNetworks},
	}
	for _, tc := range cases {
		t.Run(tc.b.String(), func(t *testing.T) {
			r := newRig()
			b := tc.b
			r.deps.Held = func() (types.Button, bool) { return b, true }
			_ = r.runBattery(t)

			if got := r.rec.count("sync") == 1; got != tc.sync {
				t.Fatalf("sync = %v, want %v", got, tc.sync)
			}
			if got := r.store.Images.Get(); got != tc.image {
				t.Fatalf("image = %d, want %d", got, tc.image)
			}
			if got := r.store.Mode.Get(); got != tc.mode {
				t.Fatalf("mode = %v, want %v", got, tc.mode)
			}
			if r.persist.saved[0].ImageIndex != uint8(tc.image) {
				t.Fatalf("persisted image = %d", r.persist.saved[0].ImageIndex)
			}
		})
	}
}

func TestPersistFailureStillArmsAndReleases(t *testing.T) {
	r := newRig()
	r.persist.saveErr = errcode.New(errcode.BufferTooSmall, "storage.save", "test")
	_ = r.runBattery(t)
	r.rec.before(t, "persist:save", "clock:alarm")
	r.rec.before(t, "clock:alarm", "latch:low")
}

func TestCorruptPersistedStateUsesDefaults(t *testing.T) {
	r := newRig()
	r.persist.loadErr = errcode.New(errcode.NotFound, "storage.load", "blank")
	r.persist.load = types.PersistedState{}
	_ = r.runBattery(t)
	if r.store.Images.Get() != 0 {
		t.Fatalf("image = %d", r.store.Images.Get())
	}
	// No weather restored, so a sync is attempted.
	if r.rec.count("sync") != 1 {
		t.Fatalf("events = %v", r.rec.list())
	}
}

func TestExternalPowerStaysResident(t *testing.T) {
	r := newRig()
	r.clock.trusted = false
	r.deps.PowerGood = func() bool { return true }
	var syncNow bool
	r.deps.Resident = func(_ context.Context, s bool) {
		syncNow = s
		r.rec.add("resident")
	}
	b := bus.NewBus(4)
	r.deps.Conn = b.NewConnection("sleep")

	s := New(r.cfg, r.deps, logx.Discard())
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("err = %v", err)
	}
	if r.rec.count("latch:low") != 0 || r.rec.count("display:full") != 0 || r.rec.count("resident") != 1 {
		t.Fatalf("events = %v", r.rec.list())
	}
	if !syncNow {
		t.Fatal("untrusted clock should ask for an immediate sync")
	}

	sub := b.NewConnection("t").Subscribe(topicStatePower)
	select {
	case m := <-sub.Channel():
		p := m.Payload.(types.PowerState)
		if !p.Resident || p.Reason != types.WakeExternalPower {
			t.Fatalf("power state = %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no retained power state")
	}
}

func TestStillPoweredAfterGraceGoesResident(t *testing.T) {
	r := newRig()
	r.cfg.LatchGrace = time.Millisecond
	s := New(r.cfg, r.deps, logx.Discard())
	err := s.Run(context.Background())
	if errcode.Of(err) != errcode.StillPowered {
		t.Fatalf("err = %v", err)
	}
	r.rec.before(t, "latch:low", "display:reopen")
	r.rec.before(t, "display:reopen", "resident")
	if r.rec.count("latch:high") != 2 {
		t.Fatalf("latch not re-asserted: %v", r.rec.list())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		pg    bool
		fired bool
		held  bool
		want  types.WakeReason
	}{
		{"cold", false, false, false, types.WakeCold},
		{"button", false, false, true, types.WakeButton},
		{"alarm", false, true, true, types.WakeAlarm},
		{"external", true, true, true, types.WakeExternalPower},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig()
			r.clock.fired = tc.fired
			pg, held := tc.pg, tc.held
			r.deps.PowerGood = func() bool { return pg }
			r.deps.Held = func() (types.Button, bool) { return types.ButtonB, held }
			b := New(r.cfg, r.deps, logx.Discard()).Classify(context.Background())
			if b.Reason != tc.want {
				t.Fatalf("reason = %v, want %v", b.Reason, tc.want)
			}
		})
	}
}
