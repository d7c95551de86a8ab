// Package netsync associates with the wireless network, fetches time and
// weather, and records the results.
package netsync

import (
	"context"
	"log/slog"
	"sync"
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

var (
	topicBlink     = bus.T("indicator", "blink")
	topicStateSync = bus.T("state", "sync")
	topicWeather   = bus.T("state", "weather")
)

type Config struct {
	SSID       string
	Password   string
	TimeURL    string
	WeatherURL string

	JoinAttempts int
	JoinRetry    time.Duration
	// ReadyTimeout bounds the wait for link and address.
	ReadyTimeout time.Duration
	// Every is the resident-mode sync period; zero disables the ticker.
	Every time.Duration
	// After is posted once a cycle completes.
	After types.Screen
}

// ClockSetter writes a network time. Called with the rail already held.
type ClockSetter interface {
	SetFromNetwork(t time.Time) error
}

// Persister stores the durable state.
type Persister interface {
	Save(p types.PersistedState) error
}

type Orchestrator struct {
	cfg     Config
	radio   Radio
	arb     *power.Arbiter
	clock   ClockSetter
	store   *state.Store
	persist Persister
	screen  *signal.Signal[types.Screen]
	conn    *bus.Connection
	log     *slog.Logger

	trigger *signal.Signal[struct{}]
	now     func() time.Time

	mu   sync.Mutex
	last types.SyncResult
}

// New wires the orchestrator. persist and conn may be nil.
func New(cfg Config, radio Radio, arb *power.Arbiter, clock ClockSetter, store *state.Store, persist Persister, screen *signal.Signal[types.Screen], conn *bus.Connection, log *slog.Logger) *Orchestrator {
	if cfg.JoinAttempts <= 0 {
		cfg.JoinAttempts = 30
	}
	if cfg.JoinRetry <= 0 {
		cfg.JoinRetry = time.Second
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 30 * time.Second
	}
	if cfg.After == types.ScreenNone {
		cfg.After = types.ScreenTopBar
	}
	return &Orchestrator{
		cfg:     cfg,
		radio:   radio,
		arb:     arb,
		clock:   clock,
		store:   store,
		persist: persist,
		screen:  screen,
		conn:    conn,
		log:     logx.Or(log),
		trigger: signal.New[struct{}](),
		now:     time.Now,
	}
}

// Trigger requests a sync. Requests made while one is pending collapse.
func (o *Orchestrator) Trigger() { o.trigger.Post(struct{}{}) }

// Last returns the most recent cycle's result.
func (o *Orchestrator) Last() types.SyncResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Run syncs on every trigger and every cfg.Every until ctx ends.
func (o *Orchestrator) Run(ctx context.Context) {
	var tick <-chan time.Time
	if o.cfg.Every > 0 {
		t := time.NewTicker(o.cfg.Every)
		defer t.Stop()
		tick = t.C
	}
	ready := o.trigger.Ready()
	for {
		select {
		case <-ctx.Done():
			o.log.Info("netsync: stopping")
			return
		case <-ready:
			if _, ok := o.trigger.TryTake(); !ok {
				continue
			}
		case <-tick:
		}
		o.SyncOnce(ctx)
	}
}

// SyncOnce runs one complete cycle while holding the rail. Association
// failure abandons the cycle quietly; fetch failures leave the matching state
// untouched. The redraw request is posted after the rail is released.
func (o *Orchestrator) SyncOnce(ctx context.Context) types.SyncResult {
	var res types.SyncResult
	err := o.arb.Do(ctx, "netsync", func(ctx context.Context) error {
		o.scan(ctx)
		if err := o.associate(ctx); err != nil {
			return err
		}
		res.Associated = true
		o.blink(3)
		defer func() {
			if err := o.radio.Leave(); err != nil {
				o.log.Warn("netsync: leave failed", "err", err)
			}
		}()

		rctx, cancel := context.WithTimeout(ctx, o.cfg.ReadyTimeout)
		defer cancel()
		if err := o.radio.WaitReady(rctx); err != nil {
			return errcode.Wrap(errcode.LinkNotReady, "netsync.ready", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			res.TimeOK = o.fetchTime(ctx)
		}()
		go func() {
			defer wg.Done()
			res.WeatherOK = o.fetchWeather(ctx)
		}()
		wg.Wait()
		if res.WeatherOK && o.persist != nil {
			if err := o.persist.Save(o.store.Snapshot()); err != nil {
				o.log.Warn("netsync: persist skipped", "err", err)
			} else {
				res.Persisted = true
			}
		}
		return nil
	})
	res.TS = o.now().UnixMilli()
	res.Networks = int(o.store.Networks.Seen())
	if err != nil {
		res.Error = string(errcode.Of(err))
		if errcode.Of(err) == errcode.JoinFailed {
			o.log.Info("netsync: association gave up", "attempts", o.cfg.JoinAttempts)
		} else {
			o.log.Warn("netsync: cycle failed", "err", err)
		}
	}
	if res.Associated {
		o.blink(4)
		o.screen.Post(o.cfg.After)
	}
	o.mu.Lock()
	o.last = res
	o.mu.Unlock()
	o.publish(topicStateSync, res)
	return res
}

func (o *Orchestrator) associate(ctx context.Context) error {
	var err error
	for i := 0; i < o.cfg.JoinAttempts; i++ {
		if err = o.radio.Join(ctx, o.cfg.SSID, o.cfg.Password); err == nil {
			o.log.Info("netsync: joined", "ssid", o.cfg.SSID, "attempt", i+1)
			return nil
		}
		o.log.Debug("netsync: join failed", "attempt", i+1, "err", err)
		if i+1 < o.cfg.JoinAttempts && !timex.Sleep(ctx.Done(), o.cfg.JoinRetry) {
			return ctx.Err()
		}
	}
	return errcode.Wrap(errcode.JoinFailed, "netsync.join", err)
}

func (o *Orchestrator) scan(ctx context.Context) {
	sc, ok := o.radio.(Scanner)
	if !ok {
		return
	}
	ssids, err := sc.Scan(ctx)
	if err != nil {
		o.log.Warn("netsync: scan failed", "err", err)
		return
	}
	o.store.Networks.Record(ssids)
}

func (o *Orchestrator) fetchTime(ctx context.Context) bool {
	body, err := o.radio.Get(ctx, o.cfg.TimeURL)
	if err != nil {
		o.log.Warn("netsync: time fetch failed", "err", errcode.Wrap(errcode.FetchFailed, "netsync.time", err))
		return false
	}
	t, err := DecodeTime(body)
	if err != nil {
		o.log.Warn("netsync: time decode failed", "err", err)
		return false
	}
	if err := o.clock.SetFromNetwork(t); err != nil {
		// The shared clock was still updated; only the chip write failed.
		o.log.Warn("netsync: rtc not updated", "err", err)
	}
	return true
}

func (o *Orchestrator) fetchWeather(ctx context.Context) bool {
	body, err := o.radio.Get(ctx, o.cfg.WeatherURL)
	if err != nil {
		o.log.Warn("netsync: weather fetch failed", "err", errcode.Wrap(errcode.FetchFailed, "netsync.weather", err))
		return false
	}
	w, err := DecodeWeather(body, o.now())
	if err != nil {
		o.log.Warn("netsync: weather decode failed", "err", err)
		return false
	}
	o.store.Weather.Set(w)
	o.publish(topicWeather, w)
	return true
}

func (o *Orchestrator) blink(n int) {
	if o.conn == nil {
		return
	}
	o.conn.Publish(o.conn.NewMessage(topicBlink, types.Blink{Count: n}, false))
}

func (o *Orchestrator) publish(t bus.Topic, v any) {
	if o.conn == nil {
		return
	}
	o.conn.Publish(o.conn.NewMessage(t, v, true))
}
