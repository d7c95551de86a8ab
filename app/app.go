// Package app wires the badge's services onto a platform.Board.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"badgecode-go/assets"
	"badgecode-go/bus"
	"badgecode-go/errcode"
	"badgecode-go/platform"
	"badgecode-go/services/buttons"
	"badgecode-go/services/climate"
	"badgecode-go/services/clock"
	"badgecode-go/services/config"
	"badgecode-go/services/display"
	"badgecode-go/services/heartbeat"
	"badgecode-go/services/indicator"
	"badgecode-go/services/netsync"
	"badgecode-go/services/power"
	"badgecode-go/services/signal"
	"badgecode-go/services/sleep"
	"badgecode-go/services/state"
	"badgecode-go/services/storage"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

const readyTimeout = 30 * time.Second

type App struct {
	cfg   types.BadgeConfig
	board *platform.Board
	log   *slog.Logger
	bus   *bus.Bus

	Store   *state.Store
	Arb     *power.Arbiter
	Screen  *signal.Signal[types.Screen]
	Presses *signal.Keyed[types.Button]

	Display   *display.Controller
	Clock     *clock.Service
	Storage   *storage.Store
	Sync      *netsync.Orchestrator
	Climate   *climate.Sampler
	Watcher   *buttons.Watcher
	Buttons   *buttons.Dispatcher
	Indicator *indicator.Service
	Heartbeat *heartbeat.Service
	Config    *config.ConfigService
	Sleep     *sleep.Scheduler
}

// New builds every service for cfg on board. Sync is left out when the
// board has no radio or cfg disables it; the climate sampler likewise.
func New(cfg types.BadgeConfig, board *platform.Board, log *slog.Logger) (*App, error) {
	log = logx.Or(log)
	images, err := assets.Images()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		board:   board,
		log:     log,
		bus:     bus.NewBus(16),
		Store:   state.NewStore(len(images)),
		Arb:     power.NewArbiter(log),
		Screen:  signal.New[types.Screen](),
		Presses: signal.NewKeyed[types.Button](),
	}

	a.Display = display.New(display.Config{
		Name:    cfg.Name,
		Details: cfg.Details,
		Idle:    cfg.IdleRedraw(),
	}, board.Panel, a.Arb, a.Screen, a.Store, images, log)
	a.Clock = clock.New(board.RTC, a.Arb, &a.Store.Clock, a.Screen, a.bus.NewConnection("clock"), log)
	a.Storage = storage.New(board.Region, log)

	var onSync func()
	if board.HasRadio() && !cfg.DisableSync {
		a.Sync = netsync.New(netsync.Config{
			SSID:         cfg.WifiSSID,
			Password:     cfg.WifiPassword,
			TimeURL:      cfg.TimeURL,
			WeatherURL:   cfg.WeatherURL,
			JoinAttempts: cfg.JoinAttempts,
			JoinRetry:    cfg.JoinRetry(),
			ReadyTimeout: readyTimeout,
			Every:        cfg.SyncEvery(),
			After:        types.ScreenTopBar,
		}, board.Radio, a.Arb, a.Clock, a.Store, a.Storage, a.Screen, a.bus.NewConnection("netsync"), log)
		onSync = a.Sync.Trigger
	} else if !cfg.DisableSync {
		log.Warn("app: sync disabled", "err", errcode.New(errcode.NoRadio, "app.new", "board has no radio"))
	}
	if board.Sensor != nil && !cfg.DisableSensor {
		a.Climate = climate.New(board.Sensor, a.Arb, &a.Store.Climate, cfg.ClimateEvery(), log)
	}

	a.Watcher = buttons.NewWatcher(board.Buttons, cfg.Debounce(), a.Presses, log)
	a.Buttons = buttons.NewDispatcher(a.Presses, a.Screen, a.Store, onSync, a.bus.NewConnection("buttons"), log)
	a.Indicator = indicator.New(board.LED, indicator.DefaultPeriod, log)
	a.Heartbeat = heartbeat.New(log)
	a.Config = config.NewConfigService(log)

	deps := sleep.Deps{
		Latch:     board.Latch,
		PowerGood: board.PowerGood,
		Held:      a.Watcher.Held,
		Clock:     a.Clock,
		Display:   a.Display,
		Persist:   a.Storage,
		Store:     a.Store,
		Conn:      a.bus.NewConnection("sleep"),
		Resident:  a.resident,
	}
	if a.Sync != nil {
		deps.Sync = a.Sync
	}
	a.Sleep = sleep.New(sleep.Config{
		AlarmEvery:  cfg.AlarmEvery(),
		SyncStale:   cfg.SyncEvery(),
		LatchGrace:  cfg.LatchGrace(),
		DisableSync: a.Sync == nil,
	}, deps, log)
	return a, nil
}

// Bus exposes the message bus for observers.
func (a *App) Bus() *bus.Bus { return a.bus }

// Run starts the ambient services and hands control to the sleep scheduler.
// On battery it returns after the latch drops and ctx ends; on external power
// it runs until ctx ends.
func (a *App) Run(ctx context.Context) error {
	conn := a.bus.NewConnection("app")
	a.Config.Publish(conn, a.cfg)
	a.Indicator.Start(ctx, a.bus.NewConnection("indicator"))
	a.Heartbeat.Start(ctx, a.bus.NewConnection("heartbeat"))

	if a.Climate != nil {
		if err := a.Climate.Sample(ctx); err != nil {
			a.log.Warn("app: boot climate sample failed", "err", err)
		}
	}
	return a.Sleep.Run(ctx)
}

func (a *App) resident(ctx context.Context, syncNow bool) {
	a.Screen.Post(types.ScreenFull)
	var wg sync.WaitGroup
	run := func(f func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(ctx)
		}()
	}
	run(a.Display.Run)
	run(a.Clock.Run)
	run(a.Watcher.Run)
	run(a.Buttons.Run)
	if a.Climate != nil {
		run(a.Climate.Run)
	}
	if a.Sync != nil {
		run(a.Sync.Run)
		if syncNow {
			a.Sync.Trigger()
		}
	}
	wg.Wait()
	a.log.Info("app: resident tasks stopped")
}
