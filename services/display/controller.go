package display

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"badgecode-go/errcode"
	"badgecode-go/services/display/render"
	"badgecode-go/services/power"
	"badgecode-go/services/signal"
	"badgecode-go/services/state"
	"badgecode-go/types"
	"badgecode-go/x/logx"
	"badgecode-go/x/timex"
)

type Config struct {
	Name    string
	Details string
	// Idle is the unconditional Full redraw interval; zero disables it.
	Idle time.Duration
}

// Controller is the single consumer of the screen signal.
type Controller struct {
	cfg    Config
	panel  Panel
	arb    *power.Arbiter
	sig    *signal.Signal[types.Screen]
	store  *state.Store
	images []*image1bit.VerticalLSB
	r      *render.Renderer
	log    *slog.Logger

	mu     sync.Mutex
	fresh  bool // panel needs Reset before the next cycle
	closed bool

	cycles   atomic.Uint32
	failures atomic.Uint32
}

func New(cfg Config, panel Panel, arb *power.Arbiter, sig *signal.Signal[types.Screen], store *state.Store, images []*image1bit.VerticalLSB, log *slog.Logger) *Controller {
	w, h := panel.Size()
	return &Controller{
		cfg:    cfg,
		panel:  panel,
		arb:    arb,
		sig:    sig,
		store:  store,
		images: images,
		r:      render.New(render.NewLayout(rectWH(int(w), int(h)))),
		log:    logx.Or(log),
		fresh:  true,
	}
}

// SetIdentity updates the name block; it shows on the next Full redraw.
func (c *Controller) SetIdentity(name, details string) {
	c.mu.Lock()
	c.cfg.Name, c.cfg.Details = name, details
	c.mu.Unlock()
}

// Run consumes requests until Shutdown or ctx ends. With no request for
// cfg.Idle it redraws Full on its own.
func (c *Controller) Run(ctx context.Context) {
	idle := c.cfg.Idle
	var tick <-chan time.Time
	var timer *time.Timer
	if idle > 0 {
		timer = time.NewTimer(idle)
		defer timer.Stop()
		tick = timer.C
	}
	ready := c.sig.Ready()

	for {
		var s types.Screen
		select {
		case <-ctx.Done():
			c.log.Info("display: stopping")
			return
		case <-ready:
			v, ok := c.sig.TryTake()
			if !ok {
				continue
			}
			s = v
		case <-tick:
			c.log.Debug("display: idle redraw")
			s = types.ScreenFull
		}

		if s == types.ScreenShutdown {
			_ = c.Shutdown(ctx)
			return
		}
		_ = c.Refresh(ctx, s)
		if timer != nil {
			timex.ResetTimer(timer, idle)
		}
	}
}

// Refresh runs one power-gated redraw cycle for s. Failures are logged and
// leave the panel stale until the next request.
func (c *Controller) Refresh(ctx context.Context, s types.Screen) error {
	if s == types.ScreenNone || s == types.ScreenShutdown {
		return nil
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return errcode.New(errcode.Unsupported, "display.refresh", "panel shut down")
	}

	m := c.model()
	err := c.arb.Do(ctx, "display", func(context.Context) error {
		return c.cycle(s, m)
	})
	c.cycles.Add(1)
	if err != nil {
		c.failures.Add(1)
		c.log.Warn("display: refresh failed", "screen", s.String(), "err", err)
		return err
	}
	c.log.Debug("display: refreshed", "screen", s.String())
	return nil
}

func (c *Controller) cycle(s types.Screen, m render.Model) (err error) {
	if err := c.panel.Enable(); err != nil {
		return errcode.Wrap(errcode.DrawFailed, "display.enable", err)
	}
	defer func() {
		if derr := c.panel.Disable(); derr != nil && err == nil {
			err = errcode.Wrap(errcode.DrawFailed, "display.disable", derr)
		}
	}()

	c.mu.Lock()
	fresh := c.fresh
	c.mu.Unlock()
	if fresh {
		if err := c.panel.Reset(); err != nil {
			return errcode.Wrap(errcode.DrawFailed, "display.reset", err)
		}
	}
	if err := c.panel.Configure(types.WaveformFor(s)); err != nil {
		return errcode.Wrap(errcode.DrawFailed, "display.configure", err)
	}

	rect := c.r.Draw(c.panel, s, m)
	if s == types.ScreenFull {
		err = c.panel.Display()
	} else {
		err = c.panel.DisplayRect(rect)
	}
	if err != nil {
		return errcode.Wrap(errcode.DrawFailed, "display.commit", err)
	}
	c.mu.Lock()
	c.fresh = false
	c.mu.Unlock()
	return nil
}

// Shutdown powers the panel down and sends its deep-sleep command. No further
// refreshes are accepted.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.arb.Do(ctx, "display", func(context.Context) error {
		if err := c.panel.Disable(); err != nil {
			return err
		}
		return c.panel.DeepSleep()
	})
	if err != nil {
		c.log.Warn("display: deep sleep failed", "err", err)
		return errcode.Wrap(errcode.DrawFailed, "display.shutdown", err)
	}
	c.log.Info("display: panel asleep")
	return nil
}

// Reopen accepts refreshes again after Shutdown. The panel is reset on the
// next cycle since deep sleep only exits through a hardware reset.
func (c *Controller) Reopen() {
	c.mu.Lock()
	c.closed = false
	c.fresh = true
	c.mu.Unlock()
}

// Cycles and Failures count refresh attempts and failed ones.
func (c *Controller) Cycles() uint32   { return c.cycles.Load() }
func (c *Controller) Failures() uint32 { return c.failures.Load() }

func (c *Controller) model() render.Model {
	c.mu.Lock()
	m := render.Model{Name: c.cfg.Name, Details: c.cfg.Details}
	c.mu.Unlock()

	st := c.store
	m.Now, m.HasTime = st.Clock.Get()
	m.Weather, m.HasWeather = st.Weather.Get()
	m.Climate, m.HasClimate = st.Climate.Get()
	m.Seen = st.Networks.Seen()
	m.Mode = st.Mode.Get()
	if m.Mode == types.ModeNetworks {
		m.Networks = st.Networks.List()
	}
	if i := st.Images.Get(); i >= 0 && i < len(c.images) {
		m.Image = c.images[i]
	}
	return m
}
