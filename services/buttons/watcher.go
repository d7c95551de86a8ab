// Package buttons turns raw button edges into debounced presses and maps the
// presses onto redraw requests and sync triggers.
package buttons

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"badgecode-go/services/signal"
	"badgecode-go/types"
	"badgecode-go/x/logx"
	"badgecode-go/x/timex"
)

type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// IRQPin is an input that can call back from interrupt context. Handlers
// must not block.
type IRQPin interface {
	Get() bool
	SetIRQ(e Edge, h func()) error
	ClearIRQ() error
}

// Watcher runs one press detector per button. Buttons are active high.
type Watcher struct {
	pins     map[types.Button]IRQPin
	debounce time.Duration
	presses  *signal.Keyed[types.Button]
	log      *slog.Logger

	drops atomic.Uint32
}

func NewWatcher(pins map[types.Button]IRQPin, debounce time.Duration, presses *signal.Keyed[types.Button], log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 50 * time.Millisecond
	}
	return &Watcher{pins: pins, debounce: debounce, presses: presses, log: logx.Or(log)}
}

// Held samples every button once and returns the first one pressed, in
// button order. Used at boot to learn which button woke the badge.
func (w *Watcher) Held() (types.Button, bool) {
	for b := types.ButtonA; b < types.ButtonCount; b++ {
		if p, ok := w.pins[b]; ok && p.Get() {
			return b, true
		}
	}
	return 0, false
}

// Run watches every pin until ctx ends.
func (w *Watcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for b, p := range w.pins {
		edges := make(chan struct{}, 1)
		// ISR path: non-blocking notify only.
		handler := func() {
			select {
			case edges <- struct{}{}:
			default:
				w.drops.Add(1)
			}
		}
		if err := p.SetIRQ(EdgeBoth, handler); err != nil {
			w.log.Warn("buttons: irq setup failed", "button", b.String(), "err", err)
			continue
		}
		wg.Add(1)
		go func(b types.Button, p IRQPin) {
			defer wg.Done()
			defer func() { _ = p.ClearIRQ() }()
			w.watch(ctx, b, p, edges)
		}(b, p)
	}
	wg.Wait()
}

// watch: wait high, settle, confirm, post, wait low.
func (w *Watcher) watch(ctx context.Context, b types.Button, p IRQPin, edges <-chan struct{}) {
	for {
		if !waitLevel(ctx, p, edges, true) {
			return
		}
		if !timex.Sleep(ctx.Done(), w.debounce) {
			return
		}
		if p.Get() {
			w.log.Debug("buttons: press", "button", b.String())
			w.presses.Post(b)
		}
		if !waitLevel(ctx, p, edges, false) {
			return
		}
	}
}

// waitLevel blocks until p reads level. The edge channel only wakes the
// check; the level read is authoritative.
func waitLevel(ctx context.Context, p IRQPin, edges <-chan struct{}, level bool) bool {
	for p.Get() != level {
		select {
		case <-ctx.Done():
			return false
		case <-edges:
		}
	}
	return ctx.Err() == nil
}

// ISRDrops counts edge notifications dropped because one was already queued.
func (w *Watcher) ISRDrops() uint32 { return w.drops.Load() }
