// Package power serialises access to the shared, current-limited rail.
//
// The display charge pump, the radio and I²C register traffic must not draw
// from the rail at the same time. Every such operation runs while holding the
// single Guard handed out by an Arbiter.
package power

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"badgecode-go/errcode"
	"badgecode-go/x/logx"
)

type holderKey struct{ a *Arbiter }

// Arbiter is a non-reentrant exclusive gate. No fairness among waiters.
type Arbiter struct {
	sem chan struct{}
	log *slog.Logger

	mu     sync.Mutex
	holder string

	acquired atomic.Uint32
}

func NewArbiter(log *slog.Logger) *Arbiter {
	return &Arbiter{sem: make(chan struct{}, 1), log: logx.Or(log)}
}

// Guard is the scoped token for exclusive rail access.
type Guard struct {
	a    *Arbiter
	once sync.Once
}

// Release returns the rail. Safe to call more than once.
func (g *Guard) Release() {
	if g == nil {
		return
	}
	g.once.Do(func() {
		g.a.mu.Lock()
		g.a.holder = ""
		g.a.mu.Unlock()
		<-g.a.sem
	})
}

// Acquire blocks until the rail is free or ctx ends. A ctx derived from Do on
// this arbiter is rejected with errcode.Reentrant, which would otherwise
// deadlock the device. A passed deadline reports errcode.Timeout.
func (a *Arbiter) Acquire(ctx context.Context, who string) (*Guard, error) {
	if h, ok := ctx.Value(holderKey{a}).(string); ok {
		a.log.Error("power: re-entrant acquire", "holder", h, "who", who)
		return nil, errcode.New(errcode.Reentrant, "power.acquire", who+" while "+h+" holds the rail")
	}
	select {
	case a.sem <- struct{}{}:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errcode.Wrap(errcode.Timeout, "power.acquire", ctx.Err())
		}
		return nil, ctx.Err()
	}
	a.mu.Lock()
	a.holder = who
	a.mu.Unlock()
	a.acquired.Add(1)
	a.log.Debug("power: acquired", "who", who)
	return &Guard{a: a}, nil
}

// TryAcquire takes the rail only if it is free.
func (a *Arbiter) TryAcquire(who string) (*Guard, bool) {
	select {
	case a.sem <- struct{}{}:
	default:
		return nil, false
	}
	a.mu.Lock()
	a.holder = who
	a.mu.Unlock()
	a.acquired.Add(1)
	return &Guard{a: a}, true
}

// Do runs fn while holding the rail. The guard is released on every exit
// path, including panics. fn receives a ctx that marks the rail as held.
func (a *Arbiter) Do(ctx context.Context, who string, fn func(ctx context.Context) error) error {
	g, err := a.Acquire(ctx, who)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(context.WithValue(ctx, holderKey{a}, who))
}

// TryDo is Do without waiting: a held rail reports errcode.Busy and fn does
// not run.
func (a *Arbiter) TryDo(ctx context.Context, who string, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(holderKey{a}).(string); ok {
		return errcode.New(errcode.Reentrant, "power.try", who)
	}
	g, ok := a.TryAcquire(who)
	if !ok {
		return errcode.New(errcode.Busy, "power.try", who+" while "+a.Holder()+" holds the rail")
	}
	defer g.Release()
	return fn(context.WithValue(ctx, holderKey{a}, who))
}

// Holder names the current holder, or "" when the rail is free.
func (a *Arbiter) Holder() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holder
}

// Acquisitions counts successful acquires since construction.
func (a *Arbiter) Acquisitions() uint32 { return a.acquired.Load() }
