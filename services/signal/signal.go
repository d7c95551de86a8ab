// Package signal provides single-slot mailboxes with latest-wins semantics.
package signal

import (
	"context"
	"sync"
)

// Signal holds at most one pending value. Post overwrites an unconsumed value,
// so a consumer only ever observes the most recent post. Intended for a single
// consumer. New allocates the wake-up channel; a zero Signal creates it on the
// first Post, Ready or Wait.
type Signal[T any] struct {
	mu      sync.Mutex
	val     T
	pending bool
	ready   chan struct{}
}

func New[T any]() *Signal[T] {
	return &Signal[T]{ready: make(chan struct{}, 1)}
}

func (s *Signal[T]) readyCh() chan struct{} {
	if s.ready == nil {
		s.ready = make(chan struct{}, 1)
	}
	return s.ready
}

// Post stores v, replacing any pending value. Never blocks.
func (s *Signal[T]) Post(v T) {
	s.mu.Lock()
	s.val = v
	s.pending = true
	ch := s.readyCh()
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
	default:
	}
}

// TryTake returns and clears the pending value, if any.
func (s *Signal[T]) TryTake() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if !s.pending {
		return zero, false
	}
	v := s.val
	s.val = zero
	s.pending = false
	return v, true
}

// Pending reports whether a value is waiting.
func (s *Signal[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Ready fires after a Post. A wake-up may be stale; follow it with TryTake.
func (s *Signal[T]) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyCh()
}

// Wait suspends until a value is available, then returns and clears it.
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	ready := s.Ready()
	for {
		if v, ok := s.TryTake(); ok {
			return v, nil
		}
		select {
		case <-ready:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
