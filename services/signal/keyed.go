package signal

import (
	"context"
	"sync"
)

// Keyed keeps one pending slot per key. Repeated posts of a key before it is
// consumed collapse into one; distinct keys are delivered in first-post order.
type Keyed[K comparable] struct {
	mu      sync.Mutex
	pending map[K]struct{}
	order   []K
	ready   chan struct{}
}

func NewKeyed[K comparable]() *Keyed[K] {
	return &Keyed[K]{
		pending: make(map[K]struct{}),
		ready:   make(chan struct{}, 1),
	}
}

func (k *Keyed[K]) Post(key K) {
	k.mu.Lock()
	if _, dup := k.pending[key]; !dup {
		k.pending[key] = struct{}{}
		k.order = append(k.order, key)
	}
	k.mu.Unlock()

	select {
	case k.ready <- struct{}{}:
	default:
	}
}

func (k *Keyed[K]) TryTake() (K, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	var zero K
	if len(k.order) == 0 {
		return zero, false
	}
	key := k.order[0]
	// Shift down so the backing array is reused; there is one entry per button.
	n := copy(k.order, k.order[1:])
	var zeroKey K
	k.order[n] = zeroKey
	k.order = k.order[:n]
	delete(k.pending, key)
	return key, true
}

func (k *Keyed[K]) Wait(ctx context.Context) (K, error) {
	for {
		if key, ok := k.TryTake(); ok {
			return key, nil
		}
		select {
		case <-k.ready:
		case <-ctx.Done():
			var zero K
			return zero, ctx.Err()
		}
	}
}
