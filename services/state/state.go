// Package state holds the badge's shared mutable state. Each field has its own
// lock and a single designated writer; readers take copies.
package state

import (
	"sync"
	"time"

	"badgecode-go/types"
)

// Clock is the shared optional timestamp. Absence means "not yet trusted".
type Clock struct {
	mu      sync.RWMutex
	now     time.Time
	valid   bool
	trusted bool
}

// Set records a time read from the RTC or the network.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now, c.valid = t, true
	c.mu.Unlock()
}

func (c *Clock) Get() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now, c.valid
}

// SetTrusted records whether the RTC content may be used.
func (c *Clock) SetTrusted(v bool) {
	c.mu.Lock()
	c.trusted = v
	c.mu.Unlock()
}

func (c *Clock) Trusted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trusted
}

// Weather is written only by the sync orchestrator (and boot restore).
type Weather struct {
	mu    sync.RWMutex
	w     types.Weather
	valid bool
}

func (w *Weather) Set(v types.Weather) {
	w.mu.Lock()
	w.w, w.valid = v, true
	w.mu.Unlock()
}

func (w *Weather) Get() (types.Weather, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.w, w.valid
}

// Climate is written only by the climate sampler.
type Climate struct {
	mu    sync.RWMutex
	c     types.Climate
	valid bool
}

func (c *Climate) Set(v types.Climate) {
	c.mu.Lock()
	c.c, c.valid = v, true
	c.mu.Unlock()
}

func (c *Climate) Get() (types.Climate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.c, c.valid
}

// Networks holds the last scan and the persisted seen counter.
type Networks struct {
	mu    sync.RWMutex
	ssids []string
	seen  uint16
}

// Record stores a scan result; the counter tracks the latest scan size.
func (n *Networks) Record(ssids []string) {
	n.mu.Lock()
	n.ssids = append(n.ssids[:0:0], ssids...)
	if len(ssids) > 0xFFFF {
		n.seen = 0xFFFF
	} else {
		n.seen = uint16(len(ssids))
	}
	n.mu.Unlock()
}

func (n *Networks) List() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.ssids...)
}

func (n *Networks) Seen() uint16 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.seen
}

func (n *Networks) setSeen(v uint16) {
	n.mu.Lock()
	n.seen = v
	n.mu.Unlock()
}

// ScreenMode selects the body view.
type ScreenMode struct {
	mu sync.RWMutex
	m  types.Mode
}

func (s *ScreenMode) Get() types.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m
}

func (s *ScreenMode) Set(m types.Mode) {
	s.mu.Lock()
	s.m = m
	s.mu.Unlock()
}

// Toggle flips between badge and network list and returns the new mode.
func (s *ScreenMode) Toggle() types.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == types.ModeBadge {
		s.m = types.ModeNetworks
	} else {
		s.m = types.ModeBadge
	}
	return s.m
}
