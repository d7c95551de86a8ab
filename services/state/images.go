package state

import "sync"

// Images is the ImageIndex over a fixed set of n images.
// Mutated only by the button dispatcher and boot restore.
type Images struct {
	mu  sync.RWMutex
	n   int
	cur int
}

func NewImages(n int) *Images {
	if n < 1 {
		n = 1
	}
	return &Images{n: n}
}

func (im *Images) Count() int { return im.n }

func (im *Images) Get() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.cur
}

// Next advances, wrapping from the last image back to the first.
func (im *Images) Next() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.cur = (im.cur + 1) % im.n
	return im.cur
}

// Prev steps back, wrapping from the first image to the last.
func (im *Images) Prev() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.cur == 0 {
		im.cur = im.n
	}
	im.cur--
	return im.cur
}

// Set clamps i into range.
func (im *Images) Set(i int) {
	im.mu.Lock()
	defer im.mu.Unlock()
	switch {
	case i < 0:
		i = 0
	case i >= im.n:
		i = im.n - 1
	}
	im.cur = i
}
