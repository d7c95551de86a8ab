package indicator

import (
	"context"
	"sync"
	"testing"
	"time"

	"badgecode-go/bus"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

type fakeLED struct {
	mu    sync.Mutex
	on    bool
	highs int
}

func (l *fakeLED) High() {
	l.mu.Lock()
	l.on = true
	l.highs++
	l.mu.Unlock()
}

func (l *fakeLED) Low() {
	l.mu.Lock()
	l.on = false
	l.mu.Unlock()
}

func (l *fakeLED) state() (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on, l.highs
}

func TestBlinkCount(t *testing.T) {
	led := &fakeLED{}
	s := New(led, 2*time.Millisecond, logx.Discard())
	if !s.Blink(context.Background(), 3) {
		t.Fatal("blink interrupted")
	}
	on, highs := led.state()
	if on || highs != 3 || s.Pulses() != 3 {
		t.Fatalf("on=%v highs=%d pulses=%d", on, highs, s.Pulses())
	}
}

func TestBlinkCancelledLeavesLEDOff(t *testing.T) {
	led := &fakeLED{}
	s := New(led, time.Second, logx.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	if s.Blink(ctx, 4) {
		t.Fatal("expected interruption")
	}
	if on, _ := led.state(); on {
		t.Fatal("LED left on")
	}
}

func TestServiceConsumesBusRequests(t *testing.T) {
	led := &fakeLED{}
	s := New(led, 2*time.Millisecond, logx.Discard())
	b := bus.NewBus(8)
	conn := b.NewConnection("indicator")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx, conn)

	pub := b.NewConnection("test")
	// Give the loop a moment to subscribe; blinks are not retained.
	time.Sleep(10 * time.Millisecond)
	pub.Publish(pub.NewMessage(TopicBlink, types.Blink{Count: 3}, false))
	pub.Publish(pub.NewMessage(TopicBlink, "junk", false))
	pub.Publish(pub.NewMessage(TopicBlink, types.Blink{Count: 4}, false))

	deadline := time.Now().Add(time.Second)
	for s.Pulses() < 7 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if s.Pulses() != 7 {
		t.Fatalf("pulses = %d, want 7", s.Pulses())
	}
}

func TestServiceClampsRunawayCount(t *testing.T) {
	led := &fakeLED{}
	s := New(led, time.Millisecond, logx.Discard())
	b := bus.NewBus(8)
	conn := b.NewConnection("indicator")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx, conn)

	time.Sleep(10 * time.Millisecond)
	conn.Publish(conn.NewMessage(TopicBlink, types.Blink{Count: 1000}, false))

	deadline := time.Now().Add(time.Second)
	for s.Pulses() < maxCount && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if s.Pulses() != maxCount {
		t.Fatalf("pulses = %d, want %d", s.Pulses(), maxCount)
	}
}
