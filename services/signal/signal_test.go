package signal

import (
	"context"
	"testing"
	"time"

	"badgecode-go/types"
)

func TestLatestWins(t *testing.T) {
	s := New[types.Screen]()
	posts := []types.Screen{types.ScreenTopBar, types.ScreenImage, types.ScreenFull, types.ScreenTime}
	for _, p := range posts {
		s.Post(p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	got, err := s.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got != types.ScreenTime {
		t.Fatalf("got %v, want last post %v", got, types.ScreenTime)
	}

	// Exactly one wait returns for the burst.
	ctx2, cancel2 := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel2()
	if v, err := s.Wait(ctx2); err == nil {
		t.Fatalf("second Wait returned %v; want timeout", v)
	}
}

func TestWaitBlocksUntilPost(t *testing.T) {
	var s Signal[int]
	done := make(chan int, 1)
	go func() {
		v, _ := s.Wait(context.Background())
		done <- v
	}()

	select {
	case v := <-done:
		t.Fatalf("Wait returned early with %d", v)
	case <-time.After(20 * time.Millisecond):
	}

	s.Post(7)
	select {
	case v := <-done:
		if v != 7 {
			t.Fatalf("got %d", v)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Wait did not wake")
	}
}

func TestStaleReadyIsHarmless(t *testing.T) {
	s := New[int]()
	s.Post(1)
	if v, ok := s.TryTake(); !ok || v != 1 {
		t.Fatalf("TryTake = %d,%v", v, ok)
	}
	if s.Pending() {
		t.Fatal("pending after take")
	}
	// The ready token from the first post is still buffered.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Wait(ctx); err == nil {
		t.Fatal("stale wake-up must not yield a value")
	}
}

func TestKeyedCollapsesPerKey(t *testing.T) {
	k := NewKeyed[types.Button]()
	k.Post(types.ButtonC)
	k.Post(types.ButtonA)
	k.Post(types.ButtonC)

	ctx := context.Background()
	first, _ := k.Wait(ctx)
	second, _ := k.Wait(ctx)
	if first != types.ButtonC || second != types.ButtonA {
		t.Fatalf("got %v, %v", first, second)
	}
	if _, ok := k.TryTake(); ok {
		t.Fatal("duplicate post was not collapsed")
	}
}

func TestKeyedReusesBacking(t *testing.T) {
	k := NewKeyed[types.Button]()
	for i := 0; i < 10000; i++ {
		k.Post(types.ButtonA)
		k.Post(types.ButtonB)
		if b, _ := k.TryTake(); b != types.ButtonA {
			t.Fatalf("round %d: took %v first", i, b)
		}
		if b, _ := k.TryTake(); b != types.ButtonB {
			t.Fatalf("round %d: took %v second", i, b)
		}
	}
	if c := cap(k.order); c > 8 {
		t.Fatalf("order capacity grew to %d", c)
	}
}

func TestZeroSignalUsable(t *testing.T) {
	var s Signal[types.Screen]
	done := make(chan types.Screen, 1)
	go func() {
		v, _ := s.Wait(context.Background())
		done <- v
	}()
	time.Sleep(10 * time.Millisecond)
	s.Post(types.ScreenImage)
	select {
	case v := <-done:
		if v != types.ScreenImage {
			t.Fatalf("got %v", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait on a zero Signal never woke")
	}
}
