package state

import (
	"testing"
	"time"

	"badgecode-go/types"
)

func TestImagesNextWraps(t *testing.T) {
	im := NewImages(3)
	var seen []int
	for i := 0; i < 6; i++ {
		seen = append(seen, im.Next())
	}
	want := []int{1, 2, 0, 1, 2, 0}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Next sequence %v, want %v", seen, want)
		}
	}
}

func TestImagesPrevAndSet(t *testing.T) {
	im := NewImages(3)
	if got := im.Prev(); got != 2 {
		t.Fatalf("Prev from 0 = %d", got)
	}
	im.Set(10)
	if im.Get() != 2 {
		t.Fatalf("Set clamp high = %d", im.Get())
	}
	im.Set(-1)
	if im.Get() != 0 {
		t.Fatalf("Set clamp low = %d", im.Get())
	}
}

func TestClockAbsentUntilSet(t *testing.T) {
	var c Clock
	if _, ok := c.Get(); ok {
		t.Fatal("zero clock should be absent")
	}
	now := time.Date(2026, 3, 1, 13, 5, 9, 0, time.UTC)
	c.Set(now)
	if got, ok := c.Get(); !ok || !got.Equal(now) {
		t.Fatalf("Get = %v, %v", got, ok)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := NewStore(3)
	s.Images.Next()
	s.Networks.Record([]string{"home", "cafe"})
	s.Weather.Set(types.Weather{DeciC: -35, Code: 71, FetchedAt: 1_772_370_309})

	snap := s.Snapshot()
	if snap.ImageIndex != 1 || snap.WifiSeen != 2 || !snap.WeatherValid {
		t.Fatalf("snapshot %+v", snap)
	}

	r := NewStore(3)
	r.Restore(snap)
	if r.Images.Get() != 1 || r.Networks.Seen() != 2 {
		t.Fatal("restore lost index or counter")
	}
	if w, ok := r.Weather.Get(); !ok || w != snap.Weather {
		t.Fatalf("restored weather %+v %v", w, ok)
	}
}

func TestModeToggle(t *testing.T) {
	var m ScreenMode
	if m.Toggle() != types.ModeNetworks || m.Toggle() != types.ModeBadge {
		t.Fatal("toggle sequence")
	}
}
