package timex

import (
	"time"

	"badgecode-go/x/mathx"
)

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// UntilMinuteTick returns the wait before the next clock read so that reads
// land just after a minute boundary. Seconds past 50 are clamped so the wait
// never drops below ten seconds; an unknown time waits a full minute.
func UntilMinuteTick(now time.Time, known bool) time.Duration {
	if !known {
		return time.Minute
	}
	sec := mathx.Clamp(now.Second(), 0, 50)
	return time.Duration(60-sec) * time.Second
}

// ResetTimer safely stops, drains, and resets a timer.
func ResetTimer(t *time.Timer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	if !t.Stop() {
		DrainTimer(t)
	}
	t.Reset(d)
}

func DrainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}

// Sleep waits for d or until done is closed. It reports false when cancelled.
func Sleep(done <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-done:
		return false
	case <-t.C:
		return true
	}
}
