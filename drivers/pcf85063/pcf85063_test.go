package pcf85063

import (
	"errors"
	"testing"
	"time"
)

// fakeBus models the register file with an auto-incrementing pointer.
type fakeBus struct {
	regs [0x12]byte
	err  error
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	if f.err != nil {
		return f.err
	}
	if addr != Address || len(w) == 0 {
		return errors.New("fake: bad transaction")
	}
	p := int(w[0])
	for _, b := range w[1:] {
		f.regs[p] = b
		p++
	}
	for i := range r {
		r[i] = f.regs[p]
		p++
	}
	return nil
}

func TestSetReadTimeRoundTrip(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus)
	want := time.Date(2026, 3, 1, 13, 5, 9, 0, time.UTC)
	if err := d.SetTime(want); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	if bus.regs[regSeconds] != 0x09 || bus.regs[regHours] != 0x13 || bus.regs[regYears] != 0x26 {
		t.Fatalf("BCD registers = % x", bus.regs[regSeconds:regYears+1])
	}
	got, err := d.ReadTime()
	if err != nil {
		t.Fatalf("ReadTime: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("ReadTime = %v, want %v", got, want)
	}
}

func TestReadTimeIgnoresOSBit(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus)
	_ = d.SetTime(time.Date(2030, 12, 31, 23, 59, 58, 0, time.UTC))
	bus.regs[regSeconds] |= secondsOS
	got, _ := d.ReadTime()
	if got.Second() != 58 {
		t.Fatalf("seconds = %d", got.Second())
	}
}

func TestSetTimeRejectsOutOfRange(t *testing.T) {
	d := New(&fakeBus{})
	if err := d.SetTime(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("err = %v", err)
	}
}

func TestOscillatorStoppedFlag(t *testing.T) {
	bus := &fakeBus{}
	bus.regs[regSeconds] = secondsOS | 0x42
	d := New(bus)
	stopped, err := d.OscillatorStopped()
	if err != nil || !stopped {
		t.Fatalf("OscillatorStopped = %v, %v", stopped, err)
	}
	if err := d.ClearOscillatorStopped(); err != nil {
		t.Fatal(err)
	}
	if bus.regs[regSeconds] != 0x42 {
		t.Fatalf("seconds after clear = %#x", bus.regs[regSeconds])
	}
	if stopped, _ := d.OscillatorStopped(); stopped {
		t.Fatal("flag still set")
	}
}

func TestAlarmArmFireClear(t *testing.T) {
	bus := &fakeBus{}
	bus.regs[regControl2] = ctrl2AF // stale flag from a previous wake
	d := New(bus)

	at := time.Date(2026, 3, 1, 13, 20, 0, 0, time.UTC)
	if err := d.SetAlarm(at); err != nil {
		t.Fatalf("SetAlarm: %v", err)
	}
	if bus.regs[regMinuteAlarm] != 0x20 || bus.regs[regHourAlarm] != 0x13 || bus.regs[regDayAlarm] != 0x01 {
		t.Fatalf("alarm regs = % x", bus.regs[regSecondAlarm:regWeekdayAlarm+1])
	}
	if bus.regs[regWeekdayAlarm] != alarmDisable {
		t.Fatal("weekday alarm should be disabled")
	}
	if c2 := bus.regs[regControl2]; c2&ctrl2AIE == 0 || c2&ctrl2AF != 0 {
		t.Fatalf("control2 = %#x", c2)
	}
	if fired, _ := d.AlarmFired(); fired {
		t.Fatal("fired before match")
	}

	bus.regs[regControl2] |= ctrl2AF
	if fired, _ := d.AlarmFired(); !fired {
		t.Fatal("flag not reported")
	}

	if err := d.ClearAlarm(); err != nil {
		t.Fatal(err)
	}
	if bus.regs[regControl2]&(ctrl2AIE|ctrl2AF) != 0 {
		t.Fatalf("control2 after clear = %#x", bus.regs[regControl2])
	}
	for r := regSecondAlarm; r <= regWeekdayAlarm; r++ {
		if bus.regs[r]&alarmDisable == 0 {
			t.Fatalf("alarm reg %#x still enabled", r)
		}
	}
}

func TestBusErrorPropagates(t *testing.T) {
	boom := errors.New("nack")
	d := New(&fakeBus{err: boom})
	if _, err := d.ReadTime(); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
