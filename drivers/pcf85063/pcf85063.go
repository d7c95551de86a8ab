// Package pcf85063 provides a driver for the NXP PCF85063A real-time clock.
//
// Only the subset the badge needs is exposed: calendar time in UTC, the
// oscillator-stopped flag, and the once-per-match alarm that drives the
// wake line.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided. The device auto-increments the register pointer.
package pcf85063

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x51

// Registers.
const (
	regControl1 = 0x00
	regControl2 = 0x01
	regOffset   = 0x02
	regRAM      = 0x03
	regSeconds  = 0x04
	regMinutes  = 0x05
	regHours    = 0x06
	regDays     = 0x07
	regWeekdays = 0x08
	regMonths   = 0x09
	regYears    = 0x0A

	regSecondAlarm  = 0x0B
	regMinuteAlarm  = 0x0C
	regHourAlarm    = 0x0D
	regDayAlarm     = 0x0E
	regWeekdayAlarm = 0x0F
)

// Bits.
const (
	secondsOS = 0x80 // oscillator stopped; clock integrity not guaranteed

	ctrl2AIE = 0x80 // alarm interrupt enable
	ctrl2AF  = 0x40 // alarm flag

	alarmDisable = 0x80 // AEN_x: set disables that field's comparison
)

var ErrInvalidTime = errors.New("pcf85063: time outside 2000..2099")

// Device wraps an I2C connection to a PCF85063A.
type Device struct {
	bus     drivers.I2C
	Address uint16

	w [8]byte
	r [7]byte
}

// New creates a Device. The I2C bus must already be configured.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// ReadTime returns the current calendar time in UTC.
func (d *Device) ReadTime() (time.Time, error) {
	d.w[0] = regSeconds
	if err := d.bus.Tx(d.Address, d.w[:1], d.r[:7]); err != nil {
		return time.Time{}, err
	}
	r := d.r
	sec := fromBCD(r[0] & 0x7F)
	min := fromBCD(r[1] & 0x7F)
	hour := fromBCD(r[2] & 0x3F)
	day := fromBCD(r[3] & 0x3F)
	// r[4] is the weekday; time.Date derives it.
	mon := fromBCD(r[5] & 0x1F)
	year := 2000 + fromBCD(r[6])
	return time.Date(year, time.Month(mon), day, hour, min, sec, 0, time.UTC), nil
}

// SetTime writes t (converted to UTC). Writing the seconds register also
// clears the oscillator-stopped flag.
func (d *Device) SetTime(t time.Time) error {
	t = t.UTC()
	if t.Year() < 2000 || t.Year() > 2099 {
		return ErrInvalidTime
	}
	d.w[0] = regSeconds
	d.w[1] = toBCD(t.Second())
	d.w[2] = toBCD(t.Minute())
	d.w[3] = toBCD(t.Hour())
	d.w[4] = toBCD(t.Day())
	d.w[5] = byte(t.Weekday())
	d.w[6] = toBCD(int(t.Month()))
	d.w[7] = toBCD(t.Year() - 2000)
	return d.bus.Tx(d.Address, d.w[:8], nil)
}

// OscillatorStopped reports the OS flag. It is set by the device after a
// power-on or brown-out and stays set until the time is written or the flag
// is cleared.
func (d *Device) OscillatorStopped() (bool, error) {
	v, err := d.readReg(regSeconds)
	if err != nil {
		return false, err
	}
	return v&secondsOS != 0, nil
}

// ClearOscillatorStopped clears the OS flag without changing the seconds.
func (d *Device) ClearOscillatorStopped() error {
	v, err := d.readReg(regSeconds)
	if err != nil {
		return err
	}
	return d.writeReg(regSeconds, v&^secondsOS)
}

// SetAlarm arms a day/hour/minute/second match for t (UTC), clears any stale
// alarm flag and enables the interrupt output.
func (d *Device) SetAlarm(t time.Time) error {
	t = t.UTC()
	d.w[0] = regSecondAlarm
	d.w[1] = toBCD(t.Second())
	d.w[2] = toBCD(t.Minute())
	d.w[3] = toBCD(t.Hour())
	d.w[4] = toBCD(t.Day())
	d.w[5] = alarmDisable // weekday ignored
	if err := d.bus.Tx(d.Address, d.w[:6], nil); err != nil {
		return err
	}
	c2, err := d.readReg(regControl2)
	if err != nil {
		return err
	}
	return d.writeReg(regControl2, (c2|ctrl2AIE)&^ctrl2AF)
}

// ClearAlarm disables every alarm field, the interrupt and the flag.
func (d *Device) ClearAlarm() error {
	d.w[0] = regSecondAlarm
	for i := 1; i <= 5; i++ {
		d.w[i] = alarmDisable
	}
	if err := d.bus.Tx(d.Address, d.w[:6], nil); err != nil {
		return err
	}
	c2, err := d.readReg(regControl2)
	if err != nil {
		return err
	}
	return d.writeReg(regControl2, c2&^(ctrl2AIE|ctrl2AF))
}

// AlarmFired reports the alarm flag.
func (d *Device) AlarmFired() (bool, error) {
	v, err := d.readReg(regControl2)
	if err != nil {
		return false, err
	}
	return v&ctrl2AF != 0, nil
}

func (d *Device) readReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.Address, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.bus.Tx(d.Address, d.w[:2], nil)
}

func toBCD(v int) byte   { return byte(v/10)<<4 | byte(v%10) }
func fromBCD(b byte) int { return int(b>>4)*10 + int(b&0x0F) }
