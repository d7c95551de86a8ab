// Package platform assembles the badge's hardware collaborators. The device
// build targets the Badger 2040 (W); every other build gets simulated parts.
package platform

import (
	"io"

	"badgecode-go/services/buttons"
	"badgecode-go/services/climate"
	"badgecode-go/services/clock"
	"badgecode-go/services/display"
	"badgecode-go/services/indicator"
	"badgecode-go/services/netsync"
	"badgecode-go/services/sleep"
	"badgecode-go/services/storage"
	"badgecode-go/types"
)

// Board is everything the application needs from the hardware. Sensor, Radio
// and PowerGood may be nil when the board lacks them.
type Board struct {
	// Device selects the embedded configuration.
	Device string

	Panel     display.Panel
	RTC       clock.RTC
	Sensor    climate.Sensor
	Radio     netsync.Radio
	Region    storage.Region
	Buttons   map[types.Button]buttons.IRQPin
	Latch     sleep.Latch
	PowerGood func() bool
	LED       indicator.LED
	Log       io.Writer
}

// HasRadio reports whether the board can sync.
func (b *Board) HasRadio() bool { return b.Radio != nil }
