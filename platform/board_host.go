//go:build !(badger2040 || badger2040_w)

package platform

import (
	"os"

	"badgecode-go/services/buttons"
	"badgecode-go/services/display"
	"badgecode-go/services/storage"
	"badgecode-go/types"
)

const (
	panelWidth  = 296
	panelHeight = 128
	regionSize  = 4096
)

// Sim exposes the simulated parts so a host program can drive them.
type Sim struct {
	Panel  *display.FramePanel
	RTC    *SimRTC
	Pins   map[types.Button]*SimPin
	Latch  *SimOutput
	LED    *SimOutput
	Radio  *HTTPRadio
	Region *storage.MemRegion
}

// Open returns a simulated badge on external power. The radio is a plain
// HTTP client; pass online=false to leave it out.
func Open(online bool) (*Board, *Sim) {
	sim := &Sim{
		Panel:  display.NewFramePanel(panelWidth, panelHeight),
		RTC:    NewSimRTC(),
		Pins:   make(map[types.Button]*SimPin, types.ButtonCount),
		Latch:  &SimOutput{},
		LED:    &SimOutput{},
		Region: storage.NewMemRegion(regionSize),
	}
	pins := make(map[types.Button]buttons.IRQPin, types.ButtonCount)
	for b := types.ButtonA; b < types.ButtonCount; b++ {
		p := &SimPin{}
		sim.Pins[b] = p
		pins[b] = p
	}

	board := &Board{
		Device:    "sim",
		Panel:     sim.Panel,
		RTC:       sim.RTC,
		Sensor:    &SimSensor{},
		Region:    sim.Region,
		Buttons:   pins,
		Latch:     sim.Latch,
		PowerGood: func() bool { return true },
		LED:       sim.LED,
		Log:       os.Stderr,
	}
	if online {
		sim.Radio = NewHTTPRadio(0)
		board.Radio = sim.Radio
	}
	return board, sim
}
