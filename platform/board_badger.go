//go:build badger2040 || badger2040_w

package platform

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/shtc3"
	"tinygo.org/x/drivers/uc8151"

	"badgecode-go/drivers/pcf85063"
	"badgecode-go/services/buttons"
	"badgecode-go/types"
)

// Badger 2040 pin map.
const (
	pinLatch = machine.ENABLE_3V3 // GPIO10
	pinLED   = machine.GPIO22

	pinSDA = machine.GPIO4
	pinSCL = machine.GPIO5

	pinUARTTX = machine.GPIO0
	pinUARTRX = machine.GPIO1
)

var buttonPins = map[types.Button]machine.Pin{
	types.ButtonA:    machine.GPIO12,
	types.ButtonB:    machine.GPIO13,
	types.ButtonC:    machine.GPIO14,
	types.ButtonUp:   machine.GPIO15,
	types.ButtonDown: machine.GPIO11,
}

// Open brings up the Badger's peripherals. The latch is driven high first so
// the board keeps power while the rest is configured.
func Open() *Board {
	pinLatch.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinLatch.High()
	pinLED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinLED.Low()

	log := uartx.UART0
	_ = log.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       pinUARTTX,
		RX:       pinUARTRX,
	})

	pins := make(map[types.Button]buttons.IRQPin, len(buttonPins))
	for b, p := range buttonPins {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
		pins[b] = &irqPin{p: p}
	}

	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{
		SDA:       pinSDA,
		SCL:       pinSCL,
		Frequency: 400 * machine.KHz,
	})

	_ = machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 12 * machine.MHz,
		SCK:       machine.EPD_SCK_PIN,
		SDO:       machine.EPD_SDO_PIN,
	})
	epd := uc8151.New(machine.SPI0, machine.EPD_CS_PIN, machine.EPD_DC_PIN, machine.EPD_RESET_PIN, machine.EPD_BUSY_PIN)
	rtc := pcf85063.New(i2c)

	b := &Board{
		Device:  "badger2040w",
		Panel:   newUC8151Panel(epd),
		RTC:     &rtc,
		Region:  newFlashRegion(),
		Buttons: pins,
		Latch:   pinLatch,
		LED:     pinLED,
		Log:     log,
		Radio:   openRadio(),
	}

	// The climate sensor sits on the Qw/ST connector and may be absent.
	sensor := shtc3.New(i2c)
	if err := sensor.WakeUp(); err == nil {
		_ = sensor.Sleep()
		b.Sensor = &sensor
	}
	return b
}

// irqPin adapts machine.Pin to buttons.IRQPin.
type irqPin struct{ p machine.Pin }

func (r *irqPin) Get() bool { return r.p.Get() }

func (r *irqPin) SetIRQ(edge buttons.Edge, handler func()) error {
	return r.p.SetInterrupt(toPinChange(edge), func(machine.Pin) { handler() })
}

func (r *irqPin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

func toPinChange(e buttons.Edge) machine.PinChange {
	switch e {
	case buttons.EdgeRising:
		return machine.PinRising
	case buttons.EdgeFalling:
		return machine.PinFalling
	case buttons.EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}
