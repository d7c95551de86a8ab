package render

import (
	"time"

	"badgecode-go/x/conv"
	"badgecode-go/x/mathx"
)

// TwelveHour formats t as "HH:MM AM".
func TwelveHour(t time.Time) string {
	return t.Format("03:04 PM")
}

// WeatherDescription maps a WMO weather code to a label short enough for the
// header strip.
func WeatherDescription(code uint8) string {
	switch code {
	case 0:
		return "Clear"
	case 1:
		return "Mainly Clear"
	case 2:
		return "Part Cloudy"
	case 3:
		return "Cloudy"
	case 45, 46, 47, 48:
		return "Fog"
	case 51, 52, 53, 54, 55:
		return "Drizzle"
	case 56, 57:
		return "Frizzle"
	case 61:
		return "Light Rain"
	case 63:
		return "Rain"
	case 65:
		return "Heavy Rain"
	case 66, 67:
		return "Frzing Rain"
	case 71:
		return "Light Snow"
	case 73:
		return "Snow"
	case 75:
		return "Heavy Snow"
	case 77:
		return "Snow Grains"
	case 80, 81, 82:
		return "Rain Showers"
	case 85, 86:
		return "Snow Showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Hailstorm"
	default:
		return "Unknown"
	}
}

// HeaderText renders the status strip, e.g. "21C 40% W:3 | 12.5C Cloudy".
// Missing readings are shown as dashes.
func HeaderText(m Model) string {
	var num [20]byte
	b := make([]byte, 0, 48)
	if m.HasClimate {
		b = append(b, conv.Itoa(num[:], int64(mathx.RoundDiv(int(m.Climate.DeciC), 10)))...)
		b = append(b, "C "...)
		b = append(b, conv.Itoa(num[:], int64(mathx.RoundDiv(int(m.Climate.RHx100), 100)))...)
		b = append(b, '%')
	} else {
		b = append(b, "--C --%"...)
	}
	b = append(b, " W:"...)
	b = append(b, conv.Utoa(num[:], uint64(m.Seen))...)
	b = append(b, " | "...)
	if m.HasWeather {
		b = appendDeci(b, m.Weather.DeciC)
		b = append(b, "C "...)
		b = append(b, WeatherDescription(m.Weather.Code)...)
	} else {
		b = append(b, "no weather"...)
	}
	return string(b)
}

// ClockText is the clock widget's content; an unknown time shows dashes.
func ClockText(m Model) string {
	if !m.HasTime {
		return "--:--"
	}
	return TwelveHour(m.Now)
}

func appendDeci(b []byte, v int16) []byte {
	n := int(v)
	if n < 0 {
		b = append(b, '-')
		n = -n
	}
	var num [20]byte
	b = append(b, conv.Itoa(num[:], int64(n/10))...)
	b = append(b, '.')
	return append(b, byte('0'+n%10))
}
