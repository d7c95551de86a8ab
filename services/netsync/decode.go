package netsync

import (
	"encoding/json"
	"math"
	"time"

	"badgecode-go/errcode"
	"badgecode-go/types"
)

// timeLayout matches "2026-03-01T13:05:09.123"; fractional seconds are
// accepted and dropped.
const timeLayout = "2006-01-02T15:04:05"

type timePayload struct {
	DateTime string `json:"dateTime"`
}

// DecodeTime parses a timeapi.io style body. The wall time is kept as is and
// tagged UTC; the badge has no zone database.
func DecodeTime(body []byte) (time.Time, error) {
	var p timePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return time.Time{}, errcode.Wrap(errcode.DecodeFailed, "netsync.time", err)
	}
	if p.DateTime == "" {
		return time.Time{}, errcode.New(errcode.DecodeFailed, "netsync.time", "missing dateTime")
	}
	t, err := time.Parse(timeLayout, p.DateTime)
	if err != nil {
		return time.Time{}, errcode.Wrap(errcode.DecodeFailed, "netsync.time", err)
	}
	return t.Truncate(time.Second), nil
}

type weatherPayload struct {
	Current *struct {
		Temperature *float64 `json:"temperature"`
		Code        *int     `json:"weathercode"`
	} `json:"current_weather"`
}

// DecodeWeather parses an open-meteo current_weather body.
func DecodeWeather(body []byte, fetchedAt time.Time) (types.Weather, error) {
	var p weatherPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return types.Weather{}, errcode.Wrap(errcode.DecodeFailed, "netsync.weather", err)
	}
	if p.Current == nil || p.Current.Temperature == nil || p.Current.Code == nil {
		return types.Weather{}, errcode.New(errcode.DecodeFailed, "netsync.weather", "missing current_weather fields")
	}
	deci := math.Round(*p.Current.Temperature * 10)
	code := *p.Current.Code
	if deci < math.MinInt16 || deci > math.MaxInt16 || code < 0 || code > 255 {
		return types.Weather{}, errcode.New(errcode.DecodeFailed, "netsync.weather", "value out of range")
	}
	return types.Weather{DeciC: int16(deci), Code: uint8(code), FetchedAt: fetchedAt.Unix()}, nil
}
