package types

import (
	"errors"
	"time"
)

// BadgeConfig is published retained on topic "config/badge".
// Intervals are milliseconds to keep the payload integer-only.
type BadgeConfig struct {
	Name    string `json:"name" yaml:"name"`
	Details string `json:"details" yaml:"details"`

	WifiSSID     string `json:"wifi_ssid" yaml:"wifi_ssid"`
	WifiPassword string `json:"wifi_password" yaml:"wifi_password"`
	TimeURL      string `json:"time_url" yaml:"time_url"`
	WeatherURL   string `json:"weather_url" yaml:"weather_url"`

	IdleRedrawMs  uint32 `json:"idle_redraw_ms" yaml:"idle_redraw_ms"`
	SyncMs        uint32 `json:"sync_ms" yaml:"sync_ms"`
	AlarmMs       uint32 `json:"alarm_ms" yaml:"alarm_ms"`
	ClimateMs     uint32 `json:"climate_ms" yaml:"climate_ms"`
	HeartbeatMs   uint32 `json:"heartbeat_ms" yaml:"heartbeat_ms"`
	JoinAttempts  int    `json:"join_attempts" yaml:"join_attempts"`
	JoinRetryMs   uint32 `json:"join_retry_ms" yaml:"join_retry_ms"`
	DebounceMs    uint16 `json:"debounce_ms" yaml:"debounce_ms"`
	LatchGraceMs  uint32 `json:"latch_grace_ms" yaml:"latch_grace_ms"`
	DisableSync   bool   `json:"disable_sync" yaml:"disable_sync"`
	DisableSensor bool   `json:"disable_sensor" yaml:"disable_sensor"`
}

const (
	DefaultTimeURL    = "https://timeapi.io/api/Time/current/zone?timeZone=America/Chicago"
	DefaultWeatherURL = "https://api.open-meteo.com/v1/forecast?latitude=41.88&longitude=-87.63&current_weather=true"
)

// Defaults fills zero values in place.
func (c *BadgeConfig) Defaults() {
	if c.Name == "" {
		c.Name = "Badger"
	}
	if c.TimeURL == "" {
		c.TimeURL = DefaultTimeURL
	}
	if c.WeatherURL == "" {
		c.WeatherURL = DefaultWeatherURL
	}
	if c.IdleRedrawMs == 0 {
		c.IdleRedrawMs = 60_000
	}
	if c.SyncMs == 0 {
		c.SyncMs = 3_600_000
	}
	if c.AlarmMs == 0 {
		c.AlarmMs = 15 * 60_000
	}
	if c.ClimateMs == 0 {
		c.ClimateMs = 30_000
	}
	if c.HeartbeatMs == 0 {
		c.HeartbeatMs = 30_000
	}
	if c.JoinAttempts <= 0 {
		c.JoinAttempts = 30
	}
	if c.JoinRetryMs == 0 {
		c.JoinRetryMs = 1_000
	}
	if c.DebounceMs == 0 {
		c.DebounceMs = 50
	}
	if c.LatchGraceMs == 0 {
		c.LatchGraceMs = 2_000
	}
}

// Validate rejects configurations the services cannot run with.
func (c BadgeConfig) Validate() error {
	if c.Name == "" {
		return errors.New("config: empty name")
	}
	if c.AlarmMs < 60_000 {
		return errors.New("config: alarm interval below one minute")
	}
	if !c.DisableSync && c.WifiSSID == "" {
		return errors.New("config: sync enabled without wifi_ssid")
	}
	return nil
}

func (c BadgeConfig) IdleRedraw() time.Duration { return ms(c.IdleRedrawMs) }
func (c BadgeConfig) SyncEvery() time.Duration  { return ms(c.SyncMs) }
func (c BadgeConfig) AlarmEvery() time.Duration { return ms(c.AlarmMs) }
func (c BadgeConfig) ClimateEvery() time.Duration {
	return ms(c.ClimateMs)
}
func (c BadgeConfig) HeartbeatEvery() time.Duration { return ms(c.HeartbeatMs) }
func (c BadgeConfig) JoinRetry() time.Duration      { return ms(c.JoinRetryMs) }
func (c BadgeConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
func (c BadgeConfig) LatchGrace() time.Duration { return ms(c.LatchGraceMs) }

func ms(v uint32) time.Duration { return time.Duration(v) * time.Millisecond }
