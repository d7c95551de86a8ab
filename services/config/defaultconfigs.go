package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx by WithDevice)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgBadger = `{
  "badge": {
    "name": "Badger",
    "details": "Ask me about e-ink",
    "wifi_ssid": "badge-net",
    "wifi_password": "change-me",
    "idle_redraw_ms": 60000,
    "sync_ms": 3600000,
    "alarm_ms": 900000
  },
  "heartbeat": {
    "interval": 30
  }
}`

const cfgSim = `{
  "badge": {
    "name": "Simulated Badger",
    "details": "host build",
    "disable_sync": true,
    "idle_redraw_ms": 5000,
    "alarm_ms": 60000
  }
}`

var embeddedConfigs = map[string][]byte{
	"badger2040w": []byte(cfgBadger),
	"sim":         []byte(cfgSim),
}
