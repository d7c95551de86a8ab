package types

// Weather is the last fetched outdoor weather.
type Weather struct {
	// Tenths of °C (e.g. 125 => 12.5°C).
	DeciC int16 `json:"deci_c"`
	// WMO weather interpretation code.
	Code uint8 `json:"code"`
	// Unix seconds of the successful fetch; 0 when never fetched.
	FetchedAt int64 `json:"fetched_at"`
}

// Climate is the onboard sensor reading.
type Climate struct {
	DeciC  int16  `json:"deci_c"`
	RHx100 uint16 `json:"rh_x100"`
	TS     int64  `json:"ts_ms"`
}

// PersistedState is the durable subset written before deep sleep.
type PersistedState struct {
	ImageIndex   uint8   `json:"image_index"`
	WifiSeen     uint16  `json:"wifi_seen"`
	WeatherValid bool    `json:"weather_valid"`
	Weather      Weather `json:"weather"`
}
