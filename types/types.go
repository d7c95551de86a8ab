package types

// ---- Screen invalidation ----

// Screen names the minimal region that must be redrawn.
type Screen uint8

const (
	ScreenNone Screen = iota
	ScreenTopBar
	ScreenImage
	ScreenTime
	ScreenFull
	// ScreenShutdown terminates the refresh loop before deep sleep.
	ScreenShutdown
)

func (s Screen) String() string {
	switch s {
	case ScreenTopBar:
		return "top_bar"
	case ScreenImage:
		return "image"
	case ScreenTime:
		return "time"
	case ScreenFull:
		return "full"
	case ScreenShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

// Partial reports whether the request redraws a single widget rectangle.
func (s Screen) Partial() bool {
	return s == ScreenTopBar || s == ScreenImage || s == ScreenTime
}

// Waveform is the panel refresh drive profile.
type Waveform uint8

const (
	// WaveformQuality clears ghosting but is slow.
	WaveformQuality Waveform = iota
	// WaveformFast is quicker but may leave faint artifacts.
	WaveformFast
)

func (w Waveform) String() string {
	if w == WaveformFast {
		return "fast"
	}
	return "quality"
}

// WaveformFor picks the waveform used to service a request.
func WaveformFor(s Screen) Waveform {
	if s.Partial() {
		return WaveformFast
	}
	return WaveformQuality
}

// Mode selects what the body of the badge shows.
type Mode uint8

const (
	ModeBadge Mode = iota
	ModeNetworks
)

func (m Mode) String() string {
	if m == ModeNetworks {
		return "networks"
	}
	return "badge"
}

// ---- Buttons ----

type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonC
	ButtonUp
	ButtonDown
	ButtonCount
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "a"
	case ButtonB:
		return "b"
	case ButtonC:
		return "c"
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	default:
		return "unknown"
	}
}

// Action is what a debounced press asks the badge to do.
type Action uint8

const (
	ActionNone Action = iota
	ActionSync
	ActionFull
	ActionNextImage
	ActionPrevImage
	ActionToggleMode
)

// ActionFor is the fixed button map.
func ActionFor(b Button) Action {
	switch b {
	case ButtonA:
		return ActionSync
	case ButtonB:
		return ActionFull
	case ButtonC:
		return ActionNextImage
	case ButtonUp:
		return ActionToggleMode
	case ButtonDown:
		return ActionPrevImage
	default:
		return ActionNone
	}
}

// ---- Power ----

// WakeReason classifies why the device is running.
type WakeReason uint8

const (
	WakeCold WakeReason = iota
	WakeButton
	WakeAlarm
	WakeExternalPower
)

func (w WakeReason) String() string {
	switch w {
	case WakeButton:
		return "button"
	case WakeAlarm:
		return "alarm"
	case WakeExternalPower:
		return "external_power"
	default:
		return "cold"
	}
}

// ---- Bus payloads ----

// Blink asks the indicator LED to flash Count times.
type Blink struct {
	Count int `json:"count"`
}

// PowerState is retained at state/power.
type PowerState struct {
	Reason   WakeReason `json:"reason"`
	Resident bool       `json:"resident"`
	TS       int64      `json:"ts_ms"`
}

// SyncResult is retained at state/sync after every sync cycle.
type SyncResult struct {
	Associated bool   `json:"associated"`
	TimeOK     bool   `json:"time_ok"`
	WeatherOK  bool   `json:"weather_ok"`
	Persisted  bool   `json:"persisted"`
	Networks   int    `json:"networks"`
	TS         int64  `json:"ts_ms"`
	Error      string `json:"error,omitempty"`
}

// ClockValue is retained at state/clock.
type ClockValue struct {
	Unix    int64 `json:"unix"`
	Trusted bool  `json:"trusted"`
}
