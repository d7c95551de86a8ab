package state

import "badgecode-go/types"

// Store bundles the shared handles passed to each task at construction.
type Store struct {
	Clock    Clock
	Weather  Weather
	Climate  Climate
	Networks Networks
	Mode     ScreenMode
	Images   *Images
}

func NewStore(imageCount int) *Store {
	return &Store{Images: NewImages(imageCount)}
}

// Snapshot captures the durable subset.
func (s *Store) Snapshot() types.PersistedState {
	w, ok := s.Weather.Get()
	return types.PersistedState{
		ImageIndex:   uint8(s.Images.Get()),
		WifiSeen:     s.Networks.Seen(),
		WeatherValid: ok,
		Weather:      w,
	}
}

// Restore applies a persisted snapshot read back at boot.
func (s *Store) Restore(p types.PersistedState) {
	s.Images.Set(int(p.ImageIndex))
	s.Networks.setSeen(p.WifiSeen)
	if p.WeatherValid {
		s.Weather.Set(p.Weather)
	}
}
