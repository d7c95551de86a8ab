// Package storage persists the badge's durable state to a fixed-size,
// fixed-offset non-volatile region.
package storage

import (
	"log/slog"
	"sync"

	"badgecode-go/errcode"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

// Region is one erase unit of non-volatile storage. Implementations own the
// offset and the erase geometry.
type Region interface {
	Erase() error
	Write(p []byte) error
	Read(p []byte) (int, error)
	Size() int
}

// Store is the single writer of a Region.
type Store struct {
	mu     sync.Mutex
	region Region
	log    *slog.Logger
	buf    [BufferSize]byte
	// bufLen lets tests shrink the scratch buffer.
	bufLen int
	writes int
}

func New(region Region, log *slog.Logger) *Store {
	return &Store{region: region, log: logx.Or(log), bufLen: BufferSize}
}

// Save serialises p, erases the region and writes the record. A failure
// leaves the previous record in place where the region allows it.
func (s *Store) Save(p types.PersistedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := Encode(p, s.buf[:s.bufLen])
	if err != nil {
		s.log.Warn("storage: serialise failed, skipping", "err", err)
		return err
	}
	if len(rec) > s.region.Size() {
		err := errcode.New(errcode.BufferTooSmall, "storage.save", "region too small")
		s.log.Warn("storage: region too small, skipping", "need", len(rec), "have", s.region.Size())
		return err
	}
	if err := s.region.Erase(); err != nil {
		s.log.Warn("storage: erase failed", "err", err)
		return errcode.Wrap(errcode.StorageFailed, "storage.erase", err)
	}
	if err := s.region.Write(rec); err != nil {
		s.log.Warn("storage: write failed", "err", err)
		return errcode.Wrap(errcode.StorageFailed, "storage.write", err)
	}
	s.writes++
	s.log.Debug("storage: saved", "image", p.ImageIndex, "wifi_seen", p.WifiSeen, "weather", p.WeatherValid)
	return nil
}

// Load reads the record back. errcode.NotFound means "use defaults".
func (s *Store) Load() (types.PersistedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.buf[:s.bufLen]
	n, err := s.region.Read(buf)
	if err != nil {
		return types.PersistedState{}, errcode.Wrap(errcode.StorageFailed, "storage.read", err)
	}
	return Decode(buf[:n])
}

// Writes counts successful saves.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
