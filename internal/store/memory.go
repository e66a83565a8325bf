package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// MemoryStore keeps a bounded, in-process history of current-conditions
// snapshots per location. Nothing survives a restart.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: snapshots ordered by timestamp
	data map[string][]weather.WeatherSnapshot

	maxHistory int           // max number of snapshots per location
	maxAge     time.Duration // optional max age for snapshots
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory or maxAge is <= 0, that limit is disabled.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]weather.WeatherSnapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot records a snapshot for a location and enforces retention.
// Snapshots arriving out of order are inserted at their position in time.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.WeatherSnapshot) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.data[key]
	i := len(history)
	for i > 0 && history[i-1].Timestamp.After(snapshot.Timestamp) {
		i--
	}
	history = append(history, weather.WeatherSnapshot{})
	copy(history[i+1:], history[i:])
	history[i] = snapshot

	s.data[key] = s.prune(history)
}

// prune drops snapshots beyond the configured count and age limits.
func (s *MemoryStore) prune(history []weather.WeatherSnapshot) []weather.WeatherSnapshot {
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	return s.unexpired(history)
}

// unexpired returns the suffix of history that is still within maxAge.
// Reads apply it too, since nothing prunes a location that stops receiving snapshots.
func (s *MemoryStore) unexpired(history []weather.WeatherSnapshot) []weather.WeatherSnapshot {
	if s.maxAge <= 0 {
		return history
	}
	cutoff := s.now().Add(-s.maxAge)
	i := 0
	for i < len(history) && history[i].Timestamp.Before(cutoff) {
		i++
	}
	return history[i:]
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.unexpired(s.data[loc.Key()])
	if len(history) == 0 {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// GetRange returns all snapshots for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.WeatherSnapshot
	for _, snap := range s.unexpired(s.data[loc.Key()]) {
		if snap.Timestamp.Before(from) || snap.Timestamp.After(to) {
			continue
		}
		result = append(result, snap)
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
