// Package store provides storage backends for Calorico.
//
// It persists user profiles, the historical food log, and the closing
// summary written when a user finishes a day. Backends exist for
// SQLite, PostgreSQL, and an in-memory store used in tests.
package store

import (
	"errors"
	"sync"

	"github.com/calorico-bot/calorico/internal/models"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface the bot consumes.
type Store interface {
	// SaveProfile inserts or replaces the user's profile.
	SaveProfile(p models.Profile) error
	// LoadProfile returns the user's profile or ErrNotFound.
	LoadProfile(userID int64) (models.Profile, error)
	// ListProfiles returns every stored profile, for the menu scheduler
	// sweep.
	ListProfiles() ([]models.Profile, error)
	// AppendFoodLog records one eaten entry under its day.
	AppendFoodLog(userID int64, e models.EatenEntry) error
	// QueryFoodLog returns the entries a user logged on a day
	// (YYYY-MM-DD), oldest first.
	QueryFoodLog(userID int64, day string) ([]models.EatenEntry, error)
	// SaveDaySummary inserts or replaces the closing summary for a day.
	SaveDaySummary(userID int64, s models.DaySummary) error
	// LoadDaySummary returns the stored summary for a day or ErrNotFound.
	LoadDaySummary(userID int64, day string) (models.DaySummary, error)
	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for persistent stores.
type Opts struct {
	DSN string
}

// Option defines a configuration option for a store.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

type foodKey struct {
	userID int64
	day    string
}

// InMemoryStore keeps everything in maps. Used in tests and as a
// fallback when no DSN is configured.
type InMemoryStore struct {
	mu        sync.RWMutex
	profiles  map[int64]models.Profile
	foodLog   map[foodKey][]models.EatenEntry
	summaries map[foodKey]models.DaySummary
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles:  make(map[int64]models.Profile),
		foodLog:   make(map[foodKey][]models.EatenEntry),
		summaries: make(map[foodKey]models.DaySummary),
	}
}

func (s *InMemoryStore) SaveProfile(p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return nil
}

func (s *InMemoryStore) LoadProfile(userID int64) (models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *InMemoryStore) ListProfiles() ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (s *InMemoryStore) AppendFoodLog(userID int64, e models.EatenEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := foodKey{userID, e.Day}
	s.foodLog[k] = append(s.foodLog[k], e)
	return nil
}

func (s *InMemoryStore) QueryFoodLog(userID int64, day string) ([]models.EatenEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.foodLog[foodKey{userID, day}]
	out := make([]models.EatenEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *InMemoryStore) SaveDaySummary(userID int64, sum models.DaySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[foodKey{userID, sum.Day}] = sum
	return nil
}

func (s *InMemoryStore) LoadDaySummary(userID int64, day string) (models.DaySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.summaries[foodKey{userID, day}]
	if !ok {
		return models.DaySummary{}, ErrNotFound
	}
	return sum, nil
}

func (s *InMemoryStore) Close() error { return nil }
