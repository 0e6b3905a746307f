package room

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/RMblue101/anarcroom-server/internal/metrics"
)

// Defaults for the store and reaper policy values.
const (
	DefaultHistoryLimit = 500
	DefaultIdleTimeout  = 5 * time.Minute
	DefaultReapInterval = 5 * time.Minute
)

// Config bounds the store's memory and staleness behavior.
type Config struct {
	HistoryLimit int
	IdleTimeout  time.Duration
}

// Store owns every room in the process. All mutations go through its lock,
// so the gateway's event loop and the concurrently ticking reaper never race
// on a room. The store holds no room with zero members at rest; emptiness is
// checked after every membership mutation.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
}

// NewStore creates an empty store. Zero config values fall back to defaults.
func NewStore(cfg Config, logger zerolog.Logger) *Store {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &Store{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		log:   logger.With().Str("component", "room-store").Logger(),
		now:   time.Now,
	}
}

// getOrCreate returns the room, creating it when absent. Callers must hold mu.
func (s *Store) getOrCreate(id string) *Room {
	rm := s.rooms[id]
	if rm == nil {
		rm = newRoom(id)
		s.rooms[id] = rm
		metrics.RoomsActive.Inc()
		s.log.Debug().Str("room", id).Msg("room created")
	}
	return rm
}

// deleteIfEmpty removes the room iff it has zero members, reporting whether
// it was deleted. Callers must hold mu.
func (s *Store) deleteIfEmpty(id string) bool {
	rm := s.rooms[id]
	if rm == nil || len(rm.Members) > 0 {
		return false
	}
	delete(s.rooms, id)
	metrics.RoomsActive.Dec()
	s.log.Debug().Str("room", id).Msg("room deleted")
	return true
}

// Rooms reports the number of rooms currently tracked.
func (s *Store) Rooms() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Members reports the member count of a room; ok is false for unknown rooms.
func (s *Store) Members(roomID string) (count int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm := s.rooms[roomID]
	if rm == nil {
		return 0, false
	}
	return len(rm.Members), true
}
