package room

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/RMblue101/anarcroom-server/internal/metrics"
)

// Reap removes members whose last-seen timestamp is older than the idle
// timeout and deletes emptied rooms, returning presence updates for rooms
// that keep members. A failure sweeping one room is logged and does not
// abort the sweep of the rest.
func (s *Store) Reap(now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []Event
	for id, rm := range s.rooms {
		if ev, ok := s.sweepRoom(id, rm, now); ok {
			events = append(events, ev)
		}
	}
	return events
}

// sweepRoom evicts stale members from one room. Callers must hold mu.
func (s *Store) sweepRoom(id string, rm *Room, now time.Time) (ev Event, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("room", id).Msg("recovered from panic sweeping room")
			ok = false
		}
	}()

	removed := 0
	for userID, m := range rm.Members {
		if now.Sub(m.LastSeen) > s.cfg.IdleTimeout {
			delete(rm.Members, userID)
			removed++
		}
	}
	if removed > 0 {
		metrics.MembersReaped.Add(float64(removed))
		s.log.Info().Str("room", id).Int("reaped", removed).Int("members", len(rm.Members)).Msg("idle members reaped")
	}
	if s.deleteIfEmpty(id) || removed == 0 {
		return Event{}, false
	}
	return Event{Name: EventPresenceUpdated, Room: id, Payload: len(rm.Members), Targets: rm.conns()}, true
}

// Reaper periodically sweeps idle members out of the store. Reaping is
// advisory cleanup and never fatal.
type Reaper struct {
	store    *Store
	interval time.Duration
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewReaper creates a reaper sweeping the store on a fixed period. A zero
// interval falls back to the default.
func NewReaper(store *Store, interval time.Duration, logger zerolog.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reaper{
		store:    store,
		interval: interval,
		log:      logger.With().Str("component", "reaper").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Run ticks until Stop is called. It should be called in its own goroutine.
func (r *Reaper) Run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.store.Dispatch(r.store.Reap(time.Now()))
		}
	}
}

// Stop halts the ticker and waits for the loop to exit.
func (r *Reaper) Stop() {
	r.cancel()
	<-r.done
}
