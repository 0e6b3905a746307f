package room

import "github.com/RMblue101/anarcroom-server/internal/metrics"

// Send appends the message to the room history, evicting the oldest entry
// past the cap, and returns a message event addressed to every current
// member. The room is created if absent; messages for a room with no tracked
// members are tolerated (the reaper collects the empty room later).
func (s *Store) Send(roomID string, msg Message) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.getOrCreate(roomID)
	rm.append(msg, s.cfg.HistoryLimit)
	metrics.MessagesBroadcast.Inc()

	return []Event{
		{Name: EventMessage, Room: roomID, Payload: msg, Targets: rm.conns()},
	}
}

// Dispatch encodes each event and enqueues it on every target connection.
// Delivery is best-effort: a full or dead connection is skipped without
// affecting the remaining recipients, and no acknowledgement is tracked.
func (s *Store) Dispatch(events []Event) {
	for _, ev := range events {
		frame, err := ev.Encode()
		if err != nil {
			s.log.Error().Err(err).Str("event", ev.Name).Str("room", ev.Room).Msg("event encode failed")
			continue
		}
		for _, conn := range ev.Targets {
			if conn == nil {
				continue
			}
			if !conn.Enqueue(frame) {
				metrics.DeliveriesDropped.Inc()
				s.log.Debug().Str("event", ev.Name).Str("room", ev.Room).Str("conn", conn.ID()).Msg("delivery dropped")
			}
		}
	}
}
