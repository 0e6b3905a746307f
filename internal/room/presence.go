package room

// Join inserts or overwrites the member and returns the events to emit: the
// updated presence count and the joined user to the whole room, plus a
// history snapshot addressed only to the joining connection. A later join
// under the same user overwrites the previous connection reference
// (last-writer-wins); the orphaned connection simply stops receiving room
// traffic.
func (s *Store) Join(roomID, userID string, conn Conn) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.getOrCreate(roomID)
	rm.Members[userID] = &Member{UserID: userID, Conn: conn, LastSeen: s.now()}

	s.log.Debug().Str("room", roomID).Str("user", userID).Int("members", len(rm.Members)).Msg("user joined")

	targets := rm.conns()
	return []Event{
		{Name: EventPresenceUpdated, Room: roomID, Payload: len(rm.Members), Targets: targets},
		{Name: EventUserJoined, Room: roomID, Payload: userID, Targets: targets},
		{Name: EventHistorySnapshot, Room: roomID, Payload: rm.snapshotHistory(), Targets: []Conn{conn}},
	}
}

// Leave removes the member and deletes the room if it is now empty;
// otherwise the remaining members get the updated presence count. An unknown
// room is a no-op.
func (s *Store) Leave(roomID, userID string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.rooms[roomID]
	if rm == nil {
		return nil
	}
	delete(rm.Members, userID)
	if s.deleteIfEmpty(roomID) {
		return nil
	}

	s.log.Debug().Str("room", roomID).Str("user", userID).Int("members", len(rm.Members)).Msg("user left")

	return []Event{
		{Name: EventPresenceUpdated, Room: roomID, Payload: len(rm.Members), Targets: rm.conns()},
	}
}

// Disconnect removes every membership held by the connection, scanning all
// rooms by connection ID, and emits exactly one presence update per affected
// room that still has members. Emptied rooms are deleted.
func (s *Store) Disconnect(conn Conn) []Event {
	if conn == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var events []Event
	for id, rm := range s.rooms {
		removed := 0
		for userID, m := range rm.Members {
			if m.Conn != nil && m.Conn.ID() == conn.ID() {
				delete(rm.Members, userID)
				removed++
			}
		}
		if removed == 0 {
			continue
		}
		s.log.Debug().Str("room", id).Str("conn", conn.ID()).Int("removed", removed).Msg("connection left room")
		if s.deleteIfEmpty(id) {
			continue
		}
		events = append(events, Event{
			Name: EventPresenceUpdated, Room: id, Payload: len(rm.Members), Targets: rm.conns(),
		})
	}
	return events
}

// Heartbeat refreshes the member's last-seen timestamp. Unknown room or user
// is silently ignored; heartbeats can race with reaping.
func (s *Store) Heartbeat(roomID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.rooms[roomID]
	if rm == nil {
		return
	}
	if m := rm.Members[userID]; m != nil {
		m.LastSeen = s.now()
	}
}
