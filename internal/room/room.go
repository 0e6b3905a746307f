package room

import (
	"encoding/json"
	"time"
)

// Message is a chat message relayed to every member of a room. Time is a
// client-supplied value carried verbatim; the server neither validates nor
// reorders it. Messages are immutable once appended.
type Message struct {
	User string          `json:"user"`
	Text string          `json:"text"`
	Time json.RawMessage `json:"time"`
}

// Member is a user's occupancy of a room, tied to one live connection at a
// time. A later join under the same user overwrites Conn and LastSeen.
type Member struct {
	UserID   string
	Conn     Conn
	LastSeen time.Time
}

// Room groups members that share message history and presence. A room is
// created on first join or first message and destroyed once its last member
// leaves, disconnects, or is reaped.
type Room struct {
	ID      string
	Members map[string]*Member
	History []Message
}

func newRoom(id string) *Room {
	return &Room{ID: id, Members: make(map[string]*Member)}
}

// append adds a message to the history, evicting the oldest entry once the
// cap is exceeded.
func (r *Room) append(msg Message, limit int) {
	r.History = append(r.History, msg)
	if limit > 0 && len(r.History) > limit {
		r.History = r.History[1:]
	}
}

// snapshotHistory copies the history so it can be handed out after the store
// lock is released.
func (r *Room) snapshotHistory() []Message {
	snapshot := make([]Message, len(r.History))
	copy(snapshot, r.History)
	return snapshot
}

// conns returns the connections of all current members.
func (r *Room) conns() []Conn {
	targets := make([]Conn, 0, len(r.Members))
	for _, m := range r.Members {
		if m.Conn != nil {
			targets = append(targets, m.Conn)
		}
	}
	return targets
}
