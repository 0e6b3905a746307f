// Package room implements the membership and broadcast engine: a store of
// named rooms with capped message history, presence tracking per connection,
// best-effort fan-out, and periodic reaping of idle members.
package room

import "encoding/json"

// Outbound event names.
const (
	EventPresenceUpdated = "presence-updated"
	EventUserJoined      = "user-joined"
	EventMessage         = "message"
	EventHistorySnapshot = "history-snapshot"
)

// Inbound event names.
const (
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-message"
	EventLeaveRoom   = "leave-room"
	EventHeartbeat   = "heartbeat"
)

// Conn is the transport handle a member is reachable through. Enqueue must
// never block; a false return means the frame was dropped.
type Conn interface {
	ID() string
	Enqueue(frame []byte) bool
}

// Frame is the wire envelope carried in both directions:
// {"event": <name>, "data": <payload>}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event is an outbound event produced by a state transition. Targets are
// resolved while the store lock is held, so the delivered set matches the
// membership the transition observed.
type Event struct {
	Name    string
	Room    string
	Payload any
	Targets []Conn
}

// Encode marshals the event into its wire frame.
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: e.Name, Data: data})
}
