package room

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory connection handle recording delivered frames.
type fakeConn struct {
	id     string
	frames [][]byte
	full   bool
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Enqueue(frame []byte) bool {
	if f.full {
		return false
	}
	f.frames = append(f.frames, frame)
	return true
}

func newTestStore() *Store {
	return NewStore(Config{}, zerolog.Nop())
}

func eventByName(t *testing.T, events []Event, name string) Event {
	t.Helper()
	for _, ev := range events {
		if ev.Name == name {
			return ev
		}
	}
	t.Fatalf("no %q event in %v", name, events)
	return Event{}
}

func TestJoinCreatesRoomAndReturnsEvents(t *testing.T) {
	s := newTestStore()
	conn := &fakeConn{id: "c1"}

	events := s.Join("lobby", "alice", conn)

	require.Len(t, events, 3)
	assert.Equal(t, EventPresenceUpdated, events[0].Name)
	assert.Equal(t, 1, events[0].Payload)
	assert.Equal(t, EventUserJoined, events[1].Name)
	assert.Equal(t, "alice", events[1].Payload)
	assert.Equal(t, EventHistorySnapshot, events[2].Name)
	assert.Empty(t, events[2].Payload)
	require.Len(t, events[2].Targets, 1)
	assert.Equal(t, conn, events[2].Targets[0])

	assert.Equal(t, 1, s.Rooms())
	count, ok := s.Members("lobby")
	require.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestJoinSameUserOverwritesConnection(t *testing.T) {
	s := newTestStore()
	first := &fakeConn{id: "c1"}
	second := &fakeConn{id: "c2"}

	s.Join("lobby", "alice", first)
	events := s.Join("lobby", "alice", second)

	// Still one member; the second connection wins.
	assert.Equal(t, 1, eventByName(t, events, EventPresenceUpdated).Payload)
	assert.Equal(t, second, s.rooms["lobby"].Members["alice"].Conn)

	// Disconnecting the orphaned first connection changes nothing.
	assert.Empty(t, s.Disconnect(first))
	count, ok := s.Members("lobby")
	require.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	s := newTestStore()
	s.Join("lobby", "alice", &fakeConn{id: "c1"})

	events := s.Leave("lobby", "alice")

	assert.Empty(t, events)
	assert.Equal(t, 0, s.Rooms())
}

func TestLeaveBroadcastsUpdatedCount(t *testing.T) {
	s := newTestStore()
	s.Join("lobby", "alice", &fakeConn{id: "c1"})
	bob := &fakeConn{id: "c2"}
	s.Join("lobby", "bob", bob)

	events := s.Leave("lobby", "alice")

	require.Len(t, events, 1)
	assert.Equal(t, EventPresenceUpdated, events[0].Name)
	assert.Equal(t, 1, events[0].Payload)
	require.Len(t, events[0].Targets, 1)
	assert.Equal(t, bob, events[0].Targets[0])
}

func TestLeaveUnknownRoomIsNoOp(t *testing.T) {
	s := newTestStore()

	assert.Empty(t, s.Leave("nowhere", "alice"))
	assert.Equal(t, 0, s.Rooms())
}

func TestPresenceCountTracksMembershipSequence(t *testing.T) {
	s := newTestStore()
	users := []string{"alice", "bob", "carol"}

	for i, user := range users {
		events := s.Join("lobby", user, &fakeConn{id: user})
		assert.Equal(t, i+1, eventByName(t, events, EventPresenceUpdated).Payload)
	}

	for i, user := range users[:2] {
		events := s.Leave("lobby", user)
		assert.Equal(t, len(users)-i-1, eventByName(t, events, EventPresenceUpdated).Payload)
	}

	// No empty room survives a membership mutation.
	s.Leave("lobby", "carol")
	assert.Equal(t, 0, s.Rooms())
}

func TestStoreDefaults(t *testing.T) {
	s := NewStore(Config{}, zerolog.Nop())

	assert.Equal(t, DefaultHistoryLimit, s.cfg.HistoryLimit)
	assert.Equal(t, DefaultIdleTimeout, s.cfg.IdleTimeout)
}

func TestMembersUnknownRoom(t *testing.T) {
	s := newTestStore()

	count, ok := s.Members("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, count)
}

// advance shifts the store clock so idle behavior can be tested without
// sleeping.
func (s *Store) advance(d time.Duration) {
	base := s.now()
	s.now = func() time.Time { return base.Add(d) }
}
