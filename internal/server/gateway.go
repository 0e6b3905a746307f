// Package server coordinates client registration, inbound event routing, and
// connection cleanup for the Anarcroom relay via the Gateway type.
package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/RMblue101/anarcroom-server/internal/config"
	"github.com/RMblue101/anarcroom-server/internal/metrics"
	"github.com/RMblue101/anarcroom-server/internal/room"
)

// inboundFrame pairs a decoded wire frame with the client that sent it.
type inboundFrame struct {
	client *Client
	frame  room.Frame
}

// Gateway owns every client connection and serializes all room-mutating
// events through its Run loop, so frames are applied in arrival order and
// never race each other. The idle reaper mutates the same store concurrently
// behind the store's own lock.
type Gateway struct {
	store *room.Store
	cfg   *config.Config
	log   zerolog.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame

	upgrader websocket.Upgrader
	origins  *originPolicy

	mutex  sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewGateway creates a gateway bound to the given store and configuration.
// Call Run in a separate goroutine to start processing events.
func NewGateway(store *room.Store, cfg *config.Config, logger zerolog.Logger) *Gateway {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Gateway{
		store:      store,
		cfg:        cfg,
		log:        logger.With().Str("component", "gateway").Logger(),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame, 64),
		origins:    newOriginPolicy(cfg.AllowedOrigins, logger),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     g.origins.check,
	}
	return g
}

// Run starts the gateway's main event loop, handling client registration,
// unregistration, and inbound frames. It returns when Shutdown is invoked.
func (g *Gateway) Run() {
	defer close(g.done)

	for {
		select {
		case <-g.ctx.Done():
			g.shutdownClients()
			return

		case client := <-g.register:
			g.handleRegister(client)

		case client := <-g.unregister:
			g.handleUnregister(client)

		case in := <-g.inbound:
			g.handleFrame(in.client, in.frame)
		}
	}
}

func (g *Gateway) handleRegister(client *Client) {
	if client == nil {
		g.log.Warn().Msg("nil client registration skipped")
		return
	}

	g.mutex.Lock()
	client.closed = false
	g.clients[client] = true
	clientCount := len(g.clients)
	g.mutex.Unlock()

	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsActive.Set(float64(clientCount))
	g.log.Info().Str("conn", client.id).Str("addr", client.addr).Int("clients", clientCount).Msg("client connected")

	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		client.writePump()
	}()
	go func() {
		defer g.wg.Done()
		client.readPump()
	}()
}

func (g *Gateway) handleUnregister(client *Client) {
	g.mutex.Lock()
	if _, ok := g.clients[client]; !ok {
		g.mutex.Unlock()
		return
	}
	delete(g.clients, client)
	client.closed = true
	clientCount := len(g.clients)
	g.mutex.Unlock()

	// Close the channel after releasing the lock.
	close(client.send)

	metrics.ConnectionsActive.Set(float64(clientCount))
	g.log.Info().Str("conn", client.id).Int("clients", clientCount).Msg("client disconnected")

	g.store.Dispatch(g.store.Disconnect(client))
}

// handleFrame maps one inbound event to the store operation it names. Frames
// from a client that has already been unregistered are dropped: an explicit
// leave or transport disconnect always wins over pending sends.
func (g *Gateway) handleFrame(client *Client, frame room.Frame) {
	g.mutex.RLock()
	gone := client == nil || client.closed || !g.clients[client]
	g.mutex.RUnlock()
	if gone {
		return
	}

	switch frame.Event {
	case room.EventJoinRoom:
		p, ok := decodeRoomUser(frame.Data)
		if !ok {
			g.rejectFrame(client, frame.Event)
			return
		}
		g.store.Dispatch(g.store.Join(p.Room, p.User, client))

	case room.EventSendMessage:
		var p messagePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.Room == "" || p.User == "" {
			g.rejectFrame(client, frame.Event)
			return
		}
		g.store.Dispatch(g.store.Send(p.Room, room.Message{User: p.User, Text: p.Text, Time: p.Time}))

	case room.EventLeaveRoom:
		p, ok := decodeRoomUser(frame.Data)
		if !ok {
			g.rejectFrame(client, frame.Event)
			return
		}
		g.store.Dispatch(g.store.Leave(p.Room, p.User))

	case room.EventHeartbeat:
		p, ok := decodeRoomUser(frame.Data)
		if !ok {
			g.rejectFrame(client, frame.Event)
			return
		}
		g.store.Heartbeat(p.Room, p.User)

	default:
		g.rejectFrame(client, frame.Event)
	}
}

type roomUserPayload struct {
	Room string `json:"room"`
	User string `json:"user"`
}

type messagePayload struct {
	Room string          `json:"room"`
	User string          `json:"user"`
	Text string          `json:"text"`
	Time json.RawMessage `json:"time"`
}

func decodeRoomUser(data []byte) (roomUserPayload, bool) {
	var p roomUserPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" || p.User == "" {
		return roomUserPayload{}, false
	}
	return p, true
}

// rejectFrame drops a malformed or unknown frame. The sender sees no effect,
// consistent with best-effort semantics.
func (g *Gateway) rejectFrame(client *Client, event string) {
	metrics.FramesRejected.Inc()
	g.log.Debug().Str("conn", client.id).Str("event", event).Msg("frame discarded")
}

// safeSend enqueues a frame on the client's send channel without blocking.
// The lock is held during the entire send so unregistration cannot close the
// channel mid-send.
func (g *Gateway) safeSend(client *Client, frame []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error().Interface("panic", r).Msg("recovered from panic in safeSend")
		}
	}()

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if _, exists := g.clients[client]; !exists || client.closed {
		return false
	}

	select {
	case client.send <- frame:
		return true
	default:
		return false
	}
}

// shutdownClients closes all active client connections.
func (g *Gateway) shutdownClients() {
	g.log.Info().Msg("shutting down all client connections")

	g.mutex.Lock()
	clients := make([]*Client, 0, len(g.clients))
	for client := range g.clients {
		clients = append(clients, client)
	}
	g.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				g.log.Warn().Err(err).Str("conn", client.id).Msg("error closing client connection")
			}
		}
	}

	g.log.Info().Int("clients", len(clients)).Msg("closed client connections")
}

// Shutdown initiates graceful shutdown of the gateway and waits for all
// client goroutines to complete, or until the timeout is reached.
func (g *Gateway) Shutdown(timeout time.Duration) error {
	g.log.Info().Msg("initiating gateway shutdown")

	g.cancel()
	<-g.done

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		g.log.Info().Msg("gateway shutdown completed")
		return nil
	case <-time.After(timeout):
		g.log.Warn().Msg("gateway shutdown timeout reached")
		return context.DeadlineExceeded
	}
}
