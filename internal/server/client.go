// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/RMblue101/anarcroom-server/internal/metrics"
	"github.com/RMblue101/anarcroom-server/internal/room"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

// Client represents one WebSocket connection attached to the gateway. It owns
// the read and write pumps and is the connection handle room memberships
// reference. The id is transport-assigned and unique per connection.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	gateway *Gateway
	addr    string
	closed  bool
	limiter *tokenBucket
	log     zerolog.Logger
}

func newClient(conn *websocket.Conn, gw *Gateway, addr string) *Client {
	if conn != nil {
		conn.SetReadLimit(gw.cfg.MaxMessageSize)
	}
	id := uuid.NewString()
	return &Client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		gateway: gw,
		addr:    addr,
		limiter: newTokenBucket(gw.cfg.RateLimit.Burst, gw.cfg.RateLimit.RefillInterval),
		log:     gw.log.With().Str("conn", id).Str("addr", addr).Logger(),
	}
}

// ID returns the transport-assigned connection identifier.
func (c *Client) ID() string {
	return c.id
}

// Enqueue hands a frame to the write pump without blocking. It reports false
// when the client is gone or its buffer is full; the frame is then dropped.
func (c *Client) Enqueue(frame []byte) bool {
	return c.gateway.safeSend(c, frame)
}

// setupReadConnection configures the read deadline and pong handler.
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn().Err(err).Msg("error setting initial read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.Warn().Err(err).Msg("error setting read deadline in pong handler")
		}
		return nil
	})
}

// handleReadError logs the read failure at a severity matching how expected
// it is.
func (c *Client) handleReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn().Int64("limit", c.gateway.cfg.MaxMessageSize).Msg("frame exceeded maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Debug().Err(err).Msg("client disconnected")
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.log.Debug().Err(err).Msg("connection closed")
	default:
		c.log.Warn().Err(err).Msg("websocket read error")
	}
}

// forwardFrame decodes the wire envelope and hands it to the gateway's event
// loop. Malformed frames are dropped without a response.
func (c *Client) forwardFrame(raw []byte) {
	var frame room.Frame
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
		metrics.FramesRejected.Inc()
		c.log.Debug().Msg("malformed frame discarded")
		return
	}

	select {
	case c.gateway.inbound <- inboundFrame{client: c, frame: frame}:
	case <-c.gateway.ctx.Done():
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.gateway.unregister <- c:
		case <-c.gateway.ctx.Done():
		}
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Debug().Err(err).Msg("error closing connection in read pump")
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			break
		}

		if c.limiter != nil && !c.limiter.allow() {
			metrics.FramesRejected.Inc()
			c.log.Debug().Msg("rate limit exceeded; discarding frame")
			continue
		}

		c.forwardFrame(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Debug().Err(err).Msg("error closing connection in write pump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.Debug().Err(err).Msg("error setting write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Debug().Err(err).Msg("error writing frame")
				}
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.gateway.ctx.Done():
			return
		}
	}
}

// isExpectedCloseError checks if an error is expected during connection
// closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
