// Package testhelpers provides common utilities for testing the Anarcroom
// server.
//
// It contains reusable helpers shared across the integration tests: spinning
// up test servers, dialing WebSocket connections, and exchanging event
// frames, to reduce duplication in test files.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RMblue101/anarcroom-server/internal/room"
)

// CreateTestServer creates a test HTTP server with the given handler.
// It returns a running httptest.Server that should be closed after use.
func CreateTestServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// executed.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// WebSocketURL converts an httptest server URL to its ws:// equivalent.
func WebSocketURL(serverURL string) string {
	return strings.Replace(serverURL, "http://", "ws://", 1) + "/ws"
}

// ConnectWebSocket creates a WebSocket connection to the specified URL with
// a test origin header set.
func ConnectWebSocket(url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	headers := http.Header{}
	headers.Set("Origin", "http://localhost:3000")

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// SendEvent writes an event frame over the WebSocket connection.
func SendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal %s payload: %v", event, err)
	}
	if err := conn.WriteJSON(room.Frame{Event: event, Data: payload}); err != nil {
		t.Fatalf("Failed to send %s: %v", event, err)
	}
}

// ReceiveEvent reads the next event frame from the connection, failing the
// test after the timeout.
func ReceiveEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) room.Frame {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}

	var frame room.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	return frame
}

// WaitForEvent reads frames until one with the given name arrives, failing
// the test if it does not show up within the timeout.
func WaitForEvent(t *testing.T, conn *websocket.Conn, name string, timeout time.Duration) room.Frame {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		frame := ReceiveEvent(t, conn, time.Until(deadline))
		if frame.Event == name {
			return frame
		}
	}
	t.Fatalf("Event %q did not arrive within %s", name, timeout)
	return room.Frame{}
}

// DecodeData unmarshals a frame's payload into out.
func DecodeData(t *testing.T, frame room.Frame, out any) {
	t.Helper()
	if err := json.Unmarshal(frame.Data, out); err != nil {
		t.Fatalf("Failed to decode %s payload: %v", frame.Event, err)
	}
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
