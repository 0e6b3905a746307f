package integration

import (
	"io"
	"net/http"
	"testing"

	"github.com/RMblue101/anarcroom-server/test/testhelpers"
)

func TestHealthEndpointReturnsFixedBody(t *testing.T) {
	ts := startTestServer(t, nil)

	resp := testhelpers.MakeRequest(t, http.MethodGet, ts.http.URL+"/")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	if len(body) == 0 {
		t.Error("Expected non-empty health body")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := startTestServer(t, nil)

	resp := testhelpers.MakeRequest(t, http.MethodGet, ts.http.URL+"/metrics")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)
}

func TestTestPageServed(t *testing.T) {
	ts := startTestServer(t, nil)

	resp := testhelpers.MakeRequest(t, http.MethodGet, ts.http.URL+"/test")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)
}

func TestWebSocketEndpointRejectsPlainRequest(t *testing.T) {
	ts := startTestServer(t, nil)

	resp := testhelpers.MakeRequest(t, http.MethodGet, ts.http.URL+"/ws")
	defer func() { _ = resp.Body.Close() }()

	// Without an Upgrade header the handshake fails.
	testhelpers.AssertStatusCode(t, resp, http.StatusBadRequest)
}
