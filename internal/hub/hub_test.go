package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBroadcastReachesClientAndShutdownEndsStream(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	hubStopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(hubStopped)
	}()

	server := httptest.NewServer(h)
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("connect to event stream: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readLine := func() string {
		t.Helper()
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		return line
	}

	if line := readLine(); !strings.HasPrefix(line, ": connected") {
		t.Fatalf("greeting = %q, want \": connected\"", line)
	}
	readLine() // blank line ending the greeting

	if n := h.ClientCount(); n != 1 {
		t.Fatalf("ClientCount() = %d, want 1", n)
	}

	h.Broadcast(map[string]string{"type": "mesh-fetched"})
	if line := readLine(); !strings.Contains(line, "mesh-fetched") {
		t.Errorf("broadcast line = %q, want mesh-fetched event", line)
	}

	// Shutting the hub down must release the connected handler, or
	// server.Close would wait on it forever.
	cancel()
	select {
	case <-hubStopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after context cancellation")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := reader.ReadString('\n'); err != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event stream still open after hub shutdown")
		}
	}
}

func TestServeHTTPRejectsClientsAfterShutdown(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after context cancellation")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/events", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status after shutdown = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
