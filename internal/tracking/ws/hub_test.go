package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

func dialHub(t *testing.T, h *TrackingHub, query string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestServeWSRejectsInvalidDeliveryID(t *testing.T) {
	h := NewTrackingHub(nopLogger{})
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?delivery_id=abc")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad delivery_id, got %d", resp.StatusCode)
	}
}

func TestHubPingPong(t *testing.T) {
	h := NewTrackingHub(nopLogger{})
	conn := dialHub(t, h, "")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != "pong" {
		t.Fatalf("expected pong, got %q", msg)
	}
}

func TestBroadcastUpdateFiltersByDelivery(t *testing.T) {
	h := NewTrackingHub(nopLogger{})
	conn := dialHub(t, h, "?delivery_id=7")

	// Ping first so registration is known to be complete.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read pong: %v", err)
	}

	h.BroadcastUpdate(8, map[string]int64{"delivery_id": 8})
	h.BroadcastUpdate(7, map[string]int64{"delivery_id": 7})

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	var payload map[string]int64
	if err := json.Unmarshal(msg, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["delivery_id"] != 7 {
		t.Fatalf("expected only the subscribed delivery, got %v", payload)
	}
}

func TestConcurrentPingsAndBroadcasts(t *testing.T) {
	h := NewTrackingHub(nopLogger{})
	conn := dialHub(t, h, "")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read pong: %v", err)
	}

	const rounds = 20
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			h.BroadcastUpdate(0, map[string]int{"n": i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
				return
			}
		}
	}()

	// Replies and broadcasts interleave; all writes go through the per-conn
	// mutex, so every message must arrive intact.
	pongs, broadcasts := 0, 0
	for i := 0; i < 2*rounds; i++ {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if string(msg) == "pong" {
			pongs++
		} else {
			broadcasts++
		}
	}
	wg.Wait()
	if pongs != rounds || broadcasts != rounds {
		t.Fatalf("expected %d pongs and %d broadcasts, got %d and %d", rounds, rounds, pongs, broadcasts)
	}
}
