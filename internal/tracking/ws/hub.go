package ws

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 20 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Logger defines minimal logging interface required by the hub.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

type conn struct {
	sock       *websocket.Conn
	mu         sync.Mutex
	deliveryID int64 // 0 means subscribed to every delivery
}

// TrackingHub manages websocket connections for tracking-page clients.
// Clients may subscribe to a single delivery via ?delivery_id=N or receive
// every applied update when the parameter is omitted.
type TrackingHub struct {
	logger   Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	nextID int64
	conns  map[int64]*conn
}

// NewTrackingHub constructs a tracking hub.
func NewTrackingHub(logger Logger) *TrackingHub {
	return &TrackingHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[int64]*conn),
	}
}

// ServeWS upgrades the request and registers the client.
func (h *TrackingHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	var deliveryID int64
	if v := r.URL.Query().Get("delivery_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid delivery_id", http.StatusBadRequest)
			return
		}
		deliveryID = id
	}

	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("tracking ws upgrade failed: %v", err)
		}
		return
	}

	c := &conn{sock: sock, deliveryID: deliveryID}
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.conns[id] = c
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Infof("tracking client %d connected (delivery %d)", id, deliveryID)
	}

	go h.pingLoop(id, c)
	go h.readLoop(id, c)
}

// BroadcastUpdate sends the payload to clients subscribed to the delivery
// and to clients with no filter.
func (h *TrackingHub) BroadcastUpdate(deliveryID int64, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		if h.logger != nil {
			h.logger.Errorf("tracking ws marshal failed: %v", err)
		}
		return
	}

	h.mu.RLock()
	targets := make(map[int64]*conn)
	for id, c := range h.conns {
		if c.deliveryID == 0 || c.deliveryID == deliveryID {
			targets[id] = c
		}
	}
	h.mu.RUnlock()

	for id, c := range targets {
		h.safeWrite(id, c, func(sock *websocket.Conn) error {
			return sock.WriteMessage(websocket.TextMessage, data)
		})
	}
}

func (h *TrackingHub) pingLoop(id int64, c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		h.mu.RLock()
		alive := h.conns[id] == c
		h.mu.RUnlock()
		if !alive {
			return
		}
		h.safeWrite(id, c, func(sock *websocket.Conn) error {
			return sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		})
	}
}

func (h *TrackingHub) readLoop(id int64, c *conn) {
	defer h.closeConn(id, c)

	c.sock.SetReadLimit(16 << 10)
	c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		c.sock.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, message, err := c.sock.ReadMessage()
		if err != nil {
			return
		}
		c.sock.SetReadDeadline(time.Now().Add(pongWait))
		if mt == websocket.TextMessage {
			trimmed := strings.TrimSpace(string(message))
			if strings.EqualFold(trimmed, "ping") {
				// Serialized with broadcasts through the per-conn mutex.
				h.safeWrite(id, c, func(sock *websocket.Conn) error {
					return sock.WriteMessage(websocket.TextMessage, []byte("pong"))
				})
			}
		}
	}
}

func (h *TrackingHub) closeConn(id int64, c *conn) {
	_ = c.sock.Close()
	h.mu.Lock()
	if current, ok := h.conns[id]; ok && current == c {
		delete(h.conns, id)
	}
	h.mu.Unlock()
}

func (h *TrackingHub) safeWrite(id int64, c *conn, fn func(*websocket.Conn) error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sock.SetWriteDeadline(time.Now().Add(writeWait))
	if err := fn(c.sock); err != nil {
		if h.logger != nil {
			h.logger.Errorf("tracking client %d write failed: %v", id, err)
		}
		h.closeConn(id, c)
	}
}
