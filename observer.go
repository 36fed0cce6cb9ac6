package sim

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hollowmarch/sim/internal/telemetry"
)

const observerWriteWait = 5 * time.Second

type observerConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// ObserverHub fans world snapshots out to read-only WebSocket subscribers.
// Observers never issue commands; a connection that fails a write is dropped.
type ObserverHub struct {
	mu       sync.Mutex
	conns    map[*observerConn]struct{}
	upgrader websocket.Upgrader
	logger   telemetry.Logger
}

// NewObserverHub creates a hub with no subscribers.
func NewObserverHub(logger telemetry.Logger) *ObserverHub {
	return &ObserverHub{
		conns: make(map[*observerConn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Handler upgrades HTTP requests to observer connections.
func (h *ObserverHub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logf("observer upgrade failed: %v", err)
			return
		}
		sub := &observerConn{conn: conn}
		h.mu.Lock()
		h.conns[sub] = struct{}{}
		count := len(h.conns)
		h.mu.Unlock()
		h.logf("observer connected (%d active)", count)

		// Drain reads so pings and close frames are processed; observers
		// have nothing meaningful to say.
		go func() {
			defer h.drop(sub)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})
}

// Broadcast marshals the snapshot once and writes it to every subscriber.
// Connections that miss the write deadline are disconnected.
func (h *ObserverHub) Broadcast(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logf("observer snapshot marshal failed: %v", err)
		return
	}

	h.mu.Lock()
	subs := make([]*observerConn, 0, len(h.conns))
	for sub := range h.conns {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(observerWriteWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			h.logf("observer write failed: %v", err)
			h.drop(sub)
		}
	}
}

// Close disconnects every subscriber.
func (h *ObserverHub) Close() {
	h.mu.Lock()
	subs := make([]*observerConn, 0, len(h.conns))
	for sub := range h.conns {
		subs = append(subs, sub)
	}
	h.conns = make(map[*observerConn]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		sub.conn.Close()
	}
}

func (h *ObserverHub) drop(sub *observerConn) {
	h.mu.Lock()
	_, ok := h.conns[sub]
	if ok {
		delete(h.conns, sub)
	}
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

func (h *ObserverHub) logf(format string, args ...any) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Printf(format, args...)
}
