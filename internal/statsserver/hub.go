// Package statsserver is a WebSocket hub that pushes statistics snapshots to
// connected dashboard clients. It has no scheduling authority and accepts no
// commands from clients — it is a read-only boundary onto the simulation.
//
// Grounded on internal/mesh/ws.go's upgrader/HandleWebSocket shape, trimmed
// down from a bidirectional node protocol to one-way broadcast.
package statsserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ssd-technologies/multikernel/internal/message"
	"github.com/ssd-technologies/multikernel/internal/ratelimit"
)

// Snapshot is the JSON payload pushed to every connected client.
type Snapshot struct {
	Type      string                   `json:"type"`
	System    message.SystemStatistics `json:"system"`
	Timestamp time.Time                `json:"timestamp"`
}

// Source is whatever the hub polls for snapshots. *coordinator.Coordinator
// satisfies this without statsserver needing to import it.
type Source interface {
	GetStatistics() message.SystemStatistics
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientSendBuffer bounds how far a slow client can lag before the hub drops
// it rather than block the broadcast loop on one stuck socket.
const clientSendBuffer = 8

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans one statistics snapshot out to every connected client on a fixed
// interval. It holds no simulation state of its own.
type Hub struct {
	source   Source
	interval time.Duration
	log      *log.Logger

	mu      sync.Mutex
	clients map[*client]bool

	register   chan *client
	unregister chan *client

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHub builds a Hub that polls source every interval.
func NewHub(source Source, interval time.Duration, out *log.Logger) *Hub {
	return &Hub{
		source:     source,
		interval:   interval,
		log:        log.New(out.Writer(), "[DASHBOARD] ", out.Flags()),
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		stopCh:     make(chan struct{}),
	}
}

// Run drives the broadcast loop until Stop is called. Intended to be run in
// its own goroutine by the caller.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case <-ticker.C:
			h.broadcast()
		}
	}
}

// Stop ends the broadcast loop and closes every connected client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) broadcast() {
	snap := Snapshot{
		Type:      "statistics",
		System:    h.source.GetStatistics(),
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		h.log.Printf("marshal snapshot: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// client is too far behind; drop it rather than block the
			// broadcast on one slow socket.
			h.log.Printf("dropping slow client")
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// HandleWebSocket upgrades the connection and registers it for broadcast.
// Clients are push-only: anything they send is read and discarded purely to
// detect disconnects.
func (h *Hub) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Printf("upgrade error: %v", err)
			return
		}

		c := &client{conn: conn, send: make(chan []byte, clientSendBuffer)}
		h.register <- c

		go h.writePump(c)
		h.readPump(c)
	}
}

// readPumpRate bounds how many frames a single client may send before the
// hub disconnects it; clients are push-only and have no legitimate reason to
// send often.
const readPumpRate = 30

// readPump discards inbound frames; its job is to notice the socket close so
// the client gets unregistered, and to disconnect anything sending faster
// than a well-behaved dashboard client would.
func (h *Hub) readPump(c *client) {
	limiter := ratelimit.New(readPumpRate, time.Minute)
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.stopCh:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		if !limiter.Allow() {
			h.log.Printf("disconnecting client exceeding inbound rate limit")
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
