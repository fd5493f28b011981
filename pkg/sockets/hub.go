package sockets

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client pairs a connection with its write lock. gorilla/websocket allows
// only one concurrent writer per connection, and the initial last-payload
// send can overlap a broadcast tick.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub fans payloads out to every connected websocket client. New clients
// immediately receive the most recent payload so a freshly opened dashboard
// is not blank until the next broadcast.
type Hub struct {
	mu          sync.Mutex
	clients     map[*client]struct{}
	lastPayload []byte
	closed      bool
	upgrader    websocket.Upgrader
	onError     func(err error)
}

func NewHub(opts ...func(*Hub)) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 15 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.onError != nil {
			h.onError(err)
		}
		return
	}

	c := &client{conn: conn}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	last := h.lastPayload
	h.mu.Unlock()

	if last != nil {
		if err := c.write(last); err != nil {
			h.drop(c)
			return
		}
	}

	// Clients never send application data; the read loop only notices
	// disconnects and answers control frames.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(c)
				return
			}
		}
	}()
}

// Broadcast sends payload to every connected client, dropping clients whose
// writes fail.
func (h *Hub) Broadcast(payload []byte) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return errors.New("closed hub")
	}
	h.lastPayload = payload
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.write(payload); err != nil {
			if h.onError != nil {
				h.onError(err)
			}
			h.drop(c)
		}
	}
	return nil
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
	return nil
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}
