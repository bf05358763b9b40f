package server

import (
	"context"
	"log"
	"sync"
	"time"
)

// Message types on the /ws/plans stream.
const (
	MessageTypeSystem   = "system"
	MessageTypePlan     = "plan"
	MessageTypeProgress = "progress"
	MessageTypeFrame    = "frame"
	MessageTypeError    = "error"
	MessageTypeReplay   = "replay" // client -> server: {"type":"replay","id":"<run id>"}
)

// Message is one websocket envelope.
type Message struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessage stamps a message with the current time.
func NewMessage(typ, id string, data any) Message {
	return Message{Type: typ, ID: id, Data: data, Timestamp: time.Now().UnixMilli()}
}

// Conn is the part of a websocket connection the hub needs.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Client is one connected stream listener with its own outbound queue.
type Client struct {
	conn Conn
	send chan Message

	mu     sync.Mutex
	closed bool
}

// NewClient wraps a connection.
func NewClient(conn Conn) *Client {
	return &Client{conn: conn, send: make(chan Message, 64)}
}

// enqueue queues msg without blocking. It reports false when the client is
// closed or its queue is full.
func (c *Client) enqueue(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writeLoop drains the queue until the client is closed or a write fails.
func (c *Client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// Hub fans messages out to every registered client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *log.Logger
}

// NewHub creates a hub. Call Run to start it.
func NewHub(l *log.Logger) *Hub {
	if l == nil {
		l = log.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        l,
	}
}

// Run serves registrations and broadcasts until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				c.close()
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Printf("stream client registered (%d connected)", h.ClientCount())

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				c.close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

func (h *Hub) handleBroadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.enqueue(msg) {
			h.log.Printf("dropping slow stream client")
			delete(h.clients, c)
			c.close()
		}
	}
}

// Broadcast queues msg for every client. Messages are dropped when the hub
// is backed up.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Printf("broadcast queue full, dropping %s message", msg.Type)
	}
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
	}
}

// Unregister removes and closes a client. Unknown clients are ignored.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
