package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is one connected view. A view may narrow the notifications it
// receives to a set of entities; with no subscription it receives all.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte

	mu       sync.RWMutex
	entities map[string]bool
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Subscribe limits the client to the named entities. An empty list
// restores every notification.
func (c *Client) Subscribe(entities []string) {
	var set map[string]bool
	for _, e := range entities {
		if e = strings.TrimSpace(e); e != "" {
			if set == nil {
				set = make(map[string]bool)
			}
			set[e] = true
		}
	}
	c.mu.Lock()
	c.entities = set
	c.mu.Unlock()
}

func (c *Client) wants(entity string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entities == nil || c.entities[entity]
}

// Run serves the connection until it closes.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// subscription is the only frame a view sends.
type subscription struct {
	Subscribe []string `json:"subscribe"`
}

// readPump applies subscription frames and ignores anything else. It
// returns when the connection closes.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var sub subscription
		if json.Unmarshal(data, &sub) == nil {
			c.Subscribe(sub.Subscribe)
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
