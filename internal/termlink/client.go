package termlink

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one terminal's websocket connection into the Hub.
type Client struct {
	id        string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient wraps conn for terminalID. The client's hub id is terminalID,
// so a reconnecting terminal keeps its id; a random uuid is used only when
// terminalID is empty.
func NewClient(conn *websocket.Conn, terminalID string, hub *Hub) *Client {
	id := terminalID
	if id == "" {
		id = uuid.New().String()
	}
	return &Client{id: id, conn: conn, hub: hub, send: make(chan []byte, 256)}
}

// ID returns the terminal's id within the hub.
func (c *Client) ID() string { return c.id }

// Send queues data for delivery; returns ErrClientClosed if the client is
// gone or its outbound buffer is full (a slow/dead terminal never blocks
// the hub).
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientClosed
	}
}

// Close tears down the connection; safe to call more than once.
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		closeErr = c.conn.Close()
	})
	return closeErr
}

// ReadPump drains inbound frames (terminal-originated signals, e.g. a
// check-voided notice) until the connection closes. Run in its own
// goroutine.
func (c *Client) ReadPump(onSignal func(Client *Client, raw []byte)) {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("terminal_id", c.id).Msg("terminal link unexpected close")
			}
			return
		}
		if onSignal != nil {
			onSignal(c, msg)
		}
	}
}

// WritePump delivers queued signals and periodic pings. Run in its own
// goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().Err(err).Str("terminal_id", c.id).Msg("terminal link write error")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
