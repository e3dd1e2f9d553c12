// Package termlink implements the terminal signal-distribution fabric: a
// central Hub that every running terminal process connects to over a
// websocket, used to broadcast signals (menu reloads, settings changes,
// "someone voided a check") and Update(flag, value) notifications across
// the terminal network (spec §4.4, §5).
package termlink

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when sending to a client that has already
// disconnected.
var ErrClientClosed = errors.New("terminal link is closed")

// ClientInterface is what the Hub needs from a connected terminal link.
type ClientInterface interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Hub fans Signals out to every terminal currently connected. Safe for
// concurrent use.
type Hub struct {
	clients map[string]ClientInterface
	mu      sync.RWMutex
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]ClientInterface)}
}

// Register adds a terminal link to the hub.
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID()] = client
	log.Debug().Str("terminal_id", client.ID()).Msg("terminal link registered")
}

// Unregister removes a terminal link from the hub.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID()]; ok {
		delete(h.clients, client.ID())
		log.Debug().Str("terminal_id", client.ID()).Msg("terminal link unregistered")
	}
}

// Broadcast sends sig to every connected terminal.
func (h *Hub) Broadcast(sig Signal) {
	data, err := sig.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("signal", sig.Name).Msg("failed to serialize signal")
		return
	}

	h.mu.RLock()
	clients := make([]ClientInterface, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().Err(err).Str("terminal_id", c.ID()).Str("signal", sig.Name).Msg("failed to deliver signal")
			}
		}(c)
	}
}

// Send delivers sig to exactly one terminal, if it is still connected.
func (h *Hub) Send(terminalID string, sig Signal) error {
	h.mu.RLock()
	c, ok := h.clients[terminalID]
	h.mu.RUnlock()
	if !ok {
		return ErrClientClosed
	}
	data, err := sig.ToJSON()
	if err != nil {
		return err
	}
	return c.Send(data)
}

// ConnectedCount reports how many terminals are currently linked.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
