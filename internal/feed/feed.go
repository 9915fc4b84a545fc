package feed

import (
	"encoding/json"
	"sync"
)

// Event represents a real-time change notification sent to clients.
// Clients treat any event as a "re-derive your view now" signal, so duplicate
// delivery is harmless.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single subscriber connection (one SSE stream).
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub fans events out to the connected clients of each user.
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// GlobalHub is the singleton instance of the Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client for a specific user. The caller owns the
// returned registration and must Unsubscribe when the connection ends.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a client and closes its channel, signalling the owning
// handler to stop.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Fanout sends an event to every connected client of the given users.
func (h *Hub) Fanout(event Event, userIDs ...uint) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range userIDs {
		for client := range h.users[userID] {
			// Non-blocking send so a slow client cannot stall the hub.
			select {
			case client <- messageBytes:
			default:
			}
		}
	}
}
