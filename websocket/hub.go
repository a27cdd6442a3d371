package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is a message pushed to a connected client.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub maintains the set of active clients, keyed by user, and pushes
// notification events to every device a user has connected.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Users mapping (userID -> clients)
	users map[string]map[*Client]bool

	// Mutex for users map
	usersMux sync.RWMutex

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		users:      make(map[string]map[*Client]bool),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

			h.usersMux.Lock()
			if _, ok := h.users[client.userID]; !ok {
				h.users[client.userID] = make(map[*Client]bool)
			}
			h.users[client.userID][client] = true
			h.usersMux.Unlock()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				h.usersMux.Lock()
				if clients, ok := h.users[client.userID]; ok {
					delete(clients, client)
					// Clean up entries with no remaining connections
					if len(clients) == 0 {
						delete(h.users, client.userID)
					}
				}
				h.usersMux.Unlock()
			}
		}
	}
}

// SendToUser pushes an event to every connection the user has open. Users
// with no open connection are skipped silently; push notifications cover
// the offline path.
func (h *Hub) SendToUser(userID string, eventType string, payload interface{}) {
	msgBytes, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("error marshaling event: %v", err)
		return
	}

	h.usersMux.RLock()
	defer h.usersMux.RUnlock()

	if clients, ok := h.users[userID]; ok {
		for client := range clients {
			select {
			case client.send <- msgBytes:
			default:
				close(client.send)
				delete(clients, client)
				delete(h.clients, client)
			}
		}
	}
}
