package websocket

import (
	"log"
	"sync"

	"github.com/vdtran/werewolf-gm/internal/observer"
)

// Hub maintains the observer clients per game and fans announcements out to
// them. It implements observer.Sink for a fixed game ID via Sink().
type Hub struct {
	games map[string]map[*Client]bool

	broadcast  chan *broadcastMessage
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

type broadcastMessage struct {
	GameID  string
	Message *ServerMessage
}

// NewHub creates an empty hub. Run must be started in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *broadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.games[client.gameID] == nil {
				h.games[client.gameID] = make(map[*Client]bool)
			}
			h.games[client.gameID][client] = true
			total := len(h.games[client.gameID])
			h.mu.Unlock()
			log.Printf("ws observer registered game_id=%s total=%d", client.gameID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.games[client.gameID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.games, client.gameID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("ws observer unregistered game_id=%s", client.gameID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := h.games[msg.GameID]
			for client := range clients {
				select {
				case client.send <- msg.Message:
				default:
					// Slow observer: drop the connection rather than the game.
					close(client.send)
					delete(clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends an announcement to every observer of the game.
func (h *Hub) Broadcast(gameID string, a observer.Announcement) {
	h.broadcast <- &broadcastMessage{
		GameID:  gameID,
		Message: &ServerMessage{Type: TypeAnnouncement, Announcement: &a},
	}
}

// ObserverCount returns the number of observers connected to the game.
func (h *Hub) ObserverCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Sink adapts the hub to observer.Sink for one game.
func (h *Hub) Sink(gameID string) observer.Sink {
	return hubSink{hub: h, gameID: gameID}
}

type hubSink struct {
	hub    *Hub
	gameID string
}

func (s hubSink) Publish(a observer.Announcement) {
	s.hub.Broadcast(s.gameID, a)
}
