package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vdtran/werewolf-gm/internal/auth"
	"github.com/vdtran/werewolf-gm/internal/websocket"
)

// WSHandler upgrades the two live connections of a game: the public observer
// feed and the game-master session.
type WSHandler struct {
	manager     *GameManager
	hub         *websocket.Hub
	tokenSecret []byte
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(manager *GameManager, hub *websocket.Hub, tokenSecret []byte) *WSHandler {
	return &WSHandler{manager: manager, hub: hub, tokenSecret: tokenSecret}
}

// HandleObserver handles GET /ws/games/{id}/observe: a read-only feed of
// public announcements. No authentication required.
func (h *WSHandler) HandleObserver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.manager.Get(id) == nil {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}
	websocket.ServeObserver(h.hub, id, w, r)
}

// HandleGM handles GET /ws/games/{id}/gm: the game-master seat. The session
// token is passed as a query parameter because browsers cannot set headers on
// WebSocket upgrades. Attaching starts the game.
func (h *WSHandler) HandleGM(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess := h.manager.Get(id)
	if sess == nil {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}
	if sess.Mode != ModeGM {
		http.Error(w, "game is not game-master moderated", http.StatusConflict)
		return
	}
	if len(h.tokenSecret) > 0 {
		claims, err := auth.VerifyToken(r.URL.Query().Get("token"), h.tokenSecret)
		if err != nil || claims.Subject != auth.SubjectGameMaster {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}
	if sess.Started() {
		http.Error(w, "game already has a game master", http.StatusConflict)
		return
	}

	gm, err := websocket.ServeGM(id, w, r)
	if err != nil {
		log.Printf("gm upgrade failed for game %s: %v", id, err)
		return
	}
	if err := h.manager.AttachGM(sess, gm); err != nil {
		log.Printf("gm attach failed for game %s: %v", id, err)
		gm.Close()
	}
}
