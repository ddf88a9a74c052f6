package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/vdtran/werewolf-gm/internal/game"
	"github.com/vdtran/werewolf-gm/internal/report"
)

// CreateGameRequest is the body for POST /api/games.
type CreateGameRequest struct {
	Players []string `json:"players"`
	Mode    string   `json:"mode"` // "auto" or "gm"; default "gm"
}

// GameSummary is the public view of a hosted game. It carries no roles and no
// private night information.
type GameSummary struct {
	ID      string          `json:"id"`
	Mode    string          `json:"mode"`
	Day     int             `json:"day"`
	Phase   string          `json:"phase"`
	Started bool            `json:"started"`
	Winner  string          `json:"winner,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Players []PlayerSummary `json:"players"`
}

// PlayerSummary is the public view of one seat.
type PlayerSummary struct {
	Seat   int    `json:"seat"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// GameHandler exposes game lifecycle endpoints over a GameManager.
type GameHandler struct {
	manager *GameManager
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(manager *GameManager) *GameHandler {
	return &GameHandler{manager: manager}
}

// CreateGame handles POST /api/games.
//
// @Summary      Create a game
// @Description  Set up a new game from a roster of 6-11 player names. Auto-moderated games start immediately; GM games wait for the game-master WebSocket.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        body  body  CreateGameRequest  true  "Request body"
// @Success      201   {object}  GameSummary
// @Failure      400   {string}  string  "Bad request (roster validation)"
// @Router       /api/games [post]
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = ModeGM
	}
	sess, err := h.manager.Create(req.Players, req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("game created id=%s mode=%s players=%d request_id=%s", sess.ID, sess.Mode, len(req.Players), requestID(r))
	snap, err := h.manager.Snapshot(sess.ID)
	if err != nil {
		log.Printf("snapshot game %s: %v", sess.ID, err)
		http.Error(w, "game state unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(sess, snap))
}

// ListGames handles GET /api/games.
//
// @Summary      List games
// @Tags         games
// @Produce      json
// @Success      200  {array}  GameSummary
// @Router       /api/games [get]
func (h *GameHandler) ListGames(w http.ResponseWriter, _ *http.Request) {
	sessions := h.manager.List()
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Created.Before(sessions[j].Created) })
	out := make([]GameSummary, 0, len(sessions))
	for _, s := range sessions {
		snap, err := h.manager.Snapshot(s.ID)
		if err != nil {
			log.Printf("snapshot game %s: %v", s.ID, err)
			continue
		}
		out = append(out, summarize(s, snap))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetGame handles GET /api/games/{id}.
//
// @Summary      Get public game state
// @Tags         games
// @Produce      json
// @Param        id  path  string  true  "Game ID"
// @Success      200  {object}  GameSummary
// @Failure      404  {string}  string  "Unknown game"
// @Router       /api/games/{id} [get]
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}
	snap, err := h.manager.Snapshot(sess.ID)
	if err != nil {
		log.Printf("snapshot game %s: %v", sess.ID, err)
		http.Error(w, "game state unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summarize(sess, snap))
}

// GetEvents handles GET /api/games/{id}/events. Game-master only: the log
// carries roles and private night information.
//
// @Summary      Get the full event log
// @Tags         games
// @Produce      json
// @Param        id  path  string  true  "Game ID"
// @Success      200  {array}  game.Event
// @Failure      404  {string}  string  "Unknown game"
// @Security     BearerAuth
// @Router       /api/games/{id}/events [get]
func (h *GameHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Events(sess.ID))
}

// GetReport handles GET /api/games/{id}/report. Game-master only.
//
// @Summary      Get the after-game text report
// @Tags         games
// @Produce      plain
// @Param        id  path  string  true  "Game ID"
// @Success      200  {string}  string
// @Failure      404  {string}  string  "Unknown game"
// @Security     BearerAuth
// @Router       /api/games/{id}/report [get]
func (h *GameHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}
	snap, err := h.manager.Snapshot(sess.ID)
	if err != nil {
		log.Printf("snapshot game %s: %v", sess.ID, err)
		http.Error(w, "game state unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := report.WriteText(w, snap); err != nil {
		log.Printf("write report for game %s: %v", sess.ID, err)
	}
}

// ExportGame handles GET /api/games/{id}/export. Game-master only.
//
// @Summary      Export the game as JSON
// @Tags         games
// @Produce      json
// @Param        id  path  string  true  "Game ID"
// @Success      200  {object}  report.Export
// @Failure      404  {string}  string  "Unknown game"
// @Security     BearerAuth
// @Router       /api/games/{id}/export [get]
func (h *GameHandler) ExportGame(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}
	snap, err := h.manager.Snapshot(sess.ID)
	if err != nil {
		log.Printf("snapshot game %s: %v", sess.ID, err)
		http.Error(w, "game state unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := report.WriteJSON(w, snap); err != nil {
		log.Printf("export game %s: %v", sess.ID, err)
	}
}

// StopGame handles POST /api/games/{id}/stop. Game-master only.
//
// @Summary      Stop a running game
// @Tags         games
// @Param        id  path  string  true  "Game ID"
// @Success      204  "Stopped"
// @Failure      404  {string}  string  "Unknown game"
// @Security     BearerAuth
// @Router       /api/games/{id}/stop [post]
func (h *GameHandler) StopGame(w http.ResponseWriter, r *http.Request) {
	sess := h.manager.Get(chi.URLParam(r, "id"))
	if sess == nil {
		http.Error(w, "unknown game", http.StatusNotFound)
		return
	}
	sess.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// summarize builds the public view from a replayed snapshot, never from the
// live State of a running game.
func summarize(sess *Session, s *game.State) GameSummary {
	out := GameSummary{
		ID:      sess.ID,
		Mode:    sess.Mode,
		Day:     s.Day,
		Phase:   string(s.Phase),
		Started: sess.Started(),
		Winner:  s.Winner,
		Reason:  s.WinnerReason,
	}
	for _, p := range s.Players() {
		status := string(game.StatusAlive)
		if !p.Alive() {
			status = string(game.StatusDead)
		}
		out.Players = append(out.Players, PlayerSummary{Seat: p.Seat, Name: p.Name, Status: status})
	}
	return out
}
