package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/vdtran/werewolf-gm/internal/auth"
)

// PasswordMaxLen bounds the login request body.
const PasswordMaxLen = 128

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the game-master session token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// AuthHandler issues game-master session tokens.
type AuthHandler struct {
	passwordHash string
	tokenSecret  []byte
	tokenExpiry  time.Duration
}

// NewAuthHandler creates an AuthHandler. An empty passwordHash disables login;
// a zero tokenExpiry falls back to auth.DefaultTokenExpiry.
func NewAuthHandler(passwordHash string, tokenSecret []byte, tokenExpiry time.Duration) *AuthHandler {
	if tokenExpiry <= 0 {
		tokenExpiry = auth.DefaultTokenExpiry
	}
	return &AuthHandler{passwordHash: passwordHash, tokenSecret: tokenSecret, tokenExpiry: tokenExpiry}
}

// Login handles POST /api/auth/login.
//
// @Summary      Game-master login
// @Description  Exchange the game-master password for a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  LoginRequest  true  "Request body"
// @Success      200   {object}  LoginResponse
// @Failure      400   {string}  string  "Bad request"
// @Failure      401   {string}  string  "Wrong password"
// @Failure      503   {string}  string  "Login disabled"
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.passwordHash == "" || len(h.tokenSecret) == 0 {
		http.Error(w, "game-master login is not configured", http.StatusServiceUnavailable)
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Password == "" || len(req.Password) > PasswordMaxLen {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}
	if !auth.CheckPassword(h.passwordHash, req.Password) {
		log.Printf("failed gm login request_id=%s", requestID(r))
		http.Error(w, "wrong password", http.StatusUnauthorized)
		return
	}
	token, expiresAt, err := auth.GenerateToken(auth.SubjectGameMaster, h.tokenSecret, h.tokenExpiry)
	if err != nil {
		http.Error(w, "token generation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00")})
}
