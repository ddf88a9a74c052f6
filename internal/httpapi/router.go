// Package httpapi wires the HTTP surface: routing, middleware and the two
// WebSocket endpoints.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/vdtran/werewolf-gm/internal/httpapi/handler"
	"github.com/vdtran/werewolf-gm/internal/ratelimit"
	"github.com/vdtran/werewolf-gm/internal/websocket"

	_ "github.com/vdtran/werewolf-gm/docs" // swag-generated docs
)

// RouterConfig carries the router's dependencies and settings.
type RouterConfig struct {
	Manager        *handler.GameManager
	Hub            *websocket.Hub
	GMPasswordHash string
	TokenSecret    []byte
	TokenExpiry    time.Duration // zero falls back to auth.DefaultTokenExpiry
	AllowedOrigins []string
	RateLimiter    ratelimit.Limiter // nil falls back to DefaultRateLimiter
}

// NewRouter builds the root HTTP router.
//
// @title            Werewolf GM API
// @version          1.0
// @description      API for hosting moderator-screened Werewolf games with AI players.
// @BasePath         /
// @SecurityDefinitions.apikey  BearerAuth
// @in               header
// @name             Authorization
func NewRouter(cfg RouterConfig) http.Handler {
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = DefaultRateLimiter()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.Healthz)

	// Swagger UI and generated spec (from swag comments).
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	rateLimitByIP := RateLimitMiddleware(limiter, RateLimitKeyByIP)
	requireGM := RequireGM(cfg.TokenSecret)

	authHandler := handler.NewAuthHandler(cfg.GMPasswordHash, cfg.TokenSecret, cfg.TokenExpiry)
	gameHandler := handler.NewGameHandler(cfg.Manager)
	wsHandler := handler.NewWSHandler(cfg.Manager, cfg.Hub, cfg.TokenSecret)

	r.Route("/api", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/auth/login", authHandler.Login)

		r.Route("/games", func(r chi.Router) {
			r.With(rateLimitByIP).Post("/", gameHandler.CreateGame)
			r.Get("/", gameHandler.ListGames)
			r.Get("/{id}", gameHandler.GetGame)

			// The log, report and export reveal roles; GM only.
			r.With(requireGM).Get("/{id}/events", gameHandler.GetEvents)
			r.With(requireGM).Get("/{id}/report", gameHandler.GetReport)
			r.With(requireGM).Get("/{id}/export", gameHandler.ExportGame)
			r.With(requireGM).Post("/{id}/stop", gameHandler.StopGame)
		})
	})

	r.Get("/ws/games/{id}/observe", wsHandler.HandleObserver)
	r.Get("/ws/games/{id}/gm", wsHandler.HandleGM)

	return r
}

// DefaultRateLimiter returns the stock limiter for the public surface:
// 60 requests per minute per IP.
func DefaultRateLimiter() ratelimit.Limiter {
	return ratelimit.NewInMemory(60, time.Minute)
}
