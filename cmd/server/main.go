package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vdtran/werewolf-gm/internal/config"
	"github.com/vdtran/werewolf-gm/internal/database"
	"github.com/vdtran/werewolf-gm/internal/httpapi"
	"github.com/vdtran/werewolf-gm/internal/httpapi/handler"
	"github.com/vdtran/werewolf-gm/internal/producer"
	"github.com/vdtran/werewolf-gm/internal/ratelimit"
	"github.com/vdtran/werewolf-gm/internal/store"
	"github.com/vdtran/werewolf-gm/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	managerOpts := []handler.ManagerOption{
		handler.WithMaxDays(cfg.MaxDays),
		handler.WithTransport(cfg.TransportRetries, cfg.TransportDelay),
	}

	// The PostgreSQL event store is optional; without it games are in-memory.
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connect: %v", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		if err := database.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("database migrate: %v", err)
		}
		log.Println("migrations up to date")

		managerOpts = append(managerOpts, handler.WithPersistentSink(store.NewPostgres(pool)))
	}

	hub := websocket.NewHub()
	go hub.Run()

	model := producer.ModelConfig{
		BaseURL: cfg.ModelBaseURL,
		APIKey:  cfg.ModelAPIKey,
		Model:   cfg.ModelName,
	}
	manager := handler.NewGameManager(hub, model, managerOpts...)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Manager:        manager,
		Hub:            hub,
		GMPasswordHash: cfg.GMPasswordHash,
		TokenSecret:    []byte(cfg.TokenSecret),
		TokenExpiry:    cfg.TokenExpiry,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    ratelimit.NewInMemory(cfg.RateLimit, cfg.RateLimitWindow),
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("werewolf-gm server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
