package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vdtran/werewolf-gm/internal/game"
)

// Postgres persists game events in the game_events table. RecordEvent never
// blocks game progress: inserts run with a bounded timeout and failures are
// logged, not propagated.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL event store over an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// RecordEvent inserts one event. Implements game.EventSink.
func (s *Postgres) RecordEvent(gameID string, ev game.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var details []byte
	if ev.Details != nil {
		var err error
		details, err = json.Marshal(ev.Details)
		if err != nil {
			log.Printf("[store] marshal details for event %s: %v", ev.ID, err)
			details = nil
		}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_events (event_id, game_id, recorded, kind, message, details)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (event_id) DO NOTHING`,
		ev.ID, gameID, ev.Timestamp, ev.Kind, ev.Message, details)
	if err != nil {
		log.Printf("[store] persist event %s for game %s: %v", ev.ID, gameID, err)
	}
}

// Events loads a game's event log in append order.
func (s *Postgres) Events(ctx context.Context, gameID string) ([]game.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT event_id, recorded, kind, message, details
		 FROM game_events WHERE game_id = $1 ORDER BY seq`,
		gameID)
	if err != nil {
		return nil, fmt.Errorf("query events for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []game.Event
	for rows.Next() {
		var ev game.Event
		var details []byte
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.Kind, &ev.Message, &details); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &ev.Details); err != nil {
				return nil, fmt.Errorf("decode details for event %s: %w", ev.ID, err)
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return out, nil
}
