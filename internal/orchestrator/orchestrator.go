// Package orchestrator drives the game's phase state machine. It owns the
// single goroutine that mutates game state, requesting every player decision
// through the broker and announcing public information to observers.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/game"
	"github.com/vdtran/werewolf-gm/internal/observer"
	"github.com/vdtran/werewolf-gm/internal/rules"
)

// defaultMaxDays bounds runaway games; hitting the cap ends in a draw.
const defaultMaxDays = 20

// ContinueGate is asked between rounds whether the game should proceed.
// A nil gate always continues.
type ContinueGate interface {
	Continue(ctx context.Context, day int) (bool, error)
}

// Orchestrator runs one game to completion.
type Orchestrator struct {
	state   *game.State
	broker  *broker.Broker
	obs     observer.Sink
	gate    ContinueGate
	maxDays int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxDays overrides the day cap.
func WithMaxDays(n int) Option {
	return func(o *Orchestrator) { o.maxDays = n }
}

// WithContinueGate installs a between-round continuation check.
func WithContinueGate(g ContinueGate) Option {
	return func(o *Orchestrator) { o.gate = g }
}

// New creates an orchestrator over a set-up game state.
func New(s *game.State, b *broker.Broker, obs observer.Sink, opts ...Option) *Orchestrator {
	if obs == nil {
		obs = observer.Nop{}
	}
	o := &Orchestrator{state: s, broker: b, obs: obs, maxDays: defaultMaxDays}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run plays rounds until a winner is determined, the day cap is hit, the
// continuation gate halts the game, or the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	for !o.state.Finished() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("game %s interrupted: %w", o.state.GameID, err)
		}
		if o.state.Day >= o.maxDays {
			o.state.SetWinner(rules.WinnerDraw, fmt.Sprintf("day limit of %d reached", o.maxDays))
			break
		}

		if err := o.runNight(ctx); err != nil {
			return err
		}
		if o.state.Finished() {
			break
		}
		if err := o.runDay(ctx); err != nil {
			return err
		}
		if o.state.Finished() {
			break
		}

		if o.gate != nil {
			proceed, err := o.gate.Continue(ctx, o.state.Day)
			if err != nil {
				return fmt.Errorf("continuation check after day %d: %w", o.state.Day, err)
			}
			if !proceed {
				o.state.SetWinner(rules.WinnerDraw, "game halted by the moderator")
				break
			}
		}
	}
	o.announce(observer.LevelGameOver, "Game over: %s", o.state.WinnerReason)
	return nil
}

// checkWin applies the win conditions and ends the game when one holds.
// It reports whether the game is now over.
func (o *Orchestrator) checkWin() bool {
	if o.state.Finished() {
		return true
	}
	v := rules.CheckWinner(o.state)
	if v.Winner == rules.WinnerNone {
		return false
	}
	o.state.SetWinner(v.Winner, v.Reason)
	return true
}

// announce publishes a public message to observers and the event log.
func (o *Orchestrator) announce(level observer.Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	o.state.LogEvent(game.EventBroadcast, msg, map[string]any{"level": string(level)})
	o.obs.Publish(observer.Announcement{
		Level:   level,
		Day:     o.state.Day,
		Phase:   string(o.state.Phase),
		Message: msg,
	})
}
