package moderator

import (
	"context"

	"github.com/vdtran/werewolf-gm/internal/broker"
)

// Auto is the unattended policy: valid responses are accepted, everything
// else is skipped after the configured retry budget.
type Auto struct {
	// MaxRetries is how many times an invalid response is sent back for a
	// correction before being skipped.
	MaxRetries int

	attempts map[string]int
}

// NewAuto returns an auto moderator that retries invalid responses up to
// maxRetries times per player/action pair.
func NewAuto(maxRetries int) *Auto {
	return &Auto{MaxRetries: maxRetries, attempts: make(map[string]int)}
}

// Review accepts valid responses. Invalid responses are retried within the
// budget, then skipped; producer and context failures are always skipped.
func (a *Auto) Review(ctx context.Context, req broker.ReviewRequest) (broker.ReviewResponse, error) {
	if err := ctx.Err(); err != nil {
		return broker.ReviewResponse{}, err
	}
	key := req.PlayerID + "/" + string(req.Action)
	if req.Escalation != broker.EscalationNone {
		delete(a.attempts, key)
		return broker.ReviewResponse{Disposition: broker.DispositionSkip}, nil
	}
	if req.Valid {
		delete(a.attempts, key)
		return broker.ReviewResponse{Disposition: broker.DispositionAccept}, nil
	}
	a.attempts[key]++
	if a.attempts[key] <= a.MaxRetries {
		return broker.ReviewResponse{Disposition: broker.DispositionRetry}, nil
	}
	delete(a.attempts, key)
	return broker.ReviewResponse{Disposition: broker.DispositionSkip}, nil
}

// Continue always proceeds to the next round.
func (a *Auto) Continue(ctx context.Context, day int) (bool, error) {
	return ctx.Err() == nil, ctx.Err()
}
