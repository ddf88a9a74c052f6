// Package broker turns an untrusted free-text agent decision into a validated,
// moderator-approved value. One Decide call runs the full loop for a single
// requested action: produce a candidate, validate it, ask the moderator for a
// disposition, and repeat until a terminal outcome commits exactly one history
// entry for the acting player.
package broker

import (
	"context"

	"github.com/vdtran/werewolf-gm/internal/game"
)

// ContextEntry is one role-tagged message sent to the decision producer.
// Role alternates strictly between RolePrompter and RoleResponder, beginning
// and ending with RolePrompter.
type ContextEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context roles. The values match the chat-completions wire format so
// producers can pass entries through unchanged.
const (
	RolePrompter  = "user"
	RoleResponder = "assistant"
)

// DecisionProducer supplies one candidate response for a context. The
// implementation (model API, local process, human typing) is irrelevant here.
type DecisionProducer interface {
	Produce(ctx context.Context, playerID string, messages []ContextEntry) (string, error)
}

// ContextBuilder assembles the conversation context for one requested action.
type ContextBuilder interface {
	Build(s *game.State, playerID string, action ActionType, history []game.HistoryEntry, info *ActionInfo) ([]ContextEntry, error)
}

// EscalationKind marks why a review reached the moderator without a candidate
// response to validate.
type EscalationKind string

const (
	EscalationNone      EscalationKind = ""
	EscalationTransport EscalationKind = "transport"
	EscalationContext   EscalationKind = "context_build"
)

// ReviewRequest is everything the moderator sees for one disposition.
type ReviewRequest struct {
	PlayerID    string
	PlayerLabel string
	Action      ActionType

	Raw    string
	Valid  bool
	Parsed Value
	Err    *ValidationError

	// Escalation is set when the producer or context builder failed and there
	// is no candidate to validate; FailureDetail carries the error text.
	Escalation    EscalationKind
	FailureDetail string
}

// Disposition is the moderator's decision for one review.
type Disposition string

const (
	DispositionAccept        Disposition = "accept"
	DispositionRetry         Disposition = "retry"
	DispositionManual        Disposition = "manual"
	DispositionSkip          Disposition = "skip"
	DispositionAcceptInvalid Disposition = "accept_invalid"
)

// ReviewResponse carries the disposition; ManualContent is the moderator's
// replacement value when the disposition is manual.
type ReviewResponse struct {
	Disposition   Disposition
	ManualContent string
}

// Moderator is the synchronous approval port. Review blocks until the human
// (or an automatic policy) decides.
type Moderator interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error)
}
