package broker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vdtran/werewolf-gm/internal/game"
)

// Outcome classifies how a Decide call terminated.
type Outcome string

const (
	OutcomeAccepted        Outcome = "accepted"
	OutcomeOverridden      Outcome = "overridden"
	OutcomeAcceptedInvalid Outcome = "accepted_invalid"
	OutcomeSkipped         Outcome = "skipped"
)

// Result is the committed terminal outcome of one requested action.
type Result struct {
	Outcome Outcome
	Value   Value
}

// Broker runs the validation + moderator-approval loop. At most one Decide
// call is in flight at a time; the game is strictly sequential per seat action.
type Broker struct {
	producer  DecisionProducer
	moderator Moderator
	builder   ContextBuilder
	validator *Validator

	// transportRetries bounds automatic producer retries before escalating to
	// the moderator; retryDelay is the fixed wait between attempts.
	transportRetries uint64
	retryDelay       time.Duration
}

// Option configures a Broker.
type Option func(*Broker)

// WithTransportRetries sets the automatic retry budget for producer failures.
func WithTransportRetries(n uint64, delay time.Duration) Option {
	return func(b *Broker) {
		b.transportRetries = n
		b.retryDelay = delay
	}
}

// WithSynonyms replaces the no-action synonym table.
func WithSynonyms(t SynonymTable) Option {
	return func(b *Broker) { b.validator.Synonyms = t }
}

// New creates a broker over the three collaborator ports.
func New(producer DecisionProducer, moderator Moderator, builder ContextBuilder, opts ...Option) *Broker {
	b := &Broker{
		producer:         producer,
		moderator:        moderator,
		builder:          builder,
		validator:        NewValidator(),
		transportRetries: 1,
		retryDelay:       3 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Decide obtains one approved decision for the player and action. Every path
// resolves to a committed value (possibly no-action): no error from the
// producer, builder or moderator terminates the game, and exactly one history
// entry is appended for the terminal outcome.
func (b *Broker) Decide(ctx context.Context, s *game.State, playerID string, action ActionType, info *ActionInfo) (Result, error) {
	p := s.Player(playerID)
	if p == nil {
		return Result{}, fmt.Errorf("decide %s: unknown player %q", action, playerID)
	}

	for {
		messages, err := b.builder.Build(s, playerID, action, s.History(playerID), info)
		if err != nil || len(messages) == 0 {
			// Context build failures are not retried automatically: the
			// moderator supplies a manual value or the action is skipped.
			detail := "context builder returned no messages"
			if err != nil {
				detail = err.Error()
			}
			s.LogEvent(game.EventModeratorAction, fmt.Sprintf("context build failed for %s (%s)", p.Label(), action), map[string]any{
				"player": playerID, "action": string(action), "error": detail,
			})
			resp := b.review(ctx, ReviewRequest{
				PlayerID: playerID, PlayerLabel: p.LabelWithRole(), Action: action,
				Escalation: EscalationContext, FailureDetail: detail,
			})
			if resp.Disposition == DispositionManual {
				return b.commitManual(s, playerID, action, info, resp.ManualContent), nil
			}
			return b.commitSkip(s, playerID, action, "context build failure"), nil
		}

		raw, transportErr := b.produceWithRetry(ctx, playerID, messages)
		if transportErr != nil {
			resp := b.review(ctx, ReviewRequest{
				PlayerID: playerID, PlayerLabel: p.LabelWithRole(), Action: action,
				Escalation: EscalationTransport, FailureDetail: transportErr.Error(),
			})
			switch resp.Disposition {
			case DispositionRetry:
				continue
			case DispositionManual:
				return b.commitManual(s, playerID, action, info, resp.ManualContent), nil
			default:
				return b.commitSkip(s, playerID, action, "persistent producer failure"), nil
			}
		}

		value, verr := b.validator.Validate(s, playerID, action, raw, info)
		req := ReviewRequest{
			PlayerID: playerID, PlayerLabel: p.LabelWithRole(), Action: action,
			Raw: raw, Valid: verr == nil, Parsed: value, Err: verr,
		}
		resp := b.review(ctx, req)

		switch resp.Disposition {
		case DispositionAccept:
			if verr != nil {
				// Accepting an invalid response commits it verbatim.
				return b.commitAcceptedInvalid(s, playerID, action, raw), nil
			}
			s.AppendHistory(playerID, game.HistoryEntry{
				Role: RoleResponder, Content: raw,
				Meta: &game.HistoryMeta{ActionType: string(action)},
			})
			return Result{Outcome: OutcomeAccepted, Value: value}, nil

		case DispositionAcceptInvalid:
			if verr == nil {
				// Nothing invalid to accept; same as a plain accept.
				s.AppendHistory(playerID, game.HistoryEntry{
					Role: RoleResponder, Content: raw,
					Meta: &game.HistoryMeta{ActionType: string(action)},
				})
				return Result{Outcome: OutcomeAccepted, Value: value}, nil
			}
			return b.commitAcceptedInvalid(s, playerID, action, raw), nil

		case DispositionRetry:
			// The flawed response stays in history (flagged) together with a
			// correction hint, so the next attempt sees what went wrong.
			s.AppendHistory(playerID, game.HistoryEntry{
				Role: RoleResponder, Content: raw,
				Meta: &game.HistoryMeta{ActionType: string(action), IsErrorResponse: true},
			})
			s.AppendHistory(playerID, game.HistoryEntry{
				Role: RolePrompter, Content: correctionHint(raw, verr),
				Meta: &game.HistoryMeta{ActionType: "moderator_correction"},
			})
			continue

		case DispositionManual:
			return b.commitManual(s, playerID, action, info, resp.ManualContent), nil

		default: // DispositionSkip and anything unrecognized
			return b.commitSkip(s, playerID, action, "moderator skipped"), nil
		}
	}
}

// produceWithRetry calls the producer with a bounded fixed-delay retry budget.
func (b *Broker) produceWithRetry(ctx context.Context, playerID string, messages []ContextEntry) (string, error) {
	var raw string
	backoff := retry.WithMaxRetries(b.transportRetries, retry.NewConstant(b.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := b.producer.Produce(ctx, playerID, messages)
		if err != nil {
			return retry.RetryableError(err)
		}
		raw = r
		return nil
	})
	if err != nil {
		return "", err
	}
	return raw, nil
}

// review asks the moderator for a disposition; a failing moderator port
// degrades to skip so the phase machine can always proceed.
func (b *Broker) review(ctx context.Context, req ReviewRequest) ReviewResponse {
	resp, err := b.moderator.Review(ctx, req)
	if err != nil {
		log.Printf("[broker] moderator review failed for %s (%s): %v; skipping", req.PlayerLabel, req.Action, err)
		return ReviewResponse{Disposition: DispositionSkip}
	}
	return resp
}

func (b *Broker) commitManual(s *game.State, playerID string, action ActionType, info *ActionInfo, manual string) Result {
	value, verr := b.validator.Validate(s, playerID, action, manual, info)
	s.AppendHistory(playerID, game.HistoryEntry{
		Role: RoleResponder, Content: manual,
		Meta: &game.HistoryMeta{ActionType: string(action), IsOverride: true},
	})
	if verr != nil {
		return Result{Outcome: OutcomeOverridden, Value: Value{Kind: ValueRaw, Text: manual}}
	}
	return Result{Outcome: OutcomeOverridden, Value: value}
}

func (b *Broker) commitAcceptedInvalid(s *game.State, playerID string, action ActionType, raw string) Result {
	s.AppendHistory(playerID, game.HistoryEntry{
		Role: RoleResponder, Content: raw,
		Meta: &game.HistoryMeta{ActionType: string(action), IsAcceptedInvalid: true},
	})
	return Result{Outcome: OutcomeAcceptedInvalid, Value: Value{Kind: ValueRaw, Text: raw}}
}

func (b *Broker) commitSkip(s *game.State, playerID string, action ActionType, reason string) Result {
	s.AppendHistory(playerID, game.HistoryEntry{
		Role:    "system",
		Content: fmt.Sprintf("moderator skipped this %s (%s)", action, reason),
		Meta:    &game.HistoryMeta{ActionType: string(action), IsOverride: true},
	})
	return Result{Outcome: OutcomeSkipped, Value: Value{Kind: ValueNone}}
}

// correctionHint is appended to history before a retry so the producer can fix
// its previous answer.
func correctionHint(raw string, verr *ValidationError) string {
	preview := raw
	if len(preview) > 70 {
		preview = preview[:70] + "..."
	}
	if verr != nil {
		return fmt.Sprintf("Moderator: your previous answer %q was invalid (%s). Please correct it and answer again.", preview, verr.Reason)
	}
	return fmt.Sprintf("Moderator: please reconsider your previous answer %q and give a different one.", preview)
}
