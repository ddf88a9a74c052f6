package broker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vdtran/werewolf-gm/internal/game"
)

// ValidationError describes why a response failed validation, with the list of
// currently valid choices for the moderator display.
type ValidationError struct {
	Reason       string
	ValidChoices []string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validator converts raw response text into a typed value according to
// action-specific rules. It is stateless apart from the synonym table.
type Validator struct {
	Synonyms SynonymTable
}

// NewValidator returns a validator with the default synonym table.
func NewValidator() *Validator {
	return &Validator{Synonyms: DefaultSynonyms()}
}

// Validate checks raw against the rules for action and returns the typed value
// or a validation error with the valid choices.
func (v *Validator) Validate(s *game.State, playerID string, action ActionType, raw string, info *ActionInfo) (Value, *ValidationError) {
	if strings.TrimSpace(raw) == "" {
		return Value{}, &ValidationError{Reason: "empty response"}
	}
	trimmed := strings.TrimSpace(raw)

	switch action {
	case ActionSpeech, ActionLastWords:
		// Any non-empty text is accepted.
		return Value{Kind: ValueText, Text: trimmed}, nil

	case ActionVote:
		pool := s.AlivePlayers(playerID)
		if v.Synonyms.IsNoActionPhrase(action, raw) {
			return Value{Kind: ValueAbstain, TargetID: game.VoteSkip}, nil
		}
		if p := matchTarget(pool, trimmed); p != nil {
			return Value{Kind: ValueTarget, TargetID: p.ID}, nil
		}
		return Value{}, &ValidationError{
			Reason:       fmt.Sprintf("%q is not an alive player other than yourself, nor an abstention", trimmed),
			ValidChoices: choiceLabels(pool, "skip"),
		}

	case ActionWolfNominate, ActionWolfKill:
		pool := nonWolfPool(s)
		if v.Synonyms.IsNoActionPhrase(action, raw) {
			return Value{Kind: ValueNone}, nil
		}
		if p := matchTarget(pool, trimmed); p != nil {
			return Value{Kind: ValueTarget, TargetID: p.ID}, nil
		}
		// An empty pool still requires explicit no-target phrasing.
		return Value{}, &ValidationError{
			Reason:       fmt.Sprintf("%q is not an attackable player or an explicit no-target response", trimmed),
			ValidChoices: choiceLabels(pool, "no target"),
		}

	case ActionSeerCheck:
		seer := s.Player(playerID)
		var pool []*game.Player
		for _, p := range s.AlivePlayers(playerID) {
			if seer == nil || !seer.HasCheckedTarget(p.ID) {
				pool = append(pool, p)
			}
		}
		if v.Synonyms.IsNoActionPhrase(action, raw) {
			return Value{Kind: ValueNone}, nil
		}
		if len(pool) == 0 {
			// Exhausted target pool forces a decline.
			return Value{}, &ValidationError{
				Reason:       "no uninspected targets remain; you must decline",
				ValidChoices: []string{"decline"},
			}
		}
		if p := matchTarget(pool, trimmed); p != nil {
			return Value{Kind: ValueTarget, TargetID: p.ID}, nil
		}
		return Value{}, &ValidationError{
			Reason:       fmt.Sprintf("%q is not an alive, uninspected player", trimmed),
			ValidChoices: choiceLabels(pool, "decline"),
		}

	case ActionWitchSave:
		cleaned := cleanKeyword(raw)
		canSave := s.CanUseSave(playerID)
		if matchesAny(cleaned, noPhrases) {
			return Value{Kind: ValueNo}, nil
		}
		if !canSave {
			// Potion is gone: only "no" is acceptable.
			return Value{}, &ValidationError{
				Reason:       "the save potion is no longer available; answer no",
				ValidChoices: []string{"no"},
			}
		}
		if matchesAny(cleaned, yesPhrases) {
			return Value{Kind: ValueYes}, nil
		}
		killed := "the attacked player"
		if info != nil && info.KilledPlayerID != "" {
			killed = s.Label(info.KilledPlayerID)
		}
		return Value{}, &ValidationError{
			Reason:       fmt.Sprintf("answer yes or no: save %s?", killed),
			ValidChoices: []string{"yes", "no"},
		}

	case ActionWitchPoison:
		if v.Synonyms.IsNoActionPhrase(action, raw) {
			return Value{Kind: ValueNone}, nil
		}
		if !s.CanUsePoison(playerID) {
			return Value{}, &ValidationError{
				Reason:       "the poison potion is no longer available; you must decline",
				ValidChoices: []string{"decline"},
			}
		}
		pool := s.AlivePlayers(playerID)
		if p := matchTarget(pool, trimmed); p != nil {
			return Value{Kind: ValueTarget, TargetID: p.ID}, nil
		}
		return Value{}, &ValidationError{
			Reason:       fmt.Sprintf("%q is not an alive player other than yourself", trimmed),
			ValidChoices: choiceLabels(pool, "decline"),
		}

	case ActionHunterShoot:
		if v.Synonyms.IsNoActionPhrase(action, raw) {
			return Value{Kind: ValueNone}, nil
		}
		if !s.CanHunterShoot(playerID) {
			return Value{}, &ValidationError{
				Reason:       "the ability is unavailable; you must decline",
				ValidChoices: []string{"decline"},
			}
		}
		pool := s.AlivePlayers(playerID)
		if p := matchTarget(pool, trimmed); p != nil {
			return Value{Kind: ValueTarget, TargetID: p.ID}, nil
		}
		return Value{}, &ValidationError{
			Reason:       fmt.Sprintf("%q is not an alive player other than yourself", trimmed),
			ValidChoices: choiceLabels(pool, "decline"),
		}
	}

	return Value{}, &ValidationError{Reason: fmt.Sprintf("unknown action type %q", action)}
}

// nonWolfPool returns alive players outside the wolf team.
func nonWolfPool(s *game.State) []*game.Player {
	var pool []*game.Player
	for _, p := range s.AlivePlayers() {
		if p.Role != game.RoleWolf {
			pool = append(pool, p)
		}
	}
	return pool
}

// matchTarget resolves a response to a pool member by ID, roster name, display
// label or seat number.
func matchTarget(pool []*game.Player, response string) *game.Player {
	for _, p := range pool {
		if response == p.ID || response == p.Name || response == p.Label() {
			return p
		}
		if response == strconv.Itoa(p.Seat) {
			return p
		}
	}
	return nil
}

func choiceLabels(pool []*game.Player, noAction string) []string {
	out := make([]string, 0, len(pool)+1)
	for _, p := range pool {
		out = append(out, p.Label())
	}
	if noAction != "" {
		out = append(out, noAction)
	}
	return out
}
