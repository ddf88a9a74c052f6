// Package prompt assembles the conversation context sent to decision
// producers: a role briefing, the player's private history and the current
// action request, normalized into a strictly alternating prompter/responder
// sequence.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/game"
)

// Builder implements broker.ContextBuilder.
type Builder struct{}

// NewBuilder returns a context builder.
func NewBuilder() *Builder { return &Builder{} }

// Build assembles the full context for one requested action. The sequence
// always begins with the role briefing and ends with the action request, both
// as prompter entries; consecutive same-role entries are merged so the result
// alternates strictly.
func (b *Builder) Build(s *game.State, playerID string, action broker.ActionType, history []game.HistoryEntry, info *broker.ActionInfo) ([]broker.ContextEntry, error) {
	p := s.Player(playerID)
	if p == nil {
		return nil, fmt.Errorf("build context: unknown player %q", playerID)
	}

	entries := []broker.ContextEntry{{Role: broker.RolePrompter, Content: briefing(s, p)}}
	for _, h := range history {
		role := broker.RolePrompter
		if h.Role == broker.RoleResponder {
			role = broker.RoleResponder
		}
		entries = append(entries, broker.ContextEntry{Role: role, Content: h.Content})
	}
	request, err := actionRequest(s, p, action, info)
	if err != nil {
		return nil, err
	}
	entries = append(entries, broker.ContextEntry{Role: broker.RolePrompter, Content: request})

	return mergeAlternating(entries), nil
}

// mergeAlternating joins consecutive entries with the same role so the
// sequence alternates strictly.
func mergeAlternating(entries []broker.ContextEntry) []broker.ContextEntry {
	var out []broker.ContextEntry
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].Role == e.Role {
			out[n-1].Content += "\n\n" + e.Content
			continue
		}
		out = append(out, e)
	}
	return out
}

// briefing describes the game, the table and the player's private knowledge.
func briefing(s *game.State, p *game.Player) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are playing a social deduction game of Werewolf with %d players.\n", len(s.Players()))
	fmt.Fprintf(&sb, "You are %s. Your secret role is: %s.\n\n", p.Label(), p.Role)
	sb.WriteString("Players at the table:\n")
	for _, q := range s.Players() {
		status := "alive"
		if !q.Alive() {
			status = "dead"
		}
		fmt.Fprintf(&sb, "  %s [%s]\n", q.Label(), status)
	}

	switch p.Role {
	case game.RoleWolf:
		var mates []string
		for _, q := range s.Players() {
			if q.Role == game.RoleWolf && q.ID != p.ID {
				mates = append(mates, q.Label())
			}
		}
		if len(mates) > 0 {
			fmt.Fprintf(&sb, "\nYour fellow wolves: %s.\n", strings.Join(mates, ", "))
		} else {
			sb.WriteString("\nYou are the only wolf.\n")
		}
		sb.WriteString("Each night the pack kills one non-wolf. By day, blend in and avoid suspicion.")
	case game.RoleSeer:
		sb.WriteString("\nEach night you may inspect one player and learn whether they are a wolf.")
		if len(p.SeerChecks) > 0 {
			sb.WriteString(" Your results so far:\n")
			for _, c := range p.SeerChecks {
				verdict := "not a wolf"
				if c.IsWolf {
					verdict = "a WOLF"
				}
				fmt.Fprintf(&sb, "  night %d: %s is %s\n", c.Day, s.Label(c.Target), verdict)
			}
		}
	case game.RoleWitch:
		save, poison := "spent", "spent"
		if p.Witch != nil && p.Witch.HasSavePotion {
			save = "available"
		}
		if p.Witch != nil && p.Witch.HasPoisonPotion {
			poison = "available"
		}
		fmt.Fprintf(&sb, "\nYou hold two single-use potions. Save potion: %s. Poison potion: %s.\nYou may use at most one potion per night.", save, poison)
	case game.RoleHunter:
		sb.WriteString("\nWhen you die (unless poisoned), you may take one player down with you.")
	default:
		sb.WriteString("\nYou have no special ability. Find the wolves through discussion and vote them out.")
	}
	return sb.String()
}

// actionRequest phrases the current decision request with the valid choices.
func actionRequest(s *game.State, p *game.Player, action broker.ActionType, info *broker.ActionInfo) (string, error) {
	switch action {
	case broker.ActionSpeech:
		return fmt.Sprintf("Day %d discussion. It is your turn to speak to the whole table. Share your reasoning and suspicions in a few sentences.", s.Day), nil

	case broker.ActionLastWords:
		return "You have died. You may leave last words for the table. Speak now.", nil

	case broker.ActionVote:
		return fmt.Sprintf("Day %d vote. Vote to eliminate one player, or answer \"skip\" to abstain.\nChoices: %s.\nAnswer with exactly one choice.",
			s.Day, joinLabels(s.AlivePlayers(p.ID))), nil

	case broker.ActionWolfNominate:
		maker := "the decision maker"
		if info != nil && info.DecisionMakerID != "" {
			maker = s.Label(info.DecisionMakerID)
		}
		return fmt.Sprintf("Night %d. Suggest tonight's kill target to %s, or answer \"no target\" to suggest nothing.\nChoices: %s.\nAnswer with exactly one choice.",
			s.Day, maker, joinLabels(nonWolves(s))), nil

	case broker.ActionWolfKill:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Night %d. You make the final kill decision for the pack.\n", s.Day)
		if len(s.Nominations) > 0 {
			sb.WriteString("Your pack's suggestions:\n")
			seats := make([]int, 0, len(s.Nominations))
			for seat := range s.Nominations {
				seats = append(seats, seat)
			}
			sort.Ints(seats)
			for _, seat := range seats {
				fmt.Fprintf(&sb, "  %s suggests %s\n", s.Label(seatID(s, seat)), s.Label(s.Nominations[seat]))
			}
		}
		fmt.Fprintf(&sb, "Choices: %s, or \"no target\" to kill nobody.\nAnswer with exactly one choice.", joinLabels(nonWolves(s)))
		return sb.String(), nil

	case broker.ActionSeerCheck:
		var pool []*game.Player
		for _, q := range s.AlivePlayers(p.ID) {
			if !p.HasCheckedTarget(q.ID) {
				pool = append(pool, q)
			}
		}
		return fmt.Sprintf("Night %d. Choose one player to inspect, or answer \"decline\".\nChoices: %s.\nAnswer with exactly one choice.",
			s.Day, joinLabels(pool)), nil

	case broker.ActionWitchSave:
		killed := "a player"
		if info != nil && info.KilledPlayerID != "" {
			killed = s.Label(info.KilledPlayerID)
		}
		return fmt.Sprintf("Night %d. The wolves attacked %s. Use your save potion to rescue them? Answer \"yes\" or \"no\".", s.Day, killed), nil

	case broker.ActionWitchPoison:
		return fmt.Sprintf("Night %d. You may poison one player, or answer \"decline\".\nChoices: %s.\nAnswer with exactly one choice.",
			s.Day, joinLabels(s.AlivePlayers(p.ID))), nil

	case broker.ActionHunterShoot:
		return fmt.Sprintf("You have died and your ability triggers: you may take one player down with you, or answer \"decline\".\nChoices: %s.\nAnswer with exactly one choice.",
			joinLabels(s.AlivePlayers(p.ID))), nil
	}
	return "", fmt.Errorf("build context: unknown action type %q", action)
}

func nonWolves(s *game.State) []*game.Player {
	var out []*game.Player
	for _, p := range s.AlivePlayers() {
		if p.Role != game.RoleWolf {
			out = append(out, p)
		}
	}
	return out
}

func seatID(s *game.State, seat int) string {
	if p := s.PlayerBySeat(seat); p != nil {
		return p.ID
	}
	return fmt.Sprintf("seat %d", seat)
}

func joinLabels(pool []*game.Player) string {
	if len(pool) == 0 {
		return "(none)"
	}
	labels := make([]string, len(pool))
	for i, p := range pool {
		labels[i] = p.Label()
	}
	return strings.Join(labels, ", ")
}
