// Package moderator implements the approval side of the decision loop: a
// terminal console for a human game master, an automatic policy for
// unattended runs, and the inspection tools the console exposes.
package moderator

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vdtran/werewolf-gm/internal/game"
)

// Tools renders game-master views of the state: seat statuses, player
// histories, the event log tail and the current votes. The views include
// hidden information and must never reach observers.
type Tools struct {
	State *game.State
}

// WriteStatuses prints every seat with role and life status.
func (t *Tools) WriteStatuses(w io.Writer) {
	fmt.Fprintf(w, "Day %d, phase %s\n", t.State.Day, t.State.Phase)
	for _, p := range t.State.Players() {
		status := "alive"
		if !p.Alive() {
			status = "DEAD"
		}
		extra := ""
		switch p.Role {
		case game.RoleWitch:
			if p.Witch != nil {
				extra = fmt.Sprintf(" save=%t poison=%t", p.Witch.HasSavePotion, p.Witch.HasPoisonPotion)
			}
		case game.RoleHunter:
			if p.Hunter != nil {
				extra = fmt.Sprintf(" shot=%t", p.Hunter.CanShoot)
			}
		}
		fmt.Fprintf(w, "  %s [%s]%s\n", p.LabelWithRole(), status, extra)
	}
}

// WriteHistory prints one player's conversation history. The reference may be
// a player ID, roster name or seat number.
func (t *Tools) WriteHistory(w io.Writer, ref string) {
	p := t.resolve(ref)
	if p == nil {
		fmt.Fprintf(w, "no player matches %q\n", ref)
		return
	}
	fmt.Fprintf(w, "history of %s (%d entries)\n", p.LabelWithRole(), len(p.History))
	for i, h := range p.History {
		flags := ""
		if h.Meta != nil {
			if h.Meta.IsErrorResponse {
				flags += " [error]"
			}
			if h.Meta.IsAcceptedInvalid {
				flags += " [accepted-invalid]"
			}
			if h.Meta.IsOverride {
				flags += " [override]"
			}
		}
		fmt.Fprintf(w, "  %3d %-9s%s %s\n", i, h.Role, flags, h.Content)
	}
}

// WriteLogTail prints the last n events from the game log.
func (t *Tools) WriteLogTail(w io.Writer, n int) {
	events := t.State.Events()
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	for _, ev := range events {
		fmt.Fprintf(w, "  %s %-18s %s\n", ev.Timestamp.Format("15:04:05"), ev.Kind, ev.Message)
	}
}

// WriteVotes prints this round's votes so far.
func (t *Tools) WriteVotes(w io.Writer) {
	if len(t.State.Round.Votes) == 0 {
		fmt.Fprintln(w, "no votes recorded this round")
		return
	}
	for voter, target := range t.State.Round.Votes {
		display := t.State.Label(target)
		if target == game.VoteSkip {
			display = "abstain"
		}
		fmt.Fprintf(w, "  %s -> %s\n", t.State.Label(voter), display)
	}
}

// KillPlayer is the manual override for marking a player dead.
func (t *Tools) KillPlayer(ref string) error {
	p := t.resolve(ref)
	if p == nil {
		return fmt.Errorf("no player matches %q", ref)
	}
	return t.State.SetStatus(p.ID, game.StatusDead, "manual game-master override")
}

func (t *Tools) resolve(ref string) *game.Player {
	ref = strings.TrimSpace(ref)
	if p := t.State.Player(ref); p != nil {
		return p
	}
	if p := t.State.PlayerByName(ref); p != nil {
		return p
	}
	if seat, err := strconv.Atoi(ref); err == nil {
		return t.State.PlayerBySeat(seat)
	}
	return nil
}
