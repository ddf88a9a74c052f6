// Package report renders a finished (or in-progress) game as a human-readable
// text report or a JSON export of the full event log.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vdtran/werewolf-gm/internal/game"
)

// WriteText writes the game-master report: outcome, full roster with roles,
// and the complete event timeline. It reveals hidden information and is meant
// for after-game review.
func WriteText(w io.Writer, s *game.State) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game %s\n", s.GameID)
	fmt.Fprintf(&sb, "%s\n\n", strings.Repeat("=", 5+len(s.GameID)))
	if s.Finished() {
		fmt.Fprintf(&sb, "Result: %s wins after %d day(s)\n", s.Winner, s.Day)
		fmt.Fprintf(&sb, "Reason: %s\n\n", s.WinnerReason)
	} else {
		fmt.Fprintf(&sb, "Result: in progress (day %d, phase %s)\n\n", s.Day, s.Phase)
	}

	sb.WriteString("Roster\n------\n")
	for _, p := range s.Players() {
		status := "alive"
		if !p.Alive() {
			status = "dead"
		}
		fmt.Fprintf(&sb, "  seat %2d  %-16s %-9s %s\n", p.Seat, p.Name, p.Role, status)
	}

	sb.WriteString("\nTimeline\n--------\n")
	day := -1
	for _, ev := range s.Events() {
		if d, ok := eventDay(ev); ok && d != day {
			day = d
			fmt.Fprintf(&sb, "\n--- day %d ---\n", day)
		}
		fmt.Fprintf(&sb, "  %s %-18s %s\n", ev.Timestamp.Format("15:04:05"), ev.Kind, ev.Message)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Export is the JSON shape of a full game export.
type Export struct {
	GameID string         `json:"game_id"`
	Day    int            `json:"day"`
	Phase  string         `json:"phase"`
	Winner string         `json:"winner,omitempty"`
	Reason string         `json:"reason,omitempty"`
	Roster []ExportPlayer `json:"roster"`
	Events []game.Event   `json:"events"`
}

// ExportPlayer is one roster row in a JSON export.
type ExportPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// BuildExport assembles the JSON export structure. The event log carries
// enough detail to replay the game.
func BuildExport(s *game.State) Export {
	out := Export{
		GameID: s.GameID,
		Day:    s.Day,
		Phase:  string(s.Phase),
		Winner: s.Winner,
		Reason: s.WinnerReason,
		Events: s.Events(),
	}
	for _, p := range s.Players() {
		out.Roster = append(out.Roster, ExportPlayer{
			ID: p.ID, Name: p.Name, Seat: p.Seat,
			Role: string(p.Role), Status: string(p.Status),
		})
	}
	return out
}

// WriteJSON writes the full game export as indented JSON.
func WriteJSON(w io.Writer, s *game.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildExport(s)); err != nil {
		return fmt.Errorf("encode game export: %w", err)
	}
	return nil
}

func eventDay(ev game.Event) (int, bool) {
	if ev.Details == nil {
		return 0, false
	}
	switch v := ev.Details["day"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
