package moderator

import (
	"context"
	"strings"
	"testing"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/game"
)

func identityPerm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func consoleState(t *testing.T) *game.State {
	t.Helper()
	s, err := game.Setup("g1", []string{"ana", "bea", "cy", "dan", "eli", "fay"}, identityPerm)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return s
}

func scriptedConsole(t *testing.T, s *game.State, script string) (*Console, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	return NewConsole(strings.NewReader(script), &out, s), &out
}

func TestConsoleReview_Dispositions(t *testing.T) {
	s := consoleState(t)
	req := broker.ReviewRequest{
		PlayerID:    s.PlayerBySeat(5).ID,
		PlayerLabel: s.PlayerBySeat(5).Label(),
		Action:      broker.ActionVote,
		Raw:         "4",
		Valid:       true,
		Parsed:      broker.Value{Kind: broker.ValueTarget, TargetID: s.PlayerBySeat(4).ID},
	}

	cases := []struct {
		script string
		want   broker.Disposition
		manual string
	}{
		{"y\n", broker.DispositionAccept, ""},
		{"r\n", broker.DispositionRetry, ""},
		{"s\n", broker.DispositionSkip, ""},
		{"a\n", broker.DispositionAcceptInvalid, ""},
		{"m\nPlayer 4\n", broker.DispositionManual, "Player 4"},
	}
	for _, c := range cases {
		mod, _ := scriptedConsole(t, s, c.script)
		resp, err := mod.Review(context.Background(), req)
		if err != nil {
			t.Fatalf("%q: review: %v", c.script, err)
		}
		if resp.Disposition != c.want || resp.ManualContent != c.manual {
			t.Errorf("%q: got %+v", c.script, resp)
		}
	}
}

func TestConsoleReview_InspectionThenDecision(t *testing.T) {
	s := consoleState(t)
	req := broker.ReviewRequest{
		PlayerID:    s.PlayerBySeat(5).ID,
		PlayerLabel: s.PlayerBySeat(5).Label(),
		Action:      broker.ActionVote,
		Raw:         "nonsense",
		Err:         &broker.ValidationError{Reason: "not a valid target"},
	}

	mod, out := scriptedConsole(t, s, "i\ny\n")
	resp, err := mod.Review(context.Background(), req)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if resp.Disposition != broker.DispositionAccept {
		t.Errorf("got %s", resp.Disposition)
	}
	rendered := out.String()
	if !strings.Contains(rendered, "INVALID: not a valid target") {
		t.Errorf("validation failure not rendered:\n%s", rendered)
	}
	// The status inspection lists the whole table before the decision.
	if !strings.Contains(rendered, s.PlayerBySeat(1).Name) {
		t.Errorf("status inspection missing roster:\n%s", rendered)
	}
}

func TestConsoleReview_KillOverride(t *testing.T) {
	s := consoleState(t)
	victim := s.PlayerBySeat(6)
	req := broker.ReviewRequest{
		PlayerID:    s.PlayerBySeat(5).ID,
		PlayerLabel: s.PlayerBySeat(5).Label(),
		Action:      broker.ActionSpeech,
		Raw:         "hello",
		Valid:       true,
		Parsed:      broker.Value{Kind: broker.ValueText, Text: "hello"},
	}

	mod, _ := scriptedConsole(t, s, "k "+victim.Name+"\ny\n")
	if _, err := mod.Review(context.Background(), req); err != nil {
		t.Fatalf("review: %v", err)
	}
	if victim.Alive() {
		t.Error("kill override should mark the player dead")
	}
}

func TestConsoleReview_EOF(t *testing.T) {
	s := consoleState(t)
	mod, _ := scriptedConsole(t, s, "")
	if _, err := mod.Review(context.Background(), broker.ReviewRequest{Valid: true}); err == nil {
		t.Error("exhausted input should error")
	}
}

func TestConsoleContinue(t *testing.T) {
	s := consoleState(t)
	cases := []struct {
		script string
		want   bool
	}{
		{"\n", true},
		{"y\n", true},
		{"n\n", false},
		{"NO\n", false},
	}
	for _, c := range cases {
		mod, _ := scriptedConsole(t, s, c.script)
		got, err := mod.Continue(context.Background(), 1)
		if err != nil {
			t.Fatalf("%q: continue: %v", c.script, err)
		}
		if got != c.want {
			t.Errorf("%q: got %v want %v", c.script, got, c.want)
		}
	}
}
