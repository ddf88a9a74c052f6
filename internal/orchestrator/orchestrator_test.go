package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/game"
	"github.com/vdtran/werewolf-gm/internal/observer"
	"github.com/vdtran/werewolf-gm/internal/prompt"
	"github.com/vdtran/werewolf-gm/internal/rules"
)

func identityPerm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// dealState: seat 1 seer, 2 witch, 3 hunter, 4 wolf, 5-6 villagers.
func dealState(t *testing.T) *game.State {
	t.Helper()
	s, err := game.Setup("g1", []string{"ana", "bea", "cy", "dan", "eli", "fay"}, identityPerm)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return s
}

// scriptProducer answers from per-player queues, in seat-script order.
type scriptProducer struct {
	t       *testing.T
	scripts map[string][]string // player ID -> queued answers
}

func (p *scriptProducer) Produce(_ context.Context, playerID string, _ []broker.ContextEntry) (string, error) {
	queue := p.scripts[playerID]
	if len(queue) == 0 {
		p.t.Fatalf("player %s asked for a decision with an empty script", playerID)
	}
	answer := queue[0]
	p.scripts[playerID] = queue[1:]
	return answer, nil
}

// acceptModerator accepts valid responses and fails the test otherwise.
type acceptModerator struct {
	t *testing.T
}

func (m acceptModerator) Review(_ context.Context, req broker.ReviewRequest) (broker.ReviewResponse, error) {
	if !req.Valid {
		m.t.Fatalf("unexpected invalid response from %s (%s): %q (%v)", req.PlayerLabel, req.Action, req.Raw, req.Err)
	}
	return broker.ReviewResponse{Disposition: broker.DispositionAccept}, nil
}

// captureSink records every announcement.
type captureSink struct {
	announcements []observer.Announcement
}

func (c *captureSink) Publish(a observer.Announcement) {
	c.announcements = append(c.announcements, a)
}

func runScripted(t *testing.T, s *game.State, scripts map[int][]string) *captureSink {
	t.Helper()
	byID := make(map[string][]string)
	for seat, queue := range scripts {
		byID[s.PlayerBySeat(seat).ID] = queue
	}
	prod := &scriptProducer{t: t, scripts: byID}
	b := broker.New(prod, acceptModerator{t}, prompt.NewBuilder())
	sink := &captureSink{}
	orch := New(s, b, sink)
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	for id, queue := range prod.scripts {
		if len(queue) != 0 {
			t.Errorf("player %s has %d unused scripted answers", s.Label(id), len(queue))
		}
	}
	return sink
}

func TestRun_WolfKillThenVoteOutWolf(t *testing.T) {
	s := dealState(t)
	sink := runScripted(t, s, map[int][]string{
		1: {"4", "I inspected someone suspicious", "4"}, // seer: check, speech, vote
		2: {"no", "decline", "nothing from me", "4"},    // witch: save, poison, speech, vote
		3: {"seat 4 acts oddly", "4"},                   // hunter: speech, vote
		4: {"5", "I am just a villager", "skip"},        // wolf: kill, speech, vote
		5: {"farewell friends"},                         // victim: last words
		6: {"I agree with ana", "4"},                    // villager: speech, vote
	})

	if s.Winner != rules.WinnerGood {
		t.Fatalf("winner: got %q (%s)", s.Winner, s.WinnerReason)
	}
	if s.Day != 1 {
		t.Errorf("day: got %d want 1", s.Day)
	}
	if s.PlayerBySeat(5).Alive() || s.PlayerBySeat(4).Alive() {
		t.Error("seats 4 and 5 should be dead")
	}

	seer := s.PlayerBySeat(1)
	if len(seer.SeerChecks) != 1 || !seer.SeerChecks[0].IsWolf {
		t.Errorf("seer checks: got %+v", seer.SeerChecks)
	}
	sawResult := false
	for _, h := range s.History(seer.ID) {
		if h.Meta != nil && h.Meta.ActionType == "seer_result" {
			sawResult = true
		}
	}
	if !sawResult {
		t.Error("seer should receive a private inspection result")
	}

	witch := s.PlayerBySeat(2)
	if !witch.Witch.HasSavePotion || !witch.Witch.HasPoisonPotion {
		t.Error("witch declined both potions; they must remain")
	}

	if got := s.Round.Votes[s.PlayerBySeat(4).ID]; got != game.VoteSkip {
		t.Errorf("wolf abstention: got %q", got)
	}

	// The night death is announced without a cause, and never with a role.
	for _, a := range sink.announcements {
		if a.Level == observer.LevelDeath && a.Day == 1 {
			if strings.Contains(a.Message, "wolf attack") || strings.Contains(a.Message, "seer") {
				t.Errorf("death announcement leaks hidden information: %q", a.Message)
			}
		}
	}
	last := sink.announcements[len(sink.announcements)-1]
	if last.Level != observer.LevelGameOver {
		t.Errorf("final announcement: got %+v", last)
	}
}

func TestRun_WitchSaveCancelsKillAndSkipsPoison(t *testing.T) {
	s := dealState(t)
	// The witch has no poison entry: using the save must skip the poison
	// offer this night even though the poison potion remains.
	sink := runScripted(t, s, map[int][]string{
		1: {"6", "seat 4 worries me", "4"},   // seer: check, speech, vote
		2: {"yes", "a calm morning", "4"},    // witch: save, speech, vote
		3: {"I trust the table", "4"},        // hunter: speech, vote
		4: {"5", "nothing to report", "skip"}, // wolf: kill, speech, vote
		5: {"glad to be here", "4"},          // saved target
		6: {"agreed", "4"},
	})

	if s.Winner != rules.WinnerGood {
		t.Fatalf("winner: got %q (%s)", s.Winner, s.WinnerReason)
	}
	if !s.PlayerBySeat(5).Alive() {
		t.Error("saved target should survive the night")
	}
	if len(s.Night.Deaths) != 0 {
		t.Errorf("night deaths: got %v", s.Night.Deaths)
	}

	witch := s.PlayerBySeat(2)
	if witch.Witch.HasSavePotion {
		t.Error("save potion should be spent")
	}
	if !witch.Witch.HasPoisonPotion {
		t.Error("poison potion was never offered and must remain")
	}
	if s.Night.WitchSaved != s.PlayerBySeat(5).ID {
		t.Errorf("witch saved: got %q", s.Night.WitchSaved)
	}

	// A saved kill is a peaceful night as far as observers can tell.
	for _, a := range sink.announcements {
		if a.Level == observer.LevelDeath && a.Day == 1 && strings.Contains(a.Message, s.PlayerBySeat(5).Name) {
			t.Errorf("saved target announced dead: %q", a.Message)
		}
	}
}

func TestRun_HunterRevengeEndsGame(t *testing.T) {
	s := dealState(t)
	runScripted(t, s, map[int][]string{
		1: {"4", "good morning", "3"},      // seer
		2: {"decline", "quiet night", "3"}, // witch: poison only (no kill, no save offer)
		3: {"do not vote me", "skip", "4"}, // hunter: speech, vote, revenge shot
		4: {"no target", "all calm", "3"},  // wolf: explicit no-kill
		5: {"nothing to add", "3"},
		6: {"same here", "3"},
	})

	if s.Winner != rules.WinnerGood {
		t.Fatalf("winner: got %q (%s)", s.Winner, s.WinnerReason)
	}
	hunter := s.PlayerBySeat(3)
	if hunter.Alive() {
		t.Error("hunter should be voted out")
	}
	if hunter.Hunter.CanShoot {
		t.Error("hunter shot should be consumed")
	}
	if s.PlayerBySeat(4).Alive() {
		t.Error("wolf should die to the revenge shot")
	}
	if s.Night.IntendedKill != "" {
		t.Errorf("no-kill night: intended kill %q", s.Night.IntendedKill)
	}
}

func TestRun_DayCapEndsInDraw(t *testing.T) {
	s := dealState(t)
	b := broker.New(&scriptProducer{t: t, scripts: map[string][]string{}}, acceptModerator{t}, prompt.NewBuilder())
	orch := New(s, b, nil, WithMaxDays(0))
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.Winner != rules.WinnerDraw {
		t.Errorf("winner: got %q", s.Winner)
	}
}

type haltGate struct{ calls int }

func (g *haltGate) Continue(context.Context, int) (bool, error) {
	g.calls++
	return false, nil
}

func TestRun_ContinueGateHalts(t *testing.T) {
	s := dealState(t)
	// Nobody dies and the vote ties, so the game would continue without the gate.
	scripts := map[int][]string{
		1: {"4", "a", "2"},
		2: {"decline", "b", "1"},
		3: {"c", "2"},
		4: {"no target", "d", "1"},
		5: {"e", "skip"},
		6: {"f", "skip"},
	}
	byID := make(map[string][]string)
	for seat, queue := range scripts {
		byID[s.PlayerBySeat(seat).ID] = queue
	}
	b := broker.New(&scriptProducer{t: t, scripts: byID}, acceptModerator{t}, prompt.NewBuilder())
	gate := &haltGate{}
	orch := New(s, b, nil, WithContinueGate(gate))
	if err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if gate.calls != 1 {
		t.Errorf("gate calls: got %d want 1", gate.calls)
	}
	if s.Winner != rules.WinnerDraw {
		t.Errorf("winner: got %q (%s)", s.Winner, s.WinnerReason)
	}
}
