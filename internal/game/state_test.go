package game

import (
	"testing"
)

func identityPerm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// sixPlayerState deals seat 1 seer, 2 witch, 3 hunter, 4 wolf, 5-6 villagers.
func sixPlayerState(t *testing.T) *State {
	t.Helper()
	s, err := Setup("g1", []string{"ana", "bea", "cy", "dan", "eli", "fay"}, identityPerm)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return s
}

func TestSetStatus_Monotonic(t *testing.T) {
	s := sixPlayerState(t)
	p := s.PlayerBySeat(5)

	if err := s.SetStatus(p.ID, StatusDead, "test"); err != nil {
		t.Fatalf("kill: %v", err)
	}
	if err := s.SetStatus(p.ID, StatusAlive, "revive"); err == nil {
		t.Error("revival should be rejected")
	}
	if p.Alive() {
		t.Error("player should still be dead")
	}
	if err := s.SetStatus(p.ID, Status("ghost"), "test"); err == nil {
		t.Error("unknown status should be rejected")
	}
	if err := s.SetStatus("nope", StatusDead, "test"); err == nil {
		t.Error("unknown player should be rejected")
	}
}

func TestSetStatus_TracksRoundDeaths(t *testing.T) {
	s := sixPlayerState(t)
	a := s.PlayerBySeat(5)
	b := s.PlayerBySeat(6)
	s.SetStatus(a.ID, StatusDead, "test")
	s.SetStatus(b.ID, StatusDead, "test")

	deaths := s.RoundDeaths()
	if len(deaths) != 2 || deaths[0] != a.ID || deaths[1] != b.ID {
		t.Errorf("want deaths in order [%s %s], got %v", a.ID, b.ID, deaths)
	}
	s.ClearRoundDeaths()
	if len(s.RoundDeaths()) != 0 {
		t.Error("round deaths should be cleared")
	}
}

func TestWitchPotions_SingleUse(t *testing.T) {
	s := sixPlayerState(t)
	witch := s.PlayerBySeat(2)
	victim := s.PlayerBySeat(5)

	if !s.CanUseSave(witch.ID) || !s.CanUsePoison(witch.ID) {
		t.Fatal("fresh witch should hold both potions")
	}
	if err := s.UseSavePotion(witch.ID, victim.ID); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.CanUseSave(witch.ID) {
		t.Error("save potion should be spent")
	}
	if err := s.UseSavePotion(witch.ID, victim.ID); err == nil {
		t.Error("second save should be rejected")
	}

	if err := s.UsePoisonPotion(witch.ID, victim.ID); err != nil {
		t.Fatalf("poison: %v", err)
	}
	if !victim.PoisonedThisRound {
		t.Error("poison target should carry the round mark")
	}
	if err := s.UsePoisonPotion(witch.ID, victim.ID); err == nil {
		t.Error("second poison should be rejected")
	}
}

func TestPoisonMark_ClearedAtNight(t *testing.T) {
	s := sixPlayerState(t)
	witch := s.PlayerBySeat(2)
	victim := s.PlayerBySeat(5)
	s.UsePoisonPotion(witch.ID, victim.ID)

	s.BeginNight()
	if victim.PoisonedThisRound {
		t.Error("BeginNight should clear poison marks")
	}
	if s.Night.WitchPoisoned != "" || s.Night.IntendedKill != "" {
		t.Error("BeginNight should reset the night record")
	}
}

func TestHunterShot_OnceAndNotWhilePoisoned(t *testing.T) {
	s := sixPlayerState(t)
	hunter := s.PlayerBySeat(3)

	if s.CanHunterShoot(hunter.ID) {
		t.Error("a living hunter cannot fire the death effect")
	}
	s.SetStatus(hunter.ID, StatusDead, "test")
	if !s.CanHunterShoot(hunter.ID) {
		t.Error("a dead, unpoisoned hunter should be able to shoot")
	}
	if err := s.ConsumeHunterShot(hunter.ID, ""); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if s.CanHunterShoot(hunter.ID) {
		t.Error("the shot is single-use")
	}
	if err := s.ConsumeHunterShot(hunter.ID, ""); err == nil {
		t.Error("second shot should be rejected")
	}
}

func TestHunterShot_BlockedByPoison(t *testing.T) {
	s := sixPlayerState(t)
	witch := s.PlayerBySeat(2)
	hunter := s.PlayerBySeat(3)
	s.UsePoisonPotion(witch.ID, hunter.ID)
	s.SetStatus(hunter.ID, StatusDead, "poison")
	if s.CanHunterShoot(hunter.ID) {
		t.Error("a poisoned hunter cannot shoot")
	}
}

func TestStateReadOnlyAfterGameOver(t *testing.T) {
	s := sixPlayerState(t)
	s.SetWinner("good", "test over")
	p := s.PlayerBySeat(5)

	if err := s.SetStatus(p.ID, StatusDead, "late"); err == nil {
		t.Error("mutation after game over should be rejected")
	}
	if !p.Alive() {
		t.Error("rejected mutation must not change state")
	}
	s.SetWinner("wolves", "overwrite attempt")
	if s.Winner != "good" {
		t.Error("winner must not be overwritten")
	}

	found := false
	for _, ev := range s.Events() {
		if ev.Kind == EventEngineError {
			found = true
		}
	}
	if !found {
		t.Error("rejected mutation should be logged as an engine error")
	}
}

func TestAppendHistory_LogsFullContent(t *testing.T) {
	s := sixPlayerState(t)
	p := s.PlayerBySeat(1)
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	s.AppendHistory(p.ID, HistoryEntry{Role: "assistant", Content: string(long)})

	var ev Event
	for _, e := range s.Events() {
		if e.Kind == EventPlayerMessage {
			ev = e
		}
	}
	if ev.Kind == "" {
		t.Fatal("no PlayerMessage event logged")
	}
	if got, _ := ev.Details["content"].(string); got != string(long) {
		t.Error("event details must carry the full content for replay")
	}
	if len(s.History(p.ID)) != 1 {
		t.Errorf("want 1 history entry, got %d", len(s.History(p.ID)))
	}
}

func TestNominationsResetEachNight(t *testing.T) {
	s := sixPlayerState(t)
	wolf := s.PlayerBySeat(4)
	s.RecordNomination(wolf.ID, s.PlayerBySeat(1).ID)
	if len(s.Nominations) != 1 {
		t.Fatalf("want 1 nomination, got %d", len(s.Nominations))
	}
	s.BeginNight()
	if len(s.Nominations) != 0 {
		t.Error("BeginNight should clear nominations")
	}
}
