package broker

import (
	"testing"

	"github.com/vdtran/werewolf-gm/internal/game"
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

func TestValidate_SpeechAcceptsAnyText(t *testing.T) {
	s := dealState(t)
	v := NewValidator()
	p := s.PlayerBySeat(5)

	val, verr := v.Validate(s, p.ID, ActionSpeech, "  I trust seat 1.  ", nil)
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if val.Kind != ValueText || val.Text != "I trust seat 1." {
		t.Errorf("got %+v", val)
	}
	if _, verr := v.Validate(s, p.ID, ActionSpeech, "   ", nil); verr == nil {
		t.Error("blank speech should fail")
	}
}

func TestValidate_VoteTargetsAndAbstain(t *testing.T) {
	s := dealState(t)
	v := NewValidator()
	voter := s.PlayerBySeat(5)
	target := s.PlayerBySeat(4)

	for _, raw := range []string{target.ID, target.Name, target.Label(), "4"} {
		val, verr := v.Validate(s, voter.ID, ActionVote, raw, nil)
		if verr != nil {
			t.Fatalf("%q: unexpected error: %v", raw, verr)
		}
		if val.Kind != ValueTarget || val.TargetID != target.ID {
			t.Errorf("%q: got %+v", raw, val)
		}
	}

	for _, raw := range []string{"skip", "弃票", "Abstain."} {
		val, verr := v.Validate(s, voter.ID, ActionVote, raw, nil)
		if verr != nil {
			t.Fatalf("%q: unexpected error: %v", raw, verr)
		}
		if val.Kind != ValueAbstain || val.TargetID != game.VoteSkip {
			t.Errorf("%q: got %+v", raw, val)
		}
	}

	// Self-votes and dead targets fail with the choices listed.
	if _, verr := v.Validate(s, voter.ID, ActionVote, voter.Name, nil); verr == nil {
		t.Error("self-vote should fail")
	}
	dead := s.PlayerBySeat(6)
	s.SetStatus(dead.ID, game.StatusDead, "test")
	_, verr := v.Validate(s, voter.ID, ActionVote, dead.Name, nil)
	if verr == nil {
		t.Fatal("vote for a dead player should fail")
	}
	if len(verr.ValidChoices) == 0 {
		t.Error("validation error should list the valid choices")
	}
}

func TestValidate_WolfKillPoolAndNoTarget(t *testing.T) {
	s := dealState(t)
	v := NewValidator()
	wolf := s.PlayerBySeat(4)

	val, verr := v.Validate(s, wolf.ID, ActionWolfKill, "5", nil)
	if verr != nil || val.Kind != ValueTarget {
		t.Fatalf("got %+v, %v", val, verr)
	}
	// Wolves cannot target wolves.
	if _, verr := v.Validate(s, wolf.ID, ActionWolfKill, "4", nil); verr == nil {
		t.Error("wolf target should be rejected")
	}
	for _, raw := range []string{"no target", "不刀", "空刀"} {
		val, verr := v.Validate(s, wolf.ID, ActionWolfKill, raw, nil)
		if verr != nil || val.Kind != ValueNone {
			t.Errorf("%q: got %+v, %v", raw, val, verr)
		}
	}
	if _, verr := v.Validate(s, wolf.ID, ActionWolfKill, "nobody in particular", nil); verr == nil {
		t.Error("free text is not an explicit no-target response")
	}
}

func TestValidate_SeerExcludesCheckedTargets(t *testing.T) {
	s := dealState(t)
	v := NewValidator()
	seer := s.PlayerBySeat(1)
	wolf := s.PlayerBySeat(4)

	s.RecordSeerCheck(seer.ID, wolf.ID, true)
	if _, verr := v.Validate(s, seer.ID, ActionSeerCheck, wolf.Name, nil); verr == nil {
		t.Error("already-inspected target should be rejected")
	}
	val, verr := v.Validate(s, seer.ID, ActionSeerCheck, "5", nil)
	if verr != nil || val.Kind != ValueTarget {
		t.Errorf("fresh target: got %+v, %v", val, verr)
	}
	if val, _ := v.Validate(s, seer.ID, ActionSeerCheck, "decline", nil); val.Kind != ValueNone {
		t.Errorf("decline: got %+v", val)
	}
}

func TestValidate_WitchSaveYesNo(t *testing.T) {
	s := dealState(t)
	v := NewValidator()
	witch := s.PlayerBySeat(2)
	info := &ActionInfo{KilledPlayerID: s.PlayerBySeat(5).ID}

	if val, verr := v.Validate(s, witch.ID, ActionWitchSave, "yes", info); verr != nil || val.Kind != ValueYes {
		t.Errorf("yes: got %+v, %v", val, verr)
	}
	if val, verr := v.Validate(s, witch.ID, ActionWitchSave, "不救", info); verr != nil || val.Kind != ValueNo {
		t.Errorf("no: got %+v, %v", val, verr)
	}
	if _, verr := v.Validate(s, witch.ID, ActionWitchSave, "maybe", info); verr == nil {
		t.Error("non-answer should fail")
	}

	// With the potion spent only "no" remains valid.
	s.UseSavePotion(witch.ID, info.KilledPlayerID)
	if _, verr := v.Validate(s, witch.ID, ActionWitchSave, "yes", info); verr == nil {
		t.Error("spent potion: yes should fail")
	}
	if val, verr := v.Validate(s, witch.ID, ActionWitchSave, "no", info); verr != nil || val.Kind != ValueNo {
		t.Errorf("spent potion: no should still pass, got %+v, %v", val, verr)
	}
}

func TestValidate_AbilityUnavailableForcesDecline(t *testing.T) {
	s := dealState(t)
	v := NewValidator()
	witch := s.PlayerBySeat(2)
	hunter := s.PlayerBySeat(3)

	s.UsePoisonPotion(witch.ID, s.PlayerBySeat(5).ID)
	if _, verr := v.Validate(s, witch.ID, ActionWitchPoison, "6", nil); verr == nil {
		t.Error("spent poison: target should fail")
	}
	if val, verr := v.Validate(s, witch.ID, ActionWitchPoison, "decline", nil); verr != nil || val.Kind != ValueNone {
		t.Errorf("spent poison: decline should pass, got %+v, %v", val, verr)
	}

	// A living hunter cannot fire the death effect.
	if _, verr := v.Validate(s, hunter.ID, ActionHunterShoot, "4", nil); verr == nil {
		t.Error("living hunter: target should fail")
	}
	s.SetStatus(hunter.ID, game.StatusDead, "test")
	if val, verr := v.Validate(s, hunter.ID, ActionHunterShoot, "4", nil); verr != nil || val.Kind != ValueTarget {
		t.Errorf("dead hunter: got %+v, %v", val, verr)
	}
}
