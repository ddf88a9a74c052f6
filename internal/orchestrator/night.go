package orchestrator

import (
	"context"
	"fmt"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/game"
	"github.com/vdtran/werewolf-gm/internal/observer"
)

// runNight plays one full night: wolf nomination and kill, witch potions,
// seer inspection, then resolution of all pending deaths.
func (o *Orchestrator) runNight(ctx context.Context) error {
	s := o.state
	s.BeginNight()
	o.announce(observer.LevelPhase, "Night %d falls. Everyone closes their eyes.", s.Day)

	if err := o.wolfPhase(ctx); err != nil {
		return err
	}
	if err := o.witchPhase(ctx); err != nil {
		return err
	}
	if err := o.seerPhase(ctx); err != nil {
		return err
	}
	o.resolveNight()
	return nil
}

// wolfPhase collects non-binding nominations from the pack, then the
// authoritative kill decision from the decision-maker wolf (highest alive
// seat). A decision that resolves to no usable target is an explicit no-kill.
func (o *Orchestrator) wolfPhase(ctx context.Context) error {
	s := o.state
	wolves := s.AliveByRole(game.RoleWolf)
	if len(wolves) == 0 {
		s.SetIntendedKill("")
		return nil
	}
	decisionMaker := wolves[len(wolves)-1]
	info := &broker.ActionInfo{DecisionMakerID: decisionMaker.ID}

	s.SetPhase(game.PhaseWolfNomination)
	for _, w := range wolves {
		if w.ID == decisionMaker.ID {
			continue
		}
		res, err := o.broker.Decide(ctx, s, w.ID, broker.ActionWolfNominate, info)
		if err != nil {
			return fmt.Errorf("wolf nomination: %w", err)
		}
		if res.Value.Kind == broker.ValueTarget {
			s.RecordNomination(w.ID, res.Value.TargetID)
		}
	}

	s.SetPhase(game.PhaseWolfDecision)
	res, err := o.broker.Decide(ctx, s, decisionMaker.ID, broker.ActionWolfKill, info)
	if err != nil {
		return fmt.Errorf("wolf decision: %w", err)
	}
	if res.Value.Kind == broker.ValueTarget {
		s.SetIntendedKill(res.Value.TargetID)
	} else {
		s.SetIntendedKill("")
	}
	return nil
}

// witchPhase offers the save potion (only when there is an intended kill and
// the potion remains), then the poison potion. The potions are exclusive
// within a single night: using the save skips the poison offer.
func (o *Orchestrator) witchPhase(ctx context.Context) error {
	s := o.state
	witches := s.AliveByRole(game.RoleWitch)
	if len(witches) == 0 {
		return nil
	}
	witch := witches[0]

	s.SetPhase(game.PhaseWitchSave)
	intended := s.Night.IntendedKill
	if intended != "" && s.CanUseSave(witch.ID) {
		s.InformWitch(intended)
		res, err := o.broker.Decide(ctx, s, witch.ID, broker.ActionWitchSave, &broker.ActionInfo{KilledPlayerID: intended})
		if err != nil {
			return fmt.Errorf("witch save: %w", err)
		}
		if res.Value.Kind == broker.ValueYes {
			if err := s.UseSavePotion(witch.ID, intended); err != nil {
				return fmt.Errorf("witch save: %w", err)
			}
		}
	}

	s.SetPhase(game.PhaseWitchPoison)
	if s.Night.WitchSaved != "" || !s.CanUsePoison(witch.ID) {
		return nil
	}
	res, err := o.broker.Decide(ctx, s, witch.ID, broker.ActionWitchPoison, nil)
	if err != nil {
		return fmt.Errorf("witch poison: %w", err)
	}
	if res.Value.Kind == broker.ValueTarget {
		if err := s.UsePoisonPotion(witch.ID, res.Value.TargetID); err != nil {
			return fmt.Errorf("witch poison: %w", err)
		}
	}
	return nil
}

// seerPhase lets the seer inspect one uninspected alive player. The result is
// appended to the seer's private history only, never broadcast.
func (o *Orchestrator) seerPhase(ctx context.Context) error {
	s := o.state
	seers := s.AliveByRole(game.RoleSeer)
	if len(seers) == 0 {
		return nil
	}
	seer := seers[0]

	s.SetPhase(game.PhaseSeerCheck)
	res, err := o.broker.Decide(ctx, s, seer.ID, broker.ActionSeerCheck, nil)
	if err != nil {
		return fmt.Errorf("seer check: %w", err)
	}
	if res.Value.Kind != broker.ValueTarget {
		return nil
	}
	target := s.Player(res.Value.TargetID)
	if target == nil {
		return nil
	}
	isWolf := target.Role == game.RoleWolf
	s.RecordSeerCheck(seer.ID, target.ID, isWolf)

	verdict := "is NOT a wolf"
	if isWolf {
		verdict = "IS a wolf"
	}
	s.AppendHistory(seer.ID, game.HistoryEntry{
		Role:    broker.RolePrompter,
		Content: fmt.Sprintf("Inspection result for night %d: %s %s.", s.Day, target.Label(), verdict),
		Meta:    &game.HistoryMeta{ActionType: "seer_result"},
	})
	return nil
}

// resolveNight applies the pending night deaths. The intended kill dies unless
// saved; the poisoned player dies if still alive. Deaths are then finalized
// into the night record and the win conditions checked.
func (o *Orchestrator) resolveNight() {
	s := o.state
	s.SetPhase(game.PhaseNightResolution)

	if intended := s.Night.IntendedKill; intended != "" && s.Night.WitchSaved != intended {
		if err := s.SetStatus(intended, game.StatusDead, "wolf attack"); err != nil {
			s.LogEvent(game.EventEngineError, fmt.Sprintf("night kill failed: %v", err), nil)
		}
	}
	if poisoned := s.Night.WitchPoisoned; poisoned != "" {
		if p := s.Player(poisoned); p != nil && p.Alive() {
			if err := s.SetStatus(poisoned, game.StatusDead, "poison"); err != nil {
				s.LogEvent(game.EventEngineError, fmt.Sprintf("poison death failed: %v", err), nil)
			}
		}
	}
	s.FinalizeNightDeaths()
	o.checkWin()
}
