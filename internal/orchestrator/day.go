package orchestrator

import (
	"context"
	"fmt"
	"log"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/game"
	"github.com/vdtran/werewolf-gm/internal/observer"
	"github.com/vdtran/werewolf-gm/internal/rules"
)

// runDay plays one full day: death announcements, death effects and last
// words for the night's victims, the speech round, the vote and its
// resolution.
func (o *Orchestrator) runDay(ctx context.Context) error {
	s := o.state
	s.BeginDayRound()

	nightDeaths := s.Night.Deaths
	if len(nightDeaths) == 0 {
		o.announce(observer.LevelInfo, "Day %d dawns. The night was peaceful; nobody died.", s.Day)
	} else {
		for _, id := range nightDeaths {
			// Causes of death are never announced.
			o.announce(observer.LevelDeath, "Day %d dawns. Last night, %s died.", s.Day, s.Label(id))
		}
	}
	firstKill := ""
	if len(nightDeaths) > 0 {
		firstKill = nightDeaths[0]
	}

	if err := o.deathEffects(ctx); err != nil {
		return err
	}
	if s.Finished() {
		return nil
	}
	if err := o.lastWords(ctx); err != nil {
		return err
	}
	s.ClearRoundDeaths()
	if o.checkWin() {
		return nil
	}

	if err := o.speechRound(ctx, firstKill); err != nil {
		return err
	}
	if err := o.voteRound(ctx); err != nil {
		return err
	}
	return o.resolveVote(ctx)
}

// deathEffects offers the hunter's revenge shot to every eligible player who
// died this round. The queue is re-read after each shot so a hunter killed by
// another hunter's shot gets their own turn. The ability is consumed whether
// or not a target was chosen, and the win conditions are checked after every
// shot.
func (o *Orchestrator) deathEffects(ctx context.Context) error {
	s := o.state
	s.SetPhase(game.PhaseDeathEffects)

	deaths := s.RoundDeaths()
	for i := 0; i < len(deaths); i++ {
		id := deaths[i]
		if !s.CanHunterShoot(id) {
			continue
		}
		res, err := o.broker.Decide(ctx, s, id, broker.ActionHunterShoot, nil)
		if err != nil {
			return fmt.Errorf("hunter shot: %w", err)
		}
		targetID := ""
		if res.Value.Kind == broker.ValueTarget {
			targetID = res.Value.TargetID
		}
		if err := s.ConsumeHunterShot(id, targetID); err != nil {
			return fmt.Errorf("hunter shot: %w", err)
		}
		if targetID == "" {
			o.announce(observer.LevelDeath, "%s was the hunter and holsters the gun.", s.Label(id))
			continue
		}
		if err := s.SetStatus(targetID, game.StatusDead, "hunter shot"); err != nil {
			s.LogEvent(game.EventEngineError, fmt.Sprintf("hunter shot failed: %v", err), nil)
			continue
		}
		o.announce(observer.LevelDeath, "%s was the hunter and takes %s down in revenge.", s.Label(id), s.Label(targetID))
		if o.checkWin() {
			return nil
		}
		deaths = s.RoundDeaths()
	}
	return nil
}

// lastWords lets every player who died this round speak once, in death order.
func (o *Orchestrator) lastWords(ctx context.Context) error {
	s := o.state
	s.SetPhase(game.PhaseLastWords)

	seen := make(map[string]bool)
	for _, id := range s.RoundDeaths() {
		if seen[id] {
			continue
		}
		seen[id] = true
		res, err := o.broker.Decide(ctx, s, id, broker.ActionLastWords, nil)
		if err != nil {
			return fmt.Errorf("last words: %w", err)
		}
		if res.Value.Text != "" {
			o.announce(observer.LevelSpeech, "%s (last words): %s", s.Label(id), res.Value.Text)
		}
	}
	return nil
}

// speechRound runs the day's discussion in rotation order. Players who die
// between ordering and their turn are skipped with a warning.
func (o *Orchestrator) speechRound(ctx context.Context, nightDeathID string) error {
	s := o.state
	s.SetPhase(game.PhaseSpeech)

	order := rules.SpeechOrder(s, nightDeathID)
	s.SetSpeechOrder(order)
	for _, id := range order {
		p := s.Player(id)
		if p == nil || !p.Alive() {
			log.Printf("[orchestrator] skipping speech for %s: no longer alive", s.Label(id))
			continue
		}
		res, err := o.broker.Decide(ctx, s, id, broker.ActionSpeech, nil)
		if err != nil {
			return fmt.Errorf("speech: %w", err)
		}
		if res.Value.Text == "" {
			o.announce(observer.LevelSpeech, "%s has nothing to say.", p.Label())
			continue
		}
		s.RecordSpeech(id, res.Value.Text)
		o.announce(observer.LevelSpeech, "%s: %s", p.Label(), res.Value.Text)
	}
	return nil
}

// voteRound collects one vote from every alive player in ascending seat
// order. Any outcome that does not resolve to a target counts as an
// abstention.
func (o *Orchestrator) voteRound(ctx context.Context) error {
	s := o.state
	s.SetPhase(game.PhaseVote)

	for _, p := range s.AlivePlayers() {
		res, err := o.broker.Decide(ctx, s, p.ID, broker.ActionVote, nil)
		if err != nil {
			return fmt.Errorf("vote: %w", err)
		}
		target := game.VoteSkip
		if res.Value.Kind == broker.ValueTarget {
			target = res.Value.TargetID
		}
		s.RecordVote(p.ID, target)
		if target == game.VoteSkip {
			o.announce(observer.LevelVote, "%s abstains.", p.Label())
		} else {
			o.announce(observer.LevelVote, "%s votes for %s.", p.Label(), s.Label(target))
		}
	}
	return nil
}

// resolveVote tallies the votes and applies the elimination, including the
// eliminated player's death effects and last words.
func (o *Orchestrator) resolveVote(ctx context.Context) error {
	s := o.state
	s.SetPhase(game.PhaseVoteResolution)

	tally := rules.TallyVotes(s, s.Round.Votes)
	if tally.EliminatedID == "" {
		if tally.Tie {
			o.announce(observer.LevelVerdict, "The vote is tied; nobody is eliminated today.")
		} else {
			o.announce(observer.LevelVerdict, "No valid votes were cast; nobody is eliminated today.")
		}
		return nil
	}

	if err := s.SetStatus(tally.EliminatedID, game.StatusDead, "voted out"); err != nil {
		return fmt.Errorf("vote resolution: %w", err)
	}
	o.announce(observer.LevelVerdict, "%s is voted out with %d valid vote(s).", s.Label(tally.EliminatedID), tally.ValidVotes)
	if o.checkWin() {
		return nil
	}

	if err := o.deathEffects(ctx); err != nil {
		return err
	}
	if s.Finished() {
		return nil
	}
	if err := o.lastWords(ctx); err != nil {
		return err
	}
	s.ClearRoundDeaths()
	o.checkWin()
	return nil
}
