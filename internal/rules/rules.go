// Package rules holds the stateless rule evaluations: win conditions, speech
// order and vote tallying. Functions here read game state but never mutate it.
package rules

import (
	"log"
	"sort"

	"github.com/vdtran/werewolf-gm/internal/game"
)

// Winner values returned by CheckWinner.
const (
	WinnerNone   = ""
	WinnerGood   = "good"
	WinnerWolves = "wolves"
	WinnerDraw   = "draw"
)

// Verdict is the outcome of a win check: the winning camp (or WinnerNone when
// the game continues) and a human-readable reason.
type Verdict struct {
	Winner string
	Reason string
}

// CheckWinner evaluates the win conditions over alive role counts.
//
// Good wins when no wolves remain. Wolves win on numeric parity with the good
// camp, when every empowered role is dead while villagers remain, or when
// every villager is dead while an empowered role remains. An empty table is
// an anomalous draw. Anything else means the game continues.
func CheckWinner(s *game.State) Verdict {
	var wolves, seers, witches, hunters, villagers int
	for _, p := range s.AlivePlayers() {
		switch p.Role {
		case game.RoleWolf:
			wolves++
		case game.RoleSeer:
			seers++
		case game.RoleWitch:
			witches++
		case game.RoleHunter:
			hunters++
		case game.RoleVillager:
			villagers++
		}
	}
	empowered := seers + witches + hunters
	good := empowered + villagers

	if wolves == 0 && good == 0 {
		return Verdict{Winner: WinnerDraw, Reason: "anomalous draw: no players remain alive"}
	}
	if wolves == 0 {
		return Verdict{Winner: WinnerGood, Reason: "good camp wins: every wolf is out"}
	}
	if wolves >= good {
		return Verdict{Winner: WinnerWolves, Reason: "wolf camp wins: wolves match or outnumber the good camp"}
	}
	if empowered == 0 && villagers > 0 {
		return Verdict{Winner: WinnerWolves, Reason: "wolf camp wins: every empowered role is out"}
	}
	if villagers == 0 && empowered > 0 {
		return Verdict{Winner: WinnerWolves, Reason: "wolf camp wins: every villager is out"}
	}
	return Verdict{Winner: WinnerNone}
}

// SpeechOrder computes this round's speaking order as player IDs.
//
// After a night death, speaking starts at the next-higher seat than the
// deceased's, wrapping to the lowest alive seat. On a peaceful day 1 it starts
// at the lowest seat; on later peaceful days it starts after the previous
// round's last speaker, falling back to the lowest alive seat when that seat
// no longer exists.
func SpeechOrder(s *game.State, nightDeathID string) []string {
	alive := s.AlivePlayers()
	if len(alive) == 0 {
		return nil
	}
	sort.Slice(alive, func(i, j int) bool { return alive[i].Seat < alive[j].Seat })

	startIdx := 0
	switch {
	case nightDeathID != "" && s.Player(nightDeathID) != nil:
		deadSeat := s.Player(nightDeathID).Seat
		startIdx = 0
		for i, p := range alive {
			if p.Seat > deadSeat {
				startIdx = i
				break
			}
		}
	case s.Day <= 1:
		startIdx = 0
	case s.LastSpeakerSeat > 0:
		// Find the last speaker among alive seats and start just after them.
		// A dead or vanished last speaker falls back to the lowest seat.
		found := -1
		for i, p := range alive {
			if p.Seat == s.LastSpeakerSeat {
				found = i
				break
			}
		}
		if found >= 0 {
			startIdx = (found + 1) % len(alive)
		}
	}

	order := make([]string, 0, len(alive))
	for i := 0; i < len(alive); i++ {
		order = append(order, alive[(startIdx+i)%len(alive)].ID)
	}
	return order
}

// TallyResult is the outcome of a vote tally.
type TallyResult struct {
	EliminatedID string // empty when nobody is eliminated
	Tie          bool   // true when top scorers tied
	ValidVotes   int
}

// TallyVotes counts the round's votes. Only votes whose target is alive and
// not the skip sentinel count; invalid targets are discarded with a warning.
// A single top scorer is eliminated; ties eliminate nobody.
func TallyVotes(s *game.State, votes map[string]string) TallyResult {
	counts := make(map[string]int)
	valid := 0
	for voter, target := range votes {
		if target == game.VoteSkip {
			continue
		}
		p := s.Player(target)
		if p == nil || !p.Alive() {
			log.Printf("[rules] discarding vote from %s for invalid target %q", s.Label(voter), target)
			continue
		}
		counts[target]++
		valid++
	}
	if valid == 0 {
		return TallyResult{}
	}

	max := 0
	var top []string
	for target, n := range counts {
		if n > max {
			max = n
			top = []string{target}
		} else if n == max {
			top = append(top, target)
		}
	}
	if len(top) != 1 {
		return TallyResult{Tie: true, ValidVotes: valid}
	}
	return TallyResult{EliminatedID: top[0], ValidVotes: valid}
}
