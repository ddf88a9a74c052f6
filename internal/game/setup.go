package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// MinPlayers and MaxPlayers bound the supported table sizes.
const (
	MinPlayers = 6
	MaxPlayers = 11
)

// roleDistributions is the fixed role multiset per player count. The three
// empowered roles are always present; wolf count grows with the table.
var roleDistributions = map[int][]Role{
	6:  {RoleSeer, RoleWitch, RoleHunter, RoleWolf, RoleVillager, RoleVillager},
	7:  {RoleSeer, RoleWitch, RoleHunter, RoleWolf, RoleWolf, RoleVillager, RoleVillager},
	8:  {RoleSeer, RoleWitch, RoleHunter, RoleWolf, RoleWolf, RoleVillager, RoleVillager, RoleVillager},
	9:  {RoleSeer, RoleWitch, RoleHunter, RoleWolf, RoleWolf, RoleWolf, RoleVillager, RoleVillager, RoleVillager},
	10: {RoleSeer, RoleWitch, RoleHunter, RoleWolf, RoleWolf, RoleWolf, RoleVillager, RoleVillager, RoleVillager, RoleVillager},
	11: {RoleSeer, RoleWitch, RoleHunter, RoleWolf, RoleWolf, RoleWolf, RoleWolf, RoleVillager, RoleVillager, RoleVillager, RoleVillager},
}

// Distribution returns a copy of the role multiset for n players.
func Distribution(n int) ([]Role, error) {
	dist, ok := roleDistributions[n]
	if !ok {
		return nil, fmt.Errorf("no role distribution for %d players (supported: %d-%d)", n, MinPlayers, MaxPlayers)
	}
	out := make([]Role, len(dist))
	copy(out, dist)
	return out, nil
}

// Setup builds a fresh game state: seats 1..N assigned in roster order, roles
// drawn from the distribution table using perm (pass nil for a random deal).
func Setup(gameID string, names []string, perm func(n int) []int) (*State, error) {
	if perm == nil {
		perm = rand.Perm
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("roster contains an empty player name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate player name %q in roster", name)
		}
		seen[name] = true
	}

	dist, err := Distribution(len(names))
	if err != nil {
		return nil, err
	}

	s := NewState(gameID)
	order := perm(len(dist))
	if len(order) != len(dist) {
		return nil, fmt.Errorf("role shuffle returned %d indexes for %d roles", len(order), len(dist))
	}

	roster := make([]map[string]any, 0, len(names))
	for i, name := range names {
		role := dist[order[i]]
		p := &Player{
			ID:     uuid.NewString(),
			Name:   name,
			Seat:   i + 1,
			Role:   role,
			Status: StatusAlive,
		}
		switch role {
		case RoleWitch:
			p.Witch = &WitchAbility{HasSavePotion: true, HasPoisonPotion: true}
		case RoleHunter:
			p.Hunter = &HunterAbility{CanShoot: true}
		}
		if err := s.registerPlayer(p); err != nil {
			return nil, err
		}
		roster = append(roster, map[string]any{
			"id":   p.ID,
			"name": p.Name,
			"seat": p.Seat,
			"role": string(p.Role),
		})
	}

	s.LogEvent(EventGameSetup, fmt.Sprintf("game set up with %d players", len(names)), map[string]any{
		"game_id": gameID,
		"players": roster,
	})
	return s, nil
}
