package game

import "fmt"

// Role is a player's fixed role, assigned once during setup.
type Role string

const (
	RoleVillager Role = "villager"
	RoleWolf     Role = "wolf"
	RoleSeer     Role = "seer"
	RoleWitch    Role = "witch"
	RoleHunter   Role = "hunter"
)

// AllRoles lists every role the engine knows about.
var AllRoles = []Role{RoleVillager, RoleWolf, RoleSeer, RoleWitch, RoleHunter}

// IsGood reports whether the role belongs to the good camp.
func (r Role) IsGood() bool { return r != RoleWolf }

// IsEmpowered reports whether the role is a special good role (seer, witch, hunter).
func (r Role) IsEmpowered() bool {
	return r == RoleSeer || r == RoleWitch || r == RoleHunter
}

// Status is a player's life status. Transitions are monotonic: alive -> dead only.
type Status string

const (
	StatusAlive Status = "alive"
	StatusDead  Status = "dead"
)

// WitchAbility tracks the witch's two single-use potions.
type WitchAbility struct {
	HasSavePotion   bool `json:"has_save_potion"`
	HasPoisonPotion bool `json:"has_poison_potion"`
}

// HunterAbility tracks the hunter's single-use shot.
type HunterAbility struct {
	CanShoot bool `json:"can_shoot"`
}

// HistoryMeta flags how a history entry was produced.
type HistoryMeta struct {
	ActionType        string `json:"action_type,omitempty"`
	IsErrorResponse   bool   `json:"is_error_response,omitempty"`
	IsAcceptedInvalid bool   `json:"is_accepted_invalid,omitempty"`
	IsOverride        bool   `json:"is_override,omitempty"`
}

// HistoryEntry is one role-tagged record in a player's conversation history.
// The history only grows; entries are never rewritten or pruned.
type HistoryEntry struct {
	Role    string       `json:"role"` // "user", "assistant" or "system"
	Content string       `json:"content"`
	Meta    *HistoryMeta `json:"meta,omitempty"`
}

// SeerCheck is one recorded seer inspection result.
type SeerCheck struct {
	Day    int    `json:"day"`
	Target string `json:"target"`
	IsWolf bool   `json:"is_wolf"`
}

// Player is one seat at the table. ID, Seat and Role never change after setup.
// Witch and Hunter are nil unless the player holds that role, so only the
// relevant role exposes the relevant ability state.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Seat int    `json:"seat"`
	Role Role   `json:"role"`

	Status Status `json:"status"`

	Witch  *WitchAbility  `json:"witch,omitempty"`
	Hunter *HunterAbility `json:"hunter,omitempty"`

	// PoisonedThisRound is transient and cleared at the start of every night.
	PoisonedThisRound bool `json:"poisoned_this_round,omitempty"`

	History    []HistoryEntry `json:"history,omitempty"`
	SeerChecks []SeerCheck    `json:"seer_checks,omitempty"`
}

// Alive reports whether the player is still in the game.
func (p *Player) Alive() bool { return p.Status == StatusAlive }

// Label returns the GM-facing display name: seat number plus roster name.
func (p *Player) Label() string {
	return fmt.Sprintf("Player %d (%s)", p.Seat, p.Name)
}

// LabelWithRole returns the label including the role, for GM-only surfaces.
func (p *Player) LabelWithRole() string {
	return fmt.Sprintf("Player %d (%s) [%s]", p.Seat, p.Name, p.Role)
}

// HasCheckedTarget reports whether this seer already inspected the target.
func (p *Player) HasCheckedTarget(targetID string) bool {
	for _, c := range p.SeerChecks {
		if c.Target == targetID {
			return true
		}
	}
	return false
}
