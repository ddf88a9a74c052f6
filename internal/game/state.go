package game

import (
	"fmt"
	"sort"
	"time"
)

// Phase names for the night/day cycle.
type Phase string

const (
	PhaseSetup           Phase = "setup"
	PhaseNightStart      Phase = "night_start"
	PhaseWolfNomination  Phase = "wolf_nomination"
	PhaseWolfDecision    Phase = "wolf_decision"
	PhaseWitchSave       Phase = "witch_save"
	PhaseWitchPoison     Phase = "witch_poison"
	PhaseSeerCheck       Phase = "seer_check"
	PhaseNightResolution Phase = "night_resolution"
	PhaseDayStart        Phase = "day_start"
	PhaseDeathEffects    Phase = "death_effects"
	PhaseLastWords       Phase = "last_words"
	PhaseSpeech          Phase = "speech"
	PhaseVote            Phase = "vote"
	PhaseVoteResolution  Phase = "vote_resolution"
	PhaseGameOver        Phase = "game_over"
)

// VoteSkip is the explicit abstention sentinel, distinct from an invalid or
// missing vote.
const VoteSkip = "SKIP"

// NightRecord holds the ephemeral per-night decisions, reset every night.
type NightRecord struct {
	IntendedKill  string   `json:"intended_kill,omitempty"`
	WitchInformed string   `json:"witch_informed,omitempty"`
	WitchSaved    string   `json:"witch_saved,omitempty"`
	WitchPoisoned string   `json:"witch_poisoned,omitempty"`
	SeerTarget    string   `json:"seer_target,omitempty"`
	SeerSawWolf   bool     `json:"seer_saw_wolf,omitempty"`
	SeerChecked   bool     `json:"seer_checked,omitempty"`
	Deaths        []string `json:"deaths,omitempty"`
}

// SpeechRecord is one entry in the round speech log.
type SpeechRecord struct {
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

// RoundRecord holds per-day speech and vote data, reset every day.
type RoundRecord struct {
	SpeechOrder []string          `json:"speech_order,omitempty"`
	Votes       map[string]string `json:"votes,omitempty"`
	Speeches    []SpeechRecord    `json:"speeches,omitempty"`
}

// State is the authoritative game state. It is mutated by exactly one goroutine
// at a time (the orchestrator), so it carries no locking of its own. Once a
// winner is set the state is read-only: further mutations are rejected and
// logged as engine errors.
type State struct {
	GameID string
	Day    int
	Phase  Phase

	players map[string]*Player
	bySeat  []string // player IDs sorted by seat

	Night       NightRecord
	Nominations map[int]string // nominating wolf seat -> target player ID
	Round       RoundRecord

	// LastSpeakerSeat carries across days for peaceful-night rotation. 0 = none yet.
	LastSpeakerSeat int

	Winner       string
	WinnerReason string

	roundDeaths []string // players who died this round, in death order

	log   []Event
	sinks []EventSink
	now   func() time.Time
}

// NewState creates an empty state in the setup phase.
func NewState(gameID string) *State {
	return &State{
		GameID:      gameID,
		Phase:       PhaseSetup,
		players:     make(map[string]*Player),
		Nominations: make(map[int]string),
		Round:       RoundRecord{Votes: make(map[string]string)},
		now:         time.Now,
	}
}

// SetClock overrides the timestamp source, for deterministic tests and replay.
func (s *State) SetClock(now func() time.Time) { s.now = now }

// Finished reports whether a winner has been determined.
func (s *State) Finished() bool { return s.Winner != "" }

func (s *State) rejectIfFinished(op string) bool {
	if !s.Finished() {
		return false
	}
	s.log = append(s.log, Event{
		Timestamp: s.now(),
		Kind:      EventEngineError,
		Message:   fmt.Sprintf("rejected %s: game is over", op),
		Details:   map[string]any{"day": s.Day, "phase": string(s.Phase)},
	})
	return true
}

// registerPlayer adds a player during setup or replay. Not logged by itself;
// setup logs a single GameSetup event for the whole roster.
func (s *State) registerPlayer(p *Player) error {
	if _, ok := s.players[p.ID]; ok {
		return fmt.Errorf("duplicate player id %q", p.ID)
	}
	s.players[p.ID] = p
	s.bySeat = append(s.bySeat, p.ID)
	sort.Slice(s.bySeat, func(i, j int) bool {
		return s.players[s.bySeat[i]].Seat < s.players[s.bySeat[j]].Seat
	})
	return nil
}

// Player returns the player with the given ID, or nil.
func (s *State) Player(id string) *Player { return s.players[id] }

// PlayerBySeat returns the player at the given seat, or nil.
func (s *State) PlayerBySeat(seat int) *Player {
	for _, id := range s.bySeat {
		if p := s.players[id]; p.Seat == seat {
			return p
		}
	}
	return nil
}

// PlayerByName returns the player with the given roster name, or nil.
func (s *State) PlayerByName(name string) *Player {
	for _, id := range s.bySeat {
		if p := s.players[id]; p.Name == name {
			return p
		}
	}
	return nil
}

// Players returns all players in ascending seat order.
func (s *State) Players() []*Player {
	out := make([]*Player, 0, len(s.bySeat))
	for _, id := range s.bySeat {
		out = append(out, s.players[id])
	}
	return out
}

// AlivePlayers returns alive players in ascending seat order, excluding the
// given IDs.
func (s *State) AlivePlayers(exclude ...string) []*Player {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	var out []*Player
	for _, id := range s.bySeat {
		p := s.players[id]
		if p.Alive() && !skip[id] {
			out = append(out, p)
		}
	}
	return out
}

// AliveByRole returns alive players holding the role, in ascending seat order.
func (s *State) AliveByRole(role Role) []*Player {
	var out []*Player
	for _, p := range s.AlivePlayers() {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

// RoundDeaths returns the players who died this round, in death order.
func (s *State) RoundDeaths() []string {
	out := make([]string, len(s.roundDeaths))
	copy(out, s.roundDeaths)
	return out
}

// Label returns the GM display name for a player ID, tolerating unknown IDs.
func (s *State) Label(id string) string {
	if p := s.Player(id); p != nil {
		return p.Label()
	}
	if id == "" {
		return "nobody"
	}
	return id
}

// SetPhase moves the state machine to the given phase.
func (s *State) SetPhase(phase Phase) {
	if s.rejectIfFinished("phase change") {
		return
	}
	s.Phase = phase
	s.LogEvent(EventPhaseChange, fmt.Sprintf("phase -> %s", phase), map[string]any{
		"phase": string(phase),
	})
}

// BeginNight increments the day counter and resets all per-night records:
// night decisions, wolf nominations, round deaths and poison marks.
func (s *State) BeginNight() {
	if s.rejectIfFinished("night start") {
		return
	}
	s.Day++
	s.Phase = PhaseNightStart
	s.Night = NightRecord{}
	s.Nominations = make(map[int]string)
	s.roundDeaths = nil
	for _, p := range s.Players() {
		p.PoisonedThisRound = false
	}
	s.LogEvent(EventNightReset, fmt.Sprintf("night %d begins", s.Day), nil)
}

// BeginDayRound resets the per-day speech and vote records.
func (s *State) BeginDayRound() {
	if s.rejectIfFinished("day round start") {
		return
	}
	s.Phase = PhaseDayStart
	s.Round = RoundRecord{Votes: make(map[string]string)}
	s.LogEvent(EventRoundReset, fmt.Sprintf("day %d begins", s.Day), nil)
}

// SetStatus updates a player's life status. Only alive -> dead is a legal
// transition; anything else is logged as an engine error and rejected without
// mutating state.
func (s *State) SetStatus(id string, status Status, reason string) error {
	if s.rejectIfFinished("status update") {
		return fmt.Errorf("game is over")
	}
	if status != StatusAlive && status != StatusDead {
		s.LogEvent(EventEngineError, fmt.Sprintf("unknown status %q for %s", status, s.Label(id)), nil)
		return fmt.Errorf("unknown status %q", status)
	}
	p := s.Player(id)
	if p == nil {
		s.LogEvent(EventEngineError, fmt.Sprintf("status update for unknown player %q", id), nil)
		return fmt.Errorf("unknown player %q", id)
	}
	if p.Status == status {
		return nil
	}
	if p.Status == StatusDead && status == StatusAlive {
		s.LogEvent(EventEngineError, fmt.Sprintf("rejected revival of %s", p.Label()), map[string]any{
			"player": id,
		})
		return fmt.Errorf("player %s is dead and cannot be revived", id)
	}
	old := p.Status
	p.Status = status
	if status == StatusDead {
		s.roundDeaths = append(s.roundDeaths, id)
	}
	s.LogEvent(EventStatusUpdate, fmt.Sprintf("%s: %s -> %s (%s)", p.Label(), old, status, reason), map[string]any{
		"player":     id,
		"old_status": string(old),
		"new_status": string(status),
		"reason":     reason,
	})
	return nil
}

// RecordNomination stores a non-binding wolf nomination. Nominations are
// recorded but never applied to state directly.
func (s *State) RecordNomination(wolfID, targetID string) {
	if s.rejectIfFinished("nomination") {
		return
	}
	wolf := s.Player(wolfID)
	if wolf == nil {
		return
	}
	s.Nominations[wolf.Seat] = targetID
	s.LogEvent(EventWolfNomination, fmt.Sprintf("%s nominates %s", wolf.Label(), s.Label(targetID)), map[string]any{
		"wolf":   wolfID,
		"target": targetID,
	})
}

// SetIntendedKill records the decision-maker wolf's authoritative target.
// An empty target means an explicit no-kill night.
func (s *State) SetIntendedKill(targetID string) {
	if s.rejectIfFinished("intended kill") {
		return
	}
	s.Night.IntendedKill = targetID
	s.LogEvent(EventIntendedKill, fmt.Sprintf("wolves target %s", s.Label(targetID)), map[string]any{
		"target": targetID,
	})
}

// InformWitch records which target the witch was told about this night.
func (s *State) InformWitch(targetID string) {
	s.Night.WitchInformed = targetID
}

// CanUseSave reports whether the witch still holds the save potion.
func (s *State) CanUseSave(witchID string) bool {
	p := s.Player(witchID)
	return p != nil && p.Role == RoleWitch && p.Witch != nil && p.Witch.HasSavePotion
}

// CanUsePoison reports whether the witch still holds the poison potion.
func (s *State) CanUsePoison(witchID string) bool {
	p := s.Player(witchID)
	return p != nil && p.Role == RoleWitch && p.Witch != nil && p.Witch.HasPoisonPotion
}

// UseSavePotion consumes the save potion on the intended kill target.
func (s *State) UseSavePotion(witchID, targetID string) error {
	if s.rejectIfFinished("save potion") {
		return fmt.Errorf("game is over")
	}
	if !s.CanUseSave(witchID) {
		s.LogEvent(EventEngineError, fmt.Sprintf("%s tried to use a spent or missing save potion", s.Label(witchID)), nil)
		return fmt.Errorf("save potion not available")
	}
	p := s.Player(witchID)
	p.Witch.HasSavePotion = false
	s.Night.WitchSaved = targetID
	s.LogEvent(EventPotionUsed, fmt.Sprintf("%s uses the save potion on %s", p.Label(), s.Label(targetID)), map[string]any{
		"player": witchID,
		"potion": "save",
		"target": targetID,
	})
	return nil
}

// UsePoisonPotion consumes the poison potion and marks the target as poisoned
// this round; the target is scheduled to die at night resolution.
func (s *State) UsePoisonPotion(witchID, targetID string) error {
	if s.rejectIfFinished("poison potion") {
		return fmt.Errorf("game is over")
	}
	if !s.CanUsePoison(witchID) {
		s.LogEvent(EventEngineError, fmt.Sprintf("%s tried to use a spent or missing poison potion", s.Label(witchID)), nil)
		return fmt.Errorf("poison potion not available")
	}
	target := s.Player(targetID)
	if target == nil {
		return fmt.Errorf("unknown poison target %q", targetID)
	}
	p := s.Player(witchID)
	p.Witch.HasPoisonPotion = false
	s.Night.WitchPoisoned = targetID
	target.PoisonedThisRound = true
	s.LogEvent(EventPotionUsed, fmt.Sprintf("%s uses the poison potion on %s", p.Label(), target.Label()), map[string]any{
		"player": witchID,
		"potion": "poison",
		"target": targetID,
	})
	s.LogEvent(EventPoisonMark, fmt.Sprintf("%s is poisoned this round", target.Label()), map[string]any{
		"player": targetID,
	})
	return nil
}

// RecordSeerCheck appends a seer inspection to the seer's private check history
// and to the night record. The result is never broadcast.
func (s *State) RecordSeerCheck(seerID, targetID string, isWolf bool) {
	if s.rejectIfFinished("seer check") {
		return
	}
	seer := s.Player(seerID)
	if seer == nil {
		return
	}
	seer.SeerChecks = append(seer.SeerChecks, SeerCheck{Day: s.Day, Target: targetID, IsWolf: isWolf})
	s.Night.SeerTarget = targetID
	s.Night.SeerSawWolf = isWolf
	s.Night.SeerChecked = true
	s.LogEvent(EventSeerResult, fmt.Sprintf("%s inspected %s", seer.Label(), s.Label(targetID)), map[string]any{
		"player":  seerID,
		"target":  targetID,
		"is_wolf": isWolf,
	})
}

// CanHunterShoot reports whether the hunter's death-effect ability can fire:
// the hunter must be dead, not poisoned this round, and still hold the shot.
func (s *State) CanHunterShoot(hunterID string) bool {
	p := s.Player(hunterID)
	if p == nil || p.Role != RoleHunter || p.Hunter == nil {
		return false
	}
	return p.Status == StatusDead && !p.PoisonedThisRound && p.Hunter.CanShoot
}

// ConsumeHunterShot spends the hunter's ability. The ability is consumed
// whether or not a target was chosen; targetID may be empty.
func (s *State) ConsumeHunterShot(hunterID, targetID string) error {
	if s.rejectIfFinished("hunter shot") {
		return fmt.Errorf("game is over")
	}
	p := s.Player(hunterID)
	if p == nil || p.Role != RoleHunter || p.Hunter == nil || !p.Hunter.CanShoot {
		s.LogEvent(EventEngineError, fmt.Sprintf("%s tried to use a spent or missing hunter ability", s.Label(hunterID)), nil)
		return fmt.Errorf("hunter ability not available")
	}
	p.Hunter.CanShoot = false
	msg := fmt.Sprintf("%s holsters the gun", p.Label())
	if targetID != "" {
		msg = fmt.Sprintf("%s shoots %s", p.Label(), s.Label(targetID))
	}
	s.LogEvent(EventHunterShot, msg, map[string]any{
		"player": hunterID,
		"target": targetID,
	})
	return nil
}

// FinalizeNightDeaths copies this round's deaths into the night record.
func (s *State) FinalizeNightDeaths() {
	if s.rejectIfFinished("night resolution") {
		return
	}
	deaths := s.RoundDeaths()
	s.Night.Deaths = deaths
	s.LogEvent(EventNightResolution, fmt.Sprintf("night %d resolved with %d death(s)", s.Day, len(deaths)), map[string]any{
		"deaths": deaths,
	})
}

// ClearRoundDeaths empties the per-round death list once death effects and
// last words have been handled.
func (s *State) ClearRoundDeaths() {
	if s.rejectIfFinished("round deaths clear") {
		return
	}
	s.roundDeaths = nil
	s.LogEvent(EventDeathsProcessed, "round deaths processed", nil)
}

// AppendHistory appends a conversation entry to the player's history and logs
// it with the full content so the log replays deterministically.
func (s *State) AppendHistory(playerID string, entry HistoryEntry) {
	if s.rejectIfFinished("history append") {
		return
	}
	p := s.Player(playerID)
	if p == nil {
		s.LogEvent(EventEngineError, fmt.Sprintf("history append for unknown player %q", playerID), nil)
		return
	}
	p.History = append(p.History, entry)
	details := map[string]any{
		"player":  playerID,
		"role":    entry.Role,
		"content": entry.Content,
	}
	if entry.Meta != nil {
		details["action_type"] = entry.Meta.ActionType
		if entry.Meta.IsErrorResponse {
			details["is_error_response"] = true
		}
		if entry.Meta.IsAcceptedInvalid {
			details["is_accepted_invalid"] = true
		}
		if entry.Meta.IsOverride {
			details["is_override"] = true
		}
	}
	preview := entry.Content
	if len(preview) > 70 {
		preview = preview[:70] + "..."
	}
	s.LogEvent(EventPlayerMessage, fmt.Sprintf("history %s <- %s: %s", p.Label(), entry.Role, preview), details)
}

// History returns the role/content pairs of the player's history, suitable for
// building producer context.
func (s *State) History(playerID string) []HistoryEntry {
	p := s.Player(playerID)
	if p == nil {
		return nil
	}
	out := make([]HistoryEntry, len(p.History))
	copy(out, p.History)
	return out
}

// SetSpeechOrder records the computed order for this round.
func (s *State) SetSpeechOrder(order []string) {
	if s.rejectIfFinished("speech order") {
		return
	}
	s.Round.SpeechOrder = order
	s.LogEvent(EventSpeechOrder, fmt.Sprintf("speech order set (%d speakers)", len(order)), map[string]any{
		"order": order,
	})
}

// RecordSpeech logs a speaker's statement and advances the last-speaker seat.
func (s *State) RecordSpeech(playerID, text string) {
	if s.rejectIfFinished("speech") {
		return
	}
	p := s.Player(playerID)
	if p == nil {
		return
	}
	s.Round.Speeches = append(s.Round.Speeches, SpeechRecord{PlayerID: playerID, Text: text})
	s.LastSpeakerSeat = p.Seat
	s.LogEvent(EventSpeechTaken, fmt.Sprintf("%s spoke", p.Label()), map[string]any{
		"player": playerID,
		"text":   text,
	})
}

// RecordVote stores one vote for the round. Target is a player ID or VoteSkip.
func (s *State) RecordVote(voterID, targetID string) {
	if s.rejectIfFinished("vote") {
		return
	}
	if s.Round.Votes == nil {
		s.Round.Votes = make(map[string]string)
	}
	s.Round.Votes[voterID] = targetID
	display := s.Label(targetID)
	if targetID == VoteSkip {
		display = "abstain"
	}
	s.LogEvent(EventVoteCast, fmt.Sprintf("%s votes %s", s.Label(voterID), display), map[string]any{
		"voter":  voterID,
		"target": targetID,
	})
}

// SetWinner ends the game. The state is read-only afterwards.
func (s *State) SetWinner(winner, reason string) {
	if s.Finished() {
		return
	}
	s.Phase = PhaseGameOver
	s.Winner = winner
	s.WinnerReason = reason
	s.LogEvent(EventGameOver, reason, map[string]any{
		"winner": winner,
	})
}
