package game

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded in the game log. The log is the single source of truth
// for what happened: Replay rebuilds a state from these entries alone, so
// every mutation of player or round state has a kind here.
const (
	EventGameSetup       = "GameSetup"
	EventPhaseChange     = "PhaseChange"
	EventNightReset      = "NightReset"
	EventRoundReset      = "RoundReset"
	EventNightResolution = "NightResolution"
	EventDeathsProcessed = "DeathsProcessed"
	EventSpeechOrder     = "SpeechOrder"
	EventStatusUpdate    = "StatusUpdate"
	EventWolfNomination  = "WolfNomination"
	EventIntendedKill    = "IntendedKill"
	EventPotionUsed      = "PotionUsed"
	EventPoisonMark      = "PoisonMark"
	EventSeerResult      = "SeerResult"
	EventHunterShot      = "HunterShot"
	EventPlayerMessage   = "PlayerMessage"
	EventSpeechTaken     = "SpeechTaken"
	EventVoteCast        = "VoteCast"
	EventBroadcast       = "Broadcast"
	EventGameOver        = "GameOver"
	EventEngineError     = "EngineError"
	EventModeratorAction = "ModeratorAction"
)

// Event is one append-only entry in the game log.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"kind"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// EventSink receives every appended event, e.g. for persistence or fan-out.
// Implementations must not block; errors are the sink's own problem.
type EventSink interface {
	RecordEvent(gameID string, ev Event)
}

// LogEvent appends an entry to the game log. Day and phase are stamped into
// the details unless the caller already set them.
func (s *State) LogEvent(kind, message string, details map[string]any) {
	if details == nil {
		details = make(map[string]any, 2)
	}
	if _, ok := details["day"]; !ok {
		details["day"] = s.Day
	}
	if _, ok := details["phase"]; !ok {
		details["phase"] = string(s.Phase)
	}
	ev := Event{
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		Kind:      kind,
		Message:   message,
		Details:   details,
	}
	s.log = append(s.log, ev)
	for _, sink := range s.sinks {
		sink.RecordEvent(s.GameID, ev)
	}
}

// Events returns a copy of the game log.
func (s *State) Events() []Event {
	out := make([]Event, len(s.log))
	copy(out, s.log)
	return out
}

// AddSink attaches an event sink. Sinks see only events appended after the call.
func (s *State) AddSink(sink EventSink) {
	s.sinks = append(s.sinks, sink)
}
