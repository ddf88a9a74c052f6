// Package observer fans public game announcements out to spectator sinks.
// Sinks receive only information every player at the table would hear; role
// reveals and private night results never pass through here.
package observer

// Level classifies an announcement for display styling.
type Level string

const (
	LevelInfo     Level = "info"
	LevelPhase    Level = "phase"
	LevelDeath    Level = "death"
	LevelSpeech   Level = "speech"
	LevelVote     Level = "vote"
	LevelVerdict  Level = "verdict"
	LevelGameOver Level = "game_over"
)

// Announcement is one public game event.
type Announcement struct {
	Level   Level  `json:"level"`
	Day     int    `json:"day"`
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

// Sink receives announcements. Publish must not block game progress; slow
// consumers drop or buffer on their own side.
type Sink interface {
	Publish(a Announcement)
}

// Multi fans one announcement out to several sinks.
type Multi []Sink

func (m Multi) Publish(a Announcement) {
	for _, s := range m {
		s.Publish(a)
	}
}

// Nop discards every announcement.
type Nop struct{}

func (Nop) Publish(Announcement) {}
