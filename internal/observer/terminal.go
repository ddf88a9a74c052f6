package observer

import (
	"fmt"
	"io"
	"sync"
)

// ANSI sequences for the terminal spectator view.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
)

// Terminal writes colored announcements to w. Safe for concurrent Publish.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	colors bool
}

// NewTerminal creates a terminal sink. Colors can be disabled for plain logs.
func NewTerminal(w io.Writer, colors bool) *Terminal {
	return &Terminal{w: w, colors: colors}
}

func (t *Terminal) Publish(a Announcement) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefix := fmt.Sprintf("[Day %d] ", a.Day)
	if !t.colors {
		fmt.Fprintf(t.w, "%s%s\n", prefix, a.Message)
		return
	}
	color := ansiReset
	switch a.Level {
	case LevelPhase:
		color = ansiBlue
	case LevelDeath:
		color = ansiRed
	case LevelSpeech:
		color = ansiCyan
	case LevelVote:
		color = ansiYellow
	case LevelVerdict:
		color = ansiBold + ansiYellow
	case LevelGameOver:
		color = ansiBold + ansiGreen
	}
	fmt.Fprintf(t.w, "%s%s%s%s\n", color, prefix, a.Message, ansiReset)
}
