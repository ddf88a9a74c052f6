package store

import (
	"sort"
	"sync"
	"testing"

	"github.com/vdtran/werewolf-gm/internal/game"
)

func TestMemory_RecordsPerGame(t *testing.T) {
	m := NewMemory()
	m.RecordEvent("g1", game.Event{Kind: game.EventGameSetup, Message: "start"})
	m.RecordEvent("g1", game.Event{Kind: game.EventBroadcast, Message: "night falls"})
	m.RecordEvent("g2", game.Event{Kind: game.EventGameSetup, Message: "other"})

	events := m.Events("g1")
	if len(events) != 2 || events[0].Message != "start" || events[1].Message != "night falls" {
		t.Errorf("g1 events: %+v", events)
	}
	if len(m.Events("g2")) != 1 {
		t.Errorf("g2 events: %+v", m.Events("g2"))
	}
	if m.Events("missing") == nil || len(m.Events("missing")) != 0 {
		t.Error("unknown game should yield an empty slice")
	}

	ids := m.GameIDs()
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "g1" || ids[1] != "g2" {
		t.Errorf("game ids: %v", ids)
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()
	m.RecordEvent("g1", game.Event{Message: "original"})
	events := m.Events("g1")
	events[0].Message = "mutated"
	if m.Events("g1")[0].Message != "original" {
		t.Error("Events should return a copy")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.RecordEvent("g1", game.Event{Message: "e"})
				m.Events("g1")
			}
		}()
	}
	wg.Wait()
	if got := len(m.Events("g1")); got != 400 {
		t.Errorf("events recorded: %d", got)
	}
}
