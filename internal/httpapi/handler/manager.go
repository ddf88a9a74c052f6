package handler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/game"
	"github.com/vdtran/werewolf-gm/internal/moderator"
	"github.com/vdtran/werewolf-gm/internal/observer"
	"github.com/vdtran/werewolf-gm/internal/orchestrator"
	"github.com/vdtran/werewolf-gm/internal/producer"
	"github.com/vdtran/werewolf-gm/internal/prompt"
	"github.com/vdtran/werewolf-gm/internal/store"
	"github.com/vdtran/werewolf-gm/internal/websocket"
)

// Moderation modes for a hosted game.
const (
	ModeAuto = "auto" // unattended: valid responses accepted, failures skipped
	ModeGM   = "gm"   // a game master reviews every decision over WebSocket
)

// Session is one hosted game and its run lifecycle.
type Session struct {
	ID      string
	Mode    string
	State   *game.State
	Created time.Time

	mu      sync.Mutex
	started bool
	runErr  error
	cancel  context.CancelFunc
	done    chan struct{}
}

// Started reports whether the game loop is running or finished.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Done is closed when the game loop exits.
func (s *Session) Done() <-chan struct{} { return s.done }

// RunErr returns the game loop's error, if any, once Done is closed.
func (s *Session) RunErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

// Stop cancels a running game.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// GameManager owns every hosted game: creation, wiring and lifecycle.
//
// The live State of a running game belongs to the orchestrator goroutine, so
// API reads never touch it. Every game's event log is mirrored into the
// synchronized in-memory store, and read handlers work from that log (or a
// state replayed from it) instead.
type GameManager struct {
	hub   *websocket.Hub
	store *store.Memory  // synchronized event log serving API reads
	sink  game.EventSink // optional persistent store; nil for memory-only
	model producer.ModelConfig

	maxDays          int
	transportRetries uint64
	transportDelay   time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ManagerOption configures a GameManager.
type ManagerOption func(*GameManager)

// WithPersistentSink attaches a durable event sink to every created game.
func WithPersistentSink(sink game.EventSink) ManagerOption {
	return func(m *GameManager) { m.sink = sink }
}

// WithMaxDays caps game length.
func WithMaxDays(n int) ManagerOption {
	return func(m *GameManager) { m.maxDays = n }
}

// WithTransport tunes the producer retry budget.
func WithTransport(retries uint64, delay time.Duration) ManagerOption {
	return func(m *GameManager) { m.transportRetries = retries; m.transportDelay = delay }
}

// NewGameManager creates a manager. hub fans announcements to observers;
// model is the default endpoint for AI players.
func NewGameManager(hub *websocket.Hub, model producer.ModelConfig, opts ...ManagerOption) *GameManager {
	m := &GameManager{
		hub:              hub,
		store:            store.NewMemory(),
		model:            model,
		maxDays:          20,
		transportRetries: 1,
		transportDelay:   3 * time.Second,
		sessions:         make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create sets up a new game. Auto-moderated games start immediately;
// GM-moderated games wait for the game master's WebSocket.
func (m *GameManager) Create(names []string, mode string) (*Session, error) {
	if mode != ModeAuto && mode != ModeGM {
		return nil, fmt.Errorf("unknown moderation mode %q", mode)
	}
	gameID := uuid.NewString()
	state, err := game.Setup(gameID, names, nil)
	if err != nil {
		return nil, err
	}
	// Setup already logged events; sinks only see appends, so copy the
	// existing log before attaching them.
	for _, ev := range state.Events() {
		m.store.RecordEvent(gameID, ev)
		if m.sink != nil {
			m.sink.RecordEvent(gameID, ev)
		}
	}
	state.AddSink(m.store)
	if m.sink != nil {
		state.AddSink(m.sink)
	}

	sess := &Session{
		ID:      gameID,
		Mode:    mode,
		State:   state,
		Created: time.Now().UTC(),
		done:    make(chan struct{}),
	}
	m.mu.Lock()
	m.sessions[gameID] = sess
	m.mu.Unlock()

	if mode == ModeAuto {
		auto := moderator.NewAuto(1)
		m.launch(sess, auto, auto, nil)
	}
	return sess, nil
}

// Events returns the game's event log from the synchronized store.
func (m *GameManager) Events(gameID string) []game.Event {
	return m.store.Events(gameID)
}

// Snapshot rebuilds a read-only copy of the game state from the event log.
func (m *GameManager) Snapshot(gameID string) (*game.State, error) {
	return game.Replay(gameID, m.store.Events(gameID))
}

// Get returns a session by game ID, or nil.
func (m *GameManager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// List returns every session.
func (m *GameManager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// AttachGM starts a GM-moderated game with the given session as moderator,
// continuation gate and extra announcement sink.
func (m *GameManager) AttachGM(sess *Session, gm *websocket.GMSession) error {
	sess.mu.Lock()
	if sess.started {
		sess.mu.Unlock()
		return fmt.Errorf("game %s already has a game master", sess.ID)
	}
	sess.mu.Unlock()
	m.launch(sess, gm, gm, gm)
	return nil
}

// launch wires producer, broker and orchestrator and runs the game loop.
func (m *GameManager) launch(sess *Session, mod broker.Moderator, gate orchestrator.ContinueGate, extraObs observer.Sink) {
	sess.mu.Lock()
	if sess.started {
		sess.mu.Unlock()
		return
	}
	sess.started = true
	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	sess.mu.Unlock()

	prod := producer.NewOpenAI(m.model)
	b := broker.New(prod, mod, prompt.NewBuilder(),
		broker.WithTransportRetries(m.transportRetries, m.transportDelay))

	obs := observer.Multi{m.hub.Sink(sess.ID)}
	if extraObs != nil {
		obs = append(obs, extraObs)
	}
	orch := orchestrator.New(sess.State, b, obs,
		orchestrator.WithMaxDays(m.maxDays),
		orchestrator.WithContinueGate(gate))

	go func() {
		defer cancel()
		err := orch.Run(ctx)
		sess.mu.Lock()
		sess.runErr = err
		sess.mu.Unlock()
		close(sess.done)
		if err != nil {
			log.Printf("game %s stopped: %v", sess.ID, err)
		} else {
			log.Printf("game %s finished: %s", sess.ID, sess.State.WinnerReason)
		}
	}()
}
