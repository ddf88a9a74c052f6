package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/observer"
)

// GMSession is the game-master's live seat over a single connection. It
// implements broker.Moderator and the orchestrator's continuation gate by
// correlating request and response frames, and observer.Sink for the GM's
// copy of the public feed. A dropped connection fails pending reviews, which
// the broker degrades to skips.
type GMSession struct {
	gameID string
	conn   *websocket.Conn
	send   chan *ServerMessage

	mu      sync.Mutex
	pending map[string]chan *ClientMessage

	done      chan struct{}
	closeOnce sync.Once
}

// ServeGM upgrades the request into a game-master session and starts its
// pumps. The caller owns the session's lifecycle from here.
func ServeGM(gameID string, w http.ResponseWriter, r *http.Request) (*GMSession, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade gm session: %w", err)
	}
	g := &GMSession{
		gameID:  gameID,
		conn:    conn,
		send:    make(chan *ServerMessage, 64),
		pending: make(map[string]chan *ClientMessage),
		done:    make(chan struct{}),
	}
	go g.writeLoop()
	go g.readLoop()
	return g, nil
}

// Done is closed when the session ends.
func (g *GMSession) Done() <-chan struct{} { return g.done }

// Close tears the session down and fails every pending request.
func (g *GMSession) Close() {
	g.closeOnce.Do(func() {
		close(g.done)
		g.conn.Close()
		g.mu.Lock()
		for id, ch := range g.pending {
			close(ch)
			delete(g.pending, id)
		}
		g.mu.Unlock()
	})
}

// Review sends the request to the game master and blocks for the disposition.
func (g *GMSession) Review(ctx context.Context, req broker.ReviewRequest) (broker.ReviewResponse, error) {
	reply, err := g.roundTrip(ctx, &ServerMessage{
		Type:   TypeReviewRequest,
		Review: reviewPayload(req),
	})
	if err != nil {
		return broker.ReviewResponse{}, err
	}
	return broker.ReviewResponse{
		Disposition:   broker.Disposition(reply.Disposition),
		ManualContent: reply.ManualContent,
	}, nil
}

// Continue asks the game master whether the next round should start.
func (g *GMSession) Continue(ctx context.Context, day int) (bool, error) {
	reply, err := g.roundTrip(ctx, &ServerMessage{
		Type:        TypeContinueRequest,
		ContinueDay: day,
	})
	if err != nil {
		return false, err
	}
	return reply.Proceed, nil
}

// Publish forwards a public announcement to the game master's feed. Never
// blocks; a full queue drops the frame.
func (g *GMSession) Publish(a observer.Announcement) {
	msg := &ServerMessage{Type: TypeAnnouncement, Announcement: &a}
	select {
	case g.send <- msg:
	case <-g.done:
	default:
		log.Printf("ws gm feed full for game %s, dropping announcement", g.gameID)
	}
}

// roundTrip sends one correlated request and waits for its reply.
func (g *GMSession) roundTrip(ctx context.Context, msg *ServerMessage) (*ClientMessage, error) {
	msg.ID = uuid.NewString()
	ch := make(chan *ClientMessage, 1)
	g.mu.Lock()
	g.pending[msg.ID] = ch
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		delete(g.pending, msg.ID)
		g.mu.Unlock()
	}()

	select {
	case g.send <- msg:
	case <-g.done:
		return nil, fmt.Errorf("gm session closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("gm session closed")
		}
		return reply, nil
	case <-g.done:
		return nil, fmt.Errorf("gm session closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *GMSession) readLoop() {
	defer g.Close()

	g.conn.SetReadDeadline(time.Now().Add(pongWait))
	g.conn.SetReadLimit(maxMessageSize)
	g.conn.SetPongHandler(func(string) error {
		g.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := g.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws gm read error for game %s: %v", g.gameID, err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			g.sendError(fmt.Sprintf("malformed frame: %v", err))
			continue
		}
		g.mu.Lock()
		ch, ok := g.pending[msg.ID]
		g.mu.Unlock()
		if !ok {
			g.sendError(fmt.Sprintf("no pending request with id %q", msg.ID))
			continue
		}
		select {
		case ch <- &msg:
		default:
			// A duplicate reply for the same request is dropped.
		}
	}
}

func (g *GMSession) sendError(detail string) {
	select {
	case g.send <- &ServerMessage{Type: TypeError, Error: detail}:
	case <-g.done:
	default:
	}
}

func (g *GMSession) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		g.Close()
	}()

	for {
		select {
		case msg := <-g.send:
			g.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := g.conn.WriteJSON(msg); err != nil {
				log.Printf("ws gm write error for game %s: %v", g.gameID, err)
				return
			}
		case <-ticker.C:
			g.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := g.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-g.done:
			return
		}
	}
}
