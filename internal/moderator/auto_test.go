package moderator

import (
	"context"
	"testing"

	"github.com/vdtran/werewolf-gm/internal/broker"
)

func TestAuto_AcceptsValid(t *testing.T) {
	a := NewAuto(1)
	resp, err := a.Review(context.Background(), broker.ReviewRequest{PlayerID: "p1", Action: broker.ActionVote, Valid: true})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if resp.Disposition != broker.DispositionAccept {
		t.Errorf("got %s", resp.Disposition)
	}
}

func TestAuto_RetriesThenSkips(t *testing.T) {
	a := NewAuto(2)
	req := broker.ReviewRequest{PlayerID: "p1", Action: broker.ActionVote, Valid: false}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		resp, err := a.Review(ctx, req)
		if err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
		if resp.Disposition != broker.DispositionRetry {
			t.Fatalf("attempt %d: got %s, want retry", i, resp.Disposition)
		}
	}
	resp, err := a.Review(ctx, req)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if resp.Disposition != broker.DispositionSkip {
		t.Errorf("exhausted budget: got %s, want skip", resp.Disposition)
	}

	// The budget resets per player/action pair after a terminal disposition.
	resp, _ = a.Review(ctx, req)
	if resp.Disposition != broker.DispositionRetry {
		t.Errorf("fresh budget: got %s, want retry", resp.Disposition)
	}
}

func TestAuto_BudgetIsPerPlayerAction(t *testing.T) {
	a := NewAuto(1)
	ctx := context.Background()
	first := broker.ReviewRequest{PlayerID: "p1", Action: broker.ActionVote}
	second := broker.ReviewRequest{PlayerID: "p2", Action: broker.ActionVote}

	a.Review(ctx, first)
	if resp, _ := a.Review(ctx, second); resp.Disposition != broker.DispositionRetry {
		t.Errorf("independent player should get a fresh retry, got %s", resp.Disposition)
	}
}

func TestAuto_ValidResetsBudget(t *testing.T) {
	a := NewAuto(1)
	ctx := context.Background()
	invalid := broker.ReviewRequest{PlayerID: "p1", Action: broker.ActionVote}
	valid := broker.ReviewRequest{PlayerID: "p1", Action: broker.ActionVote, Valid: true}

	a.Review(ctx, invalid)
	a.Review(ctx, valid)
	if resp, _ := a.Review(ctx, invalid); resp.Disposition != broker.DispositionRetry {
		t.Errorf("accepted answer should reset the budget, got %s", resp.Disposition)
	}
}

func TestAuto_SkipsEscalations(t *testing.T) {
	a := NewAuto(3)
	resp, err := a.Review(context.Background(), broker.ReviewRequest{
		PlayerID:   "p1",
		Action:     broker.ActionVote,
		Escalation:    broker.EscalationTransport,
		FailureDetail: "connection refused",
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if resp.Disposition != broker.DispositionSkip {
		t.Errorf("escalation: got %s, want skip", resp.Disposition)
	}
}

func TestAuto_ContinueProceeds(t *testing.T) {
	a := NewAuto(1)
	proceed, err := a.Continue(context.Background(), 3)
	if err != nil || !proceed {
		t.Errorf("got %v, %v", proceed, err)
	}
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if proceed, err := a.Continue(cancelled, 3); proceed || err == nil {
		t.Error("cancelled context should halt")
	}
}
