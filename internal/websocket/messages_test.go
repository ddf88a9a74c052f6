package websocket

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vdtran/werewolf-gm/internal/broker"
)

func TestReviewPayload_InvalidResponse(t *testing.T) {
	p := reviewPayload(broker.ReviewRequest{
		PlayerID:    "p1",
		PlayerLabel: "Player 5 (eli)",
		Action:      broker.ActionVote,
		Raw:         "nonsense",
		Err: &broker.ValidationError{
			Reason:       "not a valid target",
			ValidChoices: []string{"Player 4 (dan)"},
		},
	})
	if p.Valid || p.InvalidReason != "not a valid target" || len(p.ValidChoices) != 1 {
		t.Errorf("got %+v", p)
	}
	if p.Escalation != "" {
		t.Errorf("no escalation expected, got %q", p.Escalation)
	}
}

func TestReviewPayload_Escalation(t *testing.T) {
	p := reviewPayload(broker.ReviewRequest{
		PlayerID:      "p1",
		Action:        broker.ActionWolfKill,
		Escalation:    broker.EscalationTransport,
		FailureDetail: "connection refused",
	})
	if p.Escalation != string(broker.EscalationTransport) || p.FailureDetail != "connection refused" {
		t.Errorf("got %+v", p)
	}
}

func TestServerMessage_OmitsEmptyPayloads(t *testing.T) {
	data, err := json.Marshal(ServerMessage{Type: TypeContinueRequest, ID: "1", ContinueDay: 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, forbidden := range []string{"announcement", "review", "error"} {
		if strings.Contains(s, `"`+forbidden+`"`) {
			t.Errorf("frame carries empty payload %q: %s", forbidden, s)
		}
	}
	if !strings.Contains(s, `"continue_day":3`) {
		t.Errorf("frame missing payload: %s", s)
	}
}
