// Package websocket carries the two live surfaces of a running game: an
// observer fan-out hub for public announcements and a single game-master
// session that reviews decisions over one connection.
package websocket

import (
	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/observer"
)

// Server-to-client message types.
const (
	TypeAnnouncement    = "announcement"
	TypeReviewRequest   = "review_request"
	TypeContinueRequest = "continue_request"
	TypeError           = "error"
)

// Client-to-server message types.
const (
	TypeReviewResponse   = "review_response"
	TypeContinueResponse = "continue_response"
)

// ServerMessage is one frame sent to a client. Exactly one payload field is
// set, matching Type.
type ServerMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"` // correlates request/response pairs

	Announcement *observer.Announcement `json:"announcement,omitempty"`
	Review       *ReviewPayload         `json:"review,omitempty"`
	ContinueDay  int                    `json:"continue_day,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// ReviewPayload is the GM-facing view of one pending review.
type ReviewPayload struct {
	PlayerID      string   `json:"player_id"`
	PlayerLabel   string   `json:"player_label"`
	Action        string   `json:"action"`
	Raw           string   `json:"raw,omitempty"`
	Valid         bool     `json:"valid"`
	InvalidReason string   `json:"invalid_reason,omitempty"`
	ValidChoices  []string `json:"valid_choices,omitempty"`
	Escalation    string   `json:"escalation,omitempty"`
	FailureDetail string   `json:"failure_detail,omitempty"`
}

// ClientMessage is one frame received from the game master.
type ClientMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`

	Disposition   string `json:"disposition,omitempty"`
	ManualContent string `json:"manual_content,omitempty"`
	Proceed       bool   `json:"proceed,omitempty"`
}

func reviewPayload(req broker.ReviewRequest) *ReviewPayload {
	p := &ReviewPayload{
		PlayerID:      req.PlayerID,
		PlayerLabel:   req.PlayerLabel,
		Action:        string(req.Action),
		Raw:           req.Raw,
		Valid:         req.Valid,
		Escalation:    string(req.Escalation),
		FailureDetail: req.FailureDetail,
	}
	if req.Err != nil {
		p.InvalidReason = req.Err.Reason
		p.ValidChoices = req.Err.ValidChoices
	}
	return p
}
