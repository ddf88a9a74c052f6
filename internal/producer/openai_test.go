package producer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vdtran/werewolf-gm/internal/broker"
)

func completionsServer(t *testing.T, reply string, gotReq *chatRequest, gotAuth *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		*gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":` + jsonString(reply) + `}}]}`))
	}))
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestProduce_SendsContextAndStripsReasoning(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	srv := completionsServer(t, "<think>hmm</think>Player 4", &gotReq, &gotAuth)
	defer srv.Close()

	p := NewOpenAI(ModelConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "test-model"})
	got, err := p.Produce(context.Background(), "p1", []broker.ContextEntry{
		{Role: broker.RolePrompter, Content: "briefing"},
		{Role: broker.RoleResponder, Content: "earlier answer"},
		{Role: broker.RolePrompter, Content: "vote now"},
	})
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if got != "Player 4" {
		t.Errorf("got %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header: %q", gotAuth)
	}
	if gotReq.Model != "test-model" || len(gotReq.Messages) != 3 {
		t.Fatalf("request: %+v", gotReq)
	}
	if gotReq.Messages[1].Role != "assistant" || gotReq.Messages[1].Content != "earlier answer" {
		t.Errorf("context roles not preserved: %+v", gotReq.Messages)
	}
}

func TestProduce_PerPlayerEndpoint(t *testing.T) {
	var fallbackReq, dedicatedReq chatRequest
	var fallbackAuth, dedicatedAuth string
	fallback := completionsServer(t, "from fallback", &fallbackReq, &fallbackAuth)
	defer fallback.Close()
	dedicated := completionsServer(t, "from dedicated", &dedicatedReq, &dedicatedAuth)
	defer dedicated.Close()

	p := NewOpenAI(
		ModelConfig{BaseURL: fallback.URL, Model: "shared"},
		WithPlayerModel("p2", ModelConfig{BaseURL: dedicated.URL, Model: "special"}),
	)
	ctx := context.Background()
	msgs := []broker.ContextEntry{{Role: broker.RolePrompter, Content: "q"}}

	if got, err := p.Produce(ctx, "p1", msgs); err != nil || got != "from fallback" {
		t.Errorf("p1: got %q, %v", got, err)
	}
	if got, err := p.Produce(ctx, "p2", msgs); err != nil || got != "from dedicated" {
		t.Errorf("p2: got %q, %v", got, err)
	}
	if dedicatedReq.Model != "special" {
		t.Errorf("dedicated model: %q", dedicatedReq.Model)
	}
}

func TestProduce_ErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAI(ModelConfig{BaseURL: srv.URL, Model: "m"})
	_, err := p.Produce(context.Background(), "p1", nil)
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("got %v", err)
	}
}

func TestProduce_Unconfigured(t *testing.T) {
	p := NewOpenAI(ModelConfig{})
	if _, err := p.Produce(context.Background(), "p1", nil); err == nil {
		t.Error("missing endpoint should error")
	}
}

func TestConsole_ReadsAnswers(t *testing.T) {
	in := strings.NewReader("Player 4\nskip\n")
	var out strings.Builder
	c := NewConsole(in, &out)
	msgs := []broker.ContextEntry{{Role: broker.RolePrompter, Content: "vote now"}}

	got, err := c.Produce(context.Background(), "p1", msgs)
	if err != nil || got != "Player 4" {
		t.Fatalf("first answer: got %q, %v", got, err)
	}
	if !strings.Contains(out.String(), "vote now") {
		t.Errorf("request not shown to the operator: %q", out.String())
	}
	if got, err := c.Produce(context.Background(), "p1", msgs); err != nil || got != "skip" {
		t.Fatalf("second answer: got %q, %v", got, err)
	}
	if _, err := c.Produce(context.Background(), "p1", msgs); err == nil {
		t.Error("exhausted input should error")
	}
}
