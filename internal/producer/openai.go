// Package producer supplies candidate decisions: an OpenAI-compatible HTTP
// adapter for model-driven players and a console adapter for human-typed ones.
package producer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vdtran/werewolf-gm/internal/broker"
)

// ModelConfig points one player at a chat-completions endpoint.
type ModelConfig struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
}

// OpenAI produces decisions by calling an OpenAI-compatible chat-completions
// API. Each player may use its own endpoint and model; players without an
// explicit config use the fallback.
type OpenAI struct {
	client   *http.Client
	fallback ModelConfig
	players  map[string]ModelConfig
}

// OpenAIOption configures the adapter.
type OpenAIOption func(*OpenAI)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAI) { o.client = c }
}

// WithPlayerModel assigns a dedicated endpoint to one player.
func WithPlayerModel(playerID string, cfg ModelConfig) OpenAIOption {
	return func(o *OpenAI) { o.players[playerID] = cfg }
}

// NewOpenAI creates the adapter with a fallback endpoint for all players.
func NewOpenAI(fallback ModelConfig, opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		client:   &http.Client{Timeout: 120 * time.Second},
		fallback: fallback,
		players:  make(map[string]ModelConfig),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Produce sends the context to the player's endpoint and returns the model's
// reply with reasoning tags stripped.
func (o *OpenAI) Produce(ctx context.Context, playerID string, messages []broker.ContextEntry) (string, error) {
	cfg, ok := o.players[playerID]
	if !ok {
		cfg = o.fallback
	}
	if cfg.BaseURL == "" || cfg.Model == "" {
		return "", fmt.Errorf("produce for %s: no model endpoint configured", playerID)
	}

	reqBody := chatRequest{Model: cfg.Model}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("produce for %s: encode request: %w", playerID, err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("produce for %s: build request: %w", playerID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("produce for %s: %w", playerID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("produce for %s: read response: %w", playerID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("produce for %s: endpoint returned %d: %s", playerID, resp.StatusCode, truncate(string(body), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("produce for %s: decode response: %w", playerID, err)
	}
	content, err := ExtractContent(parsed)
	if err != nil {
		return "", fmt.Errorf("produce for %s: %w", playerID, err)
	}
	return StripThinkTags(content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
