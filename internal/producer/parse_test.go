package producer

import (
	"strings"
	"testing"
)

func TestStripThinkTags(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"vote 4", "vote 4"},
		{"<think>long deliberation</think>vote 4", "vote 4"},
		{"<think>first</think> middle <think>second</think>", "middle"},
		{"<think>line one\nline two</think>\n  skip  ", "skip"},
		{"<think>unterminated... vote 4", "<think>unterminated... vote 4"},
	}
	for _, c := range cases {
		if got := StripThinkTags(c.in); got != c.want {
			t.Errorf("StripThinkTags(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractContent(t *testing.T) {
	var resp chatResponse
	resp.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Choices[0].Message.Content = "Player 4"

	got, err := ExtractContent(resp)
	if err != nil || got != "Player 4" {
		t.Errorf("got %q, %v", got, err)
	}

	resp.Choices[0].Message.Content = "   "
	if _, err := ExtractContent(resp); err == nil {
		t.Error("blank content should error")
	}

	if _, err := ExtractContent(chatResponse{}); err == nil {
		t.Error("no choices should error")
	}

	errResp := chatResponse{}
	errResp.Error = &struct {
		Message string `json:"message"`
	}{Message: "quota exceeded"}
	_, err = ExtractContent(errResp)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("endpoint error should surface the message, got %v", err)
	}
}
