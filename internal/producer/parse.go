package producer

import (
	"fmt"
	"regexp"
	"strings"
)

var thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkTags removes <think>...</think> reasoning blocks some models emit
// before their answer, and trims the result.
func StripThinkTags(s string) string {
	return strings.TrimSpace(thinkTagRe.ReplaceAllString(s, ""))
}

// ExtractContent pulls the reply text out of a chat-completions response.
func ExtractContent(resp chatResponse) (string, error) {
	if resp.Error != nil {
		return "", fmt.Errorf("endpoint error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("response carried no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("response content is empty")
	}
	return content, nil
}
