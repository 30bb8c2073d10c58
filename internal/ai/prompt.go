package ai

import (
	"fmt"
	"strings"
)

const (
	// ContextLimit bounds the page excerpt sent with every chat prompt.
	ContextLimit = 3500
	// HistoryTurns is how many previous turns are replayed.
	HistoryTurns = 4
)

// Turn is one chat message.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildPrompt assembles the study-assistant prompt. Only the first
// ContextLimit characters of pageContext and the last HistoryTurns turns
// are included, so the payload stays bounded over long sessions.
func BuildPrompt(pageContext string, history []Turn, message string) string {
	if len(history) > HistoryTurns {
		history = history[len(history)-HistoryTurns:]
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, t.Role+": "+t.Content)
	}

	return fmt.Sprintf(`You are a concise study assistant for this course.

Course content (excerpt):
%s

Previous conversation:
%s

Student question: %s

Instructions:
- Answer in 3-6 sentences, be direct and complete
- Always finish your sentences, never leave a thought incomplete
- Use the course content as reference
- If the question is in Chinese, answer in Chinese`,
		truncateRunes(pageContext, ContextLimit), strings.Join(lines, "\n"), message)
}
