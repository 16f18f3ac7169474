package services

import (
	"strings"

	"github.com/sankat-mitra/api/model"
)

// DefaultContextWindowSize bounds how many recent turns feed the prompt.
const DefaultContextWindowSize = 8

// NoHistorySentinel is returned when the filtered history is empty. Callers
// treat it as valid context, not as an error.
const NoHistorySentinel = "No previous conversation history."

const contextHeader = "Previous conversation:"

// roleLabels maps persisted roles to the labels the agent prompt uses.
var roleLabels = map[model.MessageRole]string{
	model.MessageRoleUser:      "Human",
	model.MessageRoleAssistant: "AI Assistant",
}

// BuildContext renders the last maxMessages user/assistant turns as a prompt
// block, oldest first. Pure function: no side effects, deterministic, safe
// to call concurrently on independent inputs.
func BuildContext(messages []model.ChatMessage, maxMessages int) string {
	if maxMessages <= 0 {
		maxMessages = DefaultContextWindowSize
	}

	filtered := make([]model.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role.Valid() {
			filtered = append(filtered, msg)
		}
	}
	if len(filtered) == 0 {
		return NoHistorySentinel
	}
	if len(filtered) > maxMessages {
		filtered = filtered[len(filtered)-maxMessages:]
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	for _, msg := range filtered {
		b.WriteString("\n")
		b.WriteString(roleLabels[msg.Role])
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}
