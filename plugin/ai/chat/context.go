package chat

import "strings"

// DefaultContextWindow is the number of recent user messages carried
// into every LLM prompt.
const DefaultContextWindow = 5

// BuildConversationContext joins the last window user-authored messages
// into one string for prompt continuity. Messages that carried
// recommended items get a " | Recommended: ..." suffix so the model
// knows what it already suggested. Returns "" when there is nothing to
// summarize.
func BuildConversationContext(history []Message, window int) string {
	if window <= 0 {
		window = DefaultContextWindow
	}

	userMessages := make([]Message, 0, len(history))
	for _, msg := range history {
		if !msg.IsBot {
			userMessages = append(userMessages, msg)
		}
	}
	if len(userMessages) > window {
		userMessages = userMessages[len(userMessages)-window:]
	}

	parts := make([]string, 0, len(userMessages))
	for _, msg := range userMessages {
		part := msg.Text
		if len(msg.RecommendedItems) > 0 {
			names := make([]string, 0, len(msg.RecommendedItems))
			for _, item := range msg.RecommendedItems {
				names = append(names, item.Name)
			}
			part += " | Recommended: " + strings.Join(names, ", ")
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " | ")
}
