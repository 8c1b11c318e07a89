package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PromptRestaurant is the projection of a restaurant record sent to the
// LLM. No internal-only or user fields.
type PromptRestaurant struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MenuSummary string  `json:"menuSummary,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

const classificationPromptTemplate = `You are an intent classifier for a food ordering assistant.
Classify the user's query into exactly one of: MENU_QUERY, RESTAURANT_QUERY, GENERAL.
- MENU_QUERY: the user asks about dishes, prices, recommendations, or ordering food.
- RESTAURANT_QUERY: the user asks which restaurant to go to, or about location, hours, or addresses.
- GENERAL: anything else.

Recent conversation: %s
User query: %s

Respond with exactly one JSON object and nothing else, no markdown, no code fences:
{"text": "MENU_QUERY" | "RESTAURANT_QUERY" | "GENERAL"}`

func buildClassificationPrompt(query, conversationContext string) string {
	if conversationContext == "" {
		conversationContext = "(none)"
	}
	return fmt.Sprintf(classificationPromptTemplate, conversationContext, query)
}

const restaurantPromptTemplate = `You are a restaurant recommendation assistant.
Pick at most 2 restaurants from the list below that best match the user's request.

Restaurants:
%s

User request: %s
Previously ordered items: %s
Recent conversation: %s

Respond with exactly one JSON object and nothing else, no markdown, no code fences:
{"text": "<one or two friendly sentences>", "restroIds": [<at most 2 restaurant ids from the list>]}
If nothing fits, return an empty restroIds array with a helpful text.`

func buildRestaurantPrompt(restaurants []PromptRestaurant, query string, orderHistory []string, conversationContext string) string {
	encoded, _ := json.Marshal(restaurants)
	history := "(none)"
	if len(orderHistory) > 0 {
		history = strings.Join(orderHistory, ", ")
	}
	if conversationContext == "" {
		conversationContext = "(none)"
	}
	return fmt.Sprintf(restaurantPromptTemplate, string(encoded), query, history, conversationContext)
}

const menuPromptSingleTemplate = `You are a menu recommendation assistant.
Recommend at most 5 items from the menu below that best match the user's request.

Menu:
%s

User request: %s
Recent conversation: %s
%s
Respond with exactly one JSON object and nothing else, no markdown, no code fences:
{"text": "<one or two friendly sentences>", "items1": [{"id": <item id>, "name": "<item name>"}]}`

const menuPromptDoubleTemplate = `You are a menu recommendation assistant.
Two restaurant menus are listed below. Recommend at most 5 items from each that best match the user's request.

Menu of restaurant %d:
%s

Menu of restaurant %d:
%s

User request: %s
Recent conversation: %s
%s
Respond with exactly one JSON object and nothing else, no markdown, no code fences:
{"text": "<one or two friendly sentences>", "items1": [{"id": <item id>, "name": "<item name>"}], "items2": [{"id": <item id>, "name": "<item name>"}]}`

// menuDirectives renders the conditional filter instruction lines.
func menuDirectives(vegetarianOnly bool, portionFor int) string {
	var lines []string
	if vegetarianOnly {
		lines = append(lines, "Only recommend vegetarian items.")
	}
	if portionFor > 1 {
		lines = append(lines, fmt.Sprintf("Recommend portions suitable for %d people.", portionFor))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func buildMenuPrompt(menu []PromptMenuItem, query, conversationContext, directives string) string {
	encoded, _ := json.Marshal(menu)
	if conversationContext == "" {
		conversationContext = "(none)"
	}
	return fmt.Sprintf(menuPromptSingleTemplate, string(encoded), query, conversationContext, directives)
}

func buildTwoMenuPrompt(id1 int32, menu1 []PromptMenuItem, id2 int32, menu2 []PromptMenuItem, query, conversationContext, directives string) string {
	encoded1, _ := json.Marshal(menu1)
	encoded2, _ := json.Marshal(menu2)
	if conversationContext == "" {
		conversationContext = "(none)"
	}
	return fmt.Sprintf(menuPromptDoubleTemplate, id1, string(encoded1), id2, string(encoded2), query, conversationContext, directives)
}

const generalPromptTemplate = `You are a friendly food ordering assistant. Reply briefly and helpfully to the user.

Recent conversation: %s
User message: %s`

func buildGeneralPrompt(query, conversationContext string) string {
	if conversationContext == "" {
		conversationContext = "(none)"
	}
	return fmt.Sprintf(generalPromptTemplate, conversationContext, query)
}
