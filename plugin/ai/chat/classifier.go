package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// GreetingReply is the canned response to a bare greeting. Greetings
// never reach the LLM.
const GreetingReply = "Hi there! I can help you find restaurants and pick something good to eat. What are you in the mood for?"

// classificationTimeout bounds the LLM classification call. Keyword
// fast paths are unaffected.
const classificationTimeout = 10 * time.Second

var greetingPhrases = []string{
	"hi", "hello", "hey", "yo", "hiya", "howdy",
	"good morning", "good afternoon", "good evening",
	"what's up", "whats up", "sup",
}

var restaurantKeywords = []string{
	"restaurant", "restaurants", "place to eat", "places to eat",
	"where", "nearby", "near me", "around here",
	"hours", "open", "address", "location", "directions",
}

var menuKeywords = []string{
	"menu", "price", "prices", "cost", "order",
	"recommend", "recommendation", "suggest",
	"dish", "dishes", "food", "eat", "hungry",
	"lunch", "dinner", "breakfast", "dessert", "drink",
}

// Classifier maps a user utterance to a QueryType. Keyword heuristics
// run first; only ambiguous queries reach the LLM.
type Classifier struct {
	llm *cachedLLM
}

// NewClassifier creates a classifier backed by a cached LLM caller.
func NewClassifier(llm *cachedLLM) *Classifier {
	return &Classifier{llm: llm}
}

// IsGreeting reports whether the query is a bare greeting,
// case-insensitive and ignoring surrounding punctuation.
func IsGreeting(query string) bool {
	normalized := strings.ToLower(strings.TrimSpace(query))
	normalized = strings.Trim(normalized, ".,!?~ ")
	for _, phrase := range greetingPhrases {
		if normalized == phrase {
			return true
		}
	}
	return false
}

// Classify determines the query type. Order matters: greeting, then
// restaurant keywords (only when no restaurant is active), then menu
// keywords, then the LLM with a strict JSON contract.
func (c *Classifier) Classify(ctx context.Context, query string, activeRestaurantID int32, history []Message) (QueryType, error) {
	if IsGreeting(query) {
		return QueryTypeGeneral, nil
	}

	lower := strings.ToLower(query)
	if activeRestaurantID == 0 && containsAny(lower, restaurantKeywords) {
		return QueryTypeRestaurant, nil
	}
	if containsAny(lower, menuKeywords) {
		return QueryTypeMenu, nil
	}

	ctx, cancel := context.WithTimeout(ctx, classificationTimeout)
	defer cancel()

	prompt := buildClassificationPrompt(query, BuildConversationContext(history, DefaultContextWindow))
	start := time.Now()
	raw, err := c.llm.complete(ctx, prompt, 50, 0)
	if err != nil {
		slog.Warn("LLM classification failed, defaulting to GENERAL",
			"error", err,
			"query", truncateForLog(query, 50))
		return QueryTypeGeneral, nil
	}

	queryType := parseClassification(raw)
	slog.Debug("query classified",
		"type", queryType,
		"latency", time.Since(start))
	return queryType, nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
