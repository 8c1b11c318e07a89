package chat

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Caps applied to every structured LLM response before dispatch.
const (
	maxSuggestedRestaurants = 2
	maxRecommendedItems     = 5
)

// Models wrap JSON in markdown fences despite being told not to.
var codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeFence extracts the JSON body from a fenced response, or
// returns the trimmed input when there is no fence.
func stripCodeFence(raw string) string {
	if match := codeFenceRegex.FindStringSubmatch(raw); len(match) == 2 {
		return match[1]
	}
	return strings.TrimSpace(raw)
}

// classificationResponse is the strict JSON contract of the
// classification prompt.
type classificationResponse struct {
	Text string `json:"text"`
}

// parseClassification recovers a QueryType from raw LLM output. JSON
// parsing is tried first; on failure it falls back to case-insensitive
// substring matching against the three labels. Returns QueryTypeGeneral
// when nothing can be recovered.
func parseClassification(raw string) QueryType {
	var resp classificationResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err == nil {
		switch QueryType(strings.ToUpper(strings.TrimSpace(resp.Text))) {
		case QueryTypeMenu:
			return QueryTypeMenu
		case QueryTypeRestaurant:
			return QueryTypeRestaurant
		case QueryTypeGeneral:
			return QueryTypeGeneral
		}
	}

	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, string(QueryTypeMenu)):
		return QueryTypeMenu
	case strings.Contains(upper, string(QueryTypeRestaurant)):
		return QueryTypeRestaurant
	default:
		return QueryTypeGeneral
	}
}

// restaurantResponse is the strict JSON contract of the restaurant
// suggestion prompt.
type restaurantResponse struct {
	Text      string  `json:"text"`
	RestroIDs []int32 `json:"restroIds"`
}

// parseRestaurantResponse validates a restaurant suggestion and caps
// the id list at 2. IDs absent from the candidate set are dropped.
func parseRestaurantResponse(raw string, candidates map[int32]bool) (*restaurantResponse, error) {
	var resp restaurantResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return nil, errors.Wrap(err, "malformed restaurant response")
	}
	if resp.Text == "" {
		return nil, errors.New("restaurant response missing text")
	}

	valid := make([]int32, 0, len(resp.RestroIDs))
	for _, id := range resp.RestroIDs {
		if candidates[id] {
			valid = append(valid, id)
		}
	}
	if len(valid) > maxSuggestedRestaurants {
		valid = valid[:maxSuggestedRestaurants]
	}
	resp.RestroIDs = valid
	return &resp, nil
}

// menuResponse is the strict JSON contract of the menu recommendation
// prompt. Items2 is present only in the two-restaurant case.
type menuResponse struct {
	Text   string            `json:"text"`
	Items1 []RecommendedItem `json:"items1"`
	Items2 []RecommendedItem `json:"items2,omitempty"`
}

// parseMenuResponse validates a menu recommendation and caps each item
// list at 5.
func parseMenuResponse(raw string) (*menuResponse, error) {
	var resp menuResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &resp); err != nil {
		return nil, errors.Wrap(err, "malformed menu response")
	}
	if resp.Text == "" {
		return nil, errors.New("menu response missing text")
	}
	if len(resp.Items1) > maxRecommendedItems {
		resp.Items1 = resp.Items1[:maxRecommendedItems]
	}
	if len(resp.Items2) > maxRecommendedItems {
		resp.Items2 = resp.Items2[:maxRecommendedItems]
	}
	return &resp, nil
}
