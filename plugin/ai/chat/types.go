// Package chat implements the conversational core of feastline: intent
// classification, restaurant and menu recommendation, and conversation
// context building.
package chat

import (
	"context"

	"github.com/feastline/feastline/store"
)

// QueryType classifies what a user utterance is asking for.
type QueryType string

const (
	// QueryTypeMenu is a query about dishes, prices, or ordering.
	QueryTypeMenu QueryType = "MENU_QUERY"

	// QueryTypeRestaurant is a query about which restaurant to pick.
	QueryTypeRestaurant QueryType = "RESTAURANT_QUERY"

	// QueryTypeGeneral is everything else: small talk, thanks, greetings.
	QueryTypeGeneral QueryType = "GENERAL"
)

// RecommendedItem is a menu item reference carried in recommendations.
type RecommendedItem struct {
	ID   int32  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Message is one turn of a conversation as seen by the core.
type Message struct {
	Text             string
	IsBot            bool
	RecommendedItems []RecommendedItem
}

// ResultKind discriminates the variants of Result.
type ResultKind string

const (
	// ResultShortCircuit is a canned reply that required no LLM call.
	ResultShortCircuit ResultKind = "SHORT_CIRCUIT"

	// ResultRestaurantSuggestion carries up to 2 suggested restaurant ids.
	ResultRestaurantSuggestion ResultKind = "RESTAURANT_SUGGESTION"

	// ResultMenuRecommendation carries recommended menu items for one or
	// two restaurants.
	ResultMenuRecommendation ResultKind = "MENU_RECOMMENDATION"

	// ResultGeneral is a plain text reply with no structured payload,
	// including degenerate recommendations that resolved no ids.
	ResultGeneral ResultKind = "GENERAL"
)

// Result is the structured outcome of handling one user query. The
// caller turns it into a chat message; the core never touches the UI.
type Result struct {
	Kind      ResultKind
	QueryType QueryType
	Text      string

	// RestaurantIDs is set for RESTAURANT_SUGGESTION and for
	// MENU_RECOMMENDATION when restaurants were resolved by the LLM.
	RestaurantIDs []int32

	// Items1 holds recommendations for the first (or active) restaurant,
	// Items2 for the second in the two-restaurant case. Both capped at 5.
	Items1 []RecommendedItem
	Items2 []RecommendedItem
}

// RecommendedItems returns the items the caller should attach to the
// emitted bot message.
func (r *Result) RecommendedItems() []RecommendedItem {
	return r.Items1
}

// Store is the subset of the data layer the conversational core reads.
type Store interface {
	ListRestaurants(ctx context.Context, find *store.FindRestaurant) ([]*store.Restaurant, error)
	ListMenuItems(ctx context.Context, find *store.FindMenuItem) ([]*store.MenuItem, error)
	ListOrders(ctx context.Context, find *store.FindOrder) ([]*store.Order, error)
}
