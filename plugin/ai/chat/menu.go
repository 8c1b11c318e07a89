package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/feastline/feastline/plugin/ai/cache"
	"github.com/feastline/feastline/store"
)

// PromptMenuItem is a menu item projected down to the fields worth
// showing an LLM. Image URLs, display prices, customization blobs, and
// scoring metadata are dropped.
type PromptMenuItem struct {
	ID           int32   `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Price        float64 `json:"price,omitempty"`
	Vegetarian   bool    `json:"vegetarian,omitempty"`
	Customizable bool    `json:"customizable,omitempty"`
}

// MenuLoader returns prompt-ready menus by restaurant id, cached.
type MenuLoader struct {
	store Store
	cache *cache.Cache[int32, []PromptMenuItem]
	ttl   time.Duration
}

// NewMenuLoader creates a menu loader with the given cache TTL.
func NewMenuLoader(s Store, ttl time.Duration, maxEntries int) *MenuLoader {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MenuLoader{
		store: s,
		cache: cache.New[int32, []PromptMenuItem](cache.Config{
			DefaultTTL: ttl,
			MaxEntries: maxEntries,
		}),
		ttl: ttl,
	}
}

// Load returns the filtered menu for a restaurant. Concurrent loads for
// the same restaurant share one store fetch.
func (l *MenuLoader) Load(ctx context.Context, restaurantID int32) ([]PromptMenuItem, error) {
	if restaurantID <= 0 {
		return nil, errors.Errorf("invalid restaurant id %d", restaurantID)
	}
	return l.cache.GetOrFetch(ctx, restaurantID, l.ttl, func(ctx context.Context) ([]PromptMenuItem, error) {
		items, err := l.store.ListMenuItems(ctx, &store.FindMenuItem{RestaurantID: &restaurantID})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load menu for restaurant %d", restaurantID)
		}
		return filterMenuItems(items), nil
	})
}

// Invalidate drops the cached menu for a restaurant.
func (l *MenuLoader) Invalidate(restaurantID int32) {
	l.cache.Delete(restaurantID)
}

func filterMenuItems(items []*store.MenuItem) []PromptMenuItem {
	filtered := make([]PromptMenuItem, 0, len(items))
	for _, item := range items {
		filtered = append(filtered, PromptMenuItem{
			ID:           item.ID,
			Name:         item.Name,
			Category:     item.Category,
			Price:        item.Price,
			Vegetarian:   item.Vegetarian,
			Customizable: item.Customizable,
		})
	}
	return filtered
}
