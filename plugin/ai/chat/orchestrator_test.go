package chat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/plugin/ai"
	"github.com/feastline/feastline/store"
)

type fakeLLM struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	respond func(prompt string) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, _ ai.CompletionOptions) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.respond(prompt)
}

func (f *fakeLLM) Chat(ctx context.Context, messages []ai.ChatMessage, opts ai.CompletionOptions) (string, error) {
	return f.Complete(ctx, messages[len(messages)-1].Content, opts)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu          sync.Mutex
	restaurants []*store.Restaurant
	menus       map[int32][]*store.MenuItem
	orders      []*store.Order
	menuCalls   map[int32]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		menus:     make(map[int32][]*store.MenuItem),
		menuCalls: make(map[int32]int),
	}
}

func (f *fakeStore) ListRestaurants(_ context.Context, _ *store.FindRestaurant) ([]*store.Restaurant, error) {
	return f.restaurants, nil
}

func (f *fakeStore) ListMenuItems(_ context.Context, find *store.FindMenuItem) ([]*store.MenuItem, error) {
	f.mu.Lock()
	f.menuCalls[*find.RestaurantID]++
	f.mu.Unlock()
	return f.menus[*find.RestaurantID], nil
}

func (f *fakeStore) ListOrders(_ context.Context, _ *store.FindOrder) ([]*store.Order, error) {
	return f.orders, nil
}

func (f *fakeStore) menuCallCount(restaurantID int32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.menuCalls[restaurantID]
}

func testConfig() *ai.Config {
	return &ai.Config{
		Enabled: true,
		LLM: ai.LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.7,
		},
		Cache: ai.CacheConfig{
			MenuTTL:     10 * time.Minute,
			ResponseTTL: 5 * time.Minute,
			MaxEntries:  100,
		},
	}
}

func TestGreetingShortCircuit(t *testing.T) {
	llm := &fakeLLM{respond: func(string) (string, error) {
		t.Fatal("LLM must not be called for greetings")
		return "", nil
	}}
	o := NewOrchestrator(newFakeStore(), llm, testConfig())

	for _, greeting := range []string{"hi", "Hello!", "good morning", "HEY", "what's up?"} {
		result, err := o.HandleQuery(context.Background(), greeting, QueryOptions{})
		require.NoError(t, err, greeting)
		require.Equal(t, ResultShortCircuit, result.Kind, greeting)
		require.Equal(t, QueryTypeGeneral, result.QueryType, greeting)
		require.Equal(t, GreetingReply, result.Text, greeting)
	}
	require.Equal(t, 0, llm.callCount())
}

func TestClassifierKeywordPrecedence(t *testing.T) {
	llm := &fakeLLM{respond: func(string) (string, error) {
		t.Fatal("LLM must not be called on a keyword fast path")
		return "", nil
	}}
	o := NewOrchestrator(newFakeStore(), llm, testConfig())

	t.Run("restaurant keyword without active restaurant", func(t *testing.T) {
		queryType, err := o.ClassifyIntent(context.Background(), "where can I find a good restaurant", 0, nil)
		require.NoError(t, err)
		require.Equal(t, QueryTypeRestaurant, queryType)
	})

	t.Run("menu keyword", func(t *testing.T) {
		queryType, err := o.ClassifyIntent(context.Background(), "show me the menu", 0, nil)
		require.NoError(t, err)
		require.Equal(t, QueryTypeMenu, queryType)
	})

	t.Run("restaurant keyword suppressed by active restaurant", func(t *testing.T) {
		// "hours" alone would be a restaurant query, but with an active
		// restaurant the word "order" wins the menu path.
		queryType, err := o.ClassifyIntent(context.Background(), "what are the opening hours to order", 42, nil)
		require.NoError(t, err)
		require.Equal(t, QueryTypeMenu, queryType)
	})

	require.Equal(t, 0, llm.callCount())
}

func TestClassifierLLMFallback(t *testing.T) {
	llm := &fakeLLM{respond: func(string) (string, error) {
		return `{"text":"RESTAURANT_QUERY"}`, nil
	}}
	o := NewOrchestrator(newFakeStore(), llm, testConfig())

	queryType, err := o.ClassifyIntent(context.Background(), "something cozy for a date tonight", 0, nil)
	require.NoError(t, err)
	require.Equal(t, QueryTypeRestaurant, queryType)
	require.Equal(t, 1, llm.callCount())

	// Identical query within the response TTL is served from cache.
	queryType, err = o.ClassifyIntent(context.Background(), "something cozy for a date tonight", 0, nil)
	require.NoError(t, err)
	require.Equal(t, QueryTypeRestaurant, queryType)
	require.Equal(t, 1, llm.callCount())
}

func TestEndToEndActiveRestaurantMenuQuery(t *testing.T) {
	s := newFakeStore()
	s.menus[42] = []*store.MenuItem{
		{ID: 7, RestaurantID: 42, Name: "Club Sandwich", Category: "Sandwiches", Price: 9.5, ImageURL: "http://cdn/club.png", Available: true},
		{ID: 8, RestaurantID: 42, Name: "Caesar Salad", Category: "Salads", Price: 8.0},
	}
	llm := &fakeLLM{respond: func(prompt string) (string, error) {
		require.Contains(t, prompt, "Club Sandwich")
		require.NotContains(t, prompt, "http://cdn/club.png")
		return `{"text":"Try the club sandwich!","items1":[{"id":7,"name":"Club Sandwich"}]}`, nil
	}}
	o := NewOrchestrator(s, llm, testConfig())

	result, err := o.HandleQuery(context.Background(), "What's good for lunch?", QueryOptions{ActiveRestaurantID: 42})
	require.NoError(t, err)
	require.Equal(t, ResultMenuRecommendation, result.Kind)
	require.Equal(t, QueryTypeMenu, result.QueryType)
	require.Equal(t, "Try the club sandwich!", result.Text)
	require.Equal(t, []RecommendedItem{{ID: 7, Name: "Club Sandwich"}}, result.RecommendedItems())
	require.Equal(t, []int32{42}, result.RestaurantIDs)

	require.Equal(t, 1, s.menuCallCount(42))
	require.Equal(t, 1, llm.callCount())
}

func TestMenuQueryWithoutActiveRestaurant(t *testing.T) {
	s := newFakeStore()
	s.restaurants = []*store.Restaurant{
		{ID: 1, Name: "Luna Trattoria", Category: "Italian", RowStatus: store.Normal},
		{ID: 2, Name: "Green Bowl", Category: "Healthy", RowStatus: store.Normal},
		{ID: 3, Name: "Spice Route", Category: "Indian", RowStatus: store.Normal},
	}
	s.menus[1] = []*store.MenuItem{{ID: 10, RestaurantID: 1, Name: "Margherita"}}
	s.menus[2] = []*store.MenuItem{{ID: 20, RestaurantID: 2, Name: "Quinoa Bowl"}}

	llm := &fakeLLM{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "restaurant recommendation assistant") {
			// More than 2 ids, must be capped before any menu fetch.
			return `{"text":"Here are some options","restroIds":[1,2,3]}`, nil
		}
		return `{"text":"Both have great picks","items1":[{"id":10,"name":"Margherita"}],"items2":[{"id":20,"name":"Quinoa Bowl"}]}`, nil
	}}
	o := NewOrchestrator(s, llm, testConfig())

	result, err := o.HandleQuery(context.Background(), "recommend me something to eat", QueryOptions{})
	require.NoError(t, err)
	require.Equal(t, ResultMenuRecommendation, result.Kind)
	require.Equal(t, []int32{1, 2}, result.RestaurantIDs)
	require.Equal(t, []RecommendedItem{{ID: 10, Name: "Margherita"}}, result.Items1)
	require.Equal(t, []RecommendedItem{{ID: 20, Name: "Quinoa Bowl"}}, result.Items2)

	// The capped third restaurant's menu was never fetched.
	require.Equal(t, 1, s.menuCallCount(1))
	require.Equal(t, 1, s.menuCallCount(2))
	require.Equal(t, 0, s.menuCallCount(3))
}

func TestRestaurantQuery(t *testing.T) {
	s := newFakeStore()
	s.restaurants = []*store.Restaurant{
		{ID: 1, Name: "Luna Trattoria", Category: "Italian", RowStatus: store.Normal},
		{ID: 2, Name: "Green Bowl", Category: "Healthy", RowStatus: store.Normal},
	}
	llm := &fakeLLM{respond: func(string) (string, error) {
		return `{"text":"Luna Trattoria fits","restroIds":[1]}`, nil
	}}
	o := NewOrchestrator(s, llm, testConfig())

	result, err := o.HandleQuery(context.Background(), "where is a nice restaurant nearby", QueryOptions{})
	require.NoError(t, err)
	require.Equal(t, ResultRestaurantSuggestion, result.Kind)
	require.Equal(t, QueryTypeRestaurant, result.QueryType)
	require.Equal(t, []int32{1}, result.RestaurantIDs)
	require.Equal(t, 1, llm.callCount())

	// No menus were touched for a pure restaurant suggestion.
	require.Equal(t, 0, s.menuCallCount(1))
}

func TestEmptyRestaurantSuggestionDegradesToGeneral(t *testing.T) {
	s := newFakeStore()
	s.restaurants = []*store.Restaurant{
		{ID: 1, Name: "Luna Trattoria", RowStatus: store.Normal},
	}
	llm := &fakeLLM{respond: func(string) (string, error) {
		return `{"text":"Nothing around matches that, sorry!","restroIds":[]}`, nil
	}}
	o := NewOrchestrator(s, llm, testConfig())

	result, err := o.HandleQuery(context.Background(), "recommend me a dish", QueryOptions{})
	require.NoError(t, err)
	require.Equal(t, ResultGeneral, result.Kind)
	require.Equal(t, QueryTypeGeneral, result.QueryType)
	require.Equal(t, "Nothing around matches that, sorry!", result.Text)
}

func TestUnparseableMenuResponseDegradesToRawText(t *testing.T) {
	s := newFakeStore()
	s.menus[5] = []*store.MenuItem{{ID: 1, RestaurantID: 5, Name: "Pad Thai"}}
	llm := &fakeLLM{respond: func(string) (string, error) {
		return "You should really try the Pad Thai, it's excellent.", nil
	}}
	o := NewOrchestrator(s, llm, testConfig())

	result, err := o.HandleQuery(context.Background(), "what should I order", QueryOptions{ActiveRestaurantID: 5})
	require.NoError(t, err)
	require.Equal(t, ResultGeneral, result.Kind)
	require.Equal(t, "You should really try the Pad Thai, it's excellent.", result.Text)
	require.Empty(t, result.Items1)
}

func TestMenuDirectivesAppended(t *testing.T) {
	s := newFakeStore()
	s.menus[5] = []*store.MenuItem{{ID: 1, RestaurantID: 5, Name: "Veggie Burger", Vegetarian: true}}
	var prompt string
	llm := &fakeLLM{respond: func(p string) (string, error) {
		prompt = p
		return `{"text":"Veggie Burger it is","items1":[{"id":1,"name":"Veggie Burger"}]}`, nil
	}}
	o := NewOrchestrator(s, llm, testConfig())

	_, err := o.HandleQuery(context.Background(), "order food for us", QueryOptions{
		ActiveRestaurantID: 5,
		VegetarianOnly:     true,
		PortionFor:         3,
	})
	require.NoError(t, err)
	require.Contains(t, prompt, "Only recommend vegetarian items.")
	require.Contains(t, prompt, "portions suitable for 3 people")
}

func TestOrderHistoryInRestaurantPrompt(t *testing.T) {
	s := newFakeStore()
	s.restaurants = []*store.Restaurant{{ID: 1, Name: "Luna Trattoria", RowStatus: store.Normal}}
	s.orders = []*store.Order{
		{ID: 1, UserID: 9, Items: []*store.OrderItem{
			{Name: "Margherita"},
			{Name: "Tiramisu"},
		}},
		{ID: 2, UserID: 9, Items: []*store.OrderItem{
			{Name: "Margherita"}, // duplicate, must appear once
		}},
	}
	var prompt string
	llm := &fakeLLM{respond: func(p string) (string, error) {
		prompt = p
		return `{"text":"Back to Luna?","restroIds":[1]}`, nil
	}}
	o := NewOrchestrator(s, llm, testConfig())

	_, err := o.HandleQuery(context.Background(), "where should I eat tonight", QueryOptions{UserID: 9})
	require.NoError(t, err)
	require.Contains(t, prompt, "Margherita, Tiramisu")
	require.Equal(t, 1, strings.Count(prompt, "Margherita, Tiramisu"))
}

func TestMenuLoaderCachesAndFilters(t *testing.T) {
	s := newFakeStore()
	s.menus[7] = []*store.MenuItem{
		{ID: 1, RestaurantID: 7, Name: "Latte", Category: "Drinks", Price: 4.5, ImageURL: "x.png", DisplayPrice: "$4.50", HealthScore: 3, CaffeineScore: 9},
	}
	o := NewOrchestrator(s, &fakeLLM{respond: func(string) (string, error) { return "", nil }}, testConfig())

	items, err := o.GetMenuItems(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []PromptMenuItem{{ID: 1, Name: "Latte", Category: "Drinks", Price: 4.5}}, items)

	// Second load within TTL hits the cache.
	_, err = o.GetMenuItems(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 1, s.menuCallCount(7))

	o.InvalidateMenu(7)
	_, err = o.GetMenuItems(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 2, s.menuCallCount(7))
}

func TestMenuLoaderRejectsInvalidID(t *testing.T) {
	o := NewOrchestrator(newFakeStore(), &fakeLLM{respond: func(string) (string, error) { return "", nil }}, testConfig())
	_, err := o.GetMenuItems(context.Background(), 0)
	require.Error(t, err)
}
