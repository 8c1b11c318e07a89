package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/feastline/feastline/plugin/ai"
	"github.com/feastline/feastline/plugin/ai/cache"
	"github.com/feastline/feastline/store"
)

// recommendationTimeout bounds one full query flow, including menu
// fetches and the LLM calls.
const recommendationTimeout = 30 * time.Second

// QueryOptions carries the per-query context supplied by the caller.
type QueryOptions struct {
	UserID             int32
	ActiveRestaurantID int32
	History            []Message

	// ImageDescription substitutes for the query text when the user
	// sent a photo instead of typing.
	ImageDescription string

	VegetarianOnly bool
	PortionFor     int
}

// Orchestrator routes classified queries to the restaurant or menu
// recommendation flow and returns structured results.
type Orchestrator struct {
	store      Store
	classifier *Classifier
	menus      *MenuLoader
	llm        *cachedLLM

	// restaurantCache memoizes restaurant suggestion responses keyed by
	// query text plus the sorted candidate id list.
	restaurantCache *cache.Cache[string, string]
	responseTTL     time.Duration

	maxTokens   int
	temperature float32
}

// NewOrchestrator wires the conversational core from its dependencies.
func NewOrchestrator(s Store, llm ai.LLMService, cfg *ai.Config) *Orchestrator {
	cached := newCachedLLM(llm, cfg.LLM.Model, cfg.Cache.ResponseTTL, cfg.Cache.MaxEntries)
	responseTTL := cfg.Cache.ResponseTTL
	if responseTTL <= 0 {
		responseTTL = 5 * time.Minute
	}
	return &Orchestrator{
		store:      s,
		classifier: NewClassifier(cached),
		menus:      NewMenuLoader(s, cfg.Cache.MenuTTL, cfg.Cache.MaxEntries),
		llm:        cached,
		restaurantCache: cache.New[string, string](cache.Config{
			DefaultTTL: responseTTL,
			MaxEntries: cfg.Cache.MaxEntries,
		}),
		responseTTL: responseTTL,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
	}
}

// ClassifyIntent exposes the classifier to callers that only need the
// query type.
func (o *Orchestrator) ClassifyIntent(ctx context.Context, query string, activeRestaurantID int32, history []Message) (QueryType, error) {
	return o.classifier.Classify(ctx, query, activeRestaurantID, history)
}

// GetMenuItems returns the prompt-ready menu for a restaurant.
func (o *Orchestrator) GetMenuItems(ctx context.Context, restaurantID int32) ([]PromptMenuItem, error) {
	return o.menus.Load(ctx, restaurantID)
}

// InvalidateMenu drops the cached menu for a restaurant, for callers
// that just mutated it.
func (o *Orchestrator) InvalidateMenu(restaurantID int32) {
	o.menus.Invalidate(restaurantID)
}

// HandleQuery classifies a user utterance and runs the matching flow.
// Greetings short-circuit with a canned reply and no LLM call.
func (o *Orchestrator) HandleQuery(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, recommendationTimeout)
	defer cancel()

	if IsGreeting(query) {
		return &Result{
			Kind:      ResultShortCircuit,
			QueryType: QueryTypeGeneral,
			Text:      GreetingReply,
		}, nil
	}

	queryType, err := o.classifier.Classify(ctx, query, opts.ActiveRestaurantID, opts.History)
	if err != nil {
		return nil, err
	}

	text := query
	if opts.ImageDescription != "" {
		text = opts.ImageDescription
	}

	switch queryType {
	case QueryTypeRestaurant:
		return o.HandleRestaurantQuery(ctx, text, opts)
	case QueryTypeMenu:
		return o.HandleMenuQuery(ctx, text, opts)
	default:
		return o.handleGeneral(ctx, query, opts)
	}
}

// HandleRestaurantQuery asks the LLM to pick up to 2 restaurants for
// the query and returns them as a suggestion. A response with no ids
// degrades to a general reply carrying the LLM's text.
func (o *Orchestrator) HandleRestaurantQuery(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	resp, raw, err := o.suggestRestaurants(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &Result{Kind: ResultGeneral, QueryType: QueryTypeGeneral, Text: stripCodeFence(raw)}, nil
	}
	if len(resp.RestroIDs) == 0 {
		return &Result{Kind: ResultGeneral, QueryType: QueryTypeGeneral, Text: resp.Text}, nil
	}
	return &Result{
		Kind:          ResultRestaurantSuggestion,
		QueryType:     QueryTypeRestaurant,
		Text:          resp.Text,
		RestaurantIDs: resp.RestroIDs,
	}, nil
}

// HandleMenuQuery produces menu recommendations. With an active
// restaurant it prompts over that single menu; otherwise it first asks
// for restaurant suggestions, fetches up to 2 menus in parallel, and
// prompts over both.
func (o *Orchestrator) HandleMenuQuery(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	if opts.ActiveRestaurantID > 0 {
		menu, err := o.menus.Load(ctx, opts.ActiveRestaurantID)
		if err != nil {
			return nil, err
		}
		return o.recommendFromMenus(ctx, query, opts, []int32{opts.ActiveRestaurantID}, menu, nil)
	}

	resp, raw, err := o.suggestRestaurants(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &Result{Kind: ResultGeneral, QueryType: QueryTypeGeneral, Text: stripCodeFence(raw)}, nil
	}
	if len(resp.RestroIDs) == 0 {
		return &Result{Kind: ResultGeneral, QueryType: QueryTypeGeneral, Text: resp.Text}, nil
	}

	ids := resp.RestroIDs
	menus := make([][]PromptMenuItem, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			menu, err := o.menus.Load(gctx, id)
			if err != nil {
				return err
			}
			menus[i] = menu
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var menu2 []PromptMenuItem
	if len(menus) > 1 {
		menu2 = menus[1]
	}
	return o.recommendFromMenus(ctx, query, opts, ids, menus[0], menu2)
}

// suggestRestaurants runs the cached restaurant suggestion call.
// Returns (nil, raw, nil) when the LLM response could not be parsed so
// the caller can degrade to the raw text.
func (o *Orchestrator) suggestRestaurants(ctx context.Context, query string, opts QueryOptions) (*restaurantResponse, string, error) {
	normal := store.Normal
	restaurants, err := o.store.ListRestaurants(ctx, &store.FindRestaurant{RowStatus: &normal})
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to list restaurants")
	}
	if len(restaurants) == 0 {
		return nil, "", errors.New("no restaurants available")
	}

	projected := make([]PromptRestaurant, 0, len(restaurants))
	candidates := make(map[int32]bool, len(restaurants))
	ids := make([]int, 0, len(restaurants))
	for _, r := range restaurants {
		projected = append(projected, PromptRestaurant{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			MenuSummary: r.Category,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
		})
		candidates[r.ID] = true
		ids = append(ids, int(r.ID))
	}
	sort.Ints(ids)
	idParts := make([]string, len(ids))
	for i, id := range ids {
		idParts[i] = fmt.Sprintf("%d", id)
	}
	key := query + "|" + strings.Join(idParts, ",")

	orderHistory := o.orderHistoryNames(ctx, opts.UserID)
	convContext := BuildConversationContext(opts.History, DefaultContextWindow)
	prompt := buildRestaurantPrompt(projected, query, orderHistory, convContext)

	raw, err := o.restaurantCache.GetOrFetch(ctx, key, o.responseTTL, func(ctx context.Context) (string, error) {
		return o.llm.raw(ctx, prompt, o.maxTokens, o.temperature)
	})
	if err != nil {
		return nil, "", errors.Wrap(err, "restaurant suggestion failed")
	}

	resp, err := parseRestaurantResponse(raw, candidates)
	if err != nil {
		slog.Warn("unparseable restaurant response, degrading to raw text", "error", err)
		return nil, raw, nil
	}
	return resp, raw, nil
}

// recommendFromMenus prompts the LLM over one or two filtered menus and
// parses the structured recommendation. Unparseable output degrades to
// a general reply with the raw text.
func (o *Orchestrator) recommendFromMenus(ctx context.Context, query string, opts QueryOptions, ids []int32, menu1, menu2 []PromptMenuItem) (*Result, error) {
	directives := menuDirectives(opts.VegetarianOnly, opts.PortionFor)
	convContext := BuildConversationContext(opts.History, DefaultContextWindow)

	var prompt string
	if menu2 == nil {
		prompt = buildMenuPrompt(menu1, query, convContext, directives)
	} else {
		prompt = buildTwoMenuPrompt(ids[0], menu1, ids[1], menu2, query, convContext, directives)
	}

	raw, err := o.llm.complete(ctx, prompt, o.maxTokens, o.temperature)
	if err != nil {
		return nil, errors.Wrap(err, "menu recommendation failed")
	}

	resp, err := parseMenuResponse(raw)
	if err != nil {
		slog.Warn("unparseable menu response, degrading to raw text", "error", err)
		return &Result{Kind: ResultGeneral, QueryType: QueryTypeGeneral, Text: stripCodeFence(raw)}, nil
	}

	return &Result{
		Kind:          ResultMenuRecommendation,
		QueryType:     QueryTypeMenu,
		Text:          resp.Text,
		RestaurantIDs: ids,
		Items1:        resp.Items1,
		Items2:        resp.Items2,
	}, nil
}

// handleGeneral produces a plain conversational reply.
func (o *Orchestrator) handleGeneral(ctx context.Context, query string, opts QueryOptions) (*Result, error) {
	prompt := buildGeneralPrompt(query, BuildConversationContext(opts.History, DefaultContextWindow))
	raw, err := o.llm.complete(ctx, prompt, o.maxTokens, o.temperature)
	if err != nil {
		return nil, errors.Wrap(err, "general reply failed")
	}
	return &Result{Kind: ResultGeneral, QueryType: QueryTypeGeneral, Text: strings.TrimSpace(raw)}, nil
}

// orderHistoryNames returns the deduplicated names of items the user
// ordered before, a ranking signal for restaurant suggestions. Failures
// are logged and ignored.
func (o *Orchestrator) orderHistoryNames(ctx context.Context, userID int32) []string {
	if userID <= 0 {
		return nil
	}
	limit := 20
	orders, err := o.store.ListOrders(ctx, &store.FindOrder{
		UserID:    &userID,
		Limit:     &limit,
		WithItems: true,
	})
	if err != nil {
		slog.Warn("failed to load order history", "error", err, "user_id", userID)
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, order := range orders {
		for _, item := range order.Items {
			if item.Name != "" && !seen[item.Name] {
				seen[item.Name] = true
				names = append(names, item.Name)
			}
		}
	}
	return names
}
