package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/feastline/feastline/plugin/ai"
	"github.com/feastline/feastline/plugin/ai/cache"
)

// cachedLLM wraps an LLM service with the response cache. Keys include
// the sampling parameters so a prompt reused at a different temperature
// is a different entry.
type cachedLLM struct {
	llm   ai.LLMService
	cache *cache.Cache[string, string]
	ttl   time.Duration
	model string
}

func newCachedLLM(llm ai.LLMService, model string, ttl time.Duration, maxEntries int) *cachedLLM {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &cachedLLM{
		llm: llm,
		cache: cache.New[string, string](cache.Config{
			DefaultTTL: ttl,
			MaxEntries: maxEntries,
		}),
		ttl:   ttl,
		model: model,
	}
}

// raw issues an uncached LLM call. Used where the caller maintains its
// own cache keyed on something other than the prompt text.
func (c *cachedLLM) raw(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	return c.llm.Complete(ctx, prompt, ai.CompletionOptions{
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
}

// complete returns the cached completion for an identical prompt and
// sampling configuration, or issues one coalesced LLM call.
func (c *cachedLLM) complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	key := fmt.Sprintf("%s|%d|%s|%.2f", prompt, maxTokens, c.model, temperature)
	return c.cache.GetOrFetch(ctx, key, c.ttl, func(ctx context.Context) (string, error) {
		return c.llm.Complete(ctx, prompt, ai.CompletionOptions{
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
	})
}
