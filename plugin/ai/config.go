package ai

import (
	"time"

	"github.com/pkg/errors"

	"github.com/feastline/feastline/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	Enabled bool

	LLM   LLMConfig
	Cache CacheConfig
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string  // openai, deepseek, ollama (OpenAI-compatible endpoints)
	Model       string  // gpt-4o-mini
	APIKey      string
	BaseURL     string
	MaxTokens   int           // default: 1024
	Temperature float32       // default: 0.7
	Timeout     time.Duration // default: 30s
	MaxRetries  int           // default: 3
}

// CacheConfig tunes the response caches.
type CacheConfig struct {
	MenuTTL     time.Duration // default: 10 minutes
	ResponseTTL time.Duration // default: 5 minutes
	MaxEntries  int           // default: 1000
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.IsAIEnabled(),
	}

	if !cfg.Enabled {
		return cfg
	}

	cfg.LLM = LLMConfig{
		Provider:    p.AILLMProvider,
		Model:       p.AIChatModel,
		APIKey:      p.AIAPIKey,
		BaseURL:     p.AIBaseURL,
		MaxTokens:   p.AIMaxTokens,
		Temperature: p.AITemperature,
		Timeout:     p.AIRequestTimeout,
		MaxRetries:  3,
	}

	cfg.Cache = CacheConfig{
		MenuTTL:     p.MenuCacheTTL,
		ResponseTTL: p.ResponseCacheTTL,
		MaxEntries:  p.CacheMaxEntries,
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}

	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	if c.LLM.Model == "" {
		return errors.New("LLM model is required")
	}

	return nil
}
