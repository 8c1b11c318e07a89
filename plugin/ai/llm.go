package ai

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// ChatMessage represents a single message sent to the LLM.
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionOptions overrides per-request generation parameters.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
}

// LLMService abstracts the chat completion backend.
type LLMService interface {
	// Complete sends a single-prompt completion request and returns the raw text.
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
	// Chat sends a multi-message conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error)
}

// OpenAILLMService implements LLMService over any OpenAI-compatible endpoint
// (OpenAI, DeepSeek, Ollama).
type OpenAILLMService struct {
	client *openai.Client
	config LLMConfig
}

// NewLLMService creates an LLM service for the configured provider.
func NewLLMService(cfg LLMConfig) (*OpenAILLMService, error) {
	if cfg.Model == "" {
		return nil, errors.New("LLM model is required")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	switch cfg.Provider {
	case "deepseek":
		clientConfig.BaseURL = "https://api.deepseek.com/v1"
	case "ollama":
		clientConfig.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAILLMService{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Complete sends a single user prompt.
func (s *OpenAILLMService) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	return s.Chat(ctx, []ChatMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}}, opts)
}

// Chat performs a chat completion with retry.
func (s *OpenAILLMService) Chat(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error) {
	maxTokens := s.config.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	temperature := s.config.Temperature
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}

	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    llmMessages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	start := time.Now()
	var result string
	err := s.doWithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()

		resp, err := s.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to complete chat")
	}

	slog.Debug("LLM chat completed",
		"model", s.config.Model,
		"latency", time.Since(start),
		"messages", len(messages))
	return result, nil
}

// doWithRetry executes a function with exponential backoff retry.
func (s *OpenAILLMService) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < s.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("LLM request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
