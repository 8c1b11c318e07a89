package profile

import (
	"os"
	"testing"
	"time"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FEASTLINE_AI_ENABLED",
		"FEASTLINE_AI_LLM_PROVIDER",
		"FEASTLINE_AI_API_KEY",
		"FEASTLINE_AI_BASE_URL",
		"FEASTLINE_AI_CHAT_MODEL",
		"FEASTLINE_AI_MAX_TOKENS",
		"FEASTLINE_AI_TEMPERATURE",
		"FEASTLINE_AI_REQUEST_TIMEOUT",
		"FEASTLINE_MENU_CACHE_TTL",
		"FEASTLINE_RESPONSE_CACHE_TTL",
		"FEASTLINE_CACHE_MAX_ENTRIES",
	} {
		os.Unsetenv(key)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnvVars(t)

	profile := &Profile{}
	profile.FromEnv()

	if profile.AIEnabled {
		t.Error("AIEnabled should be false by default")
	}
	if profile.AILLMProvider != "openai" {
		t.Errorf("AILLMProvider default: expected %q, got %q", "openai", profile.AILLMProvider)
	}
	if profile.AIBaseURL != "https://api.openai.com/v1" {
		t.Errorf("AIBaseURL default: expected %q, got %q", "https://api.openai.com/v1", profile.AIBaseURL)
	}
	if profile.AIChatModel != "gpt-4o-mini" {
		t.Errorf("AIChatModel default: expected %q, got %q", "gpt-4o-mini", profile.AIChatModel)
	}
	if profile.AIMaxTokens != 1024 {
		t.Errorf("AIMaxTokens default: expected 1024, got %d", profile.AIMaxTokens)
	}
	if profile.MenuCacheTTL != 10*time.Minute {
		t.Errorf("MenuCacheTTL default: expected 10m, got %s", profile.MenuCacheTTL)
	}
	if profile.ResponseCacheTTL != 5*time.Minute {
		t.Errorf("ResponseCacheTTL default: expected 5m, got %s", profile.ResponseCacheTTL)
	}
	if profile.CacheMaxEntries != 1000 {
		t.Errorf("CacheMaxEntries default: expected 1000, got %d", profile.CacheMaxEntries)
	}
}

func TestProfileFromEnv(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("FEASTLINE_AI_ENABLED", "true")
	t.Setenv("FEASTLINE_AI_API_KEY", "test-key-123")
	t.Setenv("FEASTLINE_AI_CHAT_MODEL", "deepseek-chat")
	t.Setenv("FEASTLINE_AI_MAX_TOKENS", "512")
	t.Setenv("FEASTLINE_MENU_CACHE_TTL", "3m")

	profile := &Profile{}
	profile.FromEnv()

	if !profile.AIEnabled {
		t.Error("AIEnabled should be true")
	}
	if !profile.IsAIEnabled() {
		t.Error("IsAIEnabled should be true with API key set")
	}
	if profile.AIChatModel != "deepseek-chat" {
		t.Errorf("AIChatModel: expected %q, got %q", "deepseek-chat", profile.AIChatModel)
	}
	if profile.AIMaxTokens != 512 {
		t.Errorf("AIMaxTokens: expected 512, got %d", profile.AIMaxTokens)
	}
	if profile.MenuCacheTTL != 3*time.Minute {
		t.Errorf("MenuCacheTTL: expected 3m, got %s", profile.MenuCacheTTL)
	}
}

func TestProfileValidate(t *testing.T) {
	t.Run("UnknownDriver", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Driver: "mysql", Data: t.TempDir()}
		if err := profile.Validate(); err == nil {
			t.Error("expected error for unsupported driver")
		}
	})

	t.Run("SQLiteDefaultDSN", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Driver: "sqlite", Data: t.TempDir()}
		if err := profile.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if profile.DSN == "" {
			t.Error("expected DSN to be derived from data dir")
		}
	})

	t.Run("PostgresRequiresDSN", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Driver: "postgres", Data: t.TempDir()}
		if err := profile.Validate(); err == nil {
			t.Error("expected error for postgres without dsn")
		}
	})

	t.Run("InvalidModeFallsBackToDemo", func(t *testing.T) {
		profile := &Profile{Mode: "staging", Driver: "sqlite", Data: t.TempDir()}
		if err := profile.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if profile.Mode != "demo" {
			t.Errorf("expected mode demo, got %q", profile.Mode)
		}
	})
}
