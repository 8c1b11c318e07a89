package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where feastline stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your feastline instance.
	InstanceURL string

	// AI Configuration
	AIEnabled        bool          // FEASTLINE_AI_ENABLED
	AILLMProvider    string        // FEASTLINE_AI_LLM_PROVIDER (default: openai)
	AIAPIKey         string        // FEASTLINE_AI_API_KEY
	AIBaseURL        string        // FEASTLINE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIChatModel      string        // FEASTLINE_AI_CHAT_MODEL (default: gpt-4o-mini)
	AIMaxTokens      int           // FEASTLINE_AI_MAX_TOKENS (default: 1024)
	AITemperature    float32       // FEASTLINE_AI_TEMPERATURE (default: 0.7)
	AIRequestTimeout time.Duration // FEASTLINE_AI_REQUEST_TIMEOUT (default: 30s)

	// Cache tuning
	MenuCacheTTL     time.Duration // FEASTLINE_MENU_CACHE_TTL (default: 10m)
	ResponseCacheTTL time.Duration // FEASTLINE_RESPONSE_CACHE_TTL (default: 5m)
	CacheMaxEntries  int           // FEASTLINE_CACHE_MAX_ENTRIES (default: 1000)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key or a local base URL is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.AIAPIKey != "" || p.AIBaseURL != "")
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// FromEnv loads configuration from FEASTLINE_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("FEASTLINE_AI_ENABLED") == "true"
	p.AILLMProvider = getEnvOrDefault("FEASTLINE_AI_LLM_PROVIDER", "openai")
	p.AIAPIKey = os.Getenv("FEASTLINE_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("FEASTLINE_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIChatModel = getEnvOrDefault("FEASTLINE_AI_CHAT_MODEL", "gpt-4o-mini")
	p.AIMaxTokens = getIntEnvOrDefault("FEASTLINE_AI_MAX_TOKENS", 1024)
	p.AITemperature = 0.7
	if value := os.Getenv("FEASTLINE_AI_TEMPERATURE"); value != "" {
		if f, err := strconv.ParseFloat(value, 32); err == nil && f >= 0 {
			p.AITemperature = float32(f)
		}
	}
	p.AIRequestTimeout = getDurationEnvOrDefault("FEASTLINE_AI_REQUEST_TIMEOUT", 30*time.Second)

	p.MenuCacheTTL = getDurationEnvOrDefault("FEASTLINE_MENU_CACHE_TTL", 10*time.Minute)
	p.ResponseCacheTTL = getDurationEnvOrDefault("FEASTLINE_RESPONSE_CACHE_TTL", 5*time.Minute)
	p.CacheMaxEntries = getIntEnvOrDefault("FEASTLINE_CACHE_MAX_ENTRIES", 1000)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported db driver %q: only 'sqlite' and 'postgres' are supported", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "feastline")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/feastline"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("feastline_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	return nil
}
