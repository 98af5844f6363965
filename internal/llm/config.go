package llm

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	Provider     string // "http" or "gemini"
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	HistoryTurns int
}

const (
	defaultBaseURL     = "https://api.cohere.com/v1/chat"
	defaultModel       = "command-r"
	defaultGeminiModel = "gemini-2.0-flash"
)

func LoadConfig() Config {
	cfg := Config{
		Provider:     strings.ToLower(envOr("LLM_PROVIDER", "http")),
		APIKey:       os.Getenv("LLM_API_KEY"),
		BaseURL:      envOr("LLM_BASE_URL", defaultBaseURL),
		Model:        os.Getenv("LLM_MODEL"),
		Temperature:  0.2,
		MaxTokens:    1024,
		Timeout:      30 * time.Second,
		HistoryTurns: 6,
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("LLM_HISTORY_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.HistoryTurns = n
		}
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
		if cfg.Provider == "gemini" {
			cfg.Model = defaultGeminiModel
		}
	}
	return cfg
}

// New builds the gateway selected by cfg.Provider.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: LLM_API_KEY not set")
	}
	switch cfg.Provider {
	case "", "http":
		return NewHTTPGateway(cfg, log), nil
	case "gemini":
		return NewGenAIGateway(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
