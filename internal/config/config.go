package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/qui-ball/virtualGM/pkg/tools"
)

// Supported narrative model providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`

	// LogLevel is parsed from LogLevelRaw by Parse.
	LogLevel slog.Level

	LLMProvider       string        `env:"LLM_PROVIDER" envDefault:"openrouter"`
	ModelName         string        `env:"MODEL_NAME" envDefault:"deepseek/deepseek-chat-v3-0324"`
	OpenRouterAPIKey  string        `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	AnthropicAPIKey   string        `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL  string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com/v1"`
	LLMTimeout        time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`

	ExperienceFlow    tools.ExperienceFlow `env:"EXPERIENCE_FLOW" envDefault:"approve_first"`
	StartingFearPerPC int                  `env:"STARTING_FEAR_PER_PC" envDefault:"1"`
	WrapWidth         int                  `env:"WRAP_WIDTH" envDefault:"88"`

	// RedisURL enables the session event feed when set.
	RedisURL string `env:"REDIS_URL"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	return cfg, nil
}

// Validate checks provider credentials and enum values.
func (c *Config) Validate() error {
	var problems []error
	switch c.LLMProvider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			problems = append(problems, errors.New("OPENROUTER_API_KEY is required for the openrouter provider"))
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			problems = append(problems, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	default:
		problems = append(problems, fmt.Errorf("LLM_PROVIDER %q is not supported (use %s or %s)", c.LLMProvider, ProviderOpenRouter, ProviderAnthropic))
	}
	if c.ModelName == "" {
		problems = append(problems, errors.New("MODEL_NAME must not be empty"))
	}
	if _, err := tools.ParseExperienceFlow(string(c.ExperienceFlow)); err != nil {
		problems = append(problems, fmt.Errorf("EXPERIENCE_FLOW: %w", err))
	}
	if c.StartingFearPerPC < 0 {
		problems = append(problems, fmt.Errorf("STARTING_FEAR_PER_PC must be non-negative, got %d", c.StartingFearPerPC))
	}
	if c.WrapWidth < 20 {
		problems = append(problems, fmt.Errorf("WRAP_WIDTH must be at least 20, got %d", c.WrapWidth))
	}
	if c.LLMTimeout <= 0 {
		problems = append(problems, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout))
	}
	return errors.Join(problems...)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
