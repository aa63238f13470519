package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	LLMProvider   string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	StorageDriver string
	DatabaseURL   string

	HTTPPort  string
	LogLevel  string
	JWTSecret string

	ThoughtTTL      time.Duration
	AIRatePerMinute int
	AIRateBurst     int
}

var AppConfig Config

// LoadConfig fills AppConfig from .env, an optional wodo.yaml and the
// environment, in increasing order of precedence.
func LoadConfig() error {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v, err := newViper(".")
	if err != nil {
		return err
	}
	AppConfig = fromViper(v)
	return nil
}

func newViper(searchPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("wodo")
	v.SetConfigType("yaml")
	v.AddConfigPath(searchPath)

	v.SetDefault("LLM_PROVIDER", ProviderGemini)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("STORAGE_DRIVER", "sqlite3")
	v.SetDefault("DATABASE_URL", "wodo.db")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("THOUGHT_TTL", 24*time.Hour)
	v.SetDefault("AI_RATE_PER_MINUTE", 20)
	v.SetDefault("AI_RATE_BURST", 5)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read wodo.yaml: %w", err)
		}
	}
	return v, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		LLMProvider:     strings.ToLower(v.GetString("LLM_PROVIDER")),
		GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
		OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:   v.GetString("OPENAI_BASE_URL"),
		OpenAIModel:     v.GetString("OPENAI_MODEL"),
		StorageDriver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		HTTPPort:        v.GetString("HTTP_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		ThoughtTTL:      v.GetDuration("THOUGHT_TTL"),
		AIRatePerMinute: v.GetInt("AI_RATE_PER_MINUTE"),
		AIRateBurst:     v.GetInt("AI_RATE_BURST"),
	}
}

// ValidateServer checks the settings the HTTP server cannot start without.
// The offline CLI commands never call it.
func (c Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY environment variable is required")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return errors.New("OPENAI_API_KEY or OPENAI_BASE_URL is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.ThoughtTTL <= 0 {
		return fmt.Errorf("THOUGHT_TTL must be positive, got %s", c.ThoughtTTL)
	}
	if c.AIRatePerMinute <= 0 || c.AIRateBurst <= 0 {
		return errors.New("AI_RATE_PER_MINUTE and AI_RATE_BURST must be positive")
	}
	return nil
}
