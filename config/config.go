package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config carries everything the tool reads from the environment. It is
// built once in main and passed to constructors explicitly; nothing below
// the command layer reads the environment on its own.
type Config struct {
	FredAPIKey string `validate:"omitempty,alphanum"`

	RequestTimeout time.Duration `validate:"min=1s"`
	MaxRetries     uint64        `validate:"max=10"`
	RequestsPerSec int           `validate:"min=1"`

	// LookbackYears is the default history window for derived metrics
	// when a metric definition does not set its own.
	LookbackYears int `validate:"min=1"`

	CSVPath     string
	ChartDir    string
	CatalogPath string

	TelegramToken  string
	TelegramChatID int64

	LogLevel string
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		FredAPIKey:     os.Getenv("FRED_API_KEY"),
		RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT", 30)) * time.Second,
		MaxRetries:     uint64(envInt("MAX_RETRIES", 3)),
		RequestsPerSec: envInt("REQUESTS_PER_SEC", 5),
		LookbackYears:  envInt("LOOKBACK_YEARS", 30),
		CSVPath:        envString("CSV_EXPORT_PATH", ""),
		ChartDir:       envString("CHART_DIR", "."),
		CatalogPath:    os.Getenv("METRICS_CATALOG"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		LogLevel:       envString("LOG_LEVEL", "info"),
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// TelegramEnabled reports whether notification settings are complete.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
