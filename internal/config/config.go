package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"salespulse/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Session store
	DataBackend string
	SQLiteName  string

	// Catalog seed
	CatalogSource string
	CatalogFile   string
	SeedDemoSales bool

	// Google Sheets catalog
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// AI coach
	GeminiAPIKey        string
	GeminiModel         string
	CoachThinkingBudget int
	CoachTimeout        time.Duration

	// Clock
	AsOfDate string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	TeamWebhookURL string

	LogLevel string
}

var (
	validBackends       = []string{"memory", "sqlite"}
	validCatalogSources = []string{"default", "file", "sheets"}
	validLogLevels      = []string{"debug", "info", "warn", "error"}
)

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),
		SQLiteName:  getEnv("SQLITE_MEMORY_NAME", "salespulse"),

		CatalogSource: getEnv("CATALOG_SOURCE", "default"),
		CatalogFile:   getEnv("CATALOG_FILE", ""),
		SeedDemoSales: getEnvBool("SEED_DEMO_SALES", false),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		CoachThinkingBudget: getEnvInt("COACH_THINKING_BUDGET", 1024),
		CoachTimeout:        getEnvDuration("COACH_TIMEOUT", 60*time.Second),

		AsOfDate: getEnv("AS_OF_DATE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "salespulse"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sale_recorded"),

		TeamWebhookURL: getEnv("TEAM_WEBHOOK_URL", ""),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	// A catalog file implies the file source.
	if cfg.CatalogFile != "" && os.Getenv("CATALOG_SOURCE") == "" {
		cfg.CatalogSource = "file"
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == "sqlite" && c.SQLiteName == "" {
		errors = append(errors, "SQLite memory database name cannot be empty when using sqlite backend")
	}

	switch c.CatalogSource {
	case "default":
	case "file":
		if c.CatalogFile == "" {
			errors = append(errors, "CATALOG_FILE is required when CATALOG_SOURCE is 'file'")
		} else if _, err := os.Stat(c.CatalogFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("catalog file does not exist: %s", c.CatalogFile))
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when CATALOG_SOURCE is 'sheets'")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets catalog")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid catalog source '%s': must be one of %v", c.CatalogSource, validCatalogSources))
	}

	if c.GeminiModel == "" {
		errors = append(errors, "Gemini model cannot be empty")
	}
	if c.CoachThinkingBudget < 0 || c.CoachThinkingBudget > 24576 {
		errors = append(errors, fmt.Sprintf("invalid coach thinking budget %d: must be between 0 and 24576", c.CoachThinkingBudget))
	}
	if c.CoachTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid coach timeout %v: must be at least 1 second", c.CoachTimeout))
	} else if c.CoachTimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid coach timeout %v: must be at most 10 minutes", c.CoachTimeout))
	}

	if c.AsOfDate != "" {
		if _, err := core.ParseDate(c.AsOfDate); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AS_OF_DATE '%s': must be YYYY-MM-DD", c.AsOfDate))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.TeamWebhookURL != "" {
		if u, err := url.Parse(c.TeamWebhookURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid team webhook URL '%s': must be an http(s) URL", c.TeamWebhookURL))
		}
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AsOf returns the pinned dashboard date, if any.
func (c *Config) AsOf() (core.Date, bool) {
	if c.AsOfDate == "" {
		return core.Date{}, false
	}
	d, err := core.ParseDate(c.AsOfDate)
	if err != nil {
		return core.Date{}, false
	}
	return d, true
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AMQPEnabled reports whether sale events are published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
