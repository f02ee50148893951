package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve on hosts without zoneinfo
)

// Data backends.
const (
	BackendNotion = "notion"
	BackendMemory = "memory"
)

type Config struct {
	// HTTP Server
	Port               string
	ShutdownTimeout    time.Duration
	RateLimitPerMinute int
	AdminPIN           string

	// Observability
	LogLevel            string
	TraceEndpoint       string
	TraceSampleFraction float64

	// Record store
	DataBackend    string
	NotionToken    string
	MemorySeedFile string
	Timezone       string

	// Workspace (database ids and branding)
	ConstructionConfig     string
	ConstructionConfigFile string

	// Todoist
	TodoistToken   string
	TodoistBaseURL string

	// Transition journal; an empty path disables it
	SQLiteDBPath string

	// AMQP; an empty URL makes the server write the journal directly
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Journal mirror to Google Sheets; an empty spreadsheet id disables it
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	MirrorInterval  time.Duration
	MirrorBatchSize int
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		AdminPIN:           getEnv("ADMIN_PIN", ""),

		LogLevel:            getEnv("LOG_LEVEL", "info"),
		TraceEndpoint:       getEnv("TRACE_ENDPOINT", ""),
		TraceSampleFraction: getEnvFloat("TRACE_SAMPLE_FRACTION", 0.05),

		DataBackend:    getEnv("DATA_BACKEND", BackendMemory),
		NotionToken:    getEnv("NOTION_TOKEN", ""),
		MemorySeedFile: getEnv("MEMORY_SEED_FILE", ""),
		Timezone:       getEnv("APP_TIMEZONE", "America/Santo_Domingo"),

		ConstructionConfig:     getEnv("CONSTRUCTION_CONFIG", ""),
		ConstructionConfigFile: getEnv("CONSTRUCTION_CONFIG_FILE", "config.json"),

		TodoistToken:   getEnv("TODOIST_TOKEN", ""),
		TodoistBaseURL: getEnv("TODOIST_BASE_URL", "https://api.todoist.com"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/obra.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "obra"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "status_transitions"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transitions"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		MirrorInterval:  getEnvDuration("MIRROR_INTERVAL", time.Minute),
		MirrorBatchSize: getEnvInt("MIRROR_BATCH_SIZE", 50),
	}
}

// Location returns the configured time zone, or UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// JournalEnabled reports whether transitions are recorded.
func (c *Config) JournalEnabled() bool { return c.SQLiteDBPath != "" }

// MirrorEnabled reports whether the journal is mirrored to a spreadsheet.
func (c *Config) MirrorEnabled() bool { return c.GoogleSpreadsheetID != "" }

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{BackendNotion, BackendMemory}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == BackendNotion && c.NotionToken == "" {
		errors = append(errors, "NOTION_TOKEN is required when using notion backend")
	}
	if c.DataBackend == BackendMemory && c.MemorySeedFile != "" {
		if _, err := os.Stat(c.MemorySeedFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("memory seed file does not exist: %s", c.MemorySeedFile))
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	// Validate journal database directory
	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
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

	// Validate journal mirror
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet is configured")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the sheet mirror")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.RateLimitPerMinute < 1 || c.RateLimitPerMinute > 10000 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be between 1 and 10000 per minute", c.RateLimitPerMinute))
	}
	if c.TraceSampleFraction < 0 || c.TraceSampleFraction > 1 {
		errors = append(errors, fmt.Sprintf("invalid trace sample fraction %v: must be between 0 and 1", c.TraceSampleFraction))
	}
	if c.MirrorInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be at least 1 second", c.MirrorInterval))
	}
	if c.MirrorBatchSize < 1 || c.MirrorBatchSize > 500 {
		errors = append(errors, fmt.Sprintf("invalid mirror batch size %d: must be between 1 and 500", c.MirrorBatchSize))
	}
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
