// Package config loads settings from the environment and an optional .env
// file, and the shop profile from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// Storage backends.
const (
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendGCS    = "gcs"
)

// Config represents the application configuration.
type Config struct {
	Port     string
	Storage  StorageConfig
	Gemini   GeminiConfig
	BigQuery BigQueryConfig
	Notion   NotionConfig
	Shop     domain.Shop
	Debug    bool
}

// StorageConfig selects where the ledger is kept.
type StorageConfig struct {
	Backend    string
	DBPath     string
	FlushDelay time.Duration
	GCSBucket  string
	GCSObject  string
}

// GeminiConfig configures AI insights.
type GeminiConfig struct {
	Model   string
	Timeout time.Duration

	// APIKey comes from GEMINI_API_KEY, or GOOGLE_API_KEY when that is unset.
	APIKey   string
	VertexAI bool
	Project  string
	Location string
}

// Enabled reports whether any Gemini credentials are configured.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != "" || g.VertexAI
}

// BigQueryConfig configures warehouse exports.
type BigQueryConfig struct {
	Project string
	Dataset string
}

// NotionConfig configures the Notion mirror.
type NotionConfig struct {
	Token      string
	DatabaseID string
}

// DefaultShop is used when no shop profile file is configured.
func DefaultShop() domain.Shop {
	return domain.Shop{
		Name:    "VIKAS PUSTAK BHANDAR",
		Tagline: "Specialist in Academic & Competitive Books",
		Address: "Shop No. 12, Main Market, Gandhi Chowk, New Delhi - 110001",
		Phone:   "+91 98765-43210",
		Email:   "vikasbooks@gmail.com",
		GSTIN:   "07AAAAA0000A1Z5",
	}
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	flushDelay, err := parseDurationEnv("KHATA_FLUSH_DELAY", 800*time.Millisecond)
	if err != nil {
		return nil, err
	}
	insightTimeout, err := parseDurationEnv("KHATA_INSIGHT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	vertexAI, err := parseBoolEnv("GOOGLE_GENAI_USE_VERTEXAI")
	if err != nil {
		return nil, err
	}

	shop := DefaultShop()
	if path := os.Getenv("KHATA_SHOP_PROFILE"); path != "" {
		shop, err = LoadShop(path)
		if err != nil {
			return nil, err
		}
	}

	config := &Config{
		Port: getEnvOrDefault("KHATA_PORT", "8080"),
		Storage: StorageConfig{
			Backend:    strings.ToLower(getEnvOrDefault("KHATA_STORAGE", BackendBolt)),
			DBPath:     getEnvOrDefault("KHATA_DB_PATH", "kitab-khata.db"),
			FlushDelay: flushDelay,
			GCSBucket:  os.Getenv("GCS_BUCKET"),
			GCSObject:  getEnvOrDefault("KHATA_GCS_OBJECT", "kitab-khata/transactions.json"),
		},
		Gemini: GeminiConfig{
			Model:    getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:  insightTimeout,
			APIKey:   getEnvOrDefault("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
			VertexAI: vertexAI,
			Project:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
			Location: getEnvOrDefault("GOOGLE_CLOUD_LOCATION", "us-central1"),
		},
		BigQuery: BigQueryConfig{
			Project: os.Getenv("BQ_PROJECT"),
			Dataset: getEnvOrDefault("BQ_DATASET", "kitab_khata"),
		},
		Notion: NotionConfig{
			Token:      os.Getenv("NOTION_TOKEN"),
			DatabaseID: os.Getenv("NOTION_DB_ID"),
		},
		Shop:  shop,
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// LoadShop reads a shop profile from a YAML file. Missing fields keep the
// default profile's values.
func LoadShop(path string) (domain.Shop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("LoadShop: read %s: %w", path, err)
	}

	shop := DefaultShop()
	if err := yaml.Unmarshal(data, &shop); err != nil {
		return domain.Shop{}, fmt.Errorf("LoadShop: parse %s: %w", path, err)
	}
	return shop, nil
}

// Validate checks the storage settings and any extra features named in
// required ("gcs", "bigquery", "notion", "gemini"). Gemini settings are also
// checked whenever Vertex AI is switched on.
func (c *Config) Validate(required ...string) error {
	var missing []string

	switch c.Storage.Backend {
	case BackendBolt:
		if c.Storage.DBPath == "" {
			missing = append(missing, "KHATA_DB_PATH")
		}
	case BackendMemory:
	case BackendGCS:
		required = append(required, "gcs")
	default:
		return fmt.Errorf("unknown KHATA_STORAGE %q (want bolt, memory or gcs)", c.Storage.Backend)
	}

	if c.Gemini.VertexAI {
		required = append(required, "gemini")
	}

	for _, feature := range required {
		switch feature {
		case "gcs":
			if c.Storage.GCSBucket == "" {
				missing = append(missing, "GCS_BUCKET")
			}
		case "bigquery":
			if c.BigQuery.Project == "" {
				missing = append(missing, "BQ_PROJECT")
			}
			if c.BigQuery.Dataset == "" {
				missing = append(missing, "BQ_DATASET")
			}
		case "gemini":
			switch {
			case c.Gemini.VertexAI:
				if c.Gemini.Project == "" {
					missing = append(missing, "GOOGLE_CLOUD_PROJECT")
				}
				if c.Gemini.Location == "" {
					missing = append(missing, "GOOGLE_CLOUD_LOCATION")
				}
			case c.Gemini.APIKey == "":
				missing = append(missing, "GEMINI_API_KEY")
			}
		case "notion":
			if c.Notion.Token == "" {
				missing = append(missing, "NOTION_TOKEN")
			}
			if c.Notion.DatabaseID == "" {
				missing = append(missing, "NOTION_DB_ID")
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", dedupe(missing))
	}
	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationEnv parses a Go duration ("800ms", "30s") from an environment variable.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}
	return parsed, nil
}

// parseBoolEnv parses "true"/"1"/"false"/"0" from an environment variable;
// unset is false.
func parseBoolEnv(key string) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for %s: %s", key, value)
	}
	return parsed, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
