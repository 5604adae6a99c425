package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	StoragePath      string
	GeoIPDBPath      string
	AllowedOrigins   []string
	MetadataProvider string
	GeminiAPIKeys    string
	GeminiModel      string
	GeminiTrendModel string
	GeminiBaseURL    string
	GroqAPIKeys      string
	GroqModel        string
	GroqBaseURL      string
	ItemDelayMS      int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional: without it the credential
// store and usage analytics are disabled and keys come from the environment
// only.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:   splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		MetadataProvider: strings.ToLower(getEnv("METADATA_PROVIDER", "gemini")),
		GeminiAPIKeys:    getEnv("GEMINI_API_KEYS", os.Getenv("GEMINI_API_KEY")),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTrendModel: getEnv("GEMINI_TREND_MODEL", "gemini-1.5-pro"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GroqAPIKeys:      getEnv("GROQ_API_KEYS", os.Getenv("GROQ_API_KEY")),
		GroqModel:        getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL:      getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		ItemDelayMS:      getEnvInt("BATCH_ITEM_DELAY_MS", 300),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	switch cfg.MetadataProvider {
	case "gemini", "groq":
	default:
		return nil, fmt.Errorf("unsupported METADATA_PROVIDER %q", cfg.MetadataProvider)
	}

	if cfg.ItemDelayMS < 0 {
		return nil, fmt.Errorf("BATCH_ITEM_DELAY_MS must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(blob string) []string {
	var out []string
	for _, part := range strings.Split(blob, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
