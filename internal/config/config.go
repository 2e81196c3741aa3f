// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	AnthropicAPIKey  string
	AnthropicBaseURL string
	OpenAIAPIKey     string
	OpenAIBaseURL    string

	DatabasePath string
	UploadDir    string

	// Conversation context tuning. The defaults mirror the values the
	// frontend was built against; they are tunable, not law.
	HistoryWindow     int
	SummaryInterval   int
	EditHistoryWindow int

	UpstreamTimeout time.Duration

	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "3001"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL:  getEnv("ANTHROPIC_API_URL", "https://api.anthropic.com/v1"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_API_URL", "https://api.openai.com/v1"),
		DatabasePath:      getEnv("DB_PATH", "chat.db"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		HistoryWindow:     getEnvAsInt("HISTORY_WINDOW", 10),
		SummaryInterval:   getEnvAsInt("SUMMARY_INTERVAL", 10),
		EditHistoryWindow: getEnvAsInt("EDIT_HISTORY_WINDOW", 6),
		UpstreamTimeout:   time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 120)) * time.Second,
		Environment:       env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.AnthropicAPIKey == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
		if cfg.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
