package config

import (
	"log"
	"os"
)

type Config struct {
	Port string

	OpenAIAPIKey  string
	OpenAIBaseURL string // empty = api.openai.com
	ModelName     string

	StorageBackend string // "memory" or "firestore"
	GCPProjectID   string

	UseMockLLM bool // true = canned replies, no network
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

// Load reads all env vars and builds the config
func Load() *Config {
	cfg := &Config{
		Port: getEnv("CONNECTOR_PORT", "8080"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		ModelName:     getEnv("CONNECTOR_MODEL_NAME", "gpt-4o"),

		StorageBackend: getEnv("CONNECTOR_STORAGE_BACKEND", "memory"),
		GCPProjectID:   getEnv("CONNECTOR_GCP_PROJECT", ""),

		UseMockLLM: getBoolEnv("CONNECTOR_USE_MOCK_LLM", false),
	}

	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		log.Fatal("CONNECTOR_GCP_PROJECT must be set for the firestore backend")
	}

	return cfg
}
