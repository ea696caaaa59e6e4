// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string

	// Azure OpenAI (chat-completion provider)
	AzureOpenAIEndpoint    string
	AzureOpenAIKey         string
	AzureOpenAIDeployments []string
	AzureOpenAIAPIVersions []string

	// Google AI (search / AI-overview provider)
	GoogleAIAPIKey string
	GeminiModels   []string

	// Perplexity (answer engine with citations)
	PerplexityAPIKey string
	PerplexityModel  string

	CreditsPerQuery int
	QueryDelayMs    int

	Database DatabaseConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		AzureOpenAIEndpoint: os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIKey:      os.Getenv("AZURE_OPENAI_API_KEY"),
		// Tried in order; provider model availability is account-dependent
		// and not discoverable in advance.
		AzureOpenAIDeployments: getEnvList("AZURE_OPENAI_DEPLOYMENTS", []string{"gpt-4o", "gpt-4", "gpt-35-turbo"}),
		AzureOpenAIAPIVersions: getEnvList("AZURE_OPENAI_API_VERSIONS", []string{"2024-02-01", "2023-12-01-preview"}),

		GoogleAIAPIKey: os.Getenv("GOOGLE_AI_API_KEY"),
		GeminiModels:   getEnvList("GEMINI_MODELS", []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro"}),

		PerplexityAPIKey: os.Getenv("PERPLEXITY_API_KEY"),
		PerplexityModel:  getEnv("PERPLEXITY_MODEL", "sonar"),

		CreditsPerQuery: getEnvInt("CREDITS_PER_QUERY", 10),
		QueryDelayMs:    getEnvInt("QUERY_DELAY_MS", 500),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "firtz"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
