// Package config loads srsbot settings from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderBedrock   = "bedrock"
)

// Artifact store backends accepted by ARTIFACT_STORE.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Port      string
	PublicURL string

	// Language model
	LLMProvider     string
	LLMModel        string
	LLMTemperature  float64
	LLMTimeout      time.Duration
	LLMMaxRetries   int
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string

	// Prompt overrides (YAML)
	PromptsFile string

	// Artifact registry
	ArtifactStore    string
	ArtifactCapacity int
	ArtifactTTL      time.Duration
	RedisURL         string

	// Sessions
	SessionCapacity int
	SessionTTL      time.Duration

	// Rate limits per caller
	RateLimitChat   int // per minute, /chat only
	RateLimitHourly int
	RateLimitDaily  int

	// Logging
	LogFile  string
	LogLevel slog.Level

	// CLI client
	ServerURL     string
	ClientTimeout time.Duration
}

// Load reads configuration from environment variables.
// Rate limit defaults match the limits the chatbot has always shipped with.
func Load() Config {
	return Config{
		Port:      getEnv("SRSBOT_SERVER_PORT", "8484"),
		PublicURL: strings.TrimRight(getEnv("SRSBOT_PUBLIC_URL", ""), "/"),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMModel:        getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		LLMTemperature:  getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxRetries:   getEnvInt("LLM_MAX_RETRIES", 3),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),

		PromptsFile: getEnv("SRSBOT_PROMPTS_FILE", ""),

		ArtifactStore:    strings.ToLower(getEnv("ARTIFACT_STORE", StoreMemory)),
		ArtifactCapacity: getEnvInt("ARTIFACT_CAPACITY", 1000),
		ArtifactTTL:      getEnvDuration("ARTIFACT_TTL", 24*time.Hour),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),

		SessionCapacity: getEnvInt("SESSION_CAPACITY", 10000),
		SessionTTL:      getEnvDuration("SESSION_TTL", 12*time.Hour),

		RateLimitChat:   getEnvInt("RATE_LIMIT_CHAT", 5),
		RateLimitHourly: getEnvInt("RATE_LIMIT_HOURLY", 50),
		RateLimitDaily:  getEnvInt("RATE_LIMIT_DAILY", 200),

		LogFile:  getEnv("SRSBOT_LOG_FILE", "/tmp/srsbot.log"),
		LogLevel: parseLogLevel(getEnv("SRSBOT_LOG_LEVEL", "INFO")),

		ServerURL:     strings.TrimRight(getEnv("SRSBOT_SERVER_URL", "http://localhost:8484"), "/"),
		ClientTimeout: getEnvDuration("SRSBOT_CLIENT_TIMEOUT", 5*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		slog.Warn("invalid float in environment, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
