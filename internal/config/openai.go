package config

import (
	"strings"
	"time"

	"github.com/deepgram/minichat/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// PlaceholderAPIKey is sent when no real key is configured. The upstream will
// reject it, which surfaces as an error rather than a silent success.
const PlaceholderAPIKey = "YOUR_OPENAI_API_KEY"

// DefaultEmbeddingModel is used by the knowledge memory
const DefaultEmbeddingModel = string(openai.SmallEmbedding3)

// GetOpenAIKey returns the configured OpenAI key, or the placeholder literal
func GetOpenAIKey() string {
	value := GetEnvOrDefault("OPENAI_API_KEY", "")
	if value == "" {
		logger.Warn(logger.CONFIG, "OPENAI_API_KEY not set - using placeholder key")
		return PlaceholderAPIKey
	}
	return value
}

// GetOpenAIModel returns the chat model, gpt-4o-mini unless overridden
func GetOpenAIModel() string {
	return GetEnvOrDefault("OPENAI_MODEL", openai.GPT4oMini)
}

// GetOpenAIBaseURL returns the API root without a trailing slash
func GetOpenAIBaseURL() string {
	value := GetEnvOrDefault("OPENAI_BASE_URL", openai.DefaultConfig("").BaseURL)
	return strings.TrimRight(value, "/")
}

// GetOpenAITimeout returns the upstream request timeout. Zero means none.
func GetOpenAITimeout() time.Duration {
	return parseEnvDuration("OPENAI_TIMEOUT", 0)
}

func GetEmbeddingModel() string {
	return GetEnvOrDefault("EMBEDDING_MODEL", DefaultEmbeddingModel)
}
