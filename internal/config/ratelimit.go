package config

import (
	"time"

	"github.com/deepgram/minichat/pkg/logger"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
	// TrustProxy keys clients by the first X-Forwarded-For hop instead of
	// the connection's remote address.
	TrustProxy bool
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := parseEnvBool("RATELIMIT_ENABLED", false)
	trustProxy := parseEnvBool("RATELIMIT_TRUST_PROXY", false)

	configs := map[string]RateLimitConfig{
		"global": {
			Enabled:    enabled,
			MaxHits:    parseEnvInt("RATELIMIT_GLOBAL", 1000), // 1000 requests per minute globally
			Window:     time.Minute,
			TrustProxy: trustProxy,
		},
		"chat": {
			Enabled:    enabled,
			MaxHits:    parseEnvInt("RATELIMIT_CHAT", 120), // 120 requests per minute
			Window:     time.Minute,
			TrustProxy: trustProxy,
		},
		"knowledge": {
			Enabled:    enabled,
			MaxHits:    parseEnvInt("RATELIMIT_KNOWLEDGE", 30),
			Window:     time.Minute,
			TrustProxy: trustProxy,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	logger.Warn(logger.CONFIG, "No rate limit config found for key: %s", key)
	return RateLimitConfig{Enabled: false}
}
