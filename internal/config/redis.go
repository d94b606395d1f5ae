package config

import (
	"github.com/deepgram/minichat/pkg/logger"
)

func GetRedisURL() string {
	logger.Debug(logger.CONFIG, "Attempting to retrieve Redis URL from environment")
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		logger.Debug(logger.CONFIG, "Redis URL not set - knowledge falls back to a local store")
	} else {
		logger.Info(logger.CONFIG, "Redis URL successfully loaded")
	}
	return value
}

func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}

func GetRedisDB() int {
	return parseEnvInt("REDIS_DB", 0)
}
