package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/deepgram/minichat/pkg/logger"
	"github.com/spf13/viper"
)

func init() {
	bindEnv()
}

func bindEnv() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// Init loads an optional config file on top of the environment. Environment
// variables and bound flags still take precedence over file values.
func Init(cfgFile string) error {
	cfgFile = strings.TrimSpace(cfgFile)
	if cfgFile == "" {
		return nil
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}

	logger.Info(logger.CONFIG, "Loaded config file %s", viper.ConfigFileUsed())
	return nil
}

// GetEnvOrDefault returns the configured value for key or a default value
func GetEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(viper.GetString(key))
	if value == "" && defaultValue == "" {
		logger.Debug(logger.CONFIG, "Empty value and default for configuration key: %s", key)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func parseEnvInt(key string, defaultValue int) int {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		logger.Warn(logger.CONFIG, "Invalid value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return parsed
}

func parseEnvBool(key string, defaultValue bool) bool {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		logger.Warn(logger.CONFIG, "Invalid value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return parsed
}

// parseEnvDuration accepts Go durations ("30s") and bare integers as seconds.
func parseEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}

	parsed, err := time.ParseDuration(val)
	if err != nil || parsed < 0 {
		logger.Warn(logger.CONFIG, "Invalid value for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return parsed
}
