package config

import (
	"os"
	"path/filepath"

	"github.com/deepgram/minichat/pkg/logger"
)

const defaultKnowledgeKey = "minichat:knowledge"

// GetKnowledgeKey returns the Redis list holding stored facts
func GetKnowledgeKey() string {
	return GetEnvOrDefault("KNOWLEDGE_REDIS_KEY", defaultKnowledgeKey)
}

// GetKnowledgeFile returns the JSON file used for facts when Redis is not
// available. Empty means facts only live for the current process.
func GetKnowledgeFile() string {
	return GetEnvOrDefault("KNOWLEDGE_FILE", defaultKnowledgeFile())
}

func defaultKnowledgeFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		logger.Warn(logger.CONFIG, "Home directory unknown - knowledge will be kept in memory")
		return ""
	}
	return filepath.Join(home, ".minichat", "knowledge.json")
}

// GetKnowledgeTopK returns how many facts are retrieved per prompt
func GetKnowledgeTopK() int {
	k := parseEnvInt("KNOWLEDGE_TOP_K", 3)
	if k <= 0 {
		logger.Warn(logger.CONFIG, "KNOWLEDGE_TOP_K must be positive, using 3")
		return 3
	}
	return k
}
