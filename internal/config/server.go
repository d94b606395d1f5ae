package config

import (
	"strings"
	"time"
)

func GetServerAddr() string {
	return GetEnvOrDefault("SERVER_ADDR", ":8080")
}

func GetLogLevel() string {
	return GetEnvOrDefault("LOG_LEVEL", "INFO")
}

// GetWebSocketPongWait is how long a chat socket may stay silent before it is
// dropped. Pings go out at nine tenths of it.
func GetWebSocketPongWait() time.Duration {
	wait := parseEnvDuration("WS_PONG_WAIT", 30*time.Second)
	if wait <= 0 {
		return 30 * time.Second
	}
	return wait
}

// GetCORSAllowedOrigins lists the browser origins allowed to call the API,
// from a comma separated CORS_ALLOWED_ORIGINS. Empty disables CORS.
func GetCORSAllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(GetEnvOrDefault("CORS_ALLOWED_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
