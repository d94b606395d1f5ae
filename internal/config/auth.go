package config

import (
	"sync"
)

var (
	jwtSecretMu sync.RWMutex
	// jwtSecret is nil until first read so that a config file loaded by Init
	// is honoured.
	jwtSecret []byte
	jwtLoaded bool
)

// SetJWTSecret temporarily changes the JWT secret and returns a function to restore it
// This is primarily used for testing
func SetJWTSecret(secret []byte) func() {
	jwtSecretMu.Lock()
	previous, previousLoaded := jwtSecret, jwtLoaded
	jwtSecret, jwtLoaded = secret, true
	jwtSecretMu.Unlock()

	return func() {
		jwtSecretMu.Lock()
		jwtSecret, jwtLoaded = previous, previousLoaded
		jwtSecretMu.Unlock()
	}
}

// GetJWTSecret returns the current JWT secret in a thread-safe manner.
// An empty secret disables bearer auth on the HTTP surface.
func GetJWTSecret() []byte {
	jwtSecretMu.RLock()
	if jwtLoaded {
		defer jwtSecretMu.RUnlock()
		return jwtSecret
	}
	jwtSecretMu.RUnlock()

	jwtSecretMu.Lock()
	defer jwtSecretMu.Unlock()
	if !jwtLoaded {
		jwtSecret = []byte(GetEnvOrDefault("JWT_SECRET", ""))
		jwtLoaded = true
	}
	return jwtSecret
}

// AuthEnabled reports whether HTTP requests must carry a bearer token
func AuthEnabled() bool {
	return len(GetJWTSecret()) > 0
}
