package middleware

import (
	"net/http"

	"github.com/deepgram/minichat/pkg/logger"
	"github.com/rs/cors"
)

// CORS lets browser pages served from origins call the API. It wraps the
// whole router so preflight requests are answered before route matching,
// which would otherwise reject OPTIONS with 405. With no origins it is a
// no-op and cross-origin calls stay blocked by the browser.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	logger.Info(logger.MIDDLEWARE, "CORS enabled for %d origins", len(origins))
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, RateLimitRemainingHeader},
		MaxAge:         600,
		Logger:         logger.For(logger.MIDDLEWARE),
		Debug:          true,
	})
	return c.Handler
}
