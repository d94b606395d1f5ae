package middleware

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/deepgram/minichat/internal/config"
	"github.com/deepgram/minichat/pkg/httpext"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
)

// Claims are the JWT claims accepted by the HTTP surface
type Claims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scp"`
}

// ExtractToken reads a bearer token from the Authorization header, falling
// back to the access_token query parameter for browser websockets.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return r.URL.Query().Get("access_token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ValidateToken parses an HS256 token signed with the configured secret
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid token carrying scope. It is a
// no-op while no JWT secret is configured.
func RequireAuth(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.AuthEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			log := zerolog.Ctx(r.Context())

			tokenString := ExtractToken(r)
			if tokenString == "" {
				httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := ValidateToken(tokenString)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected invalid token")
				httpext.JsonError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if !slices.Contains(claims.Scopes, scope) {
				log.Warn().
					Str("required_scope", scope).
					Strs("token_scopes", claims.Scopes).
					Str("path", r.URL.Path).
					Msg("Access denied - token missing required scope")
				httpext.JsonError(w, "Missing required scope", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the validated claims from the request context
func GetClaims(r *http.Request) *Claims {
	if claims, ok := r.Context().Value(claimsKey).(*Claims); ok {
		return claims
	}
	return nil
}
