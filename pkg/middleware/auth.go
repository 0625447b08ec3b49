package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/services"
)

type claimsKeyType struct{}

var claimsKey = claimsKeyType{}

// ClaimsFromContext returns the verified token claims, or nil outside an
// authenticated request.
func ClaimsFromContext(ctx context.Context) *services.TokenClaims {
	claims, _ := ctx.Value(claimsKey).(*services.TokenClaims)
	return claims
}

// Auth validates the bearer token and injects its claims into the request
// context. Used on the REST surface; the websocket handshake verifies its
// credential through the session instead.
func Auth(tokens *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Access denied", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Access denied", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.VerifyToken(parts[1])
			if err != nil {
				http.Error(w, "Invalid token", http.StatusBadRequest)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
