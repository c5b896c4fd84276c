package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// contextKey is an unexported type for this package's context keys, so no
// other package can read or shadow the principal value.
type contextKey string

const principalKey contextKey = "principal"

// RequireAuth enforces authentication on protected routes.
//
// It reads the access token from the Authorization header
// ("Bearer <token>"), validates it, and stores the resulting principal in
// the request context. Requests with a missing/invalid token, or carrying a
// refresh token where an access token belongs, get 401 and never reach the
// handler.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil || claims.Category != CategoryAccess {
				writeDenied(w, http.StatusUnauthorized, "valid authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the principal's role. It must be chained
// after RequireAuth; an absent principal or a role mismatch yields 403.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := PrincipalFromContext(r.Context())
			if !ok || claims.Role != role {
				writeDenied(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext retrieves the authenticated principal from the
// request context. Returns (nil, false) on anonymous requests.
//
// The principal is always passed explicitly through the context of the
// request being handled — there is no ambient global auth state.
func PrincipalFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(principalKey).(*Claims)
	return claims, ok && claims != nil
}

// writeDenied emits the platform error envelope without importing the
// handler package (which imports this one).
func writeDenied(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"status":%d,"error":%q}`+"\n", status, message)
}

// extractClaims reads and validates the bearer token on a request.
func extractClaims(r *http.Request, tokens *TokenService) (*Claims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, ErrTokenInvalid
	}
	return tokens.Validate(token)
}
