package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lilalabs/keygate/internal/service"
)

type contextKeyAuth string

// principalKey is the context key for the verified admin identity.
const principalKey contextKeyAuth = "admin_principal"

// RequireAdmin returns an HTTP middleware that gates a route on a valid
// admin session token. The two failure modes are distinct:
//
//   - no Authorization header, or one that isn't "Bearer <token>": 401
//   - a token that fails verification (signature, expiry, role): 403
//
// On success the service.Principal is attached to the request context and
// the downstream handler runs. The token check itself is the typed
// AuthService.ValidateToken; this wrapper only composes it in front of the
// handler and writes the error responses.
func RequireAdmin(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Token tidak ada")
				return
			}

			principal, err := authSvc.ValidateToken(token)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "Token tidak valid")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. ok is false when the header is absent or malformed.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// GetPrincipal extracts the verified admin identity from the context.
// Returns nil on routes that did not pass through RequireAdmin.
func GetPrincipal(ctx context.Context) *service.Principal {
	if p, ok := ctx.Value(principalKey).(*service.Principal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Handwritten JSON to avoid an import cycle with the handler package.
	w.Write([]byte(`{"error":"` + message + `"}`))
}
