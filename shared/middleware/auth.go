package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/httpx"
)

// Authenticate validates the bearer access token and stores its claims in the request context.
func Authenticate(jwtAuth auth.JWTAuthenticator, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				httpx.Error(w, http.StatusUnauthorized, "", "missing or invalid authorization header")
				return
			}

			claims := &auth.AccessClaims{}
			if err := jwtAuth.Verify(parts[1], secret, claims); err != nil {
				httpx.Error(w, http.StatusUnauthorized, "", "invalid token")
				return
			}

			if claims.AccountID == "" || !claims.Role.Valid() {
				httpx.Error(w, http.StatusUnauthorized, "", "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole rejects requests whose claims do not carry role. Use after Authenticate.
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				httpx.Error(w, http.StatusUnauthorized, "", "unauthenticated")
				return
			}
			if claims.Role != role {
				httpx.Error(w, http.StatusForbidden, "", "this action requires a "+string(role)+" account")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdminSecret guards operator endpoints with the X-Admin-Secret header.
// An empty secret disables the endpoints entirely.
func RequireAdminSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Admin-Secret")
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				httpx.Error(w, http.StatusForbidden, "", "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
