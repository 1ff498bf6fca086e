package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

type identityCtxKey struct{}

// TokenVerifier validates a bearer token into a caller identity.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// identityFromContext returns the authenticated caller, or a zero
// Identity for anonymous requests.
func identityFromContext(ctx context.Context) domain.Identity {
	if id, ok := ctx.Value(identityCtxKey{}).(domain.Identity); ok {
		return id
	}
	return domain.Identity{}
}

// Authenticate parses an optional Bearer token into a request-scoped
// identity. Requests without a token pass through anonymously; a
// present-but-invalid token is rejected.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			}

			identity, err := verifier.Verify(auth[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "token is not valid")
				return
			}

			ctx := context.WithValue(r.Context(), identityCtxKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFromContext(r.Context()).IsZero() {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "no token, authorization denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles rejects callers whose role is not in the allowed set.
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := identityFromContext(r.Context())
			if id.IsZero() {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "no token, authorization denied")
				return
			}
			if _, ok := allowed[id.Role]; !ok {
				writeError(w, http.StatusForbidden, codeForbidden,
					"access denied: you do not have the required role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
