package auth

import (
	"context"
	"fmt"
	"net/http"
	"safe-space/domain"
	safeerrors "safe-space/errors"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const identityKey contextKey = "identity"

// ErrorWriter renders an error response for a rejected request.
type ErrorWriter func(w http.ResponseWriter, err error)

// Middleware validates the bearer token of every request and injects the
// caller identity into the request context.
func Middleware(tokens *TokenManager, fail ErrorWriter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				fail(w, fmt.Errorf("%w: authorization token is missing", safeerrors.ErrUnauthenticated))
				return
			}
			identity, err := tokens.ValidateToken(tokenString)
			if err != nil {
				fail(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole lets the request through only when the caller holds one of roles.
func RequireRole(fail ErrorWriter, roles ...domain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				fail(w, safeerrors.ErrUnauthenticated)
				return
			}
			if !identity.Role.In(roles...) {
				fail(w, fmt.Errorf("%w: role %s", safeerrors.ErrAccessDenied, identity.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
