package middleware

import (
	"net/http"
	"strings"

	"github.com/tradepost/backend/internal/auth"
	"github.com/tradepost/backend/internal/logging"
)

const authorizationHeader = "Authorization"

// TokenValidator authenticates bearer tokens into request principals.
type TokenValidator interface {
	Authenticate(token string) (auth.Principal, error)
}

// Authenticate resolves the Authorization bearer token and, when it validates,
// attaches the principal to the request context. Requests with a missing or
// invalid token continue unauthenticated; route handlers that require an
// identity must reject them. The filter itself never aborts a request.
func Authenticate(codec TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := resolveBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := codec.Authenticate(token)
			if err != nil {
				logging.FromContext(r.Context()).Debug("invalid bearer token", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(authorizationHeader))
	if header == "" {
		return ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
