package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tradepost/backend/internal/auth"
)

func newTestCodec(t *testing.T, accessTTL time.Duration) *auth.Codec {
	t.Helper()
	codec, err := auth.NewCodec("test-secret", "tradepost-test", accessTTL, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

// principalProbe records whether the request carried an authenticated principal.
func principalProbe(got *auth.Principal, called *bool) http.Handler {
	return http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		*called = true
		if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
			*got = principal
		}
	})
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	codec := newTestCodec(t, time.Minute)
	tokens, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	var principal auth.Principal
	var called bool
	handler := Authenticate(codec)(principalProbe(&principal, &called))

	req := httptest.NewRequest(http.MethodGet, "/api/product/p1", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("expected the next handler to run")
	}
	if principal.UserID != "user-123" {
		t.Fatalf("expected principal user-123, got %+v", principal)
	}
}

func TestAuthenticatePassesThroughUnauthenticated(t *testing.T) {
	codec := newTestCodec(t, time.Minute)
	expired := newTestCodec(t, -time.Minute)

	expiredTokens, err := expired.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	refreshUsedAsAccess, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer garbage"},
		{"expired token", "Bearer " + expiredTokens.AccessToken},
		{"refresh token as access", "Bearer " + refreshUsedAsAccess.RefreshToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var principal auth.Principal
			var called bool
			handler := Authenticate(codec)(principalProbe(&principal, &called))

			req := httptest.NewRequest(http.MethodGet, "/api/product/p1", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if !called {
				t.Fatal("expected the request to continue unauthenticated")
			}
			if principal.UserID != "" {
				t.Fatalf("expected no principal, got %+v", principal)
			}
		})
	}
}
