package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *Codec {
	t.Helper()
	codec, err := NewCodec("test-secret", "tradepost-test", accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestCodecIssueAndValidate(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	tokens, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens to be issued, got %+v", tokens)
	}
	if !tokens.RefreshExpiresAt.After(tokens.AccessExpiresAt) {
		t.Fatalf("expected refresh token to outlive access token: %+v", tokens)
	}

	claims, err := codec.Validate(tokens.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("expected user-123 subject, got %q", claims.UserID)
	}
	if claims.TokenUse != TokenUseAccess {
		t.Fatalf("expected access token use, got %q", claims.TokenUse)
	}

	claims, err = codec.Validate(tokens.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if claims.TokenUse != TokenUseRefresh {
		t.Fatalf("expected refresh token use, got %q", claims.TokenUse)
	}
}

func TestCodecValidateExpired(t *testing.T) {
	codec := newTestCodec(t, -time.Minute, time.Hour)

	tokens, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	if _, err := codec.Validate(tokens.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestCodecValidateTampered(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	tokens, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	// Flip the first character of the signature segment.
	parts := strings.SplitN(tokens.AccessToken, ".", 3)
	if len(parts) != 3 {
		t.Fatalf("expected compact JWS, got %q", tokens.AccessToken)
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Validate(tampered); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for tampered token, got %v", err)
	}

	if _, err := codec.Validate("not-a-token"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for garbage, got %v", err)
	}
}

func TestCodecValidateWrongSecret(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)
	other, err := NewCodec("other-secret", "tradepost-test", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	tokens, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	if _, err := other.Validate(tokens.AccessToken); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed across secrets, got %v", err)
	}
}

func TestCodecAuthenticateRejectsRefreshToken(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	tokens, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	principal, err := codec.Authenticate(tokens.AccessToken)
	if err != nil {
		t.Fatalf("authenticate access token: %v", err)
	}
	if principal.UserID != "user-123" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := codec.Authenticate(tokens.RefreshToken); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected refresh token to be rejected as access credential, got %v", err)
	}
}

func TestCodecRefresh(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	tokens, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	renewed, err := codec.Refresh(tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if renewed.AccessToken == "" || renewed.RefreshToken == "" {
		t.Fatalf("expected a fresh pair, got %+v", renewed)
	}

	claims, err := codec.Validate(renewed.AccessToken)
	if err != nil {
		t.Fatalf("validate renewed access token: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("expected subject to carry over, got %q", claims.UserID)
	}

	if _, err := codec.Refresh(tokens.AccessToken); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected access token to be rejected as refresh credential, got %v", err)
	}
}

func TestNewCodecRejectsEmptyConfig(t *testing.T) {
	if _, err := NewCodec("", "issuer", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewCodec("secret", "", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for empty issuer")
	}
}
