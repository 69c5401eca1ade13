package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tradepost/backend/internal/models"
)

var (
	// ErrTokenExpired indicates the token was well formed but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed indicates the token failed signature or structural checks.
	ErrTokenMalformed = errors.New("token malformed")
)

// Token use values carried in the token_use claim. An access token can not be
// replayed as a refresh token and vice versa.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims is the validated content of a session token.
type Claims struct {
	UserID    string
	TokenUse  string
	ExpiresAt time.Time
}

type sessionClaims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// Codec issues and validates self-contained signed session tokens. It is
// stateless apart from the signing secret: expiry is the only termination
// mechanism, there is no server-side revocation list.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

// NewCodec constructs a Codec signing HMAC-SHA256 tokens with the provided
// secret and lifetimes.
func NewCodec(secret, issuer string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	if issuer == "" {
		return nil, errors.New("auth: issuer must not be empty")
	}
	return &Codec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue creates a new pair of access and refresh tokens bound to the user.
func (c *Codec) Issue(userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("auth: user id must be provided")
	}

	now := c.now()

	access, accessExp, err := c.sign(userID, TokenUseAccess, now, c.accessTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refresh, refreshExp, err := c.sign(userID, TokenUseRefresh, now, c.refreshTTL)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Validate verifies the token's signature and expiry and returns its claims.
func (c *Codec) Validate(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" || claims.ExpiresAt == nil {
		return Claims{}, ErrTokenMalformed
	}

	return Claims{
		UserID:    claims.Subject,
		TokenUse:  claims.TokenUse,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate validates an access token and constructs the request-scoped
// principal used by downstream authorization checks.
func (c *Codec) Authenticate(token string) (Principal, error) {
	claims, err := c.Validate(token)
	if err != nil {
		return Principal{}, err
	}
	if claims.TokenUse != TokenUseAccess {
		return Principal{}, ErrTokenMalformed
	}
	return Principal{UserID: claims.UserID}, nil
}

// Refresh exchanges a live refresh token for a new session token pair.
func (c *Codec) Refresh(refreshToken string) (models.SessionTokens, error) {
	claims, err := c.Validate(refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if claims.TokenUse != TokenUseRefresh {
		return models.SessionTokens{}, ErrTokenMalformed
	}
	return c.Issue(claims.UserID)
}

func (c *Codec) sign(userID, use string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
