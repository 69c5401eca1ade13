package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/backend/internal/models"
	"github.com/tradepost/backend/internal/repositories"
)

var (
	// ErrEmailNotFound indicates no identity exists for the supplied email.
	ErrEmailNotFound = errors.New("email not registered")
	// ErrPasswordMismatch indicates the supplied password does not match the stored hash.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrEmailTaken indicates the email is already bound to an identity.
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore captures the persistence operations the verifier needs.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// Registration carries the validated sign-up fields for a new identity.
type Registration struct {
	Email       string
	Password    string
	Name        string
	PhoneNumber string
	Nickname    string
}

// Verifier checks credentials against stored identities and registers new ones.
type Verifier struct {
	users UserStore

	NowFunc func() time.Time
}

// NewVerifier constructs a Verifier backed by the provided user store.
func NewVerifier(users UserStore) *Verifier {
	if users == nil {
		panic("auth: user store must not be nil")
	}
	return &Verifier{users: users}
}

// Verify looks up the identity by email and compares the supplied password
// against the stored bcrypt hash. Read-only.
func (v *Verifier) Verify(ctx context.Context, email, password string) (models.User, error) {
	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, ErrEmailNotFound
		}
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, ErrPasswordMismatch
	}

	return user, nil
}

// Register hashes the password and persists a new identity. The uniqueness
// pre-check is advisory; the unique index on the email column is what actually
// settles concurrent sign-ups, so a store conflict also maps to ErrEmailTaken.
func (v *Verifier) Register(ctx context.Context, reg Registration) (models.User, error) {
	if _, err := v.users.FindByEmail(ctx, reg.Email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, fmt.Errorf("check existing email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := v.now()
	user := models.User{
		ID:          uuid.NewString(),
		Email:       reg.Email,
		Password:    string(hashed),
		Name:        reg.Name,
		PhoneNumber: reg.PhoneNumber,
		Nickname:    reg.Nickname,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := v.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (v *Verifier) now() time.Time {
	if v.NowFunc != nil {
		return v.NowFunc()
	}
	return time.Now().UTC()
}
