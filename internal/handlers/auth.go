package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tradepost/backend/internal/auth"
	"github.com/tradepost/backend/internal/logging"
)

// AuthHandler implements the sign-up, login, and refresh endpoints.
type AuthHandler struct {
	Credentials CredentialVerifier
	Tokens      TokenIssuer
	Limiter     RateLimiter
}

// SignUp handles POST /api/sign-up requests.
func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Credentials == nil {
		logger.Error("credential verifier unavailable")
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "authentication services unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "sign-up") {
		respondError(ctx, w, http.StatusTooManyRequests, codeRateLimited, "too many sign-up attempts")
		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid sign-up payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	for _, check := range []error{
		validateEmail(req.Email),
		validatePassword(req.Password),
		validateName(req.Name),
		validatePhoneNumber(req.PhoneNumber),
		validateNickname(req.Nickname),
	} {
		if check != nil {
			logger.Warn("sign-up validation failed", "email", req.Email, "reason", check.Error())
			respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, check.Error())
			return
		}
	}

	user, err := h.Credentials.Register(ctx, auth.Registration{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Nickname:    req.Nickname,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			logger.Warn("sign-up existing account", "email", req.Email)
			respondError(ctx, w, http.StatusConflict, codeEmailDuplicate, "email is already registered")
			return
		}
		logger.Error("sign-up failed to register user", "error", err, "email", req.Email)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "failed to create account")
		return
	}

	respondSuccess(ctx, w, http.StatusOK, signUpResponse{UserID: user.ID})
}

// Login handles POST /api/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Credentials == nil || h.Tokens == nil {
		logger.Error("authentication dependencies unavailable", "hasCredentials", h.Credentials != nil, "hasTokens", h.Tokens != nil)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "authentication services unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, codeRateLimited, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		logger.Warn("login missing credentials", "email", req.Email)
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "email and password are required")
		return
	}

	user, err := h.Credentials.Verify(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailNotFound):
			logger.Warn("login unknown email", "email", req.Email)
			respondError(ctx, w, http.StatusNotFound, codeEmailNotFound, "no account exists for that email")
		case errors.Is(err, auth.ErrPasswordMismatch):
			logger.Warn("login password mismatch", "email", req.Email)
			respondError(ctx, w, http.StatusUnauthorized, codePasswordMismatch, "password does not match")
		default:
			logger.Error("login verification failed", "error", err, "email", req.Email)
			respondError(ctx, w, http.StatusInternalServerError, codeInternal, "unable to verify credentials")
		}
		return
	}

	tokens, err := h.Tokens.Issue(user.ID)
	if err != nil {
		logger.Error("failed to issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "failed to create session")
		return
	}

	respondSuccess(ctx, w, http.StatusOK, tokens)
}

// Refresh handles POST /api/refresh requests, exchanging a live refresh token
// for a new pair.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Tokens == nil {
		logger.Error("token issuer unavailable")
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "session service unavailable")
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "refresh token is required")
		return
	}

	tokens, err := h.Tokens.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrTokenMalformed) {
			logger.Warn("refresh rejected", "error", err)
			respondError(ctx, w, http.StatusUnauthorized, codeUnauthorized, "refresh token is not valid")
			return
		}
		logger.Error("refresh failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "unable to refresh session")
		return
	}

	respondSuccess(ctx, w, http.StatusOK, tokens)
}

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Nickname    string `json:"nickname"`
}

type signUpResponse struct {
	UserID string `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
