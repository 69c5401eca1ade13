package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tradepost/backend/internal/logging"
)

// Error codes surfaced in failure envelopes.
const (
	codeValidationFailed     = "VALIDATION_FAILED"
	codeEmailNotFound        = "EMAIL_NOT_FOUND"
	codeEmailDuplicate       = "EMAIL_DUPLICATE"
	codePasswordMismatch     = "PASSWORD_MISMATCH"
	codeUnauthorized         = "UNAUTHORIZED"
	codeNotFound             = "NOT_FOUND"
	codeUploadFailed         = "FILE_UPLOAD_FAIL"
	codeUnsupportedExtension = "FILE_EXTENSION_NOT_SUPPORT"
	codeRateLimited          = "RATE_LIMITED"
	codeInternal             = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success  bool       `json:"success"`
	Response any        `json:"response,omitempty"`
	Error    *errorBody `json:"error,omitempty"`
}

// respondSuccess wraps the payload in the uniform success envelope.
func respondSuccess(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	writeEnvelope(ctx, w, status, envelope{Success: true, Response: payload})
}

// respondError wraps an error code and message in the uniform failure envelope.
func respondError(ctx context.Context, w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(ctx, w, status, envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	logger := logging.FromContext(ctx)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encode response body", "status", status, "error", err)
		return
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "error", body.Error)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "error", body.Error)
	}
}
