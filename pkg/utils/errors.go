package utils

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

var statusByError = []struct {
	target error
	code   int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrInvalidStateTransition, http.StatusConflict},
	{domain.ErrAlreadyExists, http.StatusConflict},
	{domain.ErrConcurrencyConflict, http.StatusConflict},
	{domain.ErrInsufficientBalance, http.StatusPaymentRequired},
	{domain.ErrSignatureVerificationFailed, http.StatusUnprocessableEntity},
	{domain.ErrUpstreamGateway, http.StatusBadGateway},
}

// StatusFor maps a service error to the HTTP status reported to callers.
func StatusFor(err error) int {
	for _, s := range statusByError {
		if errors.Is(err, s.target) {
			return s.code
		}
	}
	return http.StatusInternalServerError
}

// RespondWithServiceError writes err with its mapped status. Unmapped errors
// are logged and hidden behind a generic message.
func RespondWithServiceError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
		RespondWithError(w, code, "Internal server error")
		return
	}
	RespondWithError(w, code, err.Error())
}
