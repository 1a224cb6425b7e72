package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.Validationf("amount must be positive"), http.StatusBadRequest},
		{"not found", domain.NotFoundf("escrow %s", "x"), http.StatusNotFound},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"state", &domain.StateError{Entity: "escrow", Current: "PAID_OUT"}, http.StatusConflict},
		{"already exists", fmt.Errorf("dispute: %w", domain.ErrAlreadyExists), http.StatusConflict},
		{"insufficient", domain.ErrInsufficientBalance, http.StatusPaymentRequired},
		{"signature", domain.ErrSignatureVerificationFailed, http.StatusUnprocessableEntity},
		{"upstream", fmt.Errorf("create order: %w", domain.ErrUpstreamGateway), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRespondWithServiceError(t *testing.T) {
	t.Run("mapped error keeps its message", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondWithServiceError(w, domain.ErrInsufficientBalance)

		assert.Equal(t, http.StatusPaymentRequired, w.Code)
		var body Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "insufficient balance", body.Error)
	})

	t.Run("internal error is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondWithServiceError(w, errors.New("pq: connection reset"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "Internal server error", body.Error)
	})
}
