package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/pkg/auth"
)

func TestList(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name         string
		result       []domain.Notification
		err          error
		expectedCode int
	}{
		{
			name: "Some",
			result: []domain.Notification{{
				ID:     uuid.New(),
				UserID: userID,
				Title:  "Payment released",
				Type:   domain.NotifyPayment,
			}},
			expectedCode: http.StatusOK,
		},
		{
			name:         "None",
			expectedCode: http.StatusNoContent,
		},
		{
			name:         "Store failure",
			err:          assert.AnError,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			service.EXPECT().ListByUser(gomock.Any(), userID, pageSize).Return(tt.result, tt.err)

			r := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
			r = r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, userID))
			w := httptest.NewRecorder()
			New(service).List(w, r)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body []domain.Notification
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "Payment released", body[0].Title)
			}
		})
	}
}
