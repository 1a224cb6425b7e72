package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/influmarket/internal/service"
	"github.com/GlebRadaev/influmarket/pkg/auth"
)

func TestNew(t *testing.T) {
	h := New(&service.Services{}, auth.NewJWTService("secret"))
	assert.NotNil(t, h, "Handlers should not be nil")
	assert.NotNil(t, h.EscrowHandler)
	assert.NotNil(t, h.WalletHandler)
	assert.NotNil(t, h.PaymentHandler)
	assert.NotNil(t, h.DisputeHandler)
	assert.NotNil(t, h.NotificationHandler)
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)

	escrow := NewMockEscrowHandler(ctrl)
	wallet := NewMockWalletHandler(ctrl)
	payment := NewMockPaymentHandler(ctrl)
	dispute := NewMockDisputeHandler(ctrl)
	notification := NewMockNotificationHandler(ctrl)

	escrow.EXPECT().Quote(gomock.Any(), gomock.Any()).AnyTimes()
	escrow.EXPECT().Approve(gomock.Any(), gomock.Any()).AnyTimes()
	wallet.EXPECT().GetBalance(gomock.Any(), gomock.Any()).AnyTimes()
	wallet.EXPECT().ConsumeCredit(gomock.Any(), gomock.Any()).AnyTimes()
	payment.EXPECT().Webhook(gomock.Any(), gomock.Any()).AnyTimes()
	dispute.EXPECT().Resolve(gomock.Any(), gomock.Any()).AnyTimes()
	notification.EXPECT().List(gomock.Any(), gomock.Any()).AnyTimes()

	jwtService := auth.NewJWTService("secret")
	h := &Handlers{
		EscrowHandler:       escrow,
		WalletHandler:       wallet,
		PaymentHandler:      payment,
		DisputeHandler:      dispute,
		NotificationHandler: notification,
		jwtService:          jwtService,
	}

	router := chi.NewRouter()
	h.InitRoutes(router)

	token, err := jwtService.GenerateJWT(uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	escrowPath := "/api/escrows/" + uuid.NewString()

	tests := []struct {
		method string
		url    string
		token  string
		status int
	}{
		{"POST", "/api/payments/webhook", "", http.StatusOK},
		{"GET", "/api/escrows/quote", "", http.StatusUnauthorized},
		{"GET", "/api/escrows/quote", token, http.StatusOK},
		{"POST", escrowPath + "/approve", "", http.StatusUnauthorized},
		{"POST", escrowPath + "/approve", token, http.StatusOK},
		{"POST", escrowPath + "/refund", "garbage", http.StatusUnauthorized},
		{"GET", "/api/wallet", token, http.StatusOK},
		{"POST", "/api/wallet/credits/consume", token, http.StatusOK},
		{"POST", "/api/payments/verify", "", http.StatusUnauthorized},
		{"POST", "/api/disputes/" + uuid.NewString() + "/resolve", token, http.StatusOK},
		{"GET", "/api/notifications", token, http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, strings.NewReader("{}"))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
