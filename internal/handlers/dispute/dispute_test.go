package dispute

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/dto"
	"github.com/GlebRadaev/influmarket/internal/service/disputeservice"
	"github.com/GlebRadaev/influmarket/pkg/auth"
)

var (
	adminID    = uuid.MustParse("99999999-9999-9999-9999-999999999999")
	clientID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	providerID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	contractID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	disputeID  = uuid.MustParse("55555555-5555-5555-5555-555555555555")
)

func NewMock(t *testing.T) (*DisputeHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func newRequest(method, target, body string, userID uuid.UUID, id string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(r.Context(), auth.UserIDKey, userID)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return r.WithContext(ctx)
}

func resolved(status domain.DisputeStatus) *domain.Dispute {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Dispute{
		ID:                disputeID,
		ContractID:        contractID,
		RaisedBy:          clientID,
		AgainstUser:       providerID,
		Reason:            domain.ReasonQualityIssue,
		Status:            status,
		ClientPercent:     decimal.NewFromInt(40),
		InfluencerPercent: decimal.NewFromInt(60),
		ResolvedBy:        &adminID,
		ResolvedAt:        &at,
	}
}

func TestResolve(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Split",
			body: `{"outcome":"RESOLVED_SPLIT","resolution":"partial delivery","client_percent":"40","influencer_percent":"60"}`,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r domain.Resolution) (*domain.Dispute, error) {
						assert.Equal(t, disputeID, r.DisputeID)
						assert.Equal(t, adminID, r.AdminID)
						assert.Equal(t, domain.DisputeResolvedSplit, r.Outcome)
						require.NotNil(t, r.Split)
						assert.True(t, r.Split.ClientPercent.Equal(decimal.NewFromInt(40)))
						assert.True(t, r.Split.InfluencerPercent.Equal(decimal.NewFromInt(60)))
						return resolved(domain.DisputeResolvedSplit), nil
					})
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Influencer wins",
			body: `{"outcome":"RESOLVED_INFLUENCER","resolution":"delivered as agreed"}`,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), domain.Resolution{
					DisputeID: disputeID,
					AdminID:   adminID,
					Outcome:   domain.DisputeResolvedInfluencer,
					Note:      "delivered as agreed",
				}).Return(resolved(domain.DisputeResolvedInfluencer), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Half a split",
			body:         `{"outcome":"RESOLVED_SPLIT","client_percent":"40"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Percent is not a number",
			body:         `{"outcome":"RESOLVED_SPLIT","client_percent":"forty","influencer_percent":"60"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Not an admin",
			body: `{"outcome":"CLOSED"}`,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(nil, domain.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "Already resolved",
			body: `{"outcome":"CLOSED"}`,
			prepareMock: func() {
				service.EXPECT().Resolve(gomock.Any(), gomock.Any()).
					Return(nil, &domain.StateError{Entity: "dispute", Current: "RESOLVED_CLIENT"})
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.Resolve(w, newRequest(http.MethodPost, "/", tt.body, adminID, disputeID.String()))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestResolve_SplitPercentsInResponse(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(resolved(domain.DisputeResolvedSplit), nil)

	w := httptest.NewRecorder()
	handler.Resolve(w, newRequest(http.MethodPost, "/",
		`{"outcome":"RESOLVED_SPLIT","client_percent":"40","influencer_percent":"60"}`, adminID, disputeID.String()))
	require.Equal(t, http.StatusOK, w.Code)

	var body dto.DisputeResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "40", body.ClientPercent)
	assert.Equal(t, "60", body.InfluencerPercent)
	require.NotNil(t, body.ResolvedBy)
	assert.Equal(t, adminID.String(), *body.ResolvedBy)
}

func TestStartReview(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().StartReview(gomock.Any(), adminID, disputeID).Return(resolved(domain.DisputeUnderReview), nil)

	w := httptest.NewRecorder()
	handler.StartReview(w, newRequest(http.MethodPost, "/", "", adminID, disputeID.String()))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddEvidence(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Attached",
			body: `{"url":"https://cdn.example.com/a.png","note":"post screenshot"}`,
			prepareMock: func() {
				service.EXPECT().AddEvidence(gomock.Any(), clientID, disputeID, disputeservice.EvidenceRequest{
					URL:  "https://cdn.example.com/a.png",
					Note: "post screenshot",
				}).Return(&domain.Evidence{
					ID:          uuid.New(),
					DisputeID:   disputeID,
					SubmittedBy: clientID,
					URL:         "https://cdn.example.com/a.png",
				}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Relative url",
			body: `{"url":"/a.png"}`,
			prepareMock: func() {
				service.EXPECT().AddEvidence(gomock.Any(), clientID, disputeID, gomock.Any()).
					Return(nil, domain.Validationf("evidence url must be an absolute http(s) url"))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Outsider",
			body: `{"url":"https://cdn.example.com/a.png"}`,
			prepareMock: func() {
				service.EXPECT().AddEvidence(gomock.Any(), clientID, disputeID, gomock.Any()).
					Return(nil, domain.NotFoundf("dispute %s", disputeID))
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.AddEvidence(w, newRequest(http.MethodPost, "/", tt.body, clientID, disputeID.String()))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGetAndListDisputes(t *testing.T) {
	handler, service := NewMock(t)

	d := resolved(domain.DisputeOpen)
	d.Evidence = []domain.Evidence{{ID: uuid.New(), SubmittedBy: providerID, URL: "https://x.example/p"}}
	service.EXPECT().GetDispute(gomock.Any(), providerID, disputeID).Return(d, nil)
	service.EXPECT().ListDisputes(gomock.Any(), providerID, contractID).Return([]domain.Dispute{*d}, nil)

	w := httptest.NewRecorder()
	handler.GetDispute(w, newRequest(http.MethodGet, "/", "", providerID, disputeID.String()))
	require.Equal(t, http.StatusOK, w.Code)
	var one dto.DisputeResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&one))
	assert.Len(t, one.Evidence, 1)
	assert.Empty(t, one.ClientPercent)

	w = httptest.NewRecorder()
	handler.ListDisputes(w, newRequest(http.MethodGet, "/api/disputes?contract_id="+contractID.String(), "", providerID, ""))
	require.Equal(t, http.StatusOK, w.Code)
	var many []dto.DisputeResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&many))
	assert.Len(t, many, 1)

	w = httptest.NewRecorder()
	handler.ListDisputes(w, newRequest(http.MethodGet, "/api/disputes", "", providerID, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
