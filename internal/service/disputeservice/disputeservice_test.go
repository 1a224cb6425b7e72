package disputeservice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/pg"
)

var now = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type mocks struct {
	dispute  *MockDisputeRepo
	escrow   *MockEscrowRepo
	contract *MockContractRepo
	user     *MockUserRepo
	ledger   *MockLedger
	notifier *MockNotifier
	tx       *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		dispute:  NewMockDisputeRepo(ctrl),
		escrow:   NewMockEscrowRepo(ctrl),
		contract: NewMockContractRepo(ctrl),
		user:     NewMockUserRepo(ctrl),
		ledger:   NewMockLedger(ctrl),
		notifier: NewMockNotifier(ctrl),
		tx:       pg.NewMockTXManager(ctrl),
	}
	service := New(m.dispute, m.escrow, m.contract, m.user, m.ledger, m.notifier, m.tx)
	service.now = func() time.Time { return now }
	return service, m
}

func (m *mocks) passThrough() {
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func disputedEscrow() *domain.Escrow {
	disputedAt := now.Add(-time.Hour)
	return &domain.Escrow{
		ID:                 uuid.New(),
		ContractID:         uuid.New(),
		ClientID:           uuid.New(),
		ProviderID:         uuid.New(),
		GrossAmount:        decimal.RequireFromString("1000.00"),
		GatewayFee:         decimal.RequireFromString("23.60"),
		PlatformFee:        decimal.RequireFromString("100.00"),
		AmountAfterGateway: decimal.RequireFromString("976.40"),
		ProviderPayout:     decimal.RequireFromString("876.40"),
		PlatformEarnings:   decimal.RequireFromString("100.00"),
		Status:             domain.EscrowDisputed,
		PaymentStatus:      domain.PaymentCaptured,
		DisputedAt:         &disputedAt,
	}
}

func openDispute(e *domain.Escrow) *domain.Dispute {
	escrowID := e.ID
	return &domain.Dispute{
		ID:          uuid.New(),
		ContractID:  e.ContractID,
		EscrowID:    &escrowID,
		RaisedBy:    e.ClientID,
		AgainstUser: e.ProviderID,
		Reason:      domain.ReasonQualityIssue,
		Status:      domain.DisputeOpen,
	}
}

type credit struct {
	account uuid.UUID
	amount  string
}

func TestService_Resolve(t *testing.T) {
	adminID := uuid.New()

	tests := []struct {
		name           string
		outcome        domain.DisputeStatus
		split          *domain.Split
		credits        func(e *domain.Escrow) []credit
		contractStatus domain.ContractStatus
		escrowStatus   domain.EscrowStatus
	}{
		{
			name:           "Client wins and is credited amount after gateway, not gross",
			outcome:        domain.DisputeResolvedClient,
			credits:        func(e *domain.Escrow) []credit { return []credit{{e.ClientID, "976.40"}} },
			contractStatus: domain.ContractCancelled,
			escrowStatus:   domain.EscrowRefunded,
		},
		{
			name:           "Influencer wins and is credited provider payout",
			outcome:        domain.DisputeResolvedInfluencer,
			credits:        func(e *domain.Escrow) []credit { return []credit{{e.ProviderID, "876.40"}} },
			contractStatus: domain.ContractCompleted,
			escrowStatus:   domain.EscrowPaidOut,
		},
		{
			name:    "Split 40/60",
			outcome: domain.DisputeResolvedSplit,
			split: &domain.Split{
				ClientPercent:     decimal.NewFromInt(40),
				InfluencerPercent: decimal.NewFromInt(60),
			},
			credits: func(e *domain.Escrow) []credit {
				return []credit{{e.ClientID, "400.00"}, {e.ProviderID, "525.84"}}
			},
			contractStatus: domain.ContractCancelled,
			escrowStatus:   domain.EscrowPaidOut,
		},
		{
			name:         "Closed moves nothing",
			outcome:      domain.DisputeClosed,
			credits:      func(*domain.Escrow) []credit { return nil },
			escrowStatus: domain.EscrowDisputed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			e := disputedEscrow()
			d := openDispute(e)

			m.user.EXPECT().IsAdmin(gomock.Any(), adminID).Return(true, nil)
			m.passThrough()
			m.dispute.EXPECT().GetForUpdate(gomock.Any(), d.ID).Return(d, nil)
			m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)
			m.escrow.EXPECT().Update(gomock.Any(), e).Return(nil)

			var got []credit
			m.ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, mv domain.Movement) (*domain.LedgerEntry, error) {
					assert.Equal(t, domain.KindWallet, mv.Kind)
					assert.Equal(t, e.ID.String(), mv.Resource.ID)
					got = append(got, credit{mv.AccountID, mv.Amount.StringFixed(2)})
					return &domain.LedgerEntry{}, nil
				}).Times(len(tt.credits(e)))
			if tt.contractStatus != "" {
				m.contract.EXPECT().UpdateStatus(gomock.Any(), e.ContractID, tt.contractStatus, now).Return(nil)
			}
			m.dispute.EXPECT().Update(gomock.Any(), d).Return(nil)
			m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(2)

			resolved, err := service.Resolve(context.Background(), domain.Resolution{
				DisputeID: d.ID,
				AdminID:   adminID,
				Outcome:   tt.outcome,
				Split:     tt.split,
				Note:      "reviewed",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, resolved.Status)
			assert.Equal(t, adminID, *resolved.ResolvedBy)
			assert.Equal(t, now, *resolved.ResolvedAt)
			assert.Equal(t, tt.credits(e), got)
			assert.Equal(t, tt.escrowStatus, e.Status)
			if tt.outcome == domain.DisputeClosed {
				assert.True(t, e.IsTerminal())
				assert.Equal(t, now, *e.ClosedAt)
			}
		})
	}
}

func TestService_ResolveRejections(t *testing.T) {
	adminID := uuid.New()

	t.Run("Non admin", func(t *testing.T) {
		service, m := NewMock(t)
		userID := uuid.New()
		m.user.EXPECT().IsAdmin(gomock.Any(), userID).Return(false, nil)

		_, err := service.Resolve(context.Background(), domain.Resolution{
			DisputeID: uuid.New(), AdminID: userID, Outcome: domain.DisputeClosed,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Split without percentages", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Resolve(context.Background(), domain.Resolution{
			DisputeID: uuid.New(), AdminID: adminID, Outcome: domain.DisputeResolvedSplit,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Split not adding up", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Resolve(context.Background(), domain.Resolution{
			DisputeID: uuid.New(), AdminID: adminID, Outcome: domain.DisputeResolvedSplit,
			Split: &domain.Split{ClientPercent: decimal.NewFromInt(50), InfluencerPercent: decimal.NewFromInt(60)},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Review is not an outcome", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.Resolve(context.Background(), domain.Resolution{
			DisputeID: uuid.New(), AdminID: adminID, Outcome: domain.DisputeUnderReview,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Already resolved", func(t *testing.T) {
		service, m := NewMock(t)
		e := disputedEscrow()
		d := openDispute(e)
		d.Status = domain.DisputeResolvedClient
		m.user.EXPECT().IsAdmin(gomock.Any(), adminID).Return(true, nil)
		m.passThrough()
		m.dispute.EXPECT().GetForUpdate(gomock.Any(), d.ID).Return(d, nil)

		_, err := service.Resolve(context.Background(), domain.Resolution{
			DisputeID: d.ID, AdminID: adminID, Outcome: domain.DisputeResolvedInfluencer,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("Escrow already settled", func(t *testing.T) {
		service, m := NewMock(t)
		e := disputedEscrow()
		e.Status = domain.EscrowPaidOut
		d := openDispute(e)
		m.user.EXPECT().IsAdmin(gomock.Any(), adminID).Return(true, nil)
		m.passThrough()
		m.dispute.EXPECT().GetForUpdate(gomock.Any(), d.ID).Return(d, nil)
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)

		_, err := service.Resolve(context.Background(), domain.Resolution{
			DisputeID: d.ID, AdminID: adminID, Outcome: domain.DisputeResolvedClient,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("Missing dispute", func(t *testing.T) {
		service, m := NewMock(t)
		id := uuid.New()
		m.user.EXPECT().IsAdmin(gomock.Any(), adminID).Return(true, nil)
		m.passThrough()
		m.dispute.EXPECT().GetForUpdate(gomock.Any(), id).Return(nil, nil)

		_, err := service.Resolve(context.Background(), domain.Resolution{
			DisputeID: id, AdminID: adminID, Outcome: domain.DisputeClosed,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_ResolveWithoutEscrow(t *testing.T) {
	service, m := NewMock(t)
	adminID := uuid.New()
	d := &domain.Dispute{
		ID: uuid.New(), ContractID: uuid.New(), RaisedBy: uuid.New(), AgainstUser: uuid.New(), Status: domain.DisputeUnderReview,
	}

	m.user.EXPECT().IsAdmin(gomock.Any(), adminID).Return(true, nil)
	m.passThrough()
	m.dispute.EXPECT().GetForUpdate(gomock.Any(), d.ID).Return(d, nil)
	m.contract.EXPECT().UpdateStatus(gomock.Any(), d.ContractID, domain.ContractCompleted, now).Return(nil)
	m.dispute.EXPECT().Update(gomock.Any(), d).Return(nil)
	m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(2)

	resolved, err := service.Resolve(context.Background(), domain.Resolution{
		DisputeID: d.ID, AdminID: adminID, Outcome: domain.DisputeResolvedInfluencer,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeResolvedInfluencer, resolved.Status)
}

func TestService_StartReview(t *testing.T) {
	adminID := uuid.New()

	tests := []struct {
		name      string
		status    domain.DisputeStatus
		expectErr error
	}{
		{name: "Open dispute goes under review", status: domain.DisputeOpen},
		{name: "Already under review", status: domain.DisputeUnderReview, expectErr: domain.ErrInvalidStateTransition},
		{name: "Closed dispute", status: domain.DisputeClosed, expectErr: domain.ErrInvalidStateTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			d := &domain.Dispute{ID: uuid.New(), Status: tt.status}
			m.user.EXPECT().IsAdmin(gomock.Any(), adminID).Return(true, nil)
			m.passThrough()
			m.dispute.EXPECT().GetForUpdate(gomock.Any(), d.ID).Return(d, nil)
			if tt.expectErr == nil {
				m.dispute.EXPECT().Update(gomock.Any(), d).Return(nil)
			}

			got, err := service.StartReview(context.Background(), adminID, d.ID)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.DisputeUnderReview, got.Status)
		})
	}
}

func TestService_AddEvidence(t *testing.T) {
	raisedBy, against := uuid.New(), uuid.New()
	dispute := func(status domain.DisputeStatus) *domain.Dispute {
		return &domain.Dispute{ID: uuid.New(), RaisedBy: raisedBy, AgainstUser: against, Status: status}
	}

	tests := []struct {
		name      string
		caller    uuid.UUID
		status    domain.DisputeStatus
		url       string
		expectErr error
	}{
		{name: "Party adds evidence", caller: against, status: domain.DisputeOpen, url: "https://cdn.example.com/proof.png"},
		{name: "Stranger", caller: uuid.New(), status: domain.DisputeOpen, url: "https://cdn.example.com/a.png", expectErr: domain.ErrNotFound},
		{name: "Resolved dispute", caller: raisedBy, status: domain.DisputeClosed, url: "https://cdn.example.com/a.png", expectErr: domain.ErrInvalidStateTransition},
		{name: "Relative url", caller: raisedBy, status: domain.DisputeOpen, url: "proof.png", expectErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			d := dispute(tt.status)
			if tt.expectErr != domain.ErrValidation {
				m.dispute.EXPECT().Get(gomock.Any(), d.ID).Return(d, nil)
			}
			if tt.expectErr == nil {
				m.dispute.EXPECT().AddEvidence(gomock.Any(), gomock.Any()).Return(nil)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(func(_ context.Context, n domain.Notification) {
					assert.Equal(t, raisedBy, n.UserID)
				})
			}

			ev, err := service.AddEvidence(context.Background(), tt.caller, d.ID, EvidenceRequest{URL: tt.url, Note: "screenshot"})
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.caller, ev.SubmittedBy)
			assert.Equal(t, d.ID, ev.DisputeID)
		})
	}
}

func TestService_GetDispute(t *testing.T) {
	raisedBy, adminID, stranger := uuid.New(), uuid.New(), uuid.New()
	d := &domain.Dispute{ID: uuid.New(), RaisedBy: raisedBy, AgainstUser: uuid.New(), Status: domain.DisputeOpen}
	evidence := []domain.Evidence{{ID: uuid.New(), DisputeID: d.ID, URL: "https://x.example/1"}}

	t.Run("Party sees evidence", func(t *testing.T) {
		service, m := NewMock(t)
		m.dispute.EXPECT().Get(gomock.Any(), d.ID).Return(d, nil)
		m.dispute.EXPECT().ListEvidence(gomock.Any(), d.ID).Return(evidence, nil)

		got, err := service.GetDispute(context.Background(), raisedBy, d.ID)
		require.NoError(t, err)
		assert.Equal(t, evidence, got.Evidence)
	})

	t.Run("Admin sees any dispute", func(t *testing.T) {
		service, m := NewMock(t)
		m.dispute.EXPECT().Get(gomock.Any(), d.ID).Return(d, nil)
		m.user.EXPECT().IsAdmin(gomock.Any(), adminID).Return(true, nil)
		m.dispute.EXPECT().ListEvidence(gomock.Any(), d.ID).Return(nil, nil)

		_, err := service.GetDispute(context.Background(), adminID, d.ID)
		assert.NoError(t, err)
	})

	t.Run("Stranger gets not found", func(t *testing.T) {
		service, m := NewMock(t)
		m.dispute.EXPECT().Get(gomock.Any(), d.ID).Return(d, nil)
		m.user.EXPECT().IsAdmin(gomock.Any(), stranger).Return(false, nil)

		_, err := service.GetDispute(context.Background(), stranger, d.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_ListDisputes(t *testing.T) {
	contract := &domain.Contract{ID: uuid.New(), ClientID: uuid.New(), ProviderID: uuid.New()}

	t.Run("Party lists", func(t *testing.T) {
		service, m := NewMock(t)
		m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(contract, nil)
		m.dispute.EXPECT().ListByContract(gomock.Any(), contract.ID).Return([]domain.Dispute{{ID: uuid.New()}}, nil)

		got, err := service.ListDisputes(context.Background(), contract.ProviderID, contract.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("Stranger", func(t *testing.T) {
		service, m := NewMock(t)
		stranger := uuid.New()
		m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(contract, nil)
		m.user.EXPECT().IsAdmin(gomock.Any(), stranger).Return(false, nil)

		_, err := service.ListDisputes(context.Background(), stranger, contract.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
