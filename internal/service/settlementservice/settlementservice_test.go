package settlementservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/fees"
	"github.com/GlebRadaev/influmarket/internal/pg"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type mocks struct {
	escrow   *MockEscrowRepo
	contract *MockContractRepo
	order    *MockOrderRepo
	revenue  *MockRevenueRepo
	dispute  *MockDisputeRepo
	ledger   *MockLedger
	gateway  *MockGateway
	verifier *MockVerifier
	notifier *MockNotifier
	tx       *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		escrow:   NewMockEscrowRepo(ctrl),
		contract: NewMockContractRepo(ctrl),
		order:    NewMockOrderRepo(ctrl),
		revenue:  NewMockRevenueRepo(ctrl),
		dispute:  NewMockDisputeRepo(ctrl),
		ledger:   NewMockLedger(ctrl),
		gateway:  NewMockGateway(ctrl),
		verifier: NewMockVerifier(ctrl),
		notifier: NewMockNotifier(ctrl),
		tx:       pg.NewMockTXManager(ctrl),
	}
	service := New(
		Repositories{Escrow: m.escrow, Contract: m.contract, Order: m.order, Revenue: m.revenue, Dispute: m.dispute},
		m.ledger, m.gateway, m.verifier, m.notifier, m.tx,
		Config{
			Fees: fees.Config{
				GatewayFeePercent:  decimal.RequireFromString("2.36"),
				PlatformFeePercent: decimal.RequireFromString("10"),
			},
			Currency: "INR",
			CreditPrices: map[domain.BalanceKind]decimal.Decimal{
				domain.KindBidCredit:  decimal.RequireFromString("10"),
				domain.KindPostCredit: decimal.RequireFromString("50"),
			},
		},
	)
	service.now = func() time.Time { return now }
	return service, m
}

func (m *mocks) passThrough() {
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	})
}

func (m *mocks) expectNotify(t *testing.T, userID uuid.UUID) {
	m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(func(_ context.Context, n domain.Notification) {
		assert.Equal(t, userID, n.UserID)
	})
}

// escrowIn returns the 1000.00 escrow of a 2.36% gateway and 10% platform fee.
func escrowIn(status domain.EscrowStatus) *domain.Escrow {
	return &domain.Escrow{
		ID:                 uuid.New(),
		ContractID:         uuid.New(),
		ClientID:           uuid.New(),
		ProviderID:         uuid.New(),
		GrossAmount:        decimal.RequireFromString("1000.00"),
		GatewayFeePercent:  decimal.RequireFromString("2.36"),
		GatewayFee:         decimal.RequireFromString("23.60"),
		PlatformFeePercent: decimal.RequireFromString("10"),
		PlatformFee:        decimal.RequireFromString("100.00"),
		AmountAfterGateway: decimal.RequireFromString("976.40"),
		ProviderPayout:     decimal.RequireFromString("876.40"),
		PlatformEarnings:   decimal.RequireFromString("100.00"),
		Currency:           "INR",
		Status:             status,
		PaymentStatus:      domain.PaymentCaptured,
		GatewayOrderID:     "order_1",
		Version:            2,
	}
}

func TestService_Quote(t *testing.T) {
	service, _ := NewMock(t)

	b, err := service.Quote(decimal.RequireFromString("1000"))
	require.NoError(t, err)
	assert.Equal(t, "23.60", b.GatewayFee.StringFixed(2))
	assert.Equal(t, "100.00", b.PlatformFee.StringFixed(2))
	assert.Equal(t, "876.40", b.ProviderPayout.StringFixed(2))

	_, err = service.Quote(decimal.RequireFromString("-5"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_CreateEscrow(t *testing.T) {
	clientID := uuid.New()
	contract := &domain.Contract{
		ID:          uuid.New(),
		ClientID:    clientID,
		ProviderID:  uuid.New(),
		AgreedPrice: decimal.RequireFromString("1000"),
		Status:      domain.ContractActive,
	}

	tests := []struct {
		name      string
		callerID  uuid.UUID
		mockSetup func(m *mocks)
		expectErr error
	}{
		{
			name:     "Escrow created with frozen fees",
			callerID: clientID,
			mockSetup: func(m *mocks) {
				m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(contract, nil)
				m.escrow.EXPECT().GetByContract(gomock.Any(), contract.ID).Return(nil, nil)
				m.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, amount decimal.Decimal, receipt string, notes map[string]string) (*domain.GatewayOrder, error) {
						assert.True(t, amount.Equal(decimal.RequireFromString("1000")))
						assert.LessOrEqual(t, len(receipt), 40)
						assert.Equal(t, contract.ID.String(), notes["contract_id"])
						return &domain.GatewayOrder{ID: "order_9", Amount: amount, Currency: "INR"}, nil
					})
				m.passThrough()
				m.escrow.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				m.order.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o *domain.PaymentOrder) error {
					assert.Equal(t, domain.IntentEscrowFunding, o.Intent.Type())
					assert.Equal(t, "order_9", o.GatewayOrderID)
					return nil
				})
			},
		},
		{
			name:     "Contract does not exist",
			callerID: clientID,
			mockSetup: func(m *mocks) {
				m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(nil, nil)
			},
			expectErr: domain.ErrNotFound,
		},
		{
			name:     "Caller is not the client",
			callerID: contract.ProviderID,
			mockSetup: func(m *mocks) {
				m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(contract, nil)
			},
			expectErr: domain.ErrNotFound,
		},
		{
			name:     "Contract no longer active",
			callerID: clientID,
			mockSetup: func(m *mocks) {
				cancelled := *contract
				cancelled.Status = domain.ContractCancelled
				m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(&cancelled, nil)
			},
			expectErr: domain.ErrInvalidStateTransition,
		},
		{
			name:     "Escrow already exists",
			callerID: clientID,
			mockSetup: func(m *mocks) {
				m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(contract, nil)
				m.escrow.EXPECT().GetByContract(gomock.Any(), contract.ID).Return(&domain.Escrow{}, nil)
			},
			expectErr: domain.ErrAlreadyExists,
		},
		{
			name:     "Gateway unavailable stores nothing",
			callerID: clientID,
			mockSetup: func(m *mocks) {
				m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(contract, nil)
				m.escrow.EXPECT().GetByContract(gomock.Any(), contract.ID).Return(nil, nil)
				m.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrUpstreamGateway)
			},
			expectErr: domain.ErrUpstreamGateway,
		},
		{
			name:     "Concurrent creation loses on unique contract",
			callerID: clientID,
			mockSetup: func(m *mocks) {
				m.contract.EXPECT().Get(gomock.Any(), contract.ID).Return(contract, nil)
				m.escrow.EXPECT().GetByContract(gomock.Any(), contract.ID).Return(nil, nil)
				m.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&domain.GatewayOrder{ID: "order_9"}, nil)
				m.passThrough()
				m.escrow.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrAlreadyExists)
			},
			expectErr: domain.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.mockSetup(m)

			escrow, err := service.CreateEscrow(context.Background(), tt.callerID, contract.ID)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, escrow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.EscrowCreated, escrow.Status)
			assert.Equal(t, domain.PaymentPending, escrow.PaymentStatus)
			assert.Equal(t, "23.60", escrow.GatewayFee.StringFixed(2))
			assert.Equal(t, "100.00", escrow.PlatformFee.StringFixed(2))
			assert.Equal(t, "976.40", escrow.AmountAfterGateway.StringFixed(2))
			assert.Equal(t, "876.40", escrow.ProviderPayout.StringFixed(2))
			assert.Equal(t, "order_9", escrow.GatewayOrderID)
			assert.Equal(t, contract.ProviderID, escrow.ProviderID)
		})
	}
}

func TestService_CapturePayment(t *testing.T) {
	capture := domain.Capture{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}

	t.Run("Invalid signature leaves escrow created", func(t *testing.T) {
		service, m := NewMock(t)
		m.verifier.EXPECT().VerifySignature("order_1", "pay_1", "sig").Return(false)

		res, err := service.CapturePayment(context.Background(), capture)
		assert.ErrorIs(t, err, domain.ErrSignatureVerificationFailed)
		assert.Nil(t, res)
	})

	t.Run("Missing fields", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.CapturePayment(context.Background(), domain.Capture{OrderID: "order_1"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Escrow funding holds funds and records revenue", func(t *testing.T) {
		service, m := NewMock(t)
		escrow := escrowIn(domain.EscrowCreated)
		escrow.PaymentStatus = domain.PaymentPending
		order := &domain.PaymentOrder{
			ID: uuid.New(), UserID: escrow.ClientID, Intent: domain.EscrowFunding{EscrowID: escrow.ID},
			Amount: escrow.GrossAmount, GatewayOrderID: "order_1", Status: domain.OrderCreated,
		}

		m.verifier.EXPECT().VerifySignature("order_1", "pay_1", "sig").Return(true)
		m.passThrough()
		m.order.EXPECT().LockByGatewayOrderID(gomock.Any(), "order_1").Return(order, nil)
		m.order.EXPECT().MarkCaptured(gomock.Any(), order).DoAndReturn(func(_ context.Context, o *domain.PaymentOrder) error {
			assert.Equal(t, "pay_1", *o.GatewayPaymentID)
			o.Status = domain.OrderCaptured
			return nil
		})
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), escrow.ID).Return(escrow, nil)
		m.escrow.EXPECT().Update(gomock.Any(), escrow).Return(nil)
		m.revenue.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *domain.PlatformRevenue) (bool, error) {
			assert.Equal(t, escrow.ID, r.EscrowID)
			assert.Equal(t, "pay_1", r.GatewayPaymentID)
			assert.Equal(t, "100.00", r.Amount.StringFixed(2))
			return true, nil
		})
		m.expectNotify(t, escrow.ProviderID)

		res, err := service.CapturePayment(context.Background(), capture)
		require.NoError(t, err)
		assert.False(t, res.Replayed)
		assert.Equal(t, domain.EscrowHeld, res.Escrow.Status)
		assert.Equal(t, domain.PaymentCaptured, res.Escrow.PaymentStatus)
		assert.Equal(t, now, *res.Escrow.PaymentCapturedAt)
		assert.Equal(t, "sig", *res.Escrow.GatewaySignature)
	})

	t.Run("Repeated capture is a no-op", func(t *testing.T) {
		service, m := NewMock(t)
		escrow := escrowIn(domain.EscrowHeld)
		paymentID := "pay_1"
		order := &domain.PaymentOrder{
			ID: uuid.New(), Intent: domain.EscrowFunding{EscrowID: escrow.ID},
			GatewayOrderID: "order_1", GatewayPaymentID: &paymentID, Status: domain.OrderCaptured,
		}

		m.verifier.EXPECT().VerifySignature("order_1", "pay_1", "sig").Return(true)
		m.passThrough()
		m.order.EXPECT().LockByGatewayOrderID(gomock.Any(), "order_1").Return(order, nil)
		m.escrow.EXPECT().Get(gomock.Any(), escrow.ID).Return(escrow, nil)

		res, err := service.CapturePayment(context.Background(), capture)
		require.NoError(t, err)
		assert.True(t, res.Replayed)
		assert.Equal(t, domain.EscrowHeld, res.Escrow.Status)
	})

	t.Run("Second payment for settled order is refunded", func(t *testing.T) {
		service, m := NewMock(t)
		other := "pay_0"
		order := &domain.PaymentOrder{
			ID: uuid.New(), Intent: domain.WalletTopUp{},
			GatewayOrderID: "order_1", GatewayPaymentID: &other, Status: domain.OrderCaptured,
		}

		m.verifier.EXPECT().VerifySignature("order_1", "pay_1", "sig").Return(true)
		m.passThrough()
		m.order.EXPECT().LockByGatewayOrderID(gomock.Any(), "order_1").Return(order, nil)
		m.gateway.EXPECT().InitiateRefund(gomock.Any(), "pay_1", nil).Return("rfnd_1", nil)

		res, err := service.CapturePayment(context.Background(), capture)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		assert.Nil(t, res)
	})

	t.Run("Wallet top-up credits the wallet", func(t *testing.T) {
		service, m := NewMock(t)
		userID := uuid.New()
		order := &domain.PaymentOrder{
			ID: uuid.New(), UserID: userID, Intent: domain.WalletTopUp{},
			Amount: decimal.RequireFromString("250.00"), Currency: "INR", GatewayOrderID: "order_1", Status: domain.OrderCreated,
		}

		m.verifier.EXPECT().VerifySignature("order_1", "pay_1", "sig").Return(true)
		m.passThrough()
		m.order.EXPECT().LockByGatewayOrderID(gomock.Any(), "order_1").Return(order, nil)
		m.order.EXPECT().MarkCaptured(gomock.Any(), order).Return(nil)
		m.ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, mv domain.Movement) (*domain.LedgerEntry, error) {
			assert.Equal(t, userID, mv.AccountID)
			assert.Equal(t, domain.KindWallet, mv.Kind)
			assert.Equal(t, "250.00", mv.Amount.StringFixed(2))
			assert.Equal(t, domain.ResourcePaymentOrder, mv.Resource.Type)
			return &domain.LedgerEntry{}, nil
		})
		m.expectNotify(t, userID)

		res, err := service.CapturePayment(context.Background(), capture)
		require.NoError(t, err)
		assert.Nil(t, res.Escrow)
		assert.Equal(t, domain.WalletTopUp{}, res.Order.Intent)
	})

	t.Run("Credit purchase grants whole credits", func(t *testing.T) {
		service, m := NewMock(t)
		userID := uuid.New()
		order := &domain.PaymentOrder{
			ID: uuid.New(), UserID: userID, Intent: domain.CreditPurchase{Kind: domain.KindBidCredit, Quantity: 5},
			Amount: decimal.RequireFromString("50.00"), GatewayOrderID: "order_1", Status: domain.OrderCreated,
		}

		m.verifier.EXPECT().VerifySignature("order_1", "pay_1", "sig").Return(true)
		m.passThrough()
		m.order.EXPECT().LockByGatewayOrderID(gomock.Any(), "order_1").Return(order, nil)
		m.order.EXPECT().MarkCaptured(gomock.Any(), order).Return(nil)
		m.ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, mv domain.Movement) (*domain.LedgerEntry, error) {
			assert.Equal(t, domain.KindBidCredit, mv.Kind)
			assert.True(t, mv.Amount.Equal(decimal.NewFromInt(5)))
			return &domain.LedgerEntry{}, nil
		})
		m.expectNotify(t, userID)

		_, err := service.CapturePayment(context.Background(), capture)
		require.NoError(t, err)
	})

	t.Run("Unknown order", func(t *testing.T) {
		service, m := NewMock(t)
		m.verifier.EXPECT().VerifySignature("order_1", "pay_1", "sig").Return(true)
		m.passThrough()
		m.order.EXPECT().LockByGatewayOrderID(gomock.Any(), "order_1").Return(nil, nil)

		_, err := service.CapturePayment(context.Background(), capture)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_HandleWebhook(t *testing.T) {
	captured := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`)

	t.Run("Bad signature", func(t *testing.T) {
		service, m := NewMock(t)
		m.verifier.EXPECT().VerifyWebhook(captured, "bad").Return(false)

		_, err := service.HandleWebhook(context.Background(), captured, "bad")
		assert.ErrorIs(t, err, domain.ErrSignatureVerificationFailed)
	})

	t.Run("Other events are ignored", func(t *testing.T) {
		service, m := NewMock(t)
		body := []byte(`{"event":"order.paid"}`)
		m.verifier.EXPECT().VerifyWebhook(body, "sig").Return(true)

		res, err := service.HandleWebhook(context.Background(), body, "sig")
		assert.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("Captured payment is applied", func(t *testing.T) {
		service, m := NewMock(t)
		userID := uuid.New()
		order := &domain.PaymentOrder{
			ID: uuid.New(), UserID: userID, Intent: domain.WalletTopUp{},
			Amount: decimal.RequireFromString("10.00"), GatewayOrderID: "order_1", Status: domain.OrderCreated,
		}
		m.verifier.EXPECT().VerifyWebhook(captured, "sig").Return(true)
		m.passThrough()
		m.order.EXPECT().LockByGatewayOrderID(gomock.Any(), "order_1").Return(order, nil)
		m.order.EXPECT().MarkCaptured(gomock.Any(), order).Return(nil)
		m.ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(&domain.LedgerEntry{}, nil)
		m.expectNotify(t, userID)

		res, err := service.HandleWebhook(context.Background(), captured, "sig")
		require.NoError(t, err)
		assert.Equal(t, "pay_1", *res.Order.GatewayPaymentID)
	})
}

func TestService_Approve(t *testing.T) {
	tests := []struct {
		name      string
		status    domain.EscrowStatus
		caller    func(e *domain.Escrow) uuid.UUID
		mockSetup func(m *mocks, e *domain.Escrow)
		expectErr error
	}{
		{
			name:   "Provider is paid out",
			status: domain.EscrowWorkSubmitted,
			caller: func(e *domain.Escrow) uuid.UUID { return e.ClientID },
			mockSetup: func(m *mocks, e *domain.Escrow) {
				m.escrow.EXPECT().Update(gomock.Any(), e).Return(nil)
				m.ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, mv domain.Movement) (*domain.LedgerEntry, error) {
					assert.Equal(t, e.ProviderID, mv.AccountID)
					assert.Equal(t, "876.40", mv.Amount.StringFixed(2))
					assert.Equal(t, domain.ResourceRef{Type: domain.ResourceEscrow, ID: e.ID.String()}, mv.Resource)
					return &domain.LedgerEntry{}, nil
				})
				m.contract.EXPECT().UpdateStatus(gomock.Any(), e.ContractID, domain.ContractCompleted, now).Return(nil)
				m.expectNotify(t, e.ProviderID)
			},
		},
		{
			name:      "Approve before payment",
			status:    domain.EscrowCreated,
			caller:    func(e *domain.Escrow) uuid.UUID { return e.ClientID },
			mockSetup: func(*mocks, *domain.Escrow) {},
			expectErr: domain.ErrInvalidStateTransition,
		},
		{
			name:      "Provider cannot approve",
			status:    domain.EscrowWorkSubmitted,
			caller:    func(e *domain.Escrow) uuid.UUID { return e.ProviderID },
			mockSetup: func(*mocks, *domain.Escrow) {},
			expectErr: domain.ErrForbidden,
		},
		{
			name:      "Stranger sees nothing",
			status:    domain.EscrowWorkSubmitted,
			caller:    func(*domain.Escrow) uuid.UUID { return uuid.New() },
			mockSetup: func(*mocks, *domain.Escrow) {},
			expectErr: domain.ErrNotFound,
		},
		{
			name:   "Concurrent approve loses the version check",
			status: domain.EscrowWorkSubmitted,
			caller: func(e *domain.Escrow) uuid.UUID { return e.ClientID },
			mockSetup: func(m *mocks, e *domain.Escrow) {
				m.escrow.EXPECT().Update(gomock.Any(), e).Return(domain.ErrConcurrencyConflict)
			},
			expectErr: domain.ErrConcurrencyConflict,
		},
		{
			name:   "Ledger failure aborts",
			status: domain.EscrowWorkSubmitted,
			caller: func(e *domain.Escrow) uuid.UUID { return e.ClientID },
			mockSetup: func(m *mocks, e *domain.Escrow) {
				m.escrow.EXPECT().Update(gomock.Any(), e).Return(nil)
				m.ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			expectErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			e := escrowIn(tt.status)
			m.passThrough()
			m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)
			tt.mockSetup(m, e)

			got, err := service.Approve(context.Background(), tt.caller(e), e.ID)
			if tt.expectErr != nil {
				if errors.Is(tt.expectErr, domain.ErrInvalidStateTransition) ||
					errors.Is(tt.expectErr, domain.ErrForbidden) ||
					errors.Is(tt.expectErr, domain.ErrNotFound) ||
					errors.Is(tt.expectErr, domain.ErrConcurrencyConflict) {
					assert.ErrorIs(t, err, tt.expectErr)
				} else {
					assert.EqualError(t, err, tt.expectErr.Error())
				}
				assert.Nil(t, got)
				if tt.status == domain.EscrowCreated {
					assert.Equal(t, domain.EscrowCreated, e.Status)
					assert.Nil(t, e.ApprovedAt)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.EscrowPaidOut, got.Status)
			assert.Equal(t, now, *got.ApprovedAt)
			assert.Equal(t, now, *got.PaidOutAt)
		})
	}
}

func TestService_Refund(t *testing.T) {
	t.Run("Client receives amount after gateway fee", func(t *testing.T) {
		service, m := NewMock(t)
		e := escrowIn(domain.EscrowHeld)
		m.passThrough()
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)
		m.escrow.EXPECT().Update(gomock.Any(), e).Return(nil)
		m.ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, mv domain.Movement) (*domain.LedgerEntry, error) {
			assert.Equal(t, e.ClientID, mv.AccountID)
			assert.Equal(t, "976.40", mv.Amount.StringFixed(2))
			return &domain.LedgerEntry{}, nil
		})
		m.contract.EXPECT().UpdateStatus(gomock.Any(), e.ContractID, domain.ContractCancelled, now).Return(nil)
		m.expectNotify(t, e.ProviderID)

		got, err := service.Refund(context.Background(), e.ClientID, e.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EscrowRefunded, got.Status)
		assert.Equal(t, now, *got.RefundedAt)
	})

	for _, status := range []domain.EscrowStatus{domain.EscrowWorkSubmitted, domain.EscrowDisputed, domain.EscrowPaidOut} {
		t.Run("Refund rejected in "+string(status), func(t *testing.T) {
			service, m := NewMock(t)
			e := escrowIn(status)
			m.passThrough()
			m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)

			_, err := service.Refund(context.Background(), e.ClientID, e.ID)
			assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
			assert.Equal(t, status, e.Status)
		})
	}
}

func TestService_SubmitWork(t *testing.T) {
	t.Run("Provider submits", func(t *testing.T) {
		service, m := NewMock(t)
		e := escrowIn(domain.EscrowHeld)
		m.passThrough()
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)
		m.escrow.EXPECT().Update(gomock.Any(), e).Return(nil)
		m.expectNotify(t, e.ClientID)

		got, err := service.SubmitWork(context.Background(), e.ProviderID, e.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EscrowWorkSubmitted, got.Status)
	})

	t.Run("Client cannot submit", func(t *testing.T) {
		service, m := NewMock(t)
		e := escrowIn(domain.EscrowHeld)
		m.passThrough()
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)

		_, err := service.SubmitWork(context.Background(), e.ClientID, e.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Missing escrow", func(t *testing.T) {
		service, m := NewMock(t)
		id := uuid.New()
		m.passThrough()
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), id).Return(nil, nil)

		_, err := service.SubmitWork(context.Background(), uuid.New(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_RaiseDispute(t *testing.T) {
	req := DisputeRequest{Reason: domain.ReasonQualityIssue, Description: "video was never posted"}

	t.Run("Client disputes submitted work", func(t *testing.T) {
		service, m := NewMock(t)
		e := escrowIn(domain.EscrowWorkSubmitted)
		m.passThrough()
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)
		m.escrow.EXPECT().Update(gomock.Any(), e).Return(nil)
		m.dispute.EXPECT().FindActiveByContract(gomock.Any(), e.ContractID).Return(nil, nil)
		m.dispute.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		m.contract.EXPECT().UpdateStatus(gomock.Any(), e.ContractID, domain.ContractDisputed, now).Return(nil)
		m.expectNotify(t, e.ProviderID)

		d, err := service.RaiseDispute(context.Background(), e.ClientID, e.ID, req)
		require.NoError(t, err)
		assert.Equal(t, domain.DisputeOpen, d.Status)
		assert.Equal(t, e.ClientID, d.RaisedBy)
		assert.Equal(t, e.ProviderID, d.AgainstUser)
		assert.Equal(t, e.ID, *d.EscrowID)
		assert.Equal(t, domain.EscrowDisputed, e.Status)
	})

	t.Run("Active dispute exists", func(t *testing.T) {
		service, m := NewMock(t)
		e := escrowIn(domain.EscrowHeld)
		m.passThrough()
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)
		m.escrow.EXPECT().Update(gomock.Any(), e).Return(nil)
		m.dispute.EXPECT().FindActiveByContract(gomock.Any(), e.ContractID).Return(&domain.Dispute{Status: domain.DisputeOpen}, nil)

		_, err := service.RaiseDispute(context.Background(), e.ProviderID, e.ID, req)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Unfunded escrow cannot be disputed", func(t *testing.T) {
		service, m := NewMock(t)
		e := escrowIn(domain.EscrowCreated)
		m.passThrough()
		m.escrow.EXPECT().GetForUpdate(gomock.Any(), e.ID).Return(e, nil)

		_, err := service.RaiseDispute(context.Background(), e.ClientID, e.ID, req)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("Invalid reason", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.RaiseDispute(context.Background(), uuid.New(), uuid.New(), DisputeRequest{Reason: "BORED", Description: "x"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestService_CreateOrders(t *testing.T) {
	userID := uuid.New()

	t.Run("Top-up order", func(t *testing.T) {
		service, m := NewMock(t)
		m.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&domain.GatewayOrder{ID: "order_5"}, nil)
		m.order.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		order, err := service.CreateTopUpOrder(context.Background(), userID, decimal.RequireFromString("99.99"))
		require.NoError(t, err)
		assert.Equal(t, domain.WalletTopUp{}, order.Intent)
		assert.Equal(t, "order_5", order.GatewayOrderID)
		assert.Equal(t, domain.OrderCreated, order.Status)
	})

	t.Run("Top-up with fractional cents", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.CreateTopUpOrder(context.Background(), userID, decimal.RequireFromString("1.001"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Credit purchase is priced per unit", func(t *testing.T) {
		service, m := NewMock(t)
		m.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, amount decimal.Decimal, _ string, _ map[string]string) (*domain.GatewayOrder, error) {
				assert.True(t, amount.Equal(decimal.NewFromInt(250)))
				return &domain.GatewayOrder{ID: "order_6"}, nil
			})
		m.order.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		order, err := service.CreateCreditPurchaseOrder(context.Background(), userID, domain.KindPostCredit, 5)
		require.NoError(t, err)
		assert.Equal(t, domain.CreditPurchase{Kind: domain.KindPostCredit, Quantity: 5}, order.Intent)
	})

	t.Run("Wallet is not a credit kind", func(t *testing.T) {
		service, _ := NewMock(t)
		_, err := service.CreateCreditPurchaseOrder(context.Background(), userID, domain.KindWallet, 5)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Gateway failure", func(t *testing.T) {
		service, m := NewMock(t)
		m.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, domain.ErrUpstreamGateway)

		_, err := service.CreateCreditPurchaseOrder(context.Background(), userID, domain.KindBidCredit, 1)
		assert.ErrorIs(t, err, domain.ErrUpstreamGateway)
	})
}

func TestService_GetEscrow(t *testing.T) {
	service, m := NewMock(t)
	e := escrowIn(domain.EscrowHeld)
	m.escrow.EXPECT().Get(gomock.Any(), e.ID).Return(e, nil).Times(2)

	got, err := service.GetEscrow(context.Background(), e.ProviderID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	_, err = service.GetEscrow(context.Background(), uuid.New(), e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
