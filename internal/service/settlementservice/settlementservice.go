package settlementservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/fees"
	"github.com/GlebRadaev/influmarket/internal/metrics"
	"github.com/GlebRadaev/influmarket/internal/pg"
	"github.com/GlebRadaev/influmarket/internal/traces"
)

//go:generate mockgen -source=settlementservice.go -destination=mock_settlementservice.go -package=settlementservice

type EscrowRepo interface {
	Create(ctx context.Context, e *domain.Escrow) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Escrow, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Escrow, error)
	GetByContract(ctx context.Context, contractID uuid.UUID) (*domain.Escrow, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Escrow, error)
	Update(ctx context.Context, e *domain.Escrow) error
}

type ContractRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus, at time.Time) error
}

type OrderRepo interface {
	Create(ctx context.Context, order *domain.PaymentOrder) error
	LockByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.PaymentOrder, error)
	MarkCaptured(ctx context.Context, order *domain.PaymentOrder) error
}

type RevenueRepo interface {
	Record(ctx context.Context, revenue *domain.PlatformRevenue) (bool, error)
}

type DisputeRepo interface {
	Create(ctx context.Context, d *domain.Dispute) error
	FindActiveByContract(ctx context.Context, contractID uuid.UUID) (*domain.Dispute, error)
}

type Ledger interface {
	Credit(ctx context.Context, m domain.Movement) (*domain.LedgerEntry, error)
}

type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string, notes map[string]string) (*domain.GatewayOrder, error)
	InitiateRefund(ctx context.Context, paymentID string, amount *decimal.Decimal) (string, error)
}

type Verifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
	VerifyWebhook(body []byte, signature string) bool
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

type Repositories struct {
	Escrow   EscrowRepo
	Contract ContractRepo
	Order    OrderRepo
	Revenue  RevenueRepo
	Dispute  DisputeRepo
}

type Config struct {
	Fees         fees.Config
	Currency     string
	CreditPrices map[domain.BalanceKind]decimal.Decimal
}

// Service runs the escrow lifecycle and the payment captures that fund it.
// Each operation is one transaction over the rows it touches. Notifications
// are enqueued in that transaction and metrics are emitted after commit.
type Service struct {
	repos     Repositories
	ledger    Ledger
	gateway   Gateway
	verifier  Verifier
	notifier  Notifier
	txManager pg.TXManager
	cfg       Config
	now       func() time.Time
}

func New(repos Repositories, ledger Ledger, gateway Gateway, verifier Verifier, notifier Notifier, txManager pg.TXManager, cfg Config) *Service {
	return &Service{
		repos:     repos,
		ledger:    ledger,
		gateway:   gateway,
		verifier:  verifier,
		notifier:  notifier,
		txManager: txManager,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Quote shows the fee breakdown the current configuration gives for amount.
func (s *Service) Quote(amount decimal.Decimal) (fees.Breakdown, error) {
	return fees.Calculate(amount, s.cfg.Fees)
}

// CreateEscrow opens the escrow of a contract and the gateway order the
// client pays. The gateway is called first; nothing is stored if it fails.
func (s *Service) CreateEscrow(ctx context.Context, callerID, contractID uuid.UUID) (*domain.Escrow, error) {
	ctx, span := traces.StartSpan(ctx, "settlement.CreateEscrow", traces.UserID(callerID.String()))
	escrow, err := s.createEscrow(ctx, callerID, contractID)
	traces.End(span, err)
	return escrow, err
}

func (s *Service) createEscrow(ctx context.Context, callerID, contractID uuid.UUID) (*domain.Escrow, error) {
	contract, err := s.repos.Contract.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil || contract.ClientID != callerID {
		return nil, domain.NotFoundf("contract %s", contractID)
	}
	if contract.Status != domain.ContractActive {
		return nil, &domain.StateError{Entity: "contract", Current: string(contract.Status)}
	}

	existing, err := s.repos.Escrow.GetByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		zap.L().Info("escrow already exists", zap.String("contract", contractID.String()))
		return nil, domain.ErrAlreadyExists
	}

	breakdown, err := fees.Calculate(contract.AgreedPrice, s.cfg.Fees)
	if err != nil {
		return nil, err
	}

	escrowID := uuid.New()
	gwOrder, err := s.gateway.CreateOrder(ctx, breakdown.GrossAmount, "esc_"+escrowID.String(), map[string]string{
		"contract_id": contractID.String(),
		"escrow_id":   escrowID.String(),
	})
	if err != nil {
		zap.L().Error("failed to create gateway order for escrow", zap.String("contract", contractID.String()), zap.Error(err))
		return nil, err
	}

	escrow := &domain.Escrow{
		ID:                 escrowID,
		ContractID:         contract.ID,
		ClientID:           contract.ClientID,
		ProviderID:         contract.ProviderID,
		GrossAmount:        breakdown.GrossAmount,
		GatewayFeePercent:  breakdown.GatewayFeePercent,
		GatewayFee:         breakdown.GatewayFee,
		PlatformFeePercent: breakdown.PlatformFeePercent,
		PlatformFee:        breakdown.PlatformFee,
		AmountAfterGateway: breakdown.AmountAfterGateway,
		ProviderPayout:     breakdown.ProviderPayout,
		PlatformEarnings:   breakdown.PlatformEarnings,
		Currency:           s.cfg.Currency,
		Status:             domain.EscrowCreated,
		PaymentStatus:      domain.PaymentPending,
		GatewayOrderID:     gwOrder.ID,
	}
	order := &domain.PaymentOrder{
		ID:             uuid.New(),
		UserID:         callerID,
		Intent:         domain.EscrowFunding{EscrowID: escrowID},
		Amount:         breakdown.GrossAmount,
		Currency:       s.cfg.Currency,
		GatewayOrderID: gwOrder.ID,
		Status:         domain.OrderCreated,
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.repos.Escrow.Create(ctx, escrow); err != nil {
			return err
		}
		if err := s.repos.Order.Create(ctx, order); err != nil {
			return err
		}
		pg.AfterCommit(ctx, func(context.Context) {
			metrics.EscrowTransitions.WithLabelValues(string(domain.EscrowCreated)).Inc()
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return escrow, nil
}

// GetEscrow returns an escrow the caller is a party of.
func (s *Service) GetEscrow(ctx context.Context, callerID, escrowID uuid.UUID) (*domain.Escrow, error) {
	escrow, err := s.repos.Escrow.Get(ctx, escrowID)
	if err != nil {
		zap.L().Error("failed to get escrow", zap.Error(err))
		return nil, err
	}
	if escrow == nil || !escrow.IsParty(callerID) {
		return nil, domain.NotFoundf("escrow %s", escrowID)
	}
	return escrow, nil
}

func (s *Service) ListEscrows(ctx context.Context, callerID uuid.UUID) ([]domain.Escrow, error) {
	escrows, err := s.repos.Escrow.ListByUser(ctx, callerID)
	if err != nil {
		zap.L().Error("failed to list escrows", zap.Error(err))
		return nil, err
	}
	return escrows, nil
}

// notify enqueues n in the transaction carried by ctx, so a rolled back
// operation notifies nobody.
func (s *Service) notify(ctx context.Context, n domain.Notification) {
	s.notifier.Notify(ctx, n)
}

func escrowLink(id uuid.UUID) string {
	return "/escrows/" + id.String()
}
