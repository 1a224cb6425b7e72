package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IntentType string

const (
	IntentEscrowFunding  IntentType = "ESCROW_FUNDING"
	IntentWalletTopUp    IntentType = "WALLET_TOPUP"
	IntentCreditPurchase IntentType = "CREDIT_PURCHASE"
)

// SettlementIntent says what a captured gateway payment pays for.
type SettlementIntent interface {
	Type() IntentType
}

type EscrowFunding struct {
	EscrowID uuid.UUID
}

func (EscrowFunding) Type() IntentType { return IntentEscrowFunding }

type WalletTopUp struct{}

func (WalletTopUp) Type() IntentType { return IntentWalletTopUp }

type CreditPurchase struct {
	Kind     BalanceKind
	Quantity int64
}

func (CreditPurchase) Type() IntentType { return IntentCreditPurchase }

type PaymentOrderStatus string

const (
	OrderCreated  PaymentOrderStatus = "CREATED"
	OrderCaptured PaymentOrderStatus = "CAPTURED"
)

type PaymentOrder struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Intent           SettlementIntent
	Amount           decimal.Decimal
	Currency         string
	GatewayOrderID   string
	GatewayPaymentID *string
	Status           PaymentOrderStatus
	CreatedAt        time.Time
	CapturedAt       *time.Time
}

type PlatformRevenue struct {
	ID               uuid.UUID       `db:"id"`
	EscrowID         uuid.UUID       `db:"escrow_id"`
	GatewayPaymentID string          `db:"gateway_payment_id"`
	Amount           decimal.Decimal `db:"amount"`
	CreatedAt        time.Time       `db:"created_at"`
}

// GatewayOrder is what the payment gateway hands back for a new order.
type GatewayOrder struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Receipt  string
}

type Capture struct {
	OrderID   string
	PaymentID string
	Signature string
}

// CaptureResult describes what a capture settled. Replayed is set when the
// payment had already been applied.
type CaptureResult struct {
	Order    *PaymentOrder
	Escrow   *Escrow
	Replayed bool
}
