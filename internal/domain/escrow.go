package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EscrowStatus string

const (
	EscrowCreated       EscrowStatus = "CREATED"
	EscrowHeld          EscrowStatus = "HELD_IN_ESCROW"
	EscrowWorkSubmitted EscrowStatus = "WORK_SUBMITTED"
	EscrowApproved      EscrowStatus = "APPROVED"
	EscrowPaidOut       EscrowStatus = "PAID_OUT"
	EscrowRefunded      EscrowStatus = "REFUNDED"
	EscrowDisputed      EscrowStatus = "DISPUTED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentCaptured PaymentStatus = "CAPTURED"
)

var escrowTransitions = map[EscrowStatus][]EscrowStatus{
	EscrowCreated:       {EscrowHeld},
	EscrowHeld:          {EscrowWorkSubmitted, EscrowRefunded, EscrowDisputed},
	EscrowWorkSubmitted: {EscrowApproved, EscrowDisputed},
	EscrowApproved:      {EscrowPaidOut},
	EscrowDisputed:      {EscrowRefunded, EscrowPaidOut},
}

func CanTransition(from, to EscrowStatus) bool {
	for _, next := range escrowTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Escrow struct {
	ID                 uuid.UUID       `db:"id"`
	ContractID         uuid.UUID       `db:"contract_id"`
	ClientID           uuid.UUID       `db:"client_id"`
	ProviderID         uuid.UUID       `db:"provider_id"`
	GrossAmount        decimal.Decimal `db:"gross_amount"`
	GatewayFeePercent  decimal.Decimal `db:"gateway_fee_percent"`
	GatewayFee         decimal.Decimal `db:"gateway_fee"`
	PlatformFeePercent decimal.Decimal `db:"platform_fee_percent"`
	PlatformFee        decimal.Decimal `db:"platform_fee"`
	AmountAfterGateway decimal.Decimal `db:"amount_after_gateway"`
	ProviderPayout     decimal.Decimal `db:"provider_payout"`
	PlatformEarnings   decimal.Decimal `db:"platform_earnings"`
	Currency           string          `db:"currency"`
	Status             EscrowStatus    `db:"escrow_status"`
	PaymentStatus      PaymentStatus   `db:"payment_status"`
	GatewayOrderID     string          `db:"gateway_order_id"`
	GatewayPaymentID   *string         `db:"gateway_payment_id"`
	GatewaySignature   *string         `db:"gateway_signature"`
	PaymentCapturedAt  *time.Time      `db:"payment_captured_at"`
	WorkSubmittedAt    *time.Time      `db:"work_submitted_at"`
	ApprovedAt         *time.Time      `db:"approved_at"`
	PaidOutAt          *time.Time      `db:"paid_out_at"`
	DisputedAt         *time.Time      `db:"disputed_at"`
	RefundedAt         *time.Time      `db:"refunded_at"`
	ClosedAt           *time.Time      `db:"closed_at"`
	Version            int             `db:"version"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

// IsTerminal reports whether no further transition can ever apply.
func (e *Escrow) IsTerminal() bool {
	switch e.Status {
	case EscrowPaidOut, EscrowRefunded:
		return true
	case EscrowDisputed:
		return e.ClosedAt != nil
	}
	return false
}

func (e *Escrow) IsParty(userID uuid.UUID) bool {
	return e.ClientID == userID || e.ProviderID == userID
}

// Counterparty returns the other side of the escrow for a party.
func (e *Escrow) Counterparty(userID uuid.UUID) uuid.UUID {
	if e.ClientID == userID {
		return e.ProviderID
	}
	return e.ClientID
}

// Transition moves the escrow to the target state and stamps the matching
// timestamp. The receiver is left untouched on error.
func (e *Escrow) Transition(to EscrowStatus, at time.Time) error {
	if e.IsTerminal() || !CanTransition(e.Status, to) {
		return &StateError{Entity: "escrow", Current: string(e.Status), Target: string(to)}
	}

	switch to {
	case EscrowHeld:
		e.PaymentCapturedAt = &at
	case EscrowWorkSubmitted:
		e.WorkSubmittedAt = &at
	case EscrowApproved:
		e.ApprovedAt = &at
	case EscrowPaidOut:
		e.PaidOutAt = &at
	case EscrowRefunded:
		e.RefundedAt = &at
	case EscrowDisputed:
		e.DisputedAt = &at
	}
	e.Status = to
	e.UpdatedAt = at
	return nil
}

// Close freezes a disputed escrow whose dispute ended without moving funds.
func (e *Escrow) Close(at time.Time) error {
	if e.Status != EscrowDisputed || e.ClosedAt != nil {
		return &StateError{Entity: "escrow", Current: string(e.Status)}
	}
	e.ClosedAt = &at
	e.UpdatedAt = at
	return nil
}
