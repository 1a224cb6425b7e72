package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BalanceKind string

const (
	KindWallet     BalanceKind = "WALLET"
	KindBidCredit  BalanceKind = "BID_CREDIT"
	KindPostCredit BalanceKind = "POST_CREDIT"
)

func (k BalanceKind) Valid() bool {
	switch k {
	case KindWallet, KindBidCredit, KindPostCredit:
		return true
	}
	return false
}

// IsCredit reports whether the kind counts gated actions in whole units.
func (k BalanceKind) IsCredit() bool {
	return k == KindBidCredit || k == KindPostCredit
}

type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

type ResourceType string

const (
	ResourceEscrow       ResourceType = "ESCROW"
	ResourcePaymentOrder ResourceType = "PAYMENT_ORDER"
	ResourceAction       ResourceType = "ACTION"
	ResourceAdjustment   ResourceType = "ADJUSTMENT"
)

type ResourceRef struct {
	Type ResourceType
	ID   string
}

type Balance struct {
	AccountID         uuid.UUID       `db:"account_id"`
	Kind              BalanceKind     `db:"kind"`
	Balance           decimal.Decimal `db:"balance"`
	LockedBalance     decimal.Decimal `db:"locked_balance"`
	TotalCredited     decimal.Decimal `db:"total_credited"`
	TotalDebited      decimal.Decimal `db:"total_debited"`
	LastTransactionAt *time.Time      `db:"last_transaction_at"`
	CreatedAt         time.Time       `db:"created_at"`
}

func (b *Balance) Available() decimal.Decimal {
	return b.Balance.Sub(b.LockedBalance)
}

// Turnover grows with every movement, so of two reads of the same balance
// the one with the larger turnover is the newer.
func (b *Balance) Turnover() decimal.Decimal {
	return b.TotalCredited.Add(b.TotalDebited)
}

type LedgerEntry struct {
	ID            uuid.UUID       `db:"id"`
	AccountID     uuid.UUID       `db:"account_id"`
	Kind          BalanceKind     `db:"kind"`
	Direction     Direction       `db:"direction"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Description   string          `db:"description"`
	Resource      ResourceRef
	CreatedAt     time.Time `db:"created_at"`
}

// Movement is a single requested change to one (account, kind) balance.
type Movement struct {
	AccountID   uuid.UUID
	Kind        BalanceKind
	Amount      decimal.Decimal
	Description string
	Resource    ResourceRef
}

type CreditSummary struct {
	AccountID          uuid.UUID
	BidCredits         int64
	PostCredits        int64
	TotalBidPurchased  int64
	TotalBidUsed       int64
	TotalPostPurchased int64
	TotalPostUsed      int64
}

type Reconciliation struct {
	AccountID  uuid.UUID
	Kind       BalanceKind
	Balance    decimal.Decimal
	Credited   decimal.Decimal
	Debited    decimal.Decimal
	Consistent bool
}

// AccountKey identifies one materialized balance row.
type AccountKey struct {
	AccountID uuid.UUID
	Kind      BalanceKind
}
