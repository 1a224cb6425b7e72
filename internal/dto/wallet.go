package dto

import (
	"time"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

type BalanceResponseDTO struct {
	Kind              string     `json:"kind" example:"WALLET"`
	Balance           string     `json:"balance" example:"976.40"`
	LockedBalance     string     `json:"locked_balance" example:"0.00"`
	Available         string     `json:"available" example:"976.40"`
	TotalCredited     string     `json:"total_credited" example:"976.40"`
	TotalDebited      string     `json:"total_debited" example:"0.00"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
}

func NewBalanceResponse(b *domain.Balance) BalanceResponseDTO {
	return BalanceResponseDTO{
		Kind:              string(b.Kind),
		Balance:           money(b.Balance),
		LockedBalance:     money(b.LockedBalance),
		Available:         money(b.Available()),
		TotalCredited:     money(b.TotalCredited),
		TotalDebited:      money(b.TotalDebited),
		LastTransactionAt: b.LastTransactionAt,
	}
}

type CreditsResponseDTO struct {
	BidCredits         int64 `json:"bid_credits" example:"12"`
	PostCredits        int64 `json:"post_credits" example:"3"`
	TotalBidPurchased  int64 `json:"total_bid_purchased" example:"20"`
	TotalBidUsed       int64 `json:"total_bid_used" example:"8"`
	TotalPostPurchased int64 `json:"total_post_purchased" example:"5"`
	TotalPostUsed      int64 `json:"total_post_used" example:"2"`
}

func NewCreditsResponse(c *domain.CreditSummary) CreditsResponseDTO {
	return CreditsResponseDTO{
		BidCredits:         c.BidCredits,
		PostCredits:        c.PostCredits,
		TotalBidPurchased:  c.TotalBidPurchased,
		TotalBidUsed:       c.TotalBidUsed,
		TotalPostPurchased: c.TotalPostPurchased,
		TotalPostUsed:      c.TotalPostUsed,
	}
}

type LedgerEntryDTO struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind" example:"WALLET"`
	Direction     string    `json:"direction" example:"CREDIT"`
	Amount        string    `json:"amount" example:"876.40"`
	BalanceBefore string    `json:"balance_before" example:"0.00"`
	BalanceAfter  string    `json:"balance_after" example:"876.40"`
	Description   string    `json:"description" example:"payout for completed contract"`
	ResourceType  string    `json:"resource_type,omitempty" example:"ESCROW"`
	ResourceID    string    `json:"resource_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewLedgerEntry(e domain.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:            e.ID.String(),
		Kind:          string(e.Kind),
		Direction:     string(e.Direction),
		Amount:        money(e.Amount),
		BalanceBefore: money(e.BalanceBefore),
		BalanceAfter:  money(e.BalanceAfter),
		Description:   e.Description,
		ResourceType:  string(e.Resource.Type),
		ResourceID:    e.Resource.ID,
		CreatedAt:     e.CreatedAt,
	}
}

type TopUpRequestDTO struct {
	Amount string `json:"amount" example:"500.00"`
}

type CreditPurchaseRequestDTO struct {
	Kind     string `json:"kind" example:"BID_CREDIT"`
	Quantity int64  `json:"quantity" example:"10"`
}

type ConsumeCreditRequestDTO struct {
	Kind       string `json:"kind" example:"BID_CREDIT"`
	ResourceID string `json:"resource_id" example:"bid_7f1c"`
}

type PaymentOrderDTO struct {
	ID             string     `json:"id"`
	GatewayOrderID string     `json:"gateway_order_id" example:"order_NxYz123"`
	Intent         string     `json:"intent" example:"WALLET_TOPUP"`
	Amount         string     `json:"amount" example:"500.00"`
	Currency       string     `json:"currency" example:"INR"`
	Status         string     `json:"status" example:"CREATED"`
	CreatedAt      time.Time  `json:"created_at"`
	CapturedAt     *time.Time `json:"captured_at,omitempty"`
}

func NewPaymentOrder(o *domain.PaymentOrder) PaymentOrderDTO {
	return PaymentOrderDTO{
		ID:             o.ID.String(),
		GatewayOrderID: o.GatewayOrderID,
		Intent:         string(o.Intent.Type()),
		Amount:         money(o.Amount),
		Currency:       o.Currency,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
		CapturedAt:     o.CapturedAt,
	}
}
