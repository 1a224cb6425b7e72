package dto

import (
	"time"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/fees"
)

func money(v interface{ StringFixed(int32) string }) string {
	return v.StringFixed(2)
}

type CreateEscrowRequestDTO struct {
	ContractID string `json:"contract_id" example:"3f2c8f0e-7d8b-4b8e-9a59-2a3c1f1f2b10"`
}

type EscrowResponseDTO struct {
	ID                 string     `json:"id" example:"8d7e3c1a-5d3b-4f62-9c1e-0a6f1c2d3e4f"`
	ContractID         string     `json:"contract_id"`
	ClientID           string     `json:"client_id"`
	ProviderID         string     `json:"provider_id"`
	GrossAmount        string     `json:"gross_amount" example:"1000.00"`
	GatewayFeePercent  string     `json:"gateway_fee_percent" example:"2.36"`
	GatewayFee         string     `json:"gateway_fee" example:"23.60"`
	PlatformFeePercent string     `json:"platform_fee_percent" example:"10"`
	PlatformFee        string     `json:"platform_fee" example:"100.00"`
	AmountAfterGateway string     `json:"amount_after_gateway" example:"976.40"`
	ProviderPayout     string     `json:"provider_payout" example:"876.40"`
	PlatformEarnings   string     `json:"platform_earnings" example:"100.00"`
	Currency           string     `json:"currency" example:"INR"`
	Status             string     `json:"escrow_status" example:"HELD_IN_ESCROW"`
	PaymentStatus      string     `json:"payment_status" example:"CAPTURED"`
	GatewayOrderID     string     `json:"gateway_order_id" example:"order_NxYz123"`
	GatewayPaymentID   *string    `json:"gateway_payment_id,omitempty" example:"pay_NxYz456"`
	PaymentCapturedAt  *time.Time `json:"payment_captured_at,omitempty"`
	WorkSubmittedAt    *time.Time `json:"work_submitted_at,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	PaidOutAt          *time.Time `json:"paid_out_at,omitempty"`
	DisputedAt         *time.Time `json:"disputed_at,omitempty"`
	RefundedAt         *time.Time `json:"refunded_at,omitempty"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func NewEscrowResponse(e *domain.Escrow) EscrowResponseDTO {
	return EscrowResponseDTO{
		ID:                 e.ID.String(),
		ContractID:         e.ContractID.String(),
		ClientID:           e.ClientID.String(),
		ProviderID:         e.ProviderID.String(),
		GrossAmount:        money(e.GrossAmount),
		GatewayFeePercent:  e.GatewayFeePercent.String(),
		GatewayFee:         money(e.GatewayFee),
		PlatformFeePercent: e.PlatformFeePercent.String(),
		PlatformFee:        money(e.PlatformFee),
		AmountAfterGateway: money(e.AmountAfterGateway),
		ProviderPayout:     money(e.ProviderPayout),
		PlatformEarnings:   money(e.PlatformEarnings),
		Currency:           e.Currency,
		Status:             string(e.Status),
		PaymentStatus:      string(e.PaymentStatus),
		GatewayOrderID:     e.GatewayOrderID,
		GatewayPaymentID:   e.GatewayPaymentID,
		PaymentCapturedAt:  e.PaymentCapturedAt,
		WorkSubmittedAt:    e.WorkSubmittedAt,
		ApprovedAt:         e.ApprovedAt,
		PaidOutAt:          e.PaidOutAt,
		DisputedAt:         e.DisputedAt,
		RefundedAt:         e.RefundedAt,
		ClosedAt:           e.ClosedAt,
		CreatedAt:          e.CreatedAt,
	}
}

type QuoteResponseDTO struct {
	GrossAmount        string `json:"gross_amount" example:"1000.00"`
	GatewayFee         string `json:"gateway_fee" example:"23.60"`
	PlatformFee        string `json:"platform_fee" example:"100.00"`
	AmountAfterGateway string `json:"amount_after_gateway" example:"976.40"`
	ProviderPayout     string `json:"provider_payout" example:"876.40"`
	PlatformEarnings   string `json:"platform_earnings" example:"100.00"`
}

func NewQuoteResponse(b fees.Breakdown) QuoteResponseDTO {
	return QuoteResponseDTO{
		GrossAmount:        money(b.GrossAmount),
		GatewayFee:         money(b.GatewayFee),
		PlatformFee:        money(b.PlatformFee),
		AmountAfterGateway: money(b.AmountAfterGateway),
		ProviderPayout:     money(b.ProviderPayout),
		PlatformEarnings:   money(b.PlatformEarnings),
	}
}

type RaiseDisputeRequestDTO struct {
	Reason      string `json:"reason" example:"QUALITY_ISSUE"`
	Description string `json:"description" example:"The video was posted without the agreed product placement."`
}
