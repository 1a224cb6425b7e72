package dto

import "github.com/GlebRadaev/influmarket/internal/domain"

type VerifyPaymentRequestDTO struct {
	OrderID   string `json:"order_id" example:"order_NxYz123"`
	PaymentID string `json:"payment_id" example:"pay_NxYz456"`
	Signature string `json:"signature" example:"5f2b0c..."`
}

type CaptureResponseDTO struct {
	Order    PaymentOrderDTO    `json:"order"`
	Escrow   *EscrowResponseDTO `json:"escrow,omitempty"`
	Replayed bool               `json:"replayed"`
}

func NewCaptureResponse(res *domain.CaptureResult) CaptureResponseDTO {
	out := CaptureResponseDTO{
		Order:    NewPaymentOrder(res.Order),
		Replayed: res.Replayed,
	}
	if res.Escrow != nil {
		escrow := NewEscrowResponse(res.Escrow)
		out.Escrow = &escrow
	}
	return out
}

type WebhookAckDTO struct {
	Status string `json:"status" example:"processed"`
}
