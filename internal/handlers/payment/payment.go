package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/dto"
	"github.com/GlebRadaev/influmarket/pkg/utils"
)

//go:generate mockgen -source=payment.go -destination=mock_payment.go -package=payment

const (
	SignatureHeader = "X-Gateway-Signature"
	maxWebhookBody  = 1 << 20
)

type Service interface {
	CapturePayment(ctx context.Context, c domain.Capture) (*domain.CaptureResult, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*domain.CaptureResult, error)
}

type PaymentHandler struct {
	paymentService Service
}

func New(paymentService Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Verify godoc
//
//	@Summary		Confirm a checkout payment
//	@Description	Applies a payment the client completed at checkout. Repeating the call for the same payment returns the settled state with replayed set.
//	@Tags			Payments
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.VerifyPaymentRequestDTO	true	"Gateway ids and signature"
//	@Success		200		{object}	dto.CaptureResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		404		{object}	utils.Response	"Unknown order"
//	@Failure		409		{object}	utils.Response	"Order already settled by another payment"
//	@Failure		422		{object}	utils.Response	"Signature verification failed"
//	@Router			/api/payments/verify [post]
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.paymentService.CapturePayment(r.Context(), domain.Capture{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCaptureResponse(res))
}

// Webhook godoc
//
//	@Summary		Gateway webhook
//	@Description	Receives signed gateway events. Captures are applied idempotently; other events are acknowledged.
//	@Tags			Payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Gateway-Signature	header		string	true	"HMAC-SHA256 of the raw body"
//	@Success		200					{object}	dto.WebhookAckDTO
//	@Failure		400					{object}	utils.Response	"Malformed event"
//	@Failure		422					{object}	utils.Response	"Signature verification failed"
//	@Router			/api/payments/webhook [post]
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.paymentService.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}

	status := "ignored"
	switch {
	case res == nil:
	case res.Replayed:
		status = "replayed"
	default:
		status = "processed"
		zap.L().Info("webhook capture applied", zap.String("order", res.Order.GatewayOrderID))
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.WebhookAckDTO{Status: status})
}
