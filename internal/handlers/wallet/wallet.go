package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/dto"
	"github.com/GlebRadaev/influmarket/pkg/auth"
	"github.com/GlebRadaev/influmarket/pkg/utils"
	"github.com/GlebRadaev/influmarket/pkg/validate"
)

//go:generate mockgen -source=wallet.go -destination=mock_wallet.go -package=wallet

type Ledger interface {
	GetBalance(ctx context.Context, accountID uuid.UUID, kind domain.BalanceKind) (*domain.Balance, error)
	GetCredits(ctx context.Context, accountID uuid.UUID) (*domain.CreditSummary, error)
	History(ctx context.Context, accountID uuid.UUID, kind domain.BalanceKind, limit int, offset int) ([]domain.LedgerEntry, error)
	ConsumeCredit(ctx context.Context, accountID uuid.UUID, kind domain.BalanceKind, ref domain.ResourceRef) (*domain.LedgerEntry, error)
}

type Orders interface {
	CreateTopUpOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.PaymentOrder, error)
	CreateCreditPurchaseOrder(ctx context.Context, userID uuid.UUID, kind domain.BalanceKind, quantity int64) (*domain.PaymentOrder, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]domain.PaymentOrder, error)
}

type WalletHandler struct {
	ledger Ledger
	orders Orders
}

func New(ledger Ledger, orders Orders) *WalletHandler {
	return &WalletHandler{
		ledger: ledger,
		orders: orders,
	}
}

// GetBalance godoc
//
//	@Summary		Get wallet balance
//	@Description	Returns the wallet balance of the authenticated user. Accounts without movements report zero.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/wallet [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	balance, err := h.ledger.GetBalance(r.Context(), userID, domain.KindWallet)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(balance))
}

// GetCredits godoc
//
//	@Summary		Get BID and POST credit counts
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.CreditsResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/wallet/credits [get]
func (h *WalletHandler) GetCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	credits, err := h.ledger.GetCredits(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCreditsResponse(credits))
}

// History godoc
//
//	@Summary		List ledger entries
//	@Description	Ledger entries of one balance kind, newest first.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Param			kind	query		string	false	"WALLET, BID_CREDIT or POST_CREDIT"	default(WALLET)
//	@Param			limit	query		int		false	"Page size"							default(50)
//	@Param			offset	query		int		false	"Offset"
//	@Success		200		{array}		dto.LedgerEntryDTO
//	@Success		204		{object}	utils.Response	"No entries"
//	@Failure		400		{object}	utils.Response	"Invalid query"
//	@Router			/api/wallet/history [get]
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	kind := domain.KindWallet
	if k := q.Get("kind"); k != "" {
		kind = domain.BalanceKind(k)
	}
	limit, err := intParam(q.Get("limit"), 50)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	entries, err := h.ledger.History(r.Context(), userID, kind, limit, offset)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	if len(entries) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	response := make([]dto.LedgerEntryDTO, len(entries))
	for i, e := range entries {
		response[i] = dto.NewLedgerEntry(e)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// ConsumeCredit godoc
//
//	@Summary		Spend one credit on a gated action
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ConsumeCreditRequestDTO	true	"Credit kind and action"
//	@Success		200		{object}	dto.LedgerEntryDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		402		{object}	utils.Response	"No credits left"
//	@Router			/api/wallet/credits/consume [post]
func (h *WalletHandler) ConsumeCredit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req dto.ConsumeCreditRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResourceID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "resource id is required")
		return
	}

	entry, err := h.ledger.ConsumeCredit(r.Context(), userID, domain.BalanceKind(req.Kind), domain.ResourceRef{
		Type: domain.ResourceAction,
		ID:   req.ResourceID,
	})
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewLedgerEntry(*entry))
}

// TopUp godoc
//
//	@Summary		Open a wallet top-up order
//	@Description	Creates a gateway order; the wallet is credited once the payment is captured.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.TopUpRequestDTO	true	"Top-up amount"
//	@Success		201		{object}	dto.PaymentOrderDTO
//	@Failure		400		{object}	utils.Response	"Invalid amount"
//	@Failure		502		{object}	utils.Response	"Payment gateway unavailable"
//	@Router			/api/wallet/topup [post]
func (h *WalletHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req dto.TopUpRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, ok := validate.ParseAmount(req.Amount)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	order, err := h.orders.CreateTopUpOrder(r.Context(), userID, amount)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewPaymentOrder(order))
}

// BuyCredits godoc
//
//	@Summary		Open a credit purchase order
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreditPurchaseRequestDTO	true	"Credit kind and quantity"
//	@Success		201		{object}	dto.PaymentOrderDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		502		{object}	utils.Response	"Payment gateway unavailable"
//	@Router			/api/wallet/credits [post]
func (h *WalletHandler) BuyCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req dto.CreditPurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.CreateCreditPurchaseOrder(r.Context(), userID, domain.BalanceKind(req.Kind), req.Quantity)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewPaymentOrder(order))
}

// ListOrders godoc
//
//	@Summary		List payment orders of the current user
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.PaymentOrderDTO
//	@Success		204	{object}	utils.Response	"No orders"
//	@Router			/api/wallet/orders [get]
func (h *WalletHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	response := make([]dto.PaymentOrderDTO, len(orders))
	for i := range orders {
		response[i] = dto.NewPaymentOrder(&orders[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
