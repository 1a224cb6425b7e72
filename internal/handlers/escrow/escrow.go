package escrow

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/dto"
	"github.com/GlebRadaev/influmarket/internal/fees"
	"github.com/GlebRadaev/influmarket/internal/service/settlementservice"
	"github.com/GlebRadaev/influmarket/pkg/auth"
	"github.com/GlebRadaev/influmarket/pkg/utils"
	"github.com/GlebRadaev/influmarket/pkg/validate"
)

//go:generate mockgen -source=escrow.go -destination=mock_escrow.go -package=escrow

type Service interface {
	Quote(amount decimal.Decimal) (fees.Breakdown, error)
	CreateEscrow(ctx context.Context, callerID uuid.UUID, contractID uuid.UUID) (*domain.Escrow, error)
	GetEscrow(ctx context.Context, callerID uuid.UUID, escrowID uuid.UUID) (*domain.Escrow, error)
	ListEscrows(ctx context.Context, callerID uuid.UUID) ([]domain.Escrow, error)
	SubmitWork(ctx context.Context, callerID uuid.UUID, escrowID uuid.UUID) (*domain.Escrow, error)
	Approve(ctx context.Context, callerID uuid.UUID, escrowID uuid.UUID) (*domain.Escrow, error)
	Refund(ctx context.Context, callerID uuid.UUID, escrowID uuid.UUID) (*domain.Escrow, error)
	RaiseDispute(ctx context.Context, callerID uuid.UUID, escrowID uuid.UUID, req settlementservice.DisputeRequest) (*domain.Dispute, error)
}

type EscrowHandler struct {
	escrowService Service
}

func New(escrowService Service) *EscrowHandler {
	return &EscrowHandler{
		escrowService: escrowService,
	}
}

// Quote godoc
//
//	@Summary		Preview fees for an amount
//	@Description	Returns the gateway fee, platform fee and provider payout that an escrow of this amount would carry.
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Param			amount	query		string	true	"Gross amount, at most two decimals"
//	@Success		200		{object}	dto.QuoteResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid amount"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Router			/api/escrows/quote [get]
func (h *EscrowHandler) Quote(w http.ResponseWriter, r *http.Request) {
	amount, ok := validate.ParseAmount(r.URL.Query().Get("amount"))
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	breakdown, err := h.escrowService.Quote(amount)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewQuoteResponse(breakdown))
}

// CreateEscrow godoc
//
//	@Summary		Open an escrow for a contract
//	@Description	Freezes the current fee rates into a new escrow and opens a gateway order the client pays into.
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateEscrowRequestDTO	true	"Contract to fund"
//	@Success		201		{object}	dto.EscrowResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Caller is not the contract client"
//	@Failure		404		{object}	utils.Response	"Contract not found"
//	@Failure		409		{object}	utils.Response	"Escrow already exists"
//	@Failure		502		{object}	utils.Response	"Payment gateway unavailable"
//	@Router			/api/escrows [post]
func (h *EscrowHandler) CreateEscrow(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.CreateEscrowRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid contract id")
		return
	}

	escrow, err := h.escrowService.CreateEscrow(r.Context(), userID, contractID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewEscrowResponse(escrow))
}

// ListEscrows godoc
//
//	@Summary		List escrows of the current user
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.EscrowResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/escrows [get]
func (h *EscrowHandler) ListEscrows(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	escrows, err := h.escrowService.ListEscrows(r.Context(), userID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	response := make([]dto.EscrowResponseDTO, len(escrows))
	for i := range escrows {
		response[i] = dto.NewEscrowResponse(&escrows[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetEscrow godoc
//
//	@Summary		Get an escrow
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Escrow ID"
//	@Success		200	{object}	dto.EscrowResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Escrow not found"
//	@Router			/api/escrows/{id} [get]
func (h *EscrowHandler) GetEscrow(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, h.escrowService.GetEscrow)
}

// SubmitWork godoc
//
//	@Summary		Submit the work for a funded escrow
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Escrow ID"
//	@Success		200	{object}	dto.EscrowResponseDTO
//	@Failure		403	{object}	utils.Response	"Caller is not the provider"
//	@Failure		404	{object}	utils.Response	"Escrow not found"
//	@Failure		409	{object}	utils.Response	"Escrow is not held"
//	@Router			/api/escrows/{id}/submit [post]
func (h *EscrowHandler) SubmitWork(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, h.escrowService.SubmitWork)
}

// Approve godoc
//
//	@Summary		Approve the work and release the payout
//	@Description	Credits the provider payout to the provider wallet and completes the contract.
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Escrow ID"
//	@Success		200	{object}	dto.EscrowResponseDTO
//	@Failure		403	{object}	utils.Response	"Caller is not the client"
//	@Failure		404	{object}	utils.Response	"Escrow not found"
//	@Failure		409	{object}	utils.Response	"Escrow cannot be approved in its current state"
//	@Router			/api/escrows/{id}/approve [post]
func (h *EscrowHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, h.escrowService.Approve)
}

// Refund godoc
//
//	@Summary		Cancel a held escrow and refund the client
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Escrow ID"
//	@Success		200	{object}	dto.EscrowResponseDTO
//	@Failure		403	{object}	utils.Response	"Caller is not the client"
//	@Failure		404	{object}	utils.Response	"Escrow not found"
//	@Failure		409	{object}	utils.Response	"Escrow is not held"
//	@Router			/api/escrows/{id}/refund [post]
func (h *EscrowHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, h.escrowService.Refund)
}

// RaiseDispute godoc
//
//	@Summary		Raise a dispute on an escrow
//	@Tags			Escrow
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Escrow ID"
//	@Param			request	body		dto.RaiseDisputeRequestDTO	true	"Dispute reason"
//	@Success		201		{object}	dto.DisputeResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		404		{object}	utils.Response	"Escrow not found"
//	@Failure		409		{object}	utils.Response	"Escrow cannot be disputed or a dispute is already open"
//	@Router			/api/escrows/{id}/disputes [post]
func (h *EscrowHandler) RaiseDispute(w http.ResponseWriter, r *http.Request) {
	userID, escrowID, ok := identify(w, r)
	if !ok {
		return
	}

	var req dto.RaiseDisputeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dispute, err := h.escrowService.RaiseDispute(r.Context(), userID, escrowID, settlementservice.DisputeRequest{
		Reason:      domain.DisputeReason(req.Reason),
		Description: req.Description,
	})
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewDisputeResponse(dispute))
}

type escrowOp func(ctx context.Context, callerID, escrowID uuid.UUID) (*domain.Escrow, error)

func (h *EscrowHandler) serve(w http.ResponseWriter, r *http.Request, code int, op escrowOp) {
	userID, escrowID, ok := identify(w, r)
	if !ok {
		return
	}
	escrow, err := op(r.Context(), userID, escrowID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, code, dto.NewEscrowResponse(escrow))
}

func identify(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	escrowID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid escrow id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, escrowID, true
}
