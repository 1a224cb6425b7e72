package dispute

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/dto"
	"github.com/GlebRadaev/influmarket/internal/service/disputeservice"
	"github.com/GlebRadaev/influmarket/pkg/auth"
	"github.com/GlebRadaev/influmarket/pkg/utils"
)

//go:generate mockgen -source=dispute.go -destination=mock_dispute.go -package=dispute

type Service interface {
	Resolve(ctx context.Context, r domain.Resolution) (*domain.Dispute, error)
	StartReview(ctx context.Context, adminID uuid.UUID, disputeID uuid.UUID) (*domain.Dispute, error)
	AddEvidence(ctx context.Context, callerID uuid.UUID, disputeID uuid.UUID, req disputeservice.EvidenceRequest) (*domain.Evidence, error)
	GetDispute(ctx context.Context, callerID uuid.UUID, disputeID uuid.UUID) (*domain.Dispute, error)
	ListDisputes(ctx context.Context, callerID uuid.UUID, contractID uuid.UUID) ([]domain.Dispute, error)
}

type DisputeHandler struct {
	disputeService Service
}

func New(disputeService Service) *DisputeHandler {
	return &DisputeHandler{
		disputeService: disputeService,
	}
}

// ListDisputes godoc
//
//	@Summary		List disputes of a contract
//	@Tags			Disputes
//	@Security		BearerAuth
//	@Produce		json
//	@Param			contract_id	query		string	true	"Contract ID"
//	@Success		200			{array}		dto.DisputeResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid contract id"
//	@Failure		404			{object}	utils.Response	"Contract not found"
//	@Router			/api/disputes [get]
func (h *DisputeHandler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	contractID, err := uuid.Parse(r.URL.Query().Get("contract_id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid contract id")
		return
	}

	disputes, err := h.disputeService.ListDisputes(r.Context(), userID, contractID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	response := make([]dto.DisputeResponseDTO, len(disputes))
	for i := range disputes {
		response[i] = dto.NewDisputeResponse(&disputes[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// GetDispute godoc
//
//	@Summary		Get a dispute with its evidence
//	@Tags			Disputes
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Dispute ID"
//	@Success		200	{object}	dto.DisputeResponseDTO
//	@Failure		404	{object}	utils.Response	"Dispute not found"
//	@Router			/api/disputes/{id} [get]
func (h *DisputeHandler) GetDispute(w http.ResponseWriter, r *http.Request) {
	userID, disputeID, ok := identify(w, r)
	if !ok {
		return
	}
	dispute, err := h.disputeService.GetDispute(r.Context(), userID, disputeID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewDisputeResponse(dispute))
}

// AddEvidence godoc
//
//	@Summary		Attach evidence to an active dispute
//	@Tags			Disputes
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Dispute ID"
//	@Param			request	body		dto.AddEvidenceRequestDTO	true	"Evidence link"
//	@Success		201		{object}	dto.EvidenceDTO
//	@Failure		400		{object}	utils.Response	"Invalid evidence"
//	@Failure		404		{object}	utils.Response	"Dispute not found"
//	@Failure		409		{object}	utils.Response	"Dispute already resolved"
//	@Router			/api/disputes/{id}/evidence [post]
func (h *DisputeHandler) AddEvidence(w http.ResponseWriter, r *http.Request) {
	userID, disputeID, ok := identify(w, r)
	if !ok {
		return
	}
	var req dto.AddEvidenceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	evidence, err := h.disputeService.AddEvidence(r.Context(), userID, disputeID, disputeservice.EvidenceRequest{
		URL:  req.URL,
		Note: req.Note,
	})
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewEvidence(*evidence))
}

// StartReview godoc
//
//	@Summary		Take an open dispute under review
//	@Tags			Disputes
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Dispute ID"
//	@Success		200	{object}	dto.DisputeResponseDTO
//	@Failure		403	{object}	utils.Response	"Caller is not an admin"
//	@Failure		409	{object}	utils.Response	"Dispute is not open"
//	@Router			/api/disputes/{id}/review [post]
func (h *DisputeHandler) StartReview(w http.ResponseWriter, r *http.Request) {
	userID, disputeID, ok := identify(w, r)
	if !ok {
		return
	}
	dispute, err := h.disputeService.StartReview(r.Context(), userID, disputeID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewDisputeResponse(dispute))
}

// Resolve godoc
//
//	@Summary		Resolve a dispute
//	@Description	Settles the disputed escrow: refund the client, pay the influencer, split by percentages, or close without moving funds.
//	@Tags			Disputes
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Dispute ID"
//	@Param			request	body		dto.ResolveDisputeRequestDTO	true	"Outcome"
//	@Success		200		{object}	dto.DisputeResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid outcome or split"
//	@Failure		403		{object}	utils.Response	"Caller is not an admin"
//	@Failure		409		{object}	utils.Response	"Dispute or escrow already settled"
//	@Router			/api/disputes/{id}/resolve [post]
func (h *DisputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	userID, disputeID, ok := identify(w, r)
	if !ok {
		return
	}
	var req dto.ResolveDisputeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resolution := domain.Resolution{
		DisputeID: disputeID,
		AdminID:   userID,
		Outcome:   domain.DisputeStatus(req.Outcome),
		Note:      req.Resolution,
	}
	if req.ClientPercent != nil || req.InfluencerPercent != nil {
		split, err := parseSplit(req.ClientPercent, req.InfluencerPercent)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid split percentages")
			return
		}
		resolution.Split = split
	}

	dispute, err := h.disputeService.Resolve(r.Context(), resolution)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewDisputeResponse(dispute))
}

func parseSplit(client, influencer *string) (*domain.Split, error) {
	if client == nil || influencer == nil {
		return nil, domain.Validationf("both split percentages are required")
	}
	c, err := decimal.NewFromString(*client)
	if err != nil {
		return nil, err
	}
	i, err := decimal.NewFromString(*influencer)
	if err != nil {
		return nil, err
	}
	return &domain.Split{ClientPercent: c, InfluencerPercent: i}, nil
}

func identify(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	disputeID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid dispute id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, disputeID, true
}
