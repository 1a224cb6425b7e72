package dto

import (
	"time"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

type EvidenceDTO struct {
	ID          string    `json:"id"`
	SubmittedBy string    `json:"submitted_by"`
	URL         string    `json:"url" example:"https://cdn.example.com/proof.png"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type DisputeResponseDTO struct {
	ID                string        `json:"id"`
	ContractID        string        `json:"contract_id"`
	EscrowID          *string       `json:"escrow_id,omitempty"`
	RaisedBy          string        `json:"raised_by"`
	AgainstUser       string        `json:"against_user"`
	Reason            string        `json:"reason" example:"QUALITY_ISSUE"`
	Description       string        `json:"description"`
	Status            string        `json:"status" example:"OPEN"`
	Resolution        string        `json:"resolution,omitempty"`
	ClientPercent     string        `json:"client_percent,omitempty" example:"40"`
	InfluencerPercent string        `json:"influencer_percent,omitempty" example:"60"`
	ResolvedBy        *string       `json:"resolved_by,omitempty"`
	ResolvedAt        *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	Evidence          []EvidenceDTO `json:"evidence,omitempty"`
}

func NewEvidence(e domain.Evidence) EvidenceDTO {
	return EvidenceDTO{
		ID:          e.ID.String(),
		SubmittedBy: e.SubmittedBy.String(),
		URL:         e.URL,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt,
	}
}

func NewDisputeResponse(d *domain.Dispute) DisputeResponseDTO {
	out := DisputeResponseDTO{
		ID:          d.ID.String(),
		ContractID:  d.ContractID.String(),
		RaisedBy:    d.RaisedBy.String(),
		AgainstUser: d.AgainstUser.String(),
		Reason:      string(d.Reason),
		Description: d.Description,
		Status:      string(d.Status),
		Resolution:  d.Resolution,
		ResolvedAt:  d.ResolvedAt,
		CreatedAt:   d.CreatedAt,
	}
	if d.EscrowID != nil {
		id := d.EscrowID.String()
		out.EscrowID = &id
	}
	if d.ResolvedBy != nil {
		id := d.ResolvedBy.String()
		out.ResolvedBy = &id
	}
	if d.Status == domain.DisputeResolvedSplit {
		out.ClientPercent = d.ClientPercent.String()
		out.InfluencerPercent = d.InfluencerPercent.String()
	}
	for _, e := range d.Evidence {
		out.Evidence = append(out.Evidence, NewEvidence(e))
	}
	return out
}

type ResolveDisputeRequestDTO struct {
	Outcome           string  `json:"outcome" example:"RESOLVED_SPLIT"`
	Resolution        string  `json:"resolution" example:"Partial delivery; split agreed by admin."`
	ClientPercent     *string `json:"client_percent,omitempty" example:"40"`
	InfluencerPercent *string `json:"influencer_percent,omitempty" example:"60"`
}

type AddEvidenceRequestDTO struct {
	URL  string `json:"url" example:"https://cdn.example.com/proof.png"`
	Note string `json:"note" example:"Screenshot of the published post"`
}
