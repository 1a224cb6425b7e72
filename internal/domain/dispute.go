package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DisputeStatus string

const (
	DisputeOpen               DisputeStatus = "OPEN"
	DisputeUnderReview        DisputeStatus = "UNDER_REVIEW"
	DisputeResolvedClient     DisputeStatus = "RESOLVED_CLIENT"
	DisputeResolvedInfluencer DisputeStatus = "RESOLVED_INFLUENCER"
	DisputeResolvedSplit      DisputeStatus = "RESOLVED_SPLIT"
	DisputeClosed             DisputeStatus = "CLOSED"
)

func (s DisputeStatus) IsActive() bool {
	return s == DisputeOpen || s == DisputeUnderReview
}

// IsOutcome reports whether an admin may resolve a dispute into this status.
func (s DisputeStatus) IsOutcome() bool {
	switch s {
	case DisputeResolvedClient, DisputeResolvedInfluencer, DisputeResolvedSplit, DisputeClosed:
		return true
	}
	return false
}

type DisputeReason string

const (
	ReasonWorkNotDelivered DisputeReason = "WORK_NOT_DELIVERED"
	ReasonQualityIssue     DisputeReason = "QUALITY_ISSUE"
	ReasonPaymentIssue     DisputeReason = "PAYMENT_ISSUE"
	ReasonBreachOfTerms    DisputeReason = "BREACH_OF_TERMS"
	ReasonOther            DisputeReason = "OTHER"
)

func (r DisputeReason) Valid() bool {
	switch r {
	case ReasonWorkNotDelivered, ReasonQualityIssue, ReasonPaymentIssue, ReasonBreachOfTerms, ReasonOther:
		return true
	}
	return false
}

type Evidence struct {
	ID          uuid.UUID `db:"id"`
	DisputeID   uuid.UUID `db:"dispute_id"`
	SubmittedBy uuid.UUID `db:"submitted_by"`
	URL         string    `db:"url"`
	Note        string    `db:"note"`
	CreatedAt   time.Time `db:"created_at"`
}

type Dispute struct {
	ID                uuid.UUID       `db:"id"`
	ContractID        uuid.UUID       `db:"contract_id"`
	EscrowID          *uuid.UUID      `db:"escrow_id"`
	RaisedBy          uuid.UUID       `db:"raised_by"`
	AgainstUser       uuid.UUID       `db:"against_user"`
	Reason            DisputeReason   `db:"reason"`
	Description       string          `db:"description"`
	Status            DisputeStatus   `db:"status"`
	Resolution        string          `db:"resolution"`
	ClientPercent     decimal.Decimal `db:"client_percent"`
	InfluencerPercent decimal.Decimal `db:"influencer_percent"`
	ResolvedBy        *uuid.UUID      `db:"resolved_by"`
	ResolvedAt        *time.Time      `db:"resolved_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	Evidence          []Evidence
}

func (d *Dispute) IsParty(userID uuid.UUID) bool {
	return d.RaisedBy == userID || d.AgainstUser == userID
}

// Split is the admin-chosen share of a disputed escrow, in percent.
type Split struct {
	ClientPercent     decimal.Decimal
	InfluencerPercent decimal.Decimal
}

type Resolution struct {
	DisputeID uuid.UUID
	AdminID   uuid.UUID
	Outcome   DisputeStatus
	Split     *Split
	Note      string
}
