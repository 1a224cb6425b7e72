package disputeservice

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/fees"
	"github.com/GlebRadaev/influmarket/internal/metrics"
	"github.com/GlebRadaev/influmarket/internal/pg"
	"github.com/GlebRadaev/influmarket/internal/traces"
)

//go:generate mockgen -source=disputeservice.go -destination=mock_disputeservice.go -package=disputeservice

type DisputeRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Dispute, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Dispute, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Dispute, error)
	Update(ctx context.Context, d *domain.Dispute) error
	AddEvidence(ctx context.Context, e *domain.Evidence) error
	ListEvidence(ctx context.Context, disputeID uuid.UUID) ([]domain.Evidence, error)
}

type EscrowRepo interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Escrow, error)
	Update(ctx context.Context, e *domain.Escrow) error
}

type ContractRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus, at time.Time) error
}

type UserRepo interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Ledger interface {
	Credit(ctx context.Context, m domain.Movement) (*domain.LedgerEntry, error)
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Service arbitrates disputes. Resolutions redistribute the frozen escrow
// amounts and are mutually exclusive with any other escrow transition.
type Service struct {
	disputeRepo  DisputeRepo
	escrowRepo   EscrowRepo
	contractRepo ContractRepo
	userRepo     UserRepo
	ledger       Ledger
	notifier     Notifier
	txManager    pg.TXManager
	now          func() time.Time
}

func New(disputeRepo DisputeRepo, escrowRepo EscrowRepo, contractRepo ContractRepo, userRepo UserRepo,
	ledger Ledger, notifier Notifier, txManager pg.TXManager) *Service {
	return &Service{
		disputeRepo:  disputeRepo,
		escrowRepo:   escrowRepo,
		contractRepo: contractRepo,
		userRepo:     userRepo,
		ledger:       ledger,
		notifier:     notifier,
		txManager:    txManager,
		now:          time.Now,
	}
}

func (s *Service) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	admin, err := s.userRepo.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		zap.L().Info("admin action refused", zap.String("user", userID.String()))
		return domain.ErrForbidden
	}
	return nil
}

func validateResolution(r domain.Resolution) error {
	if !r.Outcome.IsOutcome() {
		return domain.Validationf("%q is not a dispute outcome", r.Outcome)
	}
	if r.Outcome == domain.DisputeResolvedSplit {
		if r.Split == nil {
			return domain.Validationf("split percentages are required")
		}
		return fees.ValidateSplit(*r.Split)
	}
	if r.Split != nil {
		return domain.Validationf("split percentages only apply to %s", domain.DisputeResolvedSplit)
	}
	return nil
}

// Resolve settles an active dispute with the admin's outcome. When the
// dispute is backed by an escrow, the escrow must be DISPUTED and each
// credited party receives exactly one ledger entry.
func (s *Service) Resolve(ctx context.Context, r domain.Resolution) (*domain.Dispute, error) {
	if err := validateResolution(r); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, r.AdminID); err != nil {
		return nil, err
	}

	ctx, span := traces.StartSpan(ctx, "dispute.Resolve",
		traces.DisputeID(r.DisputeID.String()), traces.UserID(r.AdminID.String()))

	var dispute *domain.Dispute
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		d, err := s.disputeRepo.GetForUpdate(ctx, r.DisputeID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NotFoundf("dispute %s", r.DisputeID)
		}
		if !d.Status.IsActive() {
			return &domain.StateError{Entity: "dispute", Current: string(d.Status), Target: string(r.Outcome)}
		}

		at := s.now()
		if err := s.settle(ctx, d, r, at); err != nil {
			return err
		}

		d.Status = r.Outcome
		d.Resolution = r.Note
		if r.Split != nil {
			d.ClientPercent = r.Split.ClientPercent
			d.InfluencerPercent = r.Split.InfluencerPercent
		}
		d.ResolvedBy = &r.AdminID
		d.ResolvedAt = &at
		d.UpdatedAt = at
		if err := s.disputeRepo.Update(ctx, d); err != nil {
			return err
		}

		outcome := string(r.Outcome)
		pg.AfterCommit(ctx, func(context.Context) {
			metrics.DisputeResolutions.WithLabelValues(outcome).Inc()
		})
		for _, party := range []uuid.UUID{d.RaisedBy, d.AgainstUser} {
			s.notify(ctx, domain.Notification{
				UserID:  party,
				Title:   "Dispute resolved",
				Message: "An admin resolved your dispute: " + outcome + ".",
				Type:    domain.NotifyDispute,
				Link:    "/disputes/" + d.ID.String(),
			})
		}
		dispute = d
		return nil
	})
	traces.End(span, err)
	if err != nil {
		zap.L().Info("dispute resolution rejected", zap.String("dispute", r.DisputeID.String()), zap.Error(err))
		return nil, err
	}
	return dispute, nil
}

// settle moves the escrow funds for the outcome and updates the contract.
func (s *Service) settle(ctx context.Context, d *domain.Dispute, r domain.Resolution, at time.Time) error {
	contractStatus := map[domain.DisputeStatus]domain.ContractStatus{
		domain.DisputeResolvedClient:     domain.ContractCancelled,
		domain.DisputeResolvedInfluencer: domain.ContractCompleted,
		domain.DisputeResolvedSplit:      domain.ContractCancelled,
	}

	if d.EscrowID != nil {
		escrow, err := s.escrowRepo.GetForUpdate(ctx, *d.EscrowID)
		if err != nil {
			return err
		}
		if escrow == nil {
			return domain.NotFoundf("escrow %s", *d.EscrowID)
		}
		if escrow.Status != domain.EscrowDisputed || escrow.IsTerminal() {
			return &domain.StateError{Entity: "escrow", Current: string(escrow.Status)}
		}
		if err := s.moveFunds(ctx, escrow, r, at); err != nil {
			return err
		}
	}

	status, ok := contractStatus[r.Outcome]
	if !ok {
		return nil
	}
	return s.contractRepo.UpdateStatus(ctx, d.ContractID, status, at)
}

func (s *Service) moveFunds(ctx context.Context, e *domain.Escrow, r domain.Resolution, at time.Time) error {
	var (
		clientShare   decimal.Decimal
		providerShare decimal.Decimal
		err           error
	)
	switch r.Outcome {
	case domain.DisputeResolvedClient:
		clientShare = e.AmountAfterGateway
		err = e.Transition(domain.EscrowRefunded, at)
	case domain.DisputeResolvedInfluencer:
		providerShare = e.ProviderPayout
		err = e.Transition(domain.EscrowPaidOut, at)
	case domain.DisputeResolvedSplit:
		var shares fees.Shares
		shares, err = fees.SplitShares(fees.FromEscrow(e), *r.Split)
		if err == nil {
			clientShare, providerShare = shares.Client, shares.Provider
			err = e.Transition(domain.EscrowPaidOut, at)
		}
	case domain.DisputeClosed:
		err = e.Close(at)
	}
	if err != nil {
		return err
	}
	if err := s.escrowRepo.Update(ctx, e); err != nil {
		return err
	}

	if err := s.credit(ctx, e.ClientID, e, clientShare, "dispute settlement"); err != nil {
		return err
	}
	if err := s.credit(ctx, e.ProviderID, e, providerShare, "dispute settlement"); err != nil {
		return err
	}

	status := e.Status
	pg.AfterCommit(ctx, func(context.Context) {
		metrics.EscrowTransitions.WithLabelValues(string(status)).Inc()
	})
	return nil
}

func (s *Service) credit(ctx context.Context, userID uuid.UUID, e *domain.Escrow, amount decimal.Decimal, description string) error {
	if !amount.IsPositive() {
		return nil
	}
	_, err := s.ledger.Credit(ctx, domain.Movement{
		AccountID:   userID,
		Kind:        domain.KindWallet,
		Amount:      amount,
		Description: description,
		Resource:    domain.ResourceRef{Type: domain.ResourceEscrow, ID: e.ID.String()},
	})
	return err
}

// StartReview moves an open dispute under admin review.
func (s *Service) StartReview(ctx context.Context, adminID, disputeID uuid.UUID) (*domain.Dispute, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	var dispute *domain.Dispute
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		d, err := s.disputeRepo.GetForUpdate(ctx, disputeID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NotFoundf("dispute %s", disputeID)
		}
		if d.Status != domain.DisputeOpen {
			return &domain.StateError{Entity: "dispute", Current: string(d.Status), Target: string(domain.DisputeUnderReview)}
		}
		d.Status = domain.DisputeUnderReview
		d.UpdatedAt = s.now()
		if err := s.disputeRepo.Update(ctx, d); err != nil {
			return err
		}
		dispute = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

type EvidenceRequest struct {
	URL  string
	Note string
}

func (r EvidenceRequest) validate() error {
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.Validationf("evidence url must be an absolute http(s) url")
	}
	return nil
}

// AddEvidence appends an attachment to an active dispute. Evidence is never
// edited or removed.
func (s *Service) AddEvidence(ctx context.Context, callerID, disputeID uuid.UUID, req EvidenceRequest) (*domain.Evidence, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	d, err := s.disputeRepo.Get(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil || !d.IsParty(callerID) {
		return nil, domain.NotFoundf("dispute %s", disputeID)
	}
	if !d.Status.IsActive() {
		return nil, &domain.StateError{Entity: "dispute", Current: string(d.Status)}
	}

	evidence := &domain.Evidence{
		ID:          uuid.New(),
		DisputeID:   d.ID,
		SubmittedBy: callerID,
		URL:         strings.TrimSpace(req.URL),
		Note:        req.Note,
	}
	if err := s.disputeRepo.AddEvidence(ctx, evidence); err != nil {
		return nil, err
	}

	other := d.AgainstUser
	if callerID == d.AgainstUser {
		other = d.RaisedBy
	}
	s.notify(ctx, domain.Notification{
		UserID:  other,
		Title:   "New dispute evidence",
		Message: "The other party added evidence to your dispute.",
		Type:    domain.NotifyDispute,
		Link:    "/disputes/" + d.ID.String(),
	})
	return evidence, nil
}

// GetDispute returns a dispute with its evidence to a party or an admin.
func (s *Service) GetDispute(ctx context.Context, callerID, disputeID uuid.UUID) (*domain.Dispute, error) {
	d, err := s.disputeRepo.Get(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.NotFoundf("dispute %s", disputeID)
	}
	if !d.IsParty(callerID) {
		admin, err := s.userRepo.IsAdmin(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, domain.NotFoundf("dispute %s", disputeID)
		}
	}

	evidence, err := s.disputeRepo.ListEvidence(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Evidence = evidence
	return d, nil
}

// ListDisputes returns every dispute of a contract, newest first.
func (s *Service) ListDisputes(ctx context.Context, callerID, contractID uuid.UUID) ([]domain.Dispute, error) {
	contract, err := s.contractRepo.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, domain.NotFoundf("contract %s", contractID)
	}
	if contract.ClientID != callerID && contract.ProviderID != callerID {
		admin, err := s.userRepo.IsAdmin(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, domain.NotFoundf("contract %s", contractID)
		}
	}
	return s.disputeRepo.ListByContract(ctx, contractID)
}

// notify enqueues n in the transaction carried by ctx, so a rolled back
// operation notifies nobody.
func (s *Service) notify(ctx context.Context, n domain.Notification) {
	s.notifier.Notify(ctx, n)
}
