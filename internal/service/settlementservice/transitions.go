package settlementservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/metrics"
	"github.com/GlebRadaev/influmarket/internal/pg"
	"github.com/GlebRadaev/influmarket/internal/traces"
)

type role int

const (
	roleClient role = iota
	roleProvider
	roleParty
)

func (r role) allows(e *domain.Escrow, userID uuid.UUID) bool {
	switch r {
	case roleClient:
		return e.ClientID == userID
	case roleProvider:
		return e.ProviderID == userID
	}
	return e.IsParty(userID)
}

// step is one escrow transition. mutate changes the locked escrow in memory;
// effects runs after the escrow row is written, in the same transaction.
type step struct {
	name    string
	role    role
	mutate  func(e *domain.Escrow, at time.Time) error
	effects func(ctx context.Context, e *domain.Escrow, at time.Time) error
}

func (s *Service) transition(ctx context.Context, callerID, escrowID uuid.UUID, st step) (*domain.Escrow, error) {
	ctx, span := traces.StartSpan(ctx, "settlement."+st.name,
		traces.EscrowID(escrowID.String()), traces.UserID(callerID.String()))

	var escrow *domain.Escrow
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		e, err := s.repos.Escrow.GetForUpdate(ctx, escrowID)
		if err != nil {
			return err
		}
		if e == nil || !e.IsParty(callerID) {
			return domain.NotFoundf("escrow %s", escrowID)
		}
		if !st.role.allows(e, callerID) {
			return domain.ErrForbidden
		}

		at := s.now()
		if err := st.mutate(e, at); err != nil {
			return err
		}
		if err := s.repos.Escrow.Update(ctx, e); err != nil {
			return err
		}
		if st.effects != nil {
			if err := st.effects(ctx, e, at); err != nil {
				return err
			}
		}

		status := e.Status
		pg.AfterCommit(ctx, func(context.Context) {
			metrics.EscrowTransitions.WithLabelValues(string(status)).Inc()
		})
		escrow = e
		return nil
	})
	traces.End(span, err)
	if err != nil {
		zap.L().Info("escrow transition rejected",
			zap.String("op", st.name),
			zap.String("escrow", escrowID.String()),
			zap.Error(err))
		return nil, err
	}
	return escrow, nil
}

// SubmitWork marks the provider's deliverables as handed in.
func (s *Service) SubmitWork(ctx context.Context, callerID, escrowID uuid.UUID) (*domain.Escrow, error) {
	return s.transition(ctx, callerID, escrowID, step{
		name: "SubmitWork",
		role: roleProvider,
		mutate: func(e *domain.Escrow, at time.Time) error {
			return e.Transition(domain.EscrowWorkSubmitted, at)
		},
		effects: func(ctx context.Context, e *domain.Escrow, _ time.Time) error {
			s.notify(ctx, domain.Notification{
				UserID:  e.ClientID,
				Title:   "Work submitted",
				Message: "The influencer submitted the work for your contract. Review and approve it to release payment.",
				Type:    domain.NotifyContract,
				Link:    escrowLink(e.ID),
			})
			return nil
		},
	})
}

// Approve releases the provider payout. The escrow passes APPROVED and is
// stored as PAID_OUT in the same commit as the wallet credit.
func (s *Service) Approve(ctx context.Context, callerID, escrowID uuid.UUID) (*domain.Escrow, error) {
	return s.transition(ctx, callerID, escrowID, step{
		name: "Approve",
		role: roleClient,
		mutate: func(e *domain.Escrow, at time.Time) error {
			if err := e.Transition(domain.EscrowApproved, at); err != nil {
				return err
			}
			return e.Transition(domain.EscrowPaidOut, at)
		},
		effects: func(ctx context.Context, e *domain.Escrow, at time.Time) error {
			if err := s.creditWallet(ctx, e.ProviderID, e, e.ProviderPayout, "payout for completed contract"); err != nil {
				return err
			}
			if err := s.repos.Contract.UpdateStatus(ctx, e.ContractID, domain.ContractCompleted, at); err != nil {
				return err
			}
			s.notify(ctx, domain.Notification{
				UserID:  e.ProviderID,
				Title:   "Payment released",
				Message: "The client approved your work. " + e.ProviderPayout.StringFixed(2) + " " + e.Currency + " was added to your wallet.",
				Type:    domain.NotifyPayment,
				Link:    escrowLink(e.ID),
			})
			return nil
		},
	})
}

// Refund returns held funds, less the gateway fee, to the client wallet.
func (s *Service) Refund(ctx context.Context, callerID, escrowID uuid.UUID) (*domain.Escrow, error) {
	return s.transition(ctx, callerID, escrowID, step{
		name: "Refund",
		role: roleClient,
		mutate: func(e *domain.Escrow, at time.Time) error {
			if e.Status != domain.EscrowHeld {
				return &domain.StateError{Entity: "escrow", Current: string(e.Status), Target: string(domain.EscrowRefunded)}
			}
			return e.Transition(domain.EscrowRefunded, at)
		},
		effects: func(ctx context.Context, e *domain.Escrow, at time.Time) error {
			if err := s.creditWallet(ctx, e.ClientID, e, e.AmountAfterGateway, "refund of escrow"); err != nil {
				return err
			}
			if err := s.repos.Contract.UpdateStatus(ctx, e.ContractID, domain.ContractCancelled, at); err != nil {
				return err
			}
			s.notify(ctx, domain.Notification{
				UserID:  e.ProviderID,
				Title:   "Contract cancelled",
				Message: "The client cancelled the contract and the escrowed payment was refunded.",
				Type:    domain.NotifyContract,
				Link:    escrowLink(e.ID),
			})
			return nil
		},
	})
}

type DisputeRequest struct {
	Reason      domain.DisputeReason
	Description string
}

func (r DisputeRequest) validate() error {
	if !r.Reason.Valid() {
		return domain.Validationf("unknown dispute reason %q", r.Reason)
	}
	if strings.TrimSpace(r.Description) == "" {
		return domain.Validationf("dispute description is required")
	}
	return nil
}

// RaiseDispute freezes a funded escrow and opens a dispute against the
// other party. Only one dispute per contract may be active.
func (s *Service) RaiseDispute(ctx context.Context, callerID, escrowID uuid.UUID, req DisputeRequest) (*domain.Dispute, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var dispute *domain.Dispute
	_, err := s.transition(ctx, callerID, escrowID, step{
		name: "RaiseDispute",
		role: roleParty,
		mutate: func(e *domain.Escrow, at time.Time) error {
			return e.Transition(domain.EscrowDisputed, at)
		},
		effects: func(ctx context.Context, e *domain.Escrow, at time.Time) error {
			active, err := s.repos.Dispute.FindActiveByContract(ctx, e.ContractID)
			if err != nil {
				return err
			}
			if active != nil {
				return domain.ErrAlreadyExists
			}

			escrowID := e.ID
			d := &domain.Dispute{
				ID:          uuid.New(),
				ContractID:  e.ContractID,
				EscrowID:    &escrowID,
				RaisedBy:    callerID,
				AgainstUser: e.Counterparty(callerID),
				Reason:      req.Reason,
				Description: req.Description,
				Status:      domain.DisputeOpen,
			}
			if err := s.repos.Dispute.Create(ctx, d); err != nil {
				return err
			}
			if err := s.repos.Contract.UpdateStatus(ctx, e.ContractID, domain.ContractDisputed, at); err != nil {
				return err
			}
			s.notify(ctx, domain.Notification{
				UserID:  d.AgainstUser,
				Title:   "Dispute raised",
				Message: "A dispute was raised on your contract. The payment is on hold until an admin resolves it.",
				Type:    domain.NotifyDispute,
				Link:    "/disputes/" + d.ID.String(),
			})
			dispute = d
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

// creditWallet moves amount into a party's wallet. Zero shares move nothing.
func (s *Service) creditWallet(ctx context.Context, userID uuid.UUID, e *domain.Escrow, amount decimal.Decimal, description string) error {
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
