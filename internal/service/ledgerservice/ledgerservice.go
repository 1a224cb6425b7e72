package ledgerservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/metrics"
	"github.com/GlebRadaev/influmarket/internal/pg"
)

//go:generate mockgen -source=ledgerservice.go -destination=mock_ledgerservice.go -package=ledgerservice

const maxHistoryLimit = 200

type BalanceRepo interface {
	Lock(ctx context.Context, key domain.AccountKey) (*domain.Balance, error)
	Get(ctx context.Context, key domain.AccountKey) (*domain.Balance, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Balance, error)
	Update(ctx context.Context, balance *domain.Balance) error
	InsertEntry(ctx context.Context, entry *domain.LedgerEntry) error
	ListEntries(ctx context.Context, key domain.AccountKey, limit, offset int) ([]domain.LedgerEntry, error)
	FindEntry(ctx context.Context, key domain.AccountKey, dir domain.Direction, ref domain.ResourceRef) (*domain.LedgerEntry, error)
	Snapshot(ctx context.Context, key domain.AccountKey) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error)
	ListKeys(ctx context.Context, limit, offset int) ([]domain.AccountKey, error)
}

// BalanceCache must never replace a cached balance with one of smaller
// Turnover.
type BalanceCache interface {
	Get(ctx context.Context, key domain.AccountKey) (*domain.Balance, bool)
	Set(ctx context.Context, balance *domain.Balance)
}

// Service is the only writer of balances. Every movement locks the balance
// row, appends one entry and rewrites the balance in one transaction.
type Service struct {
	balanceRepo BalanceRepo
	txManager   pg.TXManager
	cache       BalanceCache
	now         func() time.Time
}

func New(balanceRepo BalanceRepo, txManager pg.TXManager, cache BalanceCache) *Service {
	return &Service{
		balanceRepo: balanceRepo,
		txManager:   txManager,
		cache:       cache,
		now:         time.Now,
	}
}

func (s *Service) Credit(ctx context.Context, m domain.Movement) (*domain.LedgerEntry, error) {
	return s.apply(ctx, domain.DirectionCredit, m)
}

// Debit fails with ErrInsufficientBalance when the available balance does
// not cover the amount; nothing is written in that case.
func (s *Service) Debit(ctx context.Context, m domain.Movement) (*domain.LedgerEntry, error) {
	return s.apply(ctx, domain.DirectionDebit, m)
}

// ConsumeCredit spends one BID or POST credit on the gated action ref. An
// action is charged once: consuming again for the same ref returns the entry
// of the first charge.
func (s *Service) ConsumeCredit(ctx context.Context, accountID uuid.UUID, kind domain.BalanceKind, ref domain.ResourceRef) (*domain.LedgerEntry, error) {
	if !kind.IsCredit() {
		return nil, domain.Validationf("%s is not a credit kind", kind)
	}
	key := domain.AccountKey{AccountID: accountID, Kind: kind}
	if prior, err := s.consumed(ctx, key, ref); err != nil || prior != nil {
		return prior, err
	}

	entry, err := s.Debit(ctx, domain.Movement{
		AccountID:   accountID,
		Kind:        kind,
		Amount:      decimal.NewFromInt(1),
		Description: "credit consumed",
		Resource:    ref,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		if prior, findErr := s.consumed(ctx, key, ref); findErr == nil && prior != nil {
			return prior, nil
		}
	}
	return entry, err
}

func (s *Service) consumed(ctx context.Context, key domain.AccountKey, ref domain.ResourceRef) (*domain.LedgerEntry, error) {
	entry, err := s.balanceRepo.FindEntry(ctx, key, domain.DirectionDebit, ref)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		zap.L().Info("credit already consumed",
			zap.String("account", key.AccountID.String()),
			zap.String("kind", string(key.Kind)),
			zap.String("resource", ref.ID))
	}
	return entry, nil
}

func validateMovement(m domain.Movement) error {
	if m.AccountID == uuid.Nil {
		return domain.Validationf("account id is required")
	}
	if !m.Kind.Valid() {
		return domain.Validationf("unknown balance kind %q", m.Kind)
	}
	if !m.Amount.IsPositive() {
		return domain.Validationf("amount must be positive")
	}
	if m.Kind.IsCredit() && !m.Amount.IsInteger() {
		return domain.Validationf("%s amounts must be whole numbers", m.Kind)
	}
	if !m.Amount.Equal(m.Amount.Truncate(2)) {
		return domain.Validationf("amount %s has more than 2 decimal places", m.Amount)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, dir domain.Direction, m domain.Movement) (*domain.LedgerEntry, error) {
	if err := validateMovement(m); err != nil {
		return nil, err
	}
	key := domain.AccountKey{AccountID: m.AccountID, Kind: m.Kind}

	var entry *domain.LedgerEntry
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		balance, err := s.balanceRepo.Lock(ctx, key)
		if err != nil {
			return err
		}

		before := balance.Balance
		after := before.Add(m.Amount)
		if dir == domain.DirectionDebit {
			if balance.Available().LessThan(m.Amount) {
				zap.L().Info("debit rejected",
					zap.String("account", m.AccountID.String()),
					zap.String("kind", string(m.Kind)),
					zap.String("available", balance.Available().String()),
					zap.String("amount", m.Amount.String()))
				return domain.ErrInsufficientBalance
			}
			after = before.Sub(m.Amount)
			balance.TotalDebited = balance.TotalDebited.Add(m.Amount)
		} else {
			balance.TotalCredited = balance.TotalCredited.Add(m.Amount)
		}

		at := s.now()
		balance.Balance = after
		balance.LastTransactionAt = &at
		if err := s.balanceRepo.Update(ctx, balance); err != nil {
			return err
		}

		entry = &domain.LedgerEntry{
			ID:            uuid.New(),
			AccountID:     m.AccountID,
			Kind:          m.Kind,
			Direction:     dir,
			Amount:        m.Amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			Description:   m.Description,
			Resource:      m.Resource,
		}
		if err := s.balanceRepo.InsertEntry(ctx, entry); err != nil {
			return err
		}

		fresh := *balance
		pg.AfterCommit(ctx, func(ctx context.Context) {
			s.cache.Set(ctx, &fresh)
			metrics.LedgerMovements.WithLabelValues(string(m.Kind), string(dir)).Inc()
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetBalance returns the balance of one kind. Accounts that never moved
// money have a zero balance.
func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID, kind domain.BalanceKind) (*domain.Balance, error) {
	if !kind.Valid() {
		return nil, domain.Validationf("unknown balance kind %q", kind)
	}
	key := domain.AccountKey{AccountID: accountID, Kind: kind}
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	balance, err := s.balanceRepo.Get(ctx, key)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	if balance == nil {
		return &domain.Balance{AccountID: accountID, Kind: kind}, nil
	}
	s.cache.Set(ctx, balance)
	return balance, nil
}

func (s *Service) GetBalances(ctx context.Context, accountID uuid.UUID) ([]domain.Balance, error) {
	balances, err := s.balanceRepo.ListByAccount(ctx, accountID)
	if err != nil {
		zap.L().Error("failed to list balances", zap.Error(err))
		return nil, err
	}
	return balances, nil
}

func (s *Service) GetCredits(ctx context.Context, accountID uuid.UUID) (*domain.CreditSummary, error) {
	balances, err := s.GetBalances(ctx, accountID)
	if err != nil {
		return nil, err
	}
	summary := &domain.CreditSummary{AccountID: accountID}
	for _, b := range balances {
		switch b.Kind {
		case domain.KindBidCredit:
			summary.BidCredits = b.Balance.IntPart()
			summary.TotalBidPurchased = b.TotalCredited.IntPart()
			summary.TotalBidUsed = b.TotalDebited.IntPart()
		case domain.KindPostCredit:
			summary.PostCredits = b.Balance.IntPart()
			summary.TotalPostPurchased = b.TotalCredited.IntPart()
			summary.TotalPostUsed = b.TotalDebited.IntPart()
		}
	}
	return summary, nil
}

func (s *Service) History(ctx context.Context, accountID uuid.UUID, kind domain.BalanceKind, limit, offset int) ([]domain.LedgerEntry, error) {
	if !kind.Valid() {
		return nil, domain.Validationf("unknown balance kind %q", kind)
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.balanceRepo.ListEntries(ctx, domain.AccountKey{AccountID: accountID, Kind: kind}, limit, offset)
	if err != nil {
		zap.L().Error("failed to fetch ledger history", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// Verify recomputes a balance from its entry log and compares it with the
// materialized row.
func (s *Service) Verify(ctx context.Context, key domain.AccountKey) (*domain.Reconciliation, error) {
	balance, credited, debited, err := s.balanceRepo.Snapshot(ctx, key)
	if err != nil {
		return nil, err
	}
	return &domain.Reconciliation{
		AccountID:  key.AccountID,
		Kind:       key.Kind,
		Balance:    balance,
		Credited:   credited,
		Debited:    debited,
		Consistent: credited.Sub(debited).Equal(balance),
	}, nil
}

func (s *Service) ListAccounts(ctx context.Context, limit, offset int) ([]domain.AccountKey, error) {
	return s.balanceRepo.ListKeys(ctx, limit, offset)
}
