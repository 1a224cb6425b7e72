// Package reconcile periodically recomputes every balance from its ledger
// entries and reports balances that disagree with their entry log.
package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/influmarket/internal/config"
	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/metrics"
)

//go:generate mockgen -source=reconcile.go -destination=mock_reconcile.go -package=reconcile

const (
	defaultPageSize = 500
	defaultWorkers  = 8
)

type Ledger interface {
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.AccountKey, error)
	Verify(ctx context.Context, key domain.AccountKey) (*domain.Reconciliation, error)
}

type Service struct {
	ledger     Ledger
	workerPool WorkerPoolI
	interval   time.Duration
	pageSize   int
}

func New(cfg *config.Config, ledger Ledger) *Service {
	return &Service{
		ledger:     ledger,
		workerPool: NewWorkerPool(defaultWorkers),
		interval:   cfg.ReconcileInterval,
		pageSize:   defaultPageSize,
	}
}

func (s *Service) Start(ctx context.Context) {
	if s.interval <= 0 {
		zap.L().Info("ledger reconciliation disabled")
		return
	}
	zap.L().Info("ledger reconciliation started", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping reconciliation")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				zap.L().Error("reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep verifies every materialized balance and returns how many disagree
// with their entries.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}()

	var (
		mismatches atomic.Int64
		pending    sync.WaitGroup
	)
	for offset := 0; ; offset += s.pageSize {
		keys, err := s.ledger.ListAccounts(ctx, s.pageSize, offset)
		if err != nil {
			pending.Wait()
			return int(mismatches.Load()), err
		}

		var g errgroup.Group
		for _, key := range keys {
			key := key
			pending.Add(1)
			g.Go(func() error {
				err := s.workerPool.AddTask(ctx, func() error {
					defer pending.Done()
					return s.verify(ctx, key, &mismatches)
				})
				if err != nil {
					pending.Done()
				}
				return err
			})
		}
		if err := g.Wait(); err != nil {
			pending.Wait()
			return int(mismatches.Load()), err
		}
		if len(keys) < s.pageSize {
			break
		}
	}
	pending.Wait()

	found := int(mismatches.Load())
	metrics.ReconcileMismatches.Set(float64(found))
	zap.L().Info("reconciliation sweep finished", zap.Int("mismatches", found), zap.Duration("took", time.Since(start)))
	return found, nil
}

func (s *Service) verify(ctx context.Context, key domain.AccountKey, mismatches *atomic.Int64) error {
	rec, err := s.ledger.Verify(ctx, key)
	if err != nil {
		return err
	}
	if !rec.Consistent {
		mismatches.Add(1)
		zap.L().Error("ledger mismatch",
			zap.String("account", rec.AccountID.String()),
			zap.String("kind", string(rec.Kind)),
			zap.String("balance", rec.Balance.String()),
			zap.String("credited", rec.Credited.String()),
			zap.String("debited", rec.Debited.String()))
	}
	return nil
}
