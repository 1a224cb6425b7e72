package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

//go:generate mockgen -source=txmanager.go -destination=mock_txmanager.go -package=pg

type TransactionalFn func(ctx context.Context) error

type TXManager interface {
	Begin(ctx context.Context, fn TransactionalFn) error
}

const (
	defaultMaxRetries = 3
	defaultRetryBase  = 25 * time.Millisecond
)

type txKey struct{}

type txState struct {
	tx    pgx.Tx
	hooks []func(ctx context.Context)
}

type Manager struct {
	db         Beginner
	opts       pgx.TxOptions
	maxRetries uint64
	retryBase  time.Duration
}

type Option func(*Manager)

func WithRetries(maxRetries uint64, base time.Duration) Option {
	return func(m *Manager) {
		m.maxRetries = maxRetries
		m.retryBase = base
	}
}

func WithTxOptions(opts pgx.TxOptions) Option {
	return func(m *Manager) {
		m.opts = opts
	}
}

func NewTXManager(db Beginner, opts ...Option) *Manager {
	m := &Manager{
		db:         db,
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin runs fn in a transaction. A call made while a transaction is already
// carried by ctx joins it. The outermost call retries fn on serialization
// failures, deadlocks and optimistic version conflicts, then runs the
// after-commit hooks registered during the successful attempt.
func (m *Manager) Begin(ctx context.Context, fn TransactionalFn) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	var hooks []func(ctx context.Context)
	backoff := retry.WithMaxRetries(m.maxRetries, retry.NewExponential(m.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		h, err := m.run(ctx, fn)
		if err != nil {
			if IsRetryable(err) {
				zap.L().Warn("transaction conflict, retrying", zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}
		hooks = h
		return nil
	})
	if err != nil {
		if IsRetryable(err) && !errors.Is(err, domain.ErrConcurrencyConflict) {
			return fmt.Errorf("%w: %w", domain.ErrConcurrencyConflict, err)
		}
		return err
	}

	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}

func (m *Manager) run(ctx context.Context, fn TransactionalFn) ([]func(ctx context.Context), error) {
	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		zap.L().Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	state := &txState{tx: tx}
	if err := fn(context.WithValue(ctx, txKey{}, state)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zap.L().Error("failed to rollback transaction", zap.Error(rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		zap.L().Error("failed to commit transaction", zap.Error(err))
		return nil, err
	}
	return state.hooks, nil
}

// AfterCommit defers hook until the transaction carried by ctx commits. It is
// dropped if the transaction rolls back. Without a transaction the hook runs
// immediately.
func AfterCommit(ctx context.Context, hook func(ctx context.Context)) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.hooks = append(state.hooks, hook)
		return
	}
	hook(ctx)
}

func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	state, ok := ctx.Value(txKey{}).(*txState)
	if !ok || state.tx == nil {
		return nil, false
	}
	return state.tx, true
}
