package balancerepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/pg"
)

const settlementIndex = "ledger_entries_settlement_uidx"

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var b domain.Balance
	err := row.Scan(&b.AccountID, &b.Kind, &b.Balance, &b.LockedBalance, &b.TotalCredited, &b.TotalDebited, &b.LastTransactionAt, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(&e.ID, &e.AccountID, &e.Kind, &e.Direction, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
		&e.Description, &e.Resource.Type, &e.Resource.ID, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Lock returns the balance row for key locked until the surrounding
// transaction ends, creating an empty row first if the account has none.
func (r *Repository) Lock(ctx context.Context, key domain.AccountKey) (*domain.Balance, error) {
	ensure := `
        INSERT INTO balances (account_id, kind)
        VALUES ($1, $2)
        ON CONFLICT (account_id, kind) DO NOTHING
    `
	query := `
        SELECT account_id, kind, balance, locked_balance, total_credited, total_debited, last_transaction_at, created_at
        FROM balances
        WHERE account_id = $1 AND kind = $2
        FOR UPDATE
    `
	var balance *domain.Balance
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := r.db.Exec(ctx, ensure, key.AccountID, key.Kind); err != nil {
			zap.L().Error("failed to ensure balance row", zap.Error(err))
			return err
		}
		b, err := scanBalance(r.db.QueryRow(ctx, query, key.AccountID, key.Kind))
		if err != nil {
			zap.L().Error("failed to lock balance", zap.Error(err))
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (r *Repository) Get(ctx context.Context, key domain.AccountKey) (*domain.Balance, error) {
	query := `
        SELECT account_id, kind, balance, locked_balance, total_credited, total_debited, last_transaction_at, created_at
        FROM balances
        WHERE account_id = $1 AND kind = $2
    `
	balance, err := scanBalance(r.db.QueryRow(ctx, query, key.AccountID, key.Kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get balance", zap.Error(err))
		return nil, err
	}
	return balance, nil
}

func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Balance, error) {
	query := `
        SELECT account_id, kind, balance, locked_balance, total_credited, total_debited, last_transaction_at, created_at
        FROM balances
        WHERE account_id = $1
        ORDER BY kind
    `
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		zap.L().Error("failed to list balances", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			zap.L().Error("failed to scan balance row", zap.Error(err))
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, rows.Err()
}

func (r *Repository) Update(ctx context.Context, balance *domain.Balance) error {
	query := `
        UPDATE balances
        SET balance = $3, total_credited = $4, total_debited = $5, last_transaction_at = $6
        WHERE account_id = $1 AND kind = $2
    `
	tag, err := r.db.Exec(ctx, query,
		balance.AccountID, balance.Kind, balance.Balance, balance.TotalCredited, balance.TotalDebited, balance.LastTransactionAt)
	if err != nil {
		zap.L().Error("failed to update balance", zap.Error(err))
		if pg.IsCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInsufficientBalance, err)
		}
		return err
	}
	if tag.RowsAffected() != 1 {
		return domain.NotFoundf("balance %s/%s", balance.AccountID, balance.Kind)
	}
	return nil
}

func (r *Repository) InsertEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
        INSERT INTO ledger_entries (id, account_id, kind, direction, amount, balance_before, balance_after, description, resource_type, resource_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query,
		entry.ID, entry.AccountID, entry.Kind, entry.Direction, entry.Amount, entry.BalanceBefore, entry.BalanceAfter,
		entry.Description, entry.Resource.Type, entry.Resource.ID,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err, settlementIndex) {
			return fmt.Errorf("%w: ledger entry for %s %s", domain.ErrAlreadyExists, entry.Resource.Type, entry.Resource.ID)
		}
		zap.L().Error("failed to insert ledger entry", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, key domain.AccountKey, limit, offset int) ([]domain.LedgerEntry, error) {
	query := `
        SELECT id, account_id, kind, direction, amount, balance_before, balance_after, description, resource_type, resource_id, created_at
        FROM ledger_entries
        WHERE account_id = $1 AND kind = $2
        ORDER BY created_at DESC, id
        LIMIT $3 OFFSET $4
    `
	rows, err := r.db.Query(ctx, query, key.AccountID, key.Kind, limit, offset)
	if err != nil {
		zap.L().Error("failed to list ledger entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			zap.L().Error("failed to scan ledger entry", zap.Error(err))
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// FindEntry returns the entry a movement of dir on key booked for ref, or nil.
func (r *Repository) FindEntry(ctx context.Context, key domain.AccountKey, dir domain.Direction, ref domain.ResourceRef) (*domain.LedgerEntry, error) {
	query := `
        SELECT id, account_id, kind, direction, amount, balance_before, balance_after, description, resource_type, resource_id, created_at
        FROM ledger_entries
        WHERE account_id = $1 AND kind = $2 AND direction = $3 AND resource_type = $4 AND resource_id = $5
    `
	entry, err := scanEntry(r.db.QueryRow(ctx, query, key.AccountID, key.Kind, dir, ref.Type, ref.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to find ledger entry", zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// Snapshot reads the materialized balance of key together with the sums of
// its entries in one statement, so both come from the same snapshot. A
// missing row reads as zero.
func (r *Repository) Snapshot(ctx context.Context, key domain.AccountKey) (balance, credited, debited decimal.Decimal, err error) {
	query := `
        SELECT
            COALESCE(b.balance, 0),
            COALESCE(SUM(e.amount) FILTER (WHERE e.direction = 'CREDIT'), 0),
            COALESCE(SUM(e.amount) FILTER (WHERE e.direction = 'DEBIT'), 0)
        FROM (SELECT $1::uuid AS account_id, $2::varchar AS kind) k
        LEFT JOIN balances b ON b.account_id = k.account_id AND b.kind = k.kind
        LEFT JOIN ledger_entries e ON e.account_id = k.account_id AND e.kind = k.kind
        GROUP BY b.balance
    `
	err = r.db.QueryRow(ctx, query, key.AccountID, key.Kind).Scan(&balance, &credited, &debited)
	if err != nil {
		zap.L().Error("failed to read balance snapshot", zap.Error(err))
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	return balance, credited, debited, nil
}

func (r *Repository) ListKeys(ctx context.Context, limit, offset int) ([]domain.AccountKey, error) {
	query := `
        SELECT account_id, kind
        FROM balances
        ORDER BY account_id, kind
        LIMIT $1 OFFSET $2
    `
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		zap.L().Error("failed to list balance keys", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var keys []domain.AccountKey
	for rows.Next() {
		var k domain.AccountKey
		if err := rows.Scan(&k.AccountID, &k.Kind); err != nil {
			zap.L().Error("failed to scan balance key", zap.Error(err))
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
