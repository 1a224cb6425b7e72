package contractrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/pg"
)

// Repository is the settlement core's window onto the marketplace contracts
// table: it reads parties and price and writes the status column only.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) find(ctx context.Context, query string, id uuid.UUID) (*domain.Contract, error) {
	var c domain.Contract
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.ClientID, &c.ProviderID, &c.AgreedPrice, &c.Status, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find contract", zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	query := `
        SELECT id, client_id, provider_id, agreed_price, status, updated_at
        FROM contracts
        WHERE id = $1
    `
	return r.find(ctx, query, id)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus, at time.Time) error {
	query := `
        UPDATE contracts
        SET status = $2, updated_at = $3
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, status, at)
	if err != nil {
		zap.L().Error("failed to update contract status", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("contract %s", id)
	}
	return nil
}
