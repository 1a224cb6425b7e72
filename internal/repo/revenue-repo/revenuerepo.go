package revenuerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Record stores the platform's cut of a captured escrow. It reports false
// when the escrow already has a revenue record.
func (r *Repository) Record(ctx context.Context, revenue *domain.PlatformRevenue) (bool, error) {
	query := `
        INSERT INTO platform_revenue (id, escrow_id, gateway_payment_id, amount)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT DO NOTHING
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query, revenue.ID, revenue.EscrowID, revenue.GatewayPaymentID, revenue.Amount).Scan(&revenue.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		zap.L().Error("can't save platform revenue", zap.Error(err))
		return false, err
	}
	return true, nil
}
