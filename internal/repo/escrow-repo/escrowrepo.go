package escrowrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/pg"
)

const (
	contractConstraint = "escrow_transactions_contract_id_key"

	selectEscrow = `
        SELECT id, contract_id, client_id, provider_id, gross_amount, gateway_fee_percent, gateway_fee,
               platform_fee_percent, platform_fee, amount_after_gateway, provider_payout, platform_earnings,
               currency, escrow_status, payment_status, gateway_order_id, gateway_payment_id, gateway_signature,
               payment_captured_at, work_submitted_at, approved_at, paid_out_at, disputed_at, refunded_at, closed_at,
               version, created_at, updated_at
        FROM escrow_transactions
    `
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanEscrow(row pgx.Row) (*domain.Escrow, error) {
	var e domain.Escrow
	err := row.Scan(
		&e.ID, &e.ContractID, &e.ClientID, &e.ProviderID, &e.GrossAmount, &e.GatewayFeePercent, &e.GatewayFee,
		&e.PlatformFeePercent, &e.PlatformFee, &e.AmountAfterGateway, &e.ProviderPayout, &e.PlatformEarnings,
		&e.Currency, &e.Status, &e.PaymentStatus, &e.GatewayOrderID, &e.GatewayPaymentID, &e.GatewaySignature,
		&e.PaymentCapturedAt, &e.WorkSubmittedAt, &e.ApprovedAt, &e.PaidOutAt, &e.DisputedAt, &e.RefundedAt, &e.ClosedAt,
		&e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) Create(ctx context.Context, e *domain.Escrow) error {
	query := `
        INSERT INTO escrow_transactions (
            id, contract_id, client_id, provider_id, gross_amount, gateway_fee_percent, gateway_fee,
            platform_fee_percent, platform_fee, amount_after_gateway, provider_payout, platform_earnings,
            currency, escrow_status, payment_status, gateway_order_id
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING version, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		e.ID, e.ContractID, e.ClientID, e.ProviderID, e.GrossAmount, e.GatewayFeePercent, e.GatewayFee,
		e.PlatformFeePercent, e.PlatformFee, e.AmountAfterGateway, e.ProviderPayout, e.PlatformEarnings,
		e.Currency, e.Status, e.PaymentStatus, e.GatewayOrderID,
	).Scan(&e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err, contractConstraint) {
			return fmt.Errorf("%w: escrow for contract %s", domain.ErrAlreadyExists, e.ContractID)
		}
		zap.L().Error("failed to create escrow", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) get(ctx context.Context, query string, arg any) (*domain.Escrow, error) {
	escrow, err := scanEscrow(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get escrow", zap.Error(err))
		return nil, err
	}
	return escrow, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Escrow, error) {
	return r.get(ctx, selectEscrow+` WHERE id = $1`, id)
}

// GetForUpdate reads the escrow and holds its row lock until the
// surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Escrow, error) {
	return r.get(ctx, selectEscrow+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) GetByContract(ctx context.Context, contractID uuid.UUID) (*domain.Escrow, error) {
	return r.get(ctx, selectEscrow+` WHERE contract_id = $1`, contractID)
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Escrow, error) {
	rows, err := r.db.Query(ctx, selectEscrow+` WHERE client_id = $1 OR provider_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		zap.L().Error("failed to list escrows", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var escrows []domain.Escrow
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			zap.L().Error("failed to scan escrow row", zap.Error(err))
			return nil, err
		}
		escrows = append(escrows, *e)
	}
	return escrows, rows.Err()
}

// Update writes the mutable part of the escrow if nobody changed it since it
// was read, and bumps its version.
func (r *Repository) Update(ctx context.Context, e *domain.Escrow) error {
	query := `
        UPDATE escrow_transactions
        SET escrow_status = $3, payment_status = $4, gateway_payment_id = $5, gateway_signature = $6,
            payment_captured_at = $7, work_submitted_at = $8, approved_at = $9, paid_out_at = $10,
            disputed_at = $11, refunded_at = $12, closed_at = $13, updated_at = $14, version = version + 1
        WHERE id = $1 AND version = $2
    `
	tag, err := r.db.Exec(ctx, query,
		e.ID, e.Version, e.Status, e.PaymentStatus, e.GatewayPaymentID, e.GatewaySignature,
		e.PaymentCapturedAt, e.WorkSubmittedAt, e.ApprovedAt, e.PaidOutAt,
		e.DisputedAt, e.RefundedAt, e.ClosedAt, e.UpdatedAt,
	)
	if err != nil {
		zap.L().Error("failed to update escrow", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: escrow %s changed since version %d", domain.ErrConcurrencyConflict, e.ID, e.Version)
	}
	e.Version++
	return nil
}
