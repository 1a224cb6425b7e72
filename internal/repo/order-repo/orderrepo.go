package orderrepo

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
	gatewayPaymentConstraint = "payment_orders_gateway_payment_id_key"

	selectOrder = `
        SELECT id, user_id, intent, amount, currency, escrow_id, credit_kind, credit_quantity,
               gateway_order_id, gateway_payment_id, status, created_at, captured_at
        FROM payment_orders
    `
)

// Repository stores payment orders. The settlement intent of an order is
// flattened into the intent, escrow_id, credit_kind and credit_quantity columns.
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

type intentColumns struct {
	intent         domain.IntentType
	escrowID       *uuid.UUID
	creditKind     *string
	creditQuantity *int64
}

func flattenIntent(intent domain.SettlementIntent) (intentColumns, error) {
	switch v := intent.(type) {
	case domain.EscrowFunding:
		id := v.EscrowID
		return intentColumns{intent: v.Type(), escrowID: &id}, nil
	case domain.WalletTopUp:
		return intentColumns{intent: v.Type()}, nil
	case domain.CreditPurchase:
		kind := string(v.Kind)
		qty := v.Quantity
		return intentColumns{intent: v.Type(), creditKind: &kind, creditQuantity: &qty}, nil
	}
	return intentColumns{}, domain.Validationf("unknown settlement intent %T", intent)
}

func (c intentColumns) decode() (domain.SettlementIntent, error) {
	switch c.intent {
	case domain.IntentEscrowFunding:
		if c.escrowID == nil {
			return nil, fmt.Errorf("escrow funding order without escrow id")
		}
		return domain.EscrowFunding{EscrowID: *c.escrowID}, nil
	case domain.IntentWalletTopUp:
		return domain.WalletTopUp{}, nil
	case domain.IntentCreditPurchase:
		if c.creditKind == nil || c.creditQuantity == nil {
			return nil, fmt.Errorf("credit purchase order without kind or quantity")
		}
		return domain.CreditPurchase{Kind: domain.BalanceKind(*c.creditKind), Quantity: *c.creditQuantity}, nil
	}
	return nil, fmt.Errorf("unknown intent %q", c.intent)
}

func scanOrder(row pgx.Row) (*domain.PaymentOrder, error) {
	var (
		o    domain.PaymentOrder
		cols intentColumns
	)
	err := row.Scan(&o.ID, &o.UserID, &cols.intent, &o.Amount, &o.Currency, &cols.escrowID, &cols.creditKind, &cols.creditQuantity,
		&o.GatewayOrderID, &o.GatewayPaymentID, &o.Status, &o.CreatedAt, &o.CapturedAt)
	if err != nil {
		return nil, err
	}
	if o.Intent, err = cols.decode(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) Create(ctx context.Context, order *domain.PaymentOrder) error {
	cols, err := flattenIntent(order.Intent)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO payment_orders (id, user_id, intent, amount, currency, escrow_id, credit_kind, credit_quantity, gateway_order_id, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, query,
			order.ID, order.UserID, cols.intent, order.Amount, order.Currency,
			cols.escrowID, cols.creditKind, cols.creditQuantity, order.GatewayOrderID, order.Status,
		).Scan(&order.CreatedAt)
		if err != nil {
			zap.L().Error("can't save payment order", zap.Error(err))
			return err
		}
		return nil
	})
}

func (r *Repository) find(ctx context.Context, query string, arg any) (*domain.PaymentOrder, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find payment order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

// LockByGatewayOrderID reads the order and holds its row lock, so concurrent
// captures of one order serialize.
func (r *Repository) LockByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error) {
	return r.find(ctx, selectOrder+` WHERE gateway_order_id = $1 FOR UPDATE`, gatewayOrderID)
}

func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.PaymentOrder, error) {
	rows, err := r.db.Query(ctx, selectOrder+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		zap.L().Error("can't get payment orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.PaymentOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan payment order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// MarkCaptured binds the gateway payment id to a still uncaptured order.
func (r *Repository) MarkCaptured(ctx context.Context, order *domain.PaymentOrder) error {
	query := `
        UPDATE payment_orders
        SET status = 'CAPTURED', gateway_payment_id = $2, captured_at = $3
        WHERE id = $1 AND status = 'CREATED'
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		tag, err := r.db.Exec(ctx, query, order.ID, order.GatewayPaymentID, order.CapturedAt)
		if err != nil {
			if pg.IsUniqueViolation(err, gatewayPaymentConstraint) {
				return fmt.Errorf("%w: gateway payment already used", domain.ErrAlreadyExists)
			}
			zap.L().Error("failed to capture payment order", zap.Error(err))
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: payment order %s already captured", domain.ErrConcurrencyConflict, order.ID)
		}
		order.Status = domain.OrderCaptured
		return nil
	})
}
