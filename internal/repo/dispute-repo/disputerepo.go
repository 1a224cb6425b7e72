package disputerepo

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
	activeContractIndex = "disputes_active_contract_uidx"

	selectDispute = `
        SELECT id, contract_id, escrow_id, raised_by, against_user, reason, description, status, resolution,
               client_percent, influencer_percent, resolved_by, resolved_at, created_at, updated_at
        FROM disputes
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

func scanDispute(row pgx.Row) (*domain.Dispute, error) {
	var d domain.Dispute
	err := row.Scan(&d.ID, &d.ContractID, &d.EscrowID, &d.RaisedBy, &d.AgainstUser, &d.Reason, &d.Description, &d.Status, &d.Resolution,
		&d.ClientPercent, &d.InfluencerPercent, &d.ResolvedBy, &d.ResolvedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Create(ctx context.Context, d *domain.Dispute) error {
	query := `
        INSERT INTO disputes (id, contract_id, escrow_id, raised_by, against_user, reason, description, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query, d.ID, d.ContractID, d.EscrowID, d.RaisedBy, d.AgainstUser, d.Reason, d.Description, d.Status).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err, activeContractIndex) {
			return fmt.Errorf("%w: contract %s already has an active dispute", domain.ErrAlreadyExists, d.ContractID)
		}
		zap.L().Error("can't save dispute", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) find(ctx context.Context, query string, arg any) (*domain.Dispute, error) {
	d, err := scanDispute(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find dispute", zap.Error(err))
		return nil, err
	}
	return d, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Dispute, error) {
	return r.find(ctx, selectDispute+` WHERE id = $1`, id)
}

func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Dispute, error) {
	return r.find(ctx, selectDispute+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) FindActiveByContract(ctx context.Context, contractID uuid.UUID) (*domain.Dispute, error) {
	return r.find(ctx, selectDispute+` WHERE contract_id = $1 AND status IN ('OPEN', 'UNDER_REVIEW')`, contractID)
}

func (r *Repository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Dispute, error) {
	rows, err := r.db.Query(ctx, selectDispute+` WHERE contract_id = $1 ORDER BY created_at DESC`, contractID)
	if err != nil {
		zap.L().Error("can't list disputes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var disputes []domain.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			zap.L().Error("can't scan dispute row", zap.Error(err))
			return nil, err
		}
		disputes = append(disputes, *d)
	}
	return disputes, rows.Err()
}

func (r *Repository) Update(ctx context.Context, d *domain.Dispute) error {
	query := `
        UPDATE disputes
        SET status = $2, resolution = $3, client_percent = $4, influencer_percent = $5,
            resolved_by = $6, resolved_at = $7, updated_at = $8
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, d.ID, d.Status, d.Resolution, d.ClientPercent, d.InfluencerPercent, d.ResolvedBy, d.ResolvedAt, d.UpdatedAt)
	if err != nil {
		zap.L().Error("failed to update dispute", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("dispute %s", d.ID)
	}
	return nil
}

func (r *Repository) AddEvidence(ctx context.Context, e *domain.Evidence) error {
	query := `
        INSERT INTO dispute_evidence (id, dispute_id, submitted_by, url, note)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query, e.ID, e.DisputeID, e.SubmittedBy, e.URL, e.Note).Scan(&e.CreatedAt)
	if err != nil {
		zap.L().Error("can't save dispute evidence", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListEvidence(ctx context.Context, disputeID uuid.UUID) ([]domain.Evidence, error) {
	query := `
        SELECT id, dispute_id, submitted_by, url, note, created_at
        FROM dispute_evidence
        WHERE dispute_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, disputeID)
	if err != nil {
		zap.L().Error("can't list dispute evidence", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var evidence []domain.Evidence
	for rows.Next() {
		var e domain.Evidence
		if err := rows.Scan(&e.ID, &e.DisputeID, &e.SubmittedBy, &e.URL, &e.Note, &e.CreatedAt); err != nil {
			zap.L().Error("can't scan dispute evidence row", zap.Error(err))
			return nil, err
		}
		evidence = append(evidence, e)
	}
	return evidence, rows.Err()
}
