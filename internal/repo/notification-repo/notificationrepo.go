package notificationrepo

import (
	"context"

	"github.com/google/uuid"
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

// Create is idempotent on the notification id so a retried delivery job
// does not duplicate rows.
func (r *Repository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
        INSERT INTO notifications (id, user_id, title, message, type, link)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, n.ID, n.UserID, n.Title, n.Message, n.Type, n.Link)
	if err != nil {
		zap.L().Error("can't save notification", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	query := `
        SELECT id, user_id, title, message, type, link, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		zap.L().Error("failed to fetch notifications", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Link, &n.CreatedAt); err != nil {
			zap.L().Error("failed to scan notification row", zap.Error(err))
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
