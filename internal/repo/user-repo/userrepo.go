package userrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/pg"
)

const roleAdmin = "admin"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// IsAdmin answers the admin authorization check. Unknown users are not admins.
func (repo *Repository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var role string
	err := repo.db.QueryRow(ctx, "SELECT role FROM profiles WHERE id = $1", userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		zap.L().Error("can't read user role", zap.Error(err))
		return false, err
	}
	return role == roleAdmin, nil
}
