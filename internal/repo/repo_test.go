package repo

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/influmarket/internal/pg"
)

func NewMock(t *testing.T) (*Repositories, pgxmock.PgxPoolIface) {
	ctrl := gomock.NewController(t)
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	mockTxManager := pg.NewMockTXManager(ctrl)
	repo := New(mockDB, mockTxManager)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestNew(t *testing.T) {
	repo, mock := NewMock(t)

	assert.NotNil(t, repo.Balance)
	assert.NotNil(t, repo.Escrow)
	assert.NotNil(t, repo.Contract)
	assert.NotNil(t, repo.Order)
	assert.NotNil(t, repo.Revenue)
	assert.NotNil(t, repo.Dispute)
	assert.NotNil(t, repo.User)
	assert.NotNil(t, repo.Notification)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unmet expectations: %v", err)
	}
}
