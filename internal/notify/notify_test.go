package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

func TestWorker_Work(t *testing.T) {
	args := NotificationArgs{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Title:   "Payment released",
		Message: "876.40 INR was added to your wallet.",
		Type:    domain.NotifyPayment,
		Link:    "/escrows/1",
	}

	tests := []struct {
		name      string
		storeErr  error
		expectErr bool
	}{
		{name: "Notification stored"},
		{name: "Store fails and job is retried", storeErr: errors.New("db down"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := NewMockStore(ctrl)
			store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, n *domain.Notification) error {
				assert.Equal(t, args.ID, n.ID)
				assert.Equal(t, args.UserID, n.UserID)
				assert.Equal(t, args.Title, n.Title)
				assert.Equal(t, args.Type, n.Type)
				return tt.storeErr
			})

			err := NewWorker(store).Work(context.Background(), &river.Job[NotificationArgs]{
				JobRow: &rivertype.JobRow{ID: 1},
				Args:   args,
			})
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueue_Notify(t *testing.T) {
	userID := uuid.New()

	t.Run("Enqueues with a fresh id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inserter := NewMockInserter(ctrl)
		inserter.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ context.Context, jobArgs river.JobArgs, _ *river.InsertOpts) (*rivertype.JobInsertResult, error) {
				args, ok := jobArgs.(NotificationArgs)
				assert.True(t, ok)
				assert.NotEqual(t, uuid.Nil, args.ID)
				assert.Equal(t, userID, args.UserID)
				assert.Equal(t, "notification", args.Kind())
				return &rivertype.JobInsertResult{}, nil
			})

		NewQueue(inserter).Notify(context.Background(), domain.Notification{UserID: userID, Title: "t", Type: domain.NotifyWallet})
	})

	t.Run("Enqueue failure is swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inserter := NewMockInserter(ctrl)
		inserter.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("queue down"))

		assert.NotPanics(t, func() {
			NewQueue(inserter).Notify(context.Background(), domain.Notification{UserID: userID})
		})
	})
}

type fakeTx struct {
	pgx.Tx
	savepoint  *fakeTx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	f.savepoint = &fakeTx{}
	return f.savepoint, nil
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

func TestQueue_NotifyInTransaction(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name         string
		insertErr    error
		wantCommit   bool
		wantRollback bool
	}{
		{name: "Enqueued in the caller's transaction", wantCommit: true},
		{name: "Failed insert rolls back only its savepoint", insertErr: errors.New("queue down"), wantRollback: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			inserter := NewMockInserter(ctrl)
			outer := &fakeTx{}

			inserter.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Nil()).
				DoAndReturn(func(_ context.Context, tx pgx.Tx, jobArgs river.JobArgs, _ *river.InsertOpts) (*rivertype.JobInsertResult, error) {
					assert.Same(t, outer.savepoint, tx)
					args, ok := jobArgs.(NotificationArgs)
					assert.True(t, ok)
					assert.Equal(t, userID, args.UserID)
					if tt.insertErr != nil {
						return nil, tt.insertErr
					}
					return &rivertype.JobInsertResult{}, nil
				})

			queue := NewQueue(inserter)
			queue.txFrom = func(context.Context) (pgx.Tx, bool) { return outer, true }
			queue.Notify(context.Background(), domain.Notification{UserID: userID, Title: "t", Type: domain.NotifyPayment})

			require.NotNil(t, outer.savepoint)
			assert.Equal(t, tt.wantCommit, outer.savepoint.committed)
			assert.Equal(t, tt.wantRollback, outer.savepoint.rolledBack)
			assert.False(t, outer.committed)
			assert.False(t, outer.rolledBack)
		})
	}
}
