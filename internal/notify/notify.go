// Package notify delivers user notifications through a river job queue.
// A notification raised inside a transaction is enqueued in that transaction,
// so it becomes visible to workers only if the transaction commits; a river
// worker persists the notification.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/domain"
	"github.com/GlebRadaev/influmarket/internal/pg"
)

//go:generate mockgen -source=notify.go -destination=mock_notify.go -package=notify

type NotificationArgs struct {
	ID      uuid.UUID               `json:"id"`
	UserID  uuid.UUID               `json:"user_id"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Type    domain.NotificationType `json:"type"`
	Link    string                  `json:"link"`
}

func (NotificationArgs) Kind() string { return "notification" }

type Store interface {
	Create(ctx context.Context, n *domain.Notification) error
}

type Worker struct {
	river.WorkerDefaults[NotificationArgs]
	store Store
}

func NewWorker(store Store) *Worker {
	return &Worker{store: store}
}

func (w *Worker) Work(ctx context.Context, job *river.Job[NotificationArgs]) error {
	args := job.Args
	return w.store.Create(ctx, &domain.Notification{
		ID:      args.ID,
		UserID:  args.UserID,
		Title:   args.Title,
		Message: args.Message,
		Type:    args.Type,
		Link:    args.Link,
	})
}

type Inserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
	InsertTx(ctx context.Context, tx pgx.Tx, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

type Queue struct {
	inserter Inserter
	txFrom   func(ctx context.Context) (pgx.Tx, bool)
}

func NewQueue(inserter Inserter) *Queue {
	return &Queue{inserter: inserter, txFrom: pg.TxFromContext}
}

// Notify enqueues n, inside the transaction carried by ctx when there is one.
// Failures are logged and never reach the caller.
func (q *Queue) Notify(ctx context.Context, n domain.Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	args := NotificationArgs{
		ID:      n.ID,
		UserID:  n.UserID,
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
		Link:    n.Link,
	}

	var err error
	if tx, ok := q.txFrom(ctx); ok {
		err = q.insertTx(ctx, tx, args)
	} else {
		_, err = q.inserter.Insert(ctx, args, nil)
	}
	if err != nil {
		zap.L().Error("failed to enqueue notification",
			zap.String("user", n.UserID.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err))
	}
}

// insertTx enqueues under a savepoint so a failed insert leaves the caller's
// transaction usable.
func (q *Queue) insertTx(ctx context.Context, tx pgx.Tx, args NotificationArgs) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := q.inserter.InsertTx(ctx, sp, args, nil); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			zap.L().Warn("failed to roll back notification savepoint", zap.Error(rbErr))
		}
		return err
	}
	return sp.Commit(ctx)
}
