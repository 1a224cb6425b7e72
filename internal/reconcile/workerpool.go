package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

//go:generate mockgen -source=workerpool.go -destination=mock_workerpool.go -package=reconcile

type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

type Task func() error

// WorkerPool runs tasks on a fixed number of goroutines. Task errors are
// logged; callers that need the outcome record it inside the task.
type WorkerPool struct {
	pool      chan Task
	closeOnce sync.Once
}

func NewWorkerPool(size int) *WorkerPool {
	wp := &WorkerPool{pool: make(chan Task, size)}
	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	for task := range wp.pool {
		if err := task(); err != nil {
			zap.L().Error("reconcile task failed", zap.Error(err))
		}
	}
}

func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.pool <- task:
		return nil
	}
}

// Close stops the workers once the queued tasks drain. No task may be added
// afterwards.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		close(wp.pool)
	})
}
