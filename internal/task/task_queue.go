package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// QueueStats is a point-in-time view of a TaskQueue.
type QueueStats struct {
	Pending  int   `json:"pending"`
	Capacity int   `json:"capacity"`
	Enqueued int64 `json:"enqueued"`
	Rejected int64 `json:"rejected"`
}

// TaskQueue is a bounded, non-blocking queue of tasks. Producers are the
// request goroutines reporting outcomes, so Enqueue must never wait on the
// consumers: a full queue rejects the task instead.
type TaskQueue struct {
	tasks  chan Task
	logger *slog.Logger

	mu     sync.Mutex
	closed bool

	enqueued atomic.Int64
	rejected atomic.Int64
}

var (
	_ Source = (*TaskQueue)(nil)
	_ Sink   = (*TaskQueue)(nil)
)

// NewTaskQueue creates a queue holding at most capacity pending tasks.
// A zero capacity queue only accepts a task while a worker is waiting.
func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		tasks:  make(chan Task, max(capacity, 0)),
		logger: logger.With(slog.String("component", "task_queue")),
	}
}

// Enqueue adds task to the queue, failing with ErrQueueFull or ErrQueueClosed.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.rejected.Add(1)
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.enqueued.Add(1)
		q.logger.Debug("task enqueued",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.Int("pending", len(q.tasks)))
		return nil
	default:
		q.rejected.Add(1)
		return fmt.Errorf("%w: %d outcomes already pending", ErrQueueFull, cap(q.tasks))
	}
}

// Close stops accepting tasks. Workers keep receiving what was already
// queued. Closing twice is a no-op.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
	q.logger.Info("task queue closed", slog.Int("pending", len(q.tasks)))
}

// Len reports how many tasks are waiting for a worker.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}

// Tasks is the receive side of the queue.
func (q *TaskQueue) Tasks() <-chan Task {
	return q.tasks
}

// Stats returns the current queue counters.
func (q *TaskQueue) Stats() QueueStats {
	return QueueStats{
		Pending:  len(q.tasks),
		Capacity: cap(q.tasks),
		Enqueued: q.enqueued.Load(),
		Rejected: q.rejected.Load(),
	}
}
