package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus tracks where a task is in its lifecycle.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeRecordOutcome writes one card outcome to the stats store.
const TaskTypeRecordOutcome = "record_outcome"

// Task is one unit of deferred work. Execute is called at most once, from a
// single worker goroutine, with a context that ends when the pool stops.
type Task interface {
	ID() uuid.UUID
	Type() string
	// Payload is the JSON form of the task input. The pool logs it, with
	// Status, when the task fails.
	Payload() []byte
	Status() TaskStatus
	Execute(ctx context.Context) error
}

// Source hands queued tasks to workers. The channel is closed once the
// queue has been closed and emptied.
type Source interface {
	Tasks() <-chan Task
}

// Sink accepts tasks without blocking the caller.
type Sink interface {
	Enqueue(task Task) error
	Close()
}
