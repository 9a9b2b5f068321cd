package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrTaskPanicked is reported to the error handler when a task panics.
var ErrTaskPanicked = errors.New("task panicked")

// WorkerPoolConfig configures a WorkerPool.
type WorkerPoolConfig struct {
	// WorkerCount below 1 is treated as 1.
	WorkerCount int
}

// PoolStats counts the tasks a pool has finished.
type PoolStats struct {
	Workers   int   `json:"workers"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// WorkerPool runs tasks from a Source on a fixed number of goroutines.
// A task failure or panic is logged, handed to the error handler and then
// forgotten; tasks are never retried.
type WorkerPool struct {
	source  Source
	workers int
	logger  *slog.Logger

	// ctx is handed to every task and cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc

	wg        sync.WaitGroup
	startOnce sync.Once

	onError func(task Task, err error)

	succeeded atomic.Int64
	failed    atomic.Int64
}

// NewWorkerPool creates a pool that has not started yet.
func NewWorkerPool(source Source, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workers := config.WorkerCount
	if workers < 1 {
		logger.Warn("worker count must be positive, using a single worker",
			slog.Int("configured", config.WorkerCount))
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		source:  source,
		workers: workers,
		logger:  logger.With(slog.String("component", "worker_pool")),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetErrorHandler registers fn to be called with every failed task.
// It must be set before Start.
func (p *WorkerPool) SetErrorHandler(fn func(task Task, err error)) {
	p.onError = fn
}

// Start launches the workers. Later calls do nothing.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", slog.Int("workers", p.workers))
		p.wg.Add(p.workers)
		for i := range p.workers {
			go p.run(i)
		}
	})
}

// Stop cancels running tasks and waits for the workers to exit. Anything
// still queued is abandoned.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped", slog.Any("stats", p.Stats()))
}

// Drain waits until the workers have emptied a closed Source. When ctx ends
// first the pool is stopped and ctx's error returned.
func (p *WorkerPool) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool drained", slog.Any("stats", p.Stats()))
		return nil
	case <-ctx.Done():
		p.logger.Warn("drain deadline reached, stopping workers")
		p.Stop()
		return ctx.Err()
	}
}

// Stats returns how many tasks have finished so far.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.workers,
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
	}
}

func (p *WorkerPool) run(worker int) {
	defer p.wg.Done()

	tasks := p.source.Tasks()
	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-tasks:
			if !ok {
				p.logger.Debug("source exhausted", slog.Int("worker", worker))
				return
			}
			p.handle(t, worker)
		}
	}
}

func (p *WorkerPool) handle(t Task, worker int) {
	log := p.logger.With(
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("worker", worker),
	)

	err := p.execute(t)
	if err == nil {
		p.succeeded.Add(1)
		log.Debug("task completed")
		return
	}

	p.failed.Add(1)
	log.Error("task failed",
		slog.String("error", err.Error()),
		slog.String("task_status", string(t.Status())),
		slog.String("payload", string(t.Payload())))
	if p.onError != nil {
		p.onError(t, err)
	}
}

// execute turns a panic inside the task into ErrTaskPanicked so one bad
// outcome cannot take a worker down.
func (p *WorkerPool) execute(t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return t.Execute(p.ctx)
}
