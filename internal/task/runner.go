package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrRunnerStopped is returned by Submit after Stop.
var ErrRunnerStopped = errors.New("task runner is stopped")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner accepts work and runs it asynchronously.
type Runner interface {
	// Submit queues task. It fails fast when the queue is full or stopped.
	Submit(ctx context.Context, task Task) error
}

// TaskRunner wires a TaskQueue to a WorkerPool.
type TaskRunner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewTaskRunner creates a new TaskRunner. Call Start before submitting.
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	return &TaskRunner{
		queue:  queue,
		pool:   pool,
		logger: logger,
	}
}

// SetErrorHandler allows setting a custom error handler function.
// It must be called before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Start begins processing tasks. Calling it more than once has no effect.
func (r *TaskRunner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true
	r.pool.Start()
}

// Submit adds a new task to the queue
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("submit task: %w", err)
	}

	// Refuse work once Stop has begun
	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return ErrRunnerStopped
	}

	// Enqueue never blocks; a full queue is reported to the caller
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("submit task: %w", err)
	}
	return nil
}

// Go wraps fn in a FuncTask and submits it.
func (r *TaskRunner) Go(ctx context.Context, taskType string, fn func(ctx context.Context) error) error {
	return r.Submit(ctx, NewFuncTask(taskType, fn))
}

// Stop closes the queue and waits for queued tasks to finish. If ctx ends
// first, running tasks are cancelled and Stop returns ctx's error. Tasks left
// in the queue never run; those implementing Aborter are aborted with
// ErrRunnerStopped.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	// Refuse new work; queued tasks stay readable
	r.queue.Close()

	// Without workers nothing will drain the queue
	if !started {
		r.abortQueued()
		return nil
	}

	// Wait for the workers to empty the queue in the background
	drained := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		// Every queued task ran
		r.pool.Stop()
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		// Deadline reached: cancel running tasks, then abort what is left
		r.pool.Stop()
		r.logger.Warn("task runner stopped before queue drained", "remaining", r.queue.Len())
		r.abortQueued()
		return ctx.Err()
	}
}

// abortQueued empties the closed queue. It must only run once no worker
// reads from the queue.
func (r *TaskRunner) abortQueued() {
	aborted := 0
	for t := range r.queue.Tasks() {
		aborted++
		if a, ok := t.(Aborter); ok {
			a.Abort(ErrRunnerStopped)
		}
	}
	if aborted > 0 {
		r.logger.Warn("aborted queued tasks", "count", aborted)
	}
}
