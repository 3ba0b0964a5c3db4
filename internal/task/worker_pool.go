package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// WorkerPool runs tasks from a Source on a fixed number of goroutines. Every
// task receives the pool's context, which Stop cancels.
type WorkerPool struct {
	source      Source
	workerCount int
	onError     func(task Task, err error)
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WorkerPoolConfig configures a WorkerPool.
type WorkerPoolConfig struct {
	// WorkerCount below 1 is raised to 1.
	WorkerCount int
}

func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{WorkerCount: 2}
}

// NewWorkerPool creates a stopped pool reading from source.
func NewWorkerPool(source Source, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	count := config.WorkerCount
	if count < 1 {
		logger.Warn("worker count below 1, using a single worker",
			slog.Int("configured", config.WorkerCount))
		count = 1
	}

	// Tasks run under the pool's context, not the caller's
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		source:      source,
		workerCount: count,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetErrorHandler registers a callback for failed or panicking tasks. Call it
// before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.onError = handler
}

func (p *WorkerPool) Start() {
	p.logger.Info("worker pool starting", slog.Int("workers", p.workerCount))
	p.wg.Add(p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		go p.run(i)
	}
}

// Stop cancels running tasks and waits for the workers. Queued tasks that
// no worker picked up stay in the source; TaskRunner aborts them.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Wait blocks until the source is closed and drained.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) run(worker int) {
	defer p.wg.Done()

	tasks := p.source.Tasks()
	for {
		// A cancelled pool takes no further tasks, even if some are ready
		if p.ctx.Err() != nil {
			return
		}

		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-tasks:
			// Source closed and drained
			if !ok {
				return
			}
			p.handle(worker, t)
		}
	}
}

func (p *WorkerPool) handle(worker int, t Task) {
	err := p.safeExecute(t)
	if err == nil {
		p.logger.Debug("task done",
			slog.String("task_type", t.Type()),
			slog.Int("worker", worker))
		return
	}

	// Log the failure, then hand it to the error handler if one is set
	p.logger.Error("task failed",
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("worker", worker),
		slog.String("error", err.Error()))
	if p.onError != nil {
		p.onError(t, err)
	}
}

func (p *WorkerPool) safeExecute(t Task) (err error) {
	defer func() {
		// Turn a panic into an error so the worker survives
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.Type(), r)
		}
	}()
	return t.Execute(p.ctx)
}
