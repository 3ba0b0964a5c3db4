package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded, non-blocking FIFO of tasks. Enqueue never waits:
// a full queue is reported as ErrQueueFull so callers can fail fast.
type TaskQueue struct {
	mu     sync.RWMutex
	ch     chan Task
	closed bool
	logger *slog.Logger
}

var _ Source = (*TaskQueue)(nil)

// NewTaskQueue creates a queue holding at most size tasks. A negative size is
// treated as zero, which makes every Enqueue without a waiting worker fail.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if size < 0 {
		size = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		ch:     make(chan Task, size),
		logger: logger.With(slog.String("component", "task_queue")),
	}
}

// Enqueue adds t, or returns ErrQueueClosed or a wrapped ErrQueueFull.
func (q *TaskQueue) Enqueue(t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send: fail fast instead of waiting for a worker
	select {
	case q.ch <- t:
	default:
		return fmt.Errorf("%w: %d tasks waiting", ErrQueueFull, cap(q.ch))
	}

	q.logger.Debug("task queued",
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("depth", len(q.ch)))
	return nil
}

// Close stops further Enqueue calls. Tasks already queued stay readable from
// Tasks until drained. Closing twice is a no-op.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	// Closing the channel lets workers finish what is queued and exit
	q.closed = true
	close(q.ch)
	q.logger.Debug("task queue closed", slog.Int("remaining", len(q.ch)))
}

// Len returns the number of tasks waiting for a worker.
func (q *TaskQueue) Len() int {
	return len(q.ch)
}

// Tasks implements Source.
func (q *TaskQueue) Tasks() <-chan Task {
	return q.ch
}
