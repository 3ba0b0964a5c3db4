package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a FuncTask.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task is one unit of work run by a worker. Type groups tasks for logging,
// e.g. "scheme.link_card".
type Task interface {
	ID() uuid.UUID
	Type() string
	Execute(ctx context.Context) error
}

// Aborter is implemented by tasks that must learn they were discarded
// without running, such as tasks still queued when a TaskRunner stops.
type Aborter interface {
	Abort(err error)
}

// Source hands queued tasks to workers. The channel is closed once the
// source will produce no more tasks.
type Source interface {
	Tasks() <-chan Task
}

// FuncTask runs a function and tracks its status.
type FuncTask struct {
	id       uuid.UUID
	taskType string
	fn       func(ctx context.Context) error
	onAbort  func(err error)

	mu     sync.Mutex
	status TaskStatus
}

var (
	_ Task    = (*FuncTask)(nil)
	_ Aborter = (*FuncTask)(nil)
)

// NewFuncTask creates a pending task that runs fn.
func NewFuncTask(taskType string, fn func(ctx context.Context) error) *FuncTask {
	return &FuncTask{
		id:       uuid.New(),
		taskType: taskType,
		fn:       fn,
		status:   TaskStatusPending,
	}
}

// OnAbort sets fn to be called if the task is discarded before it runs.
// It must be called before the task is submitted.
func (t *FuncTask) OnAbort(fn func(err error)) *FuncTask {
	t.onAbort = fn
	return t
}

func (t *FuncTask) ID() uuid.UUID { return t.id }

func (t *FuncTask) Type() string { return t.taskType }

// Status reports where the task is in its lifecycle.
func (t *FuncTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Execute runs fn once, marking the task processing, then completed or failed.
func (t *FuncTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	if err := t.fn(ctx); err != nil {
		t.setStatus(TaskStatusFailed)
		return err
	}
	t.setStatus(TaskStatusCompleted)
	return nil
}

// Abort marks a pending task failed and calls the OnAbort hook. It does
// nothing once the task has started.
func (t *FuncTask) Abort(err error) {
	t.mu.Lock()
	if t.status != TaskStatusPending {
		t.mu.Unlock()
		return
	}
	t.status = TaskStatusFailed
	t.mu.Unlock()

	if t.onAbort != nil {
		t.onAbort(err)
	}
}

func (t *FuncTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}
