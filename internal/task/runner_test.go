package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRunner_RunsSubmittedTasks(t *testing.T) {
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 2, QueueSize: 10}, setupTestLogger())
	runner.Start()

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, runner.Go(context.Background(), "count", func(context.Context) error {
			count.Add(1)
			return nil
		}))
	}

	require.NoError(t, runner.Stop(context.Background()))
	assert.Equal(t, int32(5), count.Load())
}

func TestTaskRunner_SubmitAfterStop(t *testing.T) {
	runner := NewTaskRunner(DefaultTaskRunnerConfig(), setupTestLogger())
	runner.Start()
	require.NoError(t, runner.Stop(context.Background()))

	err := runner.Submit(context.Background(), newNoopTask())
	assert.ErrorIs(t, err, ErrRunnerStopped)

	// Stop is idempotent.
	assert.NoError(t, runner.Stop(context.Background()))
}

func TestTaskRunner_SubmitWithCancelledContext(t *testing.T) {
	runner := NewTaskRunner(DefaultTaskRunnerConfig(), setupTestLogger())
	runner.Start()
	defer func() { _ = runner.Stop(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, runner.Submit(ctx, newNoopTask()), context.Canceled)
}

func TestTaskRunner_QueueFull(t *testing.T) {
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, setupTestLogger())

	require.NoError(t, runner.Submit(context.Background(), newNoopTask()))
	assert.ErrorIs(t, runner.Submit(context.Background(), newNoopTask()), ErrQueueFull)

	require.NoError(t, runner.Stop(context.Background()))
}

func TestTaskRunner_StopDeadline(t *testing.T) {
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, setupTestLogger())
	runner.Start()

	started := make(chan struct{})
	require.NoError(t, runner.Go(context.Background(), "slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, runner.Stop(ctx), context.DeadlineExceeded)
}

func TestTaskRunner_ErrorHandler(t *testing.T) {
	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, setupTestLogger())
	failed := make(chan Task, 1)
	runner.SetErrorHandler(func(task Task, err error) { failed <- task })
	runner.Start()
	defer func() { _ = runner.Stop(context.Background()) }()

	task := NewFuncTask("fail", func(context.Context) error { return assert.AnError })
	require.NoError(t, runner.Submit(context.Background(), task))

	select {
	case got := <-failed:
		assert.Equal(t, task.ID(), got.ID())
		assert.Equal(t, TaskStatusFailed, got.(*FuncTask).Status())
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for error handler")
	}
}

func TestTaskRunner_StopAbortsQueuedTasks(t *testing.T) {
	t.Run("never started", func(t *testing.T) {
		runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 2}, setupTestLogger())

		var aborted []error
		for i := 0; i < 2; i++ {
			task := NewFuncTask("queued", func(context.Context) error { return nil }).
				OnAbort(func(err error) { aborted = append(aborted, err) })
			require.NoError(t, runner.Submit(context.Background(), task))
		}

		require.NoError(t, runner.Stop(context.Background()))
		require.Len(t, aborted, 2)
		for _, err := range aborted {
			assert.ErrorIs(t, err, ErrRunnerStopped)
		}
	})

	t.Run("deadline reached", func(t *testing.T) {
		runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, setupTestLogger())
		runner.Start()

		started := make(chan struct{})
		require.NoError(t, runner.Go(context.Background(), "slow", func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}))
		<-started

		var abortErr error
		ran := false
		queued := NewFuncTask("queued", func(context.Context) error {
			ran = true
			return nil
		}).OnAbort(func(err error) { abortErr = err })
		require.NoError(t, runner.Submit(context.Background(), queued))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, runner.Stop(ctx), context.DeadlineExceeded)

		assert.False(t, ran)
		assert.ErrorIs(t, abortErr, ErrRunnerStopped)
		assert.Equal(t, TaskStatusFailed, queued.Status())
	})
}
