package task

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopTask() *FuncTask {
	return NewFuncTask("noop", func(context.Context) error { return nil })
}

func setupTestLogger() *slog.Logger {
	return logger.Discard()
}

func TestNewTaskQueue(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	assert.NotNil(t, queue)
	assert.Equal(t, 10, cap(queue.ch))
	assert.False(t, queue.closed)

	negative := NewTaskQueue(-1, setupTestLogger())
	assert.Equal(t, 0, cap(negative.ch))
}

func TestEnqueue(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())

	require.NoError(t, queue.Enqueue(newNoopTask()))
	require.NoError(t, queue.Enqueue(newNoopTask()))
	assert.Equal(t, 2, queue.Len())

	overflow := newNoopTask()
	err := queue.Enqueue(overflow)
	assert.ErrorIs(t, err, ErrQueueFull)

	<-queue.ch
	assert.NoError(t, queue.Enqueue(overflow))
}

func TestClose(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())
	task := newNoopTask()
	require.NoError(t, queue.Enqueue(task))

	queue.Close()
	queue.Close()
	assert.True(t, queue.closed)

	assert.ErrorIs(t, queue.Enqueue(newNoopTask()), ErrQueueClosed)

	received := <-queue.Tasks()
	assert.Equal(t, task.ID(), received.ID())

	select {
	case _, ok := <-queue.Tasks():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for closed channel read")
	}
}

func TestConcurrentEnqueueAndClose(t *testing.T) {
	queue := NewTaskQueue(100, setupTestLogger())
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			err := queue.Enqueue(newNoopTask())
			if err != nil {
				assert.ErrorIs(t, err, ErrQueueClosed)
			}
		}
	}()
	queue.Close()
	<-done

	count := 0
	for range queue.Tasks() {
		count++
	}
	assert.LessOrEqual(t, count, 50)
}
