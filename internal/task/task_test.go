package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFuncTask(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		task := NewFuncTask("scheme.link_card", func(context.Context) error { return nil })

		assert.NotEqual(t, uuid.Nil, task.ID())
		assert.Equal(t, "scheme.link_card", task.Type())
		assert.Equal(t, TaskStatusPending, task.Status())

		assert.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, TaskStatusCompleted, task.Status())
	})

	t.Run("failure", func(t *testing.T) {
		boom := errors.New("boom")
		task := NewFuncTask("scheme.payment", func(context.Context) error { return boom })

		assert.ErrorIs(t, task.Execute(context.Background()), boom)
		assert.Equal(t, TaskStatusFailed, task.Status())
	})

	t.Run("processing while running", func(t *testing.T) {
		var task *FuncTask
		var seen TaskStatus
		task = NewFuncTask("x", func(context.Context) error {
			seen = task.Status()
			return nil
		})

		_ = task.Execute(context.Background())
		assert.Equal(t, TaskStatusProcessing, seen)
	})

	t.Run("abort while pending", func(t *testing.T) {
		var got error
		ran := false
		task := NewFuncTask("x", func(context.Context) error {
			ran = true
			return nil
		}).OnAbort(func(err error) { got = err })

		task.Abort(ErrRunnerStopped)
		assert.ErrorIs(t, got, ErrRunnerStopped)
		assert.Equal(t, TaskStatusFailed, task.Status())
		assert.False(t, ran)
	})

	t.Run("abort after execute", func(t *testing.T) {
		aborted := false
		task := NewFuncTask("x", func(context.Context) error { return nil }).
			OnAbort(func(error) { aborted = true })

		assert.NoError(t, task.Execute(context.Background()))
		task.Abort(ErrRunnerStopped)
		assert.False(t, aborted)
		assert.Equal(t, TaskStatusCompleted, task.Status())
	})
}
