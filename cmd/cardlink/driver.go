package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
)

// stepWaiter turns step and error delegate callbacks into channel receives.
type stepWaiter struct {
	steps chan domain.NextDataStep
	errs  chan *domain.DomainError
}

func newStepWaiter() *stepWaiter {
	return &stepWaiter{
		steps: make(chan domain.NextDataStep, 4),
		errs:  make(chan *domain.DomainError, 4),
	}
}

func (w *stepWaiter) DidReceiveStep(step domain.NextDataStep) { w.steps <- step }

func (w *stepWaiter) DidReceiveError(err *domain.DomainError) { w.errs <- err }

func (w *stepWaiter) await(ctx context.Context) (domain.NextDataStep, error) {
	select {
	case step := <-w.steps:
		return step, nil
	case err := <-w.errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// inputFunc supplies the data for a non-terminal step.
type inputFunc func(ctx context.Context, step domain.NextDataStep) (domain.CollectableData, error)

// drive starts o and feeds it input until it completes or fails.
func drive(ctx context.Context, o *flow.Orchestrator, w *stepWaiter, input inputFunc) (domain.Completed, error) {
	o.Start(ctx)
	for {
		step, err := w.await(ctx)
		if err != nil {
			return domain.Completed{}, err
		}
		if done, ok := step.(domain.Completed); ok {
			return done, nil
		}

		data, err := input(ctx, step)
		if err != nil {
			return domain.Completed{}, err
		}
		o.UpdateCollectedData(data)
		o.Submit(ctx)
	}
}

func unexpectedStep(step domain.NextDataStep) error {
	return fmt.Errorf("unexpected step %s", step)
}
