package scheme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/phrazzld/cardlink/internal/task"
)

// Task types submitted by Async.
const (
	TaskTypeRequestLinkOTP   = "scheme.request_link_otp"
	TaskTypeLinkCard         = "scheme.link_card"
	TaskTypeRequestUnlinkOTP = "scheme.request_unlink_otp"
	TaskTypeUnlinkCard       = "scheme.unlink_card"
	TaskTypeRequestPayment   = "scheme.request_payment"
	TaskTypeListLinkedCards  = "scheme.list_linked_cards"
)

// Async runs Client calls on a task.Runner and reports results through the
// done callbacks the flows expect. The caller's context is passed through to
// the HTTP request and is the only way to cancel it.
type Async struct {
	client *Client
	runner task.Runner
	logger *slog.Logger
}

var (
	_ flow.LinkClient        = (*Async)(nil)
	_ flow.UnlinkClient      = (*Async)(nil)
	_ flow.PaymentClient     = (*Async)(nil)
	_ flow.LinkedCardsClient = (*Async)(nil)
)

// NewAsync creates an Async adapter.
func NewAsync(client *Client, runner task.Runner, logger *slog.Logger) (*Async, error) {
	if client == nil {
		return nil, errors.New("scheme client cannot be nil")
	}
	if runner == nil {
		return nil, errors.New("task runner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Async{
		client: client,
		runner: runner,
		logger: logger.With(slog.String("component", "scheme_async")),
	}, nil
}

// RequestLinkOTP implements flow.LinkClient.
func (a *Async) RequestLinkOTP(ctx context.Context, req flow.LinkOTPRequest, done func(flow.LinkOTPResponse, error)) {
	a.submit(ctx, TaskTypeRequestLinkOTP, func() error {
		resp, err := a.client.RequestLinkOTP(ctx, req)
		done(resp, err)
		return err
	}, func(err error) { done(flow.LinkOTPResponse{}, err) })
}

// LinkCard implements flow.LinkClient.
func (a *Async) LinkCard(ctx context.Context, req flow.LinkCardRequest, done func(domain.LinkedCard, error)) {
	a.submit(ctx, TaskTypeLinkCard, func() error {
		card, err := a.client.LinkCard(ctx, req)
		done(card, err)
		return err
	}, func(err error) { done(domain.LinkedCard{}, err) })
}

// RequestUnlinkOTP implements flow.UnlinkClient.
func (a *Async) RequestUnlinkOTP(ctx context.Context, req flow.UnlinkOTPRequest, done func(flow.UnlinkOTPResponse, error)) {
	a.submit(ctx, TaskTypeRequestUnlinkOTP, func() error {
		resp, err := a.client.RequestUnlinkOTP(ctx, req)
		done(resp, err)
		return err
	}, func(err error) { done(flow.UnlinkOTPResponse{}, err) })
}

// UnlinkCard implements flow.UnlinkClient.
func (a *Async) UnlinkCard(ctx context.Context, req flow.UnlinkCardRequest, done func(error)) {
	a.submit(ctx, TaskTypeUnlinkCard, func() error {
		err := a.client.UnlinkCard(ctx, req)
		done(err)
		return err
	}, done)
}

// RequestPayment implements flow.PaymentClient.
func (a *Async) RequestPayment(ctx context.Context, req flow.PaymentRequest, done func(domain.PaymentReceipt, error)) {
	a.submit(ctx, TaskTypeRequestPayment, func() error {
		receipt, err := a.client.RequestPayment(ctx, req)
		done(receipt, err)
		return err
	}, func(err error) { done(domain.PaymentReceipt{}, err) })
}

// ListLinkedCards implements flow.LinkedCardsClient.
func (a *Async) ListLinkedCards(ctx context.Context, req flow.LinkedCardsRequest, done func([]domain.LinkedCard, error)) {
	a.submit(ctx, TaskTypeListLinkedCards, func() error {
		cards, err := a.client.ListLinkedCards(ctx, req)
		done(cards, err)
		return err
	}, func(err error) { done(nil, err) })
}

// submit queues call. failed is called instead if the runner refuses the
// task, on the caller's goroutine, or discards it unrun when stopping.
func (a *Async) submit(ctx context.Context, taskType string, call func() error, failed func(error)) {
	t := task.NewFuncTask(taskType, func(context.Context) error {
		return call()
	}).OnAbort(func(err error) {
		a.logger.WarnContext(ctx, "scheme call dropped before it ran",
			slog.String("task_type", taskType),
			slog.String("error", redact.Error(err)))
		failed(fmt.Errorf("%s: %w", taskType, err))
	})

	if err := a.runner.Submit(ctx, t); err != nil {
		a.logger.WarnContext(ctx, "failed to submit scheme call",
			slog.String("task_type", taskType),
			slog.String("error", redact.Error(err)))
		failed(fmt.Errorf("%s: %w", taskType, err))
	}
}
