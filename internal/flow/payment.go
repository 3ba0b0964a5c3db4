package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/cardlink/internal/domain"
)

// PaymentRequest asks the scheme to charge a linked card.
type PaymentRequest struct {
	Session      Session
	CardNumber   string
	MobileNumber string
}

// PaymentClient is the scheme collaborator used by the payment flow.
// RequestPayment must call done exactly once, on any goroutine.
type PaymentClient interface {
	RequestPayment(ctx context.Context, req PaymentRequest, done func(domain.PaymentReceipt, error))
}

// NewPayment builds a single-step flow that submits a payment request.
func NewPayment(
	client PaymentClient,
	provider ConfigurationProvider,
	logger *slog.Logger,
	opts ...Option,
) (*Orchestrator, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return newOrchestrator(PaymentSequence(), provider, paymentPerformer(client), logger, opts...)
}

func paymentPerformer(client PaymentClient) performer {
	return func(
		ctx context.Context,
		session Session,
		state domain.FlowState,
		step domain.StepKind,
		done func(stepResult, error),
	) {
		if step != domain.StepCollectPaymentData {
			done(stepResult{}, fmt.Errorf("payment flow has no action for step %q", step))
			return
		}
		client.RequestPayment(ctx, PaymentRequest{
			Session:      session,
			CardNumber:   state.CardNumber,
			MobileNumber: state.MobileNumber,
		}, func(receipt domain.PaymentReceipt, err error) {
			if err != nil {
				done(stepResult{}, err)
				return
			}
			done(stepResult{payment: &receipt}, nil)
		})
	}
}
