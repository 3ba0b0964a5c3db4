package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/cardlink/internal/domain"
)

// LinkOTPRequest asks the scheme to send a link OTP to a phone.
type LinkOTPRequest struct {
	Session                  Session
	CardNumber               string
	MobileNumber             string
	PhoneCountryDiallingCode string
}

// LinkOTPResponse carries the token that ties the OTP to the link request.
type LinkOTPResponse struct {
	LinkToken string
}

// LinkCardRequest confirms a link with the OTP the user received.
type LinkCardRequest struct {
	Session    Session
	CardNumber string
	LinkToken  string
	OTPCode    string
}

// LinkClient is the scheme collaborator used by the link flow. Each method
// must call done exactly once, on any goroutine.
type LinkClient interface {
	RequestLinkOTP(ctx context.Context, req LinkOTPRequest, done func(LinkOTPResponse, error))
	LinkCard(ctx context.Context, req LinkCardRequest, done func(domain.LinkedCard, error))
}

// NewLink builds a flow that links cardNumber, read from the physical card by
// the host, to a phone number confirmed by OTP.
func NewLink(
	client LinkClient,
	provider ConfigurationProvider,
	cardNumber string,
	logger *slog.Logger,
	opts ...Option,
) (*Orchestrator, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	o, err := newOrchestrator(LinkSequence(), provider, linkPerformer(client), logger, opts...)
	if err != nil {
		return nil, err
	}
	o.state.CardNumber = strings.TrimSpace(cardNumber)
	o.startRequires = []domain.Field{domain.FieldCardNumber}
	return o, nil
}

func linkPerformer(client LinkClient) performer {
	return func(
		ctx context.Context,
		session Session,
		state domain.FlowState,
		step domain.StepKind,
		done func(stepResult, error),
	) {
		switch step {
		case domain.StepCollectPhoneData:
			client.RequestLinkOTP(ctx, LinkOTPRequest{
				Session:                  session,
				CardNumber:               state.CardNumber,
				MobileNumber:             state.MobileNumber,
				PhoneCountryDiallingCode: state.PhoneCountryDiallingCode,
			}, func(resp LinkOTPResponse, err error) {
				if err == nil && strings.TrimSpace(resp.LinkToken) == "" {
					err = ErrEmptyToken
				}
				done(stepResult{linkToken: resp.LinkToken}, err)
			})
		case domain.StepCollectOTPData:
			client.LinkCard(ctx, LinkCardRequest{
				Session:    session,
				CardNumber: state.CardNumber,
				LinkToken:  state.LinkToken,
				OTPCode:    state.OTPCode,
			}, func(card domain.LinkedCard, err error) {
				if err != nil {
					done(stepResult{}, err)
					return
				}
				done(stepResult{linkedCard: &card}, nil)
			})
		default:
			done(stepResult{}, fmt.Errorf("link flow has no action for step %q", step))
		}
	}
}
