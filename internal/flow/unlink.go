package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/cardlink/internal/domain"
)

// UnlinkOTPRequest asks the scheme to send an unlink OTP to the phone the
// card is linked to.
type UnlinkOTPRequest struct {
	Session                  Session
	CardNumber               string
	ExpiredTime              string
	MobileNumber             string
	PhoneCountryDiallingCode string
}

// UnlinkOTPResponse carries the token that ties the OTP to the unlink request.
type UnlinkOTPResponse struct {
	UnlinkToken string
}

// UnlinkCardRequest confirms an unlink with the OTP the user received.
type UnlinkCardRequest struct {
	Session     Session
	CardNumber  string
	UnlinkToken string
	OTPCode     string
}

// UnlinkClient is the scheme collaborator used by the unlink flow. Each
// method must call done exactly once, on any goroutine.
type UnlinkClient interface {
	RequestUnlinkOTP(ctx context.Context, req UnlinkOTPRequest, done func(UnlinkOTPResponse, error))
	UnlinkCard(ctx context.Context, req UnlinkCardRequest, done func(error))
}

// NewUnlink builds a flow that removes a linked card after OTP confirmation.
func NewUnlink(
	client UnlinkClient,
	provider ConfigurationProvider,
	logger *slog.Logger,
	opts ...Option,
) (*Orchestrator, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return newOrchestrator(UnlinkSequence(), provider, unlinkPerformer(client), logger, opts...)
}

func unlinkPerformer(client UnlinkClient) performer {
	return func(
		ctx context.Context,
		session Session,
		state domain.FlowState,
		step domain.StepKind,
		done func(stepResult, error),
	) {
		switch step {
		case domain.StepCollectCardAndPhoneData:
			client.RequestUnlinkOTP(ctx, UnlinkOTPRequest{
				Session:                  session,
				CardNumber:               state.CardNumber,
				ExpiredTime:              state.ExpiredTime,
				MobileNumber:             state.MobileNumber,
				PhoneCountryDiallingCode: state.PhoneCountryDiallingCode,
			}, func(resp UnlinkOTPResponse, err error) {
				if err == nil && strings.TrimSpace(resp.UnlinkToken) == "" {
					err = ErrEmptyToken
				}
				done(stepResult{linkToken: resp.UnlinkToken}, err)
			})
		case domain.StepCollectOTPData:
			client.UnlinkCard(ctx, UnlinkCardRequest{
				Session:     session,
				CardNumber:  state.CardNumber,
				UnlinkToken: state.LinkToken,
				OTPCode:     state.OTPCode,
			}, func(err error) {
				done(stepResult{}, err)
			})
		default:
			done(stepResult{}, fmt.Errorf("unlink flow has no action for step %q", step))
		}
	}
}
