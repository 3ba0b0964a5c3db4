package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCardAndPhone() domain.CardAndPhoneData {
	return domain.CardAndPhoneData{
		Card:  domain.Card{CardNumber: testCardNumber, ExpiredTime: "12/30"},
		Phone: validPhone(),
	}
}

func TestUnlinkFlow_HappyPath(t *testing.T) {
	client := &mocks.MockUnlinkClient{UnlinkToken: "unlink-token-1"}
	o, rec := newUnlinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(validCardAndPhone())
	o.Submit(ctx)

	require.Len(t, client.UnlinkOTPRequests(), 1)
	otpReq := client.UnlinkOTPRequests()[0]
	assert.Equal(t, testCardNumber, otpReq.CardNumber)
	assert.Equal(t, "12/30", otpReq.ExpiredTime)
	assert.Equal(t, domain.CollectOTPData{PhoneNumber: testDialCode + testMobile}, o.CurrentStep())

	o.UpdateCollectedData(domain.OTPData{OTPCode: testOTP})
	o.Submit(ctx)

	require.Len(t, client.UnlinkCardRequests(), 1)
	req := client.UnlinkCardRequests()[0]
	assert.Equal(t, "unlink-token-1", req.UnlinkToken)
	assert.Equal(t, testOTP, req.OTPCode)
	assert.Equal(t, testCardNumber, req.CardNumber)

	assert.Equal(t, domain.Completed{Outcome: domain.OutcomeUnlinked}, o.CurrentStep())
	assert.Empty(t, rec.Errors())
}

func TestUnlinkFlow_EmptyCardNumber(t *testing.T) {
	client := &mocks.MockUnlinkClient{UnlinkToken: "unlink-token-1"}
	o, rec := newUnlinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	data := validCardAndPhone()
	data.Card.CardNumber = ""
	o.UpdateCollectedData(data)

	reports := rec.Validations()
	require.Len(t, reports, 1)
	require.Len(t, reports[0], 1)
	assert.Equal(t, domain.CodeInvalidCardNumber, reports[0][0].Code)
	assert.Equal(t, domain.FieldCardNumber, reports[0][0].Field)
	assert.Equal(t, "Card number cannot be empty", reports[0][0].Message)

	o.Submit(ctx)

	assert.Equal(t, 0, client.CallCount())
	require.Len(t, rec.Errors(), 1)
	assert.ErrorIs(t, rec.LastError(), domain.ErrMissingField)
	assert.Equal(t, domain.FieldCardNumber, rec.LastError().Field)
}

func TestUnlinkFlow_UnlinkFailureKeepsOTPStep(t *testing.T) {
	otpErr := errors.New("otp mismatch")
	client := &mocks.MockUnlinkClient{UnlinkToken: "unlink-token-1"}
	o, rec := newUnlinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(validCardAndPhone())
	o.Submit(ctx)

	client.Err = otpErr
	o.UpdateCollectedData(domain.OTPData{OTPCode: "0000"})
	o.Submit(ctx)

	assert.Equal(t, domain.StepCollectOTPData, o.CurrentStep().Kind())
	assert.ErrorIs(t, rec.LastError(), otpErr)
	assert.Equal(t, "unlink-token-1", o.State().LinkToken)
}
