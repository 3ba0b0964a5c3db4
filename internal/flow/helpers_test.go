package flow_test

import (
	"testing"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
	"github.com/phrazzld/cardlink/internal/mocks"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/stretchr/testify/require"
)

const (
	testCardNumber = "6280123412341234"
	testMobile     = "501234567"
	testDialCode   = "+971"
	testOTP        = "123456"
)

func validPhone() domain.PhoneData {
	return domain.PhoneData{MobileNumber: testMobile, PhoneCountryDiallingCode: testDialCode}
}

func newLinkFlow(t *testing.T, client flow.LinkClient, provider flow.ConfigurationProvider) (*flow.Orchestrator, *mocks.RecordingDelegate) {
	t.Helper()
	rec := mocks.NewRecordingDelegate()
	o, err := flow.NewLink(client, provider, testCardNumber, logger.Discard(),
		flow.WithValidationDelegate(rec),
		flow.WithErrorDelegate(rec),
		flow.WithStepDelegate(rec),
	)
	require.NoError(t, err)
	return o, rec
}

func newUnlinkFlow(t *testing.T, client flow.UnlinkClient, provider flow.ConfigurationProvider) (*flow.Orchestrator, *mocks.RecordingDelegate) {
	t.Helper()
	rec := mocks.NewRecordingDelegate()
	o, err := flow.NewUnlink(client, provider, logger.Discard(),
		flow.WithValidationDelegate(rec),
		flow.WithErrorDelegate(rec),
		flow.WithStepDelegate(rec),
	)
	require.NoError(t, err)
	return o, rec
}

func newPaymentFlow(t *testing.T, client flow.PaymentClient, provider flow.ConfigurationProvider) (*flow.Orchestrator, *mocks.RecordingDelegate) {
	t.Helper()
	rec := mocks.NewRecordingDelegate()
	o, err := flow.NewPayment(client, provider, logger.Discard(),
		flow.WithValidationDelegate(rec),
		flow.WithErrorDelegate(rec),
		flow.WithStepDelegate(rec),
	)
	require.NoError(t, err)
	return o, rec
}
