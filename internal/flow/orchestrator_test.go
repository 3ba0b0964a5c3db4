package flow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/events"
	"github.com/phrazzld/cardlink/internal/flow"
	"github.com/phrazzld/cardlink/internal/mocks"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_RejectNilDependencies(t *testing.T) {
	provider := mocks.NewMockConfigurationProvider()
	log := logger.Discard()

	_, err := flow.NewLink(nil, provider, testCardNumber, log)
	assert.ErrorIs(t, err, flow.ErrNilClient)

	_, err = flow.NewLink(&mocks.MockLinkClient{}, nil, testCardNumber, log)
	assert.ErrorIs(t, err, flow.ErrNilProvider)

	_, err = flow.NewUnlink(&mocks.MockUnlinkClient{}, provider, nil)
	assert.ErrorIs(t, err, flow.ErrNilLogger)

	_, err = flow.NewPayment(nil, provider, log)
	assert.ErrorIs(t, err, flow.ErrNilClient)
}

func TestStart_ConfigurationChecks(t *testing.T) {
	tests := []struct {
		name     string
		provider *mocks.MockConfigurationProvider
		code     string
		kind     error
	}{
		{
			name:     "missing client token",
			provider: &mocks.MockConfigurationProvider{Configuration: mocks.ValidConfiguration()},
			code:     domain.CodeClientTokenMissing,
			kind:     domain.ErrClientTokenMissing,
		},
		{
			name:     "blank client token",
			provider: &mocks.MockConfigurationProvider{Configuration: mocks.ValidConfiguration(), ClientToken: "   "},
			code:     domain.CodeClientTokenMissing,
			kind:     domain.ErrClientTokenMissing,
		},
		{
			name:     "missing configuration",
			provider: &mocks.MockConfigurationProvider{ClientToken: mocks.DefaultClientToken},
			code:     domain.CodeConfigurationMissing,
			kind:     domain.ErrConfigurationMissing,
		},
		{
			name: "no card scheme payment method",
			provider: &mocks.MockConfigurationProvider{
				Configuration: &domain.Configuration{Environment: "sandbox"},
				ClientToken:   mocks.DefaultClientToken,
			},
			code: domain.CodePaymentMethodNotConfigured,
			kind: domain.ErrPaymentMethodNotConfigured,
		},
		{
			name: "card scheme without merchant app id",
			provider: &mocks.MockConfigurationProvider{
				Configuration: &domain.Configuration{
					PaymentMethods: []domain.PaymentMethodConfig{{Type: domain.PaymentMethodCardScheme}},
				},
				ClientToken: mocks.DefaultClientToken,
			},
			code: domain.CodePaymentMethodNotConfigured,
			kind: domain.ErrPaymentMethodNotConfigured,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o, rec := newLinkFlow(t, &mocks.MockLinkClient{}, tc.provider)

			o.Start(context.Background())

			assert.Nil(t, o.CurrentStep())
			assert.Empty(t, rec.Steps())
			require.Len(t, rec.Errors(), 1)
			assert.Equal(t, tc.code, rec.LastError().Code)
			assert.ErrorIs(t, rec.LastError(), tc.kind)
			assert.Equal(t, "link.start", rec.LastError().Operation)
		})
	}
}

func TestStart_SetsInitialStep(t *testing.T) {
	provider := mocks.NewMockConfigurationProvider()

	t.Run("link", func(t *testing.T) {
		o, rec := newLinkFlow(t, &mocks.MockLinkClient{}, provider)
		o.Start(context.Background())

		assert.Equal(t, domain.CollectPhoneData{CardNumber: testCardNumber}, o.CurrentStep())
		assert.Equal(t, []domain.NextDataStep{domain.CollectPhoneData{CardNumber: testCardNumber}}, rec.Steps())
		assert.Empty(t, rec.Errors())
	})

	t.Run("unlink", func(t *testing.T) {
		o, rec := newUnlinkFlow(t, &mocks.MockUnlinkClient{}, provider)
		o.Start(context.Background())

		assert.Equal(t, domain.CollectCardAndPhoneData{}, o.CurrentStep())
		assert.Len(t, rec.Steps(), 1)
	})

	t.Run("payment", func(t *testing.T) {
		o, rec := newPaymentFlow(t, &mocks.MockPaymentClient{}, provider)
		o.Start(context.Background())

		assert.Equal(t, domain.CollectPaymentData{}, o.CurrentStep())
		assert.Len(t, rec.Steps(), 1)
	})
}

func TestStart_LinkWithoutCardNumber(t *testing.T) {
	rec := mocks.NewRecordingDelegate()
	o, err := flow.NewLink(&mocks.MockLinkClient{}, mocks.NewMockConfigurationProvider(), "  ",
		logger.Discard(), flow.WithErrorDelegate(rec))
	require.NoError(t, err)

	o.Start(context.Background())

	assert.Nil(t, o.CurrentStep())
	require.NotNil(t, rec.LastError())
	assert.ErrorIs(t, rec.LastError(), domain.ErrMissingField)
	assert.Equal(t, domain.FieldCardNumber, rec.LastError().Field)
}

func TestStart_Twice_KeepsState(t *testing.T) {
	client := &mocks.MockLinkClient{LinkToken: "link-token"}
	o, rec := newLinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(validPhone())
	o.Submit(ctx)
	require.Equal(t, domain.StepCollectOTPData, o.CurrentStep().Kind())

	o.Start(ctx)

	assert.Equal(t, domain.StepCollectOTPData, o.CurrentStep().Kind())
	assert.Equal(t, "link-token", o.State().LinkToken)
	assert.Equal(t, domain.StepCollectOTPData, rec.LastStep().Kind())
}

func TestUpdateCollectedData_WritesAndReportsOnce(t *testing.T) {
	o, rec := newUnlinkFlow(t, &mocks.MockUnlinkClient{}, mocks.NewMockConfigurationProvider())
	data := domain.CardAndPhoneData{
		Card:  domain.Card{CardNumber: "12ab", ExpiredTime: "12/30"},
		Phone: domain.PhoneData{MobileNumber: testMobile, PhoneCountryDiallingCode: "971"},
	}

	o.UpdateCollectedData(data)

	state := o.State()
	assert.Equal(t, "12ab", state.CardNumber, "invalid values are stored too")
	assert.Equal(t, "12/30", state.ExpiredTime)
	assert.Equal(t, testMobile, state.MobileNumber)
	assert.Equal(t, "971", state.PhoneCountryDiallingCode)

	reports := rec.Validations()
	require.Len(t, reports, 1)
	require.Len(t, reports[0], 2)
	assert.Equal(t, domain.CodeInvalidCardNumber, reports[0][0].Code)
	assert.Equal(t, domain.CodeInvalidPhoneNumberCountryCode, reports[0][1].Code)
	assert.Empty(t, rec.Errors(), "validation feedback never goes to the error delegate")
}

func TestUpdateCollectedData_Idempotent(t *testing.T) {
	o, rec := newLinkFlow(t, &mocks.MockLinkClient{}, mocks.NewMockConfigurationProvider())
	data := domain.PhoneData{MobileNumber: "12", PhoneCountryDiallingCode: testDialCode}

	o.UpdateCollectedData(data)
	first := o.State()
	o.UpdateCollectedData(data)

	assert.Equal(t, first, o.State())
	reports := rec.Validations()
	require.Len(t, reports, 2)
	assert.Equal(t, reports[0], reports[1])
}

func TestUpdateCollectedData_ValidReportsEmptyList(t *testing.T) {
	o, rec := newLinkFlow(t, &mocks.MockLinkClient{}, mocks.NewMockConfigurationProvider())

	o.UpdateCollectedData(validPhone())

	reports := rec.Validations()
	require.Len(t, reports, 1)
	assert.NotNil(t, reports[0])
	assert.Empty(t, reports[0])
}

func TestUpdateCollectedData_NoDelegate(t *testing.T) {
	o, err := flow.NewPayment(&mocks.MockPaymentClient{}, mocks.NewMockConfigurationProvider(), logger.Discard())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		o.UpdateCollectedData(domain.PaymentData{CardNumber: testCardNumber})
	})
	assert.Equal(t, testCardNumber, o.State().CardNumber)
}

func TestSubmit_BeforeStart(t *testing.T) {
	client := &mocks.MockLinkClient{}
	o, rec := newLinkFlow(t, client, mocks.NewMockConfigurationProvider())

	o.UpdateCollectedData(validPhone())
	o.Submit(context.Background())

	assert.Equal(t, 0, client.CallCount())
	require.NotNil(t, rec.LastError())
	assert.ErrorIs(t, rec.LastError(), domain.ErrFlowNotStarted)
}

func TestSubmit_MissingFieldSkipsCollaborator(t *testing.T) {
	client := &mocks.MockLinkClient{LinkToken: "t"}
	o, rec := newLinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(domain.PhoneData{MobileNumber: testMobile})
	o.Submit(ctx)

	assert.Equal(t, 0, client.CallCount())
	require.Len(t, rec.Errors(), 1)
	derr := rec.LastError()
	assert.Equal(t, domain.CodeMissingField, derr.Code)
	assert.Equal(t, domain.FieldPhoneCountryDiallingCode, derr.Field)
	assert.Equal(t, domain.StepCollectPhoneData, o.CurrentStep().Kind())
}

func TestSubmit_InvalidFieldSkipsCollaborator(t *testing.T) {
	client := &mocks.MockLinkClient{LinkToken: "t"}
	o, rec := newLinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(domain.PhoneData{MobileNumber: "12", PhoneCountryDiallingCode: testDialCode})
	o.Submit(ctx)

	assert.Equal(t, 0, client.CallCount())
	derr := rec.LastError()
	require.NotNil(t, derr)
	assert.ErrorIs(t, derr, domain.ErrInvalidInput)
	require.Len(t, derr.Validations, 1)
	assert.Equal(t, domain.CodeInvalidPhoneNumber, derr.Validations[0].Code)
}

func TestSubmit_OperationInProgress(t *testing.T) {
	var pending func(flow.LinkOTPResponse, error)
	client := &mocks.MockLinkClient{
		RequestLinkOTPFn: func(_ context.Context, _ flow.LinkOTPRequest, done func(flow.LinkOTPResponse, error)) {
			pending = done
		},
	}
	o, rec := newLinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(validPhone())
	o.Submit(ctx)
	require.True(t, o.InFlight())

	o.Submit(ctx)

	assert.Equal(t, 1, client.CallCount())
	require.Len(t, rec.Errors(), 1)
	assert.Equal(t, domain.CodeOperationInProgress, rec.LastError().Code)
	assert.ErrorIs(t, rec.LastError(), domain.ErrOperationInProgress)

	require.NotNil(t, pending)
	pending(flow.LinkOTPResponse{LinkToken: "link-token"}, nil)

	assert.False(t, o.InFlight())
	assert.Equal(t, domain.StepCollectOTPData, o.CurrentStep().Kind())
}

func TestSubmit_CollaboratorFailureLeavesStep(t *testing.T) {
	schemeErr := errors.New("scheme unavailable")
	client := &mocks.MockLinkClient{Err: schemeErr}
	o, rec := newLinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(validPhone())
	o.Submit(ctx)

	assert.Equal(t, domain.CollectPhoneData{CardNumber: testCardNumber}, o.CurrentStep())
	assert.False(t, o.InFlight())
	derr := rec.LastError()
	require.NotNil(t, derr)
	assert.Equal(t, domain.CodeCollaboratorFailure, derr.Code)
	assert.ErrorIs(t, derr, schemeErr)
	assert.ErrorIs(t, derr, domain.ErrCollaborator)
	assert.Same(t, schemeErr, derr.Err)

	// A retry after the failure reaches the collaborator again.
	client.Err = nil
	client.LinkToken = "link-token"
	o.Submit(ctx)
	assert.Equal(t, 2, client.CallCount())
	assert.Equal(t, domain.StepCollectOTPData, o.CurrentStep().Kind())
}

func TestSubmit_DoubleCallbackIgnored(t *testing.T) {
	client := &mocks.MockPaymentClient{
		RequestPaymentFn: func(_ context.Context, _ flow.PaymentRequest, done func(domain.PaymentReceipt, error)) {
			done(domain.PaymentReceipt{PaymentID: "p-1"}, nil)
			done(domain.PaymentReceipt{}, errors.New("late failure"))
		},
	}
	o, rec := newPaymentFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(domain.PaymentData{CardNumber: testCardNumber, MobileNumber: testMobile})
	o.Submit(ctx)

	assert.True(t, domain.IsTerminal(o.CurrentStep()))
	assert.Empty(t, rec.Errors())
}

func TestSubmit_AfterCompletion(t *testing.T) {
	client := &mocks.MockPaymentClient{Receipt: domain.PaymentReceipt{PaymentID: "p-1"}}
	o, rec := newPaymentFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(domain.PaymentData{CardNumber: testCardNumber, MobileNumber: testMobile})
	o.Submit(ctx)
	o.Submit(ctx)

	assert.Equal(t, 1, client.CallCount())
	assert.ErrorIs(t, rec.LastError(), domain.ErrFlowCompleted)
}

func TestLateCallback_WithClearedDelegates(t *testing.T) {
	var pending func(flow.LinkOTPResponse, error)
	client := &mocks.MockLinkClient{
		RequestLinkOTPFn: func(_ context.Context, _ flow.LinkOTPRequest, done func(flow.LinkOTPResponse, error)) {
			pending = done
		},
	}
	o, rec := newLinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(validPhone())
	o.Submit(ctx)

	o.SetErrorDelegate(nil)
	o.SetStepDelegate(nil)
	o.SetValidationDelegate(nil)
	rec.Reset()

	require.NotNil(t, pending)
	assert.NotPanics(t, func() {
		pending(flow.LinkOTPResponse{}, errors.New("timeout"))
	})
	assert.Empty(t, rec.Errors())
	assert.Empty(t, rec.Steps())
	assert.False(t, o.InFlight())
}

func TestCallbackOnAnotherGoroutine(t *testing.T) {
	var wg sync.WaitGroup
	client := &mocks.MockLinkClient{
		RequestLinkOTPFn: func(_ context.Context, _ flow.LinkOTPRequest, done func(flow.LinkOTPResponse, error)) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				done(flow.LinkOTPResponse{LinkToken: "async-token"}, nil)
			}()
		},
	}
	o, _ := newLinkFlow(t, client, mocks.NewMockConfigurationProvider())
	ctx := context.Background()

	o.Start(ctx)
	o.UpdateCollectedData(validPhone())
	o.Submit(ctx)
	wg.Wait()

	assert.Equal(t, "async-token", o.State().LinkToken)
	assert.Equal(t, domain.CollectOTPData{PhoneNumber: testDialCode + testMobile}, o.CurrentStep())
}

func TestEventsEmitted(t *testing.T) {
	emitter := events.NewInMemoryEventEmitter(logger.Discard())
	var mu sync.Mutex
	var types []events.EventType
	emitter.RegisterHandler(events.EventHandlerFunc(func(_ context.Context, e *events.FlowEvent) error {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, e.Type)
		return nil
	}))

	client := &mocks.MockPaymentClient{Receipt: domain.PaymentReceipt{PaymentID: "p-1"}}
	o, err := flow.NewPayment(client, mocks.NewMockConfigurationProvider(), logger.Discard(),
		flow.WithEventEmitter(emitter))
	require.NoError(t, err)
	ctx := context.Background()

	o.Start(ctx)
	o.Submit(ctx)
	o.UpdateCollectedData(domain.PaymentData{CardNumber: testCardNumber, MobileNumber: testMobile})
	o.Submit(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.EventType{
		events.EventFlowStarted,
		events.EventFlowFailed,
		events.EventFlowCompleted,
	}, types)
}

func TestInstancesAreIndependent(t *testing.T) {
	provider := mocks.NewMockConfigurationProvider()
	a, _ := newPaymentFlow(t, &mocks.MockPaymentClient{}, provider)
	b, _ := newPaymentFlow(t, &mocks.MockPaymentClient{}, provider)

	a.UpdateCollectedData(domain.PaymentData{CardNumber: testCardNumber})

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Empty(t, b.State().CardNumber)
}
