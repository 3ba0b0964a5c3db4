package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/phrazzld/cardlink/internal/api"
	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/mocks"
	"github.com/phrazzld/cardlink/internal/service"
	"github.com/phrazzld/cardlink/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemeFrom(t *testing.T) service.SchemeService {
	t.Helper()
	return &mocks.MockSchemeService{}
}

func mockRouter(scheme *mocks.MockSchemeService) http.Handler {
	tokens := &mocks.MockClientTokenService{
		ValidateClientTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token != "valid" {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{MerchantAppID: testMerchant}, nil
		},
	}
	return api.NewRouter(api.RouterDeps{Tokens: tokens, Scheme: scheme})
}

func TestSchemeHandler_PassesMerchantAndFields(t *testing.T) {
	t.Parallel()

	var got service.OTPRequest
	scheme := &mocks.MockSchemeService{
		RequestLinkOTPFn: func(_ context.Context, req service.OTPRequest) (string, error) {
			got = req
			return "link-token", nil
		},
	}

	rr := serve(t, mockRouter(scheme), http.MethodPost, "/v1/links/otp", "valid", linkOTPBody())
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "link-token", decodeBody[api.LinkOTPResponse](t, rr).LinkToken)
	assert.Equal(t, service.OTPRequest{
		MerchantAppID: testMerchant,
		CardNumber:    testCardNumber,
		ExpiredTime:   "12/30",
		MobileNumber:  testMobile,
		DiallingCode:  testDialCode,
	}, got)
}

func TestSchemeHandler_ListPassesQuery(t *testing.T) {
	t.Parallel()

	var got domain.PhoneData
	scheme := &mocks.MockSchemeService{
		ListLinkedCardsFn: func(_ context.Context, merchantAppID string, phone domain.PhoneData) ([]domain.LinkedCard, error) {
			assert.Equal(t, testMerchant, merchantAppID)
			got = phone
			return []domain.LinkedCard{}, nil
		},
	}

	rr := serve(t, mockRouter(scheme), http.MethodGet,
		"/v1/cards?mobile_number=501234567&dialling_code=%2B971", "valid", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PhoneData{MobileNumber: testMobile, PhoneCountryDiallingCode: testDialCode}, got)
	assert.JSONEq(t, `{"cards":[]}`, rr.Body.String())
}

func TestSchemeHandler_InternalErrorsAreSanitized(t *testing.T) {
	t.Parallel()

	scheme := &mocks.MockSchemeService{
		DefaultError: errors.New("store exploded for card 6280123412341234"),
	}
	h := mockRouter(scheme)

	tests := []struct {
		name    string
		method  string
		path    string
		body    interface{}
		message string
	}{
		{"link otp", http.MethodPost, "/v1/links/otp", linkOTPBody(), "Failed to request link OTP"},
		{"link", http.MethodPost, "/v1/links",
			api.LinkCardRequest{LinkToken: "t", OTPCode: "123456", CardNumber: testCardNumber}, "Failed to link card"},
		{"unlink otp", http.MethodPost, "/v1/unlinks/otp",
			api.UnlinkOTPRequest{CardNumber: testCardNumber, MobileNumber: testMobile, DiallingCode: testDialCode},
			"Failed to request unlink OTP"},
		{"unlink", http.MethodPost, "/v1/unlinks",
			api.UnlinkCardRequest{UnlinkToken: "t", OTPCode: "123456", CardNumber: testCardNumber}, "Failed to unlink card"},
		{"payment", http.MethodPost, "/v1/payments",
			api.PaymentRequest{CardNumber: testCardNumber, MobileNumber: testMobile}, "Failed to request payment"},
		{"cards", http.MethodGet, "/v1/cards?mobile_number=1&dialling_code=2", nil, "Failed to list linked cards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, h, tt.method, tt.path, "valid", tt.body)
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			errResp := decodeError(t, rr)
			assert.Equal(t, tt.message, errResp.Error)
			assert.Equal(t, shared.CodeInternal, errResp.Code)
			assert.NotContains(t, rr.Body.String(), testCardNumber)
		})
	}
}

func TestClientTokenHandler_ServiceError(t *testing.T) {
	t.Parallel()

	tokens := &mocks.MockClientTokenService{Err: errors.New("signing failed")}
	h := api.NewRouter(api.RouterDeps{Tokens: tokens, Scheme: &mocks.MockSchemeService{}})

	rr := serve(t, h, http.MethodPost, "/v1/client-tokens", "", api.ClientTokenRequest{MerchantAppID: testMerchant})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to issue client token", decodeError(t, rr).Error)
}

func TestNewHandlers_PanicOnNilDependency(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { api.NewSchemeHandler(nil, nil) })
	assert.Panics(t, func() { api.NewClientTokenHandler(nil, nil) })
	assert.Panics(t, func() { api.NewSandboxHandler(nil) })
}
