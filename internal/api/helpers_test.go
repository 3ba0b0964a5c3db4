package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/cardlink/internal/api"
	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/config"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/service"
	"github.com/phrazzld/cardlink/internal/service/auth"
	"github.com/phrazzld/cardlink/internal/store"
	"github.com/stretchr/testify/require"
)

const (
	testMerchant   = "merchant-app-1"
	testCardNumber = "6280123412341234"
	testMobile     = "501234567"
	testDialCode   = "+971"
	testPhone      = testDialCode + testMobile
)

type testServer struct {
	handler  http.Handler
	notifier *service.LogOTPNotifier
	tokens   auth.ClientTokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tokens, err := auth.NewClientTokenService(config.SandboxConfig{
		TokenSecret: "thisisasecretkeythatis32charslong!!",
		TokenIssuer: "cardlink-test",
		TokenTTL:    time.Hour,
	})
	require.NoError(t, err)

	notifier := service.NewLogOTPNotifier(logger.Discard())
	svc, err := service.NewSchemeService(
		store.NewMemoryChallengeStore(),
		store.NewMemoryLinkedCardStore(),
		store.NewMemoryPaymentStore(),
		auth.NewBcryptOTPHasher(4),
		notifier,
		service.SchemeServiceConfig{OTPLength: 6, OTPTTL: 5 * time.Minute, MaxAttempts: 3},
		logger.Discard(),
	)
	require.NoError(t, err)

	return &testServer{
		handler: api.NewRouter(api.RouterDeps{
			Tokens: tokens,
			Scheme: svc,
			OTPs:   notifier,
			Logger: logger.Discard(),
		}),
		notifier: notifier,
		tokens:   tokens,
	}
}

func (s *testServer) clientToken(t *testing.T) string {
	t.Helper()
	token, _, err := s.tokens.GenerateClientToken(context.Background(), testMerchant)
	require.NoError(t, err)
	return token
}

// do sends a JSON request and returns the recorder.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, s.handler, method, path, token, body)
}

func serve(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rr)
}
