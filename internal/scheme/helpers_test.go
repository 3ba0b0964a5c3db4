package scheme_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/cardlink/internal/api"
	"github.com/phrazzld/cardlink/internal/config"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/scheme"
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

// backend is a sandbox scheme API served over a real HTTP listener.
type backend struct {
	server *httptest.Server
	client *scheme.Client
}

func newBackend(t *testing.T) *backend {
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

	server := httptest.NewServer(api.NewRouter(api.RouterDeps{
		Tokens: tokens,
		Scheme: svc,
		OTPs:   notifier,
		Logger: logger.Discard(),
	}))
	t.Cleanup(server.Close)

	client, err := scheme.NewClient(config.SchemeConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, logger.Discard())
	require.NoError(t, err)

	return &backend{server: server, client: client}
}

func (b *backend) clientToken(t *testing.T) string {
	t.Helper()
	token, err := b.client.IssueClientToken(context.Background(), testMerchant)
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	return token.Token
}

func (b *backend) lastOTP(t *testing.T) string {
	t.Helper()
	otp, err := b.client.SandboxOTP(context.Background(), testPhone)
	require.NoError(t, err)
	return otp
}
