package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/phrazzld/cardlink/internal/store"
)

// OTPNotifier delivers an issued OTP to the phone it was issued for.
type OTPNotifier interface {
	SendOTP(ctx context.Context, phone, otp string, purpose store.ChallengePurpose) error
}

// LogOTPNotifier stands in for an SMS gateway. It logs each delivery with
// the code redacted and remembers the latest code per phone so sandbox
// clients can read it back.
type LogOTPNotifier struct {
	logger *slog.Logger

	mu   sync.RWMutex
	last map[string]string
}

var _ OTPNotifier = (*LogOTPNotifier)(nil)

// NewLogOTPNotifier creates a LogOTPNotifier.
func NewLogOTPNotifier(logger *slog.Logger) *LogOTPNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogOTPNotifier{
		logger: logger.With(slog.String("component", "otp_notifier")),
		last:   make(map[string]string),
	}
}

// SendOTP implements OTPNotifier.
func (n *LogOTPNotifier) SendOTP(ctx context.Context, phone, otp string, purpose store.ChallengePurpose) error {
	n.mu.Lock()
	n.last[phone] = otp
	n.mu.Unlock()

	n.logger.InfoContext(ctx, "otp delivered",
		slog.String("phone", redact.PhoneNumber(phone)),
		slog.String("otp", redact.OTP(otp)),
		slog.String("purpose", string(purpose)))
	return nil
}

// LastOTP returns the most recent code sent to phone.
func (n *LogOTPNotifier) LastOTP(phone string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	otp, ok := n.last[phone]
	return otp, ok
}
