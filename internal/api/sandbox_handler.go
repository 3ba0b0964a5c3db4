package api

import (
	"net/http"
	"strings"

	"github.com/phrazzld/cardlink/internal/api/shared"
)

// OTPLookup returns the last OTP delivered to a phone.
type OTPLookup interface {
	LastOTP(phone string) (string, bool)
}

// SandboxHandler serves test-only endpoints of the sandbox.
type SandboxHandler struct {
	otps OTPLookup
}

// NewSandboxHandler creates a new SandboxHandler.
func NewSandboxHandler(otps OTPLookup) *SandboxHandler {
	if otps == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("otp lookup cannot be nil for SandboxHandler")
	}
	return &SandboxHandler{otps: otps}
}

// GetOTP handles GET /v1/sandbox/otp?phone=+971501234567.
func (h *SandboxHandler) GetOTP(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid phone: required field",
			shared.WithErrorCode(shared.CodeInvalidRequest))
		return
	}

	otp, ok := h.otps.LastOTP(phone)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "No OTP sent to this phone",
			shared.WithErrorCode(shared.CodeNotFound))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SandboxOTPResponse{Phone: phone, OTP: otp})
}
