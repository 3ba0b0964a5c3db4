package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/service"
)

// SchemeHandler serves the link, unlink, payment and linked-card endpoints.
// Every route it serves requires the client token middleware.
type SchemeHandler struct {
	scheme service.SchemeService
	logger *slog.Logger
}

// NewSchemeHandler creates a new SchemeHandler.
func NewSchemeHandler(scheme service.SchemeService, logger *slog.Logger) *SchemeHandler {
	if scheme == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheme service cannot be nil for SchemeHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemeHandler{
		scheme: scheme,
		logger: logger.With(slog.String("component", "scheme_handler")),
	}
}

// RequestLinkOTP handles POST /v1/links/otp.
func (h *SchemeHandler) RequestLinkOTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	merchantAppID, ok := requireMerchant(w, r, log)
	if !ok {
		return
	}

	var req LinkOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.scheme.RequestLinkOTP(r.Context(), service.OTPRequest{
		MerchantAppID: merchantAppID,
		CardNumber:    req.CardNumber,
		ExpiredTime:   req.ExpiredTime,
		MobileNumber:  req.MobileNumber,
		DiallingCode:  req.DiallingCode,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to request link OTP")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, LinkOTPResponse{LinkToken: token})
}

// LinkCard handles POST /v1/links.
func (h *SchemeHandler) LinkCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	merchantAppID, ok := requireMerchant(w, r, log)
	if !ok {
		return
	}

	var req LinkCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.scheme.LinkCard(r.Context(), service.Confirmation{
		MerchantAppID: merchantAppID,
		Token:         req.LinkToken,
		OTPCode:       req.OTPCode,
		CardNumber:    req.CardNumber,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to link card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// RequestUnlinkOTP handles POST /v1/unlinks/otp.
func (h *SchemeHandler) RequestUnlinkOTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	merchantAppID, ok := requireMerchant(w, r, log)
	if !ok {
		return
	}

	var req UnlinkOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.scheme.RequestUnlinkOTP(r.Context(), service.OTPRequest{
		MerchantAppID: merchantAppID,
		CardNumber:    req.CardNumber,
		ExpiredTime:   req.ExpiredTime,
		MobileNumber:  req.MobileNumber,
		DiallingCode:  req.DiallingCode,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to request unlink OTP")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, UnlinkOTPResponse{UnlinkToken: token})
}

// UnlinkCard handles POST /v1/unlinks.
func (h *SchemeHandler) UnlinkCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	merchantAppID, ok := requireMerchant(w, r, log)
	if !ok {
		return
	}

	var req UnlinkCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.scheme.UnlinkCard(r.Context(), service.Confirmation{
		MerchantAppID: merchantAppID,
		Token:         req.UnlinkToken,
		OTPCode:       req.OTPCode,
		CardNumber:    req.CardNumber,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to unlink card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestPayment handles POST /v1/payments.
func (h *SchemeHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	merchantAppID, ok := requireMerchant(w, r, log)
	if !ok {
		return
	}

	var req PaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	receipt, err := h.scheme.RequestPayment(r.Context(), service.PaymentRequest{
		MerchantAppID: merchantAppID,
		CardNumber:    req.CardNumber,
		MobileNumber:  req.MobileNumber,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to request payment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, receipt)
}

// ListLinkedCards handles GET /v1/cards?mobile_number=...&dialling_code=...
func (h *SchemeHandler) ListLinkedCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	merchantAppID, ok := requireMerchant(w, r, log)
	if !ok {
		return
	}

	query := r.URL.Query()
	cards, err := h.scheme.ListLinkedCards(r.Context(), merchantAppID, domain.PhoneData{
		MobileNumber:             query.Get("mobile_number"),
		PhoneCountryDiallingCode: query.Get("dialling_code"),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list linked cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LinkedCardsResponse{Cards: cards})
}
