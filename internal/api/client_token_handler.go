package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/service/auth"
)

// ClientTokenHandler issues client tokens to merchant apps.
type ClientTokenHandler struct {
	tokens auth.ClientTokenService
	logger *slog.Logger
}

// NewClientTokenHandler creates a new ClientTokenHandler.
func NewClientTokenHandler(tokens auth.ClientTokenService, logger *slog.Logger) *ClientTokenHandler {
	if tokens == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("client token service cannot be nil for ClientTokenHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientTokenHandler{
		tokens: tokens,
		logger: logger.With(slog.String("component", "client_token_handler")),
	}
}

// IssueToken handles POST /v1/client-tokens.
func (h *ClientTokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ClientTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	merchantAppID := strings.TrimSpace(req.MerchantAppID)
	token, expiresAt, err := h.tokens.GenerateClientToken(r.Context(), merchantAppID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to issue client token")
		return
	}

	log.Info("client token issued",
		slog.String("merchant_app_id", merchantAppID),
		slog.Time("expires_at", expiresAt))
	shared.RespondWithJSON(w, r, http.StatusCreated, ClientTokenResponse{
		ClientToken: token,
		ExpiresAt:   expiresAt,
	})
}
