package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/platform/logger"
)

// getMerchantAppIDFromContext extracts the authenticated merchant app id
// placed in the context by the client token middleware.
func getMerchantAppIDFromContext(r *http.Request) (string, bool) {
	return shared.GetMerchantAppID(r.Context())
}

// decodeAndValidate parses the JSON body into req and checks its tags. It
// writes a 400 response and returns false when either step fails.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err,
			shared.WithErrorCode(shared.CodeInvalidRequest))
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err,
			shared.WithErrorCode(shared.CodeInvalidRequest))
		return false
	}
	return true
}

// requireMerchant returns the merchant app id of the request or writes a 401
// response. The log argument may be nil.
func requireMerchant(w http.ResponseWriter, r *http.Request, log *slog.Logger) (string, bool) {
	merchantAppID, ok := getMerchantAppIDFromContext(r)
	if !ok {
		if log == nil {
			log = logger.FromContextOrDefault(r.Context(), slog.Default())
		}
		log.Warn("merchant app id not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Client token required",
			shared.WithErrorCode(shared.CodeUnauthorized))
		return "", false
	}
	return merchantAppID, true
}
