package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/phrazzld/cardlink/internal/service/auth"
)

// ClientTokenMiddleware authenticates merchants by the client token they
// present as a bearer token.
type ClientTokenMiddleware struct {
	tokens auth.ClientTokenService
}

// NewClientTokenMiddleware creates a new ClientTokenMiddleware with the given dependencies.
func NewClientTokenMiddleware(tokens auth.ClientTokenService) *ClientTokenMiddleware {
	return &ClientTokenMiddleware{
		tokens: tokens,
	}
}

// Authenticate validates the client token from the Authorization header and
// adds the merchant app id to the request context for authorized requests.
func (m *ClientTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required",
				shared.WithErrorCode(shared.CodeUnauthorized))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format",
				shared.WithErrorCode(shared.CodeUnauthorized))
			return
		}

		claims, err := m.tokens.ValidateClientToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Client token expired",
					shared.WithErrorCode(shared.CodeTokenExpired))
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid client token",
					shared.WithErrorCode(shared.CodeUnauthorized))
			default:
				logger.FromContext(r.Context()).Error("failed to validate client token",
					slog.String("error", redact.Error(err)))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error",
					shared.WithErrorCode(shared.CodeInternal))
			}
			return
		}

		ctx := shared.SetMerchantAppID(r.Context(), claims.MerchantAppID)
		log := logger.FromContext(ctx).With(slog.String("merchant_app_id", claims.MerchantAppID))
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
	})
}

// GetMerchantAppID extracts the merchant app id from the request context.
// Returns the id and a boolean indicating if it was found.
func GetMerchantAppID(r *http.Request) (string, bool) {
	return shared.GetMerchantAppID(r.Context())
}
