package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/cardlink/internal/api/middleware"
	"github.com/phrazzld/cardlink/internal/service"
	"github.com/phrazzld/cardlink/internal/service/auth"
)

// RouterDeps holds what NewRouter wires into handlers.
type RouterDeps struct {
	Tokens auth.ClientTokenService
	Scheme service.SchemeService
	// OTPs enables the sandbox OTP endpoint when non-nil.
	OTPs   OTPLookup
	Logger *slog.Logger
}

// NewRouter creates the scheme API router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(log))

	tokenHandler := NewClientTokenHandler(deps.Tokens, log)
	schemeHandler := NewSchemeHandler(deps.Scheme, log)
	clientAuth := apiMiddleware.NewClientTokenMiddleware(deps.Tokens)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/client-tokens", tokenHandler.IssueToken)

		r.Group(func(r chi.Router) {
			r.Use(clientAuth.Authenticate)

			r.Post("/links/otp", schemeHandler.RequestLinkOTP)
			r.Post("/links", schemeHandler.LinkCard)
			r.Post("/unlinks/otp", schemeHandler.RequestUnlinkOTP)
			r.Post("/unlinks", schemeHandler.UnlinkCard)
			r.Post("/payments", schemeHandler.RequestPayment)
			r.Get("/cards", schemeHandler.ListLinkedCards)
		})

		if deps.OTPs != nil {
			r.Get("/sandbox/otp", NewSandboxHandler(deps.OTPs).GetOTP)
		}
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
