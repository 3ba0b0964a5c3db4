package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/cardlink/internal/api/middleware"
	"github.com/phrazzld/cardlink/internal/api/shared"
	"github.com/phrazzld/cardlink/internal/mocks"
	"github.com/phrazzld/cardlink/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientTokenMiddleware(t *testing.T) {
	t.Parallel()

	tokens := &mocks.MockClientTokenService{
		ValidateClientTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			switch token {
			case "valid":
				return &auth.Claims{MerchantAppID: "merchant-app-1"}, nil
			case "expired":
				return nil, auth.ErrExpiredToken
			case "broken":
				return nil, errors.New("key store unavailable")
			default:
				return nil, auth.ErrInvalidToken
			}
		},
	}
	mw := middleware.NewClientTokenMiddleware(tokens)

	var gotMerchant string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMerchant, _ = middleware.GetMerchantAppID(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := mw.Authenticate(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid token", "Bearer valid", http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, shared.CodeUnauthorized},
		{"wrong scheme", "Basic valid", http.StatusUnauthorized, shared.CodeUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized, shared.CodeUnauthorized},
		{"extra parts", "Bearer a b", http.StatusUnauthorized, shared.CodeUnauthorized},
		{"expired token", "Bearer expired", http.StatusUnauthorized, shared.CodeTokenExpired},
		{"invalid token", "Bearer forged", http.StatusUnauthorized, shared.CodeUnauthorized},
		{"validation failure", "Bearer broken", http.StatusInternalServerError, shared.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMerchant = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/cards", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "merchant-app-1", gotMerchant)
				return
			}
			assert.Empty(t, gotMerchant)
			var resp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}
