package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/cardlink/internal/config"
	"github.com/phrazzld/cardlink/internal/platform/logger"
)

// hmacClientTokenService is an implementation of ClientTokenService using HMAC-SHA signing.
type hmacClientTokenService struct {
	signingKey    []byte
	issuer        string
	tokenLifetime time.Duration
	timeFunc      func() time.Time // Injectable for testing
	clockSkew     time.Duration    // Allowed time difference for validation to handle clock drift
}

// clientTokenClaims defines the structure of JWT claims we use
type clientTokenClaims struct {
	MerchantAppID string `json:"mid"`
	jwt.RegisteredClaims
}

// Ensure hmacClientTokenService implements ClientTokenService interface
var _ ClientTokenService = (*hmacClientTokenService)(nil)

// NewClientTokenService creates a new client token service using HMAC-SHA signing.
func NewClientTokenService(cfg config.SandboxConfig) (ClientTokenService, error) {
	if len(cfg.TokenSecret) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 characters")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive")
	}

	return &hmacClientTokenService{
		signingKey:    []byte(cfg.TokenSecret),
		issuer:        cfg.TokenIssuer,
		tokenLifetime: cfg.TokenTTL,
		timeFunc:      time.Now,
		clockSkew:     time.Minute,
	}, nil
}

// NewClientTokenServiceWithClock is NewClientTokenService with an injected clock.
func NewClientTokenServiceWithClock(cfg config.SandboxConfig, now func() time.Time) (ClientTokenService, error) {
	svc, err := NewClientTokenService(cfg)
	if err != nil {
		return nil, err
	}
	impl := svc.(*hmacClientTokenService)
	impl.timeFunc = now
	return impl, nil
}

// GenerateClientToken creates a signed client token for merchantAppID.
func (s *hmacClientTokenService) GenerateClientToken(
	ctx context.Context,
	merchantAppID string,
) (string, time.Time, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(merchantAppID) == "" {
		return "", time.Time{}, fmt.Errorf("merchant app id is required")
	}

	now := s.timeFunc()
	expiresAt := now.Add(s.tokenLifetime)
	claims := clientTokenClaims{
		MerchantAppID: merchantAppID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   merchantAppID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign client token",
			"error", err,
			"merchant_app_id", merchantAppID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", time.Time{}, fmt.Errorf("failed to sign client token with HMAC-SHA256: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateClientToken validates a client token and returns its claims.
func (s *hmacClientTokenService) ValidateClientToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := s.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&clientTokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("client token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("client token validation failed: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("client token validation failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*clientTokenClaims)
	if !ok || !token.Valid || claims.MerchantAppID == "" {
		log.Debug("client token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	return &Claims{
		MerchantAppID: claims.MerchantAppID,
		Issuer:        claims.Issuer,
		Subject:       claims.Subject,
		IssuedAt:      claims.IssuedAt.Time,
		ExpiresAt:     claims.ExpiresAt.Time,
		ID:            claims.ID,
	}, nil
}
