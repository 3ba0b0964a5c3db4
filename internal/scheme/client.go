package scheme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/cardlink/internal/config"
	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/redact"
)

const defaultResponseBodyLimit int64 = 1 << 20

// HTTPDoer is the subset of *http.Client the Client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// ClientToken is a token issued by the scheme for a merchant app.
type ClientToken struct {
	Token     string
	ExpiresAt time.Time
}

// Client is a synchronous client for the scheme API.
type Client struct {
	baseURL *url.URL
	http    HTTPDoer
	logger  *slog.Logger
}

// NewClient creates a Client for the backend described by cfg.
func NewClient(cfg config.SchemeConfig, logger *slog.Logger, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid scheme base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid scheme base url %q: scheme and host are required", cfg.BaseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "scheme_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type clientTokenRequest struct {
	MerchantAppID string `json:"merchant_app_id"`
}

type clientTokenResponse struct {
	ClientToken string    `json:"client_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type otpRequest struct {
	CardNumber   string `json:"card_number"`
	ExpiredTime  string `json:"expired_time,omitempty"`
	MobileNumber string `json:"mobile_number"`
	DiallingCode string `json:"dialling_code"`
}

type linkOTPResponse struct {
	LinkToken string `json:"link_token"`
}

type unlinkOTPResponse struct {
	UnlinkToken string `json:"unlink_token"`
}

type linkCardRequest struct {
	LinkToken  string `json:"link_token"`
	OTPCode    string `json:"otp_code"`
	CardNumber string `json:"card_number"`
}

type unlinkCardRequest struct {
	UnlinkToken string `json:"unlink_token"`
	OTPCode     string `json:"otp_code"`
	CardNumber  string `json:"card_number"`
}

type paymentRequest struct {
	CardNumber   string `json:"card_number"`
	MobileNumber string `json:"mobile_number"`
}

type linkedCardsResponse struct {
	Cards []domain.LinkedCard `json:"cards"`
}

type sandboxOTPResponse struct {
	OTP string `json:"otp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	TraceID string `json:"trace_id"`
}

// IssueClientToken asks the scheme for a client token for merchantAppID.
func (c *Client) IssueClientToken(ctx context.Context, merchantAppID string) (ClientToken, error) {
	var resp clientTokenResponse
	err := c.do(ctx, "issue_client_token", http.MethodPost, "/v1/client-tokens", "",
		clientTokenRequest{MerchantAppID: merchantAppID}, &resp)
	if err != nil {
		return ClientToken{}, err
	}
	return ClientToken{Token: resp.ClientToken, ExpiresAt: resp.ExpiresAt}, nil
}

// RequestLinkOTP implements the first step of the link flow.
func (c *Client) RequestLinkOTP(ctx context.Context, req flow.LinkOTPRequest) (flow.LinkOTPResponse, error) {
	var resp linkOTPResponse
	err := c.do(ctx, "request_link_otp", http.MethodPost, "/v1/links/otp", req.Session.ClientToken, otpRequest{
		CardNumber:   req.CardNumber,
		MobileNumber: req.MobileNumber,
		DiallingCode: req.PhoneCountryDiallingCode,
	}, &resp)
	if err != nil {
		return flow.LinkOTPResponse{}, err
	}
	return flow.LinkOTPResponse{LinkToken: resp.LinkToken}, nil
}

// LinkCard confirms a link with the OTP.
func (c *Client) LinkCard(ctx context.Context, req flow.LinkCardRequest) (domain.LinkedCard, error) {
	var card domain.LinkedCard
	err := c.do(ctx, "link_card", http.MethodPost, "/v1/links", req.Session.ClientToken, linkCardRequest{
		LinkToken:  req.LinkToken,
		OTPCode:    req.OTPCode,
		CardNumber: req.CardNumber,
	}, &card)
	return card, err
}

// RequestUnlinkOTP implements the first step of the unlink flow.
func (c *Client) RequestUnlinkOTP(ctx context.Context, req flow.UnlinkOTPRequest) (flow.UnlinkOTPResponse, error) {
	var resp unlinkOTPResponse
	err := c.do(ctx, "request_unlink_otp", http.MethodPost, "/v1/unlinks/otp", req.Session.ClientToken, otpRequest{
		CardNumber:   req.CardNumber,
		ExpiredTime:  req.ExpiredTime,
		MobileNumber: req.MobileNumber,
		DiallingCode: req.PhoneCountryDiallingCode,
	}, &resp)
	if err != nil {
		return flow.UnlinkOTPResponse{}, err
	}
	return flow.UnlinkOTPResponse{UnlinkToken: resp.UnlinkToken}, nil
}

// UnlinkCard confirms an unlink with the OTP.
func (c *Client) UnlinkCard(ctx context.Context, req flow.UnlinkCardRequest) error {
	return c.do(ctx, "unlink_card", http.MethodPost, "/v1/unlinks", req.Session.ClientToken, unlinkCardRequest{
		UnlinkToken: req.UnlinkToken,
		OTPCode:     req.OTPCode,
		CardNumber:  req.CardNumber,
	}, nil)
}

// RequestPayment asks the scheme to charge a linked card.
func (c *Client) RequestPayment(ctx context.Context, req flow.PaymentRequest) (domain.PaymentReceipt, error) {
	var receipt domain.PaymentReceipt
	err := c.do(ctx, "request_payment", http.MethodPost, "/v1/payments", req.Session.ClientToken, paymentRequest{
		CardNumber:   req.CardNumber,
		MobileNumber: req.MobileNumber,
	}, &receipt)
	return receipt, err
}

// ListLinkedCards returns the cards linked to a phone.
func (c *Client) ListLinkedCards(ctx context.Context, req flow.LinkedCardsRequest) ([]domain.LinkedCard, error) {
	q := url.Values{}
	q.Set("mobile_number", req.MobileNumber)
	q.Set("dialling_code", req.PhoneCountryDiallingCode)

	var resp linkedCardsResponse
	err := c.do(ctx, "list_linked_cards", http.MethodGet, "/v1/cards?"+q.Encode(), req.Session.ClientToken, nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Cards == nil {
		resp.Cards = []domain.LinkedCard{}
	}
	return resp.Cards, nil
}

// SandboxOTP reads the last OTP the sandbox sent to phone. Only sandbox
// backends started with OTP exposure serve it.
func (c *Client) SandboxOTP(ctx context.Context, phone string) (string, error) {
	q := url.Values{}
	q.Set("phone", phone)

	var resp sandboxOTPResponse
	if err := c.do(ctx, "sandbox_otp", http.MethodGet, "/v1/sandbox/otp?"+q.Encode(), "", nil, &resp); err != nil {
		return "", err
	}
	return resp.OTP, nil
}

// do sends body as JSON to path and decodes a 2xx response into out. A nil
// out discards the response body.
func (c *Client) do(
	ctx context.Context,
	op, method, path, token string,
	body interface{},
	out interface{},
) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("scheme %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	target, err := c.baseURL.Parse(c.baseURL.Path + path)
	if err != nil {
		return fmt.Errorf("scheme %s: build url: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("scheme %s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	startedAt := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("scheme request failed",
			slog.String("operation", op),
			slog.String("error", redact.Error(err)))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("scheme %s: %w", op, ctxErr)
		}
		return fmt.Errorf("scheme %s: %w: %v", op, ErrSchemeUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, defaultResponseBodyLimit+1))
	if err != nil {
		return fmt.Errorf("scheme %s: read response: %w", op, err)
	}
	if int64(len(raw)) > defaultResponseBodyLimit {
		return fmt.Errorf("scheme %s: response body exceeds %d bytes", op, defaultResponseBodyLimit)
	}

	log.Debug("scheme request completed",
		slog.String("operation", op),
		slog.Int("status_code", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(startedAt).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Operation: op, Status: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			apiErr.Code = er.Code
			apiErr.Message = er.Error
			apiErr.TraceID = er.TraceID
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("scheme %s: decode response: %w", op, err)
	}
	return nil
}
