package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/phrazzld/cardlink/internal/service/auth"
	"github.com/phrazzld/cardlink/internal/store"
	"github.com/phrazzld/cardlink/internal/validation"
)

// PaymentStatusSubmitted is the status of every accepted payment request.
const PaymentStatusSubmitted = "submitted"

// OTPRequest asks the scheme to send an OTP authorizing a link or unlink.
type OTPRequest struct {
	MerchantAppID string
	CardNumber    string
	ExpiredTime   string
	MobileNumber  string
	DiallingCode  string
}

// Confirmation completes an OTP challenge.
type Confirmation struct {
	MerchantAppID string
	Token         string
	OTPCode       string
	CardNumber    string
}

// PaymentRequest asks the scheme to start a payment with a linked card.
type PaymentRequest struct {
	MerchantAppID string
	CardNumber    string
	MobileNumber  string
}

// SchemeService emulates the card scheme's link, unlink and payment operations.
type SchemeService interface {
	// RequestLinkOTP sends an OTP to the phone and returns the link token.
	RequestLinkOTP(ctx context.Context, req OTPRequest) (string, error)

	// LinkCard confirms a link challenge and links the card to its phone.
	LinkCard(ctx context.Context, c Confirmation) (*domain.LinkedCard, error)

	// RequestUnlinkOTP sends an OTP to the phone a card is linked to and
	// returns the unlink token.
	RequestUnlinkOTP(ctx context.Context, req OTPRequest) (string, error)

	// UnlinkCard confirms an unlink challenge and removes the card.
	UnlinkCard(ctx context.Context, c Confirmation) error

	// RequestPayment records a payment request for a linked card.
	RequestPayment(ctx context.Context, req PaymentRequest) (*domain.PaymentReceipt, error)

	// ListLinkedCards returns the cards linked to the phone.
	ListLinkedCards(ctx context.Context, merchantAppID string, phone domain.PhoneData) ([]domain.LinkedCard, error)

	// PurgeExpiredChallenges drops expired OTP challenges and returns how many.
	PurgeExpiredChallenges(ctx context.Context) int
}

// SchemeServiceConfig tunes OTP challenges.
type SchemeServiceConfig struct {
	OTPLength   int
	OTPTTL      time.Duration
	MaxAttempts int
}

// SchemeServiceOption configures the scheme service.
type SchemeServiceOption func(*schemeServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SchemeServiceOption {
	return func(s *schemeServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOTPGenerator replaces the random OTP source.
func WithOTPGenerator(gen func(length int) (string, error)) SchemeServiceOption {
	return func(s *schemeServiceImpl) {
		if gen != nil {
			s.generateOTP = gen
		}
	}
}

// schemeServiceImpl implements the SchemeService interface
type schemeServiceImpl struct {
	challenges  store.ChallengeStore
	cards       store.LinkedCardStore
	payments    store.PaymentStore
	hasher      auth.OTPHasher
	notifier    OTPNotifier
	validator   *validation.Validator
	cfg         SchemeServiceConfig
	now         func() time.Time
	generateOTP func(length int) (string, error)
	logger      *slog.Logger
}

// NewSchemeService creates a new SchemeService.
// It returns an error if any of the required dependencies are nil.
func NewSchemeService(
	challenges store.ChallengeStore,
	cards store.LinkedCardStore,
	payments store.PaymentStore,
	hasher auth.OTPHasher,
	notifier OTPNotifier,
	cfg SchemeServiceConfig,
	logger *slog.Logger,
	opts ...SchemeServiceOption,
) (SchemeService, error) {
	if challenges == nil {
		return nil, errors.New("challenge store cannot be nil")
	}
	if cards == nil {
		return nil, errors.New("linked card store cannot be nil")
	}
	if payments == nil {
		return nil, errors.New("payment store cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("otp hasher cannot be nil")
	}
	if notifier == nil {
		return nil, errors.New("otp notifier cannot be nil")
	}
	if cfg.OTPLength <= 0 || cfg.OTPTTL <= 0 || cfg.MaxAttempts <= 0 {
		return nil, errors.New("otp length, ttl and max attempts must be positive")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &schemeServiceImpl{
		challenges:  challenges,
		cards:       cards,
		payments:    payments,
		hasher:      hasher,
		notifier:    notifier,
		validator:   validation.Default(),
		cfg:         cfg,
		now:         time.Now,
		generateOTP: auth.GenerateOTP,
		logger:      logger.With(slog.String("component", "scheme_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RequestLinkOTP implements SchemeService.RequestLinkOTP
func (s *schemeServiceImpl) RequestLinkOTP(ctx context.Context, req OTPRequest) (string, error) {
	const op = "request_link_otp"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.validateOTPRequest(op, req); err != nil {
		return "", err
	}

	cardNumber := strings.TrimSpace(req.CardNumber)
	if _, err := s.cards.PhoneFor(ctx, cardNumber); err == nil {
		log.Info("link requested for an already linked card",
			slog.String("card_number", redact.CardNumber(cardNumber)))
		return "", NewSchemeServiceError(op, "card already linked", ErrCardAlreadyLinked)
	} else if !store.IsNotFoundError(err) {
		return "", NewSchemeServiceError(op, "failed to look up card", err)
	}

	return s.issueChallenge(ctx, op, store.ChallengeLink, req, phoneOf(req))
}

// LinkCard implements SchemeService.LinkCard
func (s *schemeServiceImpl) LinkCard(ctx context.Context, c Confirmation) (*domain.LinkedCard, error) {
	const op = "link_card"
	log := logger.FromContextOrDefault(ctx, s.logger)

	challenge, err := s.confirm(ctx, op, store.ChallengeLink, c)
	if err != nil {
		return nil, err
	}

	card := domain.LinkedCard{
		CardNumber:  challenge.CardNumber,
		ExpiredTime: challenge.ExpiredTime,
		LinkedAt:    s.now().UTC(),
	}
	if err := s.cards.Link(ctx, challenge.Phone, card); err != nil {
		if store.IsDuplicateError(err) {
			return nil, NewSchemeServiceError(op, "card already linked", ErrCardAlreadyLinked)
		}
		return nil, NewSchemeServiceError(op, "failed to link card", err)
	}

	log.Info("card linked",
		slog.String("card_number", redact.CardNumber(card.CardNumber)),
		slog.String("phone", redact.PhoneNumber(challenge.Phone)))
	return &card, nil
}

// RequestUnlinkOTP implements SchemeService.RequestUnlinkOTP
func (s *schemeServiceImpl) RequestUnlinkOTP(ctx context.Context, req OTPRequest) (string, error) {
	const op = "request_unlink_otp"

	if err := s.validateOTPRequest(op, req); err != nil {
		return "", err
	}

	phone := phoneOf(req)
	linkedTo, err := s.cards.PhoneFor(ctx, strings.TrimSpace(req.CardNumber))
	if err != nil {
		if store.IsNotFoundError(err) {
			return "", NewSchemeServiceError(op, "card is not linked", ErrCardNotLinked)
		}
		return "", NewSchemeServiceError(op, "failed to look up card", err)
	}
	if linkedTo != phone {
		return "", NewSchemeServiceError(op, "card is linked to another phone", ErrCardNotLinked)
	}

	return s.issueChallenge(ctx, op, store.ChallengeUnlink, req, phone)
}

// UnlinkCard implements SchemeService.UnlinkCard
func (s *schemeServiceImpl) UnlinkCard(ctx context.Context, c Confirmation) error {
	const op = "unlink_card"
	log := logger.FromContextOrDefault(ctx, s.logger)

	challenge, err := s.confirm(ctx, op, store.ChallengeUnlink, c)
	if err != nil {
		return err
	}

	if err := s.cards.Unlink(ctx, challenge.Phone, challenge.CardNumber); err != nil {
		if store.IsNotFoundError(err) {
			return NewSchemeServiceError(op, "card is not linked", ErrCardNotLinked)
		}
		return NewSchemeServiceError(op, "failed to unlink card", err)
	}

	log.Info("card unlinked",
		slog.String("card_number", redact.CardNumber(challenge.CardNumber)),
		slog.String("phone", redact.PhoneNumber(challenge.Phone)))
	return nil
}

// RequestPayment implements SchemeService.RequestPayment
func (s *schemeServiceImpl) RequestPayment(ctx context.Context, req PaymentRequest) (*domain.PaymentReceipt, error) {
	const op = "request_payment"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.invalid(op, s.validator.ValidateData(domain.PaymentData{
		CardNumber:   req.CardNumber,
		MobileNumber: req.MobileNumber,
	})); err != nil {
		return nil, err
	}

	cardNumber := strings.TrimSpace(req.CardNumber)
	phone, err := s.cards.PhoneFor(ctx, cardNumber)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewSchemeServiceError(op, "card is not linked", ErrCardNotLinked)
		}
		return nil, NewSchemeServiceError(op, "failed to look up card", err)
	}
	if !phoneMatches(phone, strings.TrimSpace(req.MobileNumber)) {
		return nil, NewSchemeServiceError(op, "card is linked to another phone", ErrCardNotLinked)
	}

	receipt := &domain.PaymentReceipt{
		PaymentID:  uuid.NewString(),
		CardNumber: cardNumber,
		Status:     PaymentStatusSubmitted,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.payments.Create(ctx, receipt); err != nil {
		return nil, NewSchemeServiceError(op, "failed to save payment", err)
	}

	log.Info("payment request accepted",
		slog.String("payment_id", receipt.PaymentID),
		slog.String("card_number", redact.CardNumber(cardNumber)),
		slog.String("merchant_app_id", req.MerchantAppID))
	return receipt, nil
}

// ListLinkedCards implements SchemeService.ListLinkedCards
func (s *schemeServiceImpl) ListLinkedCards(
	ctx context.Context,
	merchantAppID string,
	phone domain.PhoneData,
) ([]domain.LinkedCard, error) {
	const op = "list_linked_cards"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.invalid(op, s.validator.ValidateData(phone)); err != nil {
		return nil, err
	}

	full := strings.TrimSpace(phone.PhoneCountryDiallingCode) + strings.TrimSpace(phone.MobileNumber)
	cards, err := s.cards.ListByPhone(ctx, full)
	if err != nil {
		return nil, NewSchemeServiceError(op, "failed to list cards", err)
	}

	log.Debug("listed linked cards",
		slog.String("phone", redact.PhoneNumber(full)),
		slog.String("merchant_app_id", merchantAppID),
		slog.Int("count", len(cards)))
	return cards, nil
}

// PurgeExpiredChallenges implements SchemeService.PurgeExpiredChallenges
func (s *schemeServiceImpl) PurgeExpiredChallenges(ctx context.Context) int {
	removed := s.challenges.DeleteExpired(ctx, s.now())
	if removed > 0 {
		s.logger.DebugContext(ctx, "purged expired otp challenges", slog.Int("count", removed))
	}
	return removed
}

func (s *schemeServiceImpl) issueChallenge(
	ctx context.Context,
	op string,
	purpose store.ChallengePurpose,
	req OTPRequest,
	phone string,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	otp, err := s.generateOTP(s.cfg.OTPLength)
	if err != nil {
		return "", NewSchemeServiceError(op, "failed to generate otp", err)
	}
	hash, err := s.hasher.Hash(otp)
	if err != nil {
		return "", NewSchemeServiceError(op, "failed to hash otp", err)
	}

	now := s.now()
	challenge := &store.Challenge{
		Token:         uuid.NewString(),
		Purpose:       purpose,
		MerchantAppID: req.MerchantAppID,
		CardNumber:    strings.TrimSpace(req.CardNumber),
		ExpiredTime:   strings.TrimSpace(req.ExpiredTime),
		Phone:         phone,
		OTPHash:       hash,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.OTPTTL),
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return "", NewSchemeServiceError(op, "failed to save challenge", err)
	}

	if err := s.notifier.SendOTP(ctx, phone, otp, purpose); err != nil {
		_ = s.challenges.Delete(ctx, challenge.Token)
		return "", NewSchemeServiceError(op, "failed to deliver otp", err)
	}

	log.Info("otp challenge issued",
		slog.String("purpose", string(purpose)),
		slog.String("card_number", redact.CardNumber(challenge.CardNumber)),
		slog.String("phone", redact.PhoneNumber(phone)),
		slog.Time("expires_at", challenge.ExpiresAt))
	return challenge.Token, nil
}

// confirm checks c against its challenge and consumes the challenge on success.
func (s *schemeServiceImpl) confirm(
	ctx context.Context,
	op string,
	purpose store.ChallengePurpose,
	c Confirmation,
) (*store.Challenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	errs := []domain.ValidationError{}
	if verr := s.validator.CardNumber(c.CardNumber); verr != nil {
		errs = append(errs, *verr)
	}
	if verr := s.validator.OTPCode(c.OTPCode); verr != nil {
		errs = append(errs, *verr)
	}
	if err := s.invalid(op, errs); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(c.Token)
	challenge, err := s.challenges.Get(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewSchemeServiceError(op, "unknown token", ErrChallengeNotFound)
		}
		return nil, NewSchemeServiceError(op, "failed to load challenge", err)
	}
	if challenge.Purpose != purpose {
		return nil, NewSchemeServiceError(op, "unknown token", ErrChallengeNotFound)
	}
	if challenge.MerchantAppID != c.MerchantAppID {
		return nil, NewSchemeServiceError(op, "token issued to another merchant", ErrMerchantMismatch)
	}
	if challenge.Expired(s.now()) {
		_ = s.challenges.Delete(ctx, token)
		return nil, NewSchemeServiceError(op, "otp expired", ErrChallengeExpired)
	}
	if challenge.CardNumber != strings.TrimSpace(c.CardNumber) {
		return nil, NewSchemeServiceError(op, "card number does not match", ErrCardMismatch)
	}

	if err := s.hasher.Compare(challenge.OTPHash, strings.TrimSpace(c.OTPCode)); err != nil {
		if !errors.Is(err, auth.ErrOTPMismatch) {
			return nil, NewSchemeServiceError(op, "failed to verify otp", err)
		}
		attempts, incErr := s.challenges.IncrementAttempts(ctx, token)
		if incErr != nil {
			return nil, NewSchemeServiceError(op, "failed to record attempt", incErr)
		}
		log.Warn("otp mismatch",
			slog.String("purpose", string(purpose)),
			slog.Int("attempts", attempts))
		if attempts >= s.cfg.MaxAttempts {
			_ = s.challenges.Delete(ctx, token)
			return nil, NewSchemeServiceError(op, "challenge discarded", ErrTooManyAttempts)
		}
		return nil, NewSchemeServiceError(op, "otp mismatch", ErrInvalidOTP)
	}

	if err := s.challenges.Delete(ctx, token); err != nil {
		// A concurrent confirmation consumed it first.
		if store.IsNotFoundError(err) {
			return nil, NewSchemeServiceError(op, "unknown token", ErrChallengeNotFound)
		}
		return nil, NewSchemeServiceError(op, "failed to consume challenge", err)
	}
	return challenge, nil
}

func (s *schemeServiceImpl) validateOTPRequest(op string, req OTPRequest) error {
	return s.invalid(op, s.validator.ValidateData(domain.CardAndPhoneData{
		Card: domain.Card{CardNumber: req.CardNumber, ExpiredTime: req.ExpiredTime},
		Phone: domain.PhoneData{
			MobileNumber:             req.MobileNumber,
			PhoneCountryDiallingCode: req.DiallingCode,
		},
	}))
}

// invalid turns validation results into an ErrInvalidRequest, or nil.
func (s *schemeServiceImpl) invalid(op string, errs []domain.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return NewSchemeServiceError(op, errs[0].Message, ErrInvalidRequest)
}

func phoneOf(req OTPRequest) string {
	return strings.TrimSpace(req.DiallingCode) + strings.TrimSpace(req.MobileNumber)
}

// phoneMatches reports whether mobile identifies the full phone number,
// either as the full number or as its national part.
func phoneMatches(full, mobile string) bool {
	if strings.HasPrefix(mobile, "+") {
		return full == mobile
	}
	return mobile != "" && strings.HasSuffix(full, mobile)
}
