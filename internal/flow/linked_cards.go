package flow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/phrazzld/cardlink/internal/validation"
)

const opListLinkedCards = "linked_cards.list"

// LinkedCardsRequest asks the scheme for the cards linked to a phone.
type LinkedCardsRequest struct {
	Session                  Session
	MobileNumber             string
	PhoneCountryDiallingCode string
}

// LinkedCardsClient lists linked cards. ListLinkedCards must call done
// exactly once, on any goroutine.
type LinkedCardsClient interface {
	ListLinkedCards(ctx context.Context, req LinkedCardsRequest, done func([]domain.LinkedCard, error))
}

// LinkedCards looks up the cards linked to a phone number. Unlike the flows
// it holds no state between calls.
type LinkedCards struct {
	client    LinkedCardsClient
	provider  ConfigurationProvider
	validator *validation.Validator
	logger    *slog.Logger
}

// NewLinkedCards creates a LinkedCards query. Only WithValidator is honoured
// among opts.
func NewLinkedCards(
	client LinkedCardsClient,
	provider ConfigurationProvider,
	logger *slog.Logger,
	opts ...Option,
) (*LinkedCards, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if provider == nil {
		return nil, ErrNilProvider
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	cfg := &Orchestrator{validator: validation.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	return &LinkedCards{
		client:    client,
		provider:  provider,
		validator: cfg.validator,
		logger:    logger.With("component", "linked_cards"),
	}, nil
}

// Fetch validates phone, then asks the scheme for its linked cards. done is
// called exactly once with either the cards or a *domain.DomainError.
func (q *LinkedCards) Fetch(
	ctx context.Context,
	phone domain.PhoneData,
	done func([]domain.LinkedCard, *domain.DomainError),
) {
	if invalid := q.validator.ValidateData(phone); len(invalid) > 0 {
		done(nil, domain.NewInvalidInputError(opListLinkedCards, invalid))
		return
	}

	session, derr := resolveSession(q.provider, opListLinkedCards)
	if derr != nil {
		done(nil, derr)
		return
	}

	var state domain.FlowState
	state.Apply(phone)

	q.logger.DebugContext(ctx, "listing linked cards",
		"mobile_number", redact.PhoneNumber(state.FullPhoneNumber()))

	var once sync.Once
	q.client.ListLinkedCards(ctx, LinkedCardsRequest{
		Session:                  session,
		MobileNumber:             state.MobileNumber,
		PhoneCountryDiallingCode: state.PhoneCountryDiallingCode,
	}, func(cards []domain.LinkedCard, err error) {
		once.Do(func() {
			if err != nil {
				q.logger.WarnContext(ctx, "listing linked cards failed", "error", redact.Error(err))
				done(nil, domain.NewCollaboratorError(opListLinkedCards, err))
				return
			}
			if cards == nil {
				cards = []domain.LinkedCard{}
			}
			done(cards, nil)
		})
	})
}
