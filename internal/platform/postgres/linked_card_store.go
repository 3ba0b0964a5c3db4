package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/store"
)

// PostgresLinkedCardStore implements store.LinkedCardStore. The card number
// is the primary key, so a card can only be linked to one phone.
type PostgresLinkedCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.LinkedCardStore = (*PostgresLinkedCardStore)(nil)

// NewPostgresLinkedCardStore creates a PostgresLinkedCardStore on db.
func NewPostgresLinkedCardStore(db store.DBTX, logger *slog.Logger) *PostgresLinkedCardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLinkedCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "linked_card_store")),
	}
}

// Link implements store.LinkedCardStore.Link
func (s *PostgresLinkedCardStore) Link(ctx context.Context, phone string, card domain.LinkedCard) error {
	if strings.TrimSpace(phone) == "" || strings.TrimSpace(card.CardNumber) == "" {
		return store.NewStoreError("linked_card", "link", "phone and card number are required", store.ErrInvalidEntity)
	}

	const query = `
		INSERT INTO linked_cards (card_number, phone, expired_time, linked_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, card.CardNumber, phone, card.ExpiredTime, card.LinkedAt.UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrCardAlreadyLinked
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to link card",
			slog.String("error", err.Error()))
		return store.NewStoreError("linked_card", "link", "insert failed", MapError(err))
	}
	return nil
}

// Unlink implements store.LinkedCardStore.Unlink
func (s *PostgresLinkedCardStore) Unlink(ctx context.Context, phone, cardNumber string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM linked_cards WHERE card_number = $1 AND phone = $2`, cardNumber, phone)
	if err != nil {
		return store.NewStoreError("linked_card", "unlink", "delete failed", MapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.NewStoreError("linked_card", "unlink", "rows affected unavailable", err)
	}
	if n == 0 {
		return store.ErrCardNotFound
	}
	return nil
}

// ListByPhone implements store.LinkedCardStore.ListByPhone
func (s *PostgresLinkedCardStore) ListByPhone(ctx context.Context, phone string) ([]domain.LinkedCard, error) {
	const query = `
		SELECT card_number, expired_time, linked_at
		FROM linked_cards
		WHERE phone = $1
		ORDER BY linked_at, card_number
	`
	rows, err := s.db.QueryContext(ctx, query, phone)
	if err != nil {
		return nil, store.NewStoreError("linked_card", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := make([]domain.LinkedCard, 0)
	for rows.Next() {
		var c domain.LinkedCard
		if err := rows.Scan(&c.CardNumber, &c.ExpiredTime, &c.LinkedAt); err != nil {
			return nil, store.NewStoreError("linked_card", "list", "scan failed", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("linked_card", "list", "iteration failed", MapError(err))
	}
	return cards, nil
}

// PhoneFor implements store.LinkedCardStore.PhoneFor
func (s *PostgresLinkedCardStore) PhoneFor(ctx context.Context, cardNumber string) (string, error) {
	var phone string
	err := s.db.QueryRowContext(ctx,
		`SELECT phone FROM linked_cards WHERE card_number = $1`, cardNumber).Scan(&phone)
	if err != nil {
		if errors.Is(MapError(err), store.ErrNotFound) {
			return "", store.ErrCardNotFound
		}
		return "", store.NewStoreError("linked_card", "phone_for", "query failed", MapError(err))
	}
	return phone, nil
}
