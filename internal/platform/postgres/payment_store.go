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

// PostgresPaymentStore implements store.PaymentStore.
type PostgresPaymentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.PaymentStore = (*PostgresPaymentStore)(nil)

// NewPostgresPaymentStore creates a PostgresPaymentStore on db.
func NewPostgresPaymentStore(db store.DBTX, logger *slog.Logger) *PostgresPaymentStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPaymentStore{
		db:     db,
		logger: logger.With(slog.String("component", "payment_store")),
	}
}

// Create implements store.PaymentStore.Create
func (s *PostgresPaymentStore) Create(ctx context.Context, receipt *domain.PaymentReceipt) error {
	if receipt == nil || strings.TrimSpace(receipt.PaymentID) == "" {
		return store.NewStoreError("payment", "create", "payment id is required", store.ErrInvalidEntity)
	}

	const query = `
		INSERT INTO payments (payment_id, card_number, status, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		receipt.PaymentID, receipt.CardNumber, receipt.Status, receipt.CreatedAt.UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return store.NewStoreError("payment", "create", "payment id already used", store.ErrDuplicate)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save payment",
			slog.String("payment_id", receipt.PaymentID),
			slog.String("error", err.Error()))
		return store.NewStoreError("payment", "create", "insert failed", MapError(err))
	}
	return nil
}

// Get implements store.PaymentStore.Get
func (s *PostgresPaymentStore) Get(ctx context.Context, id string) (*domain.PaymentReceipt, error) {
	const query = `
		SELECT payment_id, card_number, status, created_at
		FROM payments
		WHERE payment_id = $1
	`
	var p domain.PaymentReceipt
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.PaymentID, &p.CardNumber, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(MapError(err), store.ErrNotFound) {
			return nil, store.ErrPaymentNotFound
		}
		return nil, store.NewStoreError("payment", "get", "query failed", MapError(err))
	}
	return &p, nil
}
