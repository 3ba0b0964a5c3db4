package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/store"
)

// PostgresChallengeStore implements store.ChallengeStore.
type PostgresChallengeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ChallengeStore = (*PostgresChallengeStore)(nil)

// NewPostgresChallengeStore creates a PostgresChallengeStore on db, which may
// be a pool or a transaction owned by the caller.
func NewPostgresChallengeStore(db store.DBTX, logger *slog.Logger) *PostgresChallengeStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChallengeStore{
		db:     db,
		logger: logger.With(slog.String("component", "challenge_store")),
	}
}

// Create implements store.ChallengeStore.Create
func (s *PostgresChallengeStore) Create(ctx context.Context, c *store.Challenge) error {
	if c == nil || strings.TrimSpace(c.Token) == "" || c.OTPHash == "" {
		return store.NewStoreError("challenge", "create", "token and otp hash are required", store.ErrInvalidEntity)
	}

	const query = `
		INSERT INTO challenges (token, purpose, merchant_app_id, card_number, expired_time,
			phone, otp_hash, attempts, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.Token, string(c.Purpose), c.MerchantAppID, c.CardNumber, c.ExpiredTime,
		c.Phone, c.OTPHash, c.Attempts, c.CreatedAt.UTC(), c.ExpiresAt.UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrChallengeExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create challenge",
			slog.String("purpose", string(c.Purpose)),
			slog.String("error", err.Error()))
		return store.NewStoreError("challenge", "create", "insert failed", MapError(err))
	}
	return nil
}

// Get implements store.ChallengeStore.Get
func (s *PostgresChallengeStore) Get(ctx context.Context, token string) (*store.Challenge, error) {
	const query = `
		SELECT token, purpose, merchant_app_id, card_number, expired_time,
			phone, otp_hash, attempts, created_at, expires_at
		FROM challenges
		WHERE token = $1
	`
	var (
		c       store.Challenge
		purpose string
	)
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&c.Token, &purpose, &c.MerchantAppID, &c.CardNumber, &c.ExpiredTime,
		&c.Phone, &c.OTPHash, &c.Attempts, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(MapError(err), store.ErrNotFound) {
			return nil, store.ErrChallengeNotFound
		}
		return nil, store.NewStoreError("challenge", "get", "query failed", MapError(err))
	}
	c.Purpose = store.ChallengePurpose(purpose)
	return &c, nil
}

// IncrementAttempts implements store.ChallengeStore.IncrementAttempts
func (s *PostgresChallengeStore) IncrementAttempts(ctx context.Context, token string) (int, error) {
	const query = `UPDATE challenges SET attempts = attempts + 1 WHERE token = $1 RETURNING attempts`

	var attempts int
	if err := s.db.QueryRowContext(ctx, query, token).Scan(&attempts); err != nil {
		if errors.Is(MapError(err), store.ErrNotFound) {
			return 0, store.ErrChallengeNotFound
		}
		return 0, store.NewStoreError("challenge", "increment_attempts", "update failed", MapError(err))
	}
	return attempts, nil
}

// Delete implements store.ChallengeStore.Delete
func (s *PostgresChallengeStore) Delete(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE token = $1`, token)
	if err != nil {
		return store.NewStoreError("challenge", "delete", "delete failed", MapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.NewStoreError("challenge", "delete", "rows affected unavailable", err)
	}
	if n == 0 {
		return store.ErrChallengeNotFound
	}
	return nil
}

// DeleteExpired implements store.ChallengeStore.DeleteExpired. Failures are
// logged and reported as zero removals; the next purge retries.
func (s *PostgresChallengeStore) DeleteExpired(ctx context.Context, now time.Time) int {
	log := logger.FromContextOrDefault(ctx, s.logger)

	res, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		log.Error("failed to delete expired challenges", slog.String("error", err.Error()))
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to count deleted challenges", slog.String("error", err.Error()))
		return 0
	}
	return int(n)
}
