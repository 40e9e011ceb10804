package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"danaku/internal/logger"
)

// Options controls the store's own retry policy.
type Options struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultOptions returns the retry policy used when none is configured.
func DefaultOptions() Options {
	return Options{MaxAttempts: 5, Backoff: 20 * time.Millisecond}
}

type gormStore struct {
	db   *gorm.DB
	hub  *Hub
	opts Options
}

// NewGormStore creates a Store backed by a SQL database through GORM.
func NewGormStore(db *gorm.DB, hub *Hub, opts Options) Store {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if hub == nil {
		hub = NewHub()
	}
	return &gormStore{db: db, hub: hub, opts: opts}
}

// Transact runs fn inside a database transaction, retrying the whole attempt
// on conflicts. Change events are published only after a successful commit.
func (s *gormStore) Transact(ctx context.Context, userID string, fn func(tx Tx) error) error {
	log := logger.Named("ledger")

	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx := newGormTx(userID)
		err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
			tx.db = db
			return fn(tx)
		})
		if err == nil {
			s.hub.Publish(userID, tx.touchedCollections()...)
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		lastErr = err
		log.Debugw("transaction conflict, retrying",
			"user_id", userID,
			"attempt", attempt,
			"error", err,
		)

		if attempt < s.opts.MaxAttempts {
			if err := sleep(ctx, s.backoff(attempt)); err != nil {
				return err
			}
		}
	}

	log.Warnw("transaction retries exhausted",
		"user_id", userID,
		"attempts", s.opts.MaxAttempts,
		"error", lastErr,
	)
	if errors.Is(lastErr, ErrConflict) {
		return lastErr
	}
	return fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

// Subscribe registers a change subscription on the store's hub.
func (s *gormStore) Subscribe(userID string, collections ...Collection) *Subscription {
	return s.hub.Subscribe(userID, collections...)
}

func (s *gormStore) backoff(attempt int) time.Duration {
	if s.opts.Backoff <= 0 {
		return 0
	}
	base := s.opts.Backoff * time.Duration(attempt)
	return base + time.Duration(rand.Int63n(int64(s.opts.Backoff)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Postgres SQLSTATEs for serialization failure and deadlock.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// isRetryable reports whether err means the attempt lost a race and should
// be run again from scratch.
func isRetryable(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}
