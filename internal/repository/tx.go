package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger"
)

// TxFunc is the body of a transaction.  It must use tx for every
// statement and must not commit or roll back itself.
type TxFunc func(ctx context.Context, tx *sqlx.Tx) error

// Transactor runs one unit of work per transaction.  Each transaction
// bounds its row lock waits with innodb_lock_wait_timeout; lock wait
// timeouts and deadlocks surface as ErrTransientConflict and are
// retried a bounded number of times.
type Transactor struct {
	db              *sqlx.DB
	lockWaitTimeout int
	maxAttempts     int
	baseBackoff     time.Duration
	onRetry         func()
}

// TransactorOption customises a Transactor.
type TransactorOption func(*Transactor)

// WithRetryHook registers fn to be called before every retry.
func WithRetryHook(fn func()) TransactorOption {
	return func(t *Transactor) { t.onRetry = fn }
}

// WithBaseBackoff sets the delay unit between attempts.
func WithBaseBackoff(d time.Duration) TransactorOption {
	return func(t *Transactor) { t.baseBackoff = d }
}

func NewTransactor(db *sqlx.DB, cfg config.DBConfig, opts ...TransactorOption) *Transactor {
	t := &Transactor{
		db:              db,
		lockWaitTimeout: cfg.LockWaitTimeout,
		maxAttempts:     cfg.TxMaxAttempts,
		baseBackoff:     25 * time.Millisecond,
		onRetry:         func() {},
	}
	if t.lockWaitTimeout < 1 {
		t.lockWaitTimeout = 5
	}
	if t.maxAttempts < 1 {
		t.maxAttempts = 1
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithinTx runs fn inside a READ COMMITTED transaction, committing when
// fn returns nil and rolling back otherwise.
func (t *Transactor) WithinTx(ctx context.Context, fn TxFunc) error {
	var err error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		err = t.run(ctx, fn)
		if !errors.Is(err, ErrTransientConflict) || attempt == t.maxAttempts {
			return err
		}
		t.onRetry()
		logger.Warn("transaction retry",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", t.maxAttempts),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.backoff(attempt)):
		}
	}
	return err
}

// backoff grows linearly with a random jitter of up to one unit.
func (t *Transactor) backoff(attempt int) time.Duration {
	if t.baseBackoff <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int64N(int64(t.baseBackoff)))
	return time.Duration(attempt)*t.baseBackoff + jitter
}

func (t *Transactor) run(ctx context.Context, fn TxFunc) error {
	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", mapError(err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// session scoped, so it is re-applied for every pooled connection
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", t.lockWaitTimeout)); err != nil {
		return fmt.Errorf("set lock wait timeout: %w", mapError(err))
	}

	if err := fn(ctx, tx); err != nil {
		return mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", mapError(err))
	}
	committed = true
	return nil
}
