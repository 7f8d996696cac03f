package database

import (
	"context"
	"errors"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// RetryPolicy decides how often a transaction is re-run after the database
// aborted it because of a concurrent writer.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy re-runs a transaction up to three times.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: 20 * time.Millisecond}

// NoRetry runs a transaction exactly once.
var NoRetry = RetryPolicy{MaxAttempts: 1}

// RunInTx runs fn inside a transaction and retries the whole unit when it
// fails with a serialization failure, deadlock or lock timeout. Any other
// error, including domain errors returned by fn, rolls back and is returned
// as is.
func RunInTx(ctx context.Context, db *gorm.DB, policy RetryPolicy, fn func(tx *gorm.DB) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.Backoff * time.Duration(attempt)):
		}
	}
	return err
}

// IsRetryable reports whether err is a transient concurrency failure.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		// ER_LOCK_DEADLOCK, ER_LOCK_WAIT_TIMEOUT
		return myErr.Number == 1213 || myErr.Number == 1205
	}

	if err != nil && strings.Contains(err.Error(), "database is locked") {
		return true
	}
	return false
}
