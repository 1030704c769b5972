// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/lib/pq"
)

const (
	lockNotAvailableErrorCode     pq.ErrorCode = "55P03"
	serializationFailureErrorCode pq.ErrorCode = "40001"
	maxBackoffDuration                         = 1 * time.Minute
	backoffInterval                            = 1 * time.Second
)

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	WithRetryableTransaction(ctx context.Context, f func(context.Context, *sql.Tx) error) error
	Close() error
}

// RDB wraps a *sql.DB and retries statements using an exponential backoff
// (with jitter) when they fail on lock timeouts or serialization failures.
// Concurrent pushes from several CI jobs are the usual source of both.
type RDB struct {
	DB *sql.DB
}

// ExecContext wraps sql.DB.ExecContext with retries.
func (db *RDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retry(ctx, func() (err error) {
		res, err = db.DB.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

// QueryContext wraps sql.DB.QueryContext with retries.
func (db *RDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := retry(ctx, func() (err error) {
		rows, err = db.DB.QueryContext(ctx, query, args...)
		return err
	})
	return rows, err
}

// WithRetryableTransaction runs `f` in a transaction, retrying the whole
// transaction on retryable errors.
func (db *RDB) WithRetryableTransaction(ctx context.Context, f func(context.Context, *sql.Tx) error) error {
	return retry(ctx, func() error {
		tx, err := db.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		if err := f(ctx, tx); err != nil {
			if errRollback := tx.Rollback(); errRollback != nil {
				return errRollback
			}
			return err
		}
		return tx.Commit()
	})
}

func (db *RDB) Close() error {
	return db.DB.Close()
}

func retry(ctx context.Context, fn func() error) error {
	b := backoff.New(maxBackoffDuration, backoffInterval)
	for {
		err := fn()
		if err == nil || !retryable(err) {
			return err
		}
		if err := sleepCtx(ctx, b.Duration()); err != nil {
			return err
		}
	}
}

func retryable(err error) bool {
	pqErr := &pq.Error{}
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == lockNotAvailableErrorCode || pqErr.Code == serializationFailureErrorCode
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
