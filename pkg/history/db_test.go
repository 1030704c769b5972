// SPDX-License-Identifier: Apache-2.0

package history_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/sandbench/internal/testutils"
	"github.com/xataio/sandbench/pkg/history"
)

func TestPushRetriesWhileRunsLocked(t *testing.T) {
	t.Parallel()

	withLockTimeoutStore(t, 100, func(st *history.Store, conn *sql.DB) {
		ctx := context.Background()
		holdTableLock(t, conn, "runs", time.Second)

		start := time.Now()
		run, err := st.Push(ctx, "abc123", "0.3.0", sampleResults())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)

		latest, _, err := st.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, run.ID, latest.ID)
	})
}

func TestLatestRetriesWhileResultsLocked(t *testing.T) {
	t.Parallel()

	withLockTimeoutStore(t, 100, func(st *history.Store, conn *sql.DB) {
		ctx := context.Background()
		_, err := st.Push(ctx, "abc123", "0.3.0", sampleResults())
		require.NoError(t, err)

		holdTableLock(t, conn, "results", time.Second)

		_, results, err := st.Latest(ctx)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})
}

func TestPushGivesUpWhenContextCancelled(t *testing.T) {
	t.Parallel()

	withLockTimeoutStore(t, 100, func(st *history.Store, conn *sql.DB) {
		holdTableLock(t, conn, "runs", 2*time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		_, err := st.Push(ctx, "abc123", "0.3.0", sampleResults())
		require.Error(t, err)
	})
}

// Two jobs allocating the next run number at once: under SERIALIZABLE one
// of them fails with a serialization failure and must be retried.
func TestWithRetryableTransactionRetriesSerializationFailure(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *sql.DB, _ string) {
		ctx := context.Background()
		_, err := conn.ExecContext(ctx, "CREATE TABLE run_numbers (n INT NOT NULL)")
		require.NoError(t, err)

		rdb := &history.RDB{DB: conn}

		var attempts atomic.Int32
		var bothRead sync.WaitGroup
		bothRead.Add(2)

		nextRunNumber := func(first *bool) func(context.Context, *sql.Tx) error {
			return func(ctx context.Context, tx *sql.Tx) error {
				attempts.Add(1)
				if _, err := tx.ExecContext(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE"); err != nil {
					return err
				}

				var last int
				if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(n), 0) FROM run_numbers").Scan(&last); err != nil {
					return err
				}

				// Only the first attempts overlap.
				if *first {
					*first = false
					bothRead.Done()
					bothRead.Wait()
				}

				_, err := tx.ExecContext(ctx, "INSERT INTO run_numbers (n) VALUES ($1)", last+1)
				return err
			}
		}

		errs := make(chan error, 2)
		for range 2 {
			go func() {
				first := true
				errs <- rdb.WithRetryableTransaction(ctx, nextRunNumber(&first))
			}()
		}
		require.NoError(t, <-errs)
		require.NoError(t, <-errs)

		rows, err := conn.QueryContext(ctx, "SELECT n FROM run_numbers ORDER BY n")
		require.NoError(t, err)
		defer rows.Close()

		var numbers []int
		for rows.Next() {
			var n int
			require.NoError(t, rows.Scan(&n))
			numbers = append(numbers, n)
		}
		require.NoError(t, rows.Err())

		assert.Equal(t, []int{1, 2}, numbers)
		assert.Greater(t, attempts.Load(), int32(2), "one transaction was retried")
	})
}

// withLockTimeoutStore runs fn with an initialized store whose sessions
// give up waiting for locks after ms milliseconds.
func withLockTimeoutStore(t *testing.T, ms int, fn func(*history.Store, *sql.DB)) {
	t.Helper()

	testutils.WithConnectionToContainer(t, func(conn *sql.DB, connStr string) {
		ctx := context.Background()

		var dbName string
		require.NoError(t, conn.QueryRowContext(ctx, "SELECT current_database()").Scan(&dbName))
		_, err := conn.ExecContext(ctx, fmt.Sprintf("ALTER DATABASE %s SET lock_timeout = '%dms'", pq.QuoteIdentifier(dbName), ms))
		require.NoError(t, err)

		st, err := history.New(ctx, connStr, history.DefaultSchema)
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		require.NoError(t, st.Init(ctx))

		fn(st, conn)
	})
}

// holdTableLock takes an exclusive lock on a history table and releases it
// after d. The test waits for the release before cleaning up.
func holdTableLock(t *testing.T, conn *sql.DB, table string, d time.Duration) {
	t.Helper()
	ctx := context.Background()

	tx, err := conn.BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = tx.ExecContext(ctx, fmt.Sprintf("LOCK TABLE %s.%s IN ACCESS EXCLUSIVE MODE",
		pq.QuoteIdentifier(history.DefaultSchema), pq.QuoteIdentifier(table)))
	require.NoError(t, err)

	released := make(chan struct{})
	go func() {
		defer close(released)
		time.Sleep(d)
		tx.Commit()
	}()
	t.Cleanup(func() { <-released })
}
