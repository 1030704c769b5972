// SPDX-License-Identifier: Apache-2.0

package history_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/sandbench/internal/testutils"
	"github.com/xataio/sandbench/pkg/history"
	"github.com/xataio/sandbench/pkg/measurement"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

func withStore(t *testing.T, fn func(*history.Store, *sql.DB)) {
	t.Helper()

	testutils.WithConnectionToContainer(t, func(conn *sql.DB, connStr string) {
		st, err := history.New(context.Background(), connStr, history.DefaultSchema)
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })

		fn(st, conn)
	})
}

func sampleResults() measurement.Results {
	return measurement.Results{
		"insert": {
			Total: measurement.Measurement{Calls: 1, Instructions: 1_000_000, HeapIncrease: 3},
			Scopes: map[string]measurement.Measurement{
				"write": {Calls: 10, Instructions: 400_000},
				"alloc": {Calls: 2, Instructions: 1_000, HeapIncrease: 3},
			},
		},
		"lookup": {
			Total: measurement.Measurement{Calls: 1, Instructions: 25_000, StableMemoryIncrease: 1},
		},
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	withStore(t, func(st *history.Store, _ *sql.DB) {
		ctx := context.Background()

		ok, err := st.IsInitialized(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, st.Init(ctx))
		require.NoError(t, st.Init(ctx), "init is idempotent")

		ok, err = st.IsInitialized(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestPushAndLatest(t *testing.T) {
	t.Parallel()

	withStore(t, func(st *history.Store, _ *sql.DB) {
		ctx := context.Background()
		require.NoError(t, st.Init(ctx))

		_, _, err := st.Latest(ctx)
		require.ErrorIs(t, err, history.ErrNoRuns)

		first, err := st.Push(ctx, "abc123", "0.3.0", measurement.Results{"lookup": sampleResults()["lookup"]})
		require.NoError(t, err)

		second, err := st.Push(ctx, "def456", "0.3.0", sampleResults())
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		run, results, err := st.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.ID, run.ID)
		assert.Equal(t, "def456", run.GitSHA)
		assert.Equal(t, "0.3.0", run.Version)
		assert.Equal(t, sampleResults(), results)

		runs, err := st.Runs(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, second.ID, runs[0].ID)
		assert.Equal(t, first.ID, runs[1].ID)

		older, err := st.Results(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, measurement.Results{"lookup": sampleResults()["lookup"]}, older)
	})
}

func TestPushEmptyRun(t *testing.T) {
	t.Parallel()

	withStore(t, func(st *history.Store, _ *sql.DB) {
		ctx := context.Background()
		require.NoError(t, st.Init(ctx))

		_, err := st.Push(ctx, "", "development", measurement.Results{})
		require.NoError(t, err)

		_, results, err := st.Latest(ctx)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestPushRejectsEmptyScopeName(t *testing.T) {
	t.Parallel()

	withStore(t, func(st *history.Store, _ *sql.DB) {
		ctx := context.Background()
		require.NoError(t, st.Init(ctx))

		results := measurement.Results{
			"insert": {
				Total:  measurement.Measurement{Calls: 1, Instructions: 100},
				Scopes: map[string]measurement.Measurement{"": {Calls: 1, Instructions: 5}},
			},
		}
		_, err := st.Push(ctx, "abc123", "0.3.0", results)
		require.ErrorIs(t, err, history.ErrEmptyScopeName)

		_, _, err = st.Latest(ctx)
		require.ErrorIs(t, err, history.ErrNoRuns, "nothing was written")
	})
}

func TestPushWithoutInit(t *testing.T) {
	t.Parallel()

	withStore(t, func(st *history.Store, _ *sql.DB) {
		_, err := st.Push(context.Background(), "abc123", "0.3.0", sampleResults())

		var pqErr *pq.Error
		require.ErrorAs(t, err, &pqErr)
		assert.Equal(t, testutils.UndefinedTableErrorCode, pqErr.Code.Name())
	})
}

func TestCustomSchema(t *testing.T) {
	t.Parallel()

	testutils.WithConnectionToContainer(t, func(conn *sql.DB, connStr string) {
		ctx := context.Background()

		st, err := history.New(ctx, connStr, "bench_history")
		require.NoError(t, err)
		defer st.Close()

		require.NoError(t, st.Init(ctx))
		_, err = st.Push(ctx, "abc123", "0.3.0", sampleResults())
		require.NoError(t, err)

		var count int
		err = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM bench_history.results").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	})
}
