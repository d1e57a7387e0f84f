package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, clock func() time.Time) *Store {
	t.Helper()
	store, err := Open(Options{
		Path:  filepath.Join(t.TempDir(), "sessions.db"),
		Clock: clock,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func steppingClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		current := now
		now = now.Add(step)
		return current
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Options{})
	require.Error(t, err)
}

func TestRunLifecycle(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := openTestStore(t, steppingClock(start, time.Minute))
	ctx := context.Background()

	id, err := store.Start(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	totals := Totals{UIEvents: 12, Clicks: 3, URLs: 2}
	require.NoError(t, store.Finish(ctx, id, totals, nil))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.True(t, run.StartedAt.Equal(start))
	require.NotNil(t, run.EndedAt)
	assert.True(t, run.EndedAt.Equal(start.Add(time.Minute)))
	assert.Equal(t, totals, run.Totals)
	assert.Empty(t, run.FlushError)
}

func TestFinishRecordsFlushError(t *testing.T) {
	store := openTestStore(t, nil)
	ctx := context.Background()

	id, err := store.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Finish(ctx, id, Totals{}, errors.New("disk full")))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "disk full", runs[0].FlushError)
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t, nil)
	err := store.Finish(context.Background(), "no-such-run", Totals{}, nil)
	require.ErrorIs(t, err, ErrUnknownRun)
}

func TestListOrdersMostRecentFirst(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := openTestStore(t, steppingClock(start, time.Hour))
	ctx := context.Background()

	first, err := store.Start(ctx)
	require.NoError(t, err)
	second, err := store.Start(ctx)
	require.NoError(t, err)

	runs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
	assert.Nil(t, runs[0].EndedAt)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t, nil)
	ctx := context.Background()

	id, err := store.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, id))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.ErrorIs(t, store.Delete(ctx, id), ErrUnknownRun)
}
