package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lotto-analyzer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Database{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "lotto.db"),
	}
	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndLoadHistory(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.LoadHistory(ctx)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	history := DrawHistory{
		{Date: "2024-01-02", Main: [5]int{3, 14, 22, 37, 45}, Bonus: [2]int{2, 11}},
		{Date: "2024-01-05", Main: [5]int{7, 8, 19, 30, 50}, Bonus: [2]int{1, 12}},
	}
	n, err := store.SaveDraws(ctx, history)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// 同一日期再次保存时覆盖号码，不新增记录，顺序不变
	updated := DrawHistory{
		{Date: "2024-01-02", Main: [5]int{1, 2, 3, 4, 5}, Bonus: [2]int{6, 7}},
		{Date: "2024-01-09", Main: [5]int{10, 20, 30, 40, 50}, Bonus: [2]int{3, 4}},
	}
	_, err = store.SaveDraws(ctx, updated)
	require.NoError(t, err)

	loaded, err := store.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "2024-01-02", loaded[0].Date)
	assert.Equal(t, [5]int{1, 2, 3, 4, 5}, loaded[0].Main)
	assert.Equal(t, "2024-01-05", loaded[1].Date)
	assert.Equal(t, "2024-01-09", loaded[2].Date)
}

func TestStore_Runs(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for i, id := range []string{"run-a", "run-b"} {
		run := &PredictionRun{
			RunID:      id,
			Seed:       ^uint64(0) - uint64(i),
			DrawCount:  100 + i,
			LatestDate: "2024-01-09",
			CreatedAt:  time.Unix(1700000000+int64(i), 0),
			Predictions: []PredictionRecord{
				{Strategy: "balanced", Main: []int{1, 2, 3, 4, 5}, Bonus: []int{6, 7}},
				{Strategy: "weighted", Main: []int{10, 20, 30, 40, 50}, Bonus: []int{11, 12}},
			},
		}
		require.NoError(t, store.SaveRun(ctx, run))
		assert.NotZero(t, run.ID)
	}

	runs, err := store.LatestRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	latest := runs[0]
	assert.Equal(t, "run-b", latest.RunID)
	assert.Equal(t, ^uint64(0)-1, latest.Seed)
	assert.Equal(t, 101, latest.DrawCount)
	assert.Equal(t, int64(1700000001), latest.CreatedAt.Unix())
	require.Len(t, latest.Predictions, 2)
	assert.Equal(t, "balanced", latest.Predictions[0].Strategy)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, latest.Predictions[1].Main)

	runs, err = store.LatestRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Database{Driver: "oracle"})
	assert.Error(t, err)
}
