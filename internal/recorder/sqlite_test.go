package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"WolfHunter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func candlesAt(start int64, closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{Timestamp: start + int64(i)*60_000, Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 5}
	}
	return out
}

func TestSQLiteRecorder_CandlesUpsertAndLoad(t *testing.T) {
	r := openTestRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.RecordCandles(model.Timeframe1m, candlesAt(0, 1, 2, 3)))
	// Overlapping refetch replaces the forming candle and appends the next.
	require.NoError(t, r.RecordCandles(model.Timeframe1m, candlesAt(120_000, 33, 4)))
	require.NoError(t, r.RecordCandles(model.Timeframe5m, candlesAt(0, 9)))

	got, err := r.LoadCandles(ctx, model.Timeframe1m, 10)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []float64{1, 2, 33, 4}, []float64{got[0].Close, got[1].Close, got[2].Close, got[3].Close})

	newest, err := r.LoadCandles(ctx, model.Timeframe1m, 2)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, int64(120_000), newest[0].Timestamp)
	assert.Equal(t, int64(180_000), newest[1].Timestamp)

	none, err := r.LoadCandles(ctx, model.Timeframe1d, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordCandles(model.Timeframe1m, nil))
	assert.NoError(t, r.Close())
}
