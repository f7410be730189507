package collector

import (
	"context"
	"fmt"
	"log"

	"WolfHunter/internal/model"
	"WolfHunter/internal/recorder"
)

// RecordingFetcher archives every series fetched through it.
// Archive failures are logged and never fail the fetch.
type RecordingFetcher struct {
	Fetcher
	Recorder recorder.Recorder
}

func (f *RecordingFetcher) FetchCandles(ctx context.Context, tf model.Timeframe, limit int) (*model.Series, error) {
	s, err := f.Fetcher.FetchCandles(ctx, tf, limit)
	if err != nil {
		return nil, err
	}
	if err := f.Recorder.RecordCandles(tf, s.Candles); err != nil {
		log.Printf("[WARN] archive %s candles: %v", tf, err)
	}
	return s, nil
}

// ArchiveFetcher replays candles stored by a RecordingFetcher.
type ArchiveFetcher struct {
	Archive recorder.Archive
}

func (f *ArchiveFetcher) Name() string { return "archive" }

func (f *ArchiveFetcher) FetchCandles(ctx context.Context, tf model.Timeframe, limit int) (*model.Series, error) {
	if !tf.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidTimeframe, tf)
	}
	candles, err := f.Archive.LoadCandles(ctx, tf, limit)
	if err != nil {
		return nil, unavailable(f.Name(), err)
	}
	if len(candles) == 0 {
		return nil, unavailable(f.Name(), fmt.Errorf("no %s candles stored", tf))
	}
	return model.NewSeries(tf, candles)
}
