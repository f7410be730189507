package collector

import (
	"fmt"

	"WolfHunter/internal/config"
	"WolfHunter/internal/recorder"
)

// NewFetcher builds the fetcher selected by data_source.provider.
// archive is required only for the archive provider.
func NewFetcher(cfg *config.Config, archive recorder.Archive) (Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case config.ProviderMEXC:
		return NewMEXCFetcher(ds.BaseURL, ds.Symbol, cfg.Proxy), nil
	case config.ProviderBybit:
		return NewBybitFetcher(ds.Symbol, ds.Category), nil
	case config.ProviderYahoo:
		return NewYahooFetcher(ds.BaseURL, ds.Symbol, cfg.Proxy), nil
	case config.ProviderMock:
		return &MockFetcher{Seed: 1}, nil
	case config.ProviderArchive:
		if archive == nil {
			return nil, fmt.Errorf("provider %q needs an open sqlite database", ds.Provider)
		}
		return &ArchiveFetcher{Archive: archive}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", ds.Provider)
	}
}
