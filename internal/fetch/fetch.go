// Package fetch is the data source adapter: it maps source-specific API
// responses onto the common Series shape and classifies failures into the
// shared error taxonomy.
package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MarketMetrics/config"
	"github.com/Alias1177/MarketMetrics/internal/api/fred"
	"github.com/Alias1177/MarketMetrics/internal/api/multpl"
	"github.com/Alias1177/MarketMetrics/internal/api/yahoo"
	"github.com/Alias1177/MarketMetrics/models"
)

// Adapter fans requests out to the per-source clients and caches the
// results for the session.
type Adapter struct {
	fred   *fred.Client
	yahoo  *yahoo.Client
	multpl *multpl.Client
	cache  *cache
	logger zerolog.Logger
}

// Option adjusts client construction, mainly for tests.
type Option func(*clientURLs)

type clientURLs struct {
	fredBase  string
	yahooBase string
	capeURL   string
}

// WithFredBaseURL points the FRED client at an alternate endpoint.
func WithFredBaseURL(u string) Option { return func(c *clientURLs) { c.fredBase = u } }

// WithYahooBaseURL points the Yahoo client at an alternate endpoint.
func WithYahooBaseURL(u string) Option { return func(c *clientURLs) { c.yahooBase = u } }

// WithCapeURL points the CAPE scraper at an alternate page.
func WithCapeURL(u string) Option { return func(c *clientURLs) { c.capeURL = u } }

// New builds an adapter from explicit configuration. The adapter never
// reads the environment itself.
func New(cfg *config.Config, opts ...Option) *Adapter {
	var urls clientURLs
	for _, opt := range opts {
		opt(&urls)
	}
	return &Adapter{
		fred: fred.NewClient(fred.ClientOptions{
			APIKey:         cfg.FredAPIKey,
			BaseURL:        urls.fredBase,
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
		}),
		yahoo: yahoo.NewClient(yahoo.ClientOptions{
			BaseURL:        urls.yahooBase,
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
		}),
		multpl: multpl.NewClient(multpl.ClientOptions{
			CapeURL:        urls.capeURL,
			RequestTimeout: cfg.RequestTimeout,
			MaxRetries:     cfg.MaxRetries,
		}),
		cache:  newCache(),
		logger: log.With().Str("component", "fetch_adapter").Logger(),
	}
}

// Series fetches one series from the named source, serving repeats within
// the session from cache.
func (a *Adapter) Series(ctx context.Context, source models.Source, id string, r models.DateRange) (*models.Series, error) {
	key := cacheKey(source, id, r)
	if s, ok := a.cache.get(key); ok {
		a.logger.Debug().Str("source", string(source)).Str("id", id).Msg("Cache hit")
		return s, nil
	}

	var (
		s   *models.Series
		err error
	)
	switch source {
	case models.SourceFRED:
		s, err = a.fred.FetchSeries(ctx, id, r)
	case models.SourceYahoo:
		s, err = a.yahoo.FetchSeries(ctx, id, r)
	case models.SourceMultpl:
		s, err = a.multpl.CurrentCAPE(ctx)
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
	if err != nil {
		a.logger.Error().Err(err).Str("source", string(source)).Str("id", id).
			Stringer("range", r).Msg("Series fetch failed")
		return nil, err
	}

	a.cache.set(key, s)
	return s, nil
}

// Quote fetches a point-in-time quote from the market API.
func (a *Adapter) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	q, err := a.yahoo.FetchQuote(ctx, symbol)
	if err != nil {
		a.logger.Error().Err(err).Str("symbol", symbol).Msg("Quote fetch failed")
		return nil, err
	}
	return q, nil
}

// SeriesInfo fetches FRED metadata for a series, used for chart labels.
func (a *Adapter) SeriesInfo(ctx context.Context, id string) (*fred.SeriesInfo, error) {
	return a.fred.FetchInfo(ctx, id)
}

// SeriesRequest names one input of a multi-series fetch.
type SeriesRequest struct {
	Role   string
	Source models.Source
	ID     string
	Range  models.DateRange
}

// SeriesBatch fetches several independent series concurrently. Results are
// combined only once every fetch has finished, keyed by role, so the
// outcome does not depend on completion order. Any failure fails the whole
// batch; no partial map is returned.
func (a *Adapter) SeriesBatch(ctx context.Context, reqs []SeriesRequest) (map[string]*models.Series, error) {
	results := make([]*models.Series, len(reqs))
	errs := make([]error, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req SeriesRequest) {
			defer wg.Done()
			results[i], errs[i] = a.Series(ctx, req.Source, req.ID, req.Range)
		}(i, req)
	}
	wg.Wait()

	// Surface the first error in request order, deterministically.
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("fetching %s (%s %s): %w", reqs[i].Role, reqs[i].Source, reqs[i].ID, err)
		}
	}

	out := make(map[string]*models.Series, len(reqs))
	for i, req := range reqs {
		out[req.Role] = results[i]
	}
	return out, nil
}
