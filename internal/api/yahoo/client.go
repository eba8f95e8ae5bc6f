// Package yahoo reads the public Yahoo Finance chart and quote endpoints.
// No credential is required.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MarketMetrics/internal/platform/http"
	"github.com/Alias1177/MarketMetrics/models"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

var (
	_ models.SeriesClient = (*Client)(nil)
	_ models.QuoteClient  = (*Client)(nil)
)

// Year buckets above this many years are fetched at monthly granularity to
// keep long histories (decades of index data) at a sane size.
const monthlyIntervalThreshold = 5

// Client is the Yahoo Finance client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo client.
type ClientOptions struct {
	BaseURL        string // overridden in tests
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetries     uint64
}

// NewClient creates a new Yahoo Finance client.
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: http.NewClient(http.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
			MaxRetries:     opts.MaxRetries,
			Name:           "yahoo_client",
		}),
		logger: log.With().Str("component", "yahoo_client").Logger(),
	}
}

// chartResponse is the v8 chart API payload. Close values are pointers:
// Yahoo fills holidays and halts with nulls.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			RegularMarketTime  int64   `json:"regularMarketTime"`
			TrailingPE         float64 `json:"trailingPE"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// FetchSeries returns closing prices for a ticker within the date range,
// sorted ascending. Ranges longer than a few years are fetched at monthly
// granularity, shorter ones daily.
func (c *Client) FetchSeries(ctx context.Context, symbol string, r models.DateRange) (*models.Series, error) {
	start := r.Start
	if start.IsZero() {
		start = time.Now().UTC().AddDate(-monthlyIntervalThreshold, 0, 0)
	}
	end := r.End
	if end.IsZero() {
		end = time.Now().UTC()
	}

	interval := "1d"
	if end.Sub(start) > monthlyIntervalThreshold*365*24*time.Hour {
		interval = "1mo"
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&period1=%d&period2=%d",
		c.baseURL, url.PathEscape(symbol), interval, start.Unix(), end.Unix())

	c.logger.Debug().Str("symbol", symbol).Stringer("range", r).Str("interval", interval).
		Msg("Fetching chart")

	body, err := c.httpClient.Get(ctx, u, map[string]string{"User-Agent": "Mozilla/5.0"})
	if err != nil {
		return nil, c.classify(err, symbol, r)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("parsing chart for %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, &models.NotFoundError{Source: models.SourceYahoo, ID: symbol}
		}
		return nil, fmt.Errorf("yahoo: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &models.NotFoundError{Source: models.SourceYahoo, ID: symbol}
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	obs := make([]models.Observation, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bar: holiday or halt
		}
		date := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		if !r.Contains(date) {
			continue
		}
		obs = append(obs, models.Observation{Date: date, Value: *closes[i]})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })

	c.logger.Debug().Str("symbol", symbol).Int("count", len(obs)).Msg("Fetched chart")

	return &models.Series{
		Source:       models.SourceYahoo,
		ID:           symbol,
		Frequency:    models.InferFrequency(obs),
		Observations: obs,
	}, nil
}

// FetchQuote returns the current market snapshot for a ticker, including
// the trailing P/E when Yahoo reports one.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.httpClient.Get(ctx, u, map[string]string{"User-Agent": "Mozilla/5.0"})
	if err != nil {
		return nil, c.classify(err, symbol, models.DateRange{})
	}

	var data quoteResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing quote for %s: %w", symbol, err)
	}
	if data.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo: %s: %s",
			data.QuoteResponse.Error.Code, data.QuoteResponse.Error.Description)
	}
	if len(data.QuoteResponse.Result) == 0 {
		return nil, &models.NotFoundError{Source: models.SourceYahoo, ID: symbol}
	}

	q := data.QuoteResponse.Result[0]
	quoteTime := time.Now().UTC()
	if q.RegularMarketTime > 0 {
		quoteTime = time.Unix(q.RegularMarketTime, 0).UTC()
	}
	return &models.Quote{
		Symbol:     q.Symbol,
		Price:      q.RegularMarketPrice,
		TrailingPE: q.TrailingPE,
		Time:       quoteTime,
	}, nil
}

func (c *Client) classify(err error, symbol string, r models.DateRange) error {
	var statusErr *http.StatusError
	if errors.As(err, &statusErr) && !statusErr.Retryable() {
		switch statusErr.StatusCode {
		case 401, 403:
			c.logger.Error().Str("symbol", symbol).Stringer("range", r).
				Msg("Yahoo refused the request")
			return &models.AuthError{Source: models.SourceYahoo, Detail: statusErr.Error()}
		case 404:
			c.logger.Error().Str("symbol", symbol).Stringer("range", r).
				Msg("Unknown Yahoo symbol")
			return &models.NotFoundError{Source: models.SourceYahoo, ID: symbol}
		default:
			c.logger.Error().Str("symbol", symbol).Stringer("range", r).
				Int("status", statusErr.StatusCode).Msg("Yahoo request failed")
			return fmt.Errorf("yahoo: fetching %s: %w", symbol, statusErr)
		}
	}

	c.logger.Error().Err(err).Str("symbol", symbol).Stringer("range", r).
		Msg("Yahoo fetch failed after retries")
	return &models.TransientError{Source: models.SourceYahoo, ID: symbol, Err: err}
}
