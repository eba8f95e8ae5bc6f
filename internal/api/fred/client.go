// Package fred talks to the St. Louis Fed FRED API for economic time
// series. All requests carry the API key; FRED reports both bad keys and
// unknown series as HTTP 400, so errors are classified from the message
// in the response body.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MarketMetrics/internal/platform/http"
	"github.com/Alias1177/MarketMetrics/models"
)

const defaultBaseURL = "https://api.stlouisfed.org/fred"

var _ models.SeriesClient = (*Client)(nil)

// Client is the FRED API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new FRED client.
type ClientOptions struct {
	APIKey         string
	BaseURL        string // overridden in tests
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetries     uint64
}

// NewClient creates a new FRED API client.
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		httpClient: http.NewClient(http.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
			MaxRetries:     opts.MaxRetries,
			Name:           "fred_client",
		}),
		logger: log.With().Str("component", "fred_client").Logger(),
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

type errorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// SeriesInfo describes a FRED series: title, units, native frequency.
type SeriesInfo struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Units          string `json:"units"`
	Frequency      string `json:"frequency"`
	FrequencyShort string `json:"frequency_short"`
}

type seriesInfoResponse struct {
	Seriess []SeriesInfo `json:"seriess"`
}

// FetchSeries returns the observations for a FRED series id within the
// date range, sorted ascending. Values FRED marks as missing (".") are
// skipped.
func (c *Client) FetchSeries(ctx context.Context, id string, r models.DateRange) (*models.Series, error) {
	if c.apiKey == "" {
		return nil, &models.AuthError{Source: models.SourceFRED, Detail: "FRED API key is not set"}
	}

	q := url.Values{}
	q.Set("series_id", id)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "asc")
	if !r.Start.IsZero() {
		q.Set("observation_start", r.Start.Format("2006-01-02"))
	}
	if !r.End.IsZero() {
		q.Set("observation_end", r.End.Format("2006-01-02"))
	}
	u := fmt.Sprintf("%s/series/observations?%s", c.baseURL, q.Encode())

	c.logger.Debug().Str("series_id", id).Stringer("range", r).Msg("Fetching observations")

	body, err := c.httpClient.Get(ctx, u, nil)
	if err != nil {
		return nil, c.classify(err, id, r)
	}

	var data observationsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing observations for %s: %w", id, err)
	}

	obs := make([]models.Observation, 0, len(data.Observations))
	for _, o := range data.Observations {
		if o.Value == "." {
			continue
		}
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q in series %s: %w", o.Date, id, err)
		}
		value, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing value %q in series %s: %w", o.Value, id, err)
		}
		if !r.Contains(date) {
			continue
		}
		obs = append(obs, models.Observation{Date: date, Value: value})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })

	c.logger.Debug().Str("series_id", id).Int("count", len(obs)).Msg("Fetched observations")

	return &models.Series{
		Source:       models.SourceFRED,
		ID:           id,
		Frequency:    models.InferFrequency(obs),
		Observations: obs,
	}, nil
}

// FetchInfo returns series metadata, used for chart axis labels.
func (c *Client) FetchInfo(ctx context.Context, id string) (*SeriesInfo, error) {
	if c.apiKey == "" {
		return nil, &models.AuthError{Source: models.SourceFRED, Detail: "FRED API key is not set"}
	}

	q := url.Values{}
	q.Set("series_id", id)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	u := fmt.Sprintf("%s/series?%s", c.baseURL, q.Encode())

	body, err := c.httpClient.Get(ctx, u, nil)
	if err != nil {
		return nil, c.classify(err, id, models.DateRange{})
	}

	var data seriesInfoResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing series info for %s: %w", id, err)
	}
	if len(data.Seriess) == 0 {
		return nil, &models.NotFoundError{Source: models.SourceFRED, ID: id}
	}
	return &data.Seriess[0], nil
}

// classify maps a transport-level error onto the adapter error taxonomy.
// FRED answers 400 for both a rejected key and an unknown series id; the
// error_message in the body tells them apart.
func (c *Client) classify(err error, id string, r models.DateRange) error {
	var statusErr *http.StatusError
	if errors.As(err, &statusErr) && !statusErr.Retryable() {
		var apiErr errorResponse
		_ = json.Unmarshal(statusErr.Body, &apiErr)
		msg := apiErr.ErrorMessage

		switch {
		case statusErr.StatusCode == 401 || statusErr.StatusCode == 403 ||
			strings.Contains(msg, "api_key"):
			c.logger.Error().Str("series_id", id).Stringer("range", r).Str("error_message", msg).
				Msg("FRED rejected the API key")
			return &models.AuthError{Source: models.SourceFRED, Detail: msg}
		case statusErr.StatusCode == 404 || strings.Contains(msg, "does not exist"):
			c.logger.Error().Str("series_id", id).Stringer("range", r).
				Msg("Unknown FRED series")
			return &models.NotFoundError{Source: models.SourceFRED, ID: id}
		default:
			c.logger.Error().Str("series_id", id).Stringer("range", r).Int("status", statusErr.StatusCode).
				Str("error_message", msg).Msg("FRED request failed")
			return fmt.Errorf("fred: fetching %s: %w", id, statusErr)
		}
	}

	c.logger.Error().Err(err).Str("series_id", id).Stringer("range", r).
		Msg("FRED fetch failed after retries")
	return &models.TransientError{Source: models.SourceFRED, ID: id, Err: err}
}
