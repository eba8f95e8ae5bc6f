// Package multpl scrapes multpl.com for the current Shiller CAPE ratio,
// which has no clean API equivalent.
package multpl

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MarketMetrics/internal/platform/http"
	"github.com/Alias1177/MarketMetrics/models"
)

const defaultCapeURL = "https://www.multpl.com/shiller-pe"

// The headline reads like "Current Shiller PE Ratio: 31.25 ...".
const capeSelector = "#current"

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Client scrapes multpl.com.
type Client struct {
	capeURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new multpl client.
type ClientOptions struct {
	CapeURL        string // overridden in tests
	RequestTimeout time.Duration
	MaxRetries     uint64
}

// NewClient creates a new multpl scraper.
func NewClient(opts ClientOptions) *Client {
	capeURL := opts.CapeURL
	if capeURL == "" {
		capeURL = defaultCapeURL
	}
	return &Client{
		capeURL: capeURL,
		httpClient: http.NewClient(http.ClientOptions{
			Timeout:    opts.RequestTimeout,
			MaxRetries: opts.MaxRetries,
			Name:       "multpl_client",
		}),
		logger: log.With().Str("component", "multpl_client").Logger(),
	}
}

// CurrentCAPE returns the latest published Shiller CAPE ratio as a
// single-observation series.
func (c *Client) CurrentCAPE(ctx context.Context) (*models.Series, error) {
	body, err := c.httpClient.Get(ctx, c.capeURL, map[string]string{"User-Agent": "Mozilla/5.0"})
	if err != nil {
		c.logger.Error().Err(err).Str("url", c.capeURL).Msg("CAPE scrape failed after retries")
		return nil, &models.TransientError{Source: models.SourceMultpl, ID: "shiller-pe", Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing multpl page: %w", err)
	}

	text := doc.Find(capeSelector).First().Text()
	match := numberPattern.FindString(text)
	if match == "" {
		c.logger.Error().Str("url", c.capeURL).Str("text", text).
			Msg("CAPE value not found on page")
		return nil, &models.NotFoundError{Source: models.SourceMultpl, ID: "shiller-pe"}
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing CAPE value %q: %w", match, err)
	}

	c.logger.Debug().Float64("cape", value).Msg("Scraped CAPE ratio")

	return &models.Series{
		Source:    models.SourceMultpl,
		ID:        "shiller-pe",
		Frequency: models.FreqMonthly,
		Observations: []models.Observation{
			{Date: models.FreqMonthly.Truncate(time.Now().UTC()), Value: value},
		},
	}, nil
}
