package models

import "context"

// SeriesClient fetches a dated series from one remote source.
type SeriesClient interface {
	FetchSeries(ctx context.Context, id string, r DateRange) (*Series, error)
}

// QuoteClient fetches a point-in-time market quote.
type QuoteClient interface {
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
}
