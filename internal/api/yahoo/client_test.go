package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/MarketMetrics/models"
)

func newTestClient(srvURL string) *Client {
	return NewClient(ClientOptions{BaseURL: srvURL, RequestsPerSec: 100})
}

func TestFetchSeriesSkipsNullBars(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
	t2 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).Unix()
	t3 := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/^GSPC", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%d,%d,%d],
			"indicators":{"quote":[{"close":[5100.5,null,5120.25]}]}}],"error":null}}`, t1, t2, t3)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	rng := models.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	s, err := client.FetchSeries(context.Background(), "^GSPC", rng)
	require.NoError(t, err)

	assert.Equal(t, models.SourceYahoo, s.Source)
	require.Len(t, s.Observations, 2, "the null bar is dropped")
	assert.Equal(t, 5100.5, s.Observations[0].Value)
	assert.Equal(t, 5120.25, s.Observations[1].Value)
}

func TestFetchSeriesMonthlyForLongRanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1mo", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	rng := models.DateRange{
		Start: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := client.FetchSeries(context.Background(), "^W5000", rng)
	require.NoError(t, err)
}

func TestFetchSeriesUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.FetchSeries(context.Background(), "NOSUCH", models.DateRange{})

	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, "NOSUCH", notFound.ID)
}

func TestFetchSeriesHTTPNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.FetchSeries(context.Background(), "NOSUCH", models.DateRange{})

	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
}

func TestFetchQuote(t *testing.T) {
	marketTime := time.Date(2024, 3, 5, 21, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "SPY", r.URL.Query().Get("symbols"))
		fmt.Fprintf(w, `{"quoteResponse":{"result":[{"symbol":"SPY","regularMarketPrice":512.3,
			"regularMarketTime":%d,"trailingPE":27.4}],"error":null}}`, marketTime.Unix())
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	q, err := client.FetchQuote(context.Background(), "SPY")
	require.NoError(t, err)

	assert.Equal(t, "SPY", q.Symbol)
	assert.Equal(t, 512.3, q.Price)
	assert.Equal(t, 27.4, q.TrailingPE)
	assert.True(t, q.Time.Equal(marketTime))
}

func TestFetchQuoteEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.FetchQuote(context.Background(), "NOSUCH")

	var notFound *models.NotFoundError
	require.True(t, errors.As(err, &notFound))
}
