package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/MarketMetrics/internal/fetch"
	"github.com/Alias1177/MarketMetrics/models"
)

// stubSource serves canned series and quotes without any network.
type stubSource struct {
	series map[string]*models.Series
	quotes map[string]*models.Quote
}

func (s *stubSource) Series(_ context.Context, _ models.Source, id string, _ models.DateRange) (*models.Series, error) {
	if ser, ok := s.series[id]; ok {
		return ser.Clone(), nil
	}
	return nil, &models.NotFoundError{Source: models.SourceFRED, ID: id}
}

func (s *stubSource) SeriesBatch(ctx context.Context, reqs []fetch.SeriesRequest) (map[string]*models.Series, error) {
	out := make(map[string]*models.Series, len(reqs))
	for _, req := range reqs {
		ser, err := s.Series(ctx, req.Source, req.ID, req.Range)
		if err != nil {
			return nil, err
		}
		out[req.Role] = ser
	}
	return out, nil
}

func (s *stubSource) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	if q, ok := s.quotes[symbol]; ok {
		return q, nil
	}
	return nil, &models.NotFoundError{Source: models.SourceYahoo, ID: symbol}
}

func quarterlySeries(id string, values ...float64) *models.Series {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, len(values))
	for i, v := range values {
		obs[i] = models.Observation{Date: start.AddDate(0, i*3, 0), Value: v}
	}
	return &models.Series{Source: models.SourceFRED, ID: id, Frequency: models.FreqQuarterly, Observations: obs}
}

func newStub() *stubSource {
	return &stubSource{
		series: map[string]*models.Series{
			"GDP":     quarterlySeries("GDP", 27000, 27500, 28000, 28500),
			"GFDEBTN": quarterlySeries("GFDEBTN", 32000000, 33000000, 34000000, 35000000),
			"DGS10":   quarterlySeries("DGS10", 3.9, 4.1, 4.3, 4.2),
		},
		quotes: map[string]*models.Quote{
			"SPY": {Symbol: "SPY", Price: 512.3, TrailingPE: 25.0, Time: time.Date(2024, 3, 5, 21, 0, 0, 0, time.UTC)},
		},
	}
}

func TestNewUsesBuiltins(t *testing.T) {
	c, err := New(newStub())
	require.NoError(t, err)
	assert.NotEmpty(t, c.Metrics())

	_, ok := c.Lookup("gdp")
	assert.True(t, ok)
	_, ok = c.Lookup("no-such-metric")
	assert.False(t, ok)
}

func TestSnapshotSeriesLatest(t *testing.T) {
	defs := []MetricDef{{
		Key:   "gdp",
		Title: "US GDP",
		Parts: []PartDef{
			{Label: "GDP", Kind: KindSeriesLatest, Source: "fred", ID: "GDP", Scale: 0.001, Unit: "$T"},
		},
	}}
	c, err := New(newStub(), WithDefinitions(defs))
	require.NoError(t, err)

	res, err := c.Snapshot(context.Background(), "gdp")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "US GDP", res.Title)
	assert.InDelta(t, 28.5, res.Rows[0].Value, 1e-9, "latest value scaled to trillions")
	assert.Equal(t, "$T", res.Rows[0].Unit)
}

func TestSnapshotDerivedRatio(t *testing.T) {
	defs := []MetricDef{{
		Key:   "debt-to-gdp",
		Title: "Federal Debt to GDP",
		Parts: []PartDef{
			{
				Label: "debt / GDP",
				Kind:  KindDerived,
				Rule:  "ratio",
				Inputs: []InputDef{
					{Role: "debt", Source: "fred", ID: "GFDEBTN"},
					{Role: "gdp", Source: "fred", ID: "GDP"},
				},
				Scale: 0.1, // millions over billions, in percent
				Unit:  "%",
			},
		},
	}}
	c, err := New(newStub(), WithDefinitions(defs))
	require.NoError(t, err)

	res, err := c.Snapshot(context.Background(), "debt-to-gdp")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 0.1*35000000/28500, res.Rows[0].Value, 1e-9)
}

func TestSnapshotRiskPremium(t *testing.T) {
	defs := []MetricDef{{
		Key:   "equity-risk-premium",
		Title: "Equity Risk Premium",
		Parts: []PartDef{
			{Label: "risk premium", Kind: KindRiskPremium, ID: "SPY", RiskFreeID: "DGS10"},
		},
	}}
	c, err := New(newStub(), WithDefinitions(defs))
	require.NoError(t, err)

	res, err := c.Snapshot(context.Background(), "equity-risk-premium")
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	// Earnings yield 100/25 = 4%, minus the latest 10y yield 4.2%.
	assert.InDelta(t, -0.2, res.Rows[0].Value, 1e-9)
	assert.InDelta(t, 4.0, res.Rows[1].Value, 1e-9)
	assert.InDelta(t, 4.2, res.Rows[2].Value, 1e-9)
}

func TestSnapshotFailsAsAWhole(t *testing.T) {
	defs := []MetricDef{{
		Key:   "mixed",
		Title: "Mixed",
		Parts: []PartDef{
			{Label: "GDP", Kind: KindSeriesLatest, Source: "fred", ID: "GDP"},
			{Label: "missing", Kind: KindSeriesLatest, Source: "fred", ID: "NOPE"},
		},
	}}
	c, err := New(newStub(), WithDefinitions(defs))
	require.NoError(t, err)

	res, err := c.Snapshot(context.Background(), "mixed")
	require.Error(t, err)
	assert.Nil(t, res, "no partial rows on part failure")

	var notFound *models.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestSnapshotAllContinuesPastFailures(t *testing.T) {
	defs := []MetricDef{
		{Key: "good", Title: "Good", Parts: []PartDef{
			{Label: "GDP", Kind: KindSeriesLatest, Source: "fred", ID: "GDP"},
		}},
		{Key: "bad", Title: "Bad", Parts: []PartDef{
			{Label: "missing", Kind: KindSeriesLatest, Source: "fred", ID: "NOPE"},
		}},
	}
	c, err := New(newStub(), WithDefinitions(defs))
	require.NoError(t, err)

	results, failures := c.SnapshotAll(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Key)
	require.Len(t, failures, 1)
	assert.Contains(t, failures, "bad")
}

func TestHistory(t *testing.T) {
	defs := []MetricDef{{
		Key:   "debt-to-gdp",
		Title: "Federal Debt to GDP",
		Parts: []PartDef{
			{
				Label: "debt / GDP",
				Kind:  KindDerived,
				Rule:  "ratio",
				Inputs: []InputDef{
					{Role: "debt", Source: "fred", ID: "GFDEBTN"},
					{Role: "gdp", Source: "fred", ID: "GDP"},
				},
			},
		},
	}}
	c, err := New(newStub(), WithDefinitions(defs))
	require.NoError(t, err)

	m, err := c.History(context.Background(), "debt-to-gdp")
	require.NoError(t, err)
	assert.Len(t, m.Points, 4)

	_, err = c.History(context.Background(), "unknown")
	require.Error(t, err)
}

func TestValidateRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		defs []MetricDef
	}{
		{"no metrics", nil},
		{"missing title", []MetricDef{{Key: "x", Parts: []PartDef{
			{Label: "a", Kind: KindCAPE, ID: "shiller-pe"},
		}}}},
		{"no parts", []MetricDef{{Key: "x", Title: "X"}}},
		{"unknown kind", []MetricDef{{Key: "x", Title: "X", Parts: []PartDef{
			{Label: "a", Kind: "median"},
		}}}},
		{"unknown rule", []MetricDef{{Key: "x", Title: "X", Parts: []PartDef{
			{Label: "a", Kind: KindDerived, Rule: "product", Inputs: []InputDef{
				{Role: "a", Source: "fred", ID: "GDP"},
				{Role: "b", Source: "fred", ID: "GDP"},
			}},
		}}}},
		{"derived without inputs", []MetricDef{{Key: "x", Title: "X", Parts: []PartDef{
			{Label: "a", Kind: KindDerived, Rule: "ratio"},
		}}}},
		{"series without id", []MetricDef{{Key: "x", Title: "X", Parts: []PartDef{
			{Label: "a", Kind: KindSeriesLatest, Source: "fred"},
		}}}},
		{"risk premium without risk-free id", []MetricDef{{Key: "x", Title: "X", Parts: []PartDef{
			{Label: "a", Kind: KindRiskPremium, ID: "SPY"},
		}}}},
		{"duplicate keys", []MetricDef{
			{Key: "x", Title: "X", Parts: []PartDef{{Label: "a", Kind: KindCAPE, ID: "shiller-pe"}}},
			{Key: "x", Title: "X2", Parts: []PartDef{{Label: "a", Kind: KindCAPE, ID: "shiller-pe"}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(newStub(), WithDefinitions(tt.defs))
			assert.Error(t, err)
		})
	}
}

func TestWithDefinitionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
metrics:
  - key: ten-year-yield
    title: 10-Year Treasury Yield
    attribution: "Source: FRED"
    parts:
      - label: DGS10
        kind: series-latest
        source: fred
        id: DGS10
        unit: "%"
        lookback_years: 1
`), 0o644))

	c, err := New(newStub(), WithDefinitionsFile(path))
	require.NoError(t, err)
	require.Len(t, c.Metrics(), 1)

	res, err := c.Snapshot(context.Background(), "ten-year-yield")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 4.2, res.Rows[0].Value, 1e-9)
	assert.Equal(t, "%", res.Rows[0].Unit)
}

func TestWithDefinitionsFileErrors(t *testing.T) {
	_, err := New(newStub(), WithDefinitionsFile("/no/such/file.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics: [not: valid"), 0o644))
	_, err = New(newStub(), WithDefinitionsFile(path))
	require.Error(t, err)
}

func TestBuiltinDefinitionsAreValid(t *testing.T) {
	require.NoError(t, validateDefs(builtinDefs()))
}
