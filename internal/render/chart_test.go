package render

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/MarketMetrics/models"
)

func chartSeries(id string, n int) *models.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, n)
	for i := range obs {
		obs[i] = models.Observation{Date: start.AddDate(0, 0, i), Value: 100 + float64(i)}
	}
	return &models.Series{Source: models.SourceFRED, ID: id, Observations: obs}
}

func TestChartWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdp.png")
	err := Chart(path, "US GDP", "$T", []*models.Series{chartSeries("GDP", 30)}, []string{"GDP"})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestChartMultipleSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yields.png")
	series := []*models.Series{chartSeries("DGS10", 30), chartSeries("BAA", 30)}
	err := Chart(path, "Yields", "%", series, []string{"DGS10", "BAA"})
	require.NoError(t, err)
}

func TestChartArgumentErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.png")

	err := Chart(path, "t", "y", nil, nil)
	assert.Error(t, err)

	err = Chart(path, "t", "y", []*models.Series{chartSeries("A", 5)}, []string{"a", "b"})
	assert.Error(t, err)

	empty := &models.Series{ID: "E"}
	err = Chart(path, "t", "y", []*models.Series{empty}, []string{"e"})
	assert.Error(t, err)
}
