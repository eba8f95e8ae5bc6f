package render

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/Alias1177/MarketMetrics/models"
)

// Chart renders one or more series as a PNG line chart. Labels pair with
// series by index; a legend is drawn when more than one series is given.
func Chart(path, title, yLabel string, series []*models.Series, labels []string) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to plot")
	}
	if len(labels) != len(series) {
		return fmt.Errorf("got %d labels for %d series", len(labels), len(series))
	}

	plotted := make([]chart.Series, 0, len(series))
	for i, s := range series {
		if s.Empty() {
			continue
		}
		plotted = append(plotted, chart.TimeSeries{
			Name:    labels[i],
			XValues: s.Dates(),
			YValues: s.Values(),
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				StrokeWidth: 1.5,
			},
		})
	}
	if len(plotted) == 0 {
		return fmt.Errorf("all series are empty")
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1200,
		Height: 600,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: yLabel,
		},
		Series: plotted,
	}
	if len(plotted) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
