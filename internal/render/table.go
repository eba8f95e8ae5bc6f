// Package render formats metric results for the console, CSV files, and
// chart images. It consumes series and snapshots; it never fetches.
package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/Alias1177/MarketMetrics/internal/catalog"
)

// Table writes one metric result as an aligned console table.
func Table(w io.Writer, res *catalog.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value", "As of", "Source"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, row := range res.Rows {
		table.Append([]string{
			row.Label,
			FormatValue(row.Value, row.Unit),
			row.Date.Format("2006-01-02"),
			res.Attribution,
		})
	}
	table.Render()
}

// Tables writes several results under their titles.
func Tables(w io.Writer, results []*catalog.Result) {
	for _, res := range results {
		fmt.Fprintf(w, "\n%s\n", res.Title)
		Table(w, res)
	}
}

// FormatValue renders a value with its display unit.
func FormatValue(v float64, unit string) string {
	switch unit {
	case "%":
		return fmt.Sprintf("%.2f%%", v)
	case "$":
		return fmt.Sprintf("$%.2f", v)
	case "$B":
		return fmt.Sprintf("$%.2fB", v)
	case "$T":
		return fmt.Sprintf("$%.2fT", v)
	case "x":
		return fmt.Sprintf("%.2fx", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
