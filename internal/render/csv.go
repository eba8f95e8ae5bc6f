package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Alias1177/MarketMetrics/internal/catalog"
	"github.com/Alias1177/MarketMetrics/models"
)

var csvHeader = []string{"metric", "sub_metric", "value", "unit", "date", "source", "retrieved_at"}

// CSVExporter appends metric snapshots to a CSV file, writing the header
// once when the file is new or empty.
type CSVExporter struct {
	path string
}

// NewCSVExporter prepares an exporter for the given path, creating parent
// directories as needed.
func NewCSVExporter(path string) (*CSVExporter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating export directory: %w", err)
		}
	}
	return &CSVExporter{path: path}, nil
}

// Path returns the export destination.
func (e *CSVExporter) Path() string { return e.path }

// Export appends one row per result line.
func (e *CSVExporter) Export(results ...*catalog.Result) error {
	f, needHeader, err := e.open()
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	retrieved := time.Now().UTC().Format("2006-01-02 15:04:05")
	for _, res := range results {
		for _, row := range res.Rows {
			record := []string{
				res.Key,
				row.Label,
				strconv.FormatFloat(row.Value, 'f', -1, 64),
				row.Unit,
				row.Date.Format("2006-01-02"),
				res.Attribution,
				retrieved,
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("writing CSV row: %w", err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

// ExportSeries appends every observation of a series, one row each.
func (e *CSVExporter) ExportSeries(s *models.Series) error {
	f, needHeader, err := e.open()
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	retrieved := time.Now().UTC().Format("2006-01-02 15:04:05")
	for _, o := range s.Observations {
		record := []string{
			s.ID,
			"value",
			strconv.FormatFloat(o.Value, 'f', -1, 64),
			s.Units,
			o.Date.Format("2006-01-02"),
			string(s.Source),
			retrieved,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (e *CSVExporter) open() (*os.File, bool, error) {
	info, err := os.Stat(e.path)
	needHeader := err != nil || info.Size() == 0

	f, err := os.OpenFile(e.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("opening CSV file: %w", err)
	}
	return f, needHeader, nil
}
