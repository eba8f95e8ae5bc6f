package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/MarketMetrics/config"
	"github.com/Alias1177/MarketMetrics/internal/catalog"
	"github.com/Alias1177/MarketMetrics/internal/fetch"
	"github.com/Alias1177/MarketMetrics/internal/notify"
	"github.com/Alias1177/MarketMetrics/internal/render"
	"github.com/Alias1177/MarketMetrics/models"
)

const banner = `
  __  __            _        _     __  __      _        _
 |  \/  | __ _ _ __| | _____| |_  |  \/  | ___| |_ _ __(_) ___ ___
 | |\/| |/ _' | '__| |/ / _ \ __| | |\/| |/ _ \ __| '__| |/ __/ __|
 | |  | | (_| | |  |   <  __/ |_  | |  | |  __/ |_| |  | | (__\__ \
 |_|  |_|\__,_|_|  |_|\_\___|\__| |_|  |_|\___|\__|_|  |_|\___|___/
`

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	adapter := fetch.New(cfg)
	cat, err := catalog.New(adapter,
		catalog.WithDefinitionsFile(cfg.CatalogPath),
		catalog.WithLookback(cfg.LookbackYears),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Catalog error")
	}

	app := &app{
		cfg:     cfg,
		adapter: adapter,
		catalog: cat,
		stdin:   bufio.NewScanner(os.Stdin),
	}
	app.run()
}

type app struct {
	cfg     *config.Config
	adapter *fetch.Adapter
	catalog *catalog.Catalog
	stdin   *bufio.Scanner
}

func (a *app) run() {
	ctx := context.Background()
	metrics := a.catalog.Metrics()

	for {
		fmt.Print(banner + "\n")
		for i, def := range metrics {
			fmt.Printf("  %2d. %s\n", i+1, def.Title)
		}
		base := len(metrics)
		fmt.Printf("  %2d. All Metrics\n", base+1)
		fmt.Printf("  %2d. Export All Metrics to CSV\n", base+2)
		fmt.Printf("  %2d. Plot Historical Data\n", base+3)
		fmt.Printf("  %2d. Plot Multiple Series\n", base+4)
		fmt.Printf("  %2d. Send Snapshot to Telegram\n", base+5)
		fmt.Println("   Q. Exit")

		choice := strings.TrimSpace(a.prompt(": "))
		if strings.EqualFold(choice, "q") {
			fmt.Println("\nThanks for using Market Metrics!")
			return
		}
		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > base+5 {
			fmt.Println("Invalid choice, enter a number from the menu or 'q' to exit.")
			continue
		}

		switch {
		case n <= base:
			a.showMetric(ctx, metrics[n-1].Key)
		case n == base+1:
			a.showAll(ctx)
		case n == base+2:
			a.exportAll(ctx)
		case n == base+3:
			a.plotSingle(ctx)
		case n == base+4:
			a.plotMultiple(ctx)
		case n == base+5:
			a.sendSnapshot(ctx)
		}

		a.prompt("\nPress Enter to continue...")
	}
}

func (a *app) showMetric(ctx context.Context, key string) {
	res, err := a.catalog.Snapshot(ctx, key)
	if err != nil {
		fmt.Println(describeError(err))
		return
	}
	fmt.Printf("\n%s\n", res.Title)
	render.Table(os.Stdout, res)
}

func (a *app) showAll(ctx context.Context) {
	results, failures := a.catalog.SnapshotAll(ctx)
	render.Tables(os.Stdout, results)
	for key, err := range failures {
		fmt.Printf("%s: %s\n", key, describeError(err))
	}
}

func (a *app) exportAll(ctx context.Context) {
	path := a.cfg.CSVPath
	if path == "" {
		path = fmt.Sprintf("market_metrics_%s.csv", time.Now().Format("20060102"))
	}
	if entered := strings.TrimSpace(a.prompt(fmt.Sprintf("CSV path [default: %s]: ", path))); entered != "" {
		path = entered
	}

	exporter, err := render.NewCSVExporter(path)
	if err != nil {
		fmt.Println(describeError(err))
		return
	}

	results, failures := a.catalog.SnapshotAll(ctx)
	if err := exporter.Export(results...); err != nil {
		fmt.Println(describeError(err))
		return
	}
	fmt.Printf("Exported %d metrics to %s\n", len(results), path)
	for key, err := range failures {
		fmt.Printf("skipped %s: %s\n", key, describeError(err))
	}
}

func (a *app) plotSingle(ctx context.Context) {
	id := strings.TrimSpace(a.prompt("FRED series ID (e.g. GDP, CPIAUCSL, DGS10): "))
	if id == "" {
		fmt.Println("No series ID entered.")
		return
	}
	r, ok := a.promptRange()
	if !ok {
		return
	}

	s, err := a.adapter.Series(ctx, models.SourceFRED, id, r)
	if err != nil {
		fmt.Println(describeError(err))
		return
	}

	yLabel := "Value"
	if info, err := a.adapter.SeriesInfo(ctx, id); err == nil && info.Units != "" {
		yLabel = info.Units
		s.Units = info.Units
	}

	title := strings.TrimSpace(a.prompt(fmt.Sprintf("Plot title [default: %s Historical Data]: ", id)))
	if title == "" {
		title = id + " Historical Data"
	}

	path := a.chartPath(id)
	if err := render.Chart(path, title, yLabel, []*models.Series{s}, []string{id}); err != nil {
		fmt.Println(describeError(err))
		return
	}
	fmt.Printf("Plot saved to %s\n", path)

	if answer := strings.TrimSpace(a.prompt("Also export the series to CSV? [y/N]: ")); strings.EqualFold(answer, "y") {
		csvPath := strings.TrimSuffix(path, ".png") + ".csv"
		exporter, err := render.NewCSVExporter(csvPath)
		if err == nil {
			err = exporter.ExportSeries(s)
		}
		if err != nil {
			fmt.Println(describeError(err))
			return
		}
		fmt.Printf("Series exported to %s\n", csvPath)
	}
}

func (a *app) plotMultiple(ctx context.Context) {
	raw := strings.TrimSpace(a.prompt("FRED series IDs, comma separated (e.g. GDP,CPIAUCSL,DGS10): "))
	if raw == "" {
		fmt.Println("No series IDs entered.")
		return
	}
	ids := splitTrimmed(raw)

	labels := splitTrimmed(a.prompt("Labels, comma separated [default: series IDs]: "))
	for len(labels) < len(ids) {
		labels = append(labels, ids[len(labels)])
	}
	labels = labels[:len(ids)]

	r, ok := a.promptRange()
	if !ok {
		return
	}

	series := make([]*models.Series, 0, len(ids))
	for _, id := range ids {
		s, err := a.adapter.Series(ctx, models.SourceFRED, id, r)
		if err != nil {
			fmt.Println(describeError(err))
			return
		}
		series = append(series, s)
	}

	title := strings.TrimSpace(a.prompt("Plot title [default: FRED Data Comparison]: "))
	if title == "" {
		title = "FRED Data Comparison"
	}

	path := a.chartPath("fred_comparison")
	if err := render.Chart(path, title, "Value", series, labels); err != nil {
		fmt.Println(describeError(err))
		return
	}
	fmt.Printf("Plot saved to %s\n", path)
}

func (a *app) sendSnapshot(ctx context.Context) {
	if !a.cfg.TelegramEnabled() {
		fmt.Println("Telegram is not configured; set TELEGRAM_TOKEN and TELEGRAM_CHAT_ID.")
		return
	}
	notifier, err := notify.NewTelegram(a.cfg.TelegramToken, a.cfg.TelegramChatID)
	if err != nil {
		fmt.Println(describeError(err))
		return
	}

	results, failures := a.catalog.SnapshotAll(ctx)
	if err := notifier.SendSnapshot(results); err != nil {
		fmt.Println(describeError(err))
		return
	}
	fmt.Printf("Sent %d metrics to Telegram.\n", len(results))
	for key, err := range failures {
		fmt.Printf("skipped %s: %s\n", key, describeError(err))
	}
}

// promptRange asks for an optional start and end date, defaulting to the
// last five years.
func (a *app) promptRange() (models.DateRange, bool) {
	defaultStart := time.Now().AddDate(-5, 0, 0).Format("2006-01-02")
	start := strings.TrimSpace(a.prompt(fmt.Sprintf("Start date YYYY-MM-DD [default: %s]: ", defaultStart)))
	if start == "" {
		start = defaultStart
	}
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		fmt.Printf("Invalid start date %q.\n", start)
		return models.DateRange{}, false
	}

	end := strings.TrimSpace(a.prompt("End date YYYY-MM-DD [default: today]: "))
	endDate := time.Now().UTC()
	if end != "" {
		endDate, err = time.Parse("2006-01-02", end)
		if err != nil {
			fmt.Printf("Invalid end date %q.\n", end)
			return models.DateRange{}, false
		}
	}
	return models.DateRange{Start: startDate, End: endDate}, true
}

func (a *app) chartPath(stem string) string {
	name := fmt.Sprintf("%s_%s.png", strings.ReplaceAll(stem, "^", ""), time.Now().Format("20060102"))
	return a.cfg.ChartDir + string(os.PathSeparator) + name
}

func (a *app) prompt(text string) string {
	fmt.Print(text)
	if !a.stdin.Scan() {
		return "q"
	}
	return a.stdin.Text()
}

func splitTrimmed(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// describeError turns adapter and calculator failures into a line the
// menu can show directly.
func describeError(err error) string {
	var authErr *models.AuthError
	var notFound *models.NotFoundError
	var transient *models.TransientError
	var insufficient *models.InsufficientDataError

	switch {
	case errors.As(err, &authErr):
		return fmt.Sprintf("Authentication failed for %s: %s", authErr.Source, authErr.Detail)
	case errors.As(err, &notFound):
		return fmt.Sprintf("Unknown identifier %q on %s.", notFound.ID, notFound.Source)
	case errors.As(err, &transient):
		return fmt.Sprintf("Could not reach %s after retries: %v", transient.Source, transient.Err)
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Not enough data for %s: %s", insufficient.Metric, insufficient.Reason)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
