// Package catalog defines the named metrics the menu exposes and knows
// how to evaluate each one: which series to fetch, which rule combines
// them, and how the result is labeled.
package catalog

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/MarketMetrics/internal/derive"
	"github.com/Alias1177/MarketMetrics/internal/fetch"
	"github.com/Alias1177/MarketMetrics/models"
)

// PartKind selects the evaluation strategy for one row of a metric.
type PartKind string

const (
	// KindSeriesLatest reports the most recent observation of one series.
	KindSeriesLatest PartKind = "series-latest"
	// KindQuotePrice reports the current market price of a ticker.
	KindQuotePrice PartKind = "quote-price"
	// KindTrailingPE reports the trailing P/E of a ticker.
	KindTrailingPE PartKind = "trailing-pe"
	// KindCAPE reports the current Shiller CAPE ratio.
	KindCAPE PartKind = "cape"
	// KindDerived combines input series with a calculator rule and
	// reports the latest aligned point.
	KindDerived PartKind = "derived"
	// KindRiskPremium is the equity risk premium: earnings yield of the
	// market proxy minus the risk-free yield.
	KindRiskPremium PartKind = "risk-premium"
)

// InputDef names one input series of a derived part. Order matters to the
// combination rule.
type InputDef struct {
	Role   string `yaml:"role" validate:"required"`
	Source string `yaml:"source" validate:"required,oneof=fred yahoo multpl"`
	ID     string `yaml:"id" validate:"required"`
}

// PartDef describes one row of a metric.
type PartDef struct {
	Label string   `yaml:"label" validate:"required"`
	Kind  PartKind `yaml:"kind" validate:"required,oneof=series-latest quote-price trailing-pe cape derived risk-premium"`

	// Source and ID drive the single-series and quote kinds.
	Source string `yaml:"source,omitempty"`
	ID     string `yaml:"id,omitempty"`

	// Rule, Inputs, Window, and Fill drive the derived kind.
	Rule   string     `yaml:"rule,omitempty"`
	Inputs []InputDef `yaml:"inputs,omitempty" validate:"dive"`
	Window int        `yaml:"window,omitempty" validate:"min=0"`
	Fill   string     `yaml:"fill,omitempty" validate:"omitempty,oneof=ffill drop"`

	// Scale multiplies the reported value (unit conversions, percent).
	Scale float64 `yaml:"scale,omitempty"`
	// Unit is the display suffix: "%", "$", "$T", "x".
	Unit string `yaml:"unit,omitempty"`
	// LookbackYears bounds the fetched history; zero uses the catalog
	// default.
	LookbackYears int `yaml:"lookback_years,omitempty" validate:"min=0"`

	// RiskFreeID is the yield series subtracted by the risk-premium
	// kind; ID names the market proxy ticker.
	RiskFreeID string `yaml:"risk_free_id,omitempty"`
}

// MetricDef is a named metric of one or more parts.
type MetricDef struct {
	Key         string    `yaml:"key" validate:"required"`
	Title       string    `yaml:"title" validate:"required"`
	Attribution string    `yaml:"attribution"`
	Parts       []PartDef `yaml:"parts" validate:"required,min=1,dive"`
}

// Row is one evaluated line of a metric.
type Row struct {
	Label string
	Value float64
	Unit  string
	Date  time.Time
}

// Result is an evaluated metric snapshot.
type Result struct {
	Key         string
	Title       string
	Attribution string
	Rows        []Row
}

// DataSource is what the catalog needs from the fetch adapter.
type DataSource interface {
	Series(ctx context.Context, source models.Source, id string, r models.DateRange) (*models.Series, error)
	SeriesBatch(ctx context.Context, reqs []fetch.SeriesRequest) (map[string]*models.Series, error)
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
}

// Catalog evaluates metric definitions against a data source.
type Catalog struct {
	source   DataSource
	defs     []MetricDef
	lookback int
	logger   zerolog.Logger
}

// Option adjusts catalog construction.
type Option func(*Catalog) error

// WithDefinitions replaces the built-in metric set.
func WithDefinitions(defs []MetricDef) Option {
	return func(c *Catalog) error {
		c.defs = defs
		return nil
	}
}

// WithDefinitionsFile loads metric definitions from a YAML file. An empty
// path keeps the built-ins.
func WithDefinitionsFile(path string) Option {
	return func(c *Catalog) error {
		if path == "" {
			return nil
		}
		defs, err := LoadDefinitions(path)
		if err != nil {
			return err
		}
		c.defs = defs
		return nil
	}
}

// WithLookback sets the default history window in years.
func WithLookback(years int) Option {
	return func(c *Catalog) error {
		c.lookback = years
		return nil
	}
}

// New builds a catalog over the given data source.
func New(source DataSource, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		source:   source,
		defs:     builtinDefs(),
		lookback: 30,
		logger:   log.With().Str("component", "catalog").Logger(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("building catalog: %w", err)
		}
	}
	if err := validateDefs(c.defs); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDefinitions reads and validates metric definitions from YAML.
func LoadDefinitions(path string) ([]MetricDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	var file struct {
		Metrics []MetricDef `yaml:"metrics"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	if err := validateDefs(file.Metrics); err != nil {
		return nil, err
	}
	return file.Metrics, nil
}

func validateDefs(defs []MetricDef) error {
	if len(defs) == 0 {
		return fmt.Errorf("catalog has no metrics")
	}
	v := validator.New()
	seen := make(map[string]bool)
	for _, def := range defs {
		if err := v.Struct(def); err != nil {
			return fmt.Errorf("metric %q: %w", def.Key, err)
		}
		if seen[def.Key] {
			return fmt.Errorf("duplicate metric key %q", def.Key)
		}
		seen[def.Key] = true
		for _, part := range def.Parts {
			switch part.Kind {
			case KindDerived:
				if _, err := derive.ParseRule(part.Rule); err != nil {
					return fmt.Errorf("metric %q, part %q: %w", def.Key, part.Label, err)
				}
				if len(part.Inputs) == 0 {
					return fmt.Errorf("metric %q, part %q: derived part has no inputs", def.Key, part.Label)
				}
			case KindSeriesLatest:
				if part.Source == "" || part.ID == "" {
					return fmt.Errorf("metric %q, part %q: series part needs source and id", def.Key, part.Label)
				}
			case KindQuotePrice, KindTrailingPE:
				if part.ID == "" {
					return fmt.Errorf("metric %q, part %q: quote part needs a ticker id", def.Key, part.Label)
				}
			case KindRiskPremium:
				if part.ID == "" || part.RiskFreeID == "" {
					return fmt.Errorf("metric %q, part %q: risk premium needs a ticker id and risk_free_id", def.Key, part.Label)
				}
			}
		}
	}
	return nil
}

// Metrics lists the definitions in menu order.
func (c *Catalog) Metrics() []MetricDef { return c.defs }

// Lookup finds a metric definition by key.
func (c *Catalog) Lookup(key string) (MetricDef, bool) {
	for _, def := range c.defs {
		if def.Key == key {
			return def, true
		}
	}
	return MetricDef{}, false
}

// Snapshot evaluates one metric. Any part failure fails the whole metric;
// no partial rows are returned.
func (c *Catalog) Snapshot(ctx context.Context, key string) (*Result, error) {
	def, ok := c.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", key)
	}

	res := &Result{Key: def.Key, Title: def.Title, Attribution: def.Attribution}
	for _, part := range def.Parts {
		rows, err := c.evalPart(ctx, def, part)
		if err != nil {
			c.logger.Error().Err(err).Str("metric", def.Key).Str("part", part.Label).
				Msg("Metric evaluation failed")
			return nil, err
		}
		res.Rows = append(res.Rows, rows...)
	}
	return res, nil
}

// SnapshotAll evaluates every metric, continuing past per-metric failures.
// Failed metrics are reported in the returned map instead of the results.
func (c *Catalog) SnapshotAll(ctx context.Context) ([]*Result, map[string]error) {
	results := make([]*Result, 0, len(c.defs))
	failures := make(map[string]error)
	for _, def := range c.defs {
		res, err := c.Snapshot(ctx, def.Key)
		if err != nil {
			failures[def.Key] = err
			continue
		}
		results = append(results, res)
	}
	return results, failures
}

// History evaluates the first derived part of a metric over its full
// lookback, for export or plotting.
func (c *Catalog) History(ctx context.Context, key string) (*models.DerivedMetric, error) {
	def, ok := c.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", key)
	}
	for _, part := range def.Parts {
		if part.Kind == KindDerived {
			return c.computeDerived(ctx, def, part)
		}
	}
	return nil, fmt.Errorf("metric %q has no derived history", key)
}

func (c *Catalog) evalPart(ctx context.Context, def MetricDef, part PartDef) ([]Row, error) {
	scale := part.Scale
	if scale == 0 {
		scale = 1
	}

	switch part.Kind {
	case KindSeriesLatest:
		s, err := c.source.Series(ctx, models.Source(part.Source), part.ID, c.rangeFor(part))
		if err != nil {
			return nil, err
		}
		latest, ok := s.Latest()
		if !ok {
			return nil, &models.InsufficientDataError{Metric: def.Key, Reason: "series " + part.ID + " is empty"}
		}
		return []Row{{Label: part.Label, Value: latest.Value * scale, Unit: part.Unit, Date: latest.Date}}, nil

	case KindQuotePrice:
		q, err := c.source.Quote(ctx, part.ID)
		if err != nil {
			return nil, err
		}
		return []Row{{Label: part.Label, Value: q.Price * scale, Unit: part.Unit, Date: q.Time}}, nil

	case KindTrailingPE:
		q, err := c.source.Quote(ctx, part.ID)
		if err != nil {
			return nil, err
		}
		if q.TrailingPE <= 0 {
			return nil, &models.InsufficientDataError{Metric: def.Key, Reason: "no trailing P/E reported for " + part.ID}
		}
		return []Row{{Label: part.Label, Value: q.TrailingPE * scale, Unit: part.Unit, Date: q.Time}}, nil

	case KindCAPE:
		s, err := c.source.Series(ctx, models.SourceMultpl, part.ID, models.DateRange{})
		if err != nil {
			return nil, err
		}
		latest, ok := s.Latest()
		if !ok {
			return nil, &models.InsufficientDataError{Metric: def.Key, Reason: "CAPE scrape returned nothing"}
		}
		return []Row{{Label: part.Label, Value: latest.Value * scale, Unit: part.Unit, Date: latest.Date}}, nil

	case KindDerived:
		metric, err := c.computeDerived(ctx, def, part)
		if err != nil {
			return nil, err
		}
		latest, _ := metric.Latest()
		return []Row{{Label: part.Label, Value: latest.Value, Unit: part.Unit, Date: latest.Date}}, nil

	case KindRiskPremium:
		return c.evalRiskPremium(ctx, def, part)
	}
	return nil, fmt.Errorf("metric %q: unknown part kind %q", def.Key, part.Kind)
}

func (c *Catalog) computeDerived(ctx context.Context, def MetricDef, part PartDef) (*models.DerivedMetric, error) {
	reqs := make([]fetch.SeriesRequest, len(part.Inputs))
	for i, in := range part.Inputs {
		reqs[i] = fetch.SeriesRequest{
			Role:   in.Role,
			Source: models.Source(in.Source),
			ID:     in.ID,
			Range:  c.rangeFor(part),
		}
	}
	byRole, err := c.source.SeriesBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}

	inputs := make([]*models.Series, len(part.Inputs))
	for i, in := range part.Inputs {
		inputs[i] = byRole[in.Role]
	}

	rule, err := derive.ParseRule(part.Rule)
	if err != nil {
		return nil, fmt.Errorf("metric %q: %w", def.Key, err)
	}
	return derive.Compute(def.Key, rule, inputs, derive.Options{
		Window: part.Window,
		Scale:  part.Scale,
		Fill:   derive.FillPolicy(part.Fill),
	})
}

// evalRiskPremium reproduces the classic fallback formula: earnings yield
// (inverse trailing P/E of the market proxy, in percent) minus the
// risk-free yield.
func (c *Catalog) evalRiskPremium(ctx context.Context, def MetricDef, part PartDef) ([]Row, error) {
	q, err := c.source.Quote(ctx, part.ID)
	if err != nil {
		return nil, err
	}
	if q.TrailingPE <= 0 {
		return nil, &models.InsufficientDataError{Metric: def.Key, Reason: "no trailing P/E reported for " + part.ID}
	}
	earningsYield := 100 / q.TrailingPE

	riskFree, err := c.source.Series(ctx, models.SourceFRED, part.RiskFreeID, c.rangeFor(part))
	if err != nil {
		return nil, err
	}
	latest, ok := riskFree.Latest()
	if !ok {
		return nil, &models.InsufficientDataError{Metric: def.Key, Reason: "risk-free series " + part.RiskFreeID + " is empty"}
	}

	return []Row{
		{Label: part.Label, Value: earningsYield - latest.Value, Unit: "%", Date: latest.Date},
		{Label: "earnings yield", Value: earningsYield, Unit: "%", Date: q.Time},
		{Label: "risk-free rate", Value: latest.Value, Unit: "%", Date: latest.Date},
	}, nil
}

func (c *Catalog) rangeFor(part PartDef) models.DateRange {
	years := part.LookbackYears
	if years == 0 {
		years = c.lookback
	}
	return models.LastYears(years)
}
