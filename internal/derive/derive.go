// Package derive computes named composite metrics from raw series: inputs
// are resampled onto a common timestamp grid, forward-filled, then
// combined by a pure pointwise rule. Misaligned or empty inputs fail the
// computation; no partial result is ever produced.
package derive

import (
	"fmt"

	"github.com/Alias1177/MarketMetrics/models"
)

// Options tune a computation.
type Options struct {
	// Window is the trailing period count for RuleGrowth. Zero means one
	// year at the aligned frequency.
	Window int
	// Scale multiplies RuleRatio output (100 turns a fraction into a
	// percentage). Zero means 1.
	Scale float64
	// Fill is the resampling fill policy; default FillForward.
	Fill FillPolicy
}

// Compute aligns the inputs and applies the rule. Input order matters:
// ratio is inputs[0]/inputs[1], spread is inputs[0]-inputs[1], growth
// takes exactly one input.
func Compute(name string, rule Rule, inputs []*models.Series, opts Options) (*models.DerivedMetric, error) {
	if len(inputs) != rule.inputCount() {
		return nil, fmt.Errorf("%s: rule %q needs %d input(s), got %d",
			name, rule, rule.inputCount(), len(inputs))
	}
	if opts.Fill == "" {
		opts.Fill = FillForward
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}

	aligned, err := Align(inputs, opts.Fill)
	if err != nil {
		if insufficient, ok := err.(*models.InsufficientDataError); ok {
			insufficient.Metric = name
		}
		return nil, err
	}
	freq := aligned[0].Frequency

	var points []models.Observation
	switch rule {
	case RuleRatio:
		points = ratioPoints(aligned[0], aligned[1], opts.Scale)
	case RuleSpread:
		points = spreadPoints(aligned[0], aligned[1])
	case RuleGrowth:
		window := opts.Window
		if window == 0 {
			window = freq.PeriodsPerYear()
		}
		if aligned[0].Len() < window+1 {
			return nil, &models.InsufficientDataError{
				Metric: name,
				Reason: fmt.Sprintf("growth over %d periods needs %d aligned points, have %d",
					window, window+1, aligned[0].Len()),
			}
		}
		points = growthPoints(aligned[0], window)
	default:
		return nil, fmt.Errorf("%s: unknown rule %q", name, rule)
	}

	if len(points) == 0 {
		return nil, &models.InsufficientDataError{Metric: name, Reason: "no aligned points survived"}
	}

	names := make([]string, len(inputs))
	for i, s := range inputs {
		names[i] = fmt.Sprintf("%s:%s", s.Source, s.ID)
	}
	return &models.DerivedMetric{
		Name:      name,
		Frequency: freq,
		Inputs:    names,
		Points:    points,
	}, nil
}
