package derive

import (
	"fmt"

	"github.com/Alias1177/MarketMetrics/models"
)

// Rule names a combination applied to aligned values.
type Rule string

const (
	// RuleRatio divides the first input by the second, pointwise.
	RuleRatio Rule = "ratio"
	// RuleSpread subtracts the second input from the first, pointwise.
	RuleSpread Rule = "spread"
	// RuleGrowth is the percent change of a single input over a trailing
	// window of Window periods.
	RuleGrowth Rule = "growth"
)

// ParseRule validates a rule name from a catalog definition.
func ParseRule(s string) (Rule, error) {
	switch Rule(s) {
	case RuleRatio, RuleSpread, RuleGrowth:
		return Rule(s), nil
	}
	return "", fmt.Errorf("unknown rule %q", s)
}

// inputCount returns how many series the rule combines.
func (r Rule) inputCount() int {
	if r == RuleGrowth {
		return 1
	}
	return 2
}

// ratioPoints divides a by b pointwise, scaled. Points where the
// denominator is zero are dropped: division there is undefined and the
// calculator never substitutes a value.
func ratioPoints(a, b *models.Series, scale float64) []models.Observation {
	out := make([]models.Observation, 0, a.Len())
	for i := range a.Observations {
		if b.Observations[i].Value == 0 {
			continue
		}
		out = append(out, models.Observation{
			Date:  a.Observations[i].Date,
			Value: scale * a.Observations[i].Value / b.Observations[i].Value,
		})
	}
	return out
}

// spreadPoints subtracts b from a pointwise.
func spreadPoints(a, b *models.Series) []models.Observation {
	out := make([]models.Observation, 0, a.Len())
	for i := range a.Observations {
		out = append(out, models.Observation{
			Date:  a.Observations[i].Date,
			Value: a.Observations[i].Value - b.Observations[i].Value,
		})
	}
	return out
}

// growthPoints computes the trailing percent change over window periods.
// Points whose base value is zero or negative are dropped.
func growthPoints(s *models.Series, window int) []models.Observation {
	out := make([]models.Observation, 0, s.Len())
	for i := window; i < s.Len(); i++ {
		base := s.Observations[i-window].Value
		if base <= 0 {
			continue
		}
		out = append(out, models.Observation{
			Date:  s.Observations[i].Date,
			Value: (s.Observations[i].Value/base - 1) * 100,
		})
	}
	return out
}
