package models

import (
	"fmt"
	"time"
)

// Frequency describes the spacing of observations within a series.
type Frequency string

const (
	FreqDaily     Frequency = "daily"
	FreqWeekly    Frequency = "weekly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqAnnual    Frequency = "annual"
)

// rank orders frequencies from finest to coarsest.
var rank = map[Frequency]int{
	FreqDaily:     0,
	FreqWeekly:    1,
	FreqMonthly:   2,
	FreqQuarterly: 3,
	FreqAnnual:    4,
}

// ParseFrequency converts a config string into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if _, ok := rank[f]; !ok {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

// Coarser reports whether f has a coarser grid than other.
func (f Frequency) Coarser(other Frequency) bool {
	return rank[f] > rank[other]
}

// Truncate maps t to the start of the period containing it: the day for
// daily, Monday for weekly, the first of the month, quarter, or year
// otherwise.
func (f Frequency) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch f {
	case FreqWeekly:
		day := t.Truncate(24 * time.Hour)
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		return day.AddDate(0, 0, -offset)
	case FreqMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case FreqQuarterly:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	case FreqAnnual:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(24 * time.Hour)
	}
}

// Next returns the start of the period following the one containing t.
func (f Frequency) Next(t time.Time) time.Time {
	start := f.Truncate(t)
	switch f {
	case FreqWeekly:
		return start.AddDate(0, 0, 7)
	case FreqMonthly:
		return start.AddDate(0, 1, 0)
	case FreqQuarterly:
		return start.AddDate(0, 3, 0)
	case FreqAnnual:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// PeriodsPerYear returns how many observation periods make up one year,
// used for trailing-window growth rates.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case FreqWeekly:
		return 52
	case FreqMonthly:
		return 12
	case FreqQuarterly:
		return 4
	case FreqAnnual:
		return 1
	default:
		return 252 // trading days
	}
}

// InferFrequency guesses the frequency of a series from the median gap
// between consecutive observations. Remote sources do not always report
// their cadence, so the adapter falls back to this.
func InferFrequency(obs []Observation) Frequency {
	if len(obs) < 2 {
		return FreqDaily
	}
	gaps := make([]float64, 0, len(obs)-1)
	for i := 1; i < len(obs); i++ {
		gaps = append(gaps, obs[i].Date.Sub(obs[i-1].Date).Hours()/24)
	}
	median := medianOf(gaps)
	switch {
	case median <= 4:
		return FreqDaily
	case median <= 10:
		return FreqWeekly
	case median <= 45:
		return FreqMonthly
	case median <= 150:
		return FreqQuarterly
	default:
		return FreqAnnual
	}
}

func medianOf(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
