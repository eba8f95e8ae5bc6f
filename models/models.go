package models

import (
	"fmt"
	"time"
)

// Source identifies which remote API a series comes from.
type Source string

const (
	SourceFRED   Source = "fred"
	SourceYahoo  Source = "yahoo"
	SourceMultpl Source = "multpl"
)

// Observation is a single dated value within a series.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DateRange bounds a series request. A zero Start or End leaves that side
// open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// LastYears returns a range covering the last n years up to now.
func LastYears(n int) DateRange {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	return DateRange{Start: now.AddDate(-n, 0, 0), End: now}
}

// Contains reports whether t falls inside the range, treating zero bounds
// as open.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

func (r DateRange) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "open"
		}
		return t.Format("2006-01-02")
	}
	return fmt.Sprintf("%s..%s", format(r.Start), format(r.End))
}

// Series is an ordered sequence of observations from one data source.
// Observations are sorted ascending by date; the sequence is owned by the
// caller that requested it and is never shared between requests.
type Series struct {
	Source       Source        `json:"source"`
	ID           string        `json:"id"`
	Units        string        `json:"units,omitempty"`
	Frequency    Frequency     `json:"frequency"`
	Observations []Observation `json:"observations"`
}

// Empty reports whether the series has no observations.
func (s *Series) Empty() bool { return s == nil || len(s.Observations) == 0 }

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Observations)
}

// First returns the earliest observation. The second return value is false
// when the series is empty.
func (s *Series) First() (Observation, bool) {
	if s.Empty() {
		return Observation{}, false
	}
	return s.Observations[0], true
}

// Latest returns the most recent observation. The second return value is
// false when the series is empty.
func (s *Series) Latest() (Observation, bool) {
	if s.Empty() {
		return Observation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// Values returns the observation values in date order.
func (s *Series) Values() []float64 {
	vals := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		vals[i] = o.Value
	}
	return vals
}

// Dates returns the observation dates in order.
func (s *Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.Observations))
	for i, o := range s.Observations {
		dates[i] = o.Date
	}
	return dates
}

// Clone returns a deep copy so callers can reshape a cached series without
// mutating the original.
func (s *Series) Clone() *Series {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Observations = make([]Observation, len(s.Observations))
	copy(dup.Observations, s.Observations)
	return &dup
}

// DerivedMetric is a named composite computed from two or more series
// aligned onto a common timestamp grid.
type DerivedMetric struct {
	Name      string        `json:"name"`
	Frequency Frequency     `json:"frequency"`
	Inputs    []string      `json:"inputs"`
	Points    []Observation `json:"points"`
}

// Latest returns the most recent computed point.
func (m *DerivedMetric) Latest() (Observation, bool) {
	if m == nil || len(m.Points) == 0 {
		return Observation{}, false
	}
	return m.Points[len(m.Points)-1], true
}

// Quote is a point-in-time market snapshot from the quote API.
type Quote struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	TrailingPE float64   `json:"trailing_pe,omitempty"`
	Time       time.Time `json:"time"`
}
