package derive

import (
	"sort"
	"time"

	"github.com/Alias1177/MarketMetrics/models"
)

// FillPolicy controls how empty grid buckets are treated when resampling.
type FillPolicy string

const (
	// FillForward carries the last observation forward across empty
	// buckets inside the series' own span.
	FillForward FillPolicy = "ffill"
	// FillNone leaves empty buckets out; alignment will then drop those
	// grid points entirely.
	FillNone FillPolicy = "drop"
)

// Coarsest returns the coarsest frequency among the given series.
func Coarsest(series ...*models.Series) models.Frequency {
	freq := models.FreqDaily
	for _, s := range series {
		if s.Frequency.Coarser(freq) {
			freq = s.Frequency
		}
	}
	return freq
}

// Resample buckets a series onto the grid of freq. Each bucket keeps the
// last observation falling inside it, stamped at the bucket start. With
// FillForward, buckets between the series' first and last observation
// that received nothing inherit the previous bucket's value. Resampling a
// series already on the target grid returns it unchanged.
func Resample(s *models.Series, freq models.Frequency, fill FillPolicy) *models.Series {
	out := s.Clone()
	out.Frequency = freq
	if s.Empty() {
		return out
	}

	buckets := make(map[time.Time]float64, s.Len())
	for _, o := range s.Observations {
		buckets[freq.Truncate(o.Date)] = o.Value
	}

	first := freq.Truncate(s.Observations[0].Date)
	last := freq.Truncate(s.Observations[s.Len()-1].Date)

	obs := make([]models.Observation, 0, len(buckets))
	var prev float64
	var havePrev bool
	for t := first; !t.After(last); t = freq.Next(t) {
		v, ok := buckets[t]
		switch {
		case ok:
			prev, havePrev = v, true
		case fill == FillForward && havePrev:
			v = prev
			ok = true
		}
		if ok {
			obs = append(obs, models.Observation{Date: t, Value: v})
		}
	}

	out.Observations = obs
	return out
}

// Align resamples every input onto the coarsest common frequency and
// intersects the resulting grids. The output series all share identical
// timestamps, running from the latest first observation to the earliest
// last one; grid points missing from any input after filling are dropped
// rather than interpolated. Aligning already-aligned series is a no-op.
func Align(inputs []*models.Series, fill FillPolicy) ([]*models.Series, error) {
	if len(inputs) == 0 {
		return nil, &models.InsufficientDataError{Metric: "align", Reason: "no input series"}
	}
	for _, s := range inputs {
		if s.Empty() {
			return nil, &models.InsufficientDataError{
				Metric: "align",
				Reason: "input series " + s.ID + " is empty",
			}
		}
	}

	freq := Coarsest(inputs...)
	resampled := make([]*models.Series, len(inputs))
	for i, s := range inputs {
		resampled[i] = Resample(s, freq, fill)
	}

	// Timestamps present in every input.
	counts := make(map[time.Time]int)
	for _, s := range resampled {
		for _, o := range s.Observations {
			counts[o.Date]++
		}
	}
	grid := make([]time.Time, 0, len(counts))
	for t, n := range counts {
		if n == len(resampled) {
			grid = append(grid, t)
		}
	}
	sort.Slice(grid, func(i, j int) bool { return grid[i].Before(grid[j]) })

	if len(grid) == 0 {
		return nil, &models.InsufficientDataError{
			Metric: "align",
			Reason: "input series do not overlap",
		}
	}

	keep := make(map[time.Time]bool, len(grid))
	for _, t := range grid {
		keep[t] = true
	}
	for _, s := range resampled {
		obs := s.Observations[:0]
		for _, o := range s.Observations {
			if keep[o.Date] {
				obs = append(obs, o)
			}
		}
		s.Observations = obs
	}
	return resampled, nil
}
