// Package aggregate computes the hourly, daily and weekly statistics of a window.
//
// All statistics are computed in display units on unrounded values; rounding
// is left to whatever presents them.
package aggregate

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/glucosereport/internal/types"
)

// buckets walks time-ordered samples and calls cb once for every run of
// samples sharing the same key.
func buckets(samples []types.Sample, key func(time.Time) time.Time, cb func(k time.Time, values []float64)) {
	if len(samples) == 0 {
		return
	}
	bucket := key(samples[0].Time)
	values := []float64{samples[0].Value}
	for _, s := range samples[1:] {
		k := key(s.Time)
		if k.Equal(bucket) {
			values = append(values, s.Value)
			continue
		}
		cb(bucket, values)
		bucket = k
		values = []float64{s.Value}
	}
	cb(bucket, values)
}

func hourOf(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// Hourly returns the mean of every clock hour that has at least one sample.
// Hours without samples are left out rather than filled. samples must be
// ordered by time.
func Hourly(samples []types.Sample) []types.HourlyPoint {
	var out []types.HourlyPoint
	buckets(samples, hourOf, func(k time.Time, values []float64) {
		out = append(out, types.HourlyPoint{
			Time:  k,
			Mean:  stat.Mean(values, nil),
			Count: len(values),
		})
	})
	return out
}

// Daily returns min, max and mean for every calendar day that has at least
// one sample. samples must be ordered by time.
func Daily(samples []types.Sample) []types.DailySummary {
	var out []types.DailySummary
	buckets(samples, types.Midnight, func(k time.Time, values []float64) {
		out = append(out, types.DailySummary{
			Date:  k,
			Min:   floats.Min(values),
			Max:   floats.Max(values),
			Mean:  stat.Mean(values, nil),
			Count: len(values),
		})
	})
	return out
}

// Weekly is the mean of every sample in the window, not the mean of the
// daily means. It returns NaN for an empty input.
func Weekly(samples []types.Sample) float64 {
	if len(samples) == 0 {
		return math.NaN()
	}
	return stat.Mean(values(samples), nil)
}

// Spread returns the sample standard deviation and the coefficient of
// variation (stddev / mean). Both are zero for fewer than two samples.
func Spread(samples []types.Sample) (stddev, cv float64) {
	if len(samples) < 2 {
		return 0, 0
	}
	mean, std := stat.MeanStdDev(values(samples), nil)
	if mean == 0 {
		return std, 0
	}
	return std, std / mean
}

// TimeInRange returns the fraction of samples below, inside and above the target zone.
func TimeInRange(samples []types.Sample, th types.Thresholds) types.TimeInRange {
	if len(samples) == 0 {
		return types.TimeInRange{}
	}
	var low, high int
	for _, s := range samples {
		switch {
		case s.Value < th.Low:
			low++
		case s.Value > th.High:
			high++
		}
	}
	n := float64(len(samples))
	return types.TimeInRange{
		Low:    float64(low) / n,
		Target: float64(len(samples)-low-high) / n,
		High:   float64(high) / n,
	}
}

// Segments splits an hourly series into runs of consecutive hours, so a
// trend line can be drawn with a visible break wherever hours are missing.
func Segments(hourly []types.HourlyPoint) [][]types.HourlyPoint {
	var out [][]types.HourlyPoint
	start := 0
	for i := 1; i <= len(hourly); i++ {
		if i < len(hourly) && hourly[i].Time.Sub(hourly[i-1].Time) == time.Hour {
			continue
		}
		if i > start {
			out = append(out, hourly[start:i])
		}
		start = i
	}
	return out
}

// Summarize computes every aggregate for the window.
func Summarize(w *types.Window, th types.Thresholds) types.Summary {
	std, cv := Spread(w.Samples)
	return types.Summary{
		WindowStart: w.Start,
		WindowEnd:   w.End,
		Days:        w.Days,
		FirstDate:   w.FirstDate(),
		LastDate:    w.LastDate(),
		Readings:    len(w.Samples),
		Hourly:      Hourly(w.Samples),
		Daily:       Daily(w.Samples),
		WeeklyAvg:   Weekly(w.Samples),
		StdDev:      std,
		CV:          cv,
		InRange:     TimeInRange(w.Samples, th),
		Thresholds:  th,
	}
}

func values(samples []types.Sample) []float64 {
	v := make([]float64, len(samples))
	for i, s := range samples {
		v[i] = s.Value
	}
	return v
}
