// Package window selects the trailing N-day window of samples.
package window

import (
	"fmt"
	"sort"
	"time"

	"github.com/chrissnell/glucosereport/internal/types"
)

// Select returns the samples whose time falls on or after midnight of the
// (days-1)th calendar day before the latest sample. The boundary day is
// always fully included.
func Select(samples []types.Sample, days int) (*types.Window, error) {
	if days < 1 {
		return nil, fmt.Errorf("window must span at least one day, got %d", days)
	}
	if len(samples) == 0 {
		return nil, &types.EmptyDatasetError{}
	}

	end := samples[0].Time
	for _, s := range samples[1:] {
		if s.Time.After(end) {
			end = s.Time
		}
	}
	start := Start(end, days)

	selected := make([]types.Sample, 0, len(samples))
	for _, s := range samples {
		if !s.Time.Before(start) {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return nil, &types.EmptyWindowError{Start: start, End: end}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Time.Before(selected[j].Time)
	})

	return &types.Window{
		Start:   start,
		End:     end,
		Days:    days,
		Samples: selected,
	}, nil
}

// Start returns 00:00:00 of the first day of a days-long window ending at end.
func Start(end time.Time, days int) time.Time {
	return types.Midnight(end).AddDate(0, 0, -(days - 1))
}
