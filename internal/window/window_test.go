package window

import (
	"errors"
	"testing"
	"time"

	"github.com/chrissnell/glucosereport/internal/types"
)

func sample(t time.Time, v float64) types.Sample {
	return types.Sample{Time: t, Instant: t, Value: v}
}

// fourteenDays returns one sample every six hours from 2025-11-01 00:00 to
// 2025-11-14 18:00.
func fourteenDays() []types.Sample {
	var out []types.Sample
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14*4; i++ {
		out = append(out, sample(start.Add(time.Duration(i)*6*time.Hour), 5+float64(i%4)))
	}
	return out
}

func TestSelect(t *testing.T) {
	w, err := Select(fourteenDays(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 11, 14, 18, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, w.Start)
	}
	if !w.End.Equal(wantEnd) {
		t.Errorf("expected end %v, got %v", wantEnd, w.End)
	}
	if len(w.Samples) != 7*4 {
		t.Errorf("expected %d samples, got %d", 7*4, len(w.Samples))
	}
	for _, s := range w.Samples {
		if s.Time.Before(wantStart) {
			t.Errorf("sample %v precedes window start", s.Time)
		}
	}

	days := map[time.Time]bool{}
	for _, s := range w.Samples {
		days[types.Midnight(s.Time)] = true
	}
	if len(days) != 7 {
		t.Errorf("expected 7 calendar days, got %d", len(days))
	}
	if !w.FirstDate().Equal(wantStart) || !w.LastDate().Equal(types.Midnight(wantEnd)) {
		t.Errorf("unexpected first/last dates %v, %v", w.FirstDate(), w.LastDate())
	}
}

func TestSelectBoundary(t *testing.T) {
	end := time.Date(2025, 11, 14, 9, 15, 0, 0, time.UTC)
	start := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)

	samples := []types.Sample{
		sample(start.Add(-time.Second), 4.0),
		sample(start, 5.0),
		sample(end, 6.0),
	}

	w, err := Select(samples, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(w.Samples))
	}
	if !w.Samples[0].Time.Equal(start) {
		t.Errorf("sample at window start should be included, got first %v", w.Samples[0].Time)
	}
}

func TestSelectOrdersByWallClock(t *testing.T) {
	samples := []types.Sample{
		sample(time.Date(2025, 11, 6, 2, 0, 0, 0, time.UTC), 2),
		sample(time.Date(2025, 11, 6, 1, 0, 0, 0, time.UTC), 1),
	}
	w, err := Select(samples, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Samples[0].Value != 1 || w.Samples[1].Value != 2 {
		t.Errorf("expected samples ordered by time, got %+v", w.Samples)
	}
}

func TestSelectSingleDay(t *testing.T) {
	w, err := Select(fourteenDays(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Samples) != 4 {
		t.Errorf("expected 4 samples on the last day, got %d", len(w.Samples))
	}
}

func TestSelectErrors(t *testing.T) {
	if _, err := Select(nil, 7); !errors.Is(err, types.ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
	if _, err := Select(fourteenDays(), 0); err == nil {
		t.Errorf("expected error for zero-day window")
	}
}

func TestStart(t *testing.T) {
	end := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	want := time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC)
	if got := Start(end, 7); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
