package units

import (
	"math"
	"testing"
	"time"

	"github.com/chrissnell/glucosereport/internal/types"
)

func TestConvert(t *testing.T) {
	c := Default()

	tests := []struct {
		raw  float64
		want float64
	}{
		{164, 9.111},
		{187, 10.389},
		{18, 1},
		{0, 0},
	}

	for _, tt := range tests {
		got := c.Convert(tt.raw)
		if math.Abs(got-tt.want) > 0.0005 {
			t.Errorf("Convert(%v): expected %.3f, got %.6f", tt.raw, tt.want, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, divisor := range []float64{18.0, 18.0182, 1, 0.5} {
		c, err := New(divisor, "", "")
		if err != nil {
			t.Fatalf("New(%v): %v", divisor, err)
		}
		for raw := 20.0; raw <= 600; raw += 7.3 {
			if got := c.Revert(c.Convert(raw)); math.Abs(got-raw) > 1e-9 {
				t.Errorf("divisor %v: round trip of %v gave %v", divisor, raw, got)
			}
		}
	}
}

func TestNew(t *testing.T) {
	for _, bad := range []float64{0, -18, math.NaN(), math.Inf(1)} {
		if _, err := New(bad, "", ""); err == nil {
			t.Errorf("expected error for divisor %v", bad)
		}
	}

	c, err := New(1, "mmol/L", "mmol/L")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Convert(5.5) != 5.5 {
		t.Errorf("identity conversion changed value")
	}

	c, err = New(18, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.RawUnit != "mg/dL" || c.DisplayUnit != "mmol/L" {
		t.Errorf("expected default units, got %s -> %s", c.RawUnit, c.DisplayUnit)
	}
}

func TestConvertAll(t *testing.T) {
	cst := time.FixedZone("", -6*3600)
	cdt := time.FixedZone("", -5*3600)
	readings := []types.Reading{
		{Timestamp: time.Date(2025, 11, 1, 23, 30, 0, 0, cdt), Value: 90, Line: 2},
		{Timestamp: time.Date(2025, 11, 6, 1, 36, 0, 0, cst), Value: 164, Line: 3},
	}

	samples := Default().ConvertAll(readings, nil)
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}

	// Wall clock at the recorded offset
	want := time.Date(2025, 11, 6, 1, 36, 0, 0, time.UTC)
	if !samples[1].Time.Equal(want) {
		t.Errorf("expected bucketing time %v, got %v", want, samples[1].Time)
	}
	if !samples[1].Instant.Equal(readings[1].Timestamp) {
		t.Errorf("instant not preserved")
	}
	if math.Abs(samples[1].Value-164.0/18.0) > 1e-12 {
		t.Errorf("unexpected value %v", samples[1].Value)
	}

	// With a location override the instant is moved first
	samples = Default().ConvertAll(readings, time.UTC)
	want = time.Date(2025, 11, 2, 4, 30, 0, 0, time.UTC)
	if !samples[0].Time.Equal(want) {
		t.Errorf("expected %v in UTC, got %v", want, samples[0].Time)
	}
}
