// Package units converts raw meter values into display units.
package units

import (
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/glucosereport/internal/constants"
	"github.com/chrissnell/glucosereport/internal/types"
)

// Converter is a fixed linear conversion: display = raw / Divisor.
type Converter struct {
	Divisor     float64
	RawUnit     string
	DisplayUnit string
}

// New returns a Converter, rejecting divisors that would not produce finite values.
func New(divisor float64, rawUnit, displayUnit string) (*Converter, error) {
	if math.IsNaN(divisor) || math.IsInf(divisor, 0) || divisor <= 0 {
		return nil, fmt.Errorf("conversion divisor must be a positive number, got %v", divisor)
	}
	if rawUnit == "" {
		rawUnit = constants.DefaultRawUnit
	}
	if displayUnit == "" {
		displayUnit = constants.DefaultDisplayUnit
	}
	return &Converter{Divisor: divisor, RawUnit: rawUnit, DisplayUnit: displayUnit}, nil
}

// Default converts mg/dL into mmol/L.
func Default() *Converter {
	return &Converter{
		Divisor:     constants.DefaultConversionDivisor,
		RawUnit:     constants.DefaultRawUnit,
		DisplayUnit: constants.DefaultDisplayUnit,
	}
}

// Convert maps a raw value into display units. No rounding is applied.
func (c *Converter) Convert(raw float64) float64 {
	return raw / c.Divisor
}

// Revert maps a display value back into raw units.
func (c *Converter) Revert(display float64) float64 {
	return display * c.Divisor
}

// ConvertAll converts readings into samples. When loc is non-nil every
// timestamp is moved into loc before its wall clock is taken; otherwise the
// wall clock at the recorded offset is used.
func (c *Converter) ConvertAll(readings []types.Reading, loc *time.Location) []types.Sample {
	samples := make([]types.Sample, len(readings))
	for i, r := range readings {
		ts := r.Timestamp
		if loc != nil {
			ts = ts.In(loc)
		}
		samples[i] = types.Sample{
			Time:    types.WallClock(ts),
			Instant: r.Timestamp,
			Value:   c.Convert(r.Value),
		}
	}
	return samples
}
