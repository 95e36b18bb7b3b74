// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

// Defaults for the report. Every one of these can be overridden through
// pkg/config or a command-line flag.
const (
	// DefaultConversionDivisor converts mg/dL into mmol/L.
	DefaultConversionDivisor = 18.0

	DefaultRawUnit     = "mg/dL"
	DefaultDisplayUnit = "mmol/L"

	// DefaultWindowDays is the length of the trailing window, in calendar days.
	DefaultWindowDays = 7

	// Zone thresholds in display units
	DefaultLowThreshold  = 3.9
	DefaultHighThreshold = 10.0
	DefaultZoneCeiling   = 20.0

	DefaultDPI = 150

	// Output image is ReportInches x ReportInches at the configured DPI
	ReportInches = 12

	// OutputDateLayout formats the window dates in the report file name.
	OutputDateLayout = "02-01-2006"
	OutputPrefix     = "Glucose_Report_"
)
