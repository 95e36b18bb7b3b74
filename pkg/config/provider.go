package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chrissnell/glucosereport/internal/types"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	Close() error
}

// ConfigData represents the complete configuration structure.  Every field can
// be set in YAML or through the environment variable named in its env tag;
// env-default holds the documented default.
type ConfigData struct {
	Input      InputData      `yaml:"input" json:"input"`
	Conversion ConversionData `yaml:"conversion" json:"conversion"`
	Window     WindowData     `yaml:"window" json:"window"`
	Thresholds ThresholdData  `yaml:"thresholds" json:"thresholds"`
	Output     OutputData     `yaml:"output" json:"output"`
	History    HistoryData    `yaml:"history" json:"history"`
	Logging    LoggingData    `yaml:"logging" json:"logging"`
}

// InputData selects and interprets the CSV export
type InputData struct {
	Path         string   `yaml:"path,omitempty" json:"path,omitempty" env:"GLUCOSE_INPUT"`
	Dir          string   `yaml:"dir" json:"dir" env:"GLUCOSE_INPUT_DIR" env-default:"."`
	TimeColumns  []string `yaml:"time_columns,omitempty" json:"time_columns,omitempty" env:"GLUCOSE_TIME_COLUMNS"`
	ValueColumns []string `yaml:"value_columns,omitempty" json:"value_columns,omitempty" env:"GLUCOSE_VALUE_COLUMNS"`
	// Timezone, when set, is the IANA zone readings are bucketed in. Empty
	// keeps the wall clock at each reading's recorded offset.
	Timezone string `yaml:"timezone,omitempty" json:"timezone,omitempty" env:"GLUCOSE_TIMEZONE"`
}

// ConversionData holds the raw-to-display unit conversion
type ConversionData struct {
	Divisor     float64 `yaml:"divisor" json:"divisor" env:"GLUCOSE_CONVERSION_DIVISOR" env-default:"18.0"`
	RawUnit     string  `yaml:"raw_unit" json:"raw_unit" env:"GLUCOSE_RAW_UNIT" env-default:"mg/dL"`
	DisplayUnit string  `yaml:"display_unit" json:"display_unit" env:"GLUCOSE_DISPLAY_UNIT" env-default:"mmol/L"`
}

// WindowData holds the trailing window length
type WindowData struct {
	Days int `yaml:"days" json:"days" env:"GLUCOSE_WINDOW_DAYS" env-default:"7"`
}

// ThresholdData holds the zone boundaries, in display units
type ThresholdData struct {
	Low     float64 `yaml:"low" json:"low" env:"GLUCOSE_LOW" env-default:"3.9"`
	High    float64 `yaml:"high" json:"high" env:"GLUCOSE_HIGH" env-default:"10.0"`
	Ceiling float64 `yaml:"ceiling" json:"ceiling" env:"GLUCOSE_CEILING" env-default:"20.0"`
}

// OutputData controls where the report lands
type OutputData struct {
	Dir     string `yaml:"dir" json:"dir" env:"GLUCOSE_OUTPUT_DIR" env-default:"."`
	DPI     int    `yaml:"dpi" json:"dpi" env:"GLUCOSE_DPI" env-default:"150"`
	Summary string `yaml:"summary,omitempty" json:"summary,omitempty" env:"GLUCOSE_SUMMARY"`
}

// HistoryData configures the optional SQLite run history
type HistoryData struct {
	Path string `yaml:"path,omitempty" json:"path,omitempty" env:"GLUCOSE_HISTORY"`
}

// LoggingData configures internal/log
type LoggingData struct {
	Format string `yaml:"format" json:"format" env:"GLUCOSE_LOG_FORMAT" env-default:"console"`
	Debug  bool   `yaml:"debug" json:"debug" env:"GLUCOSE_DEBUG"`
}

// Validate checks that all configuration parameters are usable
func (c *ConfigData) Validate() error {
	if d := c.Conversion.Divisor; math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return fmt.Errorf("conversion.divisor must be a positive number, got %v", d)
	}

	if c.Window.Days < 1 {
		return fmt.Errorf("window.days must be at least 1, got %d", c.Window.Days)
	}

	t := c.Thresholds
	if !(t.Low < t.High) {
		return fmt.Errorf("thresholds.low (%v) must be below thresholds.high (%v)", t.Low, t.High)
	}
	if t.Ceiling < t.High {
		return fmt.Errorf("thresholds.ceiling (%v) must not be below thresholds.high (%v)", t.Ceiling, t.High)
	}

	if c.Output.DPI < 30 || c.Output.DPI > 600 {
		return fmt.Errorf("output.dpi must be between 30 and 600, got %d", c.Output.DPI)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "json", "logfmt":
	default:
		return fmt.Errorf("logging.format must be 'console', 'json', or 'logfmt', got '%s'", c.Logging.Format)
	}

	if _, err := c.Input.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves Input.Timezone. It returns nil when no zone is configured.
func (i InputData) Location() (*time.Location, error) {
	if i.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(i.Timezone)
	if err != nil {
		return nil, fmt.Errorf("input.timezone: %w", err)
	}
	return loc, nil
}

// Zones converts the configured thresholds for the aggregator and renderer
func (t ThresholdData) Zones() types.Thresholds {
	return types.Thresholds{Low: t.Low, High: t.High, Ceiling: t.Ceiling}
}
