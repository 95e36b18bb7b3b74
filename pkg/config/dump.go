package config

import (
	"fmt"
	"io"

	"github.com/chrissnell/glucosereport/internal/constants"
	"gopkg.in/yaml.v3"
)

// Defaults returns a configuration holding every documented default.
func Defaults() *ConfigData {
	return &ConfigData{
		Input: InputData{Dir: "."},
		Conversion: ConversionData{
			Divisor:     constants.DefaultConversionDivisor,
			RawUnit:     constants.DefaultRawUnit,
			DisplayUnit: constants.DefaultDisplayUnit,
		},
		Window: WindowData{Days: constants.DefaultWindowDays},
		Thresholds: ThresholdData{
			Low:     constants.DefaultLowThreshold,
			High:    constants.DefaultHighThreshold,
			Ceiling: constants.DefaultZoneCeiling,
		},
		Output:  OutputData{Dir: ".", DPI: constants.DefaultDPI},
		Logging: LoggingData{Format: "console"},
	}
}

// Dump writes the configuration as YAML, in the same shape YAMLProvider reads.
func (c *ConfigData) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
