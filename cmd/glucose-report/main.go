package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chrissnell/glucosereport/internal/constants"
	"github.com/chrissnell/glucosereport/internal/history"
	"github.com/chrissnell/glucosereport/internal/loader"
	"github.com/chrissnell/glucosereport/internal/log"
	"github.com/chrissnell/glucosereport/internal/render"
	"github.com/chrissnell/glucosereport/internal/report"
	"github.com/chrissnell/glucosereport/pkg/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgFile := flag.String("config", "", "Path to YAML configuration file (optional; GLUCOSE_* environment variables and defaults apply without one)")
	input := flag.String("input", "", "CSV export to analyze")
	dir := flag.String("dir", "", "Directory searched for the first *.csv file when -input is not given (default: current directory)")
	outputDir := flag.String("output-dir", "", "Directory the report image is written to")
	days := flag.Int("days", constants.DefaultWindowDays, "Length of the trailing window in calendar days")
	divisor := flag.Float64("divisor", constants.DefaultConversionDivisor, "Raw device value divided by this gives the display unit")
	low := flag.Float64("low", constants.DefaultLowThreshold, "Lower bound of the target zone, in display units")
	high := flag.Float64("high", constants.DefaultHighThreshold, "Upper bound of the target zone, in display units")
	dpi := flag.Int("dpi", constants.DefaultDPI, "Resolution of the report image")
	tz := flag.String("tz", "", "IANA time zone to bucket readings in (default: each reading's own offset)")
	summary := flag.String("summary", "", "Also write the aggregated summary here (.json, or .msgpack for MessagePack)")
	historyPath := flag.String("history", "", "SQLite database that records every generated report")
	logFormat := flag.String("log-format", "console", "Log format: console, json or logfmt")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	dumpConfig := flag.Bool("dump-config", false, "Print the effective configuration as YAML and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("glucose-report %s\n", constants.Version)
		return 0
	}

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glucose-report: %v\n", err)
		return 2
	}

	// Flags given explicitly on the command line win over the config file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input.Path = *input
		case "dir":
			cfg.Input.Dir = *dir
		case "output-dir":
			cfg.Output.Dir = *outputDir
		case "days":
			cfg.Window.Days = *days
		case "divisor":
			cfg.Conversion.Divisor = *divisor
		case "low":
			cfg.Thresholds.Low = *low
		case "high":
			cfg.Thresholds.High = *high
		case "dpi":
			cfg.Output.DPI = *dpi
		case "tz":
			cfg.Input.Timezone = *tz
		case "summary":
			cfg.Output.Summary = *summary
		case "history":
			cfg.History.Path = *historyPath
		case "log-format":
			cfg.Logging.Format = *logFormat
		case "debug":
			cfg.Logging.Debug = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "glucose-report: invalid configuration: %v\n", err)
		return 2
	}

	if *dumpConfig {
		if err := cfg.Dump(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "glucose-report: %v\n", err)
			return 1
		}
		return 0
	}

	// Set up logging
	if err := log.Init(cfg.Logging.Debug, cfg.Logging.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return 2
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputPath := cfg.Input.Path
	if inputPath == "" {
		inputPath, err = loader.Discover(cfg.Input.Dir)
		if err != nil {
			log.Errorf("input failed: %v", err)
			return 1
		}
	}

	var store *history.Store
	if cfg.History.Path != "" {
		store, err = history.Open(ctx, cfg.History.Path)
		if err != nil {
			log.Errorf("history failed: %v", err)
			return 1
		}
		defer store.Close()
	}

	pipeline := report.New(cfg, render.NewPNGRenderer(cfg.Output.DPI), store)
	if _, err := pipeline.Run(ctx, inputPath); err != nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	var provider config.ConfigProvider
	if cfgFile == "" {
		provider = config.NewEnvProvider()
	} else {
		filename, _ := filepath.Abs(cfgFile)
		provider = config.NewYAMLProvider(filename)
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading configuration. Run with -h for help: %w", err)
	}
	return cfgData, nil
}
