// Package report runs the load, convert, window, aggregate and render stages
// that turn a CSV export into a glucose report.
package report

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/chrissnell/glucosereport/internal/aggregate"
	"github.com/chrissnell/glucosereport/internal/constants"
	"github.com/chrissnell/glucosereport/internal/history"
	"github.com/chrissnell/glucosereport/internal/loader"
	"github.com/chrissnell/glucosereport/internal/log"
	"github.com/chrissnell/glucosereport/internal/render"
	"github.com/chrissnell/glucosereport/internal/types"
	"github.com/chrissnell/glucosereport/internal/units"
	"github.com/chrissnell/glucosereport/internal/window"
	"github.com/chrissnell/glucosereport/pkg/config"
	"github.com/chrissnell/glucosereport/pkg/summaryformat"
)

// Pipeline stages, as reported in a *types.StageError
const (
	StageConfig    = "config"
	StageLoad      = "load"
	StageConvert   = "convert"
	StageWindow    = "window"
	StageAggregate = "aggregate"
	StageRender    = "render"
	StageExport    = "export"
	StageHistory   = "history"
)

// Pipeline holds the configuration and collaborators for a run.  history may be nil.
type Pipeline struct {
	cfg       *config.ConfigData
	renderer  render.Renderer
	history   *history.Store
	formatter *summaryformat.Formatter
}

// Result describes a completed run
type Result struct {
	Source      string
	Output      string
	SummaryPath string
	HistoryID   string
	Summary     *types.Summary
	Skipped     []*types.MalformedRowError
}

// New creates a pipeline
func New(cfg *config.ConfigData, renderer render.Renderer, store *history.Store) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		renderer:  renderer,
		history:   store,
		formatter: summaryformat.NewFormatter(),
	}
}

func stageErr(stage string, err error) error {
	return &types.StageError{Stage: stage, Err: err}
}

// Summarize loads inputPath and computes every aggregate without writing anything.
func (p *Pipeline) Summarize(inputPath string) (*types.Summary, []*types.MalformedRowError, error) {
	loc, err := p.cfg.Input.Location()
	if err != nil {
		return nil, nil, stageErr(StageConfig, err)
	}

	loaded, err := loader.Load(inputPath, loader.Options{
		TimeColumns:  p.cfg.Input.TimeColumns,
		ValueColumns: p.cfg.Input.ValueColumns,
		Location:     loc,
	})
	if err != nil {
		return nil, nil, stageErr(StageLoad, err)
	}
	if n := len(loaded.Skipped); n > 0 {
		log.Warnf("Removed %d invalid row(s) of %d (e.g. line %d: %v)", n, loaded.Rows, loaded.Skipped[0].Line, loaded.Skipped[0].Err)
	}
	log.Debugw("loaded readings", "time_column", loaded.TimeColumn, "value_column", loaded.ValueColumn, "readings", len(loaded.Readings))

	conv, err := units.New(p.cfg.Conversion.Divisor, p.cfg.Conversion.RawUnit, p.cfg.Conversion.DisplayUnit)
	if err != nil {
		return nil, nil, stageErr(StageConvert, err)
	}
	samples := conv.ConvertAll(loaded.Readings, loc)

	w, err := window.Select(samples, p.cfg.Window.Days)
	if err != nil {
		return nil, nil, stageErr(StageWindow, err)
	}
	log.Infof("Analysis period: %s to %s (%d readings)",
		w.Start.Format("2006-01-02 15:04"), w.End.Format("2006-01-02 15:04"), len(w.Samples))

	sum := aggregate.Summarize(w, p.cfg.Thresholds.Zones())
	sum.Source = filepath.Base(inputPath)
	sum.DisplayUnit = conv.DisplayUnit
	sum.Skipped = len(loaded.Skipped)

	return &sum, loaded.Skipped, nil
}

// Run executes the full pipeline for inputPath. Every fatal error is a *types.StageError.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*Result, error) {
	log.Infof("Processing file: %s", inputPath)

	sum, skipped, err := p.Summarize(inputPath)
	if err != nil {
		return nil, err
	}
	log.Infof("Weekly average: %.2f %s", sum.WeeklyAvg, sum.DisplayUnit)
	log.Debugw("variability", "std_dev", sum.StdDev, "cv", sum.CV,
		"tir_low", sum.InRange.Low, "tir_target", sum.InRange.Target, "tir_high", sum.InRange.High)

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageRender, err)
	}

	res := &Result{
		Source:  inputPath,
		Output:  filepath.Join(p.cfg.Output.Dir, OutputName(sum)),
		Summary: sum,
		Skipped: skipped,
	}

	if err := p.renderer.Render(sum, res.Output); err != nil {
		return nil, stageErr(StageRender, err)
	}
	log.Infof("Report generated successfully: %s", res.Output)

	if p.cfg.Output.Summary != "" {
		if err := p.formatter.WriteFile(p.cfg.Output.Summary, sum); err != nil {
			return nil, stageErr(StageExport, err)
		}
		res.SummaryPath = p.cfg.Output.Summary
		log.Infof("Summary written: %s", res.SummaryPath)
	}

	if p.history != nil {
		id, err := p.history.Record(ctx, sum, res.Output)
		if err != nil {
			return nil, stageErr(StageHistory, err)
		}
		res.HistoryID = id
		log.Debugw("recorded report", "id", id)
	}

	return res, nil
}

// OutputName is the report file name for a summary:
// Glucose_Report_<first day>_to_<last day>.png with dates as DD-MM-YYYY.
func OutputName(s *types.Summary) string {
	return fmt.Sprintf("%s%s_to_%s.png", constants.OutputPrefix,
		s.FirstDate.Format(constants.OutputDateLayout),
		s.LastDate.Format(constants.OutputDateLayout))
}
