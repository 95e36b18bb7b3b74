// Package loader reads glucose meter CSV exports into readings.
package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/glucosereport/internal/log"
	"github.com/chrissnell/glucosereport/internal/types"
)

// Header patterns matched case-insensitively as substrings, in order.
var (
	DefaultTimeColumns  = []string{"glucose reading", "time"}
	DefaultValueColumns = []string{"measurement"}
)

// Accepted timestamp layouts, tried in order. Layouts without a zone are
// interpreted in Options.Location.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05.999999999 Z07:00",
	"2006-01-02 15:04:05.999999999 Z07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999-0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// Longest accepted line in bytes
const maxLineSize = 1 << 20

// Options controls header matching and timestamp interpretation.
type Options struct {
	TimeColumns  []string
	ValueColumns []string
	// Location applies to timestamps that carry no offset. nil means UTC.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if len(o.TimeColumns) == 0 {
		o.TimeColumns = DefaultTimeColumns
	}
	if len(o.ValueColumns) == 0 {
		o.ValueColumns = DefaultValueColumns
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// Result is the outcome of a successful load.
type Result struct {
	Path        string
	TimeColumn  string
	ValueColumn string
	Rows        int
	Readings    []types.Reading
	Skipped     []*types.MalformedRowError
}

// Load reads the whole file at path, closes it, then parses it.
func Load(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	res, err := Parse(bytes.NewReader(data), opts)
	if err != nil {
		var pe *types.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	res.Path = path
	return res, nil
}

// Parse reads a CSV export from r. Rows that cannot be parsed are skipped and
// reported in Result.Skipped; the returned readings are sorted by timestamp.
// Each physical line is one record, so a broken quote costs only its own row.
func Parse(r io.Reader, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var header []string
	line := 0
	for header == nil && scanner.Scan() {
		line++
		text := strings.TrimPrefix(scanner.Text(), "\ufeff")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields, err := splitRecord(text)
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		header = fields
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header == nil {
		return nil, &types.EmptyDatasetError{}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	timeIdx := matchColumn(header, opts.TimeColumns)
	valueIdx := matchColumn(header, opts.ValueColumns)

	var missing []string
	if timeIdx < 0 {
		missing = append(missing, "Time")
	}
	if valueIdx < 0 {
		missing = append(missing, "Measurement")
	}
	if len(missing) > 0 {
		return nil, &types.ParseError{Missing: missing, Header: header}
	}

	res := &Result{
		TimeColumn:  header[timeIdx],
		ValueColumn: header[valueIdx],
	}

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		record, err := splitRecord(text)
		if err != nil {
			res.Rows++
			rowErr := &types.MalformedRowError{Line: line, Value: text, Err: err}
			log.Debugw("skipping row", "line", line, "error", err)
			res.Skipped = append(res.Skipped, rowErr)
			continue
		}
		if isBlank(record) {
			continue
		}
		res.Rows++

		reading, rowErr := parseRow(record, line, timeIdx, valueIdx, res, opts.Location)
		if rowErr != nil {
			log.Debugw("skipping row", "line", rowErr.Line, "column", rowErr.Column, "value", rowErr.Value, "error", rowErr.Err)
			res.Skipped = append(res.Skipped, rowErr)
			continue
		}
		res.Readings = append(res.Readings, reading)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(res.Readings) == 0 {
		return nil, &types.EmptyDatasetError{Rows: res.Rows, Skipped: len(res.Skipped)}
	}

	sort.SliceStable(res.Readings, func(i, j int) bool {
		return res.Readings[i].Timestamp.Before(res.Readings[j].Timestamp)
	})

	return res, nil
}

// splitRecord parses a single CSV line into fields
func splitRecord(text string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	record, err := reader.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, pe.Err
		}
		return nil, err
	}
	return record, nil
}

func parseRow(record []string, line, timeIdx, valueIdx int, res *Result, loc *time.Location) (types.Reading, *types.MalformedRowError) {
	if timeIdx >= len(record) {
		return types.Reading{}, &types.MalformedRowError{Line: line, Column: res.TimeColumn, Err: errors.New("missing field")}
	}
	if valueIdx >= len(record) {
		return types.Reading{}, &types.MalformedRowError{Line: line, Column: res.ValueColumn, Err: errors.New("missing field")}
	}

	rawTime := strings.TrimSpace(record[timeIdx])
	ts, err := ParseTimestamp(rawTime, loc)
	if err != nil {
		return types.Reading{}, &types.MalformedRowError{Line: line, Column: res.TimeColumn, Value: rawTime, Err: err}
	}

	rawValue := strings.TrimSpace(record[valueIdx])
	value, err := ParseValue(rawValue)
	if err != nil {
		return types.Reading{}, &types.MalformedRowError{Line: line, Column: res.ValueColumn, Value: rawValue, Err: err}
	}

	return types.Reading{Timestamp: ts, Value: value, Line: line}, nil
}

// ParseTimestamp accepts ISO-8601-like timestamps with or without a UTC offset.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}

// ParseValue parses a measurement, rejecting text such as "Out of range" and non-finite numbers.
func ParseValue(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty measurement")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

func matchColumn(header []string, patterns []string) int {
	for _, p := range patterns {
		p = strings.ToLower(p)
		for i, h := range header {
			if strings.Contains(strings.ToLower(h), p) {
				return i
			}
		}
	}
	return -1
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
