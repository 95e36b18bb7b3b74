package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinels for errors.Is; each typed error below matches exactly one of them.
var (
	ErrNoInputFile  = errors.New("no input file")
	ErrParse        = errors.New("required columns missing")
	ErrMalformedRow = errors.New("malformed row")
	ErrEmptyDataset = errors.New("no usable readings")
	ErrEmptyWindow  = errors.New("no readings in window")
	ErrRender       = errors.New("render failed")
)

// NoInputFileError is returned when input discovery finds no CSV file.
type NoInputFileError struct {
	Dir string
}

func (e *NoInputFileError) Error() string {
	return fmt.Sprintf("no CSV file found in %s", e.Dir)
}

func (e *NoInputFileError) Is(target error) bool { return target == ErrNoInputFile }

// ParseError is returned when the header lacks a required column.
type ParseError struct {
	Path    string
	Missing []string
	Header  []string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("required column(s) %s not found in header [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Header, ", "))
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MalformedRowError describes a single data row that was skipped.
type MalformedRowError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("line %d: column %q: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// EmptyDatasetError is returned when no row of the input produced a reading.
type EmptyDatasetError struct {
	Rows    int
	Skipped int
}

func (e *EmptyDatasetError) Error() string {
	if e.Rows == 0 {
		return "input contains no data rows"
	}
	return fmt.Sprintf("none of %d data rows could be used (%d malformed)", e.Rows, e.Skipped)
}

func (e *EmptyDatasetError) Is(target error) bool { return target == ErrEmptyDataset }

// EmptyWindowError is returned when the trailing window selects nothing.
type EmptyWindowError struct {
	Start time.Time
	End   time.Time
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("no readings between %s and %s",
		e.Start.Format("2006-01-02 15:04"), e.End.Format("2006-01-02 15:04"))
}

func (e *EmptyWindowError) Is(target error) bool { return target == ErrEmptyWindow }

// RenderError wraps any failure to produce the output image.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRender }

// StageError attributes a fatal error to the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
