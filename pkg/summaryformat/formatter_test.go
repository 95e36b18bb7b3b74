package summaryformat

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/glucosereport/internal/types"
)

func testSummary() *types.Summary {
	day := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	return &types.Summary{
		Source:      "export.csv",
		DisplayUnit: "mmol/L",
		WindowStart: day,
		WindowEnd:   day.Add(10 * time.Hour),
		Days:        7,
		Readings:    2,
		Daily:       []types.DailySummary{{Date: day, Min: 9.11, Max: 10.39, Mean: 9.75, Count: 2}},
		WeeklyAvg:   9.75,
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"summary.json", FormatJSON},
		{"summary.msgpack", FormatMsgPack},
		{"summary.MP", FormatMsgPack},
		{"summary", FormatJSON},
		{"out/summary.txt", FormatJSON},
	}

	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q): expected %s, got %s", tt.path, tt.want, got)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter().Write(&buf, FormatJSON, testSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["weekly_average"] != 9.75 || got["window_days"] != 7.0 || got["display_unit"] != "mmol/L" {
		t.Errorf("unexpected fields %v", got)
	}
}

func TestWriteMsgPack(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter().Write(&buf, FormatMsgPack, testSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := msgpack.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid MessagePack: %v", err)
	}
	if got["weekly_average"] != 9.75 {
		t.Errorf("expected weekly_average keyed by its json tag, got %v", got)
	}
	if got["source"] != "export.csv" {
		t.Errorf("unexpected source %v", got["source"])
	}
}

func TestWriteUnsupported(t *testing.T) {
	if err := NewFormatter().Write(&bytes.Buffer{}, Format("xml"), testSummary()); err == nil {
		t.Errorf("expected error for unsupported format")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFormatter()

	jsonPath := filepath.Join(dir, "summary.json")
	if err := f.WriteFile(jsonPath, testSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var s types.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("invalid JSON file: %v", err)
	}
	if s.WeeklyAvg != 9.75 || len(s.Daily) != 1 || !s.Daily[0].Date.Equal(testSummary().Daily[0].Date) {
		t.Errorf("unexpected summary %+v", s)
	}

	mpPath := filepath.Join(dir, "summary.msgpack")
	if err := f.WriteFile(mpPath, testSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err = os.ReadFile(mpPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[0] == '{' {
		t.Errorf("expected MessagePack output, got %q", data)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := f.WriteFile(bad, map[string]any{"c": make(chan int)}); err == nil {
		t.Errorf("expected encode error")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed after a failed encode", bad)
	}

	if err := f.WriteFile(filepath.Join(dir, "missing", "s.json"), testSummary()); err == nil {
		t.Errorf("expected error for missing directory")
	}
}
