package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chrissnell/glucosereport/internal/history"
	"github.com/chrissnell/glucosereport/internal/types"
	"github.com/chrissnell/glucosereport/pkg/summaryformat"
)

func seed(t *testing.T) (*history.Store, string) {
	t.Helper()
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	day := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	id, err := store.Record(ctx, &types.Summary{
		Source:      "export.csv",
		WindowStart: day,
		WindowEnd:   day.Add(30 * time.Hour),
		Readings:    4,
		WeeklyAvg:   6.25,
		InRange:     types.TimeInRange{Target: 0.75, High: 0.25},
		Daily: []types.DailySummary{
			{Date: day, Min: 5, Max: 11, Mean: 7, Count: 2},
			{Date: day.AddDate(0, 0, 1), Min: 5, Max: 6, Mean: 5.5, Count: 2},
		},
	}, "Glucose_Report_08-11-2025_to_09-11-2025.png")
	if err != nil {
		t.Fatal(err)
	}
	return store, id
}

func TestList(t *testing.T) {
	store, id := seed(t)

	var buf bytes.Buffer
	if err := list(context.Background(), &buf, store, 10, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", id, "2025-11-08 to 2025-11-09", "6.25", "75%", "export.csv"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := list(context.Background(), &buf, store, 10, summaryformat.FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestShow(t *testing.T) {
	store, id := seed(t)

	var buf bytes.Buffer
	if err := show(context.Background(), &buf, store, id, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "08/11/2025") || !strings.Contains(buf.String(), "11.0") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	if err := show(context.Background(), &buf, store, "missing", ""); err == nil {
		t.Errorf("expected error for unknown id")
	}
}

func TestStatus(t *testing.T) {
	store, _ := seed(t)

	var buf bytes.Buffer
	if err := status(context.Background(), &buf, history.NewMigrator(store.DB())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Current version: 2") || !strings.Contains(buf.String(), "Pending migrations: 0") {
		t.Errorf("unexpected status:\n%s", buf.String())
	}
}

func TestSchemaCommands(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := history.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	run := func(command string, target int) string {
		t.Helper()
		db, err := history.OpenDB(ctx, path)
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()

		var buf bytes.Buffer
		if err := schema(ctx, &buf, history.NewMigrator(db), command, target); err != nil {
			t.Fatalf("%s: unexpected error: %v", command, err)
		}
		return buf.String()
	}

	steps := []struct {
		command string
		target  int
		want    []string
	}{
		{"status", -1, []string{"Current version: 2", "Pending migrations: 0"}},
		{"down", 1, []string{"Current version: 1", "Pending migrations: 1", "2: create daily summaries"}},
		// a later invocation still sees the rolled back schema
		{"status", -1, []string{"Current version: 1", "Pending migrations: 1"}},
		{"up", -1, []string{"Current version: 2", "Pending migrations: 0"}},
		{"to", 0, []string{"Current version: 0", "Pending migrations: 2"}},
		{"to", -1, []string{"Current version: 2", "Pending migrations: 0"}},
		{"force", 1, []string{"Current version: 1", "Pending migrations: 1"}},
		{"force", 2, []string{"Current version: 2", "Pending migrations: 0"}},
	}

	for _, step := range steps {
		out := run(step.command, step.target)
		for _, want := range step.want {
			if !strings.Contains(out, want) {
				t.Errorf("%s %d: expected %q in output:\n%s", step.command, step.target, want, out)
			}
		}
	}

	db, err := history.OpenDB(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := schema(ctx, io.Discard, history.NewMigrator(db), "sideways", 0); err == nil {
		t.Errorf("expected error for unknown schema command")
	}
}
