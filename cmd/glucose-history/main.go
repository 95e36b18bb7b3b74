package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/chrissnell/glucosereport/internal/constants"
	"github.com/chrissnell/glucosereport/internal/history"
	"github.com/chrissnell/glucosereport/internal/log"
	"github.com/chrissnell/glucosereport/pkg/migrate"
	"github.com/chrissnell/glucosereport/pkg/summaryformat"
)

func main() {
	var (
		dbPath      = flag.String("db", os.Getenv("GLUCOSE_HISTORY"), "Report history database (default: $GLUCOSE_HISTORY)")
		command     = flag.String("command", "list", "Command: list, show, status, up, down, to, force")
		limit       = flag.Int("limit", 10, "Number of reports shown by list")
		id          = flag.String("id", "", "Report id for show")
		target      = flag.Int("target", -1, "Target schema version for down, to and force (to accepts -1 for latest)")
		format      = flag.String("format", "", "Print list/show output as json or msgpack instead of a table")
		debug       = flag.Bool("debug", false, "Turn on debugging output")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("glucose-history %s\n", constants.Version)
		return
	}

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		flag.Usage()
		os.Exit(2)
	}

	if err := log.Init(*debug, log.FormatConsole); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx := context.Background()

	var err error
	switch *command {
	case "list", "show":
		if *command == "show" && *id == "" {
			fmt.Fprintf(os.Stderr, "Error: -id flag is required for show command\n")
			os.Exit(2)
		}
		var store *history.Store
		store, err = history.Open(ctx, *dbPath)
		if err != nil {
			log.Errorf("history failed: %v", err)
			os.Exit(1)
		}
		defer store.Close()

		if *command == "list" {
			err = list(ctx, os.Stdout, store, *limit, summaryformat.Format(*format))
		} else {
			err = show(ctx, os.Stdout, store, *id, summaryformat.Format(*format))
		}
	case "status", "up", "down", "to", "force":
		if (*command == "down" || *command == "force") && *target < 0 {
			fmt.Fprintf(os.Stderr, "Error: -target flag is required for %s command\n", *command)
			os.Exit(2)
		}
		// Schema commands work on the database as it is; Open would migrate it first
		var db *sql.DB
		db, err = history.OpenDB(ctx, *dbPath)
		if err != nil {
			log.Errorf("history failed: %v", err)
			os.Exit(1)
		}
		defer db.Close()

		err = schema(ctx, os.Stdout, history.NewMigrator(db), *command, *target)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Errorf("%s failed: %v", *command, err)
		os.Exit(1)
	}
}

// schema runs a schema maintenance command and reports the resulting status
func schema(ctx context.Context, w io.Writer, migrator *migrate.Migrator, command string, target int) error {
	var err error
	switch command {
	case "status":
	case "up":
		err = migrator.MigrateUp(ctx)
	case "down":
		err = migrator.MigrateDown(ctx, target)
	case "to":
		err = migrator.MigrateTo(ctx, target)
	case "force":
		err = migrator.SetVersion(ctx, target)
	default:
		return fmt.Errorf("unknown schema command %q", command)
	}
	if err != nil {
		return err
	}
	return status(ctx, w, migrator)
}

func list(ctx context.Context, w io.Writer, store *history.Store, limit int, format summaryformat.Format) error {
	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if format != "" {
		return summaryformat.NewFormatter().Write(w, format, entries)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGENERATED\tWINDOW\tREADINGS\tAVERAGE\tIN RANGE\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s to %s\t%d\t%.2f\t%.0f%%\t%s\n",
			e.ID,
			e.GeneratedAt.Local().Format("2006-01-02 15:04"),
			e.WindowStart.Format("2006-01-02"), e.WindowEnd.Format("2006-01-02"),
			e.Readings, e.WeeklyAvg, e.InRange.Target*100, e.Source)
	}
	return tw.Flush()
}

func show(ctx context.Context, w io.Writer, store *history.Store, id string, format summaryformat.Format) error {
	days, err := store.Daily(ctx, id)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		return fmt.Errorf("no report with id %s", id)
	}
	if format != "" {
		return summaryformat.NewFormatter().Write(w, format, days)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tMIN\tMAX\tMEAN\tREADINGS")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.1f\t%d\n", d.Date.Format("02/01/2006"), d.Min, d.Max, d.Mean, d.Count)
	}
	return tw.Flush()
}

func status(ctx context.Context, w io.Writer, migrator *migrate.Migrator) error {
	currentVersion, err := migrator.GetCurrentVersion(ctx)
	if err != nil {
		return err
	}

	pending, err := migrator.GetPendingMigrations(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Current version: %d\n", currentVersion)
	fmt.Fprintf(w, "Pending migrations: %d\n", len(pending))
	for _, mg := range pending {
		fmt.Fprintf(w, "  %d: %s\n", mg.Version, mg.Name)
	}
	return nil
}
