package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"001_create_things.up.sql":   {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY);")},
		"001_create_things.down.sql": {Data: []byte("DROP TABLE things;")},
		"002_add_name.up.sql":        {Data: []byte("ALTER TABLE things ADD COLUMN name TEXT;")},
		"002_add_name.down.sql":      {Data: []byte("ALTER TABLE things DROP COLUMN name;")},
		"003_create_others.up.sql":   {Data: []byte("CREATE TABLE others (id INTEGER PRIMARY KEY);")},
		"003_create_others.down.sql": {Data: []byte("DROP TABLE others;")},
		"README.md":                  {Data: []byte("not a migration")},
		"nested/004_nested.up.sql":   {Data: []byte("CREATE TABLE nested (id INTEGER);")},
		"nested/004_nested.down.sql": {Data: []byte("DROP TABLE nested;")},
	}
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n == 1
}

func TestGetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testFS(), "").GetMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 4 {
		t.Fatalf("expected 4 migrations, got %d", len(migrations))
	}
	for i, mg := range migrations {
		if mg.Version != i+1 {
			t.Errorf("expected version %d at %d, got %d", i+1, i, mg.Version)
		}
		if mg.Up == "" || mg.Down == "" {
			t.Errorf("migration %d missing up or down SQL", mg.Version)
		}
	}
	if migrations[1].Name != "add name" {
		t.Errorf("expected name 'add name', got %q", migrations[1].Name)
	}
}

func TestMigrateUpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testFS(), "test_migrations"))

	pending, err := m.GetPendingMigrations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 4 {
		t.Errorf("expected 4 pending migrations, got %d", len(pending))
	}

	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate up failed: %v", err)
	}
	if v, _ := m.GetCurrentVersion(ctx); v != 4 {
		t.Errorf("expected version 4, got %d", v)
	}
	for _, name := range []string{"things", "others", "nested"} {
		if !tableExists(t, db, name) {
			t.Errorf("expected table %s", name)
		}
	}

	// Running again is a no-op
	if err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	if err := m.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if v, _ := m.GetCurrentVersion(ctx); v != 1 {
		t.Errorf("expected version 1, got %d", v)
	}
	if !tableExists(t, db, "things") || tableExists(t, db, "others") || tableExists(t, db, "nested") {
		t.Errorf("unexpected tables after rollback")
	}

	if err := m.MigrateTo(ctx, 3); err != nil {
		t.Fatalf("migrate to 3 failed: %v", err)
	}
	if v, _ := m.GetCurrentVersion(ctx); v != 3 {
		t.Errorf("expected version 3, got %d", v)
	}

	if err := m.MigrateDown(ctx, 3); err == nil {
		t.Errorf("expected error migrating down to the current version")
	}

	if err := m.MigrateTo(ctx, 0); err != nil {
		t.Fatalf("migrate to 0 failed: %v", err)
	}
	if v, _ := m.GetCurrentVersion(ctx); v != 0 {
		t.Errorf("expected version 0, got %d", v)
	}
	if tableExists(t, db, "things") {
		t.Errorf("expected every table dropped")
	}
}

func TestMigrateFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	fsys := fstest.MapFS{
		"001_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"002_broken.up.sql": {Data: []byte("CREATE TABLE broken (id INTEGER); THIS IS NOT SQL;")},
	}
	m := NewMigrator(db, NewFSProvider(fsys, ""))

	if err := m.MigrateUp(ctx); err == nil {
		t.Fatal("expected migration failure")
	}
	if v, _ := m.GetCurrentVersion(ctx); v != 1 {
		t.Errorf("expected version 1 after failure, got %d", v)
	}
	if tableExists(t, db, "broken") {
		t.Errorf("failed migration should not leave its table behind")
	}

	if err := m.MigrateDown(ctx, 0); err == nil {
		t.Errorf("expected error for migration without down SQL")
	}
}
