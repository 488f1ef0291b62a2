package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	// Up is idempotent.
	if err := MigrateUp(db); err != nil {
		t.Fatalf("repeat migrate up failed: %v", err)
	}

	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	var tables int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'kv'`).Scan(&tables); err != nil {
		t.Fatalf("inspect schema: %v", err)
	}
	if tables != 0 {
		t.Fatalf("expected kv table dropped, found %d", tables)
	}

	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	kv, err := NewSQLiteKV(db)
	if err != nil {
		t.Fatalf("new kv: %v", err)
	}
	if err := kv.Set(t.Context(), "tasks", "[]"); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}
	got, ok, err := kv.Get(t.Context(), "tasks")
	if err != nil || !ok {
		t.Fatalf("get after roundtrip failed: ok=%v err=%v", ok, err)
	}
	if got != "[]" {
		t.Fatalf("unexpected value after roundtrip: %q", got)
	}
}
