package db_test

import (
	"context"
	"testing"

	dbfs "github.com/azeasycpa/askcpa/db"
	dbpkg "github.com/azeasycpa/askcpa/internal/db"
)

func TestMigrate_AppliesSchema(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "file:migrate1?mode=memory&cache=shared", nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer d.Close()

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	for _, table := range []string{"questions", "email_usage", "jobs", "dead_letter_jobs", "schema_migrations"} {
		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name = ?`, table)
		if err := row.Scan(&count); err != nil {
			t.Fatalf("scan table check for %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "file:migrate2?mode=memory&cache=shared", nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer d.Close()

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("first Migrate returned error: %v", err)
	}
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}

	var applied int
	row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`)
	if err := row.Scan(&applied); err != nil {
		t.Fatalf("scan applied count: %v", err)
	}
	if applied == 0 {
		t.Fatalf("expected recorded migrations")
	}
}
