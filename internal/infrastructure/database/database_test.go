package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iothome/core/internal/infrastructure/database"
	_ "github.com/iothome/core/migrations"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("migrate run %d: %v", i, err)
		}
	}

	// Schema is in place: all three tables accept queries.
	for _, table := range []string{"devices", "sensors", "actuators"} {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			t.Errorf("querying %s: %v", table, err)
		}
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO sensors (device_code, name, sensor_type, created_at, updated_at)
		 VALUES ('nonexistent', 's', 'temperature', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	if err == nil {
		t.Error("expected foreign key violation, insert succeeded")
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("health check failed: %v", err)
	}
}
