package database

import (
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"up migration", "20260301_000000_initial_schema.up.sql", "20260301_000000", true, true},
		{"down migration", "20260301_000000_initial_schema.down.sql", "20260301_000000", false, true},
		{"not sql", "notes.txt", "", false, false},
		{"no direction", "20260301_000000_initial_schema.sql", "", false, false},
		{"no version", "schema.up.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion || isUp != tt.wantUp {
				t.Errorf("got (%q, %v), want (%q, %v)", version, isUp, tt.wantVersion, tt.wantUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	if got := extractMigrationName("20260301_000000_initial_schema.up.sql"); got != "initial_schema" {
		t.Errorf("got %q, want initial_schema", got)
	}
}
