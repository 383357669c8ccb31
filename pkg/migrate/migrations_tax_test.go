package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTaxOverridesMigrationContainsPartialIndexes(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_tax_overrides_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no tax overrides migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS tax_overrides",
		"rate_bps INTEGER NOT NULL CHECK (rate_bps >= 0 AND rate_bps <= 10000)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_tax_overrides_tenant",
		"WHERE location_id IS NULL AND pos_instance_id IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_tax_overrides_location",
		"WHERE location_id IS NOT NULL AND pos_instance_id IS NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_tax_overrides_pos",
		"WHERE pos_instance_id IS NOT NULL",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
