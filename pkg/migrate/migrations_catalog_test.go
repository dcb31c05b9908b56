package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/shipcalc-backend/pkg/config"
	"github.com/angelmondragon/shipcalc-backend/pkg/migrate"
)

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"tags TEXT[] NOT NULL",
		"CREATE TABLE IF NOT EXISTS product_variants",
		"REFERENCES products(id) ON DELETE CASCADE",
		"CREATE INDEX IF NOT EXISTS idx_product_variants_product_id",
		"DROP TABLE IF EXISTS product_variants",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestCreateSQLMigrationProducesValidFile(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Variant SKU!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_variant_sku.sql") {
		t.Fatalf("unexpected filename %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("validate created migration: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up"), 0o644); err != nil {
		t.Fatalf("write bad migration: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to be rejected")
	}
}

func TestDialect(t *testing.T) {
	if got := migrate.Dialect(config.DBConfig{Driver: "sqlite"}); got != "sqlite3" {
		t.Fatalf("expected sqlite3, got %s", got)
	}
	if got := migrate.Dialect(config.DBConfig{Driver: "postgres"}); got != "postgres" {
		t.Fatalf("expected postgres, got %s", got)
	}
}
