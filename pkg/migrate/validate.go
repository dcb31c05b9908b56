package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

const (
	markerUp             = "-- +goose Up"
	markerDown           = "-- +goose Down"
	markerStatementBegin = "-- +goose StatementBegin"
	markerStatementEnd   = "-- +goose StatementEnd"
)

var (
	sqlFileRe       = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	productsTableRe = regexp.MustCompile(`(?is)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?products\s*\((.*?)\n\);`)
	tagsColumnRe    = regexp.MustCompile(`(?im)^\s*tags\s+TEXT\[\]\s+NOT\s+NULL`)
	sqliteOnlyRe    = regexp.MustCompile(`(?i)\bAUTOINCREMENT\b|\bPRAGMA\b|\bWITHOUT\s+ROWID\b`)
)

// migrationRule inspects a single migration body.
type migrationRule struct {
	name  string
	check func(body string) error
}

// catalogRules keep migrations runnable through goose and aligned with the
// catalog reader, which scans products.tags as a postgres text array.
var catalogRules = []migrationRule{
	{name: "goose markers", check: checkGooseMarkers},
	{name: "statement blocks", check: checkStatementBlocks},
	{name: "products tags column", check: checkProductsTags},
	{name: "postgres dialect", check: checkPostgresDialect},
}

// ValidateDir checks migration filenames, version uniqueness and the catalog
// rules for every .sql file in dir. All problems are reported together.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var errs error
	seen := map[string]string{}
	for _, name := range names {
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if prev, ok := seen[m[1]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
			continue
		}
		seen[m[1]] = name

		full := filepath.Join(dir, name)
		b, err := os.ReadFile(full)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read file %q: %w", full, err))
			continue
		}
		errs = multierr.Append(errs, validateBody(name, string(b)))
	}
	return errs
}

func validateBody(name, body string) error {
	var errs error
	for _, rule := range catalogRules {
		if err := rule.check(body); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("migration %q: %s: %w", name, rule.name, err))
		}
	}
	return errs
}

func checkGooseMarkers(body string) error {
	up := strings.Index(body, markerUp)
	down := strings.Index(body, markerDown)
	switch {
	case up < 0:
		return fmt.Errorf("missing %q", markerUp)
	case down < 0:
		return fmt.Errorf("missing %q", markerDown)
	case down < up:
		return fmt.Errorf("%q must precede %q", markerUp, markerDown)
	}
	return nil
}

func checkStatementBlocks(body string) error {
	depth := 0
	for _, line := range strings.Split(body, "\n") {
		switch strings.TrimSpace(line) {
		case markerStatementBegin:
			depth++
			if depth > 1 {
				return fmt.Errorf("nested %q", markerStatementBegin)
			}
		case markerStatementEnd:
			depth--
			if depth < 0 {
				return fmt.Errorf("%q without matching begin", markerStatementEnd)
			}
		case markerUp, markerDown:
			if depth != 0 {
				return fmt.Errorf("section marker inside an open statement block")
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unterminated %q", markerStatementBegin)
	}
	return nil
}

func checkProductsTags(body string) error {
	m := productsTableRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}
	if !tagsColumnRe.MatchString(m[1]) {
		return fmt.Errorf("products.tags must be declared TEXT[] NOT NULL")
	}
	return nil
}

func checkPostgresDialect(body string) error {
	if kw := sqliteOnlyRe.FindString(body); kw != "" {
		return fmt.Errorf("sqlite-only syntax %q", kw)
	}
	return nil
}
