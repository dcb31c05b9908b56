package migrate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

const versionLayout = "20060102150405"

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

	migrationTemplate = template.Must(template.New("migration").Parse(`-- +goose Up
-- +goose StatementBegin
-- shipcalc {{.Version}}: {{.Name}}
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback {{.Name}}
-- +goose StatementEnd
`))
)

// CreateSQLMigration writes an empty goose migration to
// <dir>/<YYYYMMDDHHMMSS>_<name>.sql. The version is bumped past the newest
// existing migration so files created in the same second still sort.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version, err := nextVersion(dir, now)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := migrationTemplate.Execute(&buf, struct{ Version, Name string }{version, safe}); err != nil {
		return "", fmt.Errorf("render migration: %w", err)
	}
	if err := validateBody(safe, buf.String()); err != nil {
		return "", err
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, safe))
	f, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", fullpath, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

// nextVersion returns now as a version, or one second past the newest
// version already in dir when that is not earlier.
func nextVersion(dir string, now time.Time) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read dir %q: %w", dir, err)
	}
	candidate := now.UTC().Truncate(time.Second)
	for _, e := range entries {
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		existing, err := time.Parse(versionLayout, m[1])
		if err != nil {
			return "", fmt.Errorf("parse version %q: %w", m[1], err)
		}
		if !existing.Before(candidate) {
			candidate = existing.Add(time.Second)
		}
	}
	return candidate.Format(versionLayout), nil
}
