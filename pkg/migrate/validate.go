package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir validates migration filenames and goose headers in an on-disk directory.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	_, err := collectVersions(os.DirFS(dir), ".")
	return err
}

// ValidateEmbedded checks the compiled-in migrations: each dialect must be
// well formed and both dialects must carry the same set of versions.
func ValidateEmbedded() error {
	pg, err := collectVersions(embedded, path.Join(migrationsRoot, "postgres"))
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	lite, err := collectVersions(embedded, path.Join(migrationsRoot, "sqlite"))
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return compareVersions(pg, lite)
}

func collectVersions(fsys fs.FS, dir string) (map[string]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", name, err)
		}
		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
	}
	return seen, nil
}

func compareVersions(a, b map[string]string) error {
	var missing []string
	for v, name := range a {
		if _, ok := b[v]; !ok {
			missing = append(missing, "sqlite lacks "+name)
		}
	}
	for v, name := range b {
		if _, ok := a[v]; !ok {
			missing = append(missing, "postgres lacks "+name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("dialects out of sync: %s", strings.Join(missing, "; "))
	}
	return nil
}
