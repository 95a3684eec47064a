package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName returns the on-disk name of one direction of a migration.
// Format: {version}_{name}.{up|down}.sql
func FileName(version, name, direction string) string {
	return version + "_" + name + "." + direction + ".sql"
}

// Load reads migrations from the root of fsys. Files follow FileName;
// a migration is returned only when both its up and down files exist.
// A missing directory yields no migrations.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	type pair struct {
		name     string
		up, down string
	}
	files := make(map[string]*pair)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		version, rest, ok := strings.Cut(fileName, "_")
		if !ok {
			continue
		}

		var name string
		var up bool
		if before, ok := strings.CutSuffix(rest, ".up.sql"); ok {
			name, up = before, true
		} else if before, ok := strings.CutSuffix(rest, ".down.sql"); ok {
			name = before
		} else {
			continue
		}

		p, exists := files[version]
		if !exists {
			p = &pair{name: name}
			files[version] = p
		}
		if up {
			p.up = fileName
		} else {
			p.down = fileName
		}
	}

	var migrations []Migration
	for version, p := range files {
		if p.up == "" || p.down == "" {
			continue
		}

		upSQL, err := fs.ReadFile(fsys, p.up)
		if err != nil {
			return nil, fmt.Errorf("failed to read up migration: %w", err)
		}
		downSQL, err := fs.ReadFile(fsys, p.down)
		if err != nil {
			return nil, fmt.Errorf("failed to read down migration: %w", err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    p.name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
	}

	return Sort(migrations)
}

// WriteFiles writes the up and down files of m into dir.
func WriteFiles(dir string, m Migration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create migrations directory: %w", err)
	}

	for direction, body := range map[string]string{"up": m.UpSQL, "down": m.DownSQL} {
		path := filepath.Join(dir, FileName(m.Version, m.Name, direction))
		if err := os.WriteFile(path, []byte(body+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
