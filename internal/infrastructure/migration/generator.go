package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

var (
	migrationFileRe = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)
	migrationNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Generator creates new goose script pairs, one per supported dialect, under
// a scripts directory laid out like the embedded one.
type Generator struct {
	scriptsPath string
	logger      logger.Interface
}

// NewGenerator creates a new migration generator
func NewGenerator(scriptsPath string) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      logger.NewLogger().With("component", "migration.generator"),
	}
}

// CreateMigration writes the next sequential script for every dialect and
// returns the created paths.
func (g *Generator) CreateMigration(name string) ([]string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !migrationNameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid migration name %q: use lowercase letters, digits and underscores", name)
	}

	g.logger.Infow("creating new migration", "name", name)

	var created []string
	for _, dialect := range []string{"sqlite", "mysql"} {
		dir := filepath.Join(g.scriptsPath, dialect)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return created, fmt.Errorf("failed to create scripts directory: %w", err)
		}

		next, err := nextVersion(dir)
		if err != nil {
			return created, err
		}

		filePath := filepath.Join(dir, fmt.Sprintf("%05d_%s.sql", next, name))
		if err := os.WriteFile(filePath, []byte(migrationTemplate(name)), 0644); err != nil {
			return created, fmt.Errorf("failed to write migration file: %w", err)
		}
		created = append(created, filePath)
	}

	g.logger.Infow("migration files created successfully", "files", created)
	return created, nil
}

func nextVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read scripts directory: %w", err)
	}

	var versions []int
	for _, e := range entries {
		m := migrationFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	if len(versions) == 0 {
		return 1, nil
	}
	sort.Ints(versions)
	return versions[len(versions)-1] + 1, nil
}

func migrationTemplate(name string) string {
	return fmt.Sprintf(`-- Migration: %s

-- +goose Up

-- +goose Down
`, name)
}
