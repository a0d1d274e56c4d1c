package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/repository/migrations"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies numbered NNN_name.sql files in order and tracks the
// applied version in schema_version.
type Migrator struct {
	db  *sqlx.DB
	fs  fs.FS
	log *zap.Logger
}

func NewMigrator(db *sqlx.DB, migrationFS fs.FS, log *zap.Logger) *Migrator {
	return &Migrator{db: db, fs: migrationFS, log: logger.OrNop(log)}
}

// DialectMigrations returns the embedded migrations for a driver name.
func DialectMigrations(driver string) (fs.FS, error) {
	dir := "postgres"
	if dialectOf(driver) == dialectSQLite {
		dir = "sqlite"
	}
	return fs.Sub(migrations.FS, dir)
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	return err
}

func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var version int
	err := m.db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

func (m *Migrator) Read() ([]Migration, error) {
	files, err := fs.ReadDir(m.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var list []Migration
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		parts := strings.SplitN(file.Name(), "_", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", file.Name())
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil || version < 1 {
			return nil, fmt.Errorf("invalid version number in filename %s", file.Name())
		}

		content, err := fs.ReadFile(m.fs, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		list = append(list, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Version < list[j].Version
	})

	for i := 1; i < len(list); i++ {
		if list[i].Version == list[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", list[i].Version)
		}
	}
	return list, nil
}

// Apply runs every pending migration, each in its own transaction, and
// returns how many were applied.
func (m *Migrator) Apply(ctx context.Context) (int, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}

	list, err := m.Read()
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}

	latest := list[len(list)-1].Version
	if current > latest {
		return 0, fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}

	applied := 0
	for _, mig := range list {
		if mig.Version <= current {
			continue
		}

		m.log.Info("applying_migration", zap.Int("version", mig.Version), zap.String("name", mig.Name))

		tx, err := m.db.BeginTxx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("failed to begin transaction for migration %d: %w", mig.Version, err)
		}
		if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to clear schema version: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), mig.Version); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to set schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %d: %w", mig.Version, err)
		}
		applied++
	}

	if applied > 0 {
		m.log.Info("migrations_applied", zap.Int("count", applied), zap.Int("version", latest))
	}
	return applied, nil
}
