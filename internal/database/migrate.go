// Package database はデータベース接続とスキーマのマイグレーションを提供する。
package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion はマイグレーションの適用状態。
type SchemaVersion struct {
	Version uint
	Dirty   bool
	// Empty はまだ1つもマイグレーションが適用されていないことを示す。
	Empty bool
}

// NewMigrator は埋め込みマイグレーションを読み込むmigrateインスタンスを生成する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations は未適用のマイグレーションをすべて適用する。最新の場合は何もしない。
func RunMigrations(databaseURL string) error {
	return withMigrator(databaseURL, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	})
}

// RollbackMigrations は直近のマイグレーションをsteps件取り消す。
func RollbackMigrations(databaseURL string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}
	return withMigrator(databaseURL, func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		return nil
	})
}

// CurrentVersion は現在のスキーマバージョンを返す。
func CurrentVersion(databaseURL string) (SchemaVersion, error) {
	var v SchemaVersion
	err := withMigrator(databaseURL, func(m *migrate.Migrate) error {
		var err error
		v, err = readVersion(m)
		return err
	})
	return v, err
}

func withMigrator(databaseURL string, fn func(m *migrate.Migrate) error) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := fn(m); err != nil {
		return err
	}

	v, err := readVersion(m)
	if err != nil {
		return err
	}
	slog.Info("schema version",
		slog.Uint64("version", uint64(v.Version)),
		slog.Bool("dirty", v.Dirty),
		slog.Bool("empty", v.Empty),
	)
	return nil
}

func readVersion(m *migrate.Migrate) (SchemaVersion, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{Empty: true}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return SchemaVersion{Version: version, Dirty: dirty}, nil
}
