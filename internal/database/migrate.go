package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/repository/query"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate применяет встроенные миграции диалекта. ErrNoChange считается успехом.
// migrate.Close не вызывается: он закрыл бы переданный *sql.DB.
func Migrate(db *sql.DB, d query.Dialect) error {
	m, err := newMigrator(db, d)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Database: Не удалось применить миграции", err, zap.String("dialect", d.Name))
		return fmt.Errorf("применение миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("версия схемы: %w", err)
	}
	logger.Info("Database: Схема актуальна",
		zap.String("dialect", d.Name),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// Down откатывает все миграции
func Down(db *sql.DB, d query.Dialect) error {
	m, err := newMigrator(db, d)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Database: Не удалось откатить миграции", err, zap.String("dialect", d.Name))
		return fmt.Errorf("откат миграций: %w", err)
	}
	logger.Info("Database: Миграции откачены", zap.String("dialect", d.Name))
	return nil
}

func newMigrator(db *sql.DB, d query.Dialect) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		dir    string
		err    error
	)

	switch d.Name {
	case query.SQLite.Name:
		dir = "migrations/sqlite"
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case query.Postgres.Name:
		dir = "migrations/postgres"
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return nil, fmt.Errorf("неизвестный диалект %q", d.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("драйвер миграций: %w", err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.Name, driver)
	if err != nil {
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	return m, nil
}
