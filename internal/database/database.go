// Package database открывает хранилище, накатывает схему и заполняет категории по умолчанию.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/repository/query"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteDriver это mattn sqlite3 с функцией go_lower, через неё диалект сравнивает строки без учёта регистра
const SQLiteDriver = "sqlite3_pluto"

func init() {
	sql.Register(SQLiteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("go_lower", lower, true)
		},
	})
}

// lower складывает регистр по Unicode, NULL остаётся NULL
func lower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		if s == nil {
			return nil
		}
		return strings.ToLower(string(s))
	default:
		return v
	}
}

// OpenSQLite открывает файл базы, создавая каталог при необходимости.
// Соединение одно: хранилище рассчитано на одного писателя.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("создание каталога базы: %w", err)
		}
	}

	db, err := sql.Open(SQLiteDriver, "file:"+path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("включение внешних ключей: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Database: Открыта база SQLite", zap.String("path", path))
	return db, nil
}

// OpenPostgres нужен для миграций и сидов, репозитории работают через pgxpool
func OpenPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("открытие postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Database: Открыто соединение PostgreSQL для миграций")
	return db, nil
}

// Init накатывает схему и сиды, повторный вызов безопасен
func Init(ctx context.Context, db *sql.DB, d query.Dialect) error {
	if err := Migrate(db, d); err != nil {
		return err
	}
	return Seed(ctx, db, d)
}
