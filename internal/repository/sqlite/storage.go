// Package sqlite хранилище задач и категорий поверх mattn/go-sqlite3.
// Время хранится текстом фиксированной ширины в UTC (query.SQLiteTimeLayout).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/repository/query"

	"go.uber.org/zap"
)

const defaultSlowQuery = 100 * time.Millisecond

type Storage struct {
	db        *sql.DB
	slowQuery time.Duration
}

// New принимает уже открытую и смигрированную базу (см. database.OpenSQLite)
func New(db *sql.DB, slowQuery time.Duration) *Storage {
	if slowQuery <= 0 {
		slowQuery = defaultSlowQuery
	}
	return &Storage{db: db, slowQuery: slowQuery}
}

func (s *Storage) Tasks() *TaskStorage {
	return &TaskStorage{s}
}

func (s *Storage) Categories() *CategoryStorage {
	return &CategoryStorage{s}
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие базы SQLite")
	return s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) observe(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > s.slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.String("op", op), zap.Duration("ms", elapsed))
	}
}

// inTx выполняет fn в транзакции и откатывает её при ошибке
func (s *Storage) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return query.SQLite.Time(t).(string)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(query.SQLiteTimeLayout, s)
	if err == nil {
		return t, nil
	}
	// записи, сделанные не через этот пакет
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("разбор времени %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
