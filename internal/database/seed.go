package database

import (
	"context"
	"database/sql"
	"fmt"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/category"
	"plutoTodo/internal/repository/query"

	"go.uber.org/zap"
)

// в postgres у uuid нет MIN, поэтому сравниваем текстовое представление
func idText(d query.Dialect, column string) string {
	if d.Name == query.Postgres.Name {
		return column + "::text"
	}
	return column
}

// Seed убирает дубликаты категорий по имени (выживает наименьший id,
// задачи перевешиваются на него) и добавляет недостающие категории по умолчанию.
func Seed(ctx context.Context, db *sql.DB, d query.Dialect) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	survivors := fmt.Sprintf("SELECT MIN(%s) FROM categories GROUP BY name", idText(d, "id"))

	repoint := fmt.Sprintf(`UPDATE tasks
		SET category_id = (
			SELECT MIN(%[1]s) FROM categories c2
			WHERE c2.name = (SELECT c1.name FROM categories c1 WHERE c1.id = tasks.category_id)
		)%[2]s
		WHERE category_id IS NOT NULL AND %[3]s NOT IN (%[4]s)`,
		idText(d, "c2.id"), castBack(d), idText(d, "category_id"), survivors)
	if _, err := tx.ExecContext(ctx, repoint); err != nil {
		logger.Error("Database: Не удалось перевесить задачи с дубликатов категорий", err)
		return fmt.Errorf("перевешивание задач: %w", err)
	}

	dedupe := fmt.Sprintf("DELETE FROM categories WHERE %s NOT IN (%s)", idText(d, "id"), survivors)
	res, err := tx.ExecContext(ctx, dedupe)
	if err != nil {
		logger.Error("Database: Не удалось удалить дубликаты категорий", err)
		return fmt.Errorf("удаление дубликатов: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Warn("Database: Удалены дубликаты категорий", zap.Int64("count", n))
	}

	inserted := 0
	for _, def := range category.Defaults {
		var exists bool
		err := tx.QueryRowContext(ctx,
			d.Rebind("SELECT EXISTS(SELECT 1 FROM categories WHERE name = ?)"), def.Name,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("проверка категории %q: %w", def.Name, err)
		}
		if exists {
			continue
		}

		c := def.Category()
		_, err = tx.ExecContext(ctx,
			d.Rebind("INSERT INTO categories (id, name, color, icon, created_at) VALUES (?, ?, ?, ?, ?)"),
			c.ID, c.Name, c.Color, c.Icon, d.Time(c.CreatedAt),
		)
		if err != nil {
			logger.Error("Database: Не удалось добавить категорию", err, zap.String("name", def.Name))
			return fmt.Errorf("добавление категории %q: %w", def.Name, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация сидов: %w", err)
	}

	logger.Info("Database: Категории по умолчанию на месте", zap.Int("inserted", inserted))
	return nil
}

func castBack(d query.Dialect) string {
	if d.Name == query.Postgres.Name {
		return "::uuid"
	}
	return ""
}
