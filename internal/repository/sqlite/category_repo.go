package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/category"
	repo "plutoTodo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const categoryColumns = `id, name, color, icon, created_at`

type CategoryStorage struct {
	*Storage
}

func (s *CategoryStorage) Create(ctx context.Context, c *category.Category) error {
	start := time.Now()
	defer s.observe("category.create", start)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.Icon, formatTime(c.CreatedAt),
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить категорию", err, zap.String("name", c.Name))
		return fmt.Errorf("добавление категории: %w", err)
	}
	return nil
}

func (s *CategoryStorage) GetByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить категорию", err, zap.String("category_id", id.String()))
		return nil, fmt.Errorf("получение категории: %w", err)
	}
	return c, nil
}

func (s *CategoryStorage) List(ctx context.Context) ([]*category.Category, error) {
	start := time.Now()
	defer s.observe("category.list", start)

	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
	if err != nil {
		logger.Error("Repository: Не удалось получить категории", err)
		return nil, fmt.Errorf("получение категорий: %w", err)
	}
	defer rows.Close()

	categories := []*category.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("сканирование категории: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return categories, nil
}

func (s *CategoryStorage) Update(ctx context.Context, c *category.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ?`,
		c.Name, c.Color, c.Icon, c.ID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить категорию", err, zap.String("category_id", c.ID.String()))
		return fmt.Errorf("обновление категории: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *CategoryStorage) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить категорию", err, zap.String("category_id", id.String()))
		return fmt.Errorf("удаление категории: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func scanCategory(row rowScanner) (*category.Category, error) {
	var (
		c       category.Category
		created string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = t
	return &c, nil
}
