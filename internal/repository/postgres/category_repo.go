package postgres

import (
	"context"
	"errors"
	"fmt"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/category"
	repo "plutoTodo/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const categoryColumns = `id, name, color, icon, created_at`

type CategoryStorage struct {
	*Storage
}

func (s *CategoryStorage) Create(ctx context.Context, c *category.Category) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Color, c.Icon, c.CreatedAt,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить категорию", err, zap.String("name", c.Name))
		return fmt.Errorf("добавление категории: %w", err)
	}
	return nil
}

func (s *CategoryStorage) GetByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить категорию", err, zap.String("category_id", id.String()))
		return nil, fmt.Errorf("получение категории: %w", err)
	}
	return c, nil
}

func (s *CategoryStorage) List(ctx context.Context) ([]*category.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name, id`)
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
	tag, err := s.pool.Exec(ctx,
		`UPDATE categories SET name = $1, color = $2, icon = $3 WHERE id = $4`,
		c.Name, c.Color, c.Icon, c.ID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить категорию", err, zap.String("category_id", c.ID.String()))
		return fmt.Errorf("обновление категории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *CategoryStorage) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить категорию", err, zap.String("category_id", id.String()))
		return fmt.Errorf("удаление категории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*category.Category, error) {
	var c category.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
