// Package postgres хранилище задач и категорий поверх pgxpool
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/task"
	repo "plutoTodo/internal/repository"
	"plutoTodo/internal/repository/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, completed, priority, due_date, category_id, parent_id, created_at, updated_at`

type TaskStorage struct {
	*Storage
}

func (s *TaskStorage) Create(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer s.observe("task.create", start)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, t.Title, t.Description, t.Completed, string(t.Priority), t.DueDate,
			t.CategoryID, t.ParentID, t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return insertTags(ctx, tx, t.ID, t.Tags)
	})
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.String("task_id", t.ID.String()))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()
	defer s.observe("task.get", start)

	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if err := s.loadTags(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskStorage) List(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer s.observe("task.list", start)

	q := query.Build(f)
	where, args := q.Where(query.Postgres)

	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks`+where+q.OrderBy(), args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	rows.Close()

	if err := s.loadTags(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskStorage) Update(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer s.observe("task.update", start)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE tasks
			SET title = $1, description = $2, completed = $3, priority = $4, due_date = $5,
				category_id = $6, parent_id = $7, updated_at = $8
			WHERE id = $9`,
			t.Title, t.Description, t.Completed, string(t.Priority), t.DueDate,
			t.CategoryID, t.ParentID, t.UpdatedAt, t.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM task_tags WHERE task_id = $1`, t.ID); err != nil {
			return err
		}
		return insertTags(ctx, tx, t.ID, t.Tags)
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return err
		}
		logger.Error("Repository: Не удалось обновить задачу", err, zap.String("task_id", t.ID.String()))
		return fmt.Errorf("обновление задачи: %w", err)
	}
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer s.observe("task.delete", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.String("task_id", id.String()))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *TaskStorage) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE parent_id = $1)`, id).Scan(&exists)
	if err != nil {
		logger.Error("Repository: Не удалось проверить подзадачи", err, zap.String("task_id", id.String()))
		return false, fmt.Errorf("проверка подзадач: %w", err)
	}
	return exists, nil
}

func (s *TaskStorage) ClearCategory(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `UPDATE tasks SET category_id = NULL, updated_at = $1 WHERE category_id = $2`,
		time.Now().UTC(), categoryID); err != nil {
		logger.Error("Repository: Не удалось отвязать задачи от категории", err, zap.String("category_id", categoryID.String()))
		return fmt.Errorf("отвязка категории: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t        task.Task
		priority string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &priority, &t.DueDate,
		&t.CategoryID, &t.ParentID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Priority = task.ParsePriority(priority)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.DueDate != nil {
		due := t.DueDate.UTC()
		t.DueDate = &due
	}
	t.Tags = []string{}
	return &t, nil
}

func insertTags(ctx context.Context, tx pgx.Tx, taskID uuid.UUID, tags []string) error {
	tags = task.NormalizeTags(tags)
	if len(tags) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tag := range tags {
		batch.Queue(`INSERT INTO task_tags (task_id, tag) VALUES ($1, $2)`, taskID, tag)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("добавление тегов: %w", err)
	}
	return nil
}

func (s *TaskStorage) loadTags(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*task.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID.String())
	}

	rows, err := s.pool.Query(ctx,
		`SELECT task_id, tag FROM task_tags WHERE task_id = ANY($1::uuid[]) ORDER BY tag`, ids)
	if err != nil {
		logger.Error("Repository: Не удалось получить теги", err)
		return fmt.Errorf("получение тегов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  uuid.UUID
			tag string
		)
		if err := rows.Scan(&id, &tag); err != nil {
			return fmt.Errorf("сканирование тега: %w", err)
		}
		if t, ok := byID[id]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("итерация по тегам: %w", err)
	}
	return nil
}
