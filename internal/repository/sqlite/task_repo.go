package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/task"
	repo "plutoTodo/internal/repository"
	"plutoTodo/internal/repository/query"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, completed, priority, due_date, category_id, parent_id, created_at, updated_at`

// лимит переменных в одном запросе для выборки тегов
const tagsChunk = 500

type TaskStorage struct {
	*Storage
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *TaskStorage) Create(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer s.observe("task.create", start)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Description, t.Completed, string(t.Priority), nullTime(t.DueDate),
			t.CategoryID, t.ParentID, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
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

	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.String("task_id", id.String()))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if err := loadTags(ctx, s.db, []*task.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskStorage) List(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer s.observe("task.list", start)

	q := query.Build(f)
	where, args := q.Where(query.SQLite)

	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks`+where+q.OrderBy(), args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			rows.Close()
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	// соединение одно, поэтому курсор закрывается до запроса тегов
	rows.Close()

	if err := loadTags(ctx, s.db, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskStorage) Update(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer s.observe("task.update", start)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE tasks
			SET title = ?, description = ?, completed = ?, priority = ?, due_date = ?,
				category_id = ?, parent_id = ?, updated_at = ?
			WHERE id = ?`,
			t.Title, t.Description, t.Completed, string(t.Priority), nullTime(t.DueDate),
			t.CategoryID, t.ParentID, formatTime(t.UpdatedAt), t.ID,
		)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return repo.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, t.ID); err != nil {
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

// Delete удаляет одну строку, теги уходят каскадом
func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer s.observe("task.delete", start)

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.String("task_id", id.String()))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *TaskStorage) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE parent_id = ?)`, id).Scan(&exists)
	if err != nil {
		logger.Error("Repository: Не удалось проверить подзадачи", err, zap.String("task_id", id.String()))
		return false, fmt.Errorf("проверка подзадач: %w", err)
	}
	return exists, nil
}

func (s *TaskStorage) ClearCategory(ctx context.Context, categoryID uuid.UUID) error {
	start := time.Now()
	defer s.observe("task.clear_category", start)

	if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET category_id = NULL, updated_at = ? WHERE category_id = ?`,
		formatTime(time.Now().UTC()), categoryID); err != nil {
		logger.Error("Repository: Не удалось отвязать задачи от категории", err, zap.String("category_id", categoryID.String()))
		return fmt.Errorf("отвязка категории: %w", err)
	}
	return nil
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t                    task.Task
		priority             string
		due                  sql.NullString
		categoryID, parentID uuid.NullUUID
		created, updated     string
	)

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &priority, &due,
		&categoryID, &parentID, &created, &updated)
	if err != nil {
		return nil, err
	}

	t.Priority = task.ParsePriority(priority)
	if categoryID.Valid {
		t.CategoryID = &categoryID.UUID
	}
	if parentID.Valid {
		t.ParentID = &parentID.UUID
	}
	if due.Valid {
		d, err := parseTime(due.String)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	t.Tags = []string{}
	return &t, nil
}

func insertTags(ctx context.Context, ex execer, taskID uuid.UUID, tags []string) error {
	for _, tag := range task.NormalizeTags(tags) {
		if _, err := ex.ExecContext(ctx, `INSERT INTO task_tags (task_id, tag) VALUES (?, ?)`, taskID, tag); err != nil {
			return fmt.Errorf("добавление тега %q: %w", tag, err)
		}
	}
	return nil
}

func loadTags(ctx context.Context, q querier, tasks []*task.Task) error {
	byID := make(map[uuid.UUID]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	for from := 0; from < len(tasks); from += tagsChunk {
		to := min(from+tagsChunk, len(tasks))
		chunk := tasks[from:to]

		args := make([]any, len(chunk))
		for i, t := range chunk {
			args[i] = t.ID
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(chunk)), ", ")

		rows, err := q.QueryContext(ctx,
			`SELECT task_id, tag FROM task_tags WHERE task_id IN (`+placeholders+`) ORDER BY tag`, args...)
		if err != nil {
			logger.Error("Repository: Не удалось получить теги", err)
			return fmt.Errorf("получение тегов: %w", err)
		}
		for rows.Next() {
			var (
				id  uuid.UUID
				tag string
			)
			if err := rows.Scan(&id, &tag); err != nil {
				rows.Close()
				return fmt.Errorf("сканирование тега: %w", err)
			}
			if t, ok := byID[id]; ok {
				t.Tags = append(t.Tags, tag)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("итерация по тегам: %w", err)
		}
	}
	return nil
}
