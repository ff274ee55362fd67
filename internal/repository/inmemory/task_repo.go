// Package inmemory хранилище в памяти процесса, без файла базы.
// Наружу отдаются копии, поэтому изменения видны только после Update.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/task"
	repo "plutoTodo/internal/repository"
	"plutoTodo/internal/repository/query"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, t *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if t.ParentID != nil {
		if _, ok := s.storage[*t.ParentID]; !ok {
			return repo.ErrConstraint
		}
	}

	s.storage[t.ID] = clone(t)
	s.ids = append(s.ids, t.ID)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(t), nil
}

func (s *TaskStorage) List(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	q := query.Build(f)
	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if q.Match(t) {
			res = append(res, clone(t))
		}
	}

	slices.SortStableFunc(res, func(a, b *task.Task) int {
		switch {
		case q.Less(a, b):
			return -1
		case q.Less(b, a):
			return 1
		default:
			return 0
		}
	})
	return res, nil
}

func (s *TaskStorage) Update(ctx context.Context, t *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[t.ID]; !ok {
		return repo.ErrNotFound
	}
	s.storage[t.ID] = clone(t)
	return nil
}

// Delete как и SQL-схема не даёт удалить задачу, на которую ссылаются подзадачи
func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	for _, t := range s.storage {
		if t.ParentID != nil && *t.ParentID == id {
			return repo.ErrConstraint
		}
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

func (s *TaskStorage) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, t := range s.storage {
		if t.ParentID != nil && *t.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *TaskStorage) ClearCategory(ctx context.Context, categoryID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, t := range s.storage {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			t.CategoryID = nil
			t.Touch()
		}
	}
	return nil
}

func clone(t *task.Task) *task.Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CategoryID != nil {
		id := *t.CategoryID
		c.CategoryID = &id
	}
	if t.ParentID != nil {
		id := *t.ParentID
		c.ParentID = &id
	}
	c.Tags = append([]string{}, t.Tags...)
	return &c
}
