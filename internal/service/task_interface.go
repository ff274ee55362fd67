package service

import (
	"context"

	"plutoTodo/internal/models/category"
	"plutoTodo/internal/models/task"

	"github.com/google/uuid"
)

// TaskRepository хранилище задач. GetByID, Update и Delete возвращают
// repository.ErrNotFound, если записи нет.
type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	List(context.Context, task.Filter) ([]*task.Task, error)
	Update(context.Context, *task.Task) error
	Delete(context.Context, uuid.UUID) error
	HasChildren(context.Context, uuid.UUID) (bool, error)
	// ClearCategory обнуляет category_id у всех задач категории
	ClearCategory(context.Context, uuid.UUID) error
}

type CategoryRepository interface {
	Create(context.Context, *category.Category) error
	GetByID(context.Context, uuid.UUID) (*category.Category, error)
	// List отсортирован по имени
	List(context.Context) ([]*category.Category, error)
	Update(context.Context, *category.Category) error
	Delete(context.Context, uuid.UUID) error
}

// CategoryCache кеш списка категорий, промах возвращает ok == false
type CategoryCache interface {
	Get(context.Context) ([]*category.Category, bool)
	Set(context.Context, []*category.Category)
	Invalidate(context.Context)
}
