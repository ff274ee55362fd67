package handlers

import (
	"context"
	"time"

	"plutoTodo/internal/models/category"
	"plutoTodo/internal/models/task"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error

	CreateTask(ctx context.Context, req task.CreateTaskRequest) (*task.Task, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req task.UpdateTaskRequest) (*task.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	ToggleTaskCompletion(ctx context.Context, id uuid.UUID) (*task.Task, error)
	SearchTasks(ctx context.Context, q string) ([]*task.Task, error)
	ListTasksByCategory(ctx context.Context, categoryID uuid.UUID) ([]*task.Task, error)
	GetSubtasks(ctx context.Context, parentID uuid.UUID) ([]*task.Task, error)
	ListOverdueTasks(ctx context.Context, now time.Time) ([]*task.Task, error)

	GetTaskHierarchy(ctx context.Context, rootID *uuid.UUID) ([]*task.Task, error)
	GetTaskWithSubtasks(ctx context.Context, id uuid.UUID) ([]*task.Task, error)
	CalculateTaskProgress(ctx context.Context, id uuid.UUID) (task.Progress, error)
	GetIncompleteSubtasks(ctx context.Context, parentID uuid.UUID) ([]*task.Task, error)
	BulkMarkSubtasksCompleted(ctx context.Context, parentID uuid.UUID) ([]*task.Task, error)
	HasSubtasks(ctx context.Context, id uuid.UUID) (bool, error)
	BulkHasSubtasks(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	DeleteTaskAndSubtasks(ctx context.Context, id uuid.UUID) error
	DeleteTaskAndPromoteSubtasks(ctx context.Context, id uuid.UUID) error
	BulkDeleteTasksWithSubtasks(ctx context.Context, ids []uuid.UUID) error
	BulkDeleteTasksAndPromoteSubtasks(ctx context.Context, ids []uuid.UUID) error
}

type CategoryService interface {
	CreateCategory(ctx context.Context, req category.CreateCategoryRequest) (*category.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*category.Category, error)
	ListCategories(ctx context.Context) ([]*category.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req category.UpdateCategoryRequest) (*category.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}
