package service

import (
	"context"
	"errors"
	"time"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/task"
	repo "plutoTodo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

const (
	resourceTask     = "задача"
	resourceParent   = "родительская задача"
	resourceCategory = "категория"
)

type TaskService struct {
	repo       TaskRepository
	categories CategoryRepository
	lock       *StoreLock
}

func NewTaskService(repo TaskRepository, categories CategoryRepository, lock *StoreLock) *TaskService {
	return &TaskService{
		repo:       repo,
		categories: categories,
		lock:       lock,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return NewPersistenceError("проверить хранилище", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*task.Task, error) {
	t, err := task.New(req)
	if err != nil {
		return nil, NewValidationError("title", err.Error())
	}

	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if t.ParentID != nil {
		if _, err := s.get(ctx, *t.ParentID, resourceParent); err != nil {
			return nil, err
		}
	}
	if t.CategoryID != nil {
		if err := s.checkCategory(ctx, *t.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, NewPersistenceError("создать задачу", err)
	}
	logger.Info("Service: Задача создана", zap.String("task_id", t.ID.String()))
	return t, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.get(ctx, id, resourceTask)
}

func (s *TaskService) ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.list(ctx, f)
}

// UpdateTask меняет только присутствующие поля. Новый родитель должен существовать
// и не может быть самой задачей или её потомком.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req task.UpdateTaskRequest) (*task.Task, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := s.get(ctx, id, resourceTask)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if err := s.checkParent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := t.Update(req); err != nil {
		return nil, NewValidationError("title", err.Error())
	}
	if err := s.update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask удаляет только задачу без подзадач
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.get(ctx, id, resourceTask); err != nil {
		return err
	}

	has, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return NewPersistenceError("проверить подзадачи", err)
	}
	if has {
		logger.Info("Service: Отказ в удалении задачи с подзадачами", zap.String("task_id", id.String()))
		return NewHasSubtasks(id.String())
	}

	return s.delete(ctx, id)
}

func (s *TaskService) ToggleTaskCompletion(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := s.get(ctx, id, resourceTask)
	if err != nil {
		return nil, err
	}

	t.Apply(task.WithCompleted(!t.Completed))
	if err := s.update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) SearchTasks(ctx context.Context, q string) ([]*task.Task, error) {
	return s.ListTasks(ctx, task.Filter{SearchQuery: q})
}

func (s *TaskService) ListTasksByCategory(ctx context.Context, categoryID uuid.UUID) ([]*task.Task, error) {
	return s.ListTasks(ctx, task.Filter{CategoryID: &categoryID})
}

// GetSubtasks прямые подзадачи, от старых к новым
func (s *TaskService) GetSubtasks(ctx context.Context, parentID uuid.UUID) ([]*task.Task, error) {
	return s.ListTasks(ctx, task.ChildrenOf(parentID))
}

// ListOverdueTasks невыполненные задачи со сроком не позже now
func (s *TaskService) ListOverdueTasks(ctx context.Context, now time.Time) ([]*task.Task, error) {
	completed := false
	return s.ListTasks(ctx, task.Filter{
		Completed: &completed,
		DueBefore: now.UTC().Format(time.RFC3339Nano),
	})
}

func (s *TaskService) get(ctx context.Context, id uuid.UUID, resource string) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(resource, id.String())
		}
		return nil, NewPersistenceError("получить задачу", err)
	}
	return t, nil
}

func (s *TaskService) list(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, NewPersistenceError("получить задачи", err)
	}
	return tasks, nil
}

func (s *TaskService) update(ctx context.Context, t *task.Task) error {
	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(resourceTask, t.ID.String())
		}
		return NewPersistenceError("обновить задачу", err)
	}
	return nil
}

func (s *TaskService) delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(resourceTask, id.String())
		}
		return NewPersistenceError("удалить задачу", err)
	}
	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) checkCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(resourceCategory, id.String())
		}
		return NewPersistenceError("получить категорию", err)
	}
	return nil
}

// checkParent запрещает циклы: родитель не может быть самой задачей или её потомком
func (s *TaskService) checkParent(ctx context.Context, id, parentID uuid.UUID) error {
	if parentID == id {
		return NewValidationError("parent_id", "задача не может быть родителем самой себе")
	}
	if _, err := s.get(ctx, parentID, resourceParent); err != nil {
		return err
	}

	descendants, err := s.descendants(ctx, &id)
	if err != nil {
		return err
	}
	for _, d := range descendants {
		if d.ID == parentID {
			logger.Info("Service: Отказ в создании цикла",
				zap.String("task_id", id.String()),
				zap.String("parent_id", parentID.String()))
			return NewValidationError("parent_id", "родитель не может быть потомком задачи")
		}
	}
	return nil
}
