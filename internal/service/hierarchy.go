package service

import (
	"context"
	"slices"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetTaskHierarchy все потомки rootID без него самого, либо при nil все корневые задачи
// вместе с потомками. Порядок не гарантируется.
func (s *TaskService) GetTaskHierarchy(ctx context.Context, rootID *uuid.UUID) ([]*task.Task, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.descendants(ctx, rootID)
}

// GetTaskWithSubtasks задача первой, за ней все её потомки
func (s *TaskService) GetTaskWithSubtasks(ctx context.Context, id uuid.UUID) ([]*task.Task, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := s.get(ctx, id, resourceTask)
	if err != nil {
		return nil, err
	}
	descendants, err := s.descendants(ctx, &id)
	if err != nil {
		return nil, err
	}
	return append([]*task.Task{t}, descendants...), nil
}

func (s *TaskService) CalculateTaskProgress(ctx context.Context, id uuid.UUID) (task.Progress, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return task.Progress{}, err
	}
	defer release()

	descendants, err := s.descendants(ctx, &id)
	if err != nil {
		return task.Progress{}, err
	}

	completed := 0
	for _, d := range descendants {
		if d.Completed {
			completed++
		}
	}
	return task.NewProgress(len(descendants), completed), nil
}

func (s *TaskService) GetIncompleteSubtasks(ctx context.Context, parentID uuid.UUID) ([]*task.Task, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	descendants, err := s.descendants(ctx, &parentID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(descendants, func(t *task.Task) bool { return t.Completed }), nil
}

// BulkMarkSubtasksCompleted возвращает только те задачи, которые действительно изменились
func (s *TaskService) BulkMarkSubtasksCompleted(ctx context.Context, parentID uuid.UUID) ([]*task.Task, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	descendants, err := s.descendants(ctx, &parentID)
	if err != nil {
		return nil, err
	}

	changed := []*task.Task{}
	for _, d := range descendants {
		if d.Completed {
			continue
		}
		d.Apply(task.WithCompleted(true))
		if err := s.update(ctx, d); err != nil {
			return nil, err
		}
		changed = append(changed, d)
	}

	logger.Info("Service: Подзадачи отмечены выполненными",
		zap.String("parent_id", parentID.String()),
		zap.Int("changed", len(changed)))
	return changed, nil
}

func (s *TaskService) HasSubtasks(ctx context.Context, id uuid.UUID) (bool, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	return s.hasSubtasks(ctx, id)
}

// BulkHasSubtasks возвращает id из входа, у которых есть подзадачи, в порядке входа
func (s *TaskService) BulkHasSubtasks(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	res := []uuid.UUID{}
	for _, id := range ids {
		has, err := s.hasSubtasks(ctx, id)
		if err != nil {
			return nil, err
		}
		if has {
			res = append(res, id)
		}
	}
	return res, nil
}

func (s *TaskService) DeleteTaskAndSubtasks(ctx context.Context, id uuid.UUID) error {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return s.deleteWithSubtasks(ctx, id)
}

func (s *TaskService) DeleteTaskAndPromoteSubtasks(ctx context.Context, id uuid.UUID) error {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return s.deleteAndPromote(ctx, id)
}

// BulkDeleteTasksWithSubtasks останавливается на первой ошибке, уже удалённое не восстанавливается
func (s *TaskService) BulkDeleteTasksWithSubtasks(ctx context.Context, ids []uuid.UUID) error {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	for _, id := range ids {
		if err := s.deleteWithSubtasks(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) BulkDeleteTasksAndPromoteSubtasks(ctx context.Context, ids []uuid.UUID) error {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	for _, id := range ids {
		if err := s.deleteAndPromote(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// descendants обходит дерево стеком (LIFO). Каждый узел попадает в результат раньше
// своих потомков. visited защищает от циклов, уже лежащих в хранилище.
func (s *TaskService) descendants(ctx context.Context, rootID *uuid.UUID) ([]*task.Task, error) {
	var (
		stack []*task.Task
		err   error
	)
	visited := make(map[uuid.UUID]struct{})

	if rootID == nil {
		stack, err = s.list(ctx, task.Roots())
	} else {
		visited[*rootID] = struct{}{}
		stack, err = s.list(ctx, task.ChildrenOf(*rootID))
	}
	if err != nil {
		return nil, err
	}

	res := []*task.Task{}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[t.ID]; ok {
			continue
		}
		visited[t.ID] = struct{}{}
		res = append(res, t)

		children, err := s.list(ctx, task.ChildrenOf(t.ID))
		if err != nil {
			return nil, err
		}
		stack = append(stack, children...)
	}
	return res, nil
}

func (s *TaskService) hasSubtasks(ctx context.Context, id uuid.UUID) (bool, error) {
	has, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return false, NewPersistenceError("проверить подзадачи", err)
	}
	return has, nil
}

// deleteWithSubtasks удаляет потомков в обратном порядке обхода, затем саму задачу
func (s *TaskService) deleteWithSubtasks(ctx context.Context, id uuid.UUID) error {
	if _, err := s.get(ctx, id, resourceTask); err != nil {
		return err
	}

	descendants, err := s.descendants(ctx, &id)
	if err != nil {
		return err
	}
	for i := len(descendants) - 1; i >= 0; i-- {
		if err := s.delete(ctx, descendants[i].ID); err != nil {
			return err
		}
	}

	if err := s.delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Service: Задача удалена вместе с подзадачами",
		zap.String("task_id", id.String()),
		zap.Int("subtasks", len(descendants)))
	return nil
}

// deleteAndPromote переносит прямых детей к родителю удаляемой задачи (или в корень)
func (s *TaskService) deleteAndPromote(ctx context.Context, id uuid.UUID) error {
	t, err := s.get(ctx, id, resourceTask)
	if err != nil {
		return err
	}

	children, err := s.list(ctx, task.ChildrenOf(id))
	if err != nil {
		return err
	}
	for _, c := range children {
		c.Apply(task.WithParent(t.ParentID))
		if err := s.update(ctx, c); err != nil {
			return err
		}
	}

	if err := s.delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Service: Задача удалена, подзадачи подняты на уровень выше",
		zap.String("task_id", id.String()),
		zap.Int("promoted", len(children)))
	return nil
}
