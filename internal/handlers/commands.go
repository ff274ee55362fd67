package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"plutoTodo/internal/handlers/dto"
	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/task"
	"plutoTodo/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

type command func(ctx context.Context, body []byte) (any, error)

type validator interface {
	Validate() error
}

// bind разбирает JSON с именованными аргументами и проверяет их до вызова сервиса.
// Пустое тело равносильно {}.
func bind[A validator](fn func(context.Context, A) (any, error)) command {
	return func(ctx context.Context, body []byte) (any, error) {
		var args A
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &args); err != nil {
				return nil, service.NewValidationError("args", err.Error())
			}
		}
		if err := args.Validate(); err != nil {
			return nil, service.NewValidationError("args", err.Error())
		}
		return fn(ctx, args)
	}
}

func nonNil[T any](s []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = []T{}
	}
	return s, nil
}

func none(err error) (any, error) {
	return nil, err
}

type Handler struct {
	tasks      TaskService
	categories CategoryService
	commands   map[string]command
	now        func() time.Time
}

func NewHandler(tasks TaskService, categories CategoryService) *Handler {
	h := &Handler{
		tasks:      tasks,
		categories: categories,
		now:        time.Now,
	}
	h.commands = h.registerCommands()
	return h
}

func (h *Handler) registerCommands() map[string]command {
	return map[string]command{
		"create_task": bind(func(ctx context.Context, a dto.CreateTaskArgs) (any, error) {
			return h.tasks.CreateTask(ctx, *a.Request)
		}),
		"get_tasks": bind(func(ctx context.Context, a dto.FilterArgs) (any, error) {
			var f task.Filter
			if a.Filter != nil {
				f = *a.Filter
			}
			return nonNil(h.tasks.ListTasks(ctx, f))
		}),
		"get_task_by_id": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return h.tasks.GetTaskByID(ctx, a.ID)
		}),
		"update_task": bind(func(ctx context.Context, a dto.UpdateTaskArgs) (any, error) {
			return h.tasks.UpdateTask(ctx, a.ID, *a.Request)
		}),
		"delete_task": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return none(h.tasks.DeleteTask(ctx, a.ID))
		}),
		"toggle_task_completion": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return h.tasks.ToggleTaskCompletion(ctx, a.ID)
		}),
		"search_tasks": bind(func(ctx context.Context, a dto.SearchArgs) (any, error) {
			return nonNil(h.tasks.SearchTasks(ctx, a.Query))
		}),
		"get_tasks_by_category": bind(func(ctx context.Context, a dto.CategoryIDArgs) (any, error) {
			return nonNil(h.tasks.ListTasksByCategory(ctx, a.CategoryID))
		}),
		"get_overdue_tasks": bind(func(ctx context.Context, _ dto.Empty) (any, error) {
			return nonNil(h.tasks.ListOverdueTasks(ctx, h.now()))
		}),
		"get_subtasks": bind(func(ctx context.Context, a dto.ParentArgs) (any, error) {
			return nonNil(h.tasks.GetSubtasks(ctx, a.ParentID))
		}),

		"get_task_hierarchy": bind(func(ctx context.Context, a dto.HierarchyArgs) (any, error) {
			return nonNil(h.tasks.GetTaskHierarchy(ctx, a.RootID))
		}),
		"get_task_with_subtasks": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return nonNil(h.tasks.GetTaskWithSubtasks(ctx, a.ID))
		}),
		"calculate_task_progress": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return h.tasks.CalculateTaskProgress(ctx, a.ID)
		}),
		"get_incomplete_subtasks": bind(func(ctx context.Context, a dto.ParentArgs) (any, error) {
			return nonNil(h.tasks.GetIncompleteSubtasks(ctx, a.ParentID))
		}),
		"bulk_mark_subtasks_completed": bind(func(ctx context.Context, a dto.ParentArgs) (any, error) {
			return nonNil(h.tasks.BulkMarkSubtasksCompleted(ctx, a.ParentID))
		}),
		"delete_task_with_subtasks": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return none(h.tasks.DeleteTaskAndSubtasks(ctx, a.ID))
		}),
		"delete_task_and_promote_subtasks": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return none(h.tasks.DeleteTaskAndPromoteSubtasks(ctx, a.ID))
		}),
		"check_task_has_subtasks": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return h.tasks.HasSubtasks(ctx, a.ID)
		}),
		"bulk_check_tasks_have_subtasks": bind(func(ctx context.Context, a dto.IDsArgs) (any, error) {
			return nonNil(h.tasks.BulkHasSubtasks(ctx, a.IDs))
		}),
		"bulk_delete_tasks_with_subtasks": bind(func(ctx context.Context, a dto.IDsArgs) (any, error) {
			return none(h.tasks.BulkDeleteTasksWithSubtasks(ctx, a.IDs))
		}),
		"bulk_delete_tasks_and_promote_subtasks": bind(func(ctx context.Context, a dto.IDsArgs) (any, error) {
			return none(h.tasks.BulkDeleteTasksAndPromoteSubtasks(ctx, a.IDs))
		}),

		"create_category": bind(func(ctx context.Context, a dto.CreateCategoryArgs) (any, error) {
			return h.categories.CreateCategory(ctx, a.CreateCategoryRequest)
		}),
		"get_categories": bind(func(ctx context.Context, _ dto.Empty) (any, error) {
			return nonNil(h.categories.ListCategories(ctx))
		}),
		"get_category_by_id": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return h.categories.GetCategoryByID(ctx, a.ID)
		}),
		"update_category": bind(func(ctx context.Context, a dto.UpdateCategoryArgs) (any, error) {
			return h.categories.UpdateCategory(ctx, a.ID, a.UpdateCategoryRequest)
		}),
		"delete_category": bind(func(ctx context.Context, a dto.IDArgs) (any, error) {
			return none(h.categories.DeleteCategory(ctx, a.ID))
		}),
	}
}

// Commands отсортированный список имён команд
func (h *Handler) Commands() []string {
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Invoke POST /invoke/{command}
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "command")

	cmd, ok := h.commands[name]
	if !ok {
		logger.Warn("HTTP: Неизвестная команда", zap.String("command", name))
		responseWithError(w, http.StatusNotFound, fmt.Sprintf("%s: %s", errUnknownCommand, name))
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		logger.Warn("HTTP: Ошибка чтения тела запроса", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "не удалось прочитать тело запроса: "+err.Error())
		return
	}

	data, err := cmd(r.Context(), body)
	if err != nil {
		handleError(w, name, err)
		return
	}

	logger.Debug("HTTP: Команда выполнена",
		zap.String("command", name),
		zap.Duration("ms", time.Since(start)))
	responseWithData(w, data)
}

// HealthCheck GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Data:    map[string]string{"status": "unhealthy", "service": "pluto"},
			Error:   ptr(err.Error()),
		})
		return
	}
	responseWithData(w, map[string]string{"status": "ok", "service": "pluto"})
}

func ptr[T any](v T) *T {
	return &v
}
