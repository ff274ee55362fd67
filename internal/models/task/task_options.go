package task

import (
	"time"

	"github.com/google/uuid"
)

type TaskOption func(*Task)

// Apply применяет опции и обновляет UpdatedAt, даже если опций нет
func (t *Task) Apply(options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	t.Touch()
}

// Options превращает частичный запрос в список опций обновления
func (r UpdateTaskRequest) Options() []TaskOption {
	var opts []TaskOption
	if r.Title != nil {
		opts = append(opts, WithTitle(*r.Title))
	}
	if r.Description != nil {
		opts = append(opts, WithDescription(*r.Description))
	}
	if r.Completed != nil {
		opts = append(opts, WithCompleted(*r.Completed))
	}
	if r.Priority != nil {
		opts = append(opts, WithPriority(ParsePriority(*r.Priority)))
	}
	if r.DueDate != nil {
		if due, ok := ParseDueDate(*r.DueDate); ok {
			opts = append(opts, WithDueDate(due))
		}
	}
	if r.CategoryID != nil {
		opts = append(opts, WithCategory(*r.CategoryID))
	}
	if r.Tags != nil {
		opts = append(opts, WithTags(*r.Tags))
	}
	if r.ParentID != nil {
		opts = append(opts, WithParent(r.ParentID))
	}
	return opts
}

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = &description
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.Completed = completed
	}
}

func WithPriority(priority Priority) TaskOption {
	return func(task *Task) {
		task.Priority = ParsePriority(string(priority))
	}
}

func WithDueDate(dueDate time.Time) TaskOption {
	if dueDate.IsZero() {
		return nil
	}
	return func(task *Task) {
		due := dueDate.UTC()
		task.DueDate = &due
	}
}

func WithCategory(categoryID uuid.UUID) TaskOption {
	return func(task *Task) {
		task.CategoryID = &categoryID
	}
}

func WithTags(tags []string) TaskOption {
	return func(task *Task) {
		task.Tags = NormalizeTags(tags)
	}
}

// WithParent с nil переносит задачу в корень
func WithParent(parentID *uuid.UUID) TaskOption {
	return func(task *Task) {
		if parentID == nil {
			task.ParentID = nil
			return
		}
		id := *parentID
		task.ParentID = &id
	}
}
