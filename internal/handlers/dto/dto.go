// Package dto аргументы команд POST /invoke/{command}
package dto

import (
	"errors"

	"plutoTodo/internal/models/category"
	"plutoTodo/internal/models/task"

	"github.com/google/uuid"
)

var (
	ErrMissingID      = errors.New("id обязателен")
	ErrMissingParent  = errors.New("parent_id обязателен")
	ErrMissingRequest = errors.New("request обязателен")
	ErrMissingCat     = errors.New("category_id обязателен")
)

type Empty struct{}

func (Empty) Validate() error { return nil }

type IDArgs struct {
	ID uuid.UUID `json:"id"`
}

func (a IDArgs) Validate() error {
	if a.ID == uuid.Nil {
		return ErrMissingID
	}
	return nil
}

type IDsArgs struct {
	IDs []uuid.UUID `json:"ids"`
}

func (a IDsArgs) Validate() error {
	for _, id := range a.IDs {
		if id == uuid.Nil {
			return ErrMissingID
		}
	}
	return nil
}

type ParentArgs struct {
	ParentID uuid.UUID `json:"parent_id"`
}

func (a ParentArgs) Validate() error {
	if a.ParentID == uuid.Nil {
		return ErrMissingParent
	}
	return nil
}

type CategoryIDArgs struct {
	CategoryID uuid.UUID `json:"category_id"`
}

func (a CategoryIDArgs) Validate() error {
	if a.CategoryID == uuid.Nil {
		return ErrMissingCat
	}
	return nil
}

// HierarchyArgs без root_id обходятся все корневые задачи
type HierarchyArgs struct {
	RootID *uuid.UUID `json:"root_id"`
}

func (HierarchyArgs) Validate() error { return nil }

type FilterArgs struct {
	Filter *task.Filter `json:"filter"`
}

func (FilterArgs) Validate() error { return nil }

type SearchArgs struct {
	Query string `json:"query"`
}

func (SearchArgs) Validate() error { return nil }

type CreateTaskArgs struct {
	Request *task.CreateTaskRequest `json:"request"`
}

func (a CreateTaskArgs) Validate() error {
	if a.Request == nil {
		return ErrMissingRequest
	}
	return nil
}

type UpdateTaskArgs struct {
	ID      uuid.UUID               `json:"id"`
	Request *task.UpdateTaskRequest `json:"request"`
}

func (a UpdateTaskArgs) Validate() error {
	if a.ID == uuid.Nil {
		return ErrMissingID
	}
	if a.Request == nil {
		return ErrMissingRequest
	}
	return nil
}

type CreateCategoryArgs struct {
	category.CreateCategoryRequest
}

func (CreateCategoryArgs) Validate() error { return nil }

type UpdateCategoryArgs struct {
	ID uuid.UUID `json:"id"`
	category.UpdateCategoryRequest
}

func (a UpdateCategoryArgs) Validate() error {
	if a.ID == uuid.Nil {
		return ErrMissingID
	}
	return nil
}
