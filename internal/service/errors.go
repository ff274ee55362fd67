package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeHasSubtasks    = "HAS_SUBTASKS"
	CodeLockContention = "LOCK_CONTENTION"
	CodePersistence    = "PERSISTENCE_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

// CodeOf код бизнес-ошибки или PERSISTENCE_ERROR для всего остального
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodePersistence
}

func NewNotFound(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewHasSubtasks(id string) *BusinessError {
	return &BusinessError{
		Code:    CodeHasSubtasks,
		Message: fmt.Sprintf("у задачи %s есть подзадачи, выберите каскадное удаление или перенос", id),
		Details: map[string]any{"id": id},
	}
}

func NewLockContention(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeLockContention,
		Message: "хранилище занято другой операцией",
		Err:     err,
	}
}

// NewPersistenceError action называет неудавшееся действие, причина сохраняется в Err
func NewPersistenceError(action string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodePersistence,
		Message: fmt.Sprintf("не удалось %s", action),
		Err:     err,
	}
}
