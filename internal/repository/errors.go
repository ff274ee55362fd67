package repository

import "errors"

var (
	ErrNotFound = errors.New("запись не найдена")
	// ErrConstraint нарушение ссылочной целостности (родитель отсутствует или на запись ссылаются подзадачи)
	ErrConstraint = errors.New("нарушено ограничение целостности")
)
