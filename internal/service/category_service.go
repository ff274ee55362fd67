package service

import (
	"context"
	"errors"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/category"
	repo "plutoTodo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService struct {
	repo  CategoryRepository
	tasks TaskRepository
	lock  *StoreLock
	cache CategoryCache
}

// NewCategoryService cache может быть nil, тогда список всегда читается из хранилища
func NewCategoryService(repo CategoryRepository, tasks TaskRepository, lock *StoreLock, cache CategoryCache) *CategoryService {
	return &CategoryService{
		repo:  repo,
		tasks: tasks,
		lock:  lock,
		cache: cache,
	}
}

func (s *CategoryService) CreateCategory(ctx context.Context, req category.CreateCategoryRequest) (*category.Category, error) {
	c, err := category.New(req)
	if err != nil {
		return nil, NewValidationError("name", err.Error())
	}

	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, NewPersistenceError("создать категорию", err)
	}
	s.invalidate(ctx)

	logger.Info("Service: Категория создана", zap.String("category_id", c.ID.String()), zap.String("name", c.Name))
	return c, nil
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.get(ctx, id)
}

// ListCategories упорядочены по имени
func (s *CategoryService) ListCategories(ctx context.Context) ([]*category.Category, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, NewPersistenceError("получить категории", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, categories)
	}
	return categories, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req category.UpdateCategoryRequest) (*category.Category, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(req); err != nil {
		return nil, NewValidationError("name", err.Error())
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound(resourceCategory, id.String())
		}
		return nil, NewPersistenceError("обновить категорию", err)
	}
	s.invalidate(ctx)
	return c, nil
}

// DeleteCategory задачи категории не удаляются, у них обнуляется category_id
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	if err := s.tasks.ClearCategory(ctx, id); err != nil {
		return NewPersistenceError("отвязать задачи от категории", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound(resourceCategory, id.String())
		}
		return NewPersistenceError("удалить категорию", err)
	}
	s.invalidate(ctx)

	logger.Info("Service: Категория удалена", zap.String("category_id", id.String()))
	return nil
}

// InvalidateCache сбрасывает кеш списка, например после сидов
func (s *CategoryService) InvalidateCache(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *CategoryService) get(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Категория не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound(resourceCategory, id.String())
		}
		return nil, NewPersistenceError("получить категорию", err)
	}
	return c, nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
