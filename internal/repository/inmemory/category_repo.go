package inmemory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/category"
	repo "plutoTodo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryStorage struct {
	storage map[uuid.UUID]*category.Category
	mtx     *sync.RWMutex
}

func NewCategoryStorage() *CategoryStorage {
	return &CategoryStorage{
		storage: make(map[uuid.UUID]*category.Category),
		mtx:     &sync.RWMutex{},
	}
}

// Seed убирает дубликаты по имени (остаётся наименьший id) и добавляет
// недостающие категории по умолчанию. tasks получает ссылки удалённых дубликатов.
func (s *CategoryStorage) Seed(ctx context.Context, tasks *TaskStorage) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	survivors := make(map[string]*category.Category)
	for _, c := range s.storage {
		cur, ok := survivors[c.Name]
		if !ok || c.ID.String() < cur.ID.String() {
			survivors[c.Name] = c
		}
	}

	removed := 0
	for id, c := range s.storage {
		survivor := survivors[c.Name]
		if survivor.ID == id {
			continue
		}
		if tasks != nil {
			tasks.repointCategory(id, survivor.ID)
		}
		delete(s.storage, id)
		removed++
	}
	if removed > 0 {
		logger.Warn("Repository: Удалены дубликаты категорий", zap.Int("count", removed))
	}

	for _, def := range category.Defaults {
		if _, ok := survivors[def.Name]; ok {
			continue
		}
		c := def.Category()
		s.storage[c.ID] = c
	}
	return nil
}

func (s *CategoryStorage) Create(ctx context.Context, c *category.Category) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cp := *c
	s.storage[c.ID] = &cp
	return nil
}

func (s *CategoryStorage) GetByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	c, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *CategoryStorage) List(ctx context.Context) ([]*category.Category, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*category.Category, 0, len(s.storage))
	for _, c := range s.storage {
		cp := *c
		res = append(res, &cp)
	}
	slices.SortFunc(res, func(a, b *category.Category) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return res, nil
}

func (s *CategoryStorage) Update(ctx context.Context, c *category.Category) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[c.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *c
	s.storage[c.ID] = &cp
	return nil
}

func (s *CategoryStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}

func (s *TaskStorage) repointCategory(from, to uuid.UUID) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, t := range s.storage {
		if t.CategoryID != nil && *t.CategoryID == from {
			id := to
			t.CategoryID = &id
		}
	}
}
