package service

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// StoreLock единственный писатель на всё хранилище. Одна операция сервиса берёт его один раз.
type StoreLock struct {
	sem *semaphore.Weighted
}

func NewStoreLock() *StoreLock {
	return &StoreLock{sem: semaphore.NewWeighted(1)}
}

// Acquire ждёт освобождения, пока жив ctx. Иначе LOCK_CONTENTION.
func (l *StoreLock) Acquire(ctx context.Context) (release func(), err error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, NewLockContention(err)
	}
	return func() { l.sem.Release(1) }, nil
}
