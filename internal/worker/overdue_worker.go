package worker

import (
	"context"
	"time"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/models/task"

	"go.uber.org/zap"
)

const (
	DefaultInterval  = 5 * time.Minute
	DefaultBatchSize = 100
)

type OverdueLister interface {
	ListOverdueTasks(ctx context.Context, now time.Time) ([]*task.Task, error)
}

type OverdueWorker struct {
	tasks     OverdueLister
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOverdueWorker нулевые interval и batchSize заменяются значениями по умолчанию
func NewOverdueWorker(tasks OverdueLister, interval time.Duration, batchSize int) *OverdueWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &OverdueWorker{
		tasks:     tasks,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Фоновая проверка запущена", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check возвращает число просроченных задач, -1 при ошибке
func (w *OverdueWorker) Check(ctx context.Context) int {
	start := time.Now()

	overdue, err := w.tasks.ListOverdueTasks(ctx, w.now())
	if err != nil {
		logger.Warn("Worker: Ошибка получения просроченных задач", zap.Error(err))
		return -1
	}

	if len(overdue) == 0 {
		logger.Debug("Worker: Просроченных задач нет", zap.Duration("ms", time.Since(start)))
		return 0
	}

	shown := overdue
	if len(shown) > w.batchSize {
		shown = shown[:w.batchSize]
	}
	ids := make([]string, 0, len(shown))
	for _, t := range shown {
		ids = append(ids, t.ID.String())
	}

	logger.Warn(
		"Worker: Найдены просроченные задачи",
		zap.Int("overdue", len(overdue)),
		zap.Strings("task_ids", ids),
		zap.Duration("ms", time.Since(start)),
	)
	return len(overdue)
}
