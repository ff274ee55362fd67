package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"plutoTodo/internal/cache"
	"plutoTodo/internal/config"
	"plutoTodo/internal/database"
	"plutoTodo/internal/handlers"
	"plutoTodo/internal/logger"
	"plutoTodo/internal/repository/inmemory"
	"plutoTodo/internal/repository/postgres"
	"plutoTodo/internal/repository/query"
	"plutoTodo/internal/repository/sqlite"
	"plutoTodo/internal/router"
	"plutoTodo/internal/service"
	"plutoTodo/internal/worker"

	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	server     *http.Server
	tasks      *service.TaskService
	categories *service.CategoryService
	worker     *worker.OverdueWorker
	shutdowns  []func() // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// InitLogger вызывается первым, чтобы остальная инициализация уже логировалась
func (a *App) InitLogger() error {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})
	return nil
}

// InitServices открывает хранилище, подключает кеш и собирает сервисы
func (a *App) InitServices(ctx context.Context) error {
	tasks, categories, err := a.initStorage(ctx)
	if err != nil {
		return err
	}

	lock := service.NewStoreLock()
	a.tasks = service.NewTaskService(tasks, categories, lock)
	a.categories = service.NewCategoryService(categories, tasks, lock, a.initCache(ctx))

	// сиды могли изменить категории в обход кеша
	a.categories.InvalidateCache(ctx)
	return nil
}

// Init полная сборка для serve: сервисы, воркер и HTTP сервер
func (a *App) Init(ctx context.Context) error {
	if err := a.InitLogger(); err != nil {
		return err
	}
	if err := a.InitServices(ctx); err != nil {
		return err
	}

	if a.config.Worker.Enabled {
		a.worker = worker.NewOverdueWorker(a.tasks, a.config.Worker.Interval, a.config.Worker.BatchSize)
	}

	h := handlers.NewHandler(a.tasks, a.categories)
	r := router.New(h, router.Options{
		RequestTimeout: a.config.Server.RequestTimeout,
		RateLimit:      a.config.Server.RateLimit,
		CORSOrigins:    a.config.Server.CORSOrigins,
	})

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("App: Инициализация завершена",
		zap.String("driver", a.config.Database.Driver),
		zap.Int("commands", len(h.Commands())),
	)
	return nil
}

func (a *App) initStorage(ctx context.Context) (service.TaskRepository, service.CategoryRepository, error) {
	dbCfg := a.config.Database

	switch dbCfg.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(dbCfg.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Init(ctx, db, query.SQLite); err != nil {
			db.Close()
			return nil, nil, err
		}
		storage := sqlite.New(db, dbCfg.SlowQuery)
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие базы SQLite...")
			if err := storage.Close(); err != nil {
				logger.Error("App: Ошибка закрытия базы", err)
			}
		})
		return storage.Tasks(), storage.Categories(), nil

	case config.DriverPostgres:
		if err := migratePostgres(ctx, dbCfg.URL); err != nil {
			return nil, nil, err
		}
		storage, err := postgres.New(ctx, dbCfg.URL, postgres.Options{
			MaxConns:    dbCfg.MaxConnections,
			MinConns:    dbCfg.MinConnections,
			IdleTimeout: dbCfg.IdleTimeout,
			SlowQuery:   dbCfg.SlowQuery,
		})
		if err != nil {
			return nil, nil, err
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие пула PostgreSQL...")
			storage.Close()
		})
		return storage.Tasks(), storage.Categories(), nil

	case config.DriverInMemory:
		tasks := inmemory.NewTaskStorage()
		categories := inmemory.NewCategoryStorage()
		if err := categories.Seed(ctx, tasks); err != nil {
			return nil, nil, fmt.Errorf("заполнение категорий: %w", err)
		}
		logger.Warn("App: Используется хранилище в памяти, данные не сохраняются")
		return tasks, categories, nil

	default:
		return nil, nil, fmt.Errorf("неизвестный драйвер хранилища %q", dbCfg.Driver)
	}
}

func migratePostgres(ctx context.Context, url string) error {
	db, err := database.OpenPostgres(url)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Init(ctx, db, query.Postgres)
}

// initCache недоступный Redis не мешает запуску: категории читаются из хранилища
func (a *App) initCache(ctx context.Context) service.CategoryCache {
	cacheCfg := a.config.Cache
	if !cacheCfg.Enabled {
		return nil
	}

	client, err := cache.Connect(ctx, cacheCfg.Addr, cacheCfg.Password, cacheCfg.DB)
	if err != nil {
		logger.Warn("App: Кеш категорий отключён", zap.Error(err))
		return nil
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие соединения с Redis...")
		_ = client.Close()
	})
	return cache.NewCategoryCache(client, cacheCfg.TTL)
}

func (a *App) TaskService() *service.TaskService {
	return a.tasks
}

func (a *App) CategoryService() *service.CategoryService {
	return a.categories
}

// Run блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("приложение не инициализировано")
	}

	if a.worker != nil {
		workerCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			a.worker.Start(workerCtx)
		}()
		a.shutdowns = append(a.shutdowns, func() {
			cancel()
			<-done
		})
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("Остановка HTTP сервера...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	return nil
}

func (a *App) Shutdown() {
	for _, fn := range slices.Backward(a.shutdowns) {
		fn()
	}
	a.shutdowns = nil
}

// Migrate накатывает схему и сиды без запуска сервера; down откатывает схему
func Migrate(ctx context.Context, cfg *config.Config, down bool) error {
	db, d, err := openForMigrations(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if down {
		return database.Down(db, d)
	}
	return database.Init(ctx, db, d)
}

func openForMigrations(dbCfg config.DatabaseConfig) (*sql.DB, query.Dialect, error) {
	switch dbCfg.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(dbCfg.Path)
		return db, query.SQLite, err
	case config.DriverPostgres:
		db, err := database.OpenPostgres(dbCfg.URL)
		return db, query.Postgres, err
	default:
		return nil, query.Dialect{}, fmt.Errorf("драйвер %q не поддерживает миграции", dbCfg.Driver)
	}
}
