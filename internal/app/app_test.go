package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"plutoTodo/internal/app"
	"plutoTodo/internal/config"
	"plutoTodo/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			RequestTimeout:  time.Second,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{
			Driver:    driver,
			Path:      filepath.Join(t.TempDir(), "pluto.db"),
			SlowQuery: time.Second,
		},
		Worker: config.WorkerConfig{Enabled: true, Interval: time.Hour, BatchSize: 10},
	}
}

func TestApp_InitServices(t *testing.T) {
	for _, driver := range []string{config.DriverInMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			a := app.New(testConfig(t, driver))
			require.NoError(t, a.InitServices(ctx))
			defer a.Shutdown()

			categories, err := a.CategoryService().ListCategories(ctx)
			require.NoError(t, err)
			assert.Len(t, categories, 4)

			created, err := a.TaskService().CreateTask(ctx, task.CreateTaskRequest{Title: "Check app wiring"})
			require.NoError(t, err)

			got, err := a.TaskService().GetTaskByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Check app wiring", got.Title)
		})
	}
}

func TestApp_SQLitePersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.DriverSQLite)

	first := app.New(cfg)
	require.NoError(t, first.InitServices(ctx))
	created, err := first.TaskService().CreateTask(ctx, task.CreateTaskRequest{Title: "Survives restart"})
	require.NoError(t, err)
	first.Shutdown()

	second := app.New(cfg)
	require.NoError(t, second.InitServices(ctx))
	defer second.Shutdown()

	got, err := second.TaskService().GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	categories, err := second.CategoryService().ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a := app.New(testConfig(t, config.DriverInMemory))
	require.NoError(t, a.Init(context.Background()))
	defer a.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}
}

func TestApp_RunWithoutInit(t *testing.T) {
	assert.Error(t, app.New(testConfig(t, config.DriverInMemory)).Run(context.Background()))
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.DriverSQLite)

	require.NoError(t, app.Migrate(ctx, cfg, false))
	require.NoError(t, app.Migrate(ctx, cfg, false))
	require.NoError(t, app.Migrate(ctx, cfg, true))

	assert.Error(t, app.Migrate(ctx, testConfig(t, config.DriverInMemory), false))
}
