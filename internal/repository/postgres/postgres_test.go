package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"plutoTodo/internal/database"
	"plutoTodo/internal/models/category"
	"plutoTodo/internal/models/task"
	"plutoTodo/internal/repository"
	"plutoTodo/internal/repository/postgres"
	"plutoTodo/internal/repository/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite интеграционные тесты на настоящем PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	// схема и сиды теми же миграциями, что и в приложении
	db, err := database.OpenPostgres(s.connString)
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.Init(s.ctx, db, query.Postgres))
	require.NoError(s.T(), database.Init(s.ctx, db, query.Postgres))
	require.NoError(s.T(), db.Close())

	s.storage, err = postgres.New(s.ctx, s.connString, postgres.Options{})
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает задачи перед каждым тестом, категории по умолчанию остаются
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "TRUNCATE task_tags, tasks")
	require.NoError(s.T(), err)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) newTask(title string, opts ...task.TaskOption) *task.Task {
	tk, err := task.New(task.CreateTaskRequest{Title: title})
	require.NoError(s.T(), err)
	tk.Apply(opts...)
	return tk
}

func (s *PostgresTestSuite) TestStorage_CreateAndGet() {
	tasks := s.storage.Tasks()
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tk := s.newTask("Test Task",
		task.WithDescription("Test Description"),
		task.WithPriority(task.PriorityLow),
		task.WithDueDate(due),
		task.WithTags([]string{"home", "later"}),
	)
	require.NoError(s.T(), tasks.Create(s.ctx, tk))

	got, err := tasks.GetByID(s.ctx, tk.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Test Task", got.Title)
	require.NotNil(s.T(), got.Description)
	assert.Equal(s.T(), "Test Description", *got.Description)
	assert.Equal(s.T(), task.PriorityLow, got.Priority)
	require.NotNil(s.T(), got.DueDate)
	assert.True(s.T(), due.Equal(*got.DueDate))
	assert.ElementsMatch(s.T(), []string{"home", "later"}, got.Tags)

	_, err = tasks.GetByID(s.ctx, uuid.New())
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_ListFilters() {
	tasks := s.storage.Tasks()

	parent := s.newTask("Plan trip")
	parent.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(s.T(), tasks.Create(s.ctx, parent))

	first := s.newTask("Book HOTEL", task.WithParent(&parent.ID))
	first.CreatedAt = parent.CreatedAt.Add(time.Minute)
	require.NoError(s.T(), tasks.Create(s.ctx, first))

	second := s.newTask("Buy tickets", task.WithParent(&parent.ID), task.WithCompleted(true))
	second.CreatedAt = parent.CreatedAt.Add(2 * time.Minute)
	require.NoError(s.T(), tasks.Create(s.ctx, second))

	children, err := tasks.List(s.ctx, task.ChildrenOf(parent.ID))
	require.NoError(s.T(), err)
	require.Len(s.T(), children, 2)
	assert.Equal(s.T(), first.ID, children[0].ID)
	assert.Equal(s.T(), second.ID, children[1].ID)

	found, err := tasks.List(s.ctx, task.Filter{SearchQuery: "hotel"})
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	assert.Equal(s.T(), first.ID, found[0].ID)

	roots, err := tasks.List(s.ctx, task.Roots())
	require.NoError(s.T(), err)
	assert.Len(s.T(), roots, 1)

	completed := true
	done, err := tasks.List(s.ctx, task.Filter{Completed: &completed})
	require.NoError(s.T(), err)
	assert.Len(s.T(), done, 1)

	has, err := tasks.HasChildren(s.ctx, parent.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), has)
}

func (s *PostgresTestSuite) TestStorage_UpdateDelete() {
	tasks := s.storage.Tasks()

	tk := s.newTask("Original Title", task.WithTags([]string{"a"}))
	require.NoError(s.T(), tasks.Create(s.ctx, tk))

	tk.Apply(task.WithTitle("Updated Title"), task.WithTags([]string{"b", "c"}))
	require.NoError(s.T(), tasks.Update(s.ctx, tk))

	got, err := tasks.GetByID(s.ctx, tk.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Updated Title", got.Title)
	assert.Equal(s.T(), []string{"b", "c"}, got.Tags)

	require.NoError(s.T(), tasks.Delete(s.ctx, tk.ID))
	assert.ErrorIs(s.T(), tasks.Delete(s.ctx, tk.ID), repository.ErrNotFound)
	assert.ErrorIs(s.T(), tasks.Update(s.ctx, tk), repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestStorage_ClearCategory() {
	tasks := s.storage.Tasks()

	c, err := category.New(category.CreateCategoryRequest{Name: "Errands", Color: "#123456"})
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.storage.Categories().Create(s.ctx, c))
	defer s.storage.Categories().Delete(s.ctx, c.ID)

	old := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	linked := s.newTask("Pick up parcel", task.WithCategory(c.ID))
	linked.UpdatedAt = old
	require.NoError(s.T(), tasks.Create(s.ctx, linked))

	require.NoError(s.T(), tasks.ClearCategory(s.ctx, c.ID))

	got, err := tasks.GetByID(s.ctx, linked.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got.CategoryID)
	assert.True(s.T(), got.UpdatedAt.After(old))
}

func (s *PostgresTestSuite) TestCategories() {
	categories := s.storage.Categories()

	list, err := categories.List(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 4)

	c, err := category.New(category.CreateCategoryRequest{Name: "Garden", Color: "#00FF00"})
	require.NoError(s.T(), err)
	require.NoError(s.T(), categories.Create(s.ctx, c))

	tk := s.newTask("Water plants", task.WithCategory(c.ID))
	require.NoError(s.T(), s.storage.Tasks().Create(s.ctx, tk))

	// ON DELETE SET NULL в схеме
	require.NoError(s.T(), categories.Delete(s.ctx, c.ID))

	got, err := s.storage.Tasks().GetByID(s.ctx, tk.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got.CategoryID)

	_, err = categories.GetByID(s.ctx, c.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}
