package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"plutoTodo/internal/handlers"
	"plutoTodo/internal/models/category"
	"plutoTodo/internal/models/task"
	"plutoTodo/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskService мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) tasks(args mock.Arguments) ([]*task.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) one(args mock.Arguments) (*task.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTaskService) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*task.Task, error) {
	return m.one(m.Called(ctx, req))
}

func (m *MockTaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockTaskService) ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, f))
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, req task.UpdateTaskRequest) (*task.Task, error) {
	return m.one(m.Called(ctx, id, req))
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskService) ToggleTaskCompletion(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockTaskService) SearchTasks(ctx context.Context, q string) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, q))
}

func (m *MockTaskService) ListTasksByCategory(ctx context.Context, id uuid.UUID) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, id))
}

func (m *MockTaskService) GetSubtasks(ctx context.Context, id uuid.UUID) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, id))
}

func (m *MockTaskService) ListOverdueTasks(ctx context.Context, now time.Time) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, now))
}

func (m *MockTaskService) GetTaskHierarchy(ctx context.Context, rootID *uuid.UUID) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, rootID))
}

func (m *MockTaskService) GetTaskWithSubtasks(ctx context.Context, id uuid.UUID) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, id))
}

func (m *MockTaskService) CalculateTaskProgress(ctx context.Context, id uuid.UUID) (task.Progress, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(task.Progress), args.Error(1)
}

func (m *MockTaskService) GetIncompleteSubtasks(ctx context.Context, id uuid.UUID) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, id))
}

func (m *MockTaskService) BulkMarkSubtasksCompleted(ctx context.Context, id uuid.UUID) ([]*task.Task, error) {
	return m.tasks(m.Called(ctx, id))
}

func (m *MockTaskService) HasSubtasks(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskService) BulkHasSubtasks(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockTaskService) DeleteTaskAndSubtasks(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskService) DeleteTaskAndPromoteSubtasks(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskService) BulkDeleteTasksWithSubtasks(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockTaskService) BulkDeleteTasksAndPromoteSubtasks(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

// MockCategoryService мок сервиса категорий
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, req category.CreateCategoryRequest) (*category.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategoryByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) ListCategories(ctx context.Context) ([]*category.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req category.UpdateCategoryRequest) (*category.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

var (
	_ handlers.TaskService     = (*MockTaskService)(nil)
	_ handlers.CategoryService = (*MockCategoryService)(nil)
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}

func newServer(ts *MockTaskService, cs *MockCategoryService) http.Handler {
	h := handlers.NewHandler(ts, cs)
	r := chi.NewRouter()
	r.Get("/health", h.HealthCheck)
	r.Post("/invoke/{command}", h.Invoke)
	return r
}

func invoke(t *testing.T, srv http.Handler, command, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/invoke/"+command, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("database is locked"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := new(MockTaskService)
			tt.setupMock(ts)

			w := httptest.NewRecorder()
			newServer(ts, new(MockCategoryService)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "pluto")
			ts.AssertExpectations(t)
		})
	}
}

func TestHandler_CreateTask(t *testing.T) {
	id := uuid.New()
	parent := uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockTaskService)
		expectedStatus int
		expectSuccess  bool
	}{
		{
			name: "success",
			body: `{"request":{"title":"Buy milk","priority":"High","parent_id":"` + parent.String() + `","tags":["home"]}}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.MatchedBy(func(req task.CreateTaskRequest) bool {
					return req.Title == "Buy milk" && *req.Priority == "High" && *req.ParentID == parent
				})).Return(&task.Task{ID: id, Title: "Buy milk", Priority: task.PriorityHigh}, nil)
			},
			expectedStatus: http.StatusOK,
			expectSuccess:  true,
		},
		{
			name:           "missing request",
			body:           `{}`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"request":`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "empty title",
			body: `{"request":{"title":"  "}}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return(nil, service.NewValidationError("title", "название задачи не может быть пустым"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "parent not found",
			body: `{"request":{"title":"x","parent_id":"` + parent.String() + `"}}`,
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return(nil, service.NewNotFound("родительская задача", parent.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := new(MockTaskService)
			tt.setupMock(ts)

			w, env := invoke(t, newServer(ts, new(MockCategoryService)), "create_task", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectSuccess, env.Success)
			if tt.expectSuccess {
				assert.Nil(t, env.Error)
				var got task.Task
				require.NoError(t, json.Unmarshal(env.Data, &got))
				assert.Equal(t, id, got.ID)
			} else {
				require.NotNil(t, env.Error)
				assert.NotEmpty(t, *env.Error)
				assert.Equal(t, "null", string(env.Data))
			}
			ts.AssertExpectations(t)
		})
	}
}

func TestHandler_ErrorStatusMapping(t *testing.T) {
	id := uuid.New()
	body := `{"id":"` + id.String() + `"}`

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		message        string
	}{
		{"not found", service.NewNotFound("задача", id.String()), http.StatusNotFound, id.String()},
		{"has subtasks", service.NewHasSubtasks(id.String()), http.StatusConflict, "подзадачи"},
		{"lock contention", service.NewLockContention(context.DeadlineExceeded), http.StatusServiceUnavailable, "занято"},
		{"persistence", service.NewPersistenceError("удалить задачу", errors.New("disk I/O error")), http.StatusInternalServerError, "disk I/O error"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := new(MockTaskService)
			ts.On("DeleteTask", mock.Anything, id).Return(tt.err)

			w, env := invoke(t, newServer(ts, new(MockCategoryService)), "delete_task", body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Contains(t, *env.Error, tt.message)
		})
	}
}

func TestHandler_UnknownCommand(t *testing.T) {
	w, env := invoke(t, newServer(new(MockTaskService), new(MockCategoryService)), "drop_database", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, *env.Error, "drop_database")
}

func TestHandler_InvalidArgs(t *testing.T) {
	srv := newServer(new(MockTaskService), new(MockCategoryService))

	tests := []struct {
		command string
		body    string
	}{
		{"get_task_by_id", `{}`},
		{"get_task_by_id", `{"id":"not-a-uuid"}`},
		{"update_task", `{"id":"` + uuid.NewString() + `"}`},
		{"get_subtasks", ``},
		{"get_tasks_by_category", `{"category_id":null}`},
		{"bulk_delete_tasks_with_subtasks", `{"ids":["` + uuid.Nil.String() + `"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			w, env := invoke(t, srv, tt.command, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestHandler_UnsupportedContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/invoke/get_categories", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	newServer(new(MockTaskService), new(MockCategoryService)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestHandler_ListCommandsReturnArrays(t *testing.T) {
	ts := new(MockTaskService)
	ts.On("ListTasks", mock.Anything, task.Filter{}).Return(nil, nil)
	ts.On("ListOverdueTasks", mock.Anything, mock.Anything).Return([]*task.Task{}, nil)
	ts.On("GetTaskHierarchy", mock.Anything, (*uuid.UUID)(nil)).Return(nil, nil)
	cs := new(MockCategoryService)
	cs.On("ListCategories", mock.Anything).Return(nil, nil)
	srv := newServer(ts, cs)

	for _, command := range []string{"get_tasks", "get_overdue_tasks", "get_task_hierarchy", "get_categories"} {
		t.Run(command, func(t *testing.T) {
			w, env := invoke(t, srv, command, "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, env.Success)
			assert.Equal(t, "[]", string(env.Data))
		})
	}
	ts.AssertExpectations(t)
	cs.AssertExpectations(t)
}

func TestHandler_GetTasksFilter(t *testing.T) {
	catID := uuid.New()

	ts := new(MockTaskService)
	ts.On("ListTasks", mock.Anything, mock.MatchedBy(func(f task.Filter) bool {
		return f.CategoryID != nil && *f.CategoryID == catID &&
			f.Completed != nil && !*f.Completed &&
			f.SearchQuery == "milk" && f.DueBefore == "2025-01-31"
	})).Return([]*task.Task{{ID: uuid.New(), Title: "Buy milk"}}, nil)

	body := `{"filter":{"category_id":"` + catID.String() + `","completed":false,"search_query":"milk","due_before":"2025-01-31"}}`
	w, env := invoke(t, newServer(ts, new(MockCategoryService)), "get_tasks", body)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []task.Task
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got, 1)
	ts.AssertExpectations(t)
}

func TestHandler_GetTasksUnknownPriority(t *testing.T) {
	ts := new(MockTaskService)

	w, env := invoke(t, newServer(ts, new(MockCategoryService)), "get_tasks", `{"filter":{"priority":"bogus"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, *env.Error, "bogus")
	ts.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything)
}

func TestHandler_HierarchyCommands(t *testing.T) {
	id := uuid.New()
	other := uuid.New()
	ts := new(MockTaskService)
	ts.On("CalculateTaskProgress", mock.Anything, id).Return(task.NewProgress(4, 1), nil)
	ts.On("HasSubtasks", mock.Anything, id).Return(true, nil)
	ts.On("BulkHasSubtasks", mock.Anything, []uuid.UUID{id, other}).Return([]uuid.UUID{id}, nil)
	ts.On("BulkDeleteTasksAndPromoteSubtasks", mock.Anything, []uuid.UUID{id, other}).Return(nil)
	ts.On("GetTaskHierarchy", mock.Anything, &id).Return([]*task.Task{{ID: id}}, nil)
	srv := newServer(ts, new(MockCategoryService))

	_, env := invoke(t, srv, "calculate_task_progress", `{"id":"`+id.String()+`"}`)
	var progress task.Progress
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Equal(t, 4, progress.Total)
	assert.InDelta(t, 25.0, progress.Percentage, 0.001)
	assert.True(t, progress.HasSubtasks)

	_, env = invoke(t, srv, "check_task_has_subtasks", `{"id":"`+id.String()+`"}`)
	assert.Equal(t, "true", string(env.Data))

	ids := `{"ids":["` + id.String() + `","` + other.String() + `"]}`
	_, env = invoke(t, srv, "bulk_check_tasks_have_subtasks", ids)
	assert.JSONEq(t, `["`+id.String()+`"]`, string(env.Data))

	w, env := invoke(t, srv, "bulk_delete_tasks_and_promote_subtasks", ids)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))

	_, env = invoke(t, srv, "get_task_hierarchy", `{"root_id":"`+id.String()+`"}`)
	assert.True(t, env.Success)

	ts.AssertExpectations(t)
}

func TestHandler_CategoryCommands(t *testing.T) {
	id := uuid.New()
	icon := "Star"
	cs := new(MockCategoryService)
	cs.On("CreateCategory", mock.Anything, category.CreateCategoryRequest{Name: "Fun", Color: "#fff", Icon: &icon}).
		Return(&category.Category{ID: id, Name: "Fun", Color: "#fff", Icon: &icon}, nil)
	cs.On("UpdateCategory", mock.Anything, id, mock.MatchedBy(func(req category.UpdateCategoryRequest) bool {
		return req.Name != nil && *req.Name == "Games" && req.Color == nil
	})).Return(&category.Category{ID: id, Name: "Games"}, nil)
	cs.On("DeleteCategory", mock.Anything, id).Return(nil)
	srv := newServer(new(MockTaskService), cs)

	w, env := invoke(t, srv, "create_category", `{"name":"Fun","color":"#fff","icon":"Star"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	var got category.Category
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, id, got.ID)

	w, _ = invoke(t, srv, "update_category", `{"id":"`+id.String()+`","name":"Games"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = invoke(t, srv, "delete_category", `{"id":"`+id.String()+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	cs.AssertExpectations(t)
}

func TestHandler_Commands(t *testing.T) {
	h := handlers.NewHandler(new(MockTaskService), new(MockCategoryService))
	names := h.Commands()
	assert.Len(t, names, 26)
	assert.Contains(t, names, "delete_task_and_promote_subtasks")
	assert.IsIncreasing(t, names)
}
