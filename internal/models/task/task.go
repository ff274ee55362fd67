package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle      = errors.New("название задачи не может быть пустым")
	ErrInvalidPriority = errors.New("неизвестный приоритет")
)

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Tags        []string   `json:"tags"`
	ParentID    *uuid.UUID `json:"parent_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Priority string

const PriorityLow Priority = "Low"
const PriorityMedium Priority = "Medium"
const PriorityHigh Priority = "High"

// неизвестные значения молча превращаются в Medium
func ParsePriority(s string) Priority {
	if p, err := LookupPriority(s); err == nil {
		return p
	}
	return PriorityMedium
}

// LookupPriority строгий разбор: допустимы только Low, Medium и High
func LookupPriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityHigh, PriorityMedium:
		return Priority(s), nil
	default:
		return "", fmt.Errorf("%w %q: допустимы Low, Medium, High", ErrInvalidPriority, s)
	}
}

// UnmarshalJSON строгий, запросы на создание и изменение несут приоритет строкой и приводят его через ParsePriority
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := LookupPriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Progress агрегирует выполнение по всем потомкам задачи
type Progress struct {
	Total       int     `json:"total_subtasks"`
	Completed   int     `json:"completed_subtasks"`
	Percentage  float64 `json:"progress_percentage"`
	HasSubtasks bool    `json:"has_subtasks"`
}

func NewProgress(total, completed int) Progress {
	if total == 0 {
		return Progress{}
	}
	return Progress{
		Total:       total,
		Completed:   completed,
		Percentage:  float64(completed) / float64(total) * 100,
		HasSubtasks: true,
	}
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

func New(req CreateTaskRequest) (*Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	t := &Task{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Priority:    PriorityMedium,
		CategoryID:  req.CategoryID,
		Tags:        NormalizeTags(req.Tags),
		ParentID:    req.ParentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Priority != nil {
		t.Priority = ParsePriority(*req.Priority)
	}
	if req.DueDate != nil {
		if due, ok := ParseDueDate(*req.DueDate); ok {
			t.DueDate = &due
		}
	}
	return t, nil
}

// Update применяет только присутствующие поля, UpdatedAt обновляется всегда
func (t *Task) Update(req UpdateTaskRequest) error {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return ErrEmptyTitle
	}
	t.Apply(req.Options()...)
	return nil
}

// Touch обновляет UpdatedAt без изменения полей
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// NormalizeTags убирает пустые теги и дубликаты, сохраняя порядок
func NormalizeTags(tags []string) []string {
	res := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		res = append(res, tag)
	}
	return res
}
