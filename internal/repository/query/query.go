// Package query переводит task.Filter в набор именованных предикатов со значениями.
// Один и тот же набор рендерится в SQL с плейсхолдерами или проверяется в памяти.
package query

import (
	"strings"
	"time"

	"plutoTodo/internal/models/task"

	"github.com/google/uuid"
)

type Op string

const (
	OpEq     Op = "="
	OpIsNull Op = "IS NULL"
	OpBefore Op = "<="
	OpAfter  Op = ">="
	OpSearch Op = "SEARCH"
)

const (
	searchColumns = "title,description"
)

type Predicate struct {
	Name   string
	Column string
	Op     Op
	Value  any
}

type Query struct {
	predicates []Predicate
	children   bool
}

func Build(f task.Filter) *Query {
	q := &Query{}

	if f.Completed != nil {
		q.add("completed", "completed", OpEq, *f.Completed)
	}
	if f.Priority != nil {
		q.add("priority", "priority", OpEq, string(*f.Priority))
	}

	// no_category перекрывает category_id
	if f.NoCategory {
		q.add("no_category", "category_id", OpIsNull, nil)
	} else if f.CategoryID != nil {
		q.add("category_id", "category_id", OpEq, *f.CategoryID)
	}

	if f.ParentID != nil {
		q.add("parent_id", "parent_id", OpEq, *f.ParentID)
		q.children = true
	} else if f.RootOnly {
		q.add("root", "parent_id", OpIsNull, nil)
	}

	if f.SearchQuery != "" {
		q.add("search", searchColumns, OpSearch, f.SearchQuery)
	}

	if due, ok := task.ParseDueBefore(f.DueBefore); ok {
		q.add("due_before", "due_date", OpBefore, due)
	}
	if due, ok := task.ParseDueAfter(f.DueAfter); ok {
		q.add("due_after", "due_date", OpAfter, due)
	}

	return q
}

func (q *Query) add(name, column string, op Op, value any) {
	q.predicates = append(q.predicates, Predicate{Name: name, Column: column, Op: op, Value: value})
}

func (q *Query) Predicates() []Predicate {
	return q.predicates
}

func (q *Query) Has(name string) bool {
	for _, p := range q.predicates {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Children true, когда запрашиваются прямые подзадачи: они идут от старых к новым
func (q *Query) Children() bool {
	return q.children
}

// Where возвращает " WHERE ..." (или пустую строку) и значения для плейсхолдеров
func (q *Query) Where(d Dialect) (string, []any) {
	if len(q.predicates) == 0 {
		return "", nil
	}

	conds := make([]string, 0, len(q.predicates))
	args := make([]any, 0, len(q.predicates)+1)
	bind := func(v any) string {
		args = append(args, v)
		return d.Placeholder(len(args))
	}

	for _, p := range q.predicates {
		switch p.Op {
		case OpIsNull:
			conds = append(conds, p.Column+" IS NULL")
		case OpSearch:
			pattern := "%" + escapeLike(p.Value.(string)) + "%"
			columns := strings.Split(p.Column, ",")
			parts := make([]string, 0, len(columns))
			for _, col := range columns {
				parts = append(parts, d.likeExpr(col, bind(pattern)))
			}
			conds = append(conds, "("+strings.Join(parts, " OR ")+")")
		default:
			v := p.Value
			if t, ok := v.(time.Time); ok {
				v = d.Time(t)
			}
			conds = append(conds, p.Column+" "+string(p.Op)+" "+bind(v))
		}
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (q *Query) OrderBy() string {
	if q.children {
		return " ORDER BY created_at ASC, id ASC"
	}
	return " ORDER BY created_at DESC, id DESC"
}

// Match проверяет задачу теми же предикатами, что и SQL
func (q *Query) Match(t *task.Task) bool {
	for _, p := range q.predicates {
		if !p.match(t) {
			return false
		}
	}
	return true
}

// Less задаёт тот же порядок, что и OrderBy
func (q *Query) Less(a, b *task.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if q.children {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	}
	if q.children {
		return a.ID.String() < b.ID.String()
	}
	return a.ID.String() > b.ID.String()
}

func (p Predicate) match(t *task.Task) bool {
	switch p.Name {
	case "completed":
		return t.Completed == p.Value.(bool)
	case "priority":
		return string(t.Priority) == p.Value.(string)
	case "category_id":
		return equalID(t.CategoryID, p.Value.(uuid.UUID))
	case "no_category":
		return t.CategoryID == nil
	case "parent_id":
		return equalID(t.ParentID, p.Value.(uuid.UUID))
	case "root":
		return t.ParentID == nil
	case "search":
		needle := strings.ToLower(p.Value.(string))
		if strings.Contains(strings.ToLower(t.Title), needle) {
			return true
		}
		return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
	case "due_before":
		return t.DueDate != nil && !t.DueDate.After(p.Value.(time.Time))
	case "due_after":
		return t.DueDate != nil && !t.DueDate.Before(p.Value.(time.Time))
	default:
		return true
	}
}

func equalID(id *uuid.UUID, want uuid.UUID) bool {
	return id != nil && *id == want
}
