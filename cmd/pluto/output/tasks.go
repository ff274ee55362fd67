package output

import (
	"fmt"
	"strings"

	"plutoTodo/internal/models/category"
	"plutoTodo/internal/models/task"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func taskLine(t *task.Task) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s  %s (%s)", mark, t.ID, t.Title, t.Priority)
	if t.DueDate != nil {
		line += "  до " + t.DueDate.Format(dateLayout)
	}
	if len(t.Tags) > 0 {
		line += "  #" + strings.Join(t.Tags, " #")
	}
	return line
}

func TaskList(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "Задач нет"
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, taskLine(t))
	}
	return strings.Join(lines, "\n")
}

// TaskTree tasks в порядке обхода в глубину, первая задача корень
func TaskTree(tasks []*task.Task) string {
	depth := make(map[uuid.UUID]int, len(tasks))
	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		d := 0
		if i > 0 && t.ParentID != nil {
			if pd, ok := depth[*t.ParentID]; ok {
				d = pd + 1
			}
		}
		depth[t.ID] = d
		lines = append(lines, strings.Repeat("  ", d)+taskLine(t))
	}
	return strings.Join(lines, "\n")
}

func Progress(p task.Progress) string {
	if !p.HasSubtasks {
		return "Подзадач нет"
	}
	return fmt.Sprintf("%d/%d выполнено (%.1f%%)", p.Completed, p.Total, p.Percentage)
}

func CategoryList(categories []*category.Category) string {
	if len(categories) == 0 {
		return "Категорий нет"
	}
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("%s  %-12s %s", c.ID, c.Name, c.Color))
	}
	return strings.Join(lines, "\n")
}
