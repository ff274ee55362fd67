package output

import (
	"bytes"
	"testing"

	"plutoTodo/internal/models/task"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "json": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatter_YAMLUsesJSONKeys(t *testing.T) {
	id := uuid.New()
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML, &buf).Print(&task.Task{ID: id, Title: "x", Priority: task.PriorityHigh}))

	assert.Contains(t, buf.String(), "id: "+id.String())
	assert.Contains(t, buf.String(), "category_id: null")
	assert.Contains(t, buf.String(), "priority: High")
}

func TestTaskTree_Indents(t *testing.T) {
	root := &task.Task{ID: uuid.New(), Title: "root", Priority: task.PriorityMedium}
	child := &task.Task{ID: uuid.New(), Title: "child", ParentID: &root.ID, Priority: task.PriorityMedium}
	grandchild := &task.Task{ID: uuid.New(), Title: "grandchild", ParentID: &child.ID, Completed: true, Priority: task.PriorityLow}

	lines := bytes.Split([]byte(TaskTree([]*task.Task{root, child, grandchild})), []byte("\n"))
	require.Len(t, lines, 3)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("[ ]")))
	assert.True(t, bytes.HasPrefix(lines[1], []byte("  [ ]")))
	assert.True(t, bytes.HasPrefix(lines[2], []byte("    [x]")))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, "Подзадач нет", Progress(task.Progress{}))
	assert.Equal(t, "1/4 выполнено (25.0%)", Progress(task.NewProgress(4, 1)))
}
