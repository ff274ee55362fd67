package task

import "time"

const (
	startOfDay = "T00:00:00Z"
	endOfDay   = "T23:59:59Z"
)

// ParseDueDate принимает RFC3339 или голую дату YYYY-MM-DD (начало дня, UTC).
// Пустая или нераспознанная строка означает "без срока".
func ParseDueDate(s string) (time.Time, bool) {
	return parseWithDefaultTime(s, startOfDay)
}

// ParseDueBefore для голой даты берёт конец дня, чтобы фильтр включал весь день
func ParseDueBefore(s string) (time.Time, bool) {
	return parseWithDefaultTime(s, endOfDay)
}

func ParseDueAfter(s string) (time.Time, bool) {
	return parseWithDefaultTime(s, startOfDay)
}

func parseWithDefaultTime(s, suffix string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s+suffix); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
