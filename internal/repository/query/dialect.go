package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SQLiteTimeLayout фиксированной ширины: лексикографический порядок совпадает с временным
const SQLiteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type Dialect struct {
	Name string

	dollar    bool
	like      string
	timeValue func(time.Time) any
}

var SQLite = Dialect{
	Name:      "sqlite3",
	// go_lower регистрируется на соединении: встроенный LIKE складывает регистр только для ASCII
	like:      `go_lower(%s) LIKE go_lower(%s) ESCAPE '\'`,
	timeValue: func(t time.Time) any {
		return t.UTC().Format(SQLiteTimeLayout)
	},
}

var Postgres = Dialect{
	Name:      "postgres",
	dollar:    true,
	like:      "%s ILIKE %s",
	timeValue: func(t time.Time) any {
		return t.UTC()
	},
}

func (d Dialect) Placeholder(n int) string {
	if d.dollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Time приводит время к виду, в котором диалект хранит timestamp
func (d Dialect) Time(t time.Time) any {
	return d.timeValue(t)
}

// Rebind переписывает плейсхолдеры '?' в стиль диалекта
func (d Dialect) Rebind(q string) string {
	if !d.dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) likeExpr(column, placeholder string) string {
	return fmt.Sprintf(d.like, column, placeholder)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
