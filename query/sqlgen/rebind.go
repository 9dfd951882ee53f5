package sqlgen

import (
	"strconv"
	"strings"
)

// RebindSQL rewrites "?" placeholders into the numbered "$N" form the
// postgres wire protocol expects. Question marks inside single-quoted
// literals are left alone. Compilation always emits "?"; rebinding is an
// execution-boundary step, so compiled text stays identical across
// dialects that share a shape.
func RebindSQL(sql string) string {
	if !strings.Contains(sql, "?") {
		return sql
	}
	var out strings.Builder
	out.Grow(len(sql) + 8)
	n := 0
	inString := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'':
			inString = !inString
			out.WriteByte(c)
		case c == '?' && !inString:
			n++
			out.WriteByte('$')
			out.WriteString(strconv.Itoa(n))
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
