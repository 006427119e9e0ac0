package attendance

import (
	"strconv"
	"strings"
)

// Assignment is one "column = value" pair of a partial update.
type Assignment struct {
	Column string
	Value  any
}

// Assignments collects the present fields of a patch in request order.
type Assignments []Assignment

// AddString appends column when v is present and non-empty.
func (a *Assignments) AddString(column string, v *string) {
	if v != nil && *v != "" {
		*a = append(*a, Assignment{Column: column, Value: *v})
	}
}

// AddInt64 appends column when v is present and non-zero.
func (a *Assignments) AddInt64(column string, v *int64) {
	if v != nil && *v != 0 {
		*a = append(*a, Assignment{Column: column, Value: *v})
	}
}

// updateStatement renders a single parameterized UPDATE over exactly the
// assigned columns. Placeholders are numbered in order of appearance, with
// the key last.
func updateStatement(table, keyColumn string, id int64, set Assignments) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(set)+1)
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	for i, a := range set {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Column)
		b.WriteString(" = $")
		b.WriteString(strconv.Itoa(i + 1))
		args = append(args, a.Value)
	}
	b.WriteString(" WHERE ")
	b.WriteString(keyColumn)
	b.WriteString(" = $")
	b.WriteString(strconv.Itoa(len(set) + 1))
	args = append(args, id)
	return b.String(), args
}
