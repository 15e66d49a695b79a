// Package querybuilder renders the small set of Postgres statements the
// repositories need, numbering $n placeholders in argument order.
package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// stmt accumulates SQL text and its positional arguments.
type stmt struct {
	sql  strings.Builder
	args []any
}

func (s *stmt) write(parts ...string) {
	for _, p := range parts {
		s.sql.WriteString(p)
	}
}

func (s *stmt) bind(v any) {
	s.args = append(s.args, v)
	s.sql.WriteByte('$')
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

// expand writes expr with each '?' bound to the next value. Surplus '?' are
// kept verbatim.
func (s *stmt) expand(expr string, values []any) {
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && len(values) > 0 {
			s.bind(values[0])
			values = values[1:]
			continue
		}
		s.sql.WriteByte(expr[i])
	}
}

func (s *stmt) conditions(keyword string, conds []Condition) {
	if len(conds) == 0 {
		return
	}
	s.write(" ", keyword, " ")
	for i, c := range conds {
		if i > 0 {
			s.write(" AND ")
		}
		c.render(s)
	}
}

func (s *stmt) done() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

type Condition interface {
	render(s *stmt)
}

type conditionFunc func(s *stmt)

func (f conditionFunc) render(s *stmt) { f(s) }

func compare(column, op string, value any) Condition {
	return conditionFunc(func(s *stmt) {
		s.write(column, " ", op, " ")
		s.bind(value)
	})
}

func Eq(column string, value any) Condition { return compare(column, "=", value) }

func Gte(column string, value any) Condition { return compare(column, ">=", value) }

// ILike matches case-insensitively; callers supply the % wildcards.
func ILike(column, pattern string) Condition { return compare(column, "ILIKE", pattern) }

// EqLiteral inlines a quoted constant, which lets partial indexes such as
// "WHERE status = 'active'" match the predicate.
func EqLiteral(column, value string) Condition {
	return conditionFunc(func(s *stmt) {
		s.write(column, " = '", strings.ReplaceAll(value, "'", "''"), "'")
	})
}

// In renders an always-false predicate for an empty list.
func In(column string, values []any) Condition {
	return conditionFunc(func(s *stmt) {
		if len(values) == 0 {
			s.write("1=0")
			return
		}
		s.write(column, " IN (")
		for i, v := range values {
			if i > 0 {
				s.write(", ")
			}
			s.bind(v)
		}
		s.write(")")
	})
}

// Expr is a raw predicate with '?' markers for its args.
func Expr(expr string, args ...any) Condition {
	return conditionFunc(func(s *stmt) { s.expand(expr, args) })
}

// Or groups conditions as (a OR b OR ...).
func Or(conds ...Condition) Condition {
	return conditionFunc(func(s *stmt) {
		if len(conds) == 0 {
			s.write("1=0")
			return
		}
		s.write("(")
		for i, c := range conds {
			if i > 0 {
				s.write(" OR ")
			}
			c.render(s)
		}
		s.write(")")
	})
}

type SelectBuilder struct {
	columns   []string
	table     string
	where     []Condition
	groupBy   []string
	having    []Condition
	orderBy   []string
	limit     int
	offset    int
	forUpdate bool
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.where = append(b.where, conds...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

// Having filters groups; it is only rendered after a GROUP BY.
func (b *SelectBuilder) Having(conds ...Condition) *SelectBuilder {
	b.having = append(b.having, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) Offset(offset int) *SelectBuilder {
	b.offset = offset
	return b
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (b *SelectBuilder) ForUpdate() *SelectBuilder {
	b.forUpdate = true
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, errors.New("select: no columns")
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("select: no table")
	case len(b.having) > 0 && len(b.groupBy) == 0:
		return "", nil, errors.New("select: having without group by")
	}

	var s stmt
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	s.conditions("WHERE", b.where)
	if len(b.groupBy) > 0 {
		s.write(" GROUP BY ", strings.Join(b.groupBy, ", "))
	}
	s.conditions("HAVING", b.having)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		s.write(" OFFSET ", strconv.Itoa(b.offset))
	}
	if b.forUpdate {
		s.write(" FOR UPDATE")
	}
	return s.done()
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values appends one row; call it once per row for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix is appended verbatim, typically ON CONFLICT or RETURNING.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("insert: no table")
	case len(b.columns) == 0:
		return "", nil, errors.New("insert: no columns")
	case len(b.rows) == 0:
		return "", nil, errors.New("insert: no rows")
	}

	var s stmt
	s.args = make([]any, 0, len(b.rows)*len(b.columns))
	s.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert: row %d has %d values for %d columns", i, len(row), len(b.columns))
		}
		if i > 0 {
			s.write(", ")
		}
		s.write("(")
		for j, v := range row {
			if j > 0 {
				s.write(", ")
			}
			s.bind(v)
		}
		s.write(")")
	}
	if b.suffix != "" {
		s.write(" ", b.suffix)
	}
	return s.done()
}

type UpdateBuilder struct {
	table   string
	columns []string
	values  []any
	where   []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.columns = append(b.columns, column)
	b.values = append(b.values, value)
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.where = append(b.where, conds...)
	return b
}

// ToSQL refuses an UPDATE without a WHERE clause.
func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("update: no table")
	case len(b.columns) == 0:
		return "", nil, errors.New("update: nothing to set")
	case len(b.where) == 0:
		return "", nil, errors.New("update: missing where clause")
	}

	var s stmt
	s.write("UPDATE ", b.table, " SET ")
	for i, col := range b.columns {
		if i > 0 {
			s.write(", ")
		}
		s.write(col, " = ")
		s.bind(b.values[i])
	}
	s.conditions("WHERE", b.where)
	return s.done()
}
