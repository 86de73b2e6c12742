// Package query builds parameterized SQL criteria the way the domain
// repositories need them: independently composable AND filters, a fixed
// ORDER BY, and a count query guaranteed to share the data query's WHERE
// clause.
package query

import (
	"fmt"
	"strings"
)

// Builder accumulates WHERE clauses and renders SELECT, COUNT and DELETE
// statements over a single table.
type Builder struct {
	table   string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
	limit   *int
	offset  *int
}

// New creates a Builder for the given table and select column list.
func New(table, cols string) *Builder {
	return &Builder{
		table: table,
		cols:  cols,
		idx:   1,
	}
}

// Idx returns the next available parameter index.
func (b *Builder) Idx() int { return b.idx }

// Add appends a raw WHERE clause fragment (without leading "AND"). The
// fragment must use placeholders starting at Idx().
func (b *Builder) Add(clause string, args ...interface{}) {
	b.where += " AND " + clause
	b.args = append(b.args, args...)
	b.idx += len(args)
}

// Eq adds an equality filter.
func (b *Builder) Eq(column string, value interface{}) {
	b.Add(fmt.Sprintf("%s = $%d", column, b.idx), value)
}

// Ge adds a >= filter (inclusive lower bound).
func (b *Builder) Ge(column string, value interface{}) {
	b.Add(fmt.Sprintf("%s >= $%d", column, b.idx), value)
}

// Le adds a <= filter (inclusive upper bound).
func (b *Builder) Le(column string, value interface{}) {
	b.Add(fmt.Sprintf("%s <= $%d", column, b.idx), value)
}

// In adds an IN filter. Adding an empty value set is a no-op, which gives
// "absent filter" semantics for optional set-valued criteria.
func (b *Builder) In(column string, values ...interface{}) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", b.idx+i)
	}
	b.Add(fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")), values...)
}

// IsNull adds an IS NULL filter.
func (b *Builder) IsNull(column string) {
	b.where += " AND " + column + " IS NULL"
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (b *Builder) OrderBy(orderBy string) {
	b.orderBy = orderBy
}

// Page sets optional offset and limit. Nil means unbounded.
func (b *Builder) Page(offset, limit *int) {
	b.offset = offset
	b.limit = limit
}

// CountSQL returns the count query SQL over the same WHERE clause as SelectSQL.
func (b *Builder) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", b.table, b.where)
}

// CountArgs returns the arguments for the count query.
func (b *Builder) CountArgs() []interface{} {
	return b.args
}

// SelectSQL returns the data query SQL with ORDER BY and any LIMIT/OFFSET.
func (b *Builder) SelectSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", b.cols, b.table, b.where)
	if b.orderBy != "" {
		sql += " ORDER BY " + b.orderBy
	}
	idx := b.idx
	if b.limit != nil {
		sql += fmt.Sprintf(" LIMIT $%d", idx)
		idx++
	}
	if b.offset != nil {
		sql += fmt.Sprintf(" OFFSET $%d", idx)
	}
	return sql
}

// SelectArgs returns the arguments for the data query.
func (b *Builder) SelectArgs() []interface{} {
	args := make([]interface{}, len(b.args), len(b.args)+2)
	copy(args, b.args)
	if b.limit != nil {
		args = append(args, *b.limit)
	}
	if b.offset != nil {
		args = append(args, *b.offset)
	}
	return args
}

// DeleteSQL returns a DELETE statement over the accumulated WHERE clause.
func (b *Builder) DeleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE 1=1%s", b.table, b.where)
}
