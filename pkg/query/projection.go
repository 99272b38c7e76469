// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references (alias.column)
// or to expressions over them. Only Project entries are selected; Expr entries are
// available to filters and ordering.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:     schema,
		table:      table,
		alias:      alias,
		columns:    make(map[string]string),
		columnList: make([]string, 0),
	}
}

// Project adds a selected column mapping from database column to view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[viewName] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// Expr maps a view property name to a SQL expression without selecting it.
// The expression is written against the table alias, e.g. "r.data->>'status'".
func (p *ProjectionMap) Expr(expr, viewName string) *ProjectionMap {
	p.columns[viewName] = expr
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// From returns the fully qualified table reference with alias (schema.table alias).
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the mapped column or expression for a view property name,
// and whether it is mapped.
func (p *ProjectionMap) Column(viewName string) (string, bool) {
	col, ok := p.columns[viewName]
	return col, ok
}

// Columns returns all selected columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}
