package builder

import (
	"fmt"
	"strings"
)

type statementKind int

const (
	kindNone statementKind = iota
	kindSelect
	kindInsert
	kindDelete
)

// clause is a condition fragment with "?" placeholders and its arguments.
type clause struct {
	sql  string
	args []interface{}
}

// SQLBuilder constructs PostgreSQL statements with "$n" placeholders. Every
// condition is ANDed with the others.
type SQLBuilder struct {
	kind       statementKind
	distinct   bool
	table      string
	columns    []string
	rows       [][]interface{}
	where      []clause
	orderBy    []string
	onConflict string
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.kind = kindSelect
	b.columns = cols
	return b
}

// Distinct turns the SELECT into SELECT DISTINCT.
func (b *SQLBuilder) Distinct() *SQLBuilder {
	b.distinct = true
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.kind = kindInsert
	b.table = table
	b.columns = cols
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.kind = kindDelete
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Values appends one row to an INSERT. Call it once per row.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.rows = append(b.rows, vals)
	return b
}

// OnConflict appends an ON CONFLICT clause to an INSERT, e.g.
// "(id) DO NOTHING".
func (b *SQLBuilder) OnConflict(action string) *SQLBuilder {
	b.onConflict = action
	return b
}

// Where adds a condition that is ANDed with the other Where conditions.
func (b *SQLBuilder) Where(condition string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, clause{condition, args})
	return b
}

// WhereInOrEmpty adds "(col = '' OR col IN (...))". An empty value list adds
// nothing, so an empty selection leaves the column unconstrained, and a row
// with no value for col is never excluded by the selection.
func (b *SQLBuilder) WhereInOrEmpty(col string, vals ...interface{}) *SQLBuilder {
	if len(vals) == 0 {
		return b
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", ")
	return b.Where("("+col+" = '' OR "+col+" IN ("+marks+"))", vals...)
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// binder numbers placeholders across the whole statement.
type binder struct {
	next int
	args []interface{}
}

func (p *binder) bind(c clause) string {
	var sb strings.Builder
	parts := strings.Split(c.sql, "?")
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 {
			p.next++
			fmt.Fprintf(&sb, "$%d", p.next)
		}
	}
	p.args = append(p.args, c.args...)
	return sb.String()
}

func (p *binder) value(v interface{}) string {
	p.next++
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", p.next)
}

// Build constructs the final SQL string and arguments. It does not modify the
// builder and may be called repeatedly.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	p := &binder{}

	switch b.kind {
	case kindSelect:
		sb.WriteString("SELECT ")
		if b.distinct {
			sb.WriteString("DISTINCT ")
		}
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
	case kindInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES ")
		rows := make([]string, len(b.rows))
		for i, row := range b.rows {
			marks := make([]string, len(row))
			for j, v := range row {
				marks[j] = p.value(v)
			}
			rows[i] = "(" + strings.Join(marks, ", ") + ")"
		}
		sb.WriteString(strings.Join(rows, ", "))
		if b.onConflict != "" {
			sb.WriteString(" ON CONFLICT ")
			sb.WriteString(b.onConflict)
		}
		return sb.String(), p.args
	case kindDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.where) > 0 {
		conds := make([]string, len(b.where))
		for i, c := range b.where {
			conds[i] = p.bind(c)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	return sb.String(), p.args
}

// check reports the first clause whose placeholder count differs from its
// argument count.
func (b *SQLBuilder) check() error {
	for _, c := range b.where {
		if n := strings.Count(c.sql, "?"); n != len(c.args) {
			return fmt.Errorf("placeholder count (%d) does not match argument count (%d) in %q", n, len(c.args), c.sql)
		}
	}
	for _, row := range b.rows {
		if len(row) != len(b.columns) {
			return fmt.Errorf("row has %d values for %d columns", len(row), len(b.columns))
		}
	}
	return nil
}

// BuildSafe is Build with validation that every clause has as many
// arguments as placeholders and every row matches the column list.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	if err := b.check(); err != nil {
		return "", nil, err
	}
	sql, args := b.Build()
	return sql, args, nil
}
