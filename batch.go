package qail

import "github.com/qail-lang/qail/internal/wire"

// This file implements the uniform-batch fast path (spec §4.4, §5): many
// Add rows sharing one column list and one ON CONFLICT/RETURNING shape
// compile to a single Parse, one Bind+Execute pair per row, and exactly
// one Sync for the whole pipeline. Rows built via the qail builder hold
// Literal values (see builder.go's Values helper); the batch compiler
// ignores the literal's value when building the SQL template and instead
// binds it as a parameter, so every row after the first reuses the same
// prepared statement.

// BatchPlan is a compiled uniform batch: one parameterized SQL template
// plus the per-row bind values extracted from the command's Rows.
type BatchPlan struct {
	SQL        string
	ParamCount int
	RowValues  [][]Value
}

// CompileBatch compiles an Add command's Rows into a BatchPlan. It
// rejects Maps-shaped Add commands (spec §9: map rows don't guarantee a
// uniform column order across rows, so they always compile per-row
// instead of batching).
func CompileBatch(c *Command) (*BatchPlan, error) {
	if c.Action != ActionAdd {
		return nil, InvalidAstError("batch compilation only supports add commands")
	}
	if len(c.Maps) > 0 {
		return nil, InvalidAstError("map-shaped add rows cannot use the uniform batch path")
	}
	if len(c.Rows) == 0 {
		return nil, InvalidAstError("add requires at least one row")
	}
	if len(c.ColumnNames) == 0 {
		return nil, InvalidAstError("add requires at least one column name")
	}

	rowValues := make([][]Value, len(c.Rows))
	for i, row := range c.Rows {
		if len(row.Values) != len(c.ColumnNames) {
			return nil, InvalidAstError("add row arity does not match column list")
		}
		vals := make([]Value, len(row.Values))
		for j, e := range row.Values {
			v, ok := literalValue(e)
			if !ok {
				return nil, InvalidAstError("batch rows must hold literal values")
			}
			vals[j] = v
		}
		rowValues[i] = vals
	}

	sql := renderBatchTemplate(*c)
	return &BatchPlan{SQL: sql, ParamCount: len(c.ColumnNames), RowValues: rowValues}, nil
}

func literalValue(e Expr) (Value, bool) {
	if e.Kind != ExprLiteral {
		return Value{}, false
	}
	return e.Lit, true
}

// renderBatchTemplate renders "INSERT INTO t(cols) VALUES ($1,...,$N)
// [ON CONFLICT ...] [RETURNING ...]" — a single row's worth of
// placeholders, reused for every row in the batch via repeated Bind.
func renderBatchTemplate(c Command) string {
	r := newSQLRenderer(c.maxDepth)
	r.b.WriteString("INSERT INTO ")
	r.b.WriteString(quoteIdent(c.Table))
	r.b.WriteByte('(')
	for i, name := range c.ColumnNames {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.b.WriteString(quoteIdent(name))
	}
	r.b.WriteString(") VALUES (")
	for i := range c.ColumnNames {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.b.WriteByte('$')
		r.b.WriteString(itoa(i + 1))
	}
	r.b.WriteByte(')')
	if c.OnConflictClause != nil {
		r.renderOnConflict(*c.OnConflictClause)
	}
	if len(c.ReturningCols) > 0 {
		r.b.WriteString(" RETURNING ")
		r.renderColumnList(c.ReturningCols)
	}
	return r.b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// BuildBatchFrames appends the full pipeline for plan under stmtName:
// one Parse, then one Bind+Execute per row, then exactly one Sync. A
// zero-row plan appends nothing (spec §8: a zero-statement pipeline
// sends no Sync at all).
func BuildBatchFrames(buf []byte, stmtName string, plan *BatchPlan) ([]byte, error) {
	if len(plan.RowValues) == 0 {
		return buf, nil
	}
	parsePlan := &PreparedPlan{SQL: plan.SQL, ParamCount: plan.ParamCount}
	buf = BuildParseFrame(buf, stmtName, parsePlan)
	for i, values := range plan.RowValues {
		if len(values) != plan.ParamCount {
			return nil, InvalidAstError("batch row value count does not match parameter count")
		}
		portal := "" // unnamed portal, rebound per row
		var err error
		buf, err = BuildBindFrame(buf, portal, stmtName, values)
		if err != nil {
			return nil, err
		}
		buf = BuildExecuteFrame(buf, portal, 0)
	}
	buf = wire.WriteSync(buf)
	return buf, nil
}
