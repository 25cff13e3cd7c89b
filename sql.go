package qail

import (
	"strconv"
	"strings"
)

// This file compiles a Command's AST directly into SQL text (spec §4.4).
// Literal values are always inlined as SQL constants (so two Commands
// that differ only in a Literal's value are, correctly, different
// fingerprints and different prepared statements); Param(i) references
// always render as a "$i+1" placeholder bound at execute time, which is
// the mechanism that lets one compiled/prepared shape serve many
// executions. The builder in builder.go always produces Literal nodes;
// Param is for callers constructing the AST directly for maximum
// statement-cache reuse (spec §9).

// pgReservedWords holds the SQL:2016/PostgreSQL "reserved" keyword set
// (lowercase). An identifier colliding with one of these must be quoted
// even when it otherwise needs no escaping.
var pgReservedWords = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "asymmetric": true, "both": true,
	"case": true, "cast": true, "check": true, "collate": true, "column": true,
	"constraint": true, "create": true, "current_catalog": true, "current_date": true,
	"current_role": true, "current_time": true, "current_timestamp": true,
	"current_user": true, "default": true, "deferrable": true, "desc": true,
	"distinct": true, "do": true, "else": true, "end": true, "except": true,
	"false": true, "fetch": true, "for": true, "foreign": true, "from": true,
	"grant": true, "group": true, "having": true, "in": true, "initially": true,
	"intersect": true, "into": true, "lateral": true, "leading": true,
	"limit": true, "localtime": true, "localtimestamp": true, "not": true,
	"null": true, "offset": true, "on": true, "only": true, "or": true,
	"order": true, "placing": true, "primary": true, "references": true,
	"returning": true, "select": true, "session_user": true, "some": true,
	"symmetric": true, "table": true, "then": true, "to": true, "trailing": true,
	"true": true, "union": true, "unique": true, "user": true, "using": true,
	"variadic": true, "when": true, "where": true, "window": true, "with": true,
}

// identNeedsQuoting reports whether name contains a byte outside
// [A-Za-z0-9_] or collides (case-insensitively) with a reserved word —
// the only two cases spec.md §4.4 requires double-quoting for.
func identNeedsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return true
		}
	}
	return pgReservedWords[strings.ToLower(name)]
}

// quoteIdent renders name as a Postgres identifier, double-quoting (and
// escaping embedded quotes by doubling them) only when identNeedsQuoting
// requires it, so plain table/column names pass through unquoted.
func quoteIdent(name string) string {
	if !identNeedsQuoting(name) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 2)
	b.WriteByte('"')
	for _, r := range name {
		if r == '"' {
			b.WriteByte('"')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// quoteLiteral renders v as an inline SQL constant.
func quoteLiteral(v Value) (string, error) {
	switch v.Kind() {
	case KindNull:
		return "NULL", nil
	case KindBool:
		if v.Bool() {
			return "TRUE", nil
		}
		return "FALSE", nil
	case KindInt64:
		return strconv.FormatInt(v.Int64(), 10), nil
	case KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64), nil
	case KindNumeric:
		return "'" + v.Decimal().String() + "'", nil
	default:
		text, err := EncodeText(v, nil)
		if err != nil {
			return "", err
		}
		quoted := "'" + strings.ReplaceAll(string(text), "'", "''") + "'"
		switch v.Kind() {
		case KindUuid:
			return quoted + "::uuid", nil
		case KindTimestamp:
			if v.HasTZ() {
				return quoted + "::timestamptz", nil
			}
			return quoted + "::timestamp", nil
		case KindJsonRaw:
			return quoted + "::jsonb", nil
		default:
			return quoted, nil
		}
	}
}

func renderColumnType(ct ColumnType) string {
	switch ct.Base {
	case TVarchar:
		if ct.Len > 0 {
			return "varchar(" + strconv.Itoa(ct.Len) + ")"
		}
		return "varchar"
	case TDecimal:
		if ct.Precision > 0 {
			return "decimal(" + strconv.Itoa(ct.Precision) + "," + strconv.Itoa(ct.Scale) + ")"
		}
		return "decimal"
	default:
		return ct.Base.String()
	}
}

// sqlRenderer walks a Command/Expr/Condition tree and produces SQL text,
// tracking the recursion-depth guard from spec §9 and the highest Param
// index referenced so callers can sanity-check the bind-value count they
// supply at execute time.
type sqlRenderer struct {
	b        strings.Builder
	maxDepth int
	maxParam int // -1 means no Param node was seen
	err      error
}

func newSQLRenderer(maxDepth int) *sqlRenderer {
	if maxDepth <= 0 {
		maxDepth = defaultMaxExprDepth
	}
	return &sqlRenderer{maxDepth: maxDepth, maxParam: -1}
}

func (r *sqlRenderer) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Compile renders a full Command (including any WITH prefix) into SQL
// text, returning the highest Param index referenced (-1 if none).
func Compile(c *Command) (string, int, error) {
	r := newSQLRenderer(c.maxDepth)
	r.renderCommand(*c)
	if r.err != nil {
		return "", 0, r.err
	}
	return r.b.String(), r.maxParam, nil
}

func (r *sqlRenderer) renderCommand(c Command) {
	// A CreateView's CTE is its view body (renderCreateView), not a WITH clause.
	if len(c.CTEs) > 0 && c.Action != ActionCreateView {
		r.b.WriteString("WITH ")
		for i, cte := range c.CTEs {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.b.WriteString(quoteIdent(cte.Name))
			r.b.WriteString(" AS (")
			r.renderCommand(cte.Command)
			r.b.WriteByte(')')
		}
		r.b.WriteByte(' ')
	}

	switch c.Action {
	case ActionGet:
		r.renderSelect(c)
	case ActionAdd:
		r.renderInsert(c)
	case ActionSet:
		r.renderUpdate(c)
	case ActionDel:
		r.renderDelete(c)
	case ActionMake:
		r.renderCreateTable(c)
	case ActionIndex:
		r.renderCreateIndex(c)
	case ActionDrop:
		r.b.WriteString("DROP TABLE ")
		r.b.WriteString(quoteIdent(c.Table))
	case ActionCreateView:
		r.renderCreateView(c)
	case ActionDropView:
		r.b.WriteString("DROP VIEW ")
		r.b.WriteString(quoteIdent(c.Table))
	default:
		r.fail(InvalidAstError("unknown command action"))
	}
}

func (r *sqlRenderer) renderSelect(c Command) {
	r.b.WriteString("SELECT ")
	r.renderColumnList(c.ColumnList)
	r.b.WriteString(" FROM ")
	r.b.WriteString(quoteIdent(c.Table))
	if c.TableAlias != "" {
		r.b.WriteString(" AS ")
		r.b.WriteString(quoteIdent(c.TableAlias))
	}
	for _, j := range c.Joins {
		r.b.WriteByte(' ')
		r.b.WriteString(j.Kind.String())
		r.b.WriteByte(' ')
		r.b.WriteString(quoteIdent(j.Table))
		if j.Alias != "" {
			r.b.WriteString(" AS ")
			r.b.WriteString(quoteIdent(j.Alias))
		}
		r.b.WriteString(" ON ")
		r.b.WriteString(j.OnLeft)
		r.b.WriteString(" = ")
		r.b.WriteString(j.OnRight)
	}
	if c.FilterTree != nil {
		r.b.WriteString(" WHERE ")
		r.renderCondition(*c.FilterTree, 0)
	}
	r.renderGroupBy(c.GroupByClause)
	if c.HavingCond != nil {
		r.b.WriteString(" HAVING ")
		r.renderCondition(*c.HavingCond, 0)
	}
	r.renderOrderBy(c.Order)
	r.renderLimitOffset(c.LimitN, c.OffsetN)
}

func (r *sqlRenderer) renderColumnList(cols []ColumnRef) {
	if len(cols) == 0 {
		r.b.WriteByte('*')
		return
	}
	for i, col := range cols {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.renderColumnRef(col)
	}
}

func (r *sqlRenderer) renderColumnRef(col ColumnRef) {
	if col.Expr != nil {
		r.renderExpr(*col.Expr, 0)
		return
	}
	r.b.WriteString(col.Name)
}

func (r *sqlRenderer) renderGroupBy(g *GroupBy) {
	if g == nil {
		return
	}
	r.b.WriteString(" GROUP BY ")
	switch g.Mode {
	case GroupRollup, GroupCube:
		if g.Mode == GroupRollup {
			r.b.WriteString("ROLLUP (")
		} else {
			r.b.WriteString("CUBE (")
		}
		for i, e := range g.Columns {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.renderExpr(e, 0)
		}
		r.b.WriteByte(')')
	case GroupSets:
		r.b.WriteString("GROUPING SETS (")
		for i, set := range g.Sets {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.b.WriteByte('(')
			for j, e := range set {
				if j > 0 {
					r.b.WriteString(", ")
				}
				r.renderExpr(e, 0)
			}
			r.b.WriteByte(')')
		}
		r.b.WriteByte(')')
	default:
		for i, e := range g.Columns {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.renderExpr(e, 0)
		}
	}
}

func (r *sqlRenderer) renderOrderBy(order []OrderTerm) {
	if len(order) == 0 {
		return
	}
	r.b.WriteString(" ORDER BY ")
	for i, o := range order {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.renderExpr(o.Expr, 0)
		if o.Desc {
			r.b.WriteString(" DESC")
		}
	}
}

func (r *sqlRenderer) renderLimitOffset(limit, offset *int64) {
	if limit != nil {
		r.b.WriteString(" LIMIT ")
		r.b.WriteString(strconv.FormatInt(*limit, 10))
	}
	if offset != nil {
		r.b.WriteString(" OFFSET ")
		r.b.WriteString(strconv.FormatInt(*offset, 10))
	}
}

func (r *sqlRenderer) renderInsert(c Command) {
	if len(c.ColumnNames) == 0 {
		r.fail(InvalidAstError("add requires at least one column name"))
		return
	}
	r.b.WriteString("INSERT INTO ")
	r.b.WriteString(quoteIdent(c.Table))
	r.b.WriteByte('(')
	for i, name := range c.ColumnNames {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.b.WriteString(quoteIdent(name))
	}
	r.b.WriteString(") VALUES ")

	switch {
	case len(c.Rows) > 0:
		for i, row := range c.Rows {
			if len(row.Values) != len(c.ColumnNames) {
				r.fail(InvalidAstError("add row arity does not match column list"))
				return
			}
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.b.WriteByte('(')
			for j, v := range row.Values {
				if j > 0 {
					r.b.WriteString(", ")
				}
				r.renderExpr(v, 0)
			}
			r.b.WriteByte(')')
		}
	case len(c.Maps) > 0:
		for i, m := range c.Maps {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.b.WriteByte('(')
			for j, name := range c.ColumnNames {
				if j > 0 {
					r.b.WriteString(", ")
				}
				e, ok := m[name]
				if !ok {
					r.fail(InvalidAstError("add map row is missing column " + name))
					return
				}
				r.renderExpr(e, 0)
			}
			r.b.WriteByte(')')
		}
	default:
		r.fail(InvalidAstError("add requires at least one row"))
		return
	}

	if c.OnConflictClause != nil {
		r.renderOnConflict(*c.OnConflictClause)
	}
	if len(c.ReturningCols) > 0 {
		r.b.WriteString(" RETURNING ")
		r.renderColumnList(c.ReturningCols)
	}
}

func (r *sqlRenderer) renderOnConflict(oc OnConflict) {
	r.b.WriteString(" ON CONFLICT")
	if len(oc.Columns) > 0 {
		r.b.WriteByte('(')
		for i, col := range oc.Columns {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.b.WriteString(quoteIdent(col))
		}
		r.b.WriteByte(')')
	}
	switch oc.Action {
	case ConflictDoNothing:
		r.b.WriteString(" DO NOTHING")
	case ConflictDoUpdate:
		r.b.WriteString(" DO UPDATE SET ")
		for i, a := range oc.Updates {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.b.WriteString(quoteIdent(a.Column))
			r.b.WriteString(" = ")
			r.renderExpr(a.Value, 0)
		}
	}
}

func (r *sqlRenderer) renderUpdate(c Command) {
	if len(c.Assignments) == 0 {
		r.fail(InvalidAstError("set requires at least one assignment"))
		return
	}
	r.b.WriteString("UPDATE ")
	r.b.WriteString(quoteIdent(c.Table))
	r.b.WriteString(" SET ")
	for i, a := range c.Assignments {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.b.WriteString(quoteIdent(a.Column))
		r.b.WriteString(" = ")
		r.renderExpr(a.Value, 0)
	}
	if c.FilterTree != nil {
		r.b.WriteString(" WHERE ")
		r.renderCondition(*c.FilterTree, 0)
	}
	if len(c.ReturningCols) > 0 {
		r.b.WriteString(" RETURNING ")
		r.renderColumnList(c.ReturningCols)
	}
}

func (r *sqlRenderer) renderDelete(c Command) {
	r.b.WriteString("DELETE FROM ")
	r.b.WriteString(quoteIdent(c.Table))
	if c.FilterTree != nil {
		r.b.WriteString(" WHERE ")
		r.renderCondition(*c.FilterTree, 0)
	}
	if len(c.ReturningCols) > 0 {
		r.b.WriteString(" RETURNING ")
		r.renderColumnList(c.ReturningCols)
	}
}

func (r *sqlRenderer) renderCreateTable(c Command) {
	if len(c.ColumnList) == 0 {
		r.fail(InvalidAstError("make requires at least one column definition"))
		return
	}
	r.b.WriteString("CREATE TABLE ")
	r.b.WriteString(quoteIdent(c.Table))
	r.b.WriteString(" (")
	for i, col := range c.ColumnList {
		if i > 0 {
			r.b.WriteString(", ")
		}
		if col.Expr == nil || col.Expr.Kind != ExprCast {
			r.fail(InvalidAstError("make column definitions must be Cast(Named(col), type)"))
			return
		}
		inner := col.Expr.Inner
		if inner == nil || inner.Kind != ExprNamed {
			r.fail(InvalidAstError("make column definitions must name a column"))
			return
		}
		r.b.WriteString(quoteIdent(inner.Name))
		r.b.WriteByte(' ')
		r.b.WriteString(renderColumnType(col.Expr.CastTarget))
		if inner.Name == c.IndexCol {
			r.b.WriteString(" PRIMARY KEY")
		}
	}
	r.b.WriteByte(')')
}

func (r *sqlRenderer) renderCreateIndex(c Command) {
	if c.IndexCol == "" {
		r.fail(InvalidAstError("index requires a target column"))
		return
	}
	r.b.WriteString("CREATE INDEX ")
	r.b.WriteString(quoteIdent("idx_" + c.Table + "_" + c.IndexCol))
	r.b.WriteString(" ON ")
	r.b.WriteString(quoteIdent(c.Table))
	r.b.WriteByte('(')
	r.b.WriteString(quoteIdent(c.IndexCol))
	r.b.WriteByte(')')
}

func (r *sqlRenderer) renderCreateView(c Command) {
	if len(c.CTEs) == 0 {
		r.fail(InvalidAstError("create_view requires the view body as its sole CTE"))
		return
	}
	r.b.WriteString("CREATE VIEW ")
	r.b.WriteString(quoteIdent(c.Table))
	r.b.WriteString(" AS ")
	r.renderCommand(c.CTEs[len(c.CTEs)-1].Command)
}

func (r *sqlRenderer) renderExpr(e Expr, depth int) {
	if r.err != nil {
		return
	}
	if depth > r.maxDepth {
		r.fail(InvalidAstError("expression exceeds max depth"))
		return
	}

	switch e.Kind {
	case ExprNamed:
		r.b.WriteString(e.Name)
	case ExprAliased:
		r.renderExpr(*e.Inner, depth+1)
		r.b.WriteString(" AS ")
		r.b.WriteString(quoteIdent(e.Alias))
		return
	case ExprLiteral:
		lit, err := quoteLiteral(e.Lit)
		if err != nil {
			r.fail(err)
			return
		}
		r.b.WriteString(lit)
	case ExprParam:
		if e.ParamIndex > r.maxParam {
			r.maxParam = e.ParamIndex
		}
		r.b.WriteByte('$')
		r.b.WriteString(strconv.Itoa(e.ParamIndex + 1))
	case ExprAggregate:
		r.b.WriteString(e.AggFn)
		r.b.WriteByte('(')
		if e.AggDistinct {
			r.b.WriteString("DISTINCT ")
		}
		if e.AggArg != nil {
			r.renderExpr(*e.AggArg, depth+1)
		} else {
			r.b.WriteByte('*')
		}
		r.b.WriteByte(')')
		if e.AggFilter != nil {
			r.b.WriteString(" FILTER (WHERE ")
			r.renderCondition(*e.AggFilter, depth+1)
			r.b.WriteByte(')')
		}
	case ExprWindow:
		r.b.WriteString(e.WinFn)
		r.b.WriteByte('(')
		for i, a := range e.WinArgs {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.renderExpr(a, depth+1)
		}
		r.b.WriteString(") OVER (")
		if len(e.WinPartition) > 0 {
			r.b.WriteString("PARTITION BY ")
			for i, p := range e.WinPartition {
				if i > 0 {
					r.b.WriteString(", ")
				}
				r.renderExpr(p, depth+1)
			}
		}
		if len(e.WinOrder) > 0 {
			if len(e.WinPartition) > 0 {
				r.b.WriteByte(' ')
			}
			r.b.WriteString("ORDER BY ")
			for i, o := range e.WinOrder {
				if i > 0 {
					r.b.WriteString(", ")
				}
				r.renderExpr(o.Expr, depth+1)
				if o.Desc {
					r.b.WriteString(" DESC")
				}
			}
		}
		if e.WinFrame != nil {
			r.b.WriteByte(' ')
			r.renderFrame(*e.WinFrame)
		}
		r.b.WriteByte(')')
	case ExprCase:
		r.b.WriteString("CASE")
		for _, w := range e.Whens {
			r.b.WriteString(" WHEN ")
			r.renderCondition(w.Cond, depth+1)
			r.b.WriteString(" THEN ")
			r.renderExpr(w.Value, depth+1)
		}
		if e.Else != nil {
			r.b.WriteString(" ELSE ")
			r.renderExpr(*e.Else, depth+1)
		}
		r.b.WriteString(" END")
	case ExprCast:
		r.b.WriteByte('(')
		r.renderExpr(*e.Inner, depth+1)
		r.b.WriteString(")::")
		r.b.WriteString(renderColumnType(e.CastTarget))
	case ExprJsonAccess:
		if len(e.JsonPath) == 0 {
			r.fail(InvalidAstError("json access requires at least one path segment"))
			return
		}
		r.b.WriteString(e.Name)
		for _, seg := range e.JsonPath {
			if seg.Arrow == JsonText {
				r.b.WriteString("->>")
			} else {
				r.b.WriteString("->")
			}
			quoted, err := quoteLiteral(Text(seg.Key))
			if err != nil {
				r.fail(err)
				return
			}
			r.b.WriteString(quoted)
		}
	case ExprBinary:
		r.b.WriteByte('(')
		r.renderExpr(*e.Lhs, depth+1)
		r.b.WriteByte(' ')
		r.b.WriteString(e.Op)
		r.b.WriteByte(' ')
		r.renderExpr(*e.Rhs, depth+1)
		r.b.WriteByte(')')
	case ExprFunc:
		r.b.WriteString(e.FuncName)
		r.b.WriteByte('(')
		for i, a := range e.FuncArgs {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.renderExpr(a, depth+1)
		}
		r.b.WriteByte(')')
	case ExprArrayConstructor:
		r.b.WriteString("ARRAY[")
		for i, el := range e.Elements {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.renderExpr(el, depth+1)
		}
		r.b.WriteByte(']')
	case ExprRowConstructor:
		r.b.WriteString("ROW(")
		for i, el := range e.Elements {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.renderExpr(el, depth+1)
		}
		r.b.WriteByte(')')
	case ExprSubscript:
		r.renderExpr(*e.SubExpr, depth+1)
		r.b.WriteByte('[')
		r.renderExpr(*e.SubIndex, depth+1)
		r.b.WriteByte(']')
	case ExprCollate:
		r.renderExpr(*e.Inner, depth+1)
		r.b.WriteString(" COLLATE ")
		r.b.WriteString(quoteIdent(e.Name))
	case ExprFieldAccess:
		r.b.WriteByte('(')
		r.renderExpr(*e.Inner, depth+1)
		r.b.WriteString(").")
		r.b.WriteString(quoteIdent(e.Name))
	case ExprSubquery:
		if e.Subquery == nil {
			r.fail(InvalidAstError("subquery expression has no command"))
			return
		}
		r.b.WriteByte('(')
		r.renderCommand(*e.Subquery)
		r.b.WriteByte(')')
	default:
		r.fail(InvalidAstError("unknown expression kind"))
		return
	}

	if e.Alias != "" && e.Kind != ExprAliased {
		r.b.WriteString(" AS ")
		r.b.WriteString(quoteIdent(e.Alias))
	}
}

func (r *sqlRenderer) renderFrame(f WindowFrame) {
	switch f.Kind {
	case FrameRange:
		r.b.WriteString("RANGE BETWEEN ")
	case FrameGroups:
		r.b.WriteString("GROUPS BETWEEN ")
	default:
		r.b.WriteString("ROWS BETWEEN ")
	}
	r.renderBound(f.StartBound, f.StartOffset)
	r.b.WriteString(" AND ")
	if f.HasEnd {
		r.renderBound(f.EndBound, f.EndOffset)
	} else {
		r.b.WriteString("CURRENT ROW")
	}
}

func (r *sqlRenderer) renderBound(b FrameBound, offset int64) {
	switch b {
	case BoundUnboundedPreceding:
		r.b.WriteString("UNBOUNDED PRECEDING")
	case BoundPreceding:
		r.b.WriteString(strconv.FormatInt(offset, 10) + " PRECEDING")
	case BoundCurrentRow:
		r.b.WriteString("CURRENT ROW")
	case BoundFollowing:
		r.b.WriteString(strconv.FormatInt(offset, 10) + " FOLLOWING")
	case BoundUnboundedFollowing:
		r.b.WriteString("UNBOUNDED FOLLOWING")
	}
}

func (r *sqlRenderer) renderCondition(c Condition, depth int) {
	if r.err != nil {
		return
	}
	if depth > r.maxDepth {
		r.fail(InvalidAstError("condition tree exceeds max depth"))
		return
	}
	switch c.Kind {
	case CondAnd, CondOr:
		sep := " AND "
		if c.Kind == CondOr {
			sep = " OR "
		}
		r.b.WriteByte('(')
		for i, child := range c.Children {
			if i > 0 {
				r.b.WriteString(sep)
			}
			r.renderCondition(child, depth+1)
		}
		r.b.WriteByte(')')
	case CondNot:
		r.b.WriteString("NOT (")
		if c.Operand != nil {
			r.renderCondition(*c.Operand, depth+1)
		}
		r.b.WriteByte(')')
	case CondCmp:
		r.renderCmp(c, depth)
	default:
		r.fail(InvalidAstError("unknown condition kind"))
	}
}

func (r *sqlRenderer) renderCmp(c Condition, depth int) {
	if err := c.Validate(); err != nil {
		r.fail(err)
		return
	}
	r.b.WriteByte('(')
	r.renderExpr(c.Lhs, depth+1)
	switch c.Op {
	case IsNull, IsNotNull:
		r.b.WriteByte(' ')
		r.b.WriteString(c.Op.String())
	case Between:
		r.b.WriteString(" BETWEEN ")
		r.renderExpr(*c.Lower, depth+1)
		r.b.WriteString(" AND ")
		r.renderExpr(*c.Upper, depth+1)
	case In, NotIn:
		r.b.WriteByte(' ')
		r.b.WriteString(c.Op.String())
		r.b.WriteString(" (")
		switch c.RhsKind {
		case RhsList:
			for i, e := range c.RhsList {
				if i > 0 {
					r.b.WriteString(", ")
				}
				r.renderExpr(e, depth+1)
			}
		case RhsSubquery:
			r.renderCommand(*c.RhsSub)
		}
		r.b.WriteByte(')')
	default:
		r.b.WriteByte(' ')
		r.b.WriteString(c.Op.String())
		r.b.WriteByte(' ')
		r.renderExpr(*c.Rhs, depth+1)
	}
	r.b.WriteByte(')')
}
