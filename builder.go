package qail

// This file is the public AST builder surface (spec §4.2). Every mutator
// is a method on *Command that returns the same *Command, so calls chain:
//
//	cmd := qail.Get("harbors").Columns("id", "name").Limit(10)
//
// No mutator performs I/O or touches state shared with any other Command;
// each Command built this way is thereafter treated as an immutable value
// by the encoder.

// Get creates a SELECT-shaped command.
func Get(table string) *Command {
	c := newCommand(ActionGet, table)
	return &c
}

// Add creates an INSERT-shaped command.
func Add(table string) *Command {
	c := newCommand(ActionAdd, table)
	return &c
}

// Set creates an UPDATE-shaped command.
func Set(table string) *Command {
	c := newCommand(ActionSet, table)
	return &c
}

// Del creates a DELETE-shaped command.
func Del(table string) *Command {
	c := newCommand(ActionDel, table)
	return &c
}

// Make creates a CREATE TABLE-shaped command.
func Make(table string) *Command {
	c := newCommand(ActionMake, table)
	return &c
}

// Index creates a CREATE INDEX-shaped command over a single column.
func Index(table, col string) *Command {
	c := newCommand(ActionIndex, table)
	c.IndexCol = col
	return &c
}

// Drop creates a DROP TABLE-shaped command.
func Drop(table string) *Command {
	c := newCommand(ActionDrop, table)
	return &c
}

// CreateView creates a CREATE VIEW-shaped command; the view body is the
// Command of its last WithCTE entry, which the encoder renders after
// `CREATE VIEW name AS`.
func CreateView(name string) *Command {
	c := newCommand(ActionCreateView, name)
	return &c
}

// DropView creates a DROP VIEW-shaped command.
func DropView(name string) *Command {
	c := newCommand(ActionDropView, name)
	return &c
}

// Columns appends bare column references to the command's column/select
// list, in call order.
func (c *Command) Columns(cols ...string) *Command {
	for _, col := range cols {
		c.ColumnList = append(c.ColumnList, ColumnRef{Name: col})
	}
	return c
}

// ColumnExpr appends an expression (e.g. an aggregate, a cast, a JSON
// access) to the column/select list.
func (c *Command) ColumnExpr(e Expr) *Command {
	ex := e
	c.ColumnList = append(c.ColumnList, ColumnRef{Expr: &ex})
	return c
}

// SelectAll clears any explicit column list so the encoder emits `*`.
func (c *Command) SelectAll() *Command {
	c.ColumnList = nil
	return c
}

// Filter appends `col op val` to the WHERE clause, AND-ed with whatever
// filters are already present.
func (c *Command) Filter(col string, op Operator, val interface{}) *Command {
	return c.FilterCond(Cmp(Named(col), op, Literal(toValue(val))))
}

// FilterCond AND-combines an arbitrary Condition into the WHERE clause.
func (c *Command) FilterCond(cond Condition) *Command {
	c.FilterTree = andInto(c.FilterTree, cond)
	return c
}

// OrFilterCond OR-combines an arbitrary Condition into the WHERE clause:
// the existing filter (if any) becomes one OR arm, cond becomes the other.
func (c *Command) OrFilterCond(cond Condition) *Command {
	if c.FilterTree == nil {
		c.FilterTree = &cond
		return c
	}
	combined := Or(*c.FilterTree, cond)
	c.FilterTree = &combined
	return c
}

// WhereEq is shorthand for Filter(col, Eq, val).
func (c *Command) WhereEq(col string, val interface{}) *Command {
	return c.Filter(col, Eq, val)
}

func andInto(existing *Condition, cond Condition) *Condition {
	if existing == nil {
		return &cond
	}
	combined := And(*existing, cond)
	return &combined
}

// OrderBy appends an ORDER BY term in call order.
func (c *Command) OrderBy(col string, desc bool) *Command {
	c.Order = append(c.Order, OrderTerm{Expr: Named(col), Desc: desc})
	return c
}

// OrderDesc is shorthand for OrderBy(col, true).
func (c *Command) OrderDesc(col string) *Command {
	return c.OrderBy(col, true)
}

// Limit sets the LIMIT clause.
func (c *Command) Limit(n int64) *Command {
	c.LimitN = &n
	return c
}

// Offset sets the OFFSET clause.
func (c *Command) Offset(n int64) *Command {
	c.OffsetN = &n
	return c
}

// LeftJoin, RightJoin, InnerJoin, OuterJoin append a join clause of the
// matching kind: `<kind> table ON onLeft = onRight`.
func (c *Command) LeftJoin(table, onLeft, onRight string) *Command {
	return c.join(JoinLeft, table, onLeft, onRight)
}
func (c *Command) RightJoin(table, onLeft, onRight string) *Command {
	return c.join(JoinRight, table, onLeft, onRight)
}
func (c *Command) InnerJoin(table, onLeft, onRight string) *Command {
	return c.join(JoinInner, table, onLeft, onRight)
}
func (c *Command) OuterJoin(table, onLeft, onRight string) *Command {
	return c.join(JoinOuter, table, onLeft, onRight)
}

func (c *Command) join(kind JoinKind, table, onLeft, onRight string) *Command {
	c.Joins = append(c.Joins, Join{Kind: kind, Table: table, OnLeft: onLeft, OnRight: onRight})
	return c
}

// WithCTE prepends a `WITH name AS (command)` entry.
func (c *Command) WithCTE(name string, sub Command) *Command {
	c.CTEs = append(c.CTEs, CTE{Name: name, Command: sub})
	return c
}

// Returning appends bare columns to the RETURNING clause.
func (c *Command) Returning(cols ...string) *Command {
	for _, col := range cols {
		c.ReturningCols = append(c.ReturningCols, ColumnRef{Name: col})
	}
	return c
}

// GroupByCols sets a Simple GROUP BY over the given columns.
func (c *Command) GroupByCols(cols ...string) *Command {
	exprs := make([]Expr, len(cols))
	for i, col := range cols {
		exprs[i] = Named(col)
	}
	c.GroupByClause = &GroupBy{Mode: GroupSimple, Columns: exprs}
	return c
}

// SetGroupBy sets an arbitrary GROUP BY clause (Rollup/Cube/GroupingSets).
func (c *Command) SetGroupBy(g GroupBy) *Command {
	gb := g
	c.GroupByClause = &gb
	return c
}

// Having sets the HAVING clause.
func (c *Command) Having(cond Condition) *Command {
	c.HavingCond = &cond
	return c
}

// OnConflictDoUpdate sets an `ON CONFLICT (conflictCols) DO UPDATE SET ...`
// clause. Call SetValue afterward to populate the SET list.
func (c *Command) OnConflictDoUpdate(conflictCols ...string) *Command {
	c.OnConflictClause = &OnConflict{Columns: conflictCols, Action: ConflictDoUpdate}
	return c
}

// OnConflictDoNothing sets an `ON CONFLICT (conflictCols) DO NOTHING` clause.
func (c *Command) OnConflictDoNothing(conflictCols ...string) *Command {
	c.OnConflictClause = &OnConflict{Columns: conflictCols, Action: ConflictDoNothing}
	return c
}

// SetValue appends `column = value` to Set's assignment list (or, when an
// OnConflictDoUpdate clause is active, to that clause's update list).
func (c *Command) SetValue(column string, value interface{}) *Command {
	assign := Assignment{Column: column, Value: Literal(toValue(value))}
	if c.OnConflictClause != nil && c.OnConflictClause.Action == ConflictDoUpdate {
		c.OnConflictClause.Updates = append(c.OnConflictClause.Updates, assign)
		return c
	}
	c.Assignments = append(c.Assignments, assign)
	return c
}

// Values appends one positional row of literal values for Add. ColumnNames
// must already be set via ColumnNamesFor so the encoder knows the arity.
func (c *Command) Values(vals ...interface{}) *Command {
	exprs := make([]Expr, len(vals))
	for i, v := range vals {
		exprs[i] = Literal(toValue(v))
	}
	c.Rows = append(c.Rows, ValueRow{Values: exprs})
	return c
}

// ColumnNamesFor sets the column list an Add's Values rows are positional
// against.
func (c *Command) ColumnNamesFor(names ...string) *Command {
	c.ColumnNames = names
	return c
}

// SetTableAlias sets the command's table alias.
func (c *Command) SetTableAlias(alias string) *Command {
	c.TableAlias = alias
	return c
}

// MaxDepth overrides the default recursion-depth guard (spec §9, default
// 256) applied to this command's expression tree.
func (c *Command) MaxDepth(n int) *Command {
	c.maxDepth = n
	return c
}

// toValue adapts a handful of common Go scalar types into Value, so
// builder callers can write Filter("active", Eq, true) instead of
// Filter("active", Eq, qail.Bool(true)).
func toValue(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int64(int64(t))
	case int32:
		return Int64(int64(t))
	case int64:
		return Int64(t)
	case float32:
		return Float64(float64(t))
	case float64:
		return Float64(t)
	case string:
		return Text(t)
	case []byte:
		return Bytes(t)
	default:
		return Text("")
	}
}
