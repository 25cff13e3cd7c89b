package qail

// ArrowKind selects between jsonb's `->` (object/array result) and `->>`
// (text result) accessors.
type ArrowKind int

const (
	JsonObj ArrowKind = iota
	JsonText
)

// JsonPathSegment is one `->`/`->>` hop in a JsonAccess chain.
type JsonPathSegment struct {
	Key   string
	Arrow ArrowKind
}

// AggFunc enumerates the aggregate functions the encoder recognizes by
// name for FILTER-clause validation purposes; any other identifier is
// still accepted and passed through as a generic function name.
type AggFunc string

const (
	AggCount AggFunc = "count"
	AggSum   AggFunc = "sum"
	AggAvg   AggFunc = "avg"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

// FrameKind enumerates window-frame modes.
type FrameKind int

const (
	FrameRows FrameKind = iota
	FrameRange
	FrameGroups
)

// FrameBound enumerates window-frame boundary kinds.
type FrameBound int

const (
	BoundUnboundedPreceding FrameBound = iota
	BoundPreceding
	BoundCurrentRow
	BoundFollowing
	BoundUnboundedFollowing
)

// WindowFrame describes a ROWS/RANGE/GROUPS frame clause.
type WindowFrame struct {
	Kind         FrameKind
	StartBound   FrameBound
	StartOffset  int64 // meaningful only for Preceding/Following
	EndBound     FrameBound
	EndOffset    int64
	HasEnd       bool
}

// OrderTerm is one ORDER BY entry, shared between query-level ordering and
// window ORDER BY clauses.
type OrderTerm struct {
	Expr Expr
	Desc bool
}

// ExprKind tags the Expr sum type's active variant.
type ExprKind int

const (
	ExprNamed ExprKind = iota
	ExprAliased
	ExprLiteral
	ExprAggregate
	ExprWindow
	ExprCase
	ExprCast
	ExprJsonAccess
	ExprBinary
	ExprFunc
	ExprArrayConstructor
	ExprRowConstructor
	ExprSubscript
	ExprCollate
	ExprFieldAccess
	ExprSubquery
	ExprParam
)

// CaseWhen is one WHEN/THEN arm of a Case expression.
type CaseWhen struct {
	Cond  Condition
	Value Expr
}

// Expr is the expression algebra node. Exactly one field is meaningful for
// a given Kind; constructors below keep callers from having to populate
// the struct by hand.
type Expr struct {
	Kind  ExprKind
	Alias string

	// ExprNamed / ExprFieldAccess (field name) / ExprCollate (collation)
	Name string

	// ExprAliased, ExprFieldAccess, ExprCollate: the wrapped sub-expression.
	Inner *Expr

	// ExprLiteral
	Lit Value

	// ExprAggregate
	AggFn       string
	AggArg      *Expr
	AggDistinct bool
	AggFilter   *Condition

	// ExprWindow
	WinFn        string
	WinArgs      []Expr
	WinPartition []Expr
	WinOrder     []OrderTerm
	WinFrame     *WindowFrame

	// ExprCase
	Whens []CaseWhen
	Else  *Expr

	// ExprCast
	CastTarget ColumnType

	// ExprJsonAccess
	JsonPath []JsonPathSegment

	// ExprBinary
	Lhs *Expr
	Op  string
	Rhs *Expr

	// ExprFunc
	FuncName string
	FuncArgs []Expr

	// ExprArrayConstructor / ExprRowConstructor
	Elements []Expr

	// ExprSubscript
	SubExpr  *Expr
	SubIndex *Expr

	// ExprSubquery
	Subquery *Command

	// ExprParam
	ParamIndex int
}

// Named references a bare column (or a column expression the caller
// already formatted, e.g. "t.col").
func Named(col string) Expr { return Expr{Kind: ExprNamed, Name: col} }

// Aliased wraps an expression with an output alias (`AS alias`).
func Aliased(e Expr, alias string) Expr {
	inner := e
	return Expr{Kind: ExprAliased, Inner: &inner, Alias: alias}
}

// Literal wraps a constant Value as an expression.
func Literal(v Value) Expr { return Expr{Kind: ExprLiteral, Lit: v} }

// Param references the i'th positional parameter ($1-style, 0-indexed
// internally; the encoder renders it as $(i+1)).
func Param(index int) Expr { return Expr{Kind: ExprParam, ParamIndex: index} }

// Aggregate builds an aggregate-function expression, optionally with
// DISTINCT and a FILTER(WHERE ...) clause.
func Aggregate(fn string, arg Expr, distinct bool, filter *Condition, alias string) Expr {
	a := arg
	return Expr{Kind: ExprAggregate, AggFn: fn, AggArg: &a, AggDistinct: distinct, AggFilter: filter, Alias: alias}
}

// Window builds a window-function expression.
func Window(fn string, args []Expr, partition []Expr, order []OrderTerm, frame *WindowFrame, alias string) Expr {
	return Expr{Kind: ExprWindow, WinFn: fn, WinArgs: args, WinPartition: partition, WinOrder: order, WinFrame: frame, Alias: alias}
}

// Case builds a CASE WHEN ... THEN ... [ELSE ...] END expression.
func Case(whens []CaseWhen, elseVal *Expr, alias string) Expr {
	return Expr{Kind: ExprCase, Whens: whens, Else: elseVal, Alias: alias}
}

// Cast builds an `expr::target_type` cast expression.
func Cast(e Expr, target ColumnType, alias string) Expr {
	inner := e
	return Expr{Kind: ExprCast, Inner: &inner, CastTarget: target, Alias: alias}
}

// JsonAccess builds a `column -> 'a' -> 'b' ->> 'c'`-style path expression.
// An empty path is an encoder-time InvalidAst error (spec §9).
func JsonAccess(column string, path []JsonPathSegment, alias string) Expr {
	return Expr{Kind: ExprJsonAccess, Name: column, JsonPath: path, Alias: alias}
}

// Binary builds a binary-operator expression (e.g. arithmetic, string
// concatenation) distinct from the boolean Condition tree.
func Binary(lhs Expr, op string, rhs Expr) Expr {
	l, r := lhs, rhs
	return Expr{Kind: ExprBinary, Lhs: &l, Op: op, Rhs: &r}
}

// Func builds a generic function-call expression.
func Func(name string, args ...Expr) Expr {
	return Expr{Kind: ExprFunc, FuncName: name, FuncArgs: args}
}

// ArrayConstructor builds an `ARRAY[...]` expression.
func ArrayConstructor(elements ...Expr) Expr {
	return Expr{Kind: ExprArrayConstructor, Elements: elements}
}

// RowConstructor builds a `ROW(...)` expression.
func RowConstructor(elements ...Expr) Expr {
	return Expr{Kind: ExprRowConstructor, Elements: elements}
}

// Subscript builds an `expr[index]` expression.
func Subscript(e, index Expr) Expr {
	se, si := e, index
	return Expr{Kind: ExprSubscript, SubExpr: &se, SubIndex: &si}
}

// Collate builds an `expr COLLATE "collation"` expression.
func Collate(e Expr, collation string) Expr {
	inner := e
	return Expr{Kind: ExprCollate, Inner: &inner, Name: collation}
}

// FieldAccess builds a `(expr).field` composite-type field access.
func FieldAccess(e Expr, field string) Expr {
	inner := e
	return Expr{Kind: ExprFieldAccess, Inner: &inner, Name: field}
}

// Subquery wraps a nested Command as a scalar/row subquery expression.
func Subquery(cmd Command) Expr {
	c := cmd
	return Expr{Kind: ExprSubquery, Subquery: &c}
}
