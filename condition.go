package qail

// Operator enumerates the comparison operators a Cmp condition may use.
type Operator int

const (
	Eq Operator = iota
	Ne
	Gt
	Gte
	Lt
	Lte
	Like
	Ilike
	In
	NotIn
	IsNull
	IsNotNull
	Between
)

var operatorText = map[Operator]string{
	Eq:    "=",
	Ne:    "<>",
	Gt:    ">",
	Gte:   ">=",
	Lt:    "<",
	Lte:   "<=",
	Like:  "LIKE",
	Ilike: "ILIKE",
}

func (op Operator) String() string {
	if s, ok := operatorText[op]; ok {
		return s
	}
	switch op {
	case In:
		return "IN"
	case NotIn:
		return "NOT IN"
	case IsNull:
		return "IS NULL"
	case IsNotNull:
		return "IS NOT NULL"
	case Between:
		return "BETWEEN"
	}
	return "?"
}

// CondKind tags the Condition sum type's active variant.
type CondKind int

const (
	CondAnd CondKind = iota
	CondOr
	CondNot
	CondCmp
)

// RhsKind tags the shape of a Cmp's right-hand side.
type RhsKind int

const (
	RhsNone     RhsKind = iota // IsNull / IsNotNull
	RhsExpr                    // a single expression or literal
	RhsList                    // In / NotIn over a literal list
	RhsSubquery                // In / NotIn over a subquery
	RhsBetween                 // Between's two bounds
)

// Condition is a node in the boolean filter tree.
type Condition struct {
	Kind CondKind

	// CondAnd / CondOr
	Children []Condition

	// CondNot
	Operand *Condition

	// CondCmp
	Lhs     Expr
	Op      Operator
	RhsKind RhsKind
	Rhs     *Expr   // RhsExpr
	RhsList []Expr  // RhsList
	RhsSub  *Command // RhsSubquery
	Lower   *Expr   // RhsBetween
	Upper   *Expr   // RhsBetween
}

// And combines conditions with AND.
func And(conds ...Condition) Condition { return Condition{Kind: CondAnd, Children: conds} }

// Or combines conditions with OR.
func Or(conds ...Condition) Condition { return Condition{Kind: CondOr, Children: conds} }

// Not negates a condition.
func Not(c Condition) Condition { return Condition{Kind: CondNot, Operand: &c} }

// Cmp builds a comparison node against a single expression/literal
// right-hand side. IsNull/IsNotNull should use CmpIsNull/CmpIsNotNull
// instead, since they carry no right-hand side.
func Cmp(lhs Expr, op Operator, rhs Expr) Condition {
	r := rhs
	return Condition{Kind: CondCmp, Lhs: lhs, Op: op, RhsKind: RhsExpr, Rhs: &r}
}

// CmpIsNull builds an `lhs IS NULL` condition.
func CmpIsNull(lhs Expr) Condition {
	return Condition{Kind: CondCmp, Lhs: lhs, Op: IsNull, RhsKind: RhsNone}
}

// CmpIsNotNull builds an `lhs IS NOT NULL` condition.
func CmpIsNotNull(lhs Expr) Condition {
	return Condition{Kind: CondCmp, Lhs: lhs, Op: IsNotNull, RhsKind: RhsNone}
}

// CmpIn builds an `lhs IN (list...)` condition over a literal list.
func CmpIn(lhs Expr, list ...Expr) Condition {
	return Condition{Kind: CondCmp, Lhs: lhs, Op: In, RhsKind: RhsList, RhsList: list}
}

// CmpNotIn builds an `lhs NOT IN (list...)` condition over a literal list.
func CmpNotIn(lhs Expr, list ...Expr) Condition {
	return Condition{Kind: CondCmp, Lhs: lhs, Op: NotIn, RhsKind: RhsList, RhsList: list}
}

// CmpInSubquery builds an `lhs IN (subquery)` condition.
func CmpInSubquery(lhs Expr, sub Command) Condition {
	s := sub
	return Condition{Kind: CondCmp, Lhs: lhs, Op: In, RhsKind: RhsSubquery, RhsSub: &s}
}

// CmpNotInSubquery builds an `lhs NOT IN (subquery)` condition.
func CmpNotInSubquery(lhs Expr, sub Command) Condition {
	s := sub
	return Condition{Kind: CondCmp, Lhs: lhs, Op: NotIn, RhsKind: RhsSubquery, RhsSub: &s}
}

// CmpBetween builds an `lhs BETWEEN lower AND upper` condition.
func CmpBetween(lhs, lower, upper Expr) Condition {
	lo, hi := lower, upper
	return Condition{Kind: CondCmp, Lhs: lhs, Op: Between, RhsKind: RhsBetween, Lower: &lo, Upper: &hi}
}

// Validate checks the Cmp rhs-shape invariant from the data model: a
// Cmp's rhs shape must be compatible with its operator.
func (c Condition) Validate() error {
	switch c.Kind {
	case CondAnd, CondOr:
		for _, child := range c.Children {
			if err := child.Validate(); err != nil {
				return err
			}
		}
		return nil
	case CondNot:
		if c.Operand == nil {
			return InvalidAstError("NOT condition has no operand")
		}
		return c.Operand.Validate()
	case CondCmp:
		return c.validateCmp()
	default:
		return InvalidAstError("unknown condition kind")
	}
}

func (c Condition) validateCmp() error {
	switch c.Op {
	case IsNull, IsNotNull:
		if c.RhsKind != RhsNone {
			return InvalidAstError(c.Op.String() + " must not have a right-hand side")
		}
	case In, NotIn:
		if c.RhsKind != RhsList && c.RhsKind != RhsSubquery {
			return InvalidAstError(c.Op.String() + " requires a list or subquery right-hand side")
		}
		if c.RhsKind == RhsList && len(c.RhsList) == 0 {
			return InvalidAstError(c.Op.String() + " requires at least one element")
		}
	case Between:
		if c.RhsKind != RhsBetween || c.Lower == nil || c.Upper == nil {
			return InvalidAstError("BETWEEN requires two bounds")
		}
	default:
		if c.RhsKind != RhsExpr || c.Rhs == nil {
			return InvalidAstError(c.Op.String() + " requires a single right-hand expression")
		}
	}
	return nil
}
