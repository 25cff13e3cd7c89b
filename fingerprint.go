package qail

import (
	"encoding/binary"
	"hash/maphash"
	"math"
)

// PreparedKey is the statement-cache lookup key: an AST fingerprint paired
// with the parameter type OIDs the caller bound it with (the same AST
// encoded with different parameter types needs a different prepared
// statement on the wire).
type PreparedKey struct {
	Fingerprint [2]uint64
	ParamOIDs   string // OIDs joined, cheap-to-compare map key component
}

// seed is process-global so two fingerprints computed in the same process
// are comparable; maphash documents this as safe as long as the seed is
// reused consistently, which mirrors what a single driver instance needs.
var fingerprintSeed = maphash.MakeSeed()

// Fingerprint hashes a canonical, cycle-free traversal of the command in
// a fixed field order and returns it as two 64-bit words. Every variant
// tag is mixed in before its payload, so e.g. Named("x") and
// Literal(Text("x")) never collide. Only the first word is computed from
// the full traversal; the second is derived from it and the table name,
// so the result carries 64 bits of collision resistance, not 128.
func Fingerprint(c *Command) [2]uint64 {
	var h maphash.Hash
	h.SetSeed(fingerprintSeed)

	writeTag(&h, byte(c.Action))
	writeStr(&h, c.Table)
	writeStr(&h, c.TableAlias)
	writeStr(&h, c.IndexCol)

	writeTag(&h, 1)
	writeInt(&h, len(c.ColumnList))
	for _, col := range c.ColumnList {
		hashColumnRef(&h, col)
	}

	writeTag(&h, 2)
	writeInt(&h, len(c.ColumnNames))
	for _, n := range c.ColumnNames {
		writeStr(&h, n)
	}

	writeTag(&h, 3)
	writeInt(&h, len(c.Rows))
	for _, row := range c.Rows {
		writeInt(&h, len(row.Values))
		for _, v := range row.Values {
			hashExpr(&h, v, 0)
		}
	}

	writeTag(&h, 4)
	writeInt(&h, len(c.Assignments))
	for _, a := range c.Assignments {
		writeStr(&h, a.Column)
		hashExpr(&h, a.Value, 0)
	}

	writeTag(&h, 5)
	if c.FilterTree != nil {
		writeTag(&h, 1)
		hashCondition(&h, *c.FilterTree, 0)
	} else {
		writeTag(&h, 0)
	}

	writeTag(&h, 6)
	writeInt(&h, len(c.Order))
	for _, o := range c.Order {
		hashExpr(&h, o.Expr, 0)
		writeBool(&h, o.Desc)
	}

	writeTag(&h, 7)
	writeOptInt64(&h, c.LimitN)
	writeOptInt64(&h, c.OffsetN)

	writeTag(&h, 8)
	writeInt(&h, len(c.Joins))
	for _, j := range c.Joins {
		writeTag(&h, byte(j.Kind))
		writeStr(&h, j.Table)
		writeStr(&h, j.OnLeft)
		writeStr(&h, j.OnRight)
	}

	writeTag(&h, 9)
	writeInt(&h, len(c.CTEs))
	for _, cte := range c.CTEs {
		writeStr(&h, cte.Name)
		sub := Fingerprint(&cte.Command)
		writeInt(&h, int(sub[0]))
		writeInt(&h, int(sub[1]))
	}

	writeTag(&h, 10)
	if c.GroupByClause != nil {
		writeTag(&h, 1)
		writeTag(&h, byte(c.GroupByClause.Mode))
		writeInt(&h, len(c.GroupByClause.Columns))
		for _, e := range c.GroupByClause.Columns {
			hashExpr(&h, e, 0)
		}
		writeInt(&h, len(c.GroupByClause.Sets))
		for _, set := range c.GroupByClause.Sets {
			writeInt(&h, len(set))
			for _, e := range set {
				hashExpr(&h, e, 0)
			}
		}
	} else {
		writeTag(&h, 0)
	}

	writeTag(&h, 11)
	if c.HavingCond != nil {
		writeTag(&h, 1)
		hashCondition(&h, *c.HavingCond, 0)
	} else {
		writeTag(&h, 0)
	}

	writeTag(&h, 12)
	writeInt(&h, len(c.ReturningCols))
	for _, col := range c.ReturningCols {
		hashColumnRef(&h, col)
	}

	writeTag(&h, 13)
	if c.OnConflictClause != nil {
		writeTag(&h, 1)
		writeInt(&h, len(c.OnConflictClause.Columns))
		for _, col := range c.OnConflictClause.Columns {
			writeStr(&h, col)
		}
		writeTag(&h, byte(c.OnConflictClause.Action))
		writeInt(&h, len(c.OnConflictClause.Updates))
		for _, u := range c.OnConflictClause.Updates {
			writeStr(&h, u.Column)
			hashExpr(&h, u.Value, 0)
		}
	} else {
		writeTag(&h, 0)
	}

	sum := h.Sum64()
	// The second word hashes only the first sum and the table name under
	// the same seed, so two commands whose first words collide on the same
	// table also share the second word.
	var h2 maphash.Hash
	h2.SetSeed(fingerprintSeed)
	writeInt(&h2, int(sum))
	writeStr(&h2, c.Table)
	return [2]uint64{sum, h2.Sum64()}
}

func hashColumnRef(h *maphash.Hash, col ColumnRef) {
	if col.Expr != nil {
		writeTag(h, 1)
		hashExpr(h, *col.Expr, 0)
		writeStr(h, col.Expr.Alias)
		return
	}
	writeTag(h, 0)
	writeStr(h, col.Name)
}

func hashExpr(h *maphash.Hash, e Expr, depth int) {
	if depth > defaultMaxExprDepth {
		return
	}
	writeTag(h, byte(e.Kind))
	writeStr(h, e.Alias)
	switch e.Kind {
	case ExprNamed:
		writeStr(h, e.Name)
	case ExprAliased:
		hashExpr(h, *e.Inner, depth+1)
	case ExprLiteral:
		hashValue(h, e.Lit)
	case ExprParam:
		writeInt(h, e.ParamIndex)
	case ExprAggregate:
		writeStr(h, e.AggFn)
		writeBool(h, e.AggDistinct)
		if e.AggArg != nil {
			hashExpr(h, *e.AggArg, depth+1)
		}
		if e.AggFilter != nil {
			hashCondition(h, *e.AggFilter, depth+1)
		}
	case ExprWindow:
		writeStr(h, e.WinFn)
		for _, a := range e.WinArgs {
			hashExpr(h, a, depth+1)
		}
		for _, p := range e.WinPartition {
			hashExpr(h, p, depth+1)
		}
		for _, o := range e.WinOrder {
			hashExpr(h, o.Expr, depth+1)
			writeBool(h, o.Desc)
		}
	case ExprCase:
		for _, w := range e.Whens {
			hashCondition(h, w.Cond, depth+1)
			hashExpr(h, w.Value, depth+1)
		}
		if e.Else != nil {
			hashExpr(h, *e.Else, depth+1)
		}
	case ExprCast:
		hashExpr(h, *e.Inner, depth+1)
		writeTag(h, byte(e.CastTarget.Base))
	case ExprJsonAccess:
		writeStr(h, e.Name)
		for _, seg := range e.JsonPath {
			writeStr(h, seg.Key)
			writeTag(h, byte(seg.Arrow))
		}
	case ExprBinary:
		hashExpr(h, *e.Lhs, depth+1)
		writeStr(h, e.Op)
		hashExpr(h, *e.Rhs, depth+1)
	case ExprFunc:
		writeStr(h, e.FuncName)
		for _, a := range e.FuncArgs {
			hashExpr(h, a, depth+1)
		}
	case ExprArrayConstructor, ExprRowConstructor:
		for _, el := range e.Elements {
			hashExpr(h, el, depth+1)
		}
	case ExprSubscript:
		hashExpr(h, *e.SubExpr, depth+1)
		hashExpr(h, *e.SubIndex, depth+1)
	case ExprCollate:
		hashExpr(h, *e.Inner, depth+1)
		writeStr(h, e.Name)
	case ExprFieldAccess:
		hashExpr(h, *e.Inner, depth+1)
		writeStr(h, e.Name)
	case ExprSubquery:
		sub := Fingerprint(e.Subquery)
		writeInt(h, int(sub[0]))
	}
}

func hashCondition(h *maphash.Hash, c Condition, depth int) {
	if depth > defaultMaxExprDepth {
		return
	}
	writeTag(h, byte(c.Kind))
	switch c.Kind {
	case CondAnd, CondOr:
		writeInt(h, len(c.Children))
		for _, child := range c.Children {
			hashCondition(h, child, depth+1)
		}
	case CondNot:
		if c.Operand != nil {
			hashCondition(h, *c.Operand, depth+1)
		}
	case CondCmp:
		hashExpr(h, c.Lhs, depth+1)
		writeTag(h, byte(c.Op))
		writeTag(h, byte(c.RhsKind))
		switch c.RhsKind {
		case RhsExpr:
			if c.Rhs != nil {
				hashExpr(h, *c.Rhs, depth+1)
			}
		case RhsList:
			writeInt(h, len(c.RhsList))
			for _, e := range c.RhsList {
				hashExpr(h, e, depth+1)
			}
		case RhsSubquery:
			if c.RhsSub != nil {
				sub := Fingerprint(c.RhsSub)
				writeInt(h, int(sub[0]))
			}
		case RhsBetween:
			if c.Lower != nil {
				hashExpr(h, *c.Lower, depth+1)
			}
			if c.Upper != nil {
				hashExpr(h, *c.Upper, depth+1)
			}
		}
	}
}

func hashValue(h *maphash.Hash, v Value) {
	writeTag(h, byte(v.Kind()))
	switch v.Kind() {
	case KindBool:
		writeBool(h, v.Bool())
	case KindInt64:
		writeInt(h, int(v.Int64()))
	case KindFloat64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v.Float64()))
		h.Write(buf[:])
	case KindText:
		writeStr(h, v.Text())
	case KindBytes:
		h.Write(v.BytesValue())
	case KindUuid:
		u := v.UuidValue()
		h.Write(u[:])
	case KindTimestamp:
		writeInt(h, int(v.Time().UnixMicro()))
	case KindNumeric:
		writeStr(h, v.Decimal().String())
	case KindJsonRaw:
		h.Write(v.BytesValue())
	case KindArray:
		for _, el := range v.Elements() {
			hashValue(h, el)
		}
	}
}

func writeTag(h *maphash.Hash, tag byte) { h.WriteByte(tag) }

func writeStr(h *maphash.Hash, s string) {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	h.Write(lenBuf[:])
	h.WriteString(s)
}

func writeInt(h *maphash.Hash, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	h.Write(buf[:])
}

func writeBool(h *maphash.Hash, b bool) {
	if b {
		h.WriteByte(1)
	} else {
		h.WriteByte(0)
	}
}

func writeOptInt64(h *maphash.Hash, p *int64) {
	if p == nil {
		h.WriteByte(0)
		return
	}
	h.WriteByte(1)
	writeInt(h, int(*p))
}
