package qail

import "github.com/qail-lang/qail/internal/wire"

// This file builds the Extended Query frame sequence (Parse/Bind/
// Describe/Execute/Sync) for a single statement (spec §4.4, §4.6).
// Int64, Float64, Uuid and Timestamp parameters are bound in binary
// format and all others in text (see paramFormatFor); results are always
// requested in text format, matching the row decoder's text-only
// contract (spec §4.8) and the teacher driver's text-protocol rows.

// PreparedPlan is the result of compiling a Command for the extended
// protocol: SQL text with $N placeholders plus how many placeholders it
// needs bound.
type PreparedPlan struct {
	SQL        string
	ParamCount int
}

// Prepare compiles c into a PreparedPlan. Unlike Compile, the returned
// ParamCount is informational only — it does not change what Literal
// nodes render as (still inlined).
func Prepare(c *Command) (*PreparedPlan, error) {
	sql, maxParam, err := Compile(c)
	if err != nil {
		return nil, err
	}
	return &PreparedPlan{SQL: sql, ParamCount: maxParam + 1}, nil
}

// BuildParseFrame appends a Parse message for plan under stmtName. OIDs
// are left at 0 (infer) since the AST alone doesn't pin a type to every
// $N placeholder; the backend infers each placeholder's type from the
// SQL, and nothing records the types it chose.
func BuildParseFrame(buf []byte, stmtName string, plan *PreparedPlan) []byte {
	oids := make([]uint32, plan.ParamCount)
	return wire.WriteParse(buf, stmtName, plan.SQL, oids)
}

// paramFormatFor picks the Bind wire format for one parameter value: text
// for simple scalars, binary for int/float/uuid/timestamp when the type
// is known (spec §4.4(c)).
func paramFormatFor(v Value) wire.ParamFormat {
	switch v.Kind() {
	case KindInt64, KindFloat64, KindUuid, KindTimestamp:
		return wire.FormatBinary
	default:
		return wire.FormatText
	}
}

// BuildBindFrame appends a Bind message binding values to portal against
// stmtName, choosing text or binary wire format per value (paramFormatFor)
// and requesting results in text format.
func BuildBindFrame(buf []byte, portal, stmtName string, values []Value) ([]byte, error) {
	paramFormats := make([]wire.ParamFormat, len(values))
	encoded := make([][]byte, len(values))
	for i, v := range values {
		if v.IsNull() {
			paramFormats[i] = wire.FormatText
			continue
		}
		format := paramFormatFor(v)
		paramFormats[i] = format
		var b []byte
		var err error
		if format == wire.FormatBinary {
			b, err = EncodeBinary(v, nil)
		} else {
			b, err = EncodeText(v, nil)
		}
		if err != nil {
			return nil, InvalidParameterError(i, err.Error())
		}
		encoded[i] = b
	}
	resultFormats := []wire.ParamFormat{wire.FormatText}
	return wire.WriteBind(buf, portal, stmtName, paramFormats, encoded, resultFormats), nil
}

// BuildDescribeFrame appends a Describe message for the named portal or
// statement.
func BuildDescribeFrame(buf []byte, kind wire.DescribeKind, name string) []byte {
	return wire.WriteDescribe(buf, kind, name)
}

// BuildExecuteFrame appends an Execute message. maxRows == 0 means no
// row limit.
func BuildExecuteFrame(buf []byte, portal string, maxRows int32) []byte {
	return wire.WriteExecute(buf, portal, maxRows)
}

// BuildSyncFrame appends the Sync message that ends a pipeline batch.
func BuildSyncFrame(buf []byte) []byte {
	return wire.WriteSync(buf)
}

// EncodeSingleExtended builds the full Parse/Bind/Describe/Execute/Sync
// sequence for one statement execution — the common, non-batched path
// (spec §4.6 "Extended Query, single statement").
func EncodeSingleExtended(buf []byte, stmtName, portal string, plan *PreparedPlan, values []Value, describe bool) ([]byte, error) {
	if len(values) != plan.ParamCount {
		return nil, InvalidAstError("bind value count does not match the prepared statement's parameter count")
	}
	buf = BuildParseFrame(buf, stmtName, plan)
	var err error
	buf, err = BuildBindFrame(buf, portal, stmtName, values)
	if err != nil {
		return nil, err
	}
	if describe {
		buf = BuildDescribeFrame(buf, wire.DescribePortal, portal)
	}
	buf = BuildExecuteFrame(buf, portal, 0)
	buf = BuildSyncFrame(buf)
	return buf, nil
}
