package qail

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt64
	KindFloat64
	KindText
	KindBytes
	KindUuid
	KindTimestamp
	KindNumeric
	KindJsonRaw
	KindArray
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindUuid:
		return "uuid"
	case KindTimestamp:
		return "timestamp"
	case KindNumeric:
		return "numeric"
	case KindJsonRaw:
		return "json"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the scalar and composite types the encoder
// and row decoder exchange with PostgreSQL.
type Value struct {
	kind ValueKind

	b   bool
	i   int64
	f   float64
	s   string // Text
	by  []byte // Bytes, JsonRaw
	u   uuid.UUID
	ts  time.Time
	tsz bool // true if ts carries a timezone (Timestamptz)
	num decimal.Decimal
	arr []Value
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

func Null() Value                    { return Value{kind: KindNull} }
func Bool(b bool) Value              { return Value{kind: KindBool, b: b} }
func Int64(i int64) Value            { return Value{kind: KindInt64, i: i} }
func Float64(f float64) Value        { return Value{kind: KindFloat64, f: f} }
func Text(s string) Value            { return Value{kind: KindText, s: s} }
func Bytes(b []byte) Value           { return Value{kind: KindBytes, by: b} }
func Uuid(u uuid.UUID) Value         { return Value{kind: KindUuid, u: u} }
func Numeric(d decimal.Decimal) Value { return Value{kind: KindNumeric, num: d} }
func JsonRaw(b []byte) Value         { return Value{kind: KindJsonRaw, by: b} }
func Array(vs []Value) Value         { return Value{kind: KindArray, arr: vs} }

// Timestamp builds a microsecond-precision timestamp value. withTZ selects
// between Postgres' `timestamp` and `timestamptz` wire semantics.
func Timestamp(t time.Time, withTZ bool) Value {
	return Value{kind: KindTimestamp, ts: t.Truncate(time.Microsecond), tsz: withTZ}
}

func (v Value) Bool() bool              { return v.b }
func (v Value) Int64() int64            { return v.i }
func (v Value) Float64() float64        { return v.f }
func (v Value) Text() string            { return v.s }
func (v Value) BytesValue() []byte      { return v.by }
func (v Value) UuidValue() uuid.UUID    { return v.u }
func (v Value) Time() time.Time         { return v.ts }
func (v Value) HasTZ() bool             { return v.tsz }
func (v Value) Decimal() decimal.Decimal { return v.num }
func (v Value) Elements() []Value       { return v.arr }

// pgEpoch is 2000-01-01 00:00:00 UTC, the Postgres binary timestamp epoch.
var pgEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// EncodeText writes the Postgres text representation of v into buf,
// returning the extended slice. An embedded NUL byte in a Text value is
// rejected per the data model's invariant, before anything is appended.
func EncodeText(v Value, buf []byte) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return buf, nil // caller is responsible for the -1 length prefix
	case KindBool:
		if v.b {
			return append(buf, 't'), nil
		}
		return append(buf, 'f'), nil
	case KindInt64:
		return strconv.AppendInt(buf, v.i, 10), nil
	case KindFloat64:
		return strconv.AppendFloat(buf, v.f, 'g', -1, 64), nil
	case KindText:
		if strings.IndexByte(v.s, 0) >= 0 {
			return nil, InvalidParameterError(-1, "text value contains a NUL byte")
		}
		return append(buf, v.s...), nil
	case KindBytes:
		return appendHexBytes(buf, v.by), nil
	case KindUuid:
		return append(buf, v.u.String()...), nil
	case KindTimestamp:
		return appendTimestampText(buf, v.ts, v.tsz), nil
	case KindNumeric:
		return append(buf, v.num.String()...), nil
	case KindJsonRaw:
		return append(buf, v.by...), nil
	case KindArray:
		return encodeArrayText(v, buf)
	default:
		return nil, InvalidParameterError(-1, fmt.Sprintf("unsupported value kind %v", v.kind))
	}
}

func appendHexBytes(buf []byte, b []byte) []byte {
	buf = append(buf, '\\', 'x')
	const hex = "0123456789abcdef"
	for _, c := range b {
		buf = append(buf, hex[c>>4], hex[c&0xf])
	}
	return buf
}

func appendTimestampText(buf []byte, t time.Time, withTZ bool) []byte {
	if withTZ {
		return t.UTC().AppendFormat(buf, "2006-01-02 15:04:05.999999Z07:00")
	}
	return t.AppendFormat(buf, "2006-01-02 15:04:05.999999")
}

func encodeArrayText(v Value, buf []byte) ([]byte, error) {
	buf = append(buf, '{')
	for i, el := range v.arr {
		if i > 0 {
			buf = append(buf, ',')
		}
		if el.IsNull() {
			buf = append(buf, "NULL"...)
			continue
		}
		elBuf, err := EncodeText(el, nil)
		if err != nil {
			return nil, err
		}
		if el.kind == KindText {
			buf = append(buf, '"')
			for _, c := range elBuf {
				if c == '"' || c == '\\' {
					buf = append(buf, '\\')
				}
				buf = append(buf, c)
			}
			buf = append(buf, '"')
		} else {
			buf = append(buf, elBuf...)
		}
	}
	buf = append(buf, '}')
	return buf, nil
}

// EncodeBinary writes the Postgres binary representation of v into buf.
// Integers are big-endian, floats are IEEE-754, timestamps are
// microseconds-since-2000-01-01.
func EncodeBinary(v Value, buf []byte) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return buf, nil
	case KindBool:
		if v.b {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case KindInt64:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(v.i))
		return append(buf, tmp[:]...), nil
	case KindFloat64:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v.f))
		return append(buf, tmp[:]...), nil
	case KindText:
		if strings.IndexByte(v.s, 0) >= 0 {
			return nil, InvalidParameterError(-1, "text value contains a NUL byte")
		}
		return append(buf, v.s...), nil
	case KindBytes:
		return append(buf, v.by...), nil
	case KindUuid:
		return append(buf, v.u[:]...), nil
	case KindTimestamp:
		micros := v.ts.UTC().Sub(pgEpoch).Microseconds()
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(micros))
		return append(buf, tmp[:]...), nil
	case KindNumeric:
		// Text fallback: PostgreSQL's binary numeric format is a
		// variable-width digit-group encoding; callers that need wire
		// compactness for NUMERIC should rely on the text format, which
		// round-trips exactly via decimal.Decimal.String().
		return append(buf, v.num.String()...), nil
	case KindJsonRaw:
		return append(buf, v.by...), nil
	case KindArray:
		return nil, InvalidParameterError(-1, "binary array encoding is not supported; use text format")
	default:
		return nil, InvalidParameterError(-1, fmt.Sprintf("unsupported value kind %v", v.kind))
	}
}
