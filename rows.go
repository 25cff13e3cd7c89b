package qail

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qail-lang/qail/internal/wire"
)

// This file is the row decoder (spec §4.8): RowDescription + DataRow
// bytes (always requested in text format, see extended.go) become an
// ordered list of (column name, Value) pairs. Grounded on the teacher's
// go/go/driver.go parseRowDescription/parseDataRow, generalized from its
// ad hoc Row.Get/GetString/GetInt accessors into typed Value decoding
// driven by the column's reported OID.

// NamedValue is one decoded result column.
type NamedValue struct {
	Name  string
	Value Value
}

// Row is one decoded result row, in RowDescription's column order.
type Row struct {
	Columns []NamedValue
}

// Get returns the value of the named column, and whether it was found.
func (r Row) Get(name string) (Value, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}
	return Value{}, false
}

// DecodeRow builds a Row from a RowDescription and one DataRow's columns.
// When strict is true, a column whose OID the decoder doesn't recognize
// is a Decode error; otherwise it falls back to a Text value carrying the
// raw bytes unmodified, matching what Postgres would have sent.
func DecodeRow(fields []wire.Field, raw [][]byte, strict bool) (Row, error) {
	if len(fields) != len(raw) {
		return Row{}, newErr(Decode, "column count mismatch: %d fields, %d values", len(fields), len(raw))
	}
	row := Row{Columns: make([]NamedValue, len(raw))}
	for i, f := range fields {
		v, err := decodeColumn(f, raw[i], strict)
		if err != nil {
			return Row{}, wrapErr(Decode, err, "decoding column %q", f.Name)
		}
		row.Columns[i] = NamedValue{Name: f.Name, Value: v}
	}
	return row, nil
}

func decodeColumn(f wire.Field, raw []byte, strict bool) (Value, error) {
	if raw == nil {
		return Null(), nil
	}
	text := string(raw)
	switch f.TypeOID {
	case oidBool:
		return Bool(text == "t"), nil
	case oidInt4, oidInt8:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Int64(n), nil
	case oidFloat8:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, err
		}
		return Float64(n), nil
	case oidText, oidVarchar, oidUnknown:
		return Text(text), nil
	case oidBytea:
		b, err := decodeBytea(text)
		if err != nil {
			return Value{}, err
		}
		return Bytes(b), nil
	case oidUUID:
		u, err := uuid.Parse(text)
		if err != nil {
			return Value{}, err
		}
		return Uuid(u), nil
	case oidTimestamp, oidTimestamptz:
		t, err := parsePgTimestamp(text)
		if err != nil {
			return Value{}, err
		}
		return Timestamp(t, f.TypeOID == oidTimestamptz), nil
	case oidNumeric:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return Value{}, err
		}
		return Numeric(d), nil
	case oidJSON, oidJSONB:
		return JsonRaw(raw), nil
	default:
		if strict {
			return Value{}, newErr(Decode, "unrecognized column OID %d", f.TypeOID)
		}
		return Text(text), nil
	}
}

// decodeBytea parses Postgres' `\xHHHH...` hex bytea text representation
// (the only output format this driver requests; bytea_output=escape is
// never negotiated).
func decodeBytea(text string) ([]byte, error) {
	if !strings.HasPrefix(text, `\x`) {
		return nil, newErr(Decode, "bytea value missing \\x prefix")
	}
	hex := text[2:]
	if len(hex)%2 != 0 {
		return nil, newErr(Decode, "bytea hex value has odd length")
	}
	out := make([]byte, len(hex)/2)
	for i := range out {
		hi, err := hexDigit(hex[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexDigit(hex[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexDigit(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, newErr(Decode, "invalid hex digit %q", c)
	}
}

// pgTimestampLayouts covers Postgres' default DateStyle text output, with
// and without a timezone offset and with and without fractional seconds.
var pgTimestampLayouts = []string{
	"2006-01-02 15:04:05.999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999Z07",
	"2006-01-02 15:04:05Z07",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parsePgTimestamp(text string) (time.Time, error) {
	var lastErr error
	for _, layout := range pgTimestampLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
