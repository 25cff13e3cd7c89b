package qail

// Well-known PostgreSQL type OIDs (pg_type.oid), used to tell the backend
// how to interpret a bound parameter in a Parse message. 0 means "let the
// backend infer it from context", which is always a safe fallback.
const (
	oidBool        = 16
	oidBytea       = 17
	oidInt8        = 20
	oidInt4        = 23
	oidText        = 25
	oidJSON        = 114
	oidFloat8      = 701
	oidUnknown     = 705
	oidVarchar     = 1043
	oidDate        = 1082
	oidTime        = 1083
	oidTimestamp   = 1114
	oidTimestamptz = 1184
	oidNumeric     = 1700
	oidJSONB       = 3802
	oidUUID        = 2950
)

// oidForValue infers a parameter's OID from the Value it carries. Array
// and Null values have no single stable OID, so they're left at 0 and the
// backend infers them from the surrounding SQL.
func oidForValue(v Value) uint32 {
	switch v.Kind() {
	case KindBool:
		return oidBool
	case KindInt64:
		return oidInt8
	case KindFloat64:
		return oidFloat8
	case KindText:
		return oidText
	case KindBytes:
		return oidBytea
	case KindUuid:
		return oidUUID
	case KindTimestamp:
		if v.HasTZ() {
			return oidTimestamptz
		}
		return oidTimestamp
	case KindNumeric:
		return oidNumeric
	case KindJsonRaw:
		return oidJSONB
	default:
		return 0
	}
}

// oidForColumnType maps a DDL ColumnType to the OID Postgres assigns its
// matching native type. No code in this package calls it: CREATE TABLE
// column types are rendered as SQL text, and the row decoder switches on
// OIDs directly.
func oidForColumnType(ct ColumnType) uint32 {
	switch ct.Base {
	case TUuid:
		return oidUUID
	case TText:
		return oidText
	case TVarchar:
		return oidVarchar
	case TInt, TSerial:
		return oidInt4
	case TBigInt, TBigSerial:
		return oidInt8
	case TBool:
		return oidBool
	case TFloat:
		return oidFloat8
	case TDecimal:
		return oidNumeric
	case TJsonb:
		return oidJSONB
	case TTimestamp:
		return oidTimestamp
	case TTimestamptz:
		return oidTimestamptz
	case TDate:
		return oidDate
	case TTime:
		return oidTime
	case TBytea:
		return oidBytea
	default:
		return oidUnknown
	}
}
