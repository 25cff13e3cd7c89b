package qail

// ColumnType enumerates the Postgres column types the AST and encoder know
// about. Parameterized variants (Varchar, Decimal) carry their modifiers
// inline; zero means "unspecified".
type ColumnType struct {
	Base      ColumnBase
	Len       int // Varchar(len)
	Precision int // Decimal(precision, scale)
	Scale     int
}

// ColumnBase is the unparameterized type tag.
type ColumnBase int

const (
	TUuid ColumnBase = iota
	TText
	TVarchar
	TInt
	TBigInt
	TSerial
	TBigSerial
	TBool
	TFloat
	TDecimal
	TJsonb
	TTimestamp
	TTimestamptz
	TDate
	TTime
	TBytea
)

var columnBaseNames = map[ColumnBase]string{
	TUuid:        "uuid",
	TText:        "text",
	TVarchar:     "varchar",
	TInt:         "int",
	TBigInt:      "bigint",
	TSerial:      "serial",
	TBigSerial:   "bigserial",
	TBool:        "bool",
	TFloat:       "float",
	TDecimal:     "decimal",
	TJsonb:       "jsonb",
	TTimestamp:   "timestamp",
	TTimestamptz: "timestamptz",
	TDate:        "date",
	TTime:        "time",
	TBytea:       "bytea",
}

func (b ColumnBase) String() string {
	if s, ok := columnBaseNames[b]; ok {
		return s
	}
	return "unknown"
}

// Uuid, Text, Int, BigInt, Serial, BigSerial, Bool, Float, Jsonb,
// Timestamp, Timestamptz, Date, Time, Bytea are convenience constructors
// for the unparameterized ColumnTypes.
func Uuid_() ColumnType        { return ColumnType{Base: TUuid} }
func TextType() ColumnType      { return ColumnType{Base: TText} }
func IntType() ColumnType       { return ColumnType{Base: TInt} }
func BigIntType() ColumnType    { return ColumnType{Base: TBigInt} }
func SerialType() ColumnType    { return ColumnType{Base: TSerial} }
func BigSerialType() ColumnType { return ColumnType{Base: TBigSerial} }
func BoolType() ColumnType      { return ColumnType{Base: TBool} }
func FloatType() ColumnType     { return ColumnType{Base: TFloat} }
func JsonbType() ColumnType     { return ColumnType{Base: TJsonb} }
func TimestampType() ColumnType { return ColumnType{Base: TTimestamp} }
func TimestamptzType() ColumnType { return ColumnType{Base: TTimestamptz} }
func DateType() ColumnType      { return ColumnType{Base: TDate} }
func TimeType() ColumnType      { return ColumnType{Base: TTime} }
func ByteaType() ColumnType     { return ColumnType{Base: TBytea} }

// VarcharType builds a length-bounded varchar type. len == 0 means
// unbounded (plain varchar).
func VarcharType(length int) ColumnType {
	return ColumnType{Base: TVarchar, Len: length}
}

// DecimalType builds a precision/scale-bounded numeric type.
func DecimalType(precision, scale int) ColumnType {
	return ColumnType{Base: TDecimal, Precision: precision, Scale: scale}
}

// CanBePrimaryKey reports whether a column of this type may participate in
// a primary key. Jsonb and Bytea cannot; everything else can.
func (c ColumnType) CanBePrimaryKey() bool {
	switch c.Base {
	case TJsonb, TBytea:
		return false
	default:
		return true
	}
}

// SupportsIndexing reports whether a plain (no-opclass) index can be built
// over this column type. Jsonb requires an operator class (e.g. jsonb_ops)
// and is excluded here; everything else is indexable as-is.
func (c ColumnType) SupportsIndexing() bool {
	return c.Base != TJsonb
}
