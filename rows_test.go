package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qail-lang/qail/internal/wire"
)

func TestDecodeRowScalars(t *testing.T) {
	fields := []wire.Field{
		{Name: "id", TypeOID: oidInt4},
		{Name: "active", TypeOID: oidBool},
		{Name: "label", TypeOID: oidText},
		{Name: "note", TypeOID: oidText},
	}
	raw := [][]byte{[]byte("7"), []byte("t"), []byte("hello"), nil}

	row, err := DecodeRow(fields, raw, true)
	require.NoError(t, err)

	v, ok := row.Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(7), v.Int64())

	v, ok = row.Get("active")
	require.True(t, ok)
	assert.True(t, v.Bool())

	v, ok = row.Get("note")
	require.True(t, ok)
	assert.True(t, v.IsNull())

	_, ok = row.Get("missing")
	assert.False(t, ok)
}

func TestDecodeRowColumnCountMismatch(t *testing.T) {
	fields := []wire.Field{{Name: "id", TypeOID: oidInt4}}
	_, err := DecodeRow(fields, [][]byte{[]byte("1"), []byte("2")}, true)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, Decode, kind)
}

func TestDecodeRowUnrecognizedOIDStrict(t *testing.T) {
	fields := []wire.Field{{Name: "weird", TypeOID: 999999}}
	_, err := DecodeRow(fields, [][]byte{[]byte("x")}, true)
	require.Error(t, err)
}

func TestDecodeRowUnrecognizedOIDFallback(t *testing.T) {
	fields := []wire.Field{{Name: "weird", TypeOID: 999999}}
	row, err := DecodeRow(fields, [][]byte{[]byte("x")}, false)
	require.NoError(t, err)
	v, _ := row.Get("weird")
	assert.Equal(t, "x", v.Text())
}

func TestDecodeRowBytea(t *testing.T) {
	fields := []wire.Field{{Name: "blob", TypeOID: oidBytea}}
	row, err := DecodeRow(fields, [][]byte{[]byte(`\xdeadbeef`)}, true)
	require.NoError(t, err)
	v, _ := row.Get("blob")
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, v.BytesValue())
}

func TestDecodeRowTimestamp(t *testing.T) {
	fields := []wire.Field{{Name: "created_at", TypeOID: oidTimestamptz}}
	row, err := DecodeRow(fields, [][]byte{[]byte("2026-01-02 03:04:05.5+00")}, true)
	require.NoError(t, err)
	v, _ := row.Get("created_at")
	assert.True(t, v.HasTZ())
	assert.Equal(t, 2026, v.Time().Year())
}

func TestDecodeRowNumeric(t *testing.T) {
	fields := []wire.Field{{Name: "price", TypeOID: oidNumeric}}
	row, err := DecodeRow(fields, [][]byte{[]byte("19.99")}, true)
	require.NoError(t, err)
	v, _ := row.Get("price")
	assert.Equal(t, "19.99", v.Decimal().String())
}
