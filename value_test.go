package qail

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTextScalars(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"bool-true", Bool(true), "t"},
		{"bool-false", Bool(false), "f"},
		{"int", Int64(-42), "-42"},
		{"float", Float64(3.5), "3.5"},
		{"text", Text("hello"), "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EncodeText(tc.v, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestEncodeTextRejectsEmbeddedNUL(t *testing.T) {
	_, err := EncodeText(Text("a\x00b"), nil)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, InvalidParameter, kind)
}

func TestEncodeTextBytea(t *testing.T) {
	got, err := EncodeText(Bytes([]byte{0xDE, 0xAD, 0xBE, 0xEF}), nil)
	require.NoError(t, err)
	assert.Equal(t, `\xdeadbeef`, string(got))
}

func TestEncodeTextUuid(t *testing.T) {
	u := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	got, err := EncodeText(Uuid(u), nil)
	require.NoError(t, err)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", string(got))
}

func TestEncodeTextNumeric(t *testing.T) {
	d := decimal.RequireFromString("19.99")
	got, err := EncodeText(Numeric(d), nil)
	require.NoError(t, err)
	assert.Equal(t, "19.99", string(got))
}

func TestEncodeTextArray(t *testing.T) {
	arr := Array([]Value{Int64(1), Int64(2), Null()})
	got, err := EncodeText(arr, nil)
	require.NoError(t, err)
	assert.Equal(t, "{1,2,NULL}", string(got))
}

func TestEncodeBinaryIntIsEightBytes(t *testing.T) {
	got, err := EncodeBinary(Int64(1234), nil)
	require.NoError(t, err)
	assert.Len(t, got, 8)
}

func TestEncodeBinaryRejectsArray(t *testing.T) {
	_, err := EncodeBinary(Array([]Value{Int64(1)}), nil)
	require.Error(t, err)
}

func TestTimestampTruncatesToMicrosecond(t *testing.T) {
	withNanos := time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC)
	v := Timestamp(withNanos, true)
	assert.Equal(t, int64(0), v.Time().Nanosecond()%1000)
}
