package wire

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteParseDecodeRoundTrip(t *testing.T) {
	buf := WriteParse(nil, "stmt1", "SELECT 1", []uint32{23, 25})
	assert.Equal(t, byte('P'), buf[0])

	dec := NewDecoder(bufio.NewReader(bytes.NewReader(buf)))
	tag, payload, err := dec.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, byte('P'), tag)
	assert.NotEmpty(t, payload)
}

func TestWriteSyncIsFixedSize(t *testing.T) {
	buf := WriteSync(nil)
	assert.Equal(t, []byte{'S', 0, 0, 0, 4}, buf)
}

func TestDecoderReadsMultipleMessages(t *testing.T) {
	buf := WriteParse(nil, "", "SELECT 1", nil)
	buf = WriteBind(buf, "", "", []ParamFormat{FormatText}, [][]byte{[]byte("1")}, []ParamFormat{FormatText})
	buf = WriteExecute(buf, "", 0)
	buf = WriteSync(buf)

	dec := NewDecoder(bufio.NewReader(bytes.NewReader(buf)))
	var tags []byte
	for {
		tag, _, err := dec.ReadMessage()
		if err != nil {
			break
		}
		tags = append(tags, tag)
	}
	assert.Equal(t, []byte{'P', 'B', 'E', 'S'}, tags)
}

func TestParseRowDescriptionAndDataRow(t *testing.T) {
	// Hand-build a RowDescription payload for one "id" int4 column and a
	// DataRow payload carrying "42".
	var rd []byte
	rd = appendUint16(rd, 1)
	rd = append(rd, "id"...)
	rd = append(rd, 0)
	rd = appendUint32(rd, 0)   // table OID
	rd = appendUint16Signed(rd, 0) // attnum
	rd = appendUint32(rd, 23)  // int4 OID
	rd = appendUint16Signed(rd, 4)
	rd = appendUint32(rd, 0)
	rd = appendUint16Signed(rd, 0)

	fields, err := ParseRowDescription(rd)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "id", fields[0].Name)
	assert.Equal(t, uint32(23), fields[0].TypeOID)

	var dr []byte
	dr = appendUint16(dr, 1)
	dr = appendInt32(dr, int32(len("42")))
	dr = append(dr, "42"...)

	cols, err := ParseDataRow(dr)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "42", string(cols[0]))
}

func TestParseDataRowNull(t *testing.T) {
	var dr []byte
	dr = appendUint16(dr, 1)
	dr = appendInt32(dr, -1)

	cols, err := ParseDataRow(dr)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Nil(t, cols[0])
}

func TestParseErrorFields(t *testing.T) {
	var payload []byte
	payload = append(payload, 'S')
	payload = append(payload, "ERROR"...)
	payload = append(payload, 0)
	payload = append(payload, 'C')
	payload = append(payload, "23505"...)
	payload = append(payload, 0)
	payload = append(payload, 'M')
	payload = append(payload, "duplicate key"...)
	payload = append(payload, 0)
	payload = append(payload, 0)

	fields := ParseErrorFields(payload)
	assert.Equal(t, "ERROR", fields.Severity)
	assert.Equal(t, "23505", fields.Code)
	assert.Equal(t, "duplicate key", fields.Message)
}

func TestParseAuthSplitsTypeAndRest(t *testing.T) {
	payload := appendUint32(nil, AuthMD5)
	payload = append(payload, []byte{1, 2, 3, 4}...)
	authType, rest := ParseAuth(payload)
	assert.Equal(t, uint32(AuthMD5), authType)
	assert.Equal(t, []byte{1, 2, 3, 4}, rest)
}

func appendUint16Signed(buf []byte, v int16) []byte {
	return appendUint16(buf, uint16(v))
}
