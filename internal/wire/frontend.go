// Package wire is the PostgreSQL frontend/backend message codec (spec
// §4.3). Every frontend message carries a one-byte tag and a 4-byte
// big-endian length that includes itself but excludes the tag; every
// write function here follows that shape and appends to a caller-owned
// buffer, so a batch of many messages costs one buffer reservation
// instead of one allocation per message (spec §9 "shared buffers vs
// ownership"). None of these functions touch a socket.
package wire

import "encoding/binary"

// reserveLength appends a placeholder 4-byte length field (tag already
// written by the caller) and returns the buffer plus the offset of that
// placeholder, so the caller can patch it in once the payload is known.
func reserveLength(buf []byte) ([]byte, int) {
	off := len(buf)
	return append(buf, 0, 0, 0, 0), off
}

func patchLength(buf []byte, off int) {
	n := uint32(len(buf) - off)
	binary.BigEndian.PutUint32(buf[off:off+4], n)
}

// WriteQuery appends a Simple Query message ('Q'): a NUL-terminated SQL
// string.
func WriteQuery(buf []byte, sql string) []byte {
	buf = append(buf, 'Q')
	buf, off := reserveLength(buf)
	buf = append(buf, sql...)
	buf = append(buf, 0)
	patchLength(buf, off)
	return buf
}

// WriteParse appends a Parse message ('P'): statement name, SQL text, and
// the parameter type OIDs (0 means "let the backend infer").
func WriteParse(buf []byte, name, sql string, paramOIDs []uint32) []byte {
	buf = append(buf, 'P')
	buf, off := reserveLength(buf)
	buf = append(buf, name...)
	buf = append(buf, 0)
	buf = append(buf, sql...)
	buf = append(buf, 0)
	buf = appendUint16(buf, uint16(len(paramOIDs)))
	for _, oid := range paramOIDs {
		buf = appendUint32(buf, oid)
	}
	patchLength(buf, off)
	return buf
}

// ParamFormat selects text (0) or binary (1) wire format for one bound
// parameter or result column.
type ParamFormat int16

const (
	FormatText   ParamFormat = 0
	FormatBinary ParamFormat = 1
)

// WriteBind appends a Bind message ('B'): binds parameter values to the
// unnamed portal against the named prepared statement. params[i] == nil
// encodes as a SQL NULL (length -1).
func WriteBind(buf []byte, portal, stmt string, paramFormats []ParamFormat, params [][]byte, resultFormats []ParamFormat) []byte {
	buf = append(buf, 'B')
	buf, off := reserveLength(buf)
	buf = append(buf, portal...)
	buf = append(buf, 0)
	buf = append(buf, stmt...)
	buf = append(buf, 0)

	buf = appendUint16(buf, uint16(len(paramFormats)))
	for _, f := range paramFormats {
		buf = appendUint16(buf, uint16(f))
	}

	buf = appendUint16(buf, uint16(len(params)))
	for _, p := range params {
		if p == nil {
			buf = appendInt32(buf, -1)
			continue
		}
		buf = appendInt32(buf, int32(len(p)))
		buf = append(buf, p...)
	}

	buf = appendUint16(buf, uint16(len(resultFormats)))
	for _, f := range resultFormats {
		buf = appendUint16(buf, uint16(f))
	}

	patchLength(buf, off)
	return buf
}

// DescribeKind selects whether a Describe message targets a prepared
// statement ('S') or a portal ('P').
type DescribeKind byte

const (
	DescribeStatement DescribeKind = 'S'
	DescribePortal    DescribeKind = 'P'
)

// WriteDescribe appends a Describe message ('D').
func WriteDescribe(buf []byte, kind DescribeKind, name string) []byte {
	buf = append(buf, 'D')
	buf, off := reserveLength(buf)
	buf = append(buf, byte(kind))
	buf = append(buf, name...)
	buf = append(buf, 0)
	patchLength(buf, off)
	return buf
}

// WriteExecute appends an Execute message ('E'). maxRows == 0 means "no
// row limit".
func WriteExecute(buf []byte, portal string, maxRows int32) []byte {
	buf = append(buf, 'E')
	buf, off := reserveLength(buf)
	buf = append(buf, portal...)
	buf = append(buf, 0)
	buf = appendInt32(buf, maxRows)
	patchLength(buf, off)
	return buf
}

// CloseKind selects whether a Close message targets a prepared statement
// ('S') or a portal ('P').
type CloseKind byte

const (
	CloseStatement CloseKind = 'S'
	ClosePortal    CloseKind = 'P'
)

// WriteClose appends a Close message ('C').
func WriteClose(buf []byte, kind CloseKind, name string) []byte {
	buf = append(buf, 'C')
	buf, off := reserveLength(buf)
	buf = append(buf, byte(kind))
	buf = append(buf, name...)
	buf = append(buf, 0)
	patchLength(buf, off)
	return buf
}

// WriteSync appends a Sync message ('S'). Exactly one Sync terminates a
// pipeline batch of any size, including zero statements — but spec §8
// requires a zero-statement pipeline to send no Sync at all, so callers
// must not call WriteSync for an empty batch.
func WriteSync(buf []byte) []byte {
	return append(buf, 'S', 0, 0, 0, 4)
}

// WriteFlush appends a Flush message ('H').
func WriteFlush(buf []byte) []byte {
	return append(buf, 'H', 0, 0, 0, 4)
}

// WriteCopyData appends a CopyData message ('d') carrying data.
func WriteCopyData(buf []byte, data []byte) []byte {
	buf = append(buf, 'd')
	buf, off := reserveLength(buf)
	buf = append(buf, data...)
	patchLength(buf, off)
	return buf
}

// WriteCopyDone appends a CopyDone message ('c').
func WriteCopyDone(buf []byte) []byte {
	return append(buf, 'c', 0, 0, 0, 4)
}

// WriteCopyFail appends a CopyFail message ('f') aborting a copy-in.
func WriteCopyFail(buf []byte, reason string) []byte {
	buf = append(buf, 'f')
	buf, off := reserveLength(buf)
	buf = append(buf, reason...)
	buf = append(buf, 0)
	patchLength(buf, off)
	return buf
}

// WriteTerminate appends a Terminate message ('X').
func WriteTerminate(buf []byte) []byte {
	return append(buf, 'X', 0, 0, 0, 4)
}

// WritePasswordMessage appends a PasswordMessage ('p') carrying a
// cleartext, MD5, or SASL response payload (payload shape depends on the
// auth method in progress; see internal/protocol/startup.go).
func WritePasswordMessage(buf []byte, payload []byte) []byte {
	buf = append(buf, 'p')
	buf, off := reserveLength(buf)
	buf = append(buf, payload...)
	patchLength(buf, off)
	return buf
}

// WriteSASLInitialResponse appends a SASLInitialResponse ('p') — same tag
// as PasswordMessage, but carrying a mechanism name plus length-prefixed
// initial client data.
func WriteSASLInitialResponse(buf []byte, mechanism string, clientFirst []byte) []byte {
	buf = append(buf, 'p')
	buf, off := reserveLength(buf)
	buf = append(buf, mechanism...)
	buf = append(buf, 0)
	buf = appendInt32(buf, int32(len(clientFirst)))
	buf = append(buf, clientFirst...)
	patchLength(buf, off)
	return buf
}

// WriteSASLResponse appends a SASLResponse ('p') carrying the raw
// client-final message.
func WriteSASLResponse(buf []byte, data []byte) []byte {
	buf = append(buf, 'p')
	buf, off := reserveLength(buf)
	buf = append(buf, data...)
	patchLength(buf, off)
	return buf
}

// StartupProtocolVersion is protocol 3.0 (196608), the only version this
// codec speaks.
const StartupProtocolVersion = 196608

// WriteStartup appends a StartupMessage: no leading tag byte (this is the
// only frontend message without one), protocol version, then a
// NUL-terminated key/value parameter list ending in a double NUL.
func WriteStartup(buf []byte, params map[string]string) []byte {
	buf, off := reserveLength(buf)
	buf = appendUint32(buf, StartupProtocolVersion)
	for k, v := range params {
		buf = append(buf, k...)
		buf = append(buf, 0)
		buf = append(buf, v...)
		buf = append(buf, 0)
	}
	buf = append(buf, 0)
	patchLength(buf, off)
	return buf
}

// SSLRequestCode is the well-known SSLRequest magic number (80877103).
const SSLRequestCode = 80877103

// WriteSSLRequest appends the 8-byte SSLRequest message.
func WriteSSLRequest(buf []byte) []byte {
	buf = appendUint32(buf, 8)
	buf = appendUint32(buf, SSLRequestCode)
	return buf
}

// WriteCancelRequest appends a 16-byte CancelRequest message, sent on a
// fresh connection (never the original query socket) per spec §4.5.
func WriteCancelRequest(buf []byte, processID, secretKey uint32) []byte {
	const cancelRequestCode = 80877102
	buf = appendUint32(buf, 16)
	buf = appendUint32(buf, cancelRequestCode)
	buf = appendUint32(buf, processID)
	buf = appendUint32(buf, secretKey)
	return buf
}

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendInt32(buf []byte, v int32) []byte {
	return appendUint32(buf, uint32(v))
}
