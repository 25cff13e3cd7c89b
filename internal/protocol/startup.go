package protocol

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/qail-lang/qail/internal/connio"
	"github.com/qail-lang/qail/internal/scram"
	"github.com/qail-lang/qail/internal/wire"
)

// AuthFailedError wraps an authentication-stage failure so the root
// package can classify it as Kind AuthFailed without string matching.
type AuthFailedError struct{ msg string }

func (e *AuthFailedError) Error() string { return e.msg }

func authFailed(format string, args ...interface{}) error {
	return &AuthFailedError{msg: errors.Errorf(format, args...).Error()}
}

// ServerStartupError wraps a backend ErrorResponse seen during startup.
type ServerStartupError struct{ Fields wire.ErrorFields }

func (e *ServerStartupError) Error() string { return "protocol: startup rejected: " + e.Fields.Message }

// StartupResult carries what the backend told us once ReadyForQuery
// arrives.
type StartupResult struct {
	ProcessID       uint32
	SecretKey       uint32
	ParameterStatus map[string]string
}

// Startup performs the full StartupMessage → auth → ReadyForQuery
// handshake (spec §4.1, §4.9). params must include at least "user" and
// "database"; password may be empty for trust/peer auth.
func Startup(conn *connio.Conn, params map[string]string, password string) (*StartupResult, error) {
	var buf []byte
	buf = wire.WriteStartup(buf, params)
	if err := conn.Write(buf); err != nil {
		return nil, err
	}

	result := &StartupResult{ParameterStatus: make(map[string]string)}
	username := params["user"]

	for {
		tag, payload, err := conn.Decoder.ReadMessage()
		if err != nil {
			return nil, errors.Wrap(err, "protocol: reading startup response")
		}

		switch tag {
		case wire.TagAuth:
			authType, rest := wire.ParseAuth(payload)
			done, err := handleAuth(conn, authType, rest, username, password)
			if err != nil {
				return nil, err
			}
			if done {
				continue
			}
		case wire.TagBackendKeyData:
			result.ProcessID, result.SecretKey = wire.BackendKeyData(payload)
		case wire.TagParameterStatus:
			name, value := wire.ParameterStatus(payload)
			result.ParameterStatus[name] = value
		case wire.TagReadyForQuery:
			return result, nil
		case wire.TagErrorResponse:
			fields := wire.ParseErrorFields(payload)
			return nil, &ServerStartupError{Fields: fields}
		case wire.TagNegotiateProto:
			// Older/newer protocol negotiation: this codec only speaks 3.0
			// and treats a mismatch as a protocol violation further up.
			return nil, errors.New("protocol: server requested protocol negotiation, which this driver does not support")
		default:
			// Notices and any other informational message before
			// ReadyForQuery are ignored during startup.
		}
	}
}

// handleAuth processes one Authentication ('R') message, writing
// whatever response the method requires. It returns done=true once the
// method produced AuthenticationOk and no further client message is
// needed for that step (more 'R' messages may still follow, e.g. a SASL
// continuation).
func handleAuth(conn *connio.Conn, authType uint32, rest []byte, username, password string) (bool, error) {
	switch authType {
	case wire.AuthOK:
		return true, nil
	case wire.AuthCleartext:
		return false, sendCleartext(conn, password)
	case wire.AuthMD5:
		if len(rest) < 4 {
			return false, authFailed("MD5 auth: short salt")
		}
		return false, sendMD5(conn, username, password, rest[:4])
	case wire.AuthSASL:
		return false, runSASL(conn, username, password, rest)
	default:
		return false, authFailed("unsupported authentication method %d", authType)
	}
}

func sendCleartext(conn *connio.Conn, password string) error {
	var buf []byte
	buf = wire.WritePasswordMessage(buf, append([]byte(password), 0))
	return conn.Write(buf)
}

func sendMD5(conn *connio.Conn, username, password string, salt []byte) error {
	inner := md5.Sum([]byte(password + username))
	innerHex := hex.EncodeToString(inner[:])
	outer := md5.Sum(append([]byte(innerHex), salt...))
	hashed := "md5" + hex.EncodeToString(outer[:])

	var buf []byte
	buf = wire.WritePasswordMessage(buf, append([]byte(hashed), 0))
	return conn.Write(buf)
}

// runSASL drives the whole SCRAM-SHA-256(-PLUS) exchange: the mechanism
// list arrived in rest as a NUL-separated string; the caller has already
// consumed AuthenticationSASL's type code.
func runSASL(conn *connio.Conn, username, password string, mechanismList []byte) error {
	mechanisms := splitNUL(mechanismList)

	var channelBinding []byte
	mechanism := scram.MechanismSHA256
	if conn.TLSConnectionState != nil && contains(mechanisms, scram.MechanismSHA256Plus) {
		cb, err := tlsServerEndPointHash(*conn.TLSConnectionState)
		if err == nil {
			channelBinding = cb
			mechanism = scram.MechanismSHA256Plus
		}
	}
	if !contains(mechanisms, mechanism) {
		return authFailed("server does not advertise %s", mechanism)
	}

	client := scram.NewClient(username, password, channelBinding)

	var buf []byte
	buf = wire.WriteSASLInitialResponse(buf, client.Mechanism(), client.ClientFirst())
	if err := conn.Write(buf); err != nil {
		return err
	}

	tag, payload, err := conn.Decoder.ReadMessage()
	if err != nil {
		return errors.Wrap(err, "protocol: reading SASL continuation")
	}
	if tag == wire.TagErrorResponse {
		fields := wire.ParseErrorFields(payload)
		return &ServerStartupError{Fields: fields}
	}
	if tag != wire.TagAuth {
		return authFailed("expected AuthenticationSASLContinue, got tag %q", tag)
	}
	authType, serverFirst := wire.ParseAuth(payload)
	if authType != wire.AuthSASLContinue {
		return authFailed("expected AuthenticationSASLContinue, got auth type %d", authType)
	}

	clientFinal, err := client.ClientFinal(serverFirst)
	if err != nil {
		return errors.Wrap(err, "protocol: SCRAM client-final")
	}

	buf = buf[:0]
	buf = wire.WriteSASLResponse(buf, clientFinal)
	if err := conn.Write(buf); err != nil {
		return err
	}

	tag, payload, err = conn.Decoder.ReadMessage()
	if err != nil {
		return errors.Wrap(err, "protocol: reading SASL final")
	}
	if tag == wire.TagErrorResponse {
		fields := wire.ParseErrorFields(payload)
		return &ServerStartupError{Fields: fields}
	}
	if tag != wire.TagAuth {
		return authFailed("expected AuthenticationSASLFinal, got tag %q", tag)
	}
	authType, serverFinal := wire.ParseAuth(payload)
	if authType != wire.AuthSASLFinal {
		return authFailed("expected AuthenticationSASLFinal, got auth type %d", authType)
	}
	if err := client.VerifyServerFinal(serverFinal); err != nil {
		return errors.Wrap(err, "protocol: SCRAM server verification")
	}

	// The backend still owes us a final AuthenticationOk ('R' type 0)
	// before ReadyForQuery; Startup's main loop reads and accepts it.
	tag, payload, err = conn.Decoder.ReadMessage()
	if err != nil {
		return errors.Wrap(err, "protocol: reading post-SCRAM AuthenticationOk")
	}
	if tag != wire.TagAuth {
		return authFailed("expected AuthenticationOk after SCRAM, got tag %q", tag)
	}
	authType, _ = wire.ParseAuth(payload)
	if authType != wire.AuthOK {
		return authFailed("expected AuthenticationOk after SCRAM, got auth type %d", authType)
	}
	return nil
}

func splitNUL(b []byte) []string {
	var out []string
	start := 0
	for i, c := range b {
		if c == 0 {
			if i > start {
				out = append(out, string(b[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, string(b[start:]))
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
