package qail

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a machine-readable error category, one of the shapes in the
// core's error handling design. Callers should switch on Kind rather than
// on error strings.
type Kind string

const (
	// ConnectFailed covers TCP/TLS dial failures and DNS errors.
	ConnectFailed Kind = "connect_failed"
	// AuthFailed covers an authentication method that was rejected by the
	// backend, or one the driver does not support.
	AuthFailed Kind = "auth_failed"
	// ProtocolViolation covers an unexpected message tag or a framing
	// error. Connections carrying this error are always poisoned.
	ProtocolViolation Kind = "protocol_violation"
	// InvalidAst covers an encoder-side invariant break; no bytes are
	// sent to the backend.
	InvalidAst Kind = "invalid_ast"
	// InvalidParameter covers a value-level issue: out of range, or a
	// NUL byte inside a text parameter.
	InvalidParameter Kind = "invalid_parameter"
	// Server wraps a backend ErrorResponse ('E') message. The connection
	// remains usable once the following ReadyForQuery is observed.
	Server Kind = "server"
	// TransactionAborted is raised when ReadyForQuery reports the 'E'
	// transaction status byte; a ROLLBACK is required before further
	// statements will be accepted.
	TransactionAborted Kind = "transaction_aborted"
	// PoolTimeout covers a checkout that exceeded its deadline.
	PoolTimeout Kind = "pool_timeout"
	// Cancelled covers task cancellation at an I/O suspension point; the
	// connection is always poisoned afterward.
	Cancelled Kind = "cancelled"
	// Decode covers a row decoder failure. It is scoped per-row: later
	// rows in the same result set may still decode successfully.
	Decode Kind = "decode"
)

// Error is the shape every error surfaced by this module takes. Kind is
// always set; Cause is nil unless the error wraps an underlying one.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Server-only fields, populated from the backend's ErrorResponse.
	Code   string
	Detail string
	Hint   string

	// InvalidParameter-only field: which positional parameter (0-based)
	// triggered the failure.
	ParamIndex int
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("qail: %s: %s", e.Kind, e.Message)
	if e.Code != "" {
		msg = fmt.Sprintf("%s (code=%s)", msg, e.Code)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap lets errors.Is / errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// newErr builds an *Error with no wrapped cause.
func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapErr builds an *Error that wraps cause via github.com/pkg/errors, so
// %+v printing on the result still carries a stack trace from the point
// the underlying failure occurred.
func wrapErr(kind Kind, cause error, format string, args ...interface{}) *Error {
	if cause == nil {
		return newErr(kind, format, args...)
	}
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   errors.Wrap(cause, string(kind)),
	}
}

// ServerError builds the Server-kind error from a decoded ErrorResponse.
func ServerError(code, message, detail, hint string) *Error {
	return &Error{
		Kind:    Server,
		Message: message,
		Code:    code,
		Detail:  detail,
		Hint:    hint,
	}
}

// InvalidAstError reports an encoder-side invariant break. No I/O has
// happened when this is returned.
func InvalidAstError(reason string) *Error {
	return newErr(InvalidAst, "%s", reason)
}

// InvalidParameterError reports a value-level issue for parameter index i.
func InvalidParameterError(index int, reason string) *Error {
	e := newErr(InvalidParameter, "%s", reason)
	e.ParamIndex = index
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, unwrapping
// as needed, and false when the chain holds no *Error.
func KindOf(err error) (Kind, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind, true
	}
	return "", false
}
