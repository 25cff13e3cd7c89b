// Package protocol drives the backend message state machines on top of
// internal/connio's transport and internal/wire's codec: the startup/auth
// handshake, the generic "read messages until ReadyForQuery" loop shared
// by simple and extended/pipeline execution, and CancelRequest. It knows
// nothing about the qail AST — the root package decodes DataRow bytes
// into qail.Value itself, keeping this package reusable and free of an
// import cycle back into the root package.
package protocol

// ConnState tracks where a connection sits relative to a transaction,
// mirrored from the 'Z' ReadyForQuery status byte (spec §4.7).
type ConnState int

const (
	StateUnknown ConnState = iota
	StateIdle
	StateInTransaction
	StateTransactionFailed
)

// NextState derives the post-ReadyForQuery state from its status byte:
// 'I' idle, 'T' in transaction, 'E' failed transaction.
func NextState(statusByte byte) ConnState {
	switch statusByte {
	case 'I':
		return StateIdle
	case 'T':
		return StateInTransaction
	case 'E':
		return StateTransactionFailed
	default:
		return StateUnknown
	}
}
