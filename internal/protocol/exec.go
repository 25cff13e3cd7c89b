package protocol

import (
	"github.com/pkg/errors"

	"github.com/qail-lang/qail/internal/connio"
	"github.com/qail-lang/qail/internal/wire"
)

// Event is one decoded backend message relevant to query execution. Only
// the fields matching Tag are populated.
type Event struct {
	Tag byte

	RowDescription []wire.Field
	DataRow        [][]byte
	CommandTag     string
	Error          *wire.ErrorFields
	Notice         *wire.ErrorFields
	ReadyStatus    byte
}

// ServerError is returned by RunUntilReady when the backend sends an
// ErrorResponse; the root package turns it into a Kind Server error.
type ServerError struct{ Fields wire.ErrorFields }

func (e *ServerError) Error() string { return "protocol: server error: " + e.Fields.Message }

// RunUntilReady writes outbound (already-framed, may be empty if the
// caller already flushed it separately), then reads and dispatches
// messages to handle until a ReadyForQuery arrives, returning its status
// byte. handle is called for every RowDescription/DataRow/CommandComplete/
// NoData/ParseComplete/BindComplete/CloseComplete/Notice/CopyIn/CopyOut/
// CopyData/CopyDone event; an ErrorResponse is captured and, once
// ReadyForQuery confirms the backend has finished unwinding, returned as
// a *ServerError rather than passed to handle (spec §4.7: a single
// ErrorResponse aborts the rest of the current pipeline up to the next
// Sync, so everything is drained before surfacing it).
func RunUntilReady(conn *connio.Conn, outbound []byte, handle func(Event) error) (byte, error) {
	if len(outbound) > 0 {
		if err := conn.Write(outbound); err != nil {
			return 0, err
		}
	}

	var serverErr *ServerError
	for {
		tag, payload, err := conn.Decoder.ReadMessage()
		if err != nil {
			return 0, errors.Wrap(err, "protocol: reading message")
		}

		ev := Event{Tag: tag}
		switch tag {
		case wire.TagRowDescription:
			fields, err := wire.ParseRowDescription(payload)
			if err != nil {
				return 0, errors.Wrap(err, "protocol: parsing RowDescription")
			}
			ev.RowDescription = fields
		case wire.TagDataRow:
			cols, err := wire.ParseDataRow(payload)
			if err != nil {
				return 0, errors.Wrap(err, "protocol: parsing DataRow")
			}
			ev.DataRow = cols
		case wire.TagCommandComplete:
			ev.CommandTag = wire.CommandComplete(payload)
		case wire.TagErrorResponse:
			fields := wire.ParseErrorFields(payload)
			serverErr = &ServerError{Fields: fields}
			continue
		case wire.TagNoticeResponse:
			fields := wire.ParseErrorFields(payload)
			ev.Notice = &fields
		case wire.TagReadyForQuery:
			status := wire.ReadyForQuery(payload)
			if serverErr != nil {
				return status, serverErr
			}
			return status, nil
		case wire.TagNoData, wire.TagParseComplete, wire.TagBindComplete, wire.TagCloseComplete,
			wire.TagCopyInResponse, wire.TagCopyOutResponse, wire.TagCopyBothResponse,
			wire.TagCopyData, wire.TagCopyDone, wire.TagEmptyQuery,
			wire.TagParamDescription, wire.TagPortalSuspended:
			// Fall through to handle() with no extra decoding needed.
		default:
			return 0, errors.Errorf("protocol: unexpected message tag %q", tag)
		}

		if err := handle(ev); err != nil {
			return 0, err
		}
	}
}

// SendCancel writes a CancelRequest for processID/secretKey to conn. It
// does not open a connection of its own: the request goes over whatever
// conn it is given. PostgreSQL does not reply to CancelRequest; the
// caller closes the connection immediately after.
func SendCancel(conn *connio.Conn, processID, secretKey uint32) error {
	var buf []byte
	buf = wire.WriteCancelRequest(buf, processID, secretKey)
	return conn.Write(buf)
}
