package qail

import (
	"context"
	"crypto/tls"

	"github.com/jackc/puddle/v2"

	"github.com/qail-lang/qail/internal/connio"
	"github.com/qail-lang/qail/internal/protocol"
	"github.com/qail-lang/qail/internal/wire"
	"github.com/qail-lang/qail/pool"
)

// This file is the public driver surface (spec §6): Connect/Query/
// Execute/Batch/CopyIn/Transaction. It owns the pool of pooledConns,
// each holding its own connio.Conn, stmtCache, and transaction state,
// and is the one place the AST (command.go), the wire codec
// (internal/wire), the protocol state machine (internal/protocol), and
// the row decoder (rows.go) all come together.

// Driver is a connection pool bound to one Postgres server/database.
type Driver struct {
	cfg    *ConnConfig
	notice NoticeHandler
	tls    *tls.Config
	pool   *pool.Pool[*pooledConn]
}

// pooledConn is one pool resource: a live connection plus its connection-
// scoped prepared statement cache and last-known transaction state.
type pooledConn struct {
	conn    *connio.Conn
	stmts   *stmtCache
	startup *protocol.StartupResult
	state   protocol.ConnState
}

// Option customizes Connect beyond what the DSN encodes.
type Option func(*Driver)

// WithNoticeHandler overrides the default logrus-backed notice handler.
func WithNoticeHandler(h NoticeHandler) Option {
	return func(d *Driver) { d.notice = h }
}

// WithTLSConfig overrides the default verifying TLS config (tests use
// this to supply an InsecureSkipVerify config against a self-signed
// test server).
func WithTLSConfig(cfg *tls.Config) Option {
	return func(d *Driver) { d.tls = cfg }
}

// Connect parses dsn, validates it, and constructs a Driver backed by a
// bounded connection pool. When pool_min_conns is set, Connect dials up
// to that many connections before returning (a failed dial stops the
// pre-warm without failing Connect); otherwise no network I/O happens
// until the first Query/Execute/Batch/CopyIn/Transaction call acquires a
// connection.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Driver, error) {
	cfg, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	d := &Driver{cfg: cfg, notice: defaultNoticeHandler}
	for _, opt := range opts {
		opt(d)
	}

	p, err := pool.New(ctx, pool.Config[*pooledConn]{
		Constructor: d.dialOne,
		Destructor:  func(pc *pooledConn) { pc.conn.Close() },
		MaxSize:     int32(cfg.PoolMaxConns),
		MinIdle:     int32(cfg.PoolMinConns),
	})
	if err != nil {
		return nil, wrapErr(ConnectFailed, err, "constructing connection pool")
	}
	d.pool = p
	return d, nil
}

func (d *Driver) dialOne(ctx context.Context) (*pooledConn, error) {
	sslMode := connio.SSLPrefer
	switch d.cfg.SSLMode {
	case SSLDisable:
		sslMode = connio.SSLDisable
	case SSLRequire:
		sslMode = connio.SSLRequire
	}

	conn, err := connio.Dial(ctx, connio.Options{
		Host:      d.cfg.Host,
		Port:      d.cfg.Port,
		SSLMode:   sslMode,
		TLSConfig: d.tls,
	})
	if err != nil {
		return nil, wrapErr(ConnectFailed, err, "dialing %s:%s", d.cfg.Host, d.cfg.Port)
	}

	if d.cfg.SSLMode == SSLRequire && conn.TLSConnectionState == nil {
		conn.Close()
		return nil, newErr(ConnectFailed, "sslmode=require but connection is unencrypted")
	}

	params := map[string]string{"user": d.cfg.User, "database": d.cfg.Database}
	if d.cfg.ApplicationName != "" {
		params["application_name"] = d.cfg.ApplicationName
	}
	result, err := protocol.Startup(conn, params, d.cfg.Password)
	if err != nil {
		conn.Close()
		if _, ok := err.(*protocol.AuthFailedError); ok {
			return nil, wrapErr(AuthFailed, err, "authenticating as %s", d.cfg.User)
		}
		return nil, wrapErr(ConnectFailed, err, "startup handshake")
	}

	return &pooledConn{
		conn:    conn,
		stmts:   newStmtCache(d.cfg.StatementCacheSize),
		startup: result,
		state:   protocol.StateIdle,
	}, nil
}

// Close destroys every pooled connection. In-flight Acquire calls fail
// once Close begins.
func (d *Driver) Close() {
	d.pool.Close()
}

func (d *Driver) acquire(ctx context.Context) (*puddle.Resource[*pooledConn], error) {
	res, err := d.pool.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, wrapErr(PoolTimeout, err, "acquiring connection")
		}
		return nil, wrapErr(ConnectFailed, err, "acquiring connection")
	}
	return res, nil
}

// Result is what Execute returns for a Set/Add/Del/DDL command: the
// backend's reported affected-row count (0 for DDL) and any RETURNING
// rows.
type Result struct {
	Affected int64
	Rows     []Row
}

// Query runs a Get command and decodes every returned row. It always
// uses the extended protocol so the statement cache can be consulted.
func (d *Driver) Query(ctx context.Context, c *Command) ([]Row, error) {
	if c.Action != ActionGet {
		return nil, InvalidAstError("Query requires a get command")
	}
	res, err := d.execExtended(ctx, c, nil)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Execute runs a Set/Add/Del/Make/Index/Drop/CreateView/DropView command.
func (d *Driver) Execute(ctx context.Context, c *Command) (*Result, error) {
	if c.Action == ActionGet {
		return nil, InvalidAstError("Execute does not accept a get command; use Query")
	}
	return d.execExtended(ctx, c, nil)
}

func (d *Driver) execExtended(ctx context.Context, c *Command, bindValues []Value) (*Result, error) {
	handle, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	pc := handle.Value()

	plan, err := Prepare(c)
	if err != nil {
		handle.Release()
		return nil, err
	}
	if bindValues == nil {
		bindValues = make([]Value, plan.ParamCount)
	}

	key := PreparedKey{Fingerprint: Fingerprint(c)}
	stmtName := pc.stmts.nextStatementName()
	var buf []byte
	entry, hit := pc.stmts.Lookup(key)
	if hit {
		stmtName = entry.StatementName
	} else if evicted, ok := pc.stmts.Insert(&preparedEntry{key: key, StatementName: stmtName}); ok {
		buf = wire.WriteClose(buf, wire.CloseStatement, evicted)
	}

	describe := c.Action == ActionGet || len(c.ReturningCols) > 0
	buf, err = EncodeSingleExtended(buf, stmtName, "", plan, bindValues, describe)
	if err != nil {
		handle.Release()
		return nil, err
	}
	if hit {
		// The statement is already parsed on this connection, so the Parse
		// frame EncodeSingleExtended wrote first is dropped.
		buf = buf[len(BuildParseFrame(nil, stmtName, plan)):]
	}

	result := &Result{}
	var fields []wire.Field
	status, err := protocol.RunUntilReady(pc.conn, buf, func(ev protocol.Event) error {
		switch ev.Tag {
		case wire.TagRowDescription:
			fields = ev.RowDescription
		case wire.TagDataRow:
			row, err := DecodeRow(fields, ev.DataRow, false)
			if err != nil {
				return err
			}
			result.Rows = append(result.Rows, row)
		case wire.TagCommandComplete:
			result.Affected = parseAffected(ev.CommandTag)
		case wire.TagNoticeResponse:
			if d.notice != nil {
				d.notice(toNotice(*ev.Notice))
			}
		}
		return nil
	})
	pc.state = protocol.NextState(status)

	if err != nil {
		if se, ok := err.(*protocol.ServerError); ok {
			handle.Release()
			if pc.state == protocol.StateTransactionFailed {
				return nil, newErr(TransactionAborted, "transaction aborted: %s", se.Fields.Message)
			}
			return nil, ServerError(se.Fields.Code, se.Fields.Message, se.Fields.Detail, se.Fields.Hint)
		}
		handle.Destroy()
		return nil, wrapErr(ProtocolViolation, err, "executing command")
	}

	handle.Release()
	return result, nil
}

// Batch runs an Add command's rows through the uniform-batch fast path:
// one Parse, one Bind+Execute per row, one Sync (spec §4.4, §5).
func (d *Driver) Batch(ctx context.Context, c *Command) (*Result, error) {
	plan, err := CompileBatch(c)
	if err != nil {
		return nil, err
	}

	handle, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	pc := handle.Value()

	stmtName := pc.stmts.nextStatementName()
	var buf []byte
	buf, err = BuildBatchFrames(buf, stmtName, plan)
	if err != nil {
		handle.Release()
		return nil, err
	}

	result := &Result{}
	var fields []wire.Field
	status, err := protocol.RunUntilReady(pc.conn, buf, func(ev protocol.Event) error {
		switch ev.Tag {
		case wire.TagRowDescription:
			fields = ev.RowDescription
		case wire.TagDataRow:
			row, err := DecodeRow(fields, ev.DataRow, false)
			if err != nil {
				return err
			}
			result.Rows = append(result.Rows, row)
		case wire.TagCommandComplete:
			result.Affected += parseAffected(ev.CommandTag)
		case wire.TagNoticeResponse:
			if d.notice != nil {
				d.notice(toNotice(*ev.Notice))
			}
		}
		return nil
	})
	pc.state = protocol.NextState(status)

	if err != nil {
		if se, ok := err.(*protocol.ServerError); ok {
			handle.Release()
			return nil, ServerError(se.Fields.Code, se.Fields.Message, se.Fields.Detail, se.Fields.Hint)
		}
		handle.Destroy()
		return nil, wrapErr(ProtocolViolation, err, "executing batch")
	}

	handle.Release()
	return result, nil
}

// CopyIn streams rows into table over the COPY protocol, the fastest
// bulk-load path Postgres offers (spec §4.4 "copy_in"). Rows are
// text-encoded tab-separated, matching COPY's default text format.
func (d *Driver) CopyIn(ctx context.Context, table string, columns []string, rows <-chan []Value) (int64, error) {
	handle, err := d.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer handle.Release()
	pc := handle.Value()

	sql := "COPY " + quoteIdent(table) + columnListSQL(columns) + " FROM STDIN"
	var buf []byte
	buf = wire.WriteQuery(buf, sql)

	var copyErr error
	var rowsSent int64
	status, err := protocol.RunUntilReady(pc.conn, buf, func(ev protocol.Event) error {
		if ev.Tag != wire.TagCopyInResponse {
			return nil
		}
		// Stream CopyData messages directly to the connection as they
		// arrive on the channel, then CopyDone.
		for vals := range rows {
			line, encErr := encodeCopyLine(vals)
			if encErr != nil {
				copyErr = encErr
				var failBuf []byte
				failBuf = wire.WriteCopyFail(failBuf, encErr.Error())
				return pc.conn.Write(failBuf)
			}
			var dataBuf []byte
			dataBuf = wire.WriteCopyData(dataBuf, line)
			if err := pc.conn.Write(dataBuf); err != nil {
				return err
			}
			rowsSent++
		}
		var doneBuf []byte
		doneBuf = wire.WriteCopyDone(doneBuf)
		return pc.conn.Write(doneBuf)
	})
	pc.state = protocol.NextState(status)

	if copyErr != nil {
		return 0, wrapErr(InvalidParameter, copyErr, "encoding copy row")
	}
	if err != nil {
		if se, ok := err.(*protocol.ServerError); ok {
			return 0, ServerError(se.Fields.Code, se.Fields.Message, se.Fields.Detail, se.Fields.Hint)
		}
		handle.Destroy()
		return 0, wrapErr(ProtocolViolation, err, "copy_in")
	}
	return rowsSent, nil
}

func columnListSQL(columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	s := "("
	for i, c := range columns {
		if i > 0 {
			s += ", "
		}
		s += quoteIdent(c)
	}
	return s + ")"
}

func encodeCopyLine(vals []Value) ([]byte, error) {
	var line []byte
	for i, v := range vals {
		if i > 0 {
			line = append(line, '\t')
		}
		if v.IsNull() {
			line = append(line, `\N`...)
			continue
		}
		text, err := EncodeText(v, nil)
		if err != nil {
			return nil, err
		}
		line = append(line, escapeCopyText(text)...)
	}
	line = append(line, '\n')
	return line, nil
}

func escapeCopyText(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch c {
		case '\t':
			out = append(out, '\\', 't')
		case '\n':
			out = append(out, '\\', 'n')
		case '\\':
			out = append(out, '\\', '\\')
		default:
			out = append(out, c)
		}
	}
	return out
}

// Tx is a single connection pinned for the lifetime of a Transaction
// callback.
type Tx struct {
	driver *Driver
	pc     *pooledConn
}

// Query runs a Get command against the transaction's pinned connection.
func (tx *Tx) Query(ctx context.Context, c *Command) ([]Row, error) {
	res, err := tx.driver.execOn(ctx, tx.pc, c, nil)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Execute runs a non-Get command against the transaction's pinned
// connection.
func (tx *Tx) Execute(ctx context.Context, c *Command) (*Result, error) {
	return tx.driver.execOn(ctx, tx.pc, c, nil)
}

// execOn is execExtended's logic reused for a pinned Tx connection
// (no acquire/release — the caller already holds the pool resource).
func (d *Driver) execOn(ctx context.Context, pc *pooledConn, c *Command, bindValues []Value) (*Result, error) {
	plan, err := Prepare(c)
	if err != nil {
		return nil, err
	}
	if bindValues == nil {
		bindValues = make([]Value, plan.ParamCount)
	}
	stmtName := pc.stmts.nextStatementName()

	var buf []byte
	describe := c.Action == ActionGet || len(c.ReturningCols) > 0
	buf, err = EncodeSingleExtended(buf, stmtName, "", plan, bindValues, describe)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var fields []wire.Field
	status, err := protocol.RunUntilReady(pc.conn, buf, func(ev protocol.Event) error {
		switch ev.Tag {
		case wire.TagRowDescription:
			fields = ev.RowDescription
		case wire.TagDataRow:
			row, err := DecodeRow(fields, ev.DataRow, false)
			if err != nil {
				return err
			}
			result.Rows = append(result.Rows, row)
		case wire.TagCommandComplete:
			result.Affected = parseAffected(ev.CommandTag)
		}
		return nil
	})
	pc.state = protocol.NextState(status)
	if err != nil {
		if se, ok := err.(*protocol.ServerError); ok {
			return nil, ServerError(se.Fields.Code, se.Fields.Message, se.Fields.Detail, se.Fields.Hint)
		}
		return nil, wrapErr(ProtocolViolation, err, "executing command in transaction")
	}
	return result, nil
}

// Transaction pins one connection, runs BEGIN, calls fn, and commits or
// rolls back depending on whether fn returns an error — including
// rolling back when fn panics, re-panicking afterward.
func (d *Driver) Transaction(ctx context.Context, fn func(tx *Tx) error) (err error) {
	handle, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	pc := handle.Value()
	defer func() {
		if err != nil {
			handle.Destroy()
		} else {
			handle.Release()
		}
	}()

	if err = simpleExec(pc.conn, "BEGIN"); err != nil {
		return wrapErr(ProtocolViolation, err, "BEGIN")
	}

	tx := &Tx{driver: d, pc: pc}
	defer func() {
		if p := recover(); p != nil {
			_ = simpleExec(pc.conn, "ROLLBACK")
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := simpleExec(pc.conn, "ROLLBACK"); rbErr != nil {
			return wrapErr(ProtocolViolation, rbErr, "ROLLBACK after %v", err)
		}
		return err
	}
	if err = simpleExec(pc.conn, "COMMIT"); err != nil {
		return wrapErr(ProtocolViolation, err, "COMMIT")
	}
	return nil
}

// simpleExec runs sql (always a transaction-control statement, never AST
// output) via the Simple Query protocol and drains its response.
func simpleExec(conn *connio.Conn, sql string) error {
	var buf []byte
	buf = wire.WriteQuery(buf, sql)
	_, err := protocol.RunUntilReady(conn, buf, func(protocol.Event) error { return nil })
	if se, ok := err.(*protocol.ServerError); ok {
		return ServerError(se.Fields.Code, se.Fields.Message, se.Fields.Detail, se.Fields.Hint)
	}
	return err
}

func toNotice(f wire.ErrorFields) *Notice {
	return &Notice{Severity: f.Severity, Code: f.Code, Message: f.Message, Detail: f.Detail, Hint: f.Hint}
}

// parseAffected extracts the row count from a CommandComplete tag like
// "INSERT 0 3" or "UPDATE 5"; DDL tags ("CREATE TABLE") carry none.
func parseAffected(tag string) int64 {
	var last, secondLast string
	start := 0
	fields := make([]string, 0, 3)
	for i := 0; i <= len(tag); i++ {
		if i == len(tag) || tag[i] == ' ' {
			if i > start {
				fields = append(fields, tag[start:i])
			}
			start = i + 1
		}
	}
	if len(fields) == 0 {
		return 0
	}
	last = fields[len(fields)-1]
	if len(fields) >= 2 {
		secondLast = fields[len(fields)-2]
	}
	n, ok := parseIntSafe(last)
	if ok {
		return n
	}
	n, ok = parseIntSafe(secondLast)
	if ok {
		return n
	}
	return 0
}

func parseIntSafe(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	return n, true
}
