// Package connio owns the raw transport: TCP dial, the SSLRequest
// upgrade handshake, and the buffered reader/writer pair every later
// layer (internal/protocol, the statement cache, the pool) builds on.
// Grounded on the teacher's go/go/driver.go connect/upgradeToSSL, with
// its TLS verification hole closed and its SSL negotiation modes
// generalized to disable/prefer/require (spec §4.1, §4.9).
package connio

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"

	"github.com/pkg/errors"

	"github.com/qail-lang/qail/internal/wire"
)

// SSLMode mirrors the driver-level sslmode options without importing the
// root package (which would create an import cycle back into connio).
type SSLMode int

const (
	SSLDisable SSLMode = iota
	SSLPrefer
	SSLRequire
)

// Options configures a single Dial call.
type Options struct {
	Host    string
	Port    string
	SSLMode SSLMode

	// TLSConfig, when non-nil, overrides the default verifying config
	// built from Host. Tests substitute an InsecureSkipVerify config
	// here; production code should leave this nil.
	TLSConfig *tls.Config

	ReadBufferSize  int
	WriteBufferSize int
}

const (
	defaultReadBuffer  = 16384
	defaultWriteBuffer = 16384
)

// Conn is a dialed, optionally TLS-upgraded connection with buffered I/O
// and a wire.Decoder attached to the read side. It performs no protocol
// logic of its own — internal/protocol drives the startup and query
// state machines over it.
type Conn struct {
	netConn net.Conn
	Reader  *bufio.Reader
	Writer  *bufio.Writer
	Decoder *wire.Decoder

	// TLSConnectionState is nil unless the connection was upgraded,
	// needed by internal/scram to compute SCRAM-SHA-256-PLUS channel
	// binding data.
	TLSConnectionState *tls.ConnectionState
}

// Dial opens a TCP connection to opts.Host:opts.Port and, depending on
// SSLMode, attempts the SSLRequest upgrade before any startup bytes are
// sent (spec §4.1, §4.9).
func Dial(ctx context.Context, opts Options) (*Conn, error) {
	addr := net.JoinHostPort(opts.Host, opts.Port)
	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "connio: dial")
	}

	netConn := raw
	var tlsState *tls.ConnectionState

	if opts.SSLMode != SSLDisable {
		tlsConn, upgradeErr := upgradeToSSL(ctx, raw, opts)
		switch {
		case upgradeErr == nil:
			netConn = tlsConn
			state := tlsConn.ConnectionState()
			tlsState = &state
		case opts.SSLMode == SSLRequire:
			raw.Close()
			return nil, errors.Wrap(upgradeErr, "connio: SSL required but negotiation failed")
		default:
			// SSLPrefer: continue unencrypted over the original socket.
		}
	}

	readSize := opts.ReadBufferSize
	if readSize <= 0 {
		readSize = defaultReadBuffer
	}
	writeSize := opts.WriteBufferSize
	if writeSize <= 0 {
		writeSize = defaultWriteBuffer
	}

	reader := bufio.NewReaderSize(netConn, readSize)
	c := &Conn{
		netConn:            netConn,
		Reader:             reader,
		Writer:             bufio.NewWriterSize(netConn, writeSize),
		Decoder:            wire.NewDecoder(reader),
		TLSConnectionState: tlsState,
	}
	return c, nil
}

// upgradeToSSL sends the raw 8-byte SSLRequest and, if the server
// responds 'S', performs the TLS client handshake over conn.
func upgradeToSSL(ctx context.Context, conn net.Conn, opts Options) (*tls.Conn, error) {
	var buf []byte
	buf = wire.WriteSSLRequest(buf)
	if _, err := conn.Write(buf); err != nil {
		return nil, errors.Wrap(err, "connio: writing SSLRequest")
	}

	resp := make([]byte, 1)
	if _, err := readFull(conn, resp); err != nil {
		return nil, errors.Wrap(err, "connio: reading SSLRequest response")
	}
	if resp[0] != 'S' {
		return nil, errors.New("connio: server rejected SSLRequest")
	}

	tlsConfig := opts.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: opts.Host}
	}
	tlsConn := tls.Client(conn, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, errors.Wrap(err, "connio: TLS handshake")
	}
	return tlsConn, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Write buffers p and flushes it to the connection immediately; every
// outbound message (startup, queries, pipelines, COPY data) goes through it.
func (c *Conn) Write(p []byte) error {
	if _, err := c.Writer.Write(p); err != nil {
		return errors.Wrap(err, "connio: write")
	}
	return c.Writer.Flush()
}

// Flush flushes any buffered writes without requiring a fresh Write
// call. Nothing in the module calls it, since Write already flushes.
func (c *Conn) Flush() error {
	return errors.Wrap(c.Writer.Flush(), "connio: flush")
}

// Close closes the underlying network connection.
func (c *Conn) Close() error {
	return c.netConn.Close()
}

// RemoteAddr exposes the peer address for logging.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}
