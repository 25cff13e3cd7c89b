package connio

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialPlaintextWriteAndRead(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		_, _ = conn.Read(buf)
		_, _ = conn.Write([]byte("pong!"))
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, Options{Host: host, Port: port, SSLMode: SSLDisable})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Write([]byte("ping!")))

	resp := make([]byte, 5)
	n, err := c.Reader.Read(resp)
	require.NoError(t, err)
	assert.Equal(t, "pong!", string(resp[:n]))

	<-serverDone
	assert.Nil(t, c.TLSConnectionState)
}

func TestDialRequireSSLFailsAgainstPlaintextServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		_, _ = r.Discard(8) // consume the SSLRequest
		_, _ = conn.Write([]byte{'N'}) // server refuses SSL
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = Dial(ctx, Options{Host: host, Port: port, SSLMode: SSLRequire})
	require.Error(t, err)
}
