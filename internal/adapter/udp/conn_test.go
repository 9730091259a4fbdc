package udp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func listenLoopback(t *testing.T) *Conn {
	t.Helper()
	c, err := Listen(context.Background(), "127.0.0.1:0", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, to net.Addr, payload []byte) {
	t.Helper()
	conn, err := net.Dial("udp", to.String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write(payload)
	require.NoError(t, err)
}

func TestConn_ReceivesDatagrams(t *testing.T) {
	c := listenLoopback(t)

	send(t, c.LocalAddr(), []byte(`{"type":"rapid_wind"}`))
	send(t, c.LocalAddr(), []byte(`{}`))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"rapid_wind"}`, string(first.Payload))
	assert.NotNil(t, first.Source)
	assert.False(t, first.ReceivedAt.IsZero())

	second, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(second.Payload))

	// Payloads are copies, not views into the shared read buffer.
	assert.Equal(t, `{"type":"rapid_wind"}`, string(first.Payload))
}

func TestConn_ReceiveUnblocksOnCancel(t *testing.T) {
	c := listenLoopback(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Receive did not return after cancel")
	}
}

func TestConn_ReceiveAfterCloseFails(t *testing.T) {
	c, err := Listen(context.Background(), "127.0.0.1:0", testLogger())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Receive(context.Background())
	require.Error(t, err)
}

func TestListen_PortInUse(t *testing.T) {
	c := listenLoopback(t)

	_, err := Listen(context.Background(), c.LocalAddr().String(), testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind udp")
}
