package udp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/couchcryptid/tempest-listener/internal/domain"
)

// Conn receives Tempest broadcasts. It implements pipeline.Receiver and is
// meant to be read from a single goroutine.
type Conn struct {
	pc  net.PacketConn
	buf []byte
}

// Listen binds addr (e.g. "0.0.0.0:50222"). A failure here is a startup error.
func Listen(ctx context.Context, addr string, logger *slog.Logger) (*Conn, error) {
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind udp %s: %w", addr, err)
	}
	logger.Info("udp listener bound", "addr", pc.LocalAddr().String())
	return &Conn{
		pc:  pc,
		buf: make([]byte, domain.MaxDatagramSize),
	}, nil
}

// Receive blocks until a datagram arrives. Cancelling ctx unblocks a pending
// read and returns ctx.Err().
func (c *Conn) Receive(ctx context.Context) (domain.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawMessage{}, err
	}
	if err := c.pc.SetReadDeadline(time.Time{}); err != nil {
		return domain.RawMessage{}, fmt.Errorf("reset read deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.pc.SetReadDeadline(time.Now())
	})
	defer stop()

	n, src, err := c.pc.ReadFrom(c.buf)
	if err != nil {
		if ctx.Err() != nil {
			return domain.RawMessage{}, ctx.Err()
		}
		return domain.RawMessage{}, fmt.Errorf("read udp: %w", err)
	}

	payload := make([]byte, n)
	copy(payload, c.buf[:n])
	return domain.RawMessage{
		Payload:    payload,
		Source:     src,
		ReceivedAt: time.Now(),
	}, nil
}

// LocalAddr returns the bound address.
func (c *Conn) LocalAddr() net.Addr {
	return c.pc.LocalAddr()
}

func (c *Conn) Close() error {
	return c.pc.Close()
}
