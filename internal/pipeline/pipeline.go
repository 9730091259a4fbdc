package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/tempest-listener/internal/domain"
	"github.com/couchcryptid/tempest-listener/internal/observability"
)

// Receiver blocks until the next datagram arrives or the transport fails.
type Receiver interface {
	Receive(ctx context.Context) (domain.RawMessage, error)
}

// Sink stores one normalized observation.
type Sink interface {
	Insert(ctx context.Context, w domain.Weather) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Listener runs the receive-decode-normalize-store loop. Every per-datagram
// failure is logged and counted; none of them stops the loop.
type Listener struct {
	receiver Receiver
	sink     Sink
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Listener reading from r and storing into s.
func New(r Receiver, s Sink, logger *slog.Logger, metrics *observability.Metrics) *Listener {
	return &Listener{
		receiver: r,
		sink:     s,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once at least one observation has been stored.
func (l *Listener) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("no observation stored yet")
	}
	return nil
}

// Run processes datagrams until ctx is cancelled. It returns nil on
// cancellation; there is no other exit.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("listener started")
	l.metrics.ListenerRunning.Set(1)
	defer l.metrics.ListenerRunning.Set(0)

	backoff := time.Duration(0)
	for {
		if ctx.Err() != nil {
			l.logger.Info("listener stopping", "reason", ctx.Err())
			return nil
		}

		msg, err := l.receiver.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			l.logger.Error("receive failed", "error", err)
			l.metrics.TransportErrors.Inc()

			// Consecutive transport errors back off so a dead socket does not spin.
			backoff = nextBackoff(backoff)
			sleepWithContext(ctx, backoff)
			continue
		}
		backoff = 0

		l.process(ctx, msg)
	}
}

// process handles one datagram. It never returns an error; every outcome is
// reported through the logger and metrics.
func (l *Listener) process(ctx context.Context, msg domain.RawMessage) {
	l.metrics.DatagramsReceived.Inc()

	packet, err := domain.Decode(msg.Payload)
	if err != nil {
		l.reportDecodeError(msg, err)
		return
	}

	w, ok := domain.Normalize(packet)
	if !ok {
		l.metrics.PacketsDecoded.WithLabelValues(packetLabel(packet)).Inc()
		l.logger.Debug("packet decoded", "packet", packet, "source", addrString(msg))
		return
	}
	l.metrics.PacketsDecoded.WithLabelValues(string(domain.TypeObservation)).Inc()

	if err := l.sink.Insert(ctx, w); err != nil {
		l.logger.Error("store observation failed",
			"error", err,
			"time_epoch", w.TimeEpoch,
		)
		l.metrics.StorageErrors.Inc()
		return
	}

	l.metrics.ObservationsStored.Inc()
	l.ready.Store(true)
	l.logger.Debug("observation stored", "time_epoch", w.TimeEpoch)
}

func (l *Listener) reportDecodeError(msg domain.RawMessage, err error) {
	var de *domain.DecodeError
	if !errors.As(err, &de) {
		l.logger.Warn("decode failed", "error", err, "payload", string(msg.Payload))
		l.metrics.DecodeErrors.WithLabelValues("unknown").Inc()
		return
	}

	l.metrics.DecodeErrors.WithLabelValues(de.Kind.String()).Inc()
	attrs := []any{
		"error", err,
		"kind", de.Kind.String(),
		"source", addrString(msg),
		"payload", string(msg.Payload),
	}
	if de.Kind == domain.Malformed {
		attrs = append(attrs, "variant", string(de.Variant), "field", de.Field, "value", de.Value)
	}
	l.logger.Warn("decode failed", attrs...)
}

func packetLabel(p domain.Packet) string {
	if _, ok := p.(*domain.Unrecognized); ok {
		return "unrecognized"
	}
	return string(p.Type())
}

func addrString(msg domain.RawMessage) string {
	if msg.Source == nil {
		return ""
	}
	return msg.Source.String()
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
