package domain

import (
	"net"
	"time"
)

// MaxDatagramSize is the largest UDP payload over IPv4.
const MaxDatagramSize = 65507

// RawMessage is one datagram as received from the network.
type RawMessage struct {
	Payload    []byte
	Source     net.Addr
	ReceivedAt time.Time
}
