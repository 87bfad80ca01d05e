package port

import (
	"context"
	"time"
)

// Frame is one raw inbound message stamped on receipt.
type Frame struct {
	Data           []byte
	LocalTimestamp time.Time
}

// Transport owns the venue connection. Run sends payloads on every
// (re)connect and streams frames to handle until ctx ends. The handler's error, if any,
// ends the current connection; the transport then reconnects.
type Transport interface {
	Name() string
	Run(ctx context.Context, payloads []any, handle func(Frame) error) error
}
