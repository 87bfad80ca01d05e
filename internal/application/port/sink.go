package port

import (
	"context"

	"github.com/bradsherman/tardis-node/internal/domain/model"
)

// EventSink consumes the normalized event stream.
type EventSink interface {
	WriteTrade(ctx context.Context, t *model.Trade) error
	WriteBookChange(ctx context.Context, b *model.BookChange) error
	Close() error
}

// Metrics is the counting surface used by the normalizer and transport.
type Metrics interface {
	FrameProcessed(exchange, result string)
	EventEmitted(exchange string, kind model.EventKind)
	Disconnected(exchange string)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) FrameProcessed(string, string)        {}
func (NopMetrics) EventEmitted(string, model.EventKind) {}
func (NopMetrics) Disconnected(string)                  {}
