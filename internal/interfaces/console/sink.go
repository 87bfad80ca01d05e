package console

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
)

// Sink prints one JSON object per event, one per line.
type Sink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewSink() *Sink { return NewWriterSink(os.Stdout) }

func NewWriterSink(w io.Writer) *Sink {
	return &Sink{enc: json.NewEncoder(w)}
}

func (s *Sink) WriteTrade(ctx context.Context, t *model.Trade) error {
	return s.write(t)
}

func (s *Sink) WriteBookChange(ctx context.Context, b *model.BookChange) error {
	return s.write(b)
}

func (s *Sink) write(e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(e) // Encode appends the newline
}

func (s *Sink) Close() error { return nil }

var _ port.EventSink = (*Sink)(nil)
