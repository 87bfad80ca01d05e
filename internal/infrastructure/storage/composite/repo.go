package composite

import (
	"context"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
)

// Repo fans every event out to all sinks. A failing sink does not stop the
// others; the first error is returned.
type Repo struct {
	sinks []port.EventSink
}

func New(sinks ...port.EventSink) *Repo {
	// nil sinks are allowed; filter in constructor for safety
	out := make([]port.EventSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Repo{sinks: out}
}

func (r *Repo) Len() int { return len(r.sinks) }

func (r *Repo) WriteTrade(ctx context.Context, t *model.Trade) error {
	var firstErr error
	for _, sink := range r.sinks {
		if err := sink.WriteTrade(ctx, t); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) WriteBookChange(ctx context.Context, b *model.BookChange) error {
	var firstErr error
	for _, sink := range r.sinks {
		if err := sink.WriteBookChange(ctx, b); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var firstErr error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.EventSink = (*Repo)(nil)
