package service

import (
	"fmt"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
)

// frame results reported to metrics
const (
	ResultOK         = "ok"
	ResultUnhandled  = "unhandled"
	ResultError      = "error"
	ResultDisconnect = "disconnect"
)

// Normalizer routes raw frames of one venue to the mappers that accept them.
// It keeps no per-frame state and is safe for concurrent use.
type Normalizer struct {
	exchange      string
	mappers       []port.Mapper
	subscriptions port.SubscriptionBuilder
	metrics       port.Metrics
}

func NewNormalizer(exchange string, mappers []port.Mapper, subscriptions port.SubscriptionBuilder, metrics port.Metrics) *Normalizer {
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &Normalizer{
		exchange:      exchange,
		mappers:       mappers,
		subscriptions: subscriptions,
		metrics:       metrics,
	}
}

func (n *Normalizer) Exchange() string { return n.exchange }

// Normalize maps one frame. Events from every accepting mapper are returned in
// mapper order. A disconnect notice yields model.ErrVenueDisconnect; a frame no
// mapper accepts yields no events and no error.
func (n *Normalizer) Normalize(frame port.Frame) ([]model.Event, error) {
	msg, err := model.ParseMessage(frame.Data)
	if err != nil {
		n.metrics.FrameProcessed(n.exchange, ResultError)
		return nil, fmt.Errorf("%s: %w", n.exchange, err)
	}

	if n.subscriptions != nil && n.subscriptions.IsErrorMessage(msg) {
		n.metrics.FrameProcessed(n.exchange, ResultDisconnect)
		n.metrics.Disconnected(n.exchange)
		return nil, fmt.Errorf("%s: %w: %s", n.exchange, model.ErrVenueDisconnect, frame.Data)
	}

	var (
		events  []model.Event
		handled bool
	)
	for _, m := range n.mappers {
		if !m.CanHandle(msg) {
			continue
		}
		handled = true
		out, err := m.Map(msg, frame.LocalTimestamp)
		if err != nil {
			n.metrics.FrameProcessed(n.exchange, ResultError)
			return nil, err
		}
		events = append(events, out...)
	}

	if !handled {
		n.metrics.FrameProcessed(n.exchange, ResultUnhandled)
		return nil, nil
	}
	n.metrics.FrameProcessed(n.exchange, ResultOK)
	for _, e := range events {
		n.metrics.EventEmitted(n.exchange, e.Kind())
	}
	return events, nil
}
