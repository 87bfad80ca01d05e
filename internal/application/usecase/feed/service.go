package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// Normalizer is the part of service.Normalizer the feed loop needs.
type Normalizer interface {
	Exchange() string
	Normalize(frame port.Frame) ([]model.Event, error)
}

type ServiceDeps struct {
	Transport     port.Transport
	Normalizer    Normalizer
	Subscriptions port.SubscriptionBuilder
	Filters       []model.Filter
	Sink          port.EventSink
}

// Service streams one venue: subscribe, normalize, write.
type Service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) *Service {
	return &Service{deps: deps}
}

// Payloads builds the subscribe messages. Invalid filters fail here, before
// any connection is attempted.
func (s *Service) Payloads() ([]any, error) {
	if len(s.deps.Filters) == 0 {
		return nil, fmt.Errorf("%s: %w: no filters", s.deps.Normalizer.Exchange(), model.ErrInvalidFilter)
	}
	return s.deps.Subscriptions.SubscribeMessages(s.deps.Filters)
}

func (s *Service) Run(ctx context.Context) error {
	payloads, err := s.Payloads()
	if err != nil {
		return err
	}

	exchange := s.deps.Normalizer.Exchange()
	log.Info().Str("exchange", exchange).Int("filters", len(s.deps.Filters)).Msg("feed started")

	err = s.deps.Transport.Run(ctx, payloads, func(f port.Frame) error {
		return s.handle(ctx, f)
	})
	if errors.Is(err, context.Canceled) {
		return ctx.Err()
	}
	return err
}

func (s *Service) handle(ctx context.Context, f port.Frame) error {
	exchange := s.deps.Normalizer.Exchange()

	events, err := s.deps.Normalizer.Normalize(f)
	if err != nil {
		if errors.Is(err, model.ErrVenueDisconnect) {
			log.Warn().Str("exchange", exchange).Err(err).Msg("venue disconnect notice")
			return err
		}
		log.Warn().Str("exchange", exchange).Err(err).Msg("skipping frame")
		return nil
	}

	for _, e := range events {
		if err := s.write(ctx, e); err != nil {
			log.Error().Str("exchange", exchange).Str("symbol", e.Instrument()).Err(err).Msg("sink write failed")
		}
	}
	return nil
}

func (s *Service) write(ctx context.Context, e model.Event) error {
	switch ev := e.(type) {
	case *model.Trade:
		return s.deps.Sink.WriteTrade(ctx, ev)
	case *model.BookChange:
		return s.deps.Sink.WriteBookChange(ctx, ev)
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind())
	}
}
