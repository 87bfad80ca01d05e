package bitnomial

import (
	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/infrastructure/venue"
)

func init() {
	venue.Register(Name, New)
}

// New assembles the Bitnomial venue: trade and book mappers plus the
// subscription builder.
func New(opts venue.Options) *venue.Venue {
	wsURL := opts.WsURL
	if wsURL == "" {
		wsURL = DefaultWsURL
	}
	return &venue.Venue{
		Name:  Name,
		WsURL: wsURL,
		Mappers: []port.Mapper{
			NewTradesMapper(),
			NewBookChangeMapper(),
		},
		Subscriptions: NewSubscriptionBuilder(opts.PromoteSingleAllGroupFilter),
	}
}
