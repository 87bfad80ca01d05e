package venue

import (
	"slices"
	"sort"
	"sync"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// Options carries the per-venue config knobs a factory may honour.
type Options struct {
	// WsURL overrides the venue's default endpoint when set.
	WsURL string
	// PromoteSingleAllGroupFilter is passed to builders that implement the
	// catch-all group quirk.
	PromoteSingleAllGroupFilter bool
}

// Venue bundles everything needed to normalize one exchange's feed.
type Venue struct {
	Name          string
	WsURL         string
	Mappers       []port.Mapper
	Subscriptions port.SubscriptionBuilder
}

// Filters collects the subscription filters of every mapper. When channels is
// non-empty only filters on those channels are kept.
func (v *Venue) Filters(channels []string, symbols []string) []model.Filter {
	var out []model.Filter
	for _, m := range v.Mappers {
		for _, f := range m.GetFilters(symbols) {
			if len(channels) > 0 && !slices.Contains(channels, f.Channel) {
				continue
			}
			out = append(out, f)
		}
	}
	return out
}

// Factory builds a venue from its options. Called once per enabled venue.
type Factory func(opts Options) *Venue

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

// Register is called from each venue package's init().
func Register(name string, factory Factory) {
	if factory == nil {
		log.Warn().Str("exchange", name).Msg("invalid venue factory")
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		log.Warn().Str("exchange", name).Msg("venue factory already registered, overwriting")
	}
	registry[name] = factory
	log.Debug().Str("exchange", name).Msg("venue factory registered")
}

// Get returns the factory registered under name.
func Get(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	factory, ok := registry[name]
	return factory, ok
}

// Names lists registered venues in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
