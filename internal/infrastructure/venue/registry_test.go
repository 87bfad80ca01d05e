package venue

import (
	"testing"
	"time"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelMapper string

func (c channelMapper) CanHandle(model.Message) bool { return false }
func (c channelMapper) GetFilters(symbols []string) []model.Filter {
	return []model.Filter{{Channel: string(c), Symbols: symbols}}
}
func (c channelMapper) Map(model.Message, time.Time) ([]model.Event, error) { return nil, nil }

func TestRegisterAndGet(t *testing.T) {
	Register("test-venue", func(opts Options) *Venue {
		return &Venue{Name: "test-venue", WsURL: opts.WsURL}
	})
	Register("test-nil", nil)

	factory, ok := Get("test-venue")
	require.True(t, ok)
	assert.Equal(t, "ws://x", factory(Options{WsURL: "ws://x"}).WsURL)

	_, ok = Get("test-nil")
	assert.False(t, ok)
	assert.Contains(t, Names(), "test-venue")
	assert.NotContains(t, Names(), "test-nil")
}

func TestVenueFilters(t *testing.T) {
	v := &Venue{Mappers: []port.Mapper{channelMapper("trade"), channelMapper("book")}}

	all := v.Filters(nil, []string{"A"})
	assert.Equal(t, []model.Filter{
		{Channel: "trade", Symbols: []string{"A"}},
		{Channel: "book", Symbols: []string{"A"}},
	}, all)

	books := v.Filters([]string{"book"}, []string{"A"})
	assert.Equal(t, []model.Filter{{Channel: "book", Symbols: []string{"A"}}}, books)
}
