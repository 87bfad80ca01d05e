package bitnomial

import (
	"fmt"
	"slices"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
	"github.com/bradsherman/tardis-node/internal/infrastructure/exchange"
)

// Subscribe channel groups. Bitnomial fans each group out to the finer grained
// channels listed here.
const (
	groupAll   = "all"
	groupBook  = "book"
	groupTrade = "trade"
)

// matchChannel is the raw trade echo; it never qualifies for the catch-all group.
const matchChannel = "match"

var channelGroups = map[string][]string{
	groupAll:   {groupAll, "received", "open", "done", "match", "change", "full_snapshot"},
	groupBook:  {groupBook, "snapshot", "l2update"},
	groupTrade: {groupTrade, "match", "last_match"},
}

type subscribeChannel struct {
	Channel      string   `json:"channel"`
	ProductCodes []string `json:"product_codes"`
}

type subscribeMessage struct {
	Type         string             `json:"type"`
	ProductCodes []string           `json:"product_codes"`
	Channels     []subscribeChannel `json:"channels"`
}

// SubscriptionBuilder turns venue-agnostic filters into the single Bitnomial
// subscribe message.
//
// By default a catch-all eligible filter only lands in the global product list
// when another filter in the same batch is eligible too, which is how the venue
// has been observed to behave. PromoteSingleAllGroupFilter makes every eligible
// filter global.
type SubscriptionBuilder struct {
	PromoteSingleAllGroupFilter bool
}

func NewSubscriptionBuilder(promoteSingleAllGroupFilter bool) *SubscriptionBuilder {
	return &SubscriptionBuilder{PromoteSingleAllGroupFilter: promoteSingleAllGroupFilter}
}

func (b *SubscriptionBuilder) SubscribeMessages(filters []model.Filter) ([]any, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	eligible := 0
	for _, f := range filters {
		if catchAllEligible(f.Channel) {
			eligible++
		}
	}

	msg := subscribeMessage{
		Type:         typeSubscribe,
		ProductCodes: []string{},
		Channels:     []subscribeChannel{},
	}
	index := map[string]int{}

	for _, f := range filters {
		symbols := exchange.UpperCaseSymbols(f.Symbols)

		if catchAllEligible(f.Channel) && (b.PromoteSingleAllGroupFilter || eligible > 1) {
			msg.ProductCodes = append(msg.ProductCodes, symbols...)
			continue
		}

		group := groupTrade
		if inGroup(groupBook, f.Channel) {
			group = groupBook
		}
		i, ok := index[group]
		if !ok {
			i = len(msg.Channels)
			index[group] = i
			msg.Channels = append(msg.Channels, subscribeChannel{Channel: group, ProductCodes: []string{}})
		}
		msg.Channels[i].ProductCodes = append(msg.Channels[i].ProductCodes, symbols...)
	}

	return []any{msg}, nil
}

func (b *SubscriptionBuilder) IsErrorMessage(msg model.Message) bool {
	return msg.Type == typeDisconnect
}

func validateFilters(filters []model.Filter) error {
	for _, f := range filters {
		if len(f.Symbols) == 0 {
			return fmt.Errorf("%s channel %q: %w: %w", Name, f.Channel, model.ErrInvalidFilter, model.ErrMissingSymbols)
		}
		if !knownChannel(f.Channel) {
			return fmt.Errorf("%s channel %q: %w: %w", Name, f.Channel, model.ErrInvalidFilter, model.ErrUnsupportedChannel)
		}
	}
	return nil
}

func knownChannel(channel string) bool {
	for group := range channelGroups {
		if inGroup(group, channel) {
			return true
		}
	}
	return false
}

func inGroup(group, channel string) bool {
	return slices.Contains(channelGroups[group], channel)
}

func catchAllEligible(channel string) bool {
	return channel != matchChannel && inGroup(groupAll, channel)
}

var _ port.SubscriptionBuilder = (*SubscriptionBuilder)(nil)
