package bitnomial

import (
	"fmt"
	"time"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
	"github.com/bradsherman/tardis-node/internal/infrastructure/exchange"
)

// BookChangeMapper maps full `book` snapshots and single-level `level` updates.
type BookChangeMapper struct{}

func NewBookChangeMapper() *BookChangeMapper { return &BookChangeMapper{} }

func (m *BookChangeMapper) CanHandle(msg model.Message) bool {
	return msg.Type == typeBook || msg.Type == typeLevel
}

func (m *BookChangeMapper) GetFilters(symbols []string) []model.Filter {
	return []model.Filter{{Channel: "book", Symbols: exchange.UpperCaseSymbols(symbols)}}
}

func (m *BookChangeMapper) Map(msg model.Message, localTimestamp time.Time) ([]model.Event, error) {
	var (
		change *model.BookChange
		err    error
	)
	switch msg.Type {
	case typeBook:
		change, err = mapSnapshot(msg, localTimestamp)
	case typeLevel:
		change, err = mapLevelUpdate(msg, localTimestamp)
	default:
		return nil, fmt.Errorf("%s book: %w %q", Name, model.ErrUnexpectedMessage, msg.Type)
	}
	if err != nil {
		return nil, err
	}
	return []model.Event{change}, nil
}

func mapSnapshot(msg model.Message, localTimestamp time.Time) (*model.BookChange, error) {
	var raw bookSnapshotMessage
	if err := exchange.ParseJSON(msg.Data, &raw); err != nil {
		return nil, fmt.Errorf("%s book snapshot: %w", Name, err)
	}
	if raw.Symbol == "" {
		return nil, fmt.Errorf("%s book snapshot: %w: missing symbol", Name, model.ErrMalformedMessage)
	}

	ts, err := raw.Timestamp.Timestamp("timestamp")
	if err != nil {
		return nil, fmt.Errorf("%s book snapshot %s: %w", Name, raw.Symbol, err)
	}
	bids, err := mapLevels(raw.Bids, "bids")
	if err != nil {
		return nil, fmt.Errorf("%s book snapshot %s: %w", Name, raw.Symbol, err)
	}
	asks, err := mapLevels(raw.Asks, "asks")
	if err != nil {
		return nil, fmt.Errorf("%s book snapshot %s: %w", Name, raw.Symbol, err)
	}

	return &model.BookChange{
		Type:           model.KindBookChange,
		Symbol:         raw.Symbol,
		Exchange:       Name,
		IsSnapshot:     true,
		Bids:           bids,
		Asks:           asks,
		Timestamp:      ts,
		LocalTimestamp: localTimestamp,
	}, nil
}

func mapLevels(levels []bookLevel, side string) ([]model.BookLevel, error) {
	out := make([]model.BookLevel, 0, len(levels))
	for i, lvl := range levels {
		price, err := lvl[0].Require(fmt.Sprintf("%s[%d] price", side, i))
		if err != nil {
			return nil, err
		}
		amount, err := lvl[1].Require(fmt.Sprintf("%s[%d] amount", side, i))
		if err != nil {
			return nil, err
		}
		out = append(out, model.BookLevel{Price: price, Amount: amount})
	}
	return out, nil
}

func mapLevelUpdate(msg model.Message, localTimestamp time.Time) (*model.BookChange, error) {
	var raw levelUpdateMessage
	if err := exchange.ParseJSON(msg.Data, &raw); err != nil {
		return nil, fmt.Errorf("%s level update: %w", Name, err)
	}
	if raw.Symbol == "" {
		return nil, fmt.Errorf("%s level update: %w: missing symbol", Name, model.ErrMalformedMessage)
	}

	ts, err := raw.Timestamp.Timestamp("timestamp")
	if err != nil {
		return nil, fmt.Errorf("%s level update %s: %w", Name, raw.Symbol, err)
	}
	price, err := raw.Price.Require("price")
	if err != nil {
		return nil, fmt.Errorf("%s level update %s: %w", Name, raw.Symbol, err)
	}
	amount, err := raw.Quantity.Require("quantity")
	if err != nil {
		return nil, fmt.Errorf("%s level update %s: %w", Name, raw.Symbol, err)
	}

	level := []model.BookLevel{{Price: price, Amount: amount}}
	change := &model.BookChange{
		Type:           model.KindBookChange,
		Symbol:         raw.Symbol,
		Exchange:       Name,
		IsSnapshot:     false,
		Bids:           []model.BookLevel{},
		Asks:           []model.BookLevel{},
		Timestamp:      ts,
		LocalTimestamp: localTimestamp,
	}
	switch raw.Side {
	case sideBid:
		change.Bids = level
	case sideAsk:
		change.Asks = level
	default:
		return nil, fmt.Errorf("%s level update %s: %w: side %q", Name, raw.Symbol, model.ErrMalformedMessage, raw.Side)
	}
	return change, nil
}

var _ port.Mapper = (*BookChangeMapper)(nil)
