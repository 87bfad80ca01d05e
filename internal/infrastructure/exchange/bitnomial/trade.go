package bitnomial

import (
	"fmt"
	"time"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
	"github.com/bradsherman/tardis-node/internal/infrastructure/exchange"
)

// TradesMapper maps `trade` messages; one message is one trade.
type TradesMapper struct{}

func NewTradesMapper() *TradesMapper { return &TradesMapper{} }

func (m *TradesMapper) CanHandle(msg model.Message) bool {
	return msg.Type == typeTrade
}

func (m *TradesMapper) GetFilters(symbols []string) []model.Filter {
	return []model.Filter{{Channel: "trade", Symbols: exchange.UpperCaseSymbols(symbols)}}
}

func (m *TradesMapper) Map(msg model.Message, localTimestamp time.Time) ([]model.Event, error) {
	if !m.CanHandle(msg) {
		return nil, fmt.Errorf("%s trades: %w %q", Name, model.ErrUnexpectedMessage, msg.Type)
	}

	var raw tradeMessage
	if err := exchange.ParseJSON(msg.Data, &raw); err != nil {
		return nil, fmt.Errorf("%s trade: %w", Name, err)
	}

	trade, err := raw.normalize(localTimestamp)
	if err != nil {
		return nil, fmt.Errorf("%s trade %s: %w", Name, raw.Symbol, err)
	}
	return []model.Event{trade}, nil
}

func (t tradeMessage) normalize(localTimestamp time.Time) (*model.Trade, error) {
	if t.Symbol == "" {
		return nil, fmt.Errorf("%w: missing symbol", model.ErrMalformedMessage)
	}
	id, err := t.AckID.Require("ack_id")
	if err != nil {
		return nil, err
	}
	price, err := t.Price.Require("price")
	if err != nil {
		return nil, err
	}
	amount, err := t.Quantity.Require("quantity")
	if err != nil {
		return nil, err
	}
	side, err := takerSide(t.TakerSide)
	if err != nil {
		return nil, err
	}
	ts, err := t.Timestamp.Timestamp("timestamp")
	if err != nil {
		return nil, err
	}

	return &model.Trade{
		Type:           model.KindTrade,
		Symbol:         t.Symbol,
		Exchange:       Name,
		ID:             id,
		Price:          price,
		Amount:         amount,
		Side:           side,
		Timestamp:      ts,
		LocalTimestamp: localTimestamp,
	}, nil
}

// takerSide: a Bid taker lifted the offer, so the taker bought.
func takerSide(s string) (model.Side, error) {
	switch s {
	case sideBid:
		return model.SideBuy, nil
	case sideAsk:
		return model.SideSell, nil
	default:
		return "", fmt.Errorf("%w: taker_side %q", model.ErrMalformedMessage, s)
	}
}

var _ port.Mapper = (*TradesMapper)(nil)
