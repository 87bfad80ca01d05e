package bitnomial

import (
	"testing"
	"time"

	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMessage(t *testing.T, raw string) model.Message {
	t.Helper()
	msg, err := model.ParseMessage([]byte(raw))
	require.NoError(t, err)
	return msg
}

const tradeFrame = `{"type":"trade","ack_id":"7148460953766461527","price":"1.25","quantity":"10","symbol":"BUSU1","taker_side":"Bid","timestamp":"2021-09-09T19:58:52.123456Z"}`

func TestTradesMapperMapsOneTrade(t *testing.T) {
	m := NewTradesMapper()
	msg := mustMessage(t, tradeFrame)
	local := time.Date(2021, 9, 9, 19, 58, 52, 200_000_000, time.UTC)

	require.True(t, m.CanHandle(msg))
	events, err := m.Map(msg, local)
	require.NoError(t, err)
	require.Len(t, events, 1)

	trade, ok := events[0].(*model.Trade)
	require.True(t, ok)
	assert.Equal(t, model.KindTrade, trade.Kind())
	assert.Equal(t, "BUSU1", trade.Symbol)
	assert.Equal(t, Name, trade.Exchange)
	assert.Equal(t, "7148460953766461527", trade.ID)
	assert.True(t, decimal.RequireFromString("1.25").Equal(trade.Price))
	assert.True(t, decimal.RequireFromString("10").Equal(trade.Amount))
	assert.Equal(t, model.SideBuy, trade.Side)
	assert.Equal(t, local, trade.LocalTimestamp)

	want := time.Date(2021, 9, 9, 19, 58, 52, 123_000_000, time.UTC)
	assert.Equal(t, want.UnixMilli(), trade.Timestamp.Millis)
	assert.Equal(t, 456, trade.Timestamp.MicrosRemainder)
}

func TestTradesMapperTakerSide(t *testing.T) {
	tests := []struct {
		side string
		want model.Side
	}{
		{"Bid", model.SideBuy},
		{"Ask", model.SideSell},
	}
	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			raw := `{"type":"trade","ack_id":"1","price":2,"quantity":3,"symbol":"X","taker_side":"` + tt.side + `","timestamp":"1631217532.5"}`
			events, err := NewTradesMapper().Map(mustMessage(t, raw), time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.want, events[0].(*model.Trade).Side)
		})
	}
}

func TestTradesMapperEpochAndISOAgree(t *testing.T) {
	iso := `{"type":"trade","ack_id":"1","price":"2","quantity":"3","symbol":"X","taker_side":"Ask","timestamp":"2021-09-09T19:58:52.5Z"}`
	epoch := `{"type":"trade","ack_id":"1","price":"2","quantity":"3","symbol":"X","taker_side":"Ask","timestamp":"1631217532.5"}`

	a, err := NewTradesMapper().Map(mustMessage(t, iso), time.Time{})
	require.NoError(t, err)
	b, err := NewTradesMapper().Map(mustMessage(t, epoch), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, a[0].ExchangeTimestamp(), b[0].ExchangeTimestamp())
}

func TestTradesMapperRejectsBadFields(t *testing.T) {
	tests := map[string]string{
		"unknown side":    `{"type":"trade","ack_id":"1","price":"2","quantity":"3","symbol":"X","taker_side":"Sideways","timestamp":"1631217532"}`,
		"missing price":   `{"type":"trade","ack_id":"1","quantity":"3","symbol":"X","taker_side":"Bid","timestamp":"1631217532"}`,
		"null quantity":   `{"type":"trade","ack_id":"1","price":"2","quantity":null,"symbol":"X","taker_side":"Bid","timestamp":"1631217532"}`,
		"bad price":       `{"type":"trade","ack_id":"1","price":"abc","quantity":"3","symbol":"X","taker_side":"Bid","timestamp":"1631217532"}`,
		"bad timestamp":   `{"type":"trade","ack_id":"1","price":"2","quantity":"3","symbol":"X","taker_side":"Bid","timestamp":"yesterday"}`,
		"missing symbol":  `{"type":"trade","ack_id":"1","price":"2","quantity":"3","taker_side":"Bid","timestamp":"1631217532"}`,
		"missing ack_id":  `{"type":"trade","price":"2","quantity":"3","symbol":"X","taker_side":"Bid","timestamp":"1631217532"}`,
		"price is object": `{"type":"trade","ack_id":"1","price":{},"quantity":"3","symbol":"X","taker_side":"Bid","timestamp":"1631217532"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			events, err := NewTradesMapper().Map(mustMessage(t, raw), time.Now())
			assert.ErrorIs(t, err, model.ErrMalformedMessage)
			assert.Nil(t, events)
		})
	}
}

func TestTradesMapperIsIdempotent(t *testing.T) {
	m := NewTradesMapper()
	msg := mustMessage(t, tradeFrame)
	local := time.Unix(1631217532, 0).UTC()

	first, err := m.Map(msg, local)
	require.NoError(t, err)
	second, err := m.Map(msg, local)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTradesMapperIgnoresOtherTypes(t *testing.T) {
	m := NewTradesMapper()
	msg := mustMessage(t, `{"type":"book","symbol":"X"}`)
	assert.False(t, m.CanHandle(msg))

	_, err := m.Map(msg, time.Now())
	assert.ErrorIs(t, err, model.ErrUnexpectedMessage)
}

func TestTradesMapperFilters(t *testing.T) {
	got := NewTradesMapper().GetFilters([]string{"busu1", "xbtusd"})
	assert.Equal(t, []model.Filter{{Channel: "trade", Symbols: []string{"BUSU1", "XBTUSD"}}}, got)

	all := NewTradesMapper().GetFilters(nil)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].Symbols)
}
