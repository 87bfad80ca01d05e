package bitnomial

import (
	"testing"
	"time"

	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotFrame = `{
	"type":"book",
	"ack_id":"7148460953766461000",
	"symbol":"BUSU1",
	"timestamp":"2021-09-09T19:58:52.000001Z",
	"bids":[["1.20","5"],["1.19","7"],["1.18","1"]],
	"asks":[["1.25","3"],["1.26","9"]]
}`

func level(price, amount string) model.BookLevel {
	return model.BookLevel{Price: decimal.RequireFromString(price), Amount: decimal.RequireFromString(amount)}
}

func assertLevels(t *testing.T, want, got []model.BookLevel) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Price.Equal(got[i].Price), "price %d: want %s got %s", i, want[i].Price, got[i].Price)
		assert.True(t, want[i].Amount.Equal(got[i].Amount), "amount %d: want %s got %s", i, want[i].Amount, got[i].Amount)
	}
}

func TestBookChangeMapperSnapshot(t *testing.T) {
	m := NewBookChangeMapper()
	msg := mustMessage(t, snapshotFrame)
	require.True(t, m.CanHandle(msg))

	events, err := m.Map(msg, time.Now())
	require.NoError(t, err)
	require.Len(t, events, 1)

	change := events[0].(*model.BookChange)
	assert.Equal(t, model.KindBookChange, change.Kind())
	assert.True(t, change.IsSnapshot)
	assert.Equal(t, "BUSU1", change.Symbol)
	assert.Equal(t, Name, change.Exchange)
	assertLevels(t, []model.BookLevel{level("1.20", "5"), level("1.19", "7"), level("1.18", "1")}, change.Bids)
	assertLevels(t, []model.BookLevel{level("1.25", "3"), level("1.26", "9")}, change.Asks)
	assert.Equal(t, 1, change.Timestamp.MicrosRemainder)
}

func TestBookChangeMapperEmptySnapshotSide(t *testing.T) {
	raw := `{"type":"book","symbol":"X","timestamp":"2021-09-09T19:58:52Z","bids":[],"asks":[["1","2"]]}`
	events, err := NewBookChangeMapper().Map(mustMessage(t, raw), time.Now())
	require.NoError(t, err)

	change := events[0].(*model.BookChange)
	assert.NotNil(t, change.Bids)
	assert.Empty(t, change.Bids)
	assert.Len(t, change.Asks, 1)
}

func TestBookChangeMapperLevelUpdate(t *testing.T) {
	tests := []struct {
		side     string
		wantBids int
		wantAsks int
	}{
		{"Bid", 1, 0},
		{"Ask", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			raw := `{"type":"level","ack_id":"1","symbol":"BUSU1","price":1.21,"quantity":0,"side":"` + tt.side + `","timestamp":"2021-09-09T19:58:53.5Z"}`
			events, err := NewBookChangeMapper().Map(mustMessage(t, raw), time.Now())
			require.NoError(t, err)
			require.Len(t, events, 1)

			change := events[0].(*model.BookChange)
			assert.False(t, change.IsSnapshot)
			require.Len(t, change.Bids, tt.wantBids)
			require.Len(t, change.Asks, tt.wantAsks)
			assert.NotNil(t, change.Bids)
			assert.NotNil(t, change.Asks)

			lvl := append(change.Bids, change.Asks...)[0]
			assert.True(t, decimal.RequireFromString("1.21").Equal(lvl.Price))
			assert.True(t, lvl.Amount.IsZero())
		})
	}
}

func TestBookChangeMapperRejectsBadFrames(t *testing.T) {
	tests := map[string]string{
		"unknown side":      `{"type":"level","symbol":"X","price":1,"quantity":1,"side":"Mid","timestamp":"2021-09-09T19:58:53Z"}`,
		"missing price":     `{"type":"level","symbol":"X","quantity":1,"side":"Bid","timestamp":"2021-09-09T19:58:53Z"}`,
		"null quantity":     `{"type":"level","symbol":"X","price":1,"quantity":null,"side":"Bid","timestamp":"2021-09-09T19:58:53Z"}`,
		"short pair":        `{"type":"book","symbol":"X","timestamp":"2021-09-09T19:58:53Z","bids":[["1"]],"asks":[]}`,
		"bad pair price":    `{"type":"book","symbol":"X","timestamp":"2021-09-09T19:58:53Z","bids":[],"asks":[["x","1"]]}`,
		"missing timestamp": `{"type":"book","symbol":"X","bids":[],"asks":[]}`,
		"missing symbol":    `{"type":"book","timestamp":"2021-09-09T19:58:53Z","bids":[],"asks":[]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			events, err := NewBookChangeMapper().Map(mustMessage(t, raw), time.Now())
			assert.ErrorIs(t, err, model.ErrMalformedMessage)
			assert.Nil(t, events)
		})
	}
}

func TestBookChangeMapperIsIdempotent(t *testing.T) {
	m := NewBookChangeMapper()
	msg := mustMessage(t, snapshotFrame)
	local := time.Unix(1631217532, 0).UTC()

	first, err := m.Map(msg, local)
	require.NoError(t, err)
	second, err := m.Map(msg, local)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBookChangeMapperHandles(t *testing.T) {
	m := NewBookChangeMapper()
	assert.True(t, m.CanHandle(model.Message{Type: "book"}))
	assert.True(t, m.CanHandle(model.Message{Type: "level"}))
	assert.False(t, m.CanHandle(model.Message{Type: "trade"}))

	_, err := m.Map(model.Message{Type: "trade", Data: []byte(`{"type":"trade"}`)}, time.Now())
	assert.ErrorIs(t, err, model.ErrUnexpectedMessage)

	assert.Equal(t, []model.Filter{{Channel: "book", Symbols: []string{"BUSU1"}}}, m.GetFilters([]string{"busu1"}))
}
