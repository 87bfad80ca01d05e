package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind tags a normalized event.
type EventKind string

const (
	KindTrade      EventKind = "trade"
	KindBookChange EventKind = "book_change"
)

// Side is the taker side of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Event is either a *Trade or a *BookChange.
type Event interface {
	Kind() EventKind
	Venue() string
	Instrument() string
	ExchangeTimestamp() ExchangeTime
	ReceivedAt() time.Time

	event()
}

// Trade is a normalized trade print.
type Trade struct {
	Type           EventKind       `json:"type"`
	Symbol         string          `json:"symbol"`
	Exchange       string          `json:"exchange"`
	ID             string          `json:"id"`
	Price          decimal.Decimal `json:"price"`
	Amount         decimal.Decimal `json:"amount"`
	Side           Side            `json:"side"`
	Timestamp      ExchangeTime    `json:"timestamp"`
	LocalTimestamp time.Time       `json:"localTimestamp"`
}

func (t *Trade) Kind() EventKind                 { return KindTrade }
func (t *Trade) Venue() string                   { return t.Exchange }
func (t *Trade) Instrument() string              { return t.Symbol }
func (t *Trade) ExchangeTimestamp() ExchangeTime { return t.Timestamp }
func (t *Trade) ReceivedAt() time.Time           { return t.LocalTimestamp }
func (t *Trade) event()                          {}

// BookLevel is one price level. Amount zero means the level was removed.
type BookLevel struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

// BookChange is either a full snapshot (replaces every level) or a delta
// carrying only the touched levels.
type BookChange struct {
	Type           EventKind    `json:"type"`
	Symbol         string       `json:"symbol"`
	Exchange       string       `json:"exchange"`
	IsSnapshot     bool         `json:"isSnapshot"`
	Bids           []BookLevel  `json:"bids"`
	Asks           []BookLevel  `json:"asks"`
	Timestamp      ExchangeTime `json:"timestamp"`
	LocalTimestamp time.Time    `json:"localTimestamp"`
}

func (b *BookChange) Kind() EventKind                 { return KindBookChange }
func (b *BookChange) Venue() string                   { return b.Exchange }
func (b *BookChange) Instrument() string              { return b.Symbol }
func (b *BookChange) ExchangeTimestamp() ExchangeTime { return b.Timestamp }
func (b *BookChange) ReceivedAt() time.Time           { return b.LocalTimestamp }
func (b *BookChange) event()                          {}

var (
	_ Event = (*Trade)(nil)
	_ Event = (*BookChange)(nil)
)
