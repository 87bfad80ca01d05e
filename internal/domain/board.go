package domain

import (
	"sort"
	"sync"

	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/shopspring/decimal"
)

// SymbolState holds the book and last trade of one instrument
type SymbolState struct {
	Book      *Book
	LastTrade *PriceState
}

// Quote is a read-only top-of-book view
type Quote struct {
	Key       string // exchange:symbol
	BidPrice  decimal.Decimal
	BidAmount decimal.Decimal
	AskPrice  decimal.Decimal
	AskAmount decimal.Decimal
	HasBid    bool
	HasAsk    bool
	Last      decimal.Decimal
	HasLast   bool
	Direction Direction
	Synced    bool
	BidLevels int
	AskLevels int
}

// Board tracks instruments across venues, keyed by exchange:symbol.
// Safe for concurrent use.
type Board struct {
	mu      sync.RWMutex
	symbols map[string]*SymbolState
}

// NewBoard creates a new Board instance
func NewBoard() *Board {
	return &Board{symbols: make(map[string]*SymbolState)}
}

func key(exchange, symbol string) string { return exchange + ":" + symbol }

func (b *Board) state(k string) *SymbolState {
	st := b.symbols[k]
	if st == nil {
		st = &SymbolState{Book: NewBook(), LastTrade: &PriceState{}}
		b.symbols[k] = st
	}
	return st
}

// ApplyBookChange returns false when the change was dropped.
func (b *Board) ApplyBookChange(c *model.BookChange) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state(key(c.Exchange, c.Symbol)).Book.Apply(c)
}

// ApplyTrade returns true if the last price changed.
func (b *Board) ApplyTrade(t *model.Trade) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state(key(t.Exchange, t.Symbol)).LastTrade.Update(t.Price)
}

// Quotes returns the top of book of every tracked instrument, sorted by key.
func (b *Board) Quotes() []Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Quote, 0, len(b.symbols))
	for k, st := range b.symbols {
		q := Quote{
			Key:       k,
			Last:      st.LastTrade.Price,
			HasLast:   st.LastTrade.HasValue,
			Direction: st.LastTrade.Direction,
			Synced:    st.Book.Synced(),
		}
		if q.Synced {
			q.BidLevels, q.AskLevels = len(st.Book.Bids()), len(st.Book.Asks())
		}
		if bid, ok := st.Book.BestBid(); ok {
			q.BidPrice, q.BidAmount, q.HasBid = bid.Price, bid.Amount, true
		}
		if ask, ok := st.Book.BestAsk(); ok {
			q.AskPrice, q.AskAmount, q.HasAsk = ask.Price, ask.Amount, true
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
