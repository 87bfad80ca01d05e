package domain

import (
	"sort"

	"github.com/bradsherman/tardis-node/internal/domain/model"
)

// Book is a local order book rebuilt from book change events.
type Book struct {
	bids      map[string]model.BookLevel // price string -> level
	asks      map[string]model.BookLevel
	synced    bool
	Timestamp model.ExchangeTime
}

func NewBook() *Book {
	return &Book{
		bids: map[string]model.BookLevel{},
		asks: map[string]model.BookLevel{},
	}
}

// Apply folds a change into the book. A snapshot replaces every level; a
// delta sets or, with zero amount, removes the touched levels. Deltas that
// arrive before the first snapshot are dropped and Apply returns false.
func (b *Book) Apply(c *model.BookChange) bool {
	if c.IsSnapshot {
		b.bids = make(map[string]model.BookLevel, len(c.Bids))
		b.asks = make(map[string]model.BookLevel, len(c.Asks))
		b.synced = true
	}
	if !b.synced {
		return false
	}
	applyLevels(b.bids, c.Bids)
	applyLevels(b.asks, c.Asks)
	b.Timestamp = c.Timestamp
	return true
}

func applyLevels(side map[string]model.BookLevel, levels []model.BookLevel) {
	for _, lvl := range levels {
		key := lvl.Price.String()
		if lvl.Amount.IsZero() {
			delete(side, key)
			continue
		}
		side[key] = lvl
	}
}

func (b *Book) Synced() bool { return b.synced }

// Bids returns bid levels, best (highest) first.
func (b *Book) Bids() []model.BookLevel {
	out := levelList(b.bids)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	return out
}

// Asks returns ask levels, best (lowest) first.
func (b *Book) Asks() []model.BookLevel {
	out := levelList(b.asks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out
}

func levelList(side map[string]model.BookLevel) []model.BookLevel {
	out := make([]model.BookLevel, 0, len(side))
	for _, lvl := range side {
		out = append(out, lvl)
	}
	return out
}

// BestBid returns the highest bid, if any.
func (b *Book) BestBid() (model.BookLevel, bool) {
	var best model.BookLevel
	found := false
	for _, lvl := range b.bids {
		if !found || lvl.Price.GreaterThan(best.Price) {
			best, found = lvl, true
		}
	}
	return best, found
}

// BestAsk returns the lowest ask, if any.
func (b *Book) BestAsk() (model.BookLevel, bool) {
	var best model.BookLevel
	found := false
	for _, lvl := range b.asks {
		if !found || lvl.Price.LessThan(best.Price) {
			best, found = lvl, true
		}
	}
	return best, found
}
