// Package storagetest provides an in-memory event sink for tests.
package storagetest

import (
	"context"
	"sync"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
)

// MemoryStore keeps every event in memory, in write order.
type MemoryStore struct {
	mu     sync.RWMutex
	trades []*model.Trade
	books  []*model.BookChange
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) WriteTrade(ctx context.Context, t *model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, t)
	return nil
}

func (s *MemoryStore) WriteBookChange(ctx context.Context, b *model.BookChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append(s.books, b)
	return nil
}

// Trades returns stored trades of symbol; an empty symbol matches all.
func (s *MemoryStore) Trades(symbol string) []*model.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Trade
	for _, t := range s.trades {
		if symbol == "" || t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return out
}

// BookChanges returns stored book changes of symbol; an empty symbol matches all.
func (s *MemoryStore) BookChanges(symbol string) []*model.BookChange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.BookChange
	for _, b := range s.books {
		if symbol == "" || b.Symbol == symbol {
			out = append(out, b)
		}
	}
	return out
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ port.EventSink = (*MemoryStore)(nil)
