package composite

import (
	"context"
	"errors"
	"testing"

	"github.com/bradsherman/tardis-node/internal/domain/model"
	"github.com/bradsherman/tardis-node/internal/infrastructure/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenSink struct {
	err    error
	closed bool
}

func (b *brokenSink) WriteTrade(context.Context, *model.Trade) error           { return b.err }
func (b *brokenSink) WriteBookChange(context.Context, *model.BookChange) error { return b.err }
func (b *brokenSink) Close() error {
	b.closed = true
	return b.err
}

func TestCompositeWritesToEverySink(t *testing.T) {
	first := errors.New("first")
	broken := &brokenSink{err: first}
	second := &brokenSink{err: errors.New("second")}
	mem := storagetest.NewMemoryStore()

	repo := New(nil, broken, mem, second)
	assert.Equal(t, 3, repo.Len())

	ctx := context.Background()
	err := repo.WriteTrade(ctx, &model.Trade{Symbol: "A"})
	assert.ErrorIs(t, err, first)
	err = repo.WriteBookChange(ctx, &model.BookChange{Symbol: "A"})
	assert.ErrorIs(t, err, first)

	require.Len(t, mem.Trades("A"), 1)
	require.Len(t, mem.BookChanges("A"), 1)

	assert.ErrorIs(t, repo.Close(), first)
	assert.True(t, broken.closed)
	assert.True(t, second.closed)
}

func TestCompositeEmpty(t *testing.T) {
	repo := New()
	assert.NoError(t, repo.WriteTrade(context.Background(), &model.Trade{}))
	assert.NoError(t, repo.Close())
}
