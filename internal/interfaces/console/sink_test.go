package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)
	ctx := context.Background()

	require.NoError(t, s.WriteTrade(ctx, &model.Trade{Type: model.KindTrade, Symbol: "A", Side: model.SideBuy}))
	require.NoError(t, s.WriteBookChange(ctx, &model.BookChange{Type: model.KindBookChange, Symbol: "A", IsSnapshot: true}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"type":"trade"`)
	assert.Contains(t, lines[0], `"side":"buy"`)
	assert.Contains(t, lines[1], `"type":"book_change"`)
	assert.Contains(t, lines[1], `"isSnapshot":true`)
}
