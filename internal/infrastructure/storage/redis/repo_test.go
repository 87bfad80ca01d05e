package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder records the commands the repo issues. Unused methods panic
// through the nil embedded interface.
type recorder struct {
	redis.Cmdable
	hset       [][]any
	expire     map[string]time.Duration
	xadds      []*redis.XAddArgs
	publishes  map[string][]string
	publishErr error
}

func newRecorder() *recorder {
	return &recorder{expire: map[string]time.Duration{}, publishes: map[string][]string{}}
}

func (r *recorder) Pipeline() redis.Pipeliner { return &recordingPipe{r: r} }

func (r *recorder) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	r.xadds = append(r.xadds, a)
	cmd := redis.NewStringCmd(ctx)
	cmd.SetVal("0-1")
	return cmd
}

func (r *recorder) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if r.publishErr != nil {
		cmd.SetErr(r.publishErr)
		return cmd
	}
	r.publishes[channel] = append(r.publishes[channel], message.(string))
	return cmd
}

type recordingPipe struct {
	redis.Pipeliner
	r *recorder
}

func (p *recordingPipe) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	p.r.hset = append(p.r.hset, append([]any{key}, values...))
	return redis.NewIntCmd(ctx)
}

func (p *recordingPipe) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	p.r.expire[key] = ttl
	return redis.NewBoolCmd(ctx)
}

func (p *recordingPipe) Exec(ctx context.Context) ([]redis.Cmder, error) { return nil, nil }

func testTrade() *model.Trade {
	return &model.Trade{
		Type:      model.KindTrade,
		Symbol:    "BUSU1",
		Exchange:  "bitnomial",
		ID:        "7",
		Price:     decimal.RequireFromString("1.25"),
		Amount:    decimal.RequireFromString("3"),
		Side:      model.SideSell,
		Timestamp: model.FromUnixMicro(1631217532123456),
	}
}

func TestWriteTradeKeyLayout(t *testing.T) {
	rec := newRecorder()
	repo := New(rec, "tardis", time.Minute, "", "", 0)

	require.NoError(t, repo.WriteTrade(context.Background(), testTrade()))

	require.Len(t, rec.hset, 1)
	assert.Equal(t, "tardis:latest", rec.hset[0][0])
	assert.Equal(t, "bitnomial:BUSU1", rec.hset[0][1])
	assert.Contains(t, rec.hset[0][2], `"id":"7"`)
	assert.Equal(t, time.Minute, rec.expire["tardis:latest"])

	require.Len(t, rec.xadds, 1)
	x := rec.xadds[0]
	assert.Equal(t, "tardis:events", x.Stream)
	assert.Zero(t, x.MaxLen)
	assert.False(t, x.Approx)
	values := x.Values.(map[string]any)
	assert.Equal(t, "trade", values["kind"])
	assert.Equal(t, "bitnomial", values["exchange"])
	assert.Equal(t, "BUSU1", values["symbol"])
	assert.Equal(t, int64(1631217532123456), values["ts_us"])

	require.Len(t, rec.publishes["tardis:events:pub"], 1)
	assert.Equal(t, values["payload"], rec.publishes["tardis:events:pub"][0])
}

func TestWriteBookChangeCapsStream(t *testing.T) {
	rec := newRecorder()
	repo := New(rec, "tardis", 0, "md:stream", "md:pub", 1000)

	change := &model.BookChange{
		Type:       model.KindBookChange,
		Symbol:     "BUSU1",
		Exchange:   "bitnomial",
		IsSnapshot: true,
		Bids:       []model.BookLevel{},
		Asks:       []model.BookLevel{},
		Timestamp:  model.FromUnixMicro(1631217532000000),
	}
	require.NoError(t, repo.WriteBookChange(context.Background(), change))

	assert.Empty(t, rec.hset)
	require.Len(t, rec.xadds, 1)
	assert.Equal(t, "md:stream", rec.xadds[0].Stream)
	assert.Equal(t, int64(1000), rec.xadds[0].MaxLen)
	assert.True(t, rec.xadds[0].Approx)
	assert.Len(t, rec.publishes["md:pub"], 1)
}

func TestWriteTradeWithoutTTLSkipsExpire(t *testing.T) {
	rec := newRecorder()
	repo := New(rec, "tardis", 0, "", "", 0)

	require.NoError(t, repo.WriteTrade(context.Background(), testTrade()))
	assert.Empty(t, rec.expire)
}

func TestWriteTradePublishError(t *testing.T) {
	rec := newRecorder()
	rec.publishErr = errors.New("connection refused")
	repo := New(rec, "tardis", 0, "", "", 0)

	err := repo.WriteTrade(context.Background(), testTrade())
	assert.ErrorIs(t, err, rec.publishErr)
	assert.Len(t, rec.xadds, 1)
}
