package redis

import (
	"context"
	"strings"
	"time"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
	"github.com/bradsherman/tardis-node/internal/infrastructure/storage"

	"github.com/redis/go-redis/v9"
)

type Repo struct {
	rdb         redis.Cmdable
	prefix      string
	ttl         time.Duration
	keyLatest   string // prefix + ":latest"
	eventStream string
	eventChan   string
	streamLen   int64
}

func New(rdb redis.Cmdable, prefix string, ttl time.Duration, eventStream, eventChan string, streamLen int64) *Repo {
	if strings.TrimSpace(eventStream) == "" {
		eventStream = prefix + ":events"
	}
	if strings.TrimSpace(eventChan) == "" {
		eventChan = prefix + ":events:pub"
	}
	return &Repo{
		rdb:         rdb,
		prefix:      prefix,
		ttl:         ttl,
		keyLatest:   prefix + ":latest",
		eventStream: eventStream,
		eventChan:   eventChan,
		streamLen:   streamLen,
	}
}

// WriteTrade keeps the last trade per instrument in a hash, then appends and
// publishes the event.
func (r *Repo) WriteTrade(ctx context.Context, t *model.Trade) error {
	b, err := storage.EncodeEvent(t)
	if err != nil {
		return err
	}

	// Hash: field = "bitnomial:BUSU1" -> json
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, storage.Key(t), string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return r.append(ctx, t, b)
}

func (r *Repo) WriteBookChange(ctx context.Context, b *model.BookChange) error {
	payload, err := storage.EncodeEvent(b)
	if err != nil {
		return err
	}
	return r.append(ctx, b, payload)
}

func (r *Repo) append(ctx context.Context, e model.Event, payload []byte) error {
	// 1) Stream: XADD <stream> * kind exchange symbol ts_us payload
	args := &redis.XAddArgs{
		Stream: r.eventStream,
		Values: map[string]any{
			"kind":     string(e.Kind()),
			"exchange": e.Venue(),
			"symbol":   e.Instrument(),
			"ts_us":    e.ExchangeTimestamp().UnixMicro(),
			"payload":  string(payload),
		},
	}
	if r.streamLen > 0 {
		args.MaxLen = r.streamLen
		args.Approx = true
	}
	if err := r.rdb.XAdd(ctx, args).Err(); err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	return r.rdb.Publish(ctx, r.eventChan, string(payload)).Err()
}

// Close is a no-op; the client is owned by the caller.
func (r *Repo) Close() error { return nil }

var _ port.EventSink = (*Repo)(nil)
