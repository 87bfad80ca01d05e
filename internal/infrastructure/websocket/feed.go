package websocket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradsherman/tardis-node/internal/application/port"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Config tunes connection handling. Zero values take the defaults below.
type Config struct {
	DialTimeout    time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

var DefaultConfig = Config{
	DialTimeout:    10 * time.Second,
	ReadTimeout:    60 * time.Second,
	PingInterval:   25 * time.Second,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     10 * time.Second,
}

func (c Config) withDefaults() Config {
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultConfig.DialTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultConfig.ReadTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = DefaultConfig.PingInterval
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultConfig.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultConfig.MaxBackoff
	}
	return c
}

// Feed is a reconnecting websocket client for a single venue endpoint.
type Feed struct {
	name  string
	wsURL string
	cfg   Config
}

func NewFeed(name, wsURL string, cfg Config) *Feed {
	return &Feed{
		name:  name,
		wsURL: strings.TrimSpace(wsURL),
		cfg:   cfg.withDefaults(),
	}
}

func (f *Feed) Name() string { return f.name }

// Run connects, writes payloads, and streams frames to handle until ctx ends.
// A handler error closes the connection and a new one is dialed after backoff.
func (f *Feed) Run(ctx context.Context, payloads []any, handle func(port.Frame) error) error {
	if f.wsURL == "" {
		return fmt.Errorf("%s ws_url empty", f.name)
	}

	backoff := f.cfg.InitialBackoff
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Info().Str("feed", f.name).Str("url", f.wsURL).Msg("ws connecting")
		conn, err := f.dial(ctx)
		if err != nil {
			log.Error().Str("feed", f.name).Err(err).Msg("ws dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = minDur(backoff*2, f.cfg.MaxBackoff)
			continue
		}

		if err := subscribe(conn, payloads); err != nil {
			_ = conn.Close()
			log.Error().Str("feed", f.name).Err(err).Msg("subscribe failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = minDur(backoff*2, f.cfg.MaxBackoff)
			continue
		}

		backoff = f.cfg.InitialBackoff
		log.Info().Str("feed", f.name).Int("payloads", len(payloads)).Msg("ws connected & subscribed")

		err = f.readLoop(ctx, conn, handle)
		_ = conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Warn().Str("feed", f.name).Err(err).Msg("ws disconnected, reconnecting")
		if !sleep(ctx, backoff) {
			return ctx.Err()
		}
		backoff = minDur(backoff*2, f.cfg.MaxBackoff)
	}
}

func (f *Feed) dial(ctx context.Context) (*websocket.Conn, error) {
	cctx, cancel := context.WithTimeout(ctx, f.cfg.DialTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(cctx, f.wsURL, nil)
	return conn, err
}

func subscribe(conn *websocket.Conn, payloads []any) error {
	for _, p := range payloads {
		if err := conn.WriteJSON(p); err != nil {
			return err
		}
	}
	return nil
}

func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn, handle func(port.Frame) error) error {
	_ = conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))
		return nil
	})

	pingTicker := time.NewTicker(f.cfg.PingInterval)
	defer pingTicker.Stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			received := time.Now()
			_ = conn.SetReadDeadline(received.Add(f.cfg.ReadTimeout))
			if err := handle(port.Frame{Data: b, LocalTimestamp: received}); err != nil {
				errCh <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// unblock ReadMessage and wait out an in-flight handle
			_ = conn.Close()
			for range errCh {
			}
			return ctx.Err()
		case err := <-errCh:
			if err == nil {
				err = errors.New("read loop ended")
			}
			return err
		case <-pingTicker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

var _ port.Transport = (*Feed)(nil)
