package svc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/application/service"
	"github.com/bradsherman/tardis-node/internal/application/usecase/feed"
	"github.com/bradsherman/tardis-node/internal/infrastructure/config"
	_ "github.com/bradsherman/tardis-node/internal/infrastructure/exchange/bitnomial"
	"github.com/bradsherman/tardis-node/internal/infrastructure/metrics"
	"github.com/bradsherman/tardis-node/internal/infrastructure/storage/composite"
	kafkasink "github.com/bradsherman/tardis-node/internal/infrastructure/storage/kafka"
	pgrepo "github.com/bradsherman/tardis-node/internal/infrastructure/storage/postgres"
	redisrepo "github.com/bradsherman/tardis-node/internal/infrastructure/storage/redis"
	sqliterepo "github.com/bradsherman/tardis-node/internal/infrastructure/storage/sqlite"
	"github.com/bradsherman/tardis-node/internal/infrastructure/venue"
	"github.com/bradsherman/tardis-node/internal/infrastructure/websocket"
	"github.com/bradsherman/tardis-node/internal/interfaces/console"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// Sink fans out to every enabled output
	Sink *composite.Repo

	feeds []*feed.Service
	board *console.BoardSink

	// closed in reverse order
	closerChain []func() error
}

// New builds storage and feeds from cfg.
// Subscribe payloads are built here, so a bad filter list fails before any dial.
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	reg := prometheus.NewRegistry()
	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		Registry:    reg,
		Metrics:     metrics.NewCollector(reg),
		closerChain: make([]func() error, 0),
	}

	if err := sc.initializeComponents(); err != nil {
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

// initializeComponents runs in dependency order: storage, then feeds.
func (sc *ServiceContext) initializeComponents() error {
	if err := sc.initializeStorage(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageInitFailed, err)
	}
	if err := sc.initializeFeeds(); err != nil {
		return err
	}
	log.Info().
		Int("feeds", len(sc.feeds)).
		Int("sinks", sc.Sink.Len()).
		Msg("✓ All components initialized")
	return nil
}

func (sc *ServiceContext) initializeStorage() error {
	var sinks []port.EventSink

	if sc.Config.Console.Enabled {
		sinks = append(sinks, console.NewSink())
	}

	if sc.Config.Console.BoardEverySec > 0 {
		sc.board = console.NewBoardSink()
		sinks = append(sinks, sc.board)
	}

	if sc.Config.SQLite.Enabled {
		repo, err := sqliterepo.New(sc.Config.SQLite.Path)
		if err != nil {
			return fmt.Errorf("sqlite initialization failed: %w", err)
		}
		sc.addCloser("sqlite", repo.Close)
		sinks = append(sinks, repo)
		log.Info().Str("path", sc.Config.SQLite.Path).Msg("✓ SQLite initialized")
	}

	if sc.Config.Postgres.Enabled {
		repo, err := pgrepo.New(sc.Config.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("postgres initialization failed: %w", err)
		}
		sc.addCloser("postgres", repo.Close)
		sinks = append(sinks, repo)
		log.Info().Msg("✓ Postgres initialized")
	}

	if sc.Config.Redis.Enabled {
		repo, err := sc.initRedis()
		if err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		sinks = append(sinks, repo)
	}

	if sc.Config.Kafka.Enabled {
		producer, err := kafkasink.New(sc.Config.Kafka.Brokers, sc.Config.Kafka.Topic)
		if err != nil {
			return fmt.Errorf("kafka initialization failed: %w", err)
		}
		sc.addCloser("kafka", producer.Close)
		sinks = append(sinks, producer)
	}

	sc.Sink = composite.New(sinks...)
	return nil
}

func (sc *ServiceContext) initRedis() (*redisrepo.Repo, error) {
	rc := sc.Config.Redis
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	sc.addCloser("redis", rdb.Close)

	log.Info().Str("addr", rc.Addr).Int("db", rc.DB).Msg("✓ Redis initialized")
	return redisrepo.New(rdb, rc.Prefix, time.Duration(rc.TTLSeconds)*time.Second, rc.Stream, rc.Channel, rc.StreamMaxLen), nil
}

func (sc *ServiceContext) initializeFeeds() error {
	enabled := sc.Config.GetEnabledExchanges()
	if len(enabled) == 0 {
		return ErrNoFeedsEnabled
	}

	wsCfg := sc.websocketConfig()
	for _, name := range enabled {
		exCfg := sc.Config.Exchange[name]
		factory, ok := venue.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s (known: %v)", ErrUnknownExchange, name, venue.Names())
		}

		v := factory(venue.Options{
			WsURL:                       exCfg.WsURL,
			PromoteSingleAllGroupFilter: exCfg.PromoteSingleAllFilter,
		})
		filters := exCfg.Filters
		if len(filters) == 0 {
			filters = v.Filters(nil, exCfg.Symbols)
		}

		svc := feed.NewService(feed.ServiceDeps{
			Transport:     websocket.NewFeed(v.Name, v.WsURL, wsCfg),
			Normalizer:    service.NewNormalizer(v.Name, v.Mappers, v.Subscriptions, sc.Metrics),
			Subscriptions: v.Subscriptions,
			Filters:       filters,
			Sink:          sc.Sink,
		})
		if _, err := svc.Payloads(); err != nil {
			return fmt.Errorf("exchange.%s filters: %w", name, err)
		}
		sc.feeds = append(sc.feeds, svc)

		log.Info().Str("exchange", name).Str("url", v.WsURL).Int("filters", len(filters)).Msg("✓ feed initialized")
	}
	return nil
}

func (sc *ServiceContext) websocketConfig() websocket.Config {
	w := sc.Config.Websocket
	return websocket.Config{
		DialTimeout:    time.Duration(w.DialTimeoutSec) * time.Second,
		ReadTimeout:    time.Duration(w.ReadTimeoutSec) * time.Second,
		PingInterval:   time.Duration(w.PingIntervalSec) * time.Second,
		InitialBackoff: time.Duration(w.InitialBackoffMs) * time.Millisecond,
		MaxBackoff:     time.Duration(w.MaxBackoffSec) * time.Second,
	}
}

func (sc *ServiceContext) Feeds() []*feed.Service {
	return sc.feeds
}

// Run serves metrics and runs every feed until all of them stop. The first
// feed error other than cancellation is returned.
func (sc *ServiceContext) Run(ctx context.Context) error {
	if addr := sc.Config.Metrics.Addr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, sc.Registry); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
			}
		}()
	}

	if sc.board != nil {
		go sc.board.Run(ctx, time.Duration(sc.Config.Console.BoardEverySec)*time.Second)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, f := range sc.feeds {
		wg.Add(1)
		go func(f *feed.Service) {
			defer wg.Done()
			err := f.Run(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}(f)
	}
	wg.Wait()
	return firstErr
}

func (sc *ServiceContext) addCloser(name string, fn func() error) {
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Str("resource", name).Msg("closing")
		return fn()
	})
}

// Close releases resources in reverse order of acquisition.
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	sc.closerChain = nil
	return nil
}
