package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bradsherman/tardis-node/internal/domain/model"
	"github.com/bradsherman/tardis-node/internal/infrastructure/exchange"
)

type Config struct {
	App struct {
		LogLevel string `toml:"log_level"`
	} `toml:"app"`

	// Exchange is keyed by registered venue name, e.g. [exchange.bitnomial].
	Exchange map[string]ExchangeConfig `toml:"exchange"`

	Websocket struct {
		DialTimeoutSec   int `toml:"dial_timeout_sec"`
		ReadTimeoutSec   int `toml:"read_timeout_sec"`
		PingIntervalSec  int `toml:"ping_interval_sec"`
		InitialBackoffMs int `toml:"initial_backoff_ms"`
		MaxBackoffSec    int `toml:"max_backoff_sec"`
	} `toml:"websocket"`

	Console struct {
		Enabled bool `toml:"enabled"`
		// BoardEverySec prints a top-of-book board to stderr; 0 disables it.
		BoardEverySec int `toml:"board_every_sec"`
	} `toml:"console"`

	SQLite struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"sqlite"`

	Postgres struct {
		Enabled bool   `toml:"enabled"`
		DSN     string `toml:"dsn"`
	} `toml:"postgres"`

	Redis struct {
		Enabled      bool   `toml:"enabled"`
		Addr         string `toml:"addr"`
		Password     string `toml:"password"`
		DB           int    `toml:"db"`
		Prefix       string `toml:"prefix"`
		TTLSeconds   int    `toml:"ttl_seconds"`
		Stream       string `toml:"stream"`
		Channel      string `toml:"channel"`
		StreamMaxLen int64  `toml:"stream_max_len"`
	} `toml:"redis"`

	Kafka struct {
		Enabled bool   `toml:"enabled"`
		Brokers string `toml:"brokers"`
		Topic   string `toml:"topic"`
	} `toml:"kafka"`

	Metrics struct {
		Addr string `toml:"addr"`
	} `toml:"metrics"`
}

type ExchangeConfig struct {
	Enabled bool   `toml:"enabled"`
	WsURL   string `toml:"ws_url"`
	// PromoteSingleAllFilter sends a lone catch-all channel filter to the
	// global product list.
	PromoteSingleAllFilter bool `toml:"promote_single_all_filter"`
	// Symbols subscribes every channel the venue's mappers need. Ignored
	// when Filters is set.
	Symbols []string       `toml:"symbols"`
	Filters []model.Filter `toml:"filters"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes config text instead of a file.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.App.LogLevel) == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.SQLite.Enabled && strings.TrimSpace(cfg.SQLite.Path) == "" {
		cfg.SQLite.Path = "data/tardis.db"
	}
	if strings.TrimSpace(cfg.Redis.Prefix) == "" {
		cfg.Redis.Prefix = "tardis"
	}
	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Kafka.Enabled && strings.TrimSpace(cfg.Kafka.Brokers) == "" {
		cfg.Kafka.Brokers = "localhost:9092"
	}
	// events must go somewhere
	if !cfg.SQLite.Enabled && !cfg.Postgres.Enabled && !cfg.Redis.Enabled && !cfg.Kafka.Enabled {
		cfg.Console.Enabled = true
	}
}

func validate(cfg *Config) error {
	enabled := cfg.GetEnabledExchanges()
	if len(enabled) == 0 {
		return errors.New("no exchange enabled")
	}

	for _, name := range enabled {
		ex := cfg.Exchange[name]
		ex.Symbols = exchange.NormalizeSymbols(ex.Symbols)
		if len(ex.Symbols) == 0 && len(ex.Filters) == 0 {
			return fmt.Errorf("exchange.%s: symbols and filters both empty", name)
		}
		for i, f := range ex.Filters {
			if strings.TrimSpace(f.Channel) == "" {
				return fmt.Errorf("exchange.%s.filters[%d]: channel empty", name, i)
			}
		}
		cfg.Exchange[name] = ex
	}

	if cfg.Postgres.Enabled && strings.TrimSpace(cfg.Postgres.DSN) == "" {
		return errors.New("postgres.dsn empty but enabled")
	}
	return nil
}

// GetEnabledExchanges returns enabled venue names in sorted order.
func (c *Config) GetEnabledExchanges() []string {
	var names []string
	for name, ex := range c.Exchange {
		if ex.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
