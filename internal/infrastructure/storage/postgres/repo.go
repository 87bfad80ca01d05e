package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/google/uuid"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS trades (
  id BIGSERIAL PRIMARY KEY,
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  trade_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  amount NUMERIC NOT NULL,
  side TEXT NOT NULL,
  ts TIMESTAMPTZ NOT NULL,
  local_ts TIMESTAMPTZ NOT NULL,
  UNIQUE(exchange, symbol, trade_id)
);
CREATE INDEX IF NOT EXISTS idx_trades_symbol_ts ON trades(exchange, symbol, ts);

CREATE TABLE IF NOT EXISTS book_changes (
  change_id UUID PRIMARY KEY,
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  is_snapshot BOOLEAN NOT NULL,
  ts TIMESTAMPTZ NOT NULL,
  local_ts TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_book_changes_symbol_ts ON book_changes(exchange, symbol, ts);

CREATE TABLE IF NOT EXISTS book_levels (
  change_id UUID NOT NULL REFERENCES book_changes(change_id),
  side TEXT NOT NULL,
  position INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  amount NUMERIC NOT NULL,
  PRIMARY KEY(change_id, side, position)
);
`)
	return err
}

// Postgres timestamps hold microseconds, so the exchange time is stored exactly.
func (r *Repo) WriteTrade(ctx context.Context, t *model.Trade) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trades(exchange, symbol, trade_id, price, amount, side, ts, local_ts)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT(exchange, symbol, trade_id) DO NOTHING
	`, t.Exchange, t.Symbol, t.ID, t.Price.String(), t.Amount.String(), string(t.Side), t.Timestamp.Time(), t.LocalTimestamp)
	return err
}

func (r *Repo) WriteBookChange(ctx context.Context, b *model.BookChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	changeID := uuid.New()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO book_changes(change_id, exchange, symbol, is_snapshot, ts, local_ts)
		VALUES($1, $2, $3, $4, $5, $6)
	`, changeID.String(), b.Exchange, b.Symbol, b.IsSnapshot, b.Timestamp.Time(), b.LocalTimestamp); err != nil {
		return err
	}

	insert := func(side string, levels []model.BookLevel) error {
		for i, lvl := range levels {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO book_levels(change_id, side, position, price, amount) VALUES($1, $2, $3, $4, $5)
			`, changeID.String(), side, i, lvl.Price.String(), lvl.Amount.String()); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert("bid", b.Bids); err != nil {
		return err
	}
	if err := insert("ask", b.Asks); err != nil {
		return err
	}
	return tx.Commit()
}

var _ port.EventSink = (*Repo)(nil)
