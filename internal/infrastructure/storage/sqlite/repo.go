package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

// Prices and amounts are stored as decimal text so nothing is rounded.
func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS trades (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  trade_id TEXT NOT NULL,
  price TEXT NOT NULL,
  amount TEXT NOT NULL,
  side TEXT NOT NULL,
  ts_us INTEGER NOT NULL,
  local_ts_us INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE(exchange, symbol, trade_id)
);
CREATE INDEX IF NOT EXISTS idx_trades_symbol_ts ON trades(exchange, symbol, ts_us);

CREATE TABLE IF NOT EXISTS book_changes (
  change_id TEXT PRIMARY KEY,
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  is_snapshot INTEGER NOT NULL,
  ts_us INTEGER NOT NULL,
  local_ts_us INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_book_changes_symbol_ts ON book_changes(exchange, symbol, ts_us);

CREATE TABLE IF NOT EXISTS book_levels (
  change_id TEXT NOT NULL REFERENCES book_changes(change_id),
  side TEXT NOT NULL,
  position INTEGER NOT NULL,
  price TEXT NOT NULL,
  amount TEXT NOT NULL,
  PRIMARY KEY(change_id, side, position)
);
`)
	return err
}

// WriteTrade ignores a trade id already stored for the same instrument.
func (r *Repo) WriteTrade(ctx context.Context, t *model.Trade) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trades(exchange, symbol, trade_id, price, amount, side, ts_us, local_ts_us, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(exchange, symbol, trade_id) DO NOTHING
	`, t.Exchange, t.Symbol, t.ID, t.Price.String(), t.Amount.String(), string(t.Side),
		t.Timestamp.UnixMicro(), t.LocalTimestamp.UnixMicro(), time.Now().UnixMilli())
	return err
}

func (r *Repo) WriteBookChange(ctx context.Context, b *model.BookChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	changeID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO book_changes(change_id, exchange, symbol, is_snapshot, ts_us, local_ts_us, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, changeID, b.Exchange, b.Symbol, b.IsSnapshot, b.Timestamp.UnixMicro(), b.LocalTimestamp.UnixMicro(), time.Now().UnixMilli()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO book_levels(change_id, side, position, price, amount) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for side, levels := range map[string][]model.BookLevel{"bid": b.Bids, "ask": b.Asks} {
		for i, lvl := range levels {
			if _, err := stmt.ExecContext(ctx, changeID, side, i, lvl.Price.String(), lvl.Amount.String()); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// ListTrades returns stored trades of one instrument in exchange time order.
func (r *Repo) ListTrades(ctx context.Context, exchange, symbol string) ([]*model.Trade, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT trade_id, price, amount, side, ts_us, local_ts_us
		FROM trades WHERE exchange=? AND symbol=? ORDER BY ts_us, id
	`, exchange, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*model.Trade
	for rows.Next() {
		var (
			id, price, amount, side string
			ts, localTs             int64
		)
		if err := rows.Scan(&id, &price, &amount, &side, &ts, &localTs); err != nil {
			return nil, err
		}
		t := &model.Trade{
			Type:           model.KindTrade,
			Symbol:         symbol,
			Exchange:       exchange,
			ID:             id,
			Side:           model.Side(side),
			Timestamp:      model.FromUnixMicro(ts),
			LocalTimestamp: time.UnixMicro(localTs).UTC(),
		}
		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("trade %s price: %w", id, err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("trade %s amount: %w", id, err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// ListBookChanges returns stored book changes of one instrument, levels in
// wire order.
func (r *Repo) ListBookChanges(ctx context.Context, exchange, symbol string) ([]*model.BookChange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT change_id, is_snapshot, ts_us, local_ts_us
		FROM book_changes WHERE exchange=? AND symbol=? ORDER BY ts_us, created_at
	`, exchange, symbol)
	if err != nil {
		return nil, err
	}

	var (
		ids     []string
		changes []*model.BookChange
	)
	for rows.Next() {
		var (
			id          string
			snapshot    bool
			ts, localTs int64
		)
		if err := rows.Scan(&id, &snapshot, &ts, &localTs); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
		changes = append(changes, &model.BookChange{
			Type:           model.KindBookChange,
			Symbol:         symbol,
			Exchange:       exchange,
			IsSnapshot:     snapshot,
			Bids:           []model.BookLevel{},
			Asks:           []model.BookLevel{},
			Timestamp:      model.FromUnixMicro(ts),
			LocalTimestamp: time.UnixMicro(localTs).UTC(),
		})
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		if err := r.loadLevels(ctx, id, changes[i]); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

func (r *Repo) loadLevels(ctx context.Context, changeID string, b *model.BookChange) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT side, price, amount FROM book_levels WHERE change_id=? ORDER BY side, position
	`, changeID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var side, price, amount string
		if err := rows.Scan(&side, &price, &amount); err != nil {
			return err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("book change %s price: %w", changeID, err)
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("book change %s amount: %w", changeID, err)
		}
		lvl := model.BookLevel{Price: p, Amount: a}
		if side == "bid" {
			b.Bids = append(b.Bids, lvl)
		} else {
			b.Asks = append(b.Asks, lvl)
		}
	}
	return rows.Err()
}

var _ port.EventSink = (*Repo)(nil)
