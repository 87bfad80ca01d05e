package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain"
	"github.com/bradsherman/tardis-node/internal/domain/model"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiDim   = "\033[2m"
)

func colorize(s, c string) string { return c + s + ansiReset }

// BoardSink keeps a top-of-book board and prints it periodically.
type BoardSink struct {
	board *domain.Board
	mu    sync.Mutex
	out   io.Writer
	color bool
}

func NewBoardSink() *BoardSink { return NewBoardWriterSink(os.Stderr, true) }

func NewBoardWriterSink(w io.Writer, color bool) *BoardSink {
	return &BoardSink{board: domain.NewBoard(), out: w, color: color}
}

func (s *BoardSink) Board() *domain.Board { return s.board }

func (s *BoardSink) WriteTrade(ctx context.Context, t *model.Trade) error {
	s.board.ApplyTrade(t)
	return nil
}

func (s *BoardSink) WriteBookChange(ctx context.Context, b *model.BookChange) error {
	s.board.ApplyBookChange(b)
	return nil
}

func (s *BoardSink) Close() error { return nil }

// Run prints the board every interval until ctx ends.
func (s *BoardSink) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Print(now)
		}
	}
}

// Print writes one line per tracked instrument.
func (s *BoardSink) Print(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.board.Quotes() {
		fmt.Fprintf(s.out, "%s %s\n", now.Format("2006-01-02 15:04:05"), s.render(q))
	}
}

func (s *BoardSink) render(q domain.Quote) string {
	var sb strings.Builder
	sb.WriteString(q.Key)

	bid, ask, last := "--", "--", "--"
	if q.HasBid {
		bid = q.BidAmount.String() + "@" + q.BidPrice.String()
	}
	if q.HasAsk {
		ask = q.AskAmount.String() + "@" + q.AskPrice.String()
	}
	if q.HasLast {
		last = q.Last.String()
	}

	sb.WriteString(" bid=" + bid)
	sb.WriteString(" ask=" + ask)
	if q.Synced {
		fmt.Fprintf(&sb, " depth=%d/%d", q.BidLevels, q.AskLevels)
	} else {
		sb.WriteString(" depth=--")
	}
	sb.WriteString(" last=")
	if !s.color {
		sb.WriteString(last)
		return sb.String()
	}
	switch q.Direction {
	case domain.DirectionUp:
		sb.WriteString(colorize(last, ansiGreen))
	case domain.DirectionDown:
		sb.WriteString(colorize(last, ansiRed))
	default:
		sb.WriteString(colorize(last, ansiDim))
	}
	return sb.String()
}

var _ port.EventSink = (*BoardSink)(nil)
