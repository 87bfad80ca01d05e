// Package metrics exposes normalizer counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Collector struct {
	frames      *prometheus.CounterVec
	events      *prometheus.CounterVec
	disconnects *prometheus.CounterVec
}

// NewCollector registers the counters on reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tardis_frames_total",
			Help: "Raw frames processed, by result (ok, unhandled, error, disconnect).",
		}, []string{"exchange", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tardis_events_total",
			Help: "Normalized events emitted, by kind.",
		}, []string{"exchange", "kind"}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tardis_disconnects_total",
			Help: "Venue disconnect notices received.",
		}, []string{"exchange"}),
	}
	reg.MustRegister(c.frames, c.events, c.disconnects)
	return c
}

func (c *Collector) FrameProcessed(exchange, result string) {
	c.frames.WithLabelValues(exchange, result).Inc()
}

func (c *Collector) EventEmitted(exchange string, kind model.EventKind) {
	c.events.WithLabelValues(exchange, string(kind)).Inc()
}

func (c *Collector) Disconnected(exchange string) {
	c.disconnects.WithLabelValues(exchange).Inc()
}

// Serve runs the /metrics endpoint until ctx ends.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var _ port.Metrics = (*Collector)(nil)
