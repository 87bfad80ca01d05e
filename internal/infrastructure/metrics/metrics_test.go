package metrics

import (
	"testing"

	"github.com/bradsherman/tardis-node/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.FrameProcessed("bitnomial", "ok")
	c.FrameProcessed("bitnomial", "ok")
	c.FrameProcessed("bitnomial", "error")
	c.EventEmitted("bitnomial", model.KindTrade)
	c.EventEmitted("bitnomial", model.KindBookChange)
	c.EventEmitted("bitnomial", model.KindBookChange)
	c.Disconnected("bitnomial")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.frames.WithLabelValues("bitnomial", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.frames.WithLabelValues("bitnomial", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.events.WithLabelValues("bitnomial", "trade")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("bitnomial", "book_change")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.disconnects.WithLabelValues("bitnomial")))
}

func TestCollectorRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
