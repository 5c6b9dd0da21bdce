package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector("stemma")

	c.ObserveMessage("node_clicked", nil)
	c.ObserveMessage("node_clicked", nil)
	c.ObserveMessage("node_dragged", errors.New("gone"))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Messages.WithLabelValues("node_clicked", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Messages.WithLabelValues("node_dragged", "error")))

	c.ObserveFrame(false, time.Millisecond)
	c.ObserveFrame(true, 0)
	c.ObserveFrame(true, 0)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.FrameRenders.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FrameRenders.WithLabelValues("miss")))

	c.SetModelSize(3, 2)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Nodes))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Edges))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("stemma")
	b := NewCollector("stemma")

	a.Ticks.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Ticks))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Ticks))
}

func TestHandler(t *testing.T) {
	c := NewCollector("stemma")
	c.Ticks.Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stemma_ticks_total 1")
}
