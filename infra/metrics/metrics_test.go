package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.ObserveOp("increase")
	m.ObserveOp("increase")
	m.ObserveOp("count")
	m.SetEvents(3)
	m.ObserveWALAppend()
	m.ObservePublish(true)
	m.ObservePublish(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ops.WithLabelValues("increase")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Events))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WALAppends))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Published.WithLabelValues("failed")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "eventcounter_ops_total")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOp("count")
	m.SetEvents(1)
	m.ObserveWALAppend()
	m.ObservePublish(true)
}
