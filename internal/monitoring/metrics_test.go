package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.IncPagesFetched("ok")
	m.IncPagesFetched("ok")
	m.IncPagesFetched("error")
	m.IncFailures("extraction")
	m.AddSailings(3)

	start := time.Unix(1000, 0)
	m.ObserveRun(start, start.Add(1500*time.Millisecond))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesFetched.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesFetched.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("extraction")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SailingsCollected))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.RunDuration))
	assert.Equal(t, 1001.0, testutil.ToFloat64(m.LastRunTimestamp))

	// separate registries never collide
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncPagesFetched("ok")
		m.IncFailures("parsing")
		m.AddSailings(1)
		m.ObserveRun(time.Now(), time.Now())
	})
}
