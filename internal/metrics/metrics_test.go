package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Submission("created")
	m.Submission("created")
	m.Review("tutor", "approve", "ok")
	m.Adjustment("added")
	m.EventPublished(nil)
	m.EventPublished(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsTotal.WithLabelValues("tutor", "approve", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdjustmentsTotal.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublishedTotal.WithLabelValues("error")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Submission("created")
		m.Review("dean", "reject", "error")
		m.Adjustment("removed")
		m.EventPublished(nil)
	})
}
