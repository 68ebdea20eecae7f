package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetricsCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("notification_cleanup")
	m.IncSuccess("notification_cleanup")
	m.IncFailure("")
	m.ObserveDuration("notification_cleanup", 150*time.Millisecond)

	if got := testutil.ToFloat64(m.success.WithLabelValues("notification_cleanup")); got != 2 {
		t.Fatalf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("failure count for blank label = %v, want 1", got)
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *CronJobMetrics
	m.IncSuccess("job")
	m.IncFailure("job")
	m.ObserveDuration("job", time.Second)

	empty := NewCronJobMetrics(nil)
	empty.IncSuccess("job")
}
