package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestPortalMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)
	m.ObserveRoom("success")
	m.ObserveRoom("success")
	m.ObserveRoom("forbidden")
	m.ObserveNotification("refill_reminder", "success")
	m.ObserveNotification("", "invalid_request")
	m.ObserveRateLimited("create-video-room")
	m.ObserveProviderLatency("success", 0.2)

	if got := testutil.ToFloat64(m.roomsTotal.WithLabelValues("success")); got != 2 {
		t.Fatalf("rooms success = %v", got)
	}
	if got := testutil.ToFloat64(m.notificationsTotal.WithLabelValues("unknown", "invalid_request")); got != 1 {
		t.Fatalf("unknown notification = %v", got)
	}
}

func TestPortalMetricsGather(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)
	m.ObserveProviderLatency("upstream_error", 1.5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var hist *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "careflow_video_provider_latency_seconds" {
			hist = f
		}
	}
	if hist == nil {
		t.Fatalf("latency histogram not registered")
	}
	if hist.GetType() != dto.MetricType_HISTOGRAM {
		t.Fatalf("unexpected type %v", hist.GetType())
	}
	if count := hist.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
		t.Fatalf("sample count = %d", count)
	}
}

func TestPortalMetricsNilSafe(t *testing.T) {
	var m *PortalMetrics
	m.ObserveRoom("success")
	m.ObserveProviderLatency("success", 0.1)
	m.ObserveNotification("appointment_reminder", "success")
	m.ObserveRateLimited("route")
}
