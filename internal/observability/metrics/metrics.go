package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for room provisioning and
// notification dispatch.
type PortalMetrics struct {
	roomsTotal         *prometheus.CounterVec
	roomLatency        *prometheus.HistogramVec
	notificationsTotal *prometheus.CounterVec
	rateLimitedTotal   *prometheus.CounterVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		roomsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careflow",
			Subsystem: "video",
			Name:      "rooms_total",
			Help:      "Video room provisioning attempts by outcome",
		}, []string{"outcome"}),
		roomLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careflow",
			Subsystem: "video",
			Name:      "provider_latency_seconds",
			Help:      "Latency of video provider room creation calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careflow",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Notification dispatches by type and outcome",
		}, []string{"type", "outcome"}),
		rateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careflow",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.roomsTotal, m.roomLatency, m.notificationsTotal, m.rateLimitedTotal)
	return m
}

// ObserveRoom records one CreateRoom outcome (an apperr kind or "success").
func (m *PortalMetrics) ObserveRoom(outcome string) {
	if m == nil {
		return
	}
	m.roomsTotal.WithLabelValues(outcome).Inc()
}

func (m *PortalMetrics) ObserveProviderLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.roomLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *PortalMetrics) ObserveNotification(notificationType, outcome string) {
	if m == nil {
		return
	}
	if notificationType == "" {
		notificationType = "unknown"
	}
	m.notificationsTotal.WithLabelValues(notificationType, outcome).Inc()
}

func (m *PortalMetrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimitedTotal.WithLabelValues(route).Inc()
}
