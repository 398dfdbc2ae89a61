package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

// Metrics implements notifier.Metrics using Prometheus.
type Metrics struct {
	webhookEventsTotal        *prometheus.CounterVec
	webhookErrorsTotal        *prometheus.CounterVec
	webhookProcessingDuration *prometheus.HistogramVec
	emailSendsTotal           *prometheus.CounterVec
	emailSendDuration         *prometheus.HistogramVec
}

// NewMetrics creates a new Prometheus metrics implementation for the webhook handler.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		webhookEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Total number of verified webhook events.",
		}, []string{"event_type", "status"}),

		webhookErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "errors_total",
			Help:      "Total number of rejected or failed webhook deliveries.",
		}, []string{"error_type"}),

		webhookProcessingDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "processing_duration_seconds",
			Help:      "Duration of webhook processing in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),

		emailSendsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "sends_total",
			Help:      "Total number of notification email send attempts.",
		}, []string{"transport", "status"}),

		emailSendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "send_duration_seconds",
			Help:      "Duration of email transport calls in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport"}),
	}
}

func (m *Metrics) RecordWebhookEvent(eventType, status string) {
	m.webhookEventsTotal.WithLabelValues(eventType, status).Inc()
}

func (m *Metrics) RecordWebhookError(errorType string) {
	m.webhookErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) RecordWebhookProcessingDuration(eventType string, duration time.Duration) {
	m.webhookProcessingDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (m *Metrics) RecordEmailSend(transport, status string) {
	m.emailSendsTotal.WithLabelValues(transport, status).Inc()
}

func (m *Metrics) RecordEmailSendDuration(transport string, duration time.Duration) {
	m.emailSendDuration.WithLabelValues(transport).Observe(duration.Seconds())
}

// DefaultMetrics returns a Metrics implementation using the default Prometheus registerer.
func DefaultMetrics(namespace string) notifier.Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, namespace)
}
