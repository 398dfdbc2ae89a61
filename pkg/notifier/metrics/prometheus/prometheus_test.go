package prommetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}
	return byName
}

func counterValue(t *testing.T, family *dto.MetricFamily, labels map[string]string) float64 {
	t.Helper()
	if family == nil {
		t.Fatal("metric family not found")
	}
	for _, m := range family.GetMetric() {
		matched := 0
		for _, lp := range m.GetLabel() {
			if labels[lp.GetName()] == lp.GetValue() {
				matched++
			}
		}
		if matched == len(labels) {
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("no series with labels %v", labels)
	return 0
}

func TestPrometheusMetrics_NewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	if metrics == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestPrometheusMetrics_RecordWebhookEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordWebhookEvent("checkout.session.completed", "success")
	metrics.RecordWebhookEvent("checkout.session.completed", "success")
	metrics.RecordWebhookEvent("invoice.paid", "ignored")

	families := gather(t, reg)
	got := counterValue(t, families["test_webhook_events_total"], map[string]string{
		"event_type": "checkout.session.completed",
		"status":     "success",
	})
	if got != 2 {
		t.Errorf("Expected 2 events, got %v", got)
	}
}

func TestPrometheusMetrics_RecordWebhookError(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordWebhookError("auth_failed")

	families := gather(t, reg)
	got := counterValue(t, families["test_webhook_errors_total"], map[string]string{"error_type": "auth_failed"})
	if got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
}

func TestPrometheusMetrics_RecordEmailSend(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordEmailSend("sendgrid", "error")
	metrics.RecordEmailSendDuration("sendgrid", 120*time.Millisecond)

	families := gather(t, reg)
	got := counterValue(t, families["test_email_sends_total"], map[string]string{
		"transport": "sendgrid",
		"status":    "error",
	})
	if got != 1 {
		t.Errorf("Expected 1 send, got %v", got)
	}

	hist := families["test_email_send_duration_seconds"]
	if hist == nil || hist.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Error("Expected one send duration observation")
	}
}

func TestPrometheusMetrics_RecordWebhookProcessingDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg, "test")

	metrics.RecordWebhookProcessingDuration("checkout.session.completed", 50*time.Millisecond)

	families := gather(t, reg)
	if _, ok := families["test_webhook_processing_duration_seconds"]; !ok {
		t.Error("Expected processing duration metrics to be recorded")
	}
}
