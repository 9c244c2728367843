package metrics

import (
	"math"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestRecorderObserveDecision(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveDecision("success", 12*time.Millisecond)

	families := gather(t, rec, "hbacd_decision_total", "hbacd_decision_duration_seconds")

	counter := findMetric(t, families["hbacd_decision_total"], map[string]string{"status": "success"})
	if counter.GetCounter() == nil {
		t.Fatalf("expected counter metric for decisions")
	}
	if got := counter.GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected counter value 1, got %v", got)
	}

	histMetric := families["hbacd_decision_duration_seconds"][0]
	hist := histMetric.GetHistogram()
	if hist == nil {
		t.Fatalf("expected histogram metric for decision latency")
	}
	if hist.GetSampleCount() != 1 {
		t.Fatalf("expected histogram count 1, got %d", hist.GetSampleCount())
	}
	want := 0.012
	if diff := math.Abs(hist.GetSampleSum() - want); diff > 0.001 {
		t.Fatalf("expected histogram sum near %v, got %v", want, hist.GetSampleSum())
	}
}

func TestRecorderObserveDirectory(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveDirectory(OperationSearch, ResultOK, 5*time.Millisecond)
	rec.ObserveDirectory(OperationBind, ResultUnavailable, 2*time.Millisecond)

	families := gather(t, rec, "hbacd_directory_operations_total")

	searchMetric := findMetric(t, families["hbacd_directory_operations_total"], map[string]string{
		"operation": "search",
		"result":    "ok",
	})
	if got := searchMetric.GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected search counter 1, got %v", got)
	}

	bindMetric := findMetric(t, families["hbacd_directory_operations_total"], map[string]string{
		"operation": "bind",
		"result":    "unavailable",
	})
	if got := bindMetric.GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected bind counter 1, got %v", got)
	}
}

func TestRecorderObserveRuleFetch(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveRuleFetch(10, 7)
	rec.ObserveRuleRejected("malformed-enabled")

	families := gather(t, rec, "hbacd_rules_fetched", "hbacd_rules_materialized", "hbacd_rules_rejected_total")

	if families["hbacd_rules_fetched"][0].GetHistogram().GetSampleSum() != 10 {
		t.Fatalf("expected fetched sum 10")
	}
	if families["hbacd_rules_materialized"][0].GetHistogram().GetSampleSum() != 7 {
		t.Fatalf("expected materialized sum 7")
	}
	rejected := findMetric(t, families["hbacd_rules_rejected_total"], map[string]string{"reason": "malformed-enabled"})
	if got := rejected.GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected rejected counter 1, got %v", got)
	}
}

func TestRecorderHandler(t *testing.T) {
	rec := NewRecorder(nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)

	rec.Handler().ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected 200 response, got %d", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Fatalf("expected response body")
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.ObserveDecision("success", time.Millisecond)
	rec.ObserveDirectory(OperationSearch, ResultOK, time.Millisecond)
	rec.ObserveRuleFetch(1, 1)
	rec.ObserveRuleRejected("malformed")
	if rec.Gatherer() == nil {
		t.Fatalf("expected non-nil fallback gatherer")
	}
}

func gather(t *testing.T, rec *Recorder, names ...string) map[string][]*dto.Metric {
	t.Helper()
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	families, err := rec.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	collected := make(map[string][]*dto.Metric, len(names))
	for _, mf := range families {
		if !wanted[mf.GetName()] {
			continue
		}
		collected[mf.GetName()] = append(collected[mf.GetName()], mf.GetMetric()...)
	}
	for _, name := range names {
		if len(collected[name]) == 0 {
			t.Fatalf("metric %q not collected", name)
		}
	}
	return collected
}

func findMetric(t *testing.T, metrics []*dto.Metric, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, metric := range metrics {
		if matchLabels(metric, labels) {
			return metric
		}
	}
	t.Fatalf("metric with labels %v not found", labels)
	return nil
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) < len(labels) {
		return false
	}
	for key, expected := range labels {
		found := false
		for _, label := range metric.GetLabel() {
			if label.GetName() == key && label.GetValue() == expected {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
