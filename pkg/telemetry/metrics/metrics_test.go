package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *Config {
	return &Config{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "keystone",
	}
}

func TestNewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("expected non-nil collector")
	}
	if collector.Registry() != registry {
		t.Error("collector registry not set correctly")
	}
}

func TestNewCollector_NilRegistry(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	if collector.Registry() == nil {
		t.Error("expected a registry to be created")
	}
}

func TestCollector_RecordDecision(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordDecision("ACCEPTED")
	collector.RecordDecision("ESCALATED")
	collector.RecordDecision("ESCALATED")

	got := testutil.ToFloat64(collector.policyMetrics.decisionsTotal.WithLabelValues("ESCALATED"))
	if got != 2 {
		t.Errorf("expected 2 escalated decisions, got %v", got)
	}
	got = testutil.ToFloat64(collector.policyMetrics.decisionsTotal.WithLabelValues("ACCEPTED"))
	if got != 1 {
		t.Errorf("expected 1 accepted decision, got %v", got)
	}
}

func TestCollector_RecordRuleHit(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRuleHit("R-EMPTY-INPUT")
	collector.RecordRuleHit("R-EMPTY-INPUT")
	collector.RecordNoRuleMatch()

	got := testutil.ToFloat64(collector.policyMetrics.ruleHitsTotal.WithLabelValues("R-EMPTY-INPUT"))
	if got != 2 {
		t.Errorf("expected 2 rule hits, got %v", got)
	}
	got = testutil.ToFloat64(collector.policyMetrics.noRuleMatchTotal)
	if got != 1 {
		t.Errorf("expected 1 no-rule-match, got %v", got)
	}
}

func TestCollector_RecordQualityFlag(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordQualityFlag("SUMMARY_TOO_SHORT")
	collector.RecordQualityFlag("RELATIVE_TIME_UNRESOLVED")
	collector.RecordQualityFlag("SUMMARY_TOO_SHORT")

	got := testutil.ToFloat64(collector.policyMetrics.qualityFlagsTotal.WithLabelValues("SUMMARY_TOO_SHORT"))
	if got != 2 {
		t.Errorf("expected 2 flag occurrences, got %v", got)
	}
}

func TestCollector_RecordSensorActivity(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordSensorRequest("mock")
	collector.RecordSensorRequest("mock")
	collector.RecordSensorFailure()
	collector.RecordSensorCacheHit()
	collector.RecordSensorCacheMiss()
	collector.RecordSensorCacheMiss()

	if got := testutil.ToFloat64(collector.sensorMetrics.requestsTotal.WithLabelValues("mock")); got != 2 {
		t.Errorf("expected 2 sensor requests, got %v", got)
	}
	if got := testutil.ToFloat64(collector.sensorMetrics.failuresTotal); got != 1 {
		t.Errorf("expected 1 sensor failure, got %v", got)
	}
	if got := testutil.ToFloat64(collector.sensorMetrics.cacheHitsTotal); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(collector.sensorMetrics.cacheMissesTotal); got != 2 {
		t.Errorf("expected 2 cache misses, got %v", got)
	}
}

func TestCollector_RecordSubmissionAndDurations(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordSubmission()
	collector.RecordSubmission()
	collector.RecordPipelineDuration(120 * time.Millisecond)
	collector.RecordStageDuration("normalize", 40*time.Microsecond)
	collector.RecordStageDuration("decide", 15*time.Microsecond)

	if got := testutil.ToFloat64(collector.pipelineMetrics.submissionsTotal); got != 2 {
		t.Errorf("expected 2 submissions, got %v", got)
	}

	count := testutil.CollectAndCount(collector.pipelineMetrics.stageDuration)
	if count != 2 {
		t.Errorf("expected 2 stage series, got %d", count)
	}
}

func TestCollector_DisabledIsNoOp(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(&Config{Enabled: false}, registry)

	// Must not panic and must not register anything.
	collector.RecordSubmission()
	collector.RecordDecision("ACCEPTED")
	collector.RecordSensorFailure()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) != 0 {
		t.Errorf("expected no metric families for disabled collector, got %d", len(families))
	}
}

func TestCollector_NilIsNoOp(t *testing.T) {
	var collector *Collector

	// Every recording method must tolerate a nil receiver.
	collector.RecordSubmission()
	collector.RecordPipelineDuration(time.Second)
	collector.RecordStageDuration("extract", time.Second)
	collector.RecordDecision("REJECTED")
	collector.RecordRuleHit("R-1")
	collector.RecordNoRuleMatch()
	collector.RecordQualityFlag("LOCATION_AMBIGUOUS")
	collector.RecordSensorRequest("mock")
	collector.RecordSensorFailure()
	collector.RecordSensorCacheHit()
	collector.RecordSensorCacheMiss()
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordDecision("ESCALATED")

	server := httptest.NewServer(collector.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("failed to scrape metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := make([]byte, 64*1024)
	n, _ := resp.Body.Read(body)
	out := string(body[:n])

	if !strings.Contains(out, "test_keystone_decisions_total") {
		t.Errorf("expected decisions metric in scrape output, got:\n%s", out)
	}
}
