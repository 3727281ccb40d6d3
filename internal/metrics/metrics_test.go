package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は指定名・ラベルに一致するメトリクスを返す。見つからない場合はnilを返す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	return nil
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordViewIncrement_LabelsByStore はストア別に閲覧数加算が記録されることを検証する。
func TestRecordViewIncrement_LabelsByStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordViewIncrement("news", "primary")
	c.RecordViewIncrement("news", "primary")
	c.RecordViewIncrement("news", "fallback")
	c.RecordViewIncrement("education", "fallback")

	tests := []struct {
		collection string
		store      string
		want       float64
	}{
		{"news", "primary", 2},
		{"news", "fallback", 1},
		{"education", "fallback", 1},
	}
	for _, tt := range tests {
		m := findMetric(t, reg, "nooronx_view_increments_total",
			map[string]string{"collection": tt.collection, "store": tt.store})
		if m == nil {
			t.Fatalf("metric for %s/%s not found", tt.collection, tt.store)
		}
		if got := m.GetCounter().GetValue(); got != tt.want {
			t.Errorf("%s/%s = %v, want %v", tt.collection, tt.store, got, tt.want)
		}
	}
}

// TestRecordPrimaryFailure_IncrementsCounter はプライマリ失敗カウンタが増加することを検証する。
func TestRecordPrimaryFailure_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPrimaryFailure("education")

	m := findMetric(t, reg, "nooronx_primary_store_failures_total", map[string]string{"collection": "education"})
	if m == nil {
		t.Fatal("nooronx_primary_store_failures_total metric not found")
	}
	if got := m.GetCounter().GetValue(); got != 1 {
		t.Errorf("primary_store_failures_total = %v, want 1", got)
	}
}

// TestRecordLoginAttempt_SplitsByResult はログイン試行が結果別に記録されることを検証する。
func TestRecordLoginAttempt_SplitsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginAttempt(true)
	c.RecordLoginAttempt(false)
	c.RecordLoginAttempt(false)

	success := findMetric(t, reg, "nooronx_login_attempts_total", map[string]string{"result": "success"})
	failure := findMetric(t, reg, "nooronx_login_attempts_total", map[string]string{"result": "failure"})
	if success == nil || failure == nil {
		t.Fatal("login attempt metrics not found")
	}
	if got := success.GetCounter().GetValue(); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := failure.GetCounter().GetValue(); got != 2 {
		t.Errorf("failure = %v, want 2", got)
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はステータスコード別に記録されることを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	ok := findMetric(t, reg, "nooronx_http_status_total", map[string]string{"status_code": "200"})
	notFound := findMetric(t, reg, "nooronx_http_status_total", map[string]string{"status_code": "404"})
	if ok == nil || notFound == nil {
		t.Fatal("http status metrics not found")
	}
	if got := ok.GetCounter().GetValue(); got != 2 {
		t.Errorf("status 200 = %v, want 2", got)
	}
	if got := notFound.GetCounter().GetValue(); got != 1 {
		t.Errorf("status 404 = %v, want 1", got)
	}
}

// TestRecordRequestLatency_ObservesHistogram はヒストグラムに観測値が記録されることを検証する。
func TestRecordRequestLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestLatency(150 * time.Millisecond)
	c.RecordRequestLatency(2 * time.Second)

	m := findMetric(t, reg, "nooronx_http_request_duration_seconds", map[string]string{})
	if m == nil {
		t.Fatal("nooronx_http_request_duration_seconds metric not found")
	}
	h := m.GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", h.GetSampleCount())
	}
	if h.GetSampleSum() < 2.1 {
		t.Errorf("sample sum = %v, want >= 2.1", h.GetSampleSum())
	}
}

// TestMultipleCollectors_IndependentRegistries は別レジストリ同士が干渉しないことを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	_ = NewCollector(reg2)

	c1.RecordPrimaryFailure("news")

	if findMetric(t, reg1, "nooronx_primary_store_failures_total", map[string]string{"collection": "news"}) == nil {
		t.Error("reg1 should have the failure metric")
	}
	if findMetric(t, reg2, "nooronx_primary_store_failures_total", map[string]string{"collection": "news"}) != nil {
		t.Error("reg2 should not have the failure metric")
	}
}
