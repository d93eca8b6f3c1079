package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// counterValue は指定メトリクスのカウンタ値を取得する。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	var total float64
	for _, mf := range metrics {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

// TestRecordSignInSuccess_IncrementsCounter はサインイン成功カウンタが増加することを検証する。
func TestRecordSignInSuccess_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignInSuccess("google")
	c.RecordSignInSuccess("google")
	c.RecordSignInSuccess("apple")

	if got := counterValue(t, reg, "idbroker_signin_success_total"); got != 3 {
		t.Errorf("signin_success_total = %v, want 3", got)
	}
}

// TestRecordSignInFailure_IncrementsCounter はサインイン失敗カウンタが
// 失敗種別ラベル付きで増加することを検証する。
func TestRecordSignInFailure_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignInFailure("google", "invalid_assertion")
	c.RecordSignInFailure("apple", "persistence")

	if got := counterValue(t, reg, "idbroker_signin_failure_total"); got != 2 {
		t.Errorf("signin_failure_total = %v, want 2", got)
	}
}

// TestRecordTokenIssued_IncrementsCounter は発行カウンタが増加することを検証する。
func TestRecordTokenIssued_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTokenIssued()

	if got := counterValue(t, reg, "idbroker_tokens_issued_total"); got != 1 {
		t.Errorf("tokens_issued_total = %v, want 1", got)
	}
}

// TestRecordSignInDuration_ObservesHistogram はレイテンシがヒストグラムに記録されることを検証する。
func TestRecordSignInDuration_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignInDuration(150 * time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "idbroker_signin_duration_seconds" {
			found = true
			if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
				t.Errorf("histogram sample count = %d, want 1", count)
			}
		}
	}
	if !found {
		t.Error("idbroker_signin_duration_seconds metric not found")
	}
}

// TestSetupMetricsRoute_ServesPrometheusFormat は/metricsがスクレイプ可能な
// テキストフォーマットを返すことを検証する。
func TestSetupMetricsRoute_ServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSignInSuccess("google")

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "idbroker_signin_success_total") {
		t.Error("expected idbroker_signin_success_total in /metrics output")
	}
}
