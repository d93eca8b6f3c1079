// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はサインインパイプラインのメトリクスを収集する。
type Collector struct {
	signInSuccess  *prometheus.CounterVec
	signInFailure  *prometheus.CounterVec
	tokensIssued   prometheus.Counter
	signInDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signInSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idbroker_signin_success_total",
			Help: "プロバイダー別のサインイン成功数",
		}, []string{"provider"}),
		signInFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idbroker_signin_failure_total",
			Help: "プロバイダー・失敗種別ごとのサインイン失敗数",
		}, []string{"provider", "reason"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "idbroker_tokens_issued_total",
			Help: "発行されたセッショントークンの合計数",
		}),
		signInDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "idbroker_signin_duration_seconds",
			Help:    "サインイン処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signInSuccess,
		c.signInFailure,
		c.tokensIssued,
		c.signInDuration,
	)

	return c
}

// RecordSignInSuccess はサインイン成功を記録する。
func (c *Collector) RecordSignInSuccess(provider string) {
	c.signInSuccess.WithLabelValues(provider).Inc()
}

// RecordSignInFailure はサインイン失敗を失敗種別とともに記録する。
func (c *Collector) RecordSignInFailure(provider, reason string) {
	c.signInFailure.WithLabelValues(provider, reason).Inc()
}

// RecordTokenIssued はセッショントークンの発行を記録する。
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// RecordSignInDuration はサインイン処理のレイテンシを記録する。
func (c *Collector) RecordSignInDuration(d time.Duration) {
	c.signInDuration.Observe(d.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
