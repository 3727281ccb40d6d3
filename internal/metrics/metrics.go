// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordViewIncrement(collection string, store string)
	RecordPrimaryFailure(collection string)
	RecordLoginAttempt(success bool)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	viewIncrements *prometheus.CounterVec
	primaryFail    *prometheus.CounterVec
	loginAttempts  *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		viewIncrements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nooronx_view_increments_total",
			Help: "閲覧数加算の合計数（コレクション・ストア別）",
		}, []string{"collection", "store"}),
		primaryFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nooronx_primary_store_failures_total",
			Help: "プライマリストアへのアクセス失敗の合計数",
		}, []string{"collection"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nooronx_login_attempts_total",
			Help: "ログイン試行の合計数（結果別）",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nooronx_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nooronx_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.viewIncrements,
		c.primaryFail,
		c.loginAttempts,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordViewIncrement は閲覧数の加算を、応答したストア別に記録する。
func (c *Collector) RecordViewIncrement(collection string, store string) {
	c.viewIncrements.WithLabelValues(collection, store).Inc()
}

// RecordPrimaryFailure はプライマリストアの失敗を記録する。
func (c *Collector) RecordPrimaryFailure(collection string) {
	c.primaryFail.WithLabelValues(collection).Inc()
}

// RecordLoginAttempt はログイン試行を記録する。
func (c *Collector) RecordLoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.loginAttempts.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
