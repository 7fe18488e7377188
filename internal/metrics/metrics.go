// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証フローの結果ラベル
const (
	OutcomeExistingUser = "existing_user"
	OutcomeNewUser      = "new_user"
	OutcomeRejected     = "rejected"
	OutcomeFailed       = "failed"
	OutcomeSuccess      = "success"
	OutcomeDuplicate    = "duplicate"
	OutcomeInvalidToken = "invalid_token"
	OutcomeAllowed      = "allowed"
	OutcomeMissingToken = "missing_token"
	OutcomeForbidden    = "forbidden"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordLogin(outcome string)
	RecordRegistration(outcome string)
	RecordAuthorization(level, outcome string)
	RecordReviewCreated(rating int)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins         *prometheus.CounterVec
	registrations  *prometheus.CounterVec
	authorizations *prometheus.CounterVec
	reviews        *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomfinder_logins_total",
			Help: "OAuthコールバックによるセッション発行の結果別件数",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomfinder_registrations_total",
			Help: "ユーザー登録の結果別件数",
		}, []string{"outcome"}),
		authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomfinder_authorizations_total",
			Help: "アクセスガードの判定結果（要求レベル別）",
		}, []string{"level", "outcome"}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomfinder_reviews_created_total",
			Help: "投稿されたレビュー数（評価値別）",
		}, []string{"rating"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roomfinder_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roomfinder_request_latency_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.registrations,
		c.authorizations,
		c.reviews,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordLogin はログイン（セッション発行）の結果を記録する。
func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordRegistration はユーザー登録の結果を記録する。
func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

// RecordAuthorization はアクセスガードの判定結果を記録する。
func (c *Collector) RecordAuthorization(level, outcome string) {
	c.authorizations.WithLabelValues(level, outcome).Inc()
}

// RecordReviewCreated はレビュー投稿を記録する。
func (c *Collector) RecordReviewCreated(rating int) {
	c.reviews.WithLabelValues(strconv.Itoa(rating)).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordLogin(string)                 {}
func (Nop) RecordRegistration(string)          {}
func (Nop) RecordAuthorization(string, string) {}
func (Nop) RecordReviewCreated(int)            {}
func (Nop) RecordHTTPStatus(int)               {}
func (Nop) RecordRequestLatency(time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
