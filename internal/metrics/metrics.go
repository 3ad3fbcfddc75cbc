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
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	// RecordAuthAttempt はログイン試行を記録する。methodは "local" または "google"、
	// resultは "success" や失敗理由のエラーコード。
	RecordAuthAttempt(method, result string)
	RecordRegistration(role string)
	RecordAnnouncementCreated()
	// RecordApplication は応募結果を記録する。resultは "created" または "duplicate"。
	RecordApplication(result string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authAttempts   *prometheus.CounterVec
	registrations  *prometheus.CounterVec
	announcements  prometheus.Counter
	applications   *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_auth_attempts_total",
			Help: "認証方式・結果別のログイン試行数",
		}, []string{"method", "result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_registrations_total",
			Help: "ユーザー種別別の新規登録数",
		}, []string{"role"}),
		announcements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobboard_announcements_created_total",
			Help: "掲載された求人の合計数",
		}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_applications_total",
			Help: "結果別の応募数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.authAttempts,
		c.registrations,
		c.announcements,
		c.applications,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordAuthAttempt はログイン試行を記録する。
func (c *Collector) RecordAuthAttempt(method, result string) {
	c.authAttempts.WithLabelValues(method, result).Inc()
}

// RecordRegistration は新規登録を記録する。
func (c *Collector) RecordRegistration(role string) {
	c.registrations.WithLabelValues(role).Inc()
}

// RecordAnnouncementCreated は求人掲載を記録する。
func (c *Collector) RecordAnnouncementCreated() {
	c.announcements.Inc()
}

// RecordApplication は応募結果を記録する。
func (c *Collector) RecordApplication(result string) {
	c.applications.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使用する。
type Nop struct{}

func (Nop) RecordAuthAttempt(string, string) {}
func (Nop) RecordRegistration(string) {}
func (Nop) RecordAnnouncementCreated() {}
func (Nop) RecordApplication(string) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordRequestLatency(time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware はレスポンスのステータスコードと処理時間を記録するミドルウェアを返す。
func Middleware(c MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			c.RecordHTTPStatus(sw.status)
			c.RecordRequestLatency(time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
