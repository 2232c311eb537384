// Package metrics 基于Prometheus的指标
//
// 指标分两类：
//   - HTTP指标：请求总数、耗时、处理中请求数（由中间件记录）
//   - 业务指标：借阅/归还结果、库存调整结果、元数据版本冲突次数、流程耗时
//
// 结果标签使用"ok"或业务错误码，取值有限，不会产生高基数。
// 所有Record*函数会确保指标已注册，未调用InitMetrics也可安全使用。
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

const namespace = "library"

var (
	once sync.Once

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// RentalsTotal 借阅请求结果
	RentalsTotal *prometheus.CounterVec

	// ReturnsTotal 归还请求结果
	ReturnsTotal *prometheus.CounterVec

	// FinesCollectedTotal 缴纳的罚款总额（分）
	FinesCollectedTotal prometheus.Counter

	// StockAdjustmentsTotal 库存调整结果
	// 标签：op（replenish/write_off）、result
	StockAdjustmentsTotal *prometheus.CounterVec

	// VersionConflictsTotal 元数据乐观锁冲突次数
	VersionConflictsTotal prometheus.Counter

	// WorkflowDuration 业务流程耗时
	WorkflowDuration *prometheus.HistogramVec
)

// InitMetrics 注册所有指标到默认Registry，重复调用无副作用
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	RentalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_total",
			Help:      "借阅请求总数（按结果）",
		},
		[]string{"result"},
	)

	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_total",
			Help:      "归还请求总数（按结果）",
		},
		[]string{"result"},
	)

	FinesCollectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_collected_cents_total",
			Help:      "已缴纳罚款总额（分）",
		},
	)

	StockAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "库存调整总数（按操作与结果）",
		},
		[]string{"op", "result"},
	)

	VersionConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_conflicts_total",
			Help:      "图书元数据乐观锁冲突次数",
		},
	)

	WorkflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "业务流程耗时（秒）",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"workflow"},
	)
}

// Handler /metrics端点
func Handler() http.Handler {
	InitMetrics()
	return promhttp.Handler()
}

// ResultOf 把错误转换为结果标签："ok"或业务错误码
func ResultOf(err error) string {
	if err == nil {
		return "ok"
	}
	return strconv.Itoa(apperrors.GetAppError(err).Code)
}

// RecordRental 记录借阅结果
func RecordRental(err error) {
	InitMetrics()
	RentalsTotal.WithLabelValues(ResultOf(err)).Inc()
}

// RecordReturn 记录归还结果
func RecordReturn(err error) {
	InitMetrics()
	ReturnsTotal.WithLabelValues(ResultOf(err)).Inc()
}

// RecordFinePaid 记录缴纳的罚款
func RecordFinePaid(cents int64) {
	InitMetrics()
	if cents > 0 {
		FinesCollectedTotal.Add(float64(cents))
	}
}

// RecordStockAdjustment 记录库存调整结果
func RecordStockAdjustment(op string, err error) {
	InitMetrics()
	StockAdjustmentsTotal.WithLabelValues(op, ResultOf(err)).Inc()
}

// RecordVersionConflict 记录一次乐观锁冲突
func RecordVersionConflict() {
	InitMetrics()
	VersionConflictsTotal.Inc()
}

// ObserveWorkflow 记录流程耗时
func ObserveWorkflow(workflow string, seconds float64) {
	InitMetrics()
	WorkflowDuration.WithLabelValues(workflow).Observe(seconds)
}
