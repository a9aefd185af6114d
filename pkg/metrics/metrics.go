package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 好友操作名称
const (
	OpSendRequest   = "send_request"
	OpAcceptRequest = "accept_request"
	OpRefuseRequest = "refuse_request"
	OpRemoveFriend  = "remove_friend"
)

// 结果标签
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	// friendOperations 好友操作计数，按操作与结果区分
	friendOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_friend_operations_total",
		Help: "Total friend relationship operations by operation and result",
	}, []string{"operation", "result"})

	// friendOperationDuration 好友操作耗时
	friendOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_friend_operation_duration_seconds",
		Help:    "Friend relationship operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms ~ 1s
	}, []string{"operation"})

	// wsConnections 当前WebSocket连接数
	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "social_ws_connections",
		Help: "Number of currently open WebSocket connections",
	})
)

// ObserveFriendOperation 记录一次好友操作的结果与耗时
func ObserveFriendOperation(operation string, start time.Time, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	friendOperations.WithLabelValues(operation, result).Inc()
	friendOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// WSConnected 连接建立
func WSConnected() { wsConnections.Inc() }

// WSDisconnected 连接断开
func WSDisconnected() { wsConnections.Dec() }

// Handler 暴露 /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
