// internal/metrics/metrics.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ServiceRooms 当前处于服务队列的房间数
	ServiceRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ac_service_rooms",
		Help: "Rooms currently in the service set",
	})

	// WaitingRooms 当前处于等待队列的房间数
	WaitingRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ac_waiting_rooms",
		Help: "Rooms currently in the wait set",
	})

	// Requests 按动作与受理结果统计的控制请求数
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ac_requests_total",
		Help: "Control requests by action and submit status",
	}, []string{"action", "status"})

	// Preemptions 高优先级抢占次数
	Preemptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ac_preemptions_total",
		Help: "Service preemptions by higher priority requests",
	})

	// Rotations 时间片轮转换入换出次数
	Rotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ac_rotations_total",
		Help: "Time-slice rotation swaps",
	})

	// RecordFailures 详单持久化失败次数
	RecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ac_record_failures_total",
		Help: "Detail record open/close failures",
	})

	// TickDuration 单个调度节拍的耗时分布
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ac_tick_duration_seconds",
		Help:    "Duration of one scheduler tick",
		Buckets: prometheus.DefBuckets,
	})
)
