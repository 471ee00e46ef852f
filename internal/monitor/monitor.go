// internal/monitor/monitor.go

package monitor

import (
	"sync"
	"time"

	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/scheduler"
	"hotelac/internal/types"
)

// Source 监控数据源。快照供汇总展示，镜像回写把最新房态落库
type Source interface {
	Snapshot() []scheduler.RoomView
	SyncMirrors()
}

// FleetMetrics 全楼空调运行概况
type FleetMetrics struct {
	Timestamp  time.Time `json:"timestamp"`
	TotalRooms int       `json:"total_rooms"`
	Serving    int       `json:"serving"`
	Waiting    int       `json:"waiting"`
	Standby    int       `json:"standby"`
	PoweredOff int       `json:"powered_off"`

	AvgServiceSeconds float64 `json:"avg_service_seconds"`
	AvgWaitSeconds    float64 `json:"avg_wait_seconds"`

	Rooms       []scheduler.RoomView `json:"rooms"`
	EventCounts map[string]int64     `json:"event_counts"`
}

// Monitor 周期性汇总空调运行状况：记录调度事件计数、
// 打印全楼概况、顺带把实时房态回写数据库镜像
type Monitor struct {
	source   Source
	bus      *events.Bus
	interval time.Duration

	mu      sync.RWMutex
	metrics *FleetMetrics
	counts  map[events.EventType]int64
	subs    []events.Subscription

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New 创建监控器，interval 为 0 时默认 5 秒刷新一次
func New(source Source, bus *events.Bus, interval time.Duration) *Monitor {
	if interval == 0 {
		interval = 5 * time.Second
	}
	return &Monitor{
		source:   source,
		bus:      bus,
		interval: interval,
		metrics:  &FleetMetrics{EventCounts: map[string]int64{}},
		counts:   make(map[events.EventType]int64),
		stopChan: make(chan struct{}),
	}
}

// Start 订阅调度事件并启动刷新循环
func (m *Monitor) Start() {
	if m.bus != nil {
		for t := range events.EventNames {
			m.subs = append(m.subs, m.bus.Subscribe(t, m.onEvent))
		}
	}
	m.wg.Add(1)
	go m.run()
	logger.Info("监控已启动，刷新间隔 %v", m.interval)
}

// Stop 停止刷新循环并退订事件
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
		if m.bus != nil {
			for _, sub := range m.subs {
				m.bus.Unsubscribe(sub)
			}
		}
		logger.Info("监控已停止")
	})
}

func (m *Monitor) run() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.refresh()
			m.logStatus()
			m.source.SyncMirrors()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) onEvent(ev events.Event) {
	m.mu.Lock()
	m.counts[ev.Type]++
	m.mu.Unlock()
	logger.Debug("【事件】%s 房间 %s %s", ev.Type, ev.RoomID, ev.Detail)
}

// refresh 重建一份概况快照，旧快照发布后不再修改
func (m *Monitor) refresh() {
	views := m.source.Snapshot()

	next := &FleetMetrics{
		Timestamp:   time.Now(),
		TotalRooms:  len(views),
		Rooms:       views,
		EventCounts: make(map[string]int64),
	}

	var serviceTotal, waitTotal float64
	for _, view := range views {
		switch view.Phase {
		case types.PhaseServing:
			next.Serving++
			serviceTotal += view.ServiceDuration
		case types.PhaseWaiting:
			next.Waiting++
			waitTotal += view.RemainingWait
		case types.PhaseStandby:
			next.Standby++
		default:
			next.PoweredOff++
		}
	}
	if next.Serving > 0 {
		next.AvgServiceSeconds = serviceTotal / float64(next.Serving)
	}
	if next.Waiting > 0 {
		next.AvgWaitSeconds = waitTotal / float64(next.Waiting)
	}

	m.mu.Lock()
	for t, n := range m.counts {
		next.EventCounts[t.String()] = n
	}
	m.metrics = next
	m.mu.Unlock()
}

func (m *Monitor) logStatus() {
	m.mu.RLock()
	metrics := m.metrics
	m.mu.RUnlock()

	logger.Info("=== 空调运行状况 (时间: %s) ===", metrics.Timestamp.Format("15:04:05"))
	logger.Info("在册房间 %d：送风 %d / 等待 %d / 待机 %d / 关机 %d",
		metrics.TotalRooms, metrics.Serving, metrics.Waiting, metrics.Standby, metrics.PoweredOff)
	if metrics.Serving > 0 || metrics.Waiting > 0 {
		logger.Info("平均服务时长 %.1f 秒，平均剩余等待 %.1f 秒",
			metrics.AvgServiceSeconds, metrics.AvgWaitSeconds)
	}

	for _, view := range metrics.Rooms {
		switch view.Phase {
		case types.PhaseServing:
			logger.Info("房间 %s [送风]: %.1f°C -> %.1f°C, 风速 %s, 已服务 %.1f 秒",
				view.RoomID, view.CurrentTemp, view.TargetTemp, view.FanSpeed, view.ServiceDuration)
		case types.PhaseWaiting:
			logger.Info("房间 %s [等待]: %.1f°C -> %.1f°C, 风速 %s, 剩余等待 %.1f 秒",
				view.RoomID, view.CurrentTemp, view.TargetTemp, view.FanSpeed, view.RemainingWait)
		case types.PhaseStandby:
			logger.Info("房间 %s [待机]: %.1f°C，目标 %.1f°C", view.RoomID, view.CurrentTemp, view.TargetTemp)
		}
	}
	logger.Info("=============================")
}

// Metrics 最近一次刷新的概况快照
func (m *Monitor) Metrics() *FleetMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// EventCount 指定事件的累计次数
func (m *Monitor) EventCount(t events.EventType) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[t]
}
