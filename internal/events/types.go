package events

import "time"

// EventType 调度事件类型定义
type EventType int

const (
	EventServiceStart  EventType = iota // 进入服务队列开始送风
	EventServiceStop                    // 离开服务队列（关机或退房）
	EventEnterWait                      // 进入等待队列
	EventPreempted                      // 被更高优先级请求抢占
	EventRotated                        // 时间片轮转换出
	EventTargetReached                  // 达到目标温度转待机
	EventDriftRestart                   // 待机回温超过阈值自动重启
	EventRecordFailure                  // 详单持久化失败
)

// EventNames 提供事件类型的字符串表示
var EventNames = map[EventType]string{
	EventServiceStart:  "ServiceStart",
	EventServiceStop:   "ServiceStop",
	EventEnterWait:     "EnterWait",
	EventPreempted:     "Preempted",
	EventRotated:       "Rotated",
	EventTargetReached: "TargetReached",
	EventDriftRestart:  "DriftRestart",
	EventRecordFailure: "RecordFailure",
}

func (t EventType) String() string {
	if name, ok := EventNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Event 一次调度状态变化
type Event struct {
	Type      EventType `json:"type"`
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

// Handler 事件处理函数类型
type Handler func(Event)

// Subscription 事件订阅凭据，用于取消订阅
type Subscription struct {
	EventType EventType
	id        int
}
