package events

import (
	"sync"
)

// Bus 进程内事件总线。调度循环发布状态变化，监控等旁路组件订阅，
// 事件处理始终异步执行，绝不阻塞调度节拍
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType]map[int]Handler
}

// NewBus 创建新的事件总线
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType]map[int]Handler),
	}
}

// Publish 发布事件，处理器在各自的 goroutine 中执行
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, handler := range b.handlers[event.Type] {
		go handler(event)
	}
}

// Subscribe 订阅指定类型的事件
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]Handler)
	}
	b.nextID++
	b.handlers[eventType][b.nextID] = handler
	return Subscription{EventType: eventType, id: b.nextID}
}

// Unsubscribe 取消订阅
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, exists := b.handlers[sub.EventType]; exists {
		delete(handlers, sub.id)
	}
}
