package events

import (
	"sync"
)

// EventBus 是事件总线的实现,处理函数异步执行
type EventBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType]map[int]Handler
}

// NewEventBus 创建新的事件总线
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType]map[int]Handler),
	}
}

// Publish 发布事件,每个订阅者在独立 goroutine 中处理
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, handler := range eb.handlers[event.Type] {
		go handler(event)
	}
}

// Subscribe 订阅事件,返回的凭据用于取消订阅
func (eb *EventBus) Subscribe(eventType EventType, handler Handler) Subscription {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	if eb.handlers[eventType] == nil {
		eb.handlers[eventType] = make(map[int]Handler)
	}
	eb.handlers[eventType][eb.nextID] = handler
	return Subscription{
		EventType: eventType,
		ID:        eb.nextID,
	}
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(sub Subscription) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if handlers, exists := eb.handlers[sub.EventType]; exists {
		delete(handlers, sub.ID)
	}
}
