package events

import "time"

// EventType 事件类型定义
type EventType int

const (
	// 系统事件
	EventSystemStartup EventType = iota
	EventSystemShutdown

	// 空调控制事件
	EventPowerOn
	EventPowerOff

	// 调度事件
	EventServiceStart     // 进入服务队列开始送风
	EventServicePreempted // 被高优先级请求抢占
	EventServiceRotated   // 时间片轮转换出
	EventEnterWaitQueue   // 进入等待队列
	EventAutoStop         // 达到目标温度停止送风
	EventRedispatch       // 回温超过阈值重新调度

	// 中央控制事件
	EventModeReset
	EventPaused
	EventResumed

	// 前台事件
	EventCheckIn
	EventCheckOut

	// 存储事件
	EventStorageError
)

// Event 事件结构
type Event struct {
	Type      EventType   `json:"type"`
	RoomID    string      `json:"room_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Handler 事件处理函数类型
type Handler func(Event)

// Subscription 事件订阅凭据,用于取消订阅
type Subscription struct {
	EventType EventType
	ID        int
}

// ServiceEventData 调度事件携带的上下文
type ServiceEventData struct {
	RoomID      string  `json:"room_id"`
	FanSpeed    string  `json:"fan_speed"`
	Priority    int     `json:"priority"`
	CurrentTemp float64 `json:"current_temp"`
	TargetTemp  float64 `json:"target_temp"`
	Reason      string  `json:"reason,omitempty"`
}

// EventNames 提供事件类型的字符串表示
var EventNames = map[EventType]string{
	EventSystemStartup:    "SystemStartup",
	EventSystemShutdown:   "SystemShutdown",
	EventPowerOn:          "PowerOn",
	EventPowerOff:         "PowerOff",
	EventServiceStart:     "ServiceStart",
	EventServicePreempted: "ServicePreempted",
	EventServiceRotated:   "ServiceRotated",
	EventEnterWaitQueue:   "EnterWaitQueue",
	EventAutoStop:         "AutoStop",
	EventRedispatch:       "Redispatch",
	EventModeReset:        "ModeReset",
	EventPaused:           "Paused",
	EventResumed:          "Resumed",
	EventCheckIn:          "CheckIn",
	EventCheckOut:         "CheckOut",
	EventStorageError:     "StorageError",
}

// Name 返回事件类型名,未知类型返回 Unknown
func (t EventType) Name() string {
	if name, ok := EventNames[t]; ok {
		return name
	}
	return "Unknown"
}
