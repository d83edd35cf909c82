package scheduler

import (
	"time"

	"hotelac/internal/types"
)

// Room 是纯数据的房间运行时状态,全部决策逻辑在调度器中,
// 所有读写都在调度器互斥锁内进行
type Room struct {
	ID          string
	CurrentTemp float64
	TargetTemp  float64
	InitialTemp float64 // 当前模式下的回温基线
	Fan         types.FanSpeed
	Power       types.Power
	SessionID   string // 开机期间非空,每次 OFF→ON 重新生成
	CurrentFee  float64
	TotalFee    float64
	DailyRate   float64

	openRecord *Record // 正在计费的详单,最多一张
}

// Record 详单的内存镜像,持久化失败时以内存值为准
type Record struct {
	ID        uint
	RoomID    string
	SessionID string
	StartTime time.Time
	EndTime   *time.Time
	Fan       types.FanSpeed
	FeeRate   float64 // 元/模拟分钟,开单时固定
	Fee       float64
	Duration  float64 // 模拟秒
}

// RoomStatus 面板查询返回的房间快照
type RoomStatus struct {
	RoomID      string           `json:"roomId"`
	SchedState  types.SchedState `json:"schedState"`
	CurrentTemp float64          `json:"currentTemp"`
	TargetTemp  float64          `json:"targetTemp"`
	FanSpeed    types.FanSpeed   `json:"fanSpeed"`
	Power       types.Power      `json:"power"`
	Mode        types.Mode       `json:"mode"`
	CurrentFee  float64          `json:"currentFee"`
	TotalFee    float64          `json:"totalFee"`
}

// ServiceSlot 服务队列中一个槽位的快照
type ServiceSlot struct {
	RoomID      string         `json:"roomId"`
	FanSpeed    types.FanSpeed `json:"fanSpeed"`
	Priority    int            `json:"priority"`
	CurrentTemp float64        `json:"currentTemp"`
	TargetTemp  float64        `json:"targetTemp"`
	SimDuration float64        `json:"simDuration"` // 本槽位已服务时长,模拟秒
	SessionFee  float64        `json:"sessionFee"`
}

// WaitSlot 等待队列中一个位置的快照
type WaitSlot struct {
	RoomID   string         `json:"roomId"`
	FanSpeed types.FanSpeed `json:"fanSpeed"`
	Priority int            `json:"priority"`
	SimWait  float64        `json:"simWait"` // 已等待时长,模拟秒
}

// QueueInfo 管理端监控用的调度全景快照
type QueueInfo struct {
	Mode         types.Mode    `json:"mode"`
	Paused       bool          `json:"paused"`
	ServiceQueue []ServiceSlot `json:"serviceQueue"`
	WaitQueue    []WaitSlot    `json:"waitQueue"`
	Hysteresis   []string      `json:"hysteresis"`
}
