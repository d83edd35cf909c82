// internal/types/ac_types.go

package types

import "strings"

// Mode 中央空调工作模式
type Mode string

const (
	ModeCool Mode = "COOL"
	ModeHeat Mode = "HEAT"
)

// ParseMode 解析工作模式,兼容大小写和 cooling/heating 写法
func ParseMode(s string) (Mode, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COOL", "COOLING":
		return ModeCool, true
	case "HEAT", "HEATING":
		return ModeHeat, true
	}
	return "", false
}

// FanSpeed 送风风速档位
type FanSpeed string

const (
	FanLow    FanSpeed = "LOW"
	FanMedium FanSpeed = "MEDIUM"
	FanHigh   FanSpeed = "HIGH"
)

// ParseFanSpeed 解析风速档位,兼容大小写和中文档位
func ParseFanSpeed(s string) (FanSpeed, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW", "低", "低风":
		return FanLow, true
	case "MEDIUM", "MID", "中", "中风":
		return FanMedium, true
	case "HIGH", "高", "高风":
		return FanHigh, true
	}
	return "", false
}

// Power 房间空调电源状态
type Power string

const (
	PowerOn  Power = "ON"
	PowerOff Power = "OFF"
)

// SchedState 面板可见的房间调度状态
type SchedState string

const (
	StateOff     SchedState = "OFF"     // 关机
	StateReady   SchedState = "READY"   // 在服务队列中,但模拟已暂停
	StateRunning SchedState = "RUNNING" // 正在送风
	StateWaiting SchedState = "WAITING" // 在等待队列中
	StateIdle    SchedState = "IDLE"    // 开机但已达目标温度,回温待命
)
