package scheduler

import "errors"

var (
	// ErrRoomNotFound 房间号不存在
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidFanSpeed 风速档位不在 LOW/MEDIUM/HIGH 之中
	ErrInvalidFanSpeed = errors.New("invalid fan speed")
	// ErrInvalidTargetTemp 目标温度超出当前模式允许的范围
	ErrInvalidTargetTemp = errors.New("target temperature out of range")
	// ErrInvalidMode 工作模式不在 COOL/HEAT 之中
	ErrInvalidMode = errors.New("invalid work mode")
	// ErrStorage 持久化写入失败,内存状态仍然生效,下一个 tick 会重写
	ErrStorage = errors.New("storage failure")
)
