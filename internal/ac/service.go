// internal/ac/service.go

package ac

import (
	"fmt"

	"hotelac/internal/config"
	"hotelac/internal/scheduler"
	"hotelac/internal/types"
)

// Service 面板与管理端指令的门面:解析并补全请求参数后转交调度器
type Service struct {
	cfg   *config.Config
	sched *scheduler.Scheduler
}

// NewService 创建空调指令门面
func NewService(cfg *config.Config, sched *scheduler.Scheduler) *Service {
	return &Service{cfg: cfg, sched: sched}
}

// PowerOn 开启房间空调,缺省参数用默认风速和当前模式的默认目标温度补全
func (s *Service) PowerOn(roomID, fanSpeed string, targetTemp *float64) error {
	fan := s.cfg.DefaultFan
	if fanSpeed != "" {
		parsed, ok := types.ParseFanSpeed(fanSpeed)
		if !ok {
			return fmt.Errorf("%w: %s", scheduler.ErrInvalidFanSpeed, fanSpeed)
		}
		fan = parsed
	}
	target := s.cfg.Modes[s.sched.Mode()].DefaultTarget
	if targetTemp != nil {
		target = *targetTemp
	}
	return s.sched.RequestPower(roomID, fan, target)
}

// PowerOff 关闭房间空调
func (s *Service) PowerOff(roomID string) error {
	return s.sched.StopPower(roomID)
}

// ChangeState 调整风速或目标温度,缺省参数沿用房间当前值。
// 对关机房间的调整按统一送风请求处理,会连带开机。
func (s *Service) ChangeState(roomID, fanSpeed string, targetTemp *float64) error {
	status, err := s.sched.Status(roomID)
	if err != nil {
		return err
	}
	fan := status.FanSpeed
	if fanSpeed != "" {
		parsed, ok := types.ParseFanSpeed(fanSpeed)
		if !ok {
			return fmt.Errorf("%w: %s", scheduler.ErrInvalidFanSpeed, fanSpeed)
		}
		fan = parsed
	}
	target := status.TargetTemp
	if targetTemp != nil {
		target = *targetTemp
	}
	return s.sched.RequestPower(roomID, fan, target)
}

// SetMode 切换中央空调工作模式,切换后保持暂停直到显式恢复
func (s *Service) SetMode(mode string) error {
	parsed, ok := types.ParseMode(mode)
	if !ok {
		return fmt.Errorf("%w: %s", scheduler.ErrInvalidMode, mode)
	}
	return s.sched.SetMode(parsed)
}

// Pause 暂停模拟
func (s *Service) Pause() {
	s.sched.Pause()
}

// Resume 恢复模拟
func (s *Service) Resume() {
	s.sched.Resume()
}

// Status 单个房间的面板快照
func (s *Service) Status(roomID string) (scheduler.RoomStatus, error) {
	return s.sched.Status(roomID)
}

// AllStatus 全部房间的面板快照
func (s *Service) AllStatus() []scheduler.RoomStatus {
	return s.sched.AllStatus()
}

// QueueInfo 调度队列全景
func (s *Service) QueueInfo() scheduler.QueueInfo {
	return s.sched.QueueSnapshot()
}
