// internal/billing/statistics.go

package billing

import (
	"fmt"
	"time"

	"hotelac/internal/logger"
)

// RoomUsage 单个房间在统计周期内的空调使用汇总
type RoomUsage struct {
	RoomID      string  `json:"roomId"`
	Sessions    int     `json:"sessions"`    // 开关机次数(按会话)
	Records     int     `json:"records"`     // 详单条数
	FanChanges  int     `json:"fanChanges"`  // 会话内调风次数
	DurationSim float64 `json:"durationSim"` // 累计送风时长(模拟秒)
	TotalFee    float64 `json:"totalFee"`    // 空调费合计(元)
}

// Report 按日或按周汇总各房间的空调使用情况,无详单的房间不出现在结果中
func (s *Service) Report(period string) ([]RoomUsage, error) {
	now := time.Now()
	var start time.Time
	switch period {
	case "", "daily":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "weekly":
		offset := int(now.Weekday())
		if offset == 0 {
			offset = 7
		}
		monday := now.AddDate(0, 0, -offset+1)
		start = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}

	rooms, err := s.rooms.GetAllRooms()
	if err != nil {
		return nil, err
	}

	report := make([]RoomUsage, 0, len(rooms))
	for _, room := range rooms {
		details, err := s.details.GetDetailsByRoomAndTimeRange(room.RoomID, start, now)
		if err != nil {
			logger.Error("获取房间 %s 详单失败: %v", room.RoomID, err)
			continue
		}
		if len(details) == 0 {
			continue
		}

		usage := RoomUsage{RoomID: room.RoomID, Records: len(details)}
		sessions := make(map[string]struct{})
		prevSession, prevFan := "", ""
		for _, d := range details {
			sessions[d.SessionID] = struct{}{}
			if d.SessionID == prevSession && d.FanSpeed != prevFan {
				usage.FanChanges++
			}
			prevSession, prevFan = d.SessionID, d.FanSpeed
			usage.DurationSim += d.Duration
			usage.TotalFee += d.Fee
		}
		usage.Sessions = len(sessions)
		report = append(report, usage)
	}
	return report, nil
}
