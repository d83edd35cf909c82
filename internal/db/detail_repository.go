// internal/db/detail_repository.go
package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotelac/internal/logger"
)

type DetailRepository struct {
	db *gorm.DB
}

func NewDetailRepository(gdb *gorm.DB) *DetailRepository {
	return &DetailRepository{db: gdb}
}

// CreateDetail 插入一条新详单
func (r *DetailRepository) CreateDetail(detail *DetailRecord) error {
	if err := r.db.Create(detail).Error; err != nil {
		logger.Error("创建详单记录失败 - 房间号: %s, 错误: %v", detail.RoomID, err)
		return fmt.Errorf("创建详单记录失败: %v", err)
	}
	return nil
}

// UpdateDetail 以绝对值覆盖详单的费用/时长/结束时间
func (r *DetailRepository) UpdateDetail(detail *DetailRecord) error {
	if err := r.db.Save(detail).Error; err != nil {
		logger.Error("更新详单记录失败 - 详单ID: %d, 房间号: %s, 错误: %v", detail.ID, detail.RoomID, err)
		return fmt.Errorf("更新详单记录失败: %v", err)
	}
	return nil
}

// GetDetailsByRoom 获取指定房间的所有详单,按开始时间升序
func (r *DetailRepository) GetDetailsByRoom(roomID string) ([]DetailRecord, error) {
	var details []DetailRecord
	err := r.db.Where("room_id = ?", roomID).
		Order("start_time ASC, id ASC").
		Find(&details).Error
	if err != nil {
		logger.Error("获取房间详单失败 - 房间号: %s, 错误: %v", roomID, err)
		return nil, fmt.Errorf("获取房间详单失败: %v", err)
	}
	return details, nil
}

// GetDetailsByRoomAndTimeRange 获取指定房间在时间范围内的所有详单
func (r *DetailRepository) GetDetailsByRoomAndTimeRange(roomID string, startTime, endTime time.Time) ([]DetailRecord, error) {
	var details []DetailRecord
	err := r.db.Where("room_id = ? AND start_time BETWEEN ? AND ?", roomID, startTime, endTime).
		Order("start_time ASC, id ASC").
		Find(&details).Error
	if err != nil {
		logger.Error("获取详单记录失败 - 房间号: %s, 时间范围: %v 到 %v, 错误: %v",
			roomID, startTime.Format("2006-01-02 15:04:05"), endTime.Format("2006-01-02 15:04:05"), err)
		return nil, fmt.Errorf("获取详单记录失败: %v", err)
	}
	return details, nil
}

// GetTotalFee 统计指定房间在时间范围内的空调费
func (r *DetailRepository) GetTotalFee(roomID string, startTime, endTime time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&DetailRecord{}).
		Where("room_id = ? AND start_time BETWEEN ? AND ?", roomID, startTime, endTime).
		Select("COALESCE(SUM(fee), 0)").
		Scan(&total).Error
	if err != nil {
		logger.Error("计算空调费失败 - 房间号: %s, 错误: %v", roomID, err)
		return 0, fmt.Errorf("计算空调费失败: %v", err)
	}
	return total, nil
}

// CountSessions 统计指定房间在时间范围内不同会话的数量
func (r *DetailRepository) CountSessions(roomID string, startTime, endTime time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&DetailRecord{}).
		Where("room_id = ? AND start_time BETWEEN ? AND ?", roomID, startTime, endTime).
		Distinct("session_id").
		Count(&count).Error
	if err != nil {
		logger.Error("统计会话数失败 - 房间号: %s, 错误: %v", roomID, err)
		return 0, fmt.Errorf("统计会话数失败: %v", err)
	}
	return count, nil
}

// CloseDangling 结清所有未关闭的详单,进程重启后调用
func (r *DetailRepository) CloseDangling(endTime time.Time) error {
	result := r.db.Model(&DetailRecord{}).
		Where("end_time IS NULL").
		Update("end_time", endTime)
	if result.Error != nil {
		logger.Error("结清历史详单失败 - 错误: %v", result.Error)
		return fmt.Errorf("结清历史详单失败: %v", result.Error)
	}
	if result.RowsAffected > 0 {
		logger.Warn("发现并结清了 %d 条遗留的未关闭详单", result.RowsAffected)
	}
	return nil
}

// DeleteAll 清空详单表,重置模式时调用
func (r *DetailRepository) DeleteAll(tx *gorm.DB) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Where("1 = 1").Delete(&DetailRecord{}).Error; err != nil {
		logger.Error("清空详单表失败 - 错误: %v", err)
		return fmt.Errorf("清空详单表失败: %v", err)
	}
	return nil
}
