package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotelac/internal/logger"
)

// ErrRoomNotFound 房间号不存在
var ErrRoomNotFound = errors.New("room not found")

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(gdb *gorm.DB) *RoomRepository {
	return &RoomRepository{db: gdb}
}

// GetRoom 通过房间号获取房间信息
func (r *RoomRepository) GetRoom(roomID string) (*RoomInfo, error) {
	var room RoomInfo
	err := r.db.Where("room_id = ?", roomID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
		}
		logger.Error("查询房间失败 - 房间号: %s, 错误: %v", roomID, err)
		return nil, fmt.Errorf("查询房间失败: %v", err)
	}
	return &room, nil
}

// GetAllRooms 按房间号升序获取全部房间
func (r *RoomRepository) GetAllRooms() ([]RoomInfo, error) {
	var rooms []RoomInfo
	if err := r.db.Order("room_id ASC").Find(&rooms).Error; err != nil {
		logger.Error("获取所有房间失败 - 错误: %v", err)
		return nil, fmt.Errorf("获取所有房间失败: %v", err)
	}
	return rooms, nil
}

// SaveRuntime 回写调度器维护的运行时字段,不触碰入住相关字段
func (r *RoomRepository) SaveRuntime(room *RoomInfo) error {
	updates := map[string]interface{}{
		"current_temp": room.CurrentTemp,
		"target_temp":  room.TargetTemp,
		"initial_temp": room.InitialTemp,
		"fan_speed":    room.FanSpeed,
		"power":        room.Power,
		"session_id":   room.SessionID,
		"current_fee":  room.CurrentFee,
		"total_fee":    room.TotalFee,
	}
	return r.db.Model(&RoomInfo{}).
		Where("room_id = ?", room.RoomID).
		Updates(updates).Error
}

// SetMode 重置模式时批量改写所有房间的模式字段
func (r *RoomRepository) SetMode(tx *gorm.DB, mode string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&RoomInfo{}).Where("1 = 1").Update("mode", mode).Error
}

// CheckIn 入住登记
func (r *RoomRepository) CheckIn(roomID, clientID, clientName string) error {
	now := time.Now()
	result := r.db.Model(&RoomInfo{}).
		Where("room_id = ? AND state = ?", roomID, 0).
		Updates(map[string]interface{}{
			"client_id":    clientID,
			"client_name":  clientName,
			"checkin_time": now,
			"state":        1,
		})
	if result.Error != nil {
		logger.Error("入住登记失败 - 房间号: %s, 错误: %v", roomID, result.Error)
		return fmt.Errorf("入住登记失败: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("room occupied or not found")
	}
	return nil
}

// CheckOut 退房,清空入住信息
func (r *RoomRepository) CheckOut(tx *gorm.DB, roomID string) error {
	if tx == nil {
		tx = r.db
	}
	now := time.Now()
	result := tx.Model(&RoomInfo{}).
		Where("room_id = ? AND state = ?", roomID, 1).
		Updates(map[string]interface{}{
			"client_id":     "",
			"client_name":   "",
			"checkout_time": now,
			"state":         0,
		})
	if result.Error != nil {
		logger.Error("退房失败 - 房间号: %s, 错误: %v", roomID, result.Error)
		return fmt.Errorf("退房失败: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("room not occupied")
	}
	return nil
}
