package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelac/internal/logger"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(gdb *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: gdb}
}

// Upsert 登记顾客,同一证件号重复入住时覆盖旧信息
func (r *CustomerRepository) Upsert(customer *Customer) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(customer).Error
	if err != nil {
		logger.Error("登记顾客失败 - 顾客ID: %s, 错误: %v", customer.ID, err)
		return fmt.Errorf("登记顾客失败: %v", err)
	}
	return nil
}

// GetByRoom 查询当前住在指定房间的顾客
func (r *CustomerRepository) GetByRoom(roomID string) (*Customer, error) {
	var customer Customer
	err := r.db.Where("room_id = ?", roomID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("查询顾客失败 - 房间号: %s, 错误: %v", roomID, err)
		return nil, fmt.Errorf("查询顾客失败: %v", err)
	}
	return &customer, nil
}

// ClearRoom 退房时解除顾客与房间的关联
func (r *CustomerRepository) ClearRoom(tx *gorm.DB, roomID string) error {
	if tx == nil {
		tx = r.db
	}
	err := tx.Model(&Customer{}).
		Where("room_id = ?", roomID).
		Update("room_id", "").Error
	if err != nil {
		logger.Error("解除顾客房间关联失败 - 房间号: %s, 错误: %v", roomID, err)
		return fmt.Errorf("解除顾客房间关联失败: %v", err)
	}
	return nil
}
