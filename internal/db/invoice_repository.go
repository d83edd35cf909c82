package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hotelac/internal/logger"
)

// IInvoiceRepository 定义账单相关的数据访问接口
type IInvoiceRepository interface {
	// Create 保存一张新账单
	Create(tx *gorm.DB, invoice *Invoice) error

	// GetLatestByRoom 获取指定房间最近一次退房生成的账单
	GetLatestByRoom(roomID string) (*Invoice, error)

	// GetByRoom 获取指定房间的全部账单
	GetByRoom(roomID string) ([]Invoice, error)

	// DeleteAll 清空账单表
	DeleteAll(tx *gorm.DB) error
}

// InvoiceRepository 账单数据访问实现
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(gdb *gorm.DB) IInvoiceRepository {
	return &InvoiceRepository{db: gdb}
}

func (r *InvoiceRepository) Create(tx *gorm.DB, invoice *Invoice) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Create(invoice).Error; err != nil {
		logger.Error("保存账单失败 - 房间号: %s, 错误: %v", invoice.RoomID, err)
		return fmt.Errorf("保存账单失败: %v", err)
	}
	return nil
}

func (r *InvoiceRepository) GetLatestByRoom(roomID string) (*Invoice, error) {
	var invoice Invoice
	err := r.db.Where("room_id = ?", roomID).
		Order("created_at DESC").
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("查询账单失败 - 房间号: %s, 错误: %v", roomID, err)
		return nil, fmt.Errorf("查询账单失败: %v", err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByRoom(roomID string) ([]Invoice, error) {
	var invoices []Invoice
	err := r.db.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		logger.Error("查询账单列表失败 - 房间号: %s, 错误: %v", roomID, err)
		return nil, fmt.Errorf("查询账单列表失败: %v", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) DeleteAll(tx *gorm.DB) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Where("1 = 1").Delete(&Invoice{}).Error; err != nil {
		logger.Error("清空账单表失败 - 错误: %v", err)
		return fmt.Errorf("清空账单表失败: %v", err)
	}
	return nil
}
