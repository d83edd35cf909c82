package db

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hotelac/internal/logger"
)

const defaultDBName = "hotel.db"

var (
	DB    *gorm.DB
	SQLDB *sql.DB
)

// Open 打开一个 sqlite 数据库并完成建表,供测试和 Init 共用
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = defaultDBName
	}
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}
	// sqlite 单写者,串行化连接避免 database is locked
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := gdb.AutoMigrate(&RoomInfo{}, &DetailRecord{}, &Invoice{}, &Customer{}); err != nil {
		return nil, fmt.Errorf("迁移数据库失败: %w", err)
	}
	return gdb, nil
}

// Init 打开进程级数据库连接
func Init(path string) error {
	gdb, err := Open(path)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("获取底层连接失败: %w", err)
	}
	DB = gdb
	SQLDB = sqlDB
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// EnsureRooms 首次启动时写入房间基础数据,已有数据则跳过
func EnsureRooms(gdb *gorm.DB, rooms []RoomInfo) error {
	var count int64
	if err := gdb.Model(&RoomInfo{}).Count(&count).Error; err != nil {
		return fmt.Errorf("统计房间数失败: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, room := range rooms {
		if err := gdb.Create(&room).Error; err != nil {
			return fmt.Errorf("创建房间 %s 失败: %w", room.RoomID, err)
		}
		logger.Info("成功创建房间: %s", room.RoomID)
	}
	return nil
}
