package db

import "time"

// 房间信息表,调度器负责温度/费用等运行时字段,前台负责入住字段
type RoomInfo struct {
	RoomID       string    `gorm:"primaryKey;type:varchar(16)"`
	CurrentTemp  float64
	TargetTemp   float64
	InitialTemp  float64
	FanSpeed     string    `gorm:"type:varchar(16)"`
	Power        string    `gorm:"type:varchar(8)"`
	Mode         string    `gorm:"type:varchar(8)"`
	SessionID    string    `gorm:"type:varchar(64)"`
	CurrentFee   float64
	TotalFee     float64
	DailyRate    float64
	State        int       // 0: 空闲 1: 已入住
	ClientID     string    `gorm:"type:varchar(64)"`
	ClientName   string    `gorm:"type:varchar(64)"`
	CheckinTime  time.Time `gorm:"type:datetime"`
	CheckoutTime time.Time `gorm:"type:datetime"`
}

// 详单表,按送风区间追加,EndTime 为空表示仍在计费
type DetailRecord struct {
	ID        uint       `gorm:"primaryKey"`
	RoomID    string     `gorm:"index;type:varchar(16)"`
	SessionID string     `gorm:"index;type:varchar(64)"`
	StartTime time.Time  `gorm:"type:datetime"`
	EndTime   *time.Time `gorm:"type:datetime"`
	FanSpeed  string     `gorm:"type:varchar(16)"`
	FeeRate   float64    // 元/模拟分钟,开单时固定
	Fee       float64
	Duration  float64 // 累计送风时长,模拟秒
}

// 账单表,退房时生成
type Invoice struct {
	ID               string    `gorm:"primaryKey;type:varchar(64)"`
	RoomID           string    `gorm:"index;type:varchar(16)"`
	ClientID         string    `gorm:"type:varchar(64)"`
	ClientName       string    `gorm:"type:varchar(64)"`
	CheckinTime      time.Time `gorm:"type:datetime"`
	CheckoutTime     time.Time `gorm:"type:datetime"`
	StayDays         int
	DailyRate        float64
	AccommodationFee float64
	ACFee            float64
	TotalFee         float64
	CreatedAt        time.Time
}

// 顾客表
type Customer struct {
	ID       string `gorm:"primaryKey;type:varchar(64)"`
	Name     string `gorm:"type:varchar(64)"`
	IDNumber string `gorm:"type:varchar(32)"`
	RoomID   string `gorm:"index;type:varchar(16)"` // 为空表示未入住
}
