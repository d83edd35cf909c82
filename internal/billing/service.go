// internal/billing/service.go

package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/events"
	"hotelac/internal/logger"
)

var (
	// ErrRoomOccupied 入住时房间已有住客
	ErrRoomOccupied = errors.New("room already occupied")
	// ErrRoomVacant 对空闲房间执行退房或查账
	ErrRoomVacant = errors.New("room not occupied")
	// ErrInvalidPeriod 报表周期非法
	ErrInvalidPeriod = errors.New("invalid report period")
)

// PowerController 前台退房时需要的调度器切面
type PowerController interface {
	StopPower(roomID string) error
	SimStart() time.Time
}

// Service 前台业务:入住退房、账单生成与查询、使用报表
type Service struct {
	cfg       *config.Config
	gdb       *gorm.DB
	bus       *events.EventBus
	power     PowerController
	rooms     *db.RoomRepository
	details   *db.DetailRepository
	invoices  db.IInvoiceRepository
	customers *db.CustomerRepository
}

// NewService 创建前台业务服务
func NewService(cfg *config.Config, gdb *gorm.DB, bus *events.EventBus, power PowerController) *Service {
	return &Service{
		cfg:       cfg,
		gdb:       gdb,
		bus:       bus,
		power:     power,
		rooms:     db.NewRoomRepository(gdb),
		details:   db.NewDetailRepository(gdb),
		invoices:  db.NewInvoiceRepository(gdb),
		customers: db.NewCustomerRepository(gdb),
	}
}

// CheckIn 入住登记,缺省顾客编号时自动分配
func (s *Service) CheckIn(roomID, clientID, name, idNumber string) error {
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return err
	}
	if room.State == 1 {
		return fmt.Errorf("%w: %s", ErrRoomOccupied, roomID)
	}
	if clientID == "" {
		clientID = uuid.New().String()
	}
	customer := &db.Customer{
		ID:       clientID,
		Name:     name,
		IDNumber: idNumber,
		RoomID:   roomID,
	}
	if err := s.customers.Upsert(customer); err != nil {
		return err
	}
	if err := s.rooms.CheckIn(roomID, clientID, name); err != nil {
		return err
	}
	s.bus.Publish(events.Event{Type: events.EventCheckIn, RoomID: roomID, Timestamp: time.Now(), Data: name})
	logger.Info("房间 %s 入住登记完成 - 顾客: %s", roomID, name)
	return nil
}

// CheckOut 退房:关停空调、按住宿期间的详单汇总空调费并生成账单。
// 住宿天数按住宿期间不同送风会话的数量折算,至少一天。
func (s *Service) CheckOut(roomID string) (*db.Invoice, error) {
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if room.State != 1 {
		return nil, fmt.Errorf("%w: %s", ErrRoomVacant, roomID)
	}

	if err := s.power.StopPower(roomID); err != nil {
		logger.Warn("退房时关停空调失败 - 房间号: %s, 错误: %v", roomID, err)
	}

	checkout := time.Now()
	acFee, err := s.details.GetTotalFee(roomID, room.CheckinTime, checkout)
	if err != nil {
		return nil, err
	}
	sessions, err := s.details.CountSessions(roomID, room.CheckinTime, checkout)
	if err != nil {
		return nil, err
	}
	stayDays := int(sessions)
	if stayDays < 1 {
		stayDays = 1
	}
	accommodation := float64(stayDays) * room.DailyRate

	invoice := &db.Invoice{
		ID:               uuid.New().String(),
		RoomID:           roomID,
		ClientID:         room.ClientID,
		ClientName:       room.ClientName,
		CheckinTime:      room.CheckinTime,
		CheckoutTime:     checkout,
		StayDays:         stayDays,
		DailyRate:        room.DailyRate,
		AccommodationFee: accommodation,
		ACFee:            acFee,
		TotalFee:         accommodation + acFee,
		CreatedAt:        checkout,
	}

	err = s.gdb.Transaction(func(tx *gorm.DB) error {
		if err := s.invoices.Create(tx, invoice); err != nil {
			return err
		}
		if err := s.rooms.CheckOut(tx, roomID); err != nil {
			return err
		}
		return s.customers.ClearRoom(tx, roomID)
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.Event{Type: events.EventCheckOut, RoomID: roomID, Timestamp: checkout, Data: invoice.ID})
	logger.Info("房间 %s 退房完成 - 住宿费: %.2f 元, 空调费: %.2f 元, 合计: %.2f 元",
		roomID, invoice.AccommodationFee, invoice.ACFee, invoice.TotalFee)
	return invoice, nil
}

// LatestInvoice 最近一次退房生成的账单,没有时返回 nil
func (s *Service) LatestInvoice(roomID string) (*db.Invoice, error) {
	return s.invoices.GetLatestByRoom(roomID)
}

// Details 指定房间全部详单,按开始时间升序
func (s *Service) Details(roomID string) ([]db.DetailRecord, error) {
	return s.details.GetDetailsByRoom(roomID)
}

// Customer 当前住在指定房间的顾客,没有时返回 nil
func (s *Service) Customer(roomID string) (*db.Customer, error) {
	return s.customers.GetByRoom(roomID)
}

// RoomBoard 前台房态一览
func (s *Service) RoomBoard() ([]db.RoomInfo, error) {
	return s.rooms.GetAllRooms()
}

// SimStart 模拟时间原点,详单时间轴换算用
func (s *Service) SimStart() time.Time {
	return s.power.SimStart()
}
