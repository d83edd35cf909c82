package scheduler

import (
	"time"

	"gorm.io/gorm"

	"hotelac/internal/db"
	"hotelac/internal/types"
)

// Store 是调度器的持久化协作方,内存状态始终是权威,
// 写入失败只记日志,下一个 tick 会以绝对值重写
type Store interface {
	// SaveRoom 回写一个房间的运行时快照
	SaveRoom(room *Room) error
	// InsertRecord 插入新详单并回填 ID
	InsertRecord(rec *Record) error
	// UpdateRecord 以绝对值覆盖详单
	UpdateRecord(rec *Record) error
	// CloseDanglingRecords 结清上次进程遗留的未关闭详单
	CloseDanglingRecords(endTime time.Time) error
	// Reset 在一个事务中清空详单和账单并重写所有房间
	Reset(mode types.Mode, rooms []*Room) error
}

// DBStore 基于 gorm/sqlite 的 Store 实现
type DBStore struct {
	db       *gorm.DB
	rooms    *db.RoomRepository
	details  *db.DetailRepository
	invoices db.IInvoiceRepository
}

func NewDBStore(gdb *gorm.DB) *DBStore {
	return &DBStore{
		db:       gdb,
		rooms:    db.NewRoomRepository(gdb),
		details:  db.NewDetailRepository(gdb),
		invoices: db.NewInvoiceRepository(gdb),
	}
}

func (s *DBStore) SaveRoom(room *Room) error {
	return s.rooms.SaveRuntime(&db.RoomInfo{
		RoomID:      room.ID,
		CurrentTemp: room.CurrentTemp,
		TargetTemp:  room.TargetTemp,
		InitialTemp: room.InitialTemp,
		FanSpeed:    string(room.Fan),
		Power:       string(room.Power),
		SessionID:   room.SessionID,
		CurrentFee:  room.CurrentFee,
		TotalFee:    room.TotalFee,
	})
}

func (s *DBStore) InsertRecord(rec *Record) error {
	row := recordToModel(rec)
	if err := s.details.CreateDetail(row); err != nil {
		return err
	}
	rec.ID = row.ID
	return nil
}

func (s *DBStore) UpdateRecord(rec *Record) error {
	// 插入曾经失败的详单在这里补写
	if rec.ID == 0 {
		return s.InsertRecord(rec)
	}
	return s.details.UpdateDetail(recordToModel(rec))
}

func (s *DBStore) CloseDanglingRecords(endTime time.Time) error {
	return s.details.CloseDangling(endTime)
}

func (s *DBStore) Reset(mode types.Mode, rooms []*Room) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txStore := NewDBStore(tx)
		if err := txStore.details.DeleteAll(tx); err != nil {
			return err
		}
		if err := txStore.invoices.DeleteAll(tx); err != nil {
			return err
		}
		if err := txStore.rooms.SetMode(tx, string(mode)); err != nil {
			return err
		}
		for _, room := range rooms {
			if err := txStore.SaveRoom(room); err != nil {
				return err
			}
		}
		return nil
	})
}

func recordToModel(rec *Record) *db.DetailRecord {
	return &db.DetailRecord{
		ID:        rec.ID,
		RoomID:    rec.RoomID,
		SessionID: rec.SessionID,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
		FanSpeed:  string(rec.Fan),
		FeeRate:   rec.FeeRate,
		Fee:       rec.Fee,
		Duration:  rec.Duration,
	}
}
