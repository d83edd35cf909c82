package scheduler

import (
	"time"

	"hotelac/internal/logger"
)

// openRecord 为房间开一张新详单,风速和费率在开单时固定。
// 调用方必须持有调度器锁。
func (s *Scheduler) openRecord(room *Room, now time.Time) {
	if room.openRecord != nil {
		// 不应该发生:上一张详单没有关闭
		logger.Warn("房间 %s 开单时存在未关闭详单,先行结清", room.ID)
		s.closeRecord(room, now)
	}
	rec := &Record{
		RoomID:    room.ID,
		SessionID: room.SessionID,
		StartTime: now,
		Fan:       room.Fan,
		FeeRate:   s.cfg.Fans[room.Fan].FeeRate,
	}
	room.openRecord = rec
	if err := s.store.InsertRecord(rec); err != nil {
		s.reportStorageError(room.ID, err)
	}
	logger.Debug("房间 %s 开单 - 风速: %s, 费率: %.4f 元/分", room.ID, rec.Fan, rec.FeeRate)
}

// closeRecord 结清房间的在计费详单,没有开单时为空操作。
// 调用方必须持有调度器锁。
func (s *Scheduler) closeRecord(room *Room, now time.Time) {
	rec := room.openRecord
	if rec == nil {
		return
	}
	end := now
	rec.EndTime = &end
	room.openRecord = nil
	if err := s.store.UpdateRecord(rec); err != nil {
		s.reportStorageError(room.ID, err)
	}
	logger.Debug("房间 %s 结单 - 时长: %.1f 模拟秒, 费用: %.4f 元", room.ID, rec.Duration, rec.Fee)
}

// flushRoom 把房间运行时快照回写到存储,失败只记日志
func (s *Scheduler) flushRoom(room *Room) error {
	if err := s.store.SaveRoom(room); err != nil {
		s.reportStorageError(room.ID, err)
		return err
	}
	return nil
}
