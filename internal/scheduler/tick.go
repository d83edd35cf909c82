package scheduler

import (
	"time"

	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/types"
)

const (
	// 单个模拟周期允许的真实时间增量范围,超出则截断
	minTickDelta = time.Millisecond
	maxTickDelta = 5 * time.Second
)

// Start 启动模拟步进线程,重复调用为空操作
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.lastTick = s.now()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()
	go s.loop(stopCh, doneCh)
	logger.Info("调度器启动 - 服务容量: %d, 时间倍率: %.0fx, 步长: %v",
		s.cfg.MaxServices, s.cfg.TimeScale, s.cfg.Step())
}

// Stop 停止模拟步进线程并等待其退出
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh = nil
	s.doneCh = nil
	s.mu.Unlock()
	close(stopCh)
	<-doneCh
	logger.Info("调度器已停止")
}

func (s *Scheduler) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(s.cfg.Step())
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			s.runTick(now)
		}
	}
}

// runTick 推进一个模拟周期:先做时间片轮转和动态抢占,
// 再按房间号升序逐房间推进温度与费用
func (s *Scheduler) runTick(now time.Time) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		s.mets.ObserveTick(time.Since(start).Seconds())
	}()

	if s.paused {
		s.lastTick = now
		return
	}
	dReal := now.Sub(s.lastTick)
	s.lastTick = now
	if dReal < minTickDelta {
		dReal = minTickDelta
	}
	if dReal > maxTickDelta {
		dReal = maxTickDelta
	}
	dSim := dReal.Seconds() * s.cfg.TimeScale

	s.timeSliceCheck(now)
	s.dynamicPreemptionCheck(now)
	for _, id := range s.roomIDs {
		s.advanceRoom(id, dSim, now)
	}
}

// timeSliceCheck 时间片轮转:等待时长达到阈值的房间与同优先级中
// 服务最久的房间对调,每个周期至多轮转一对
func (s *Scheduler) timeSliceCheck(now time.Time) {
	for _, waiterID := range s.waitQueue {
		waiter := s.rooms[waiterID]
		simWait := now.Sub(s.waitStart[waiterID]).Seconds() * s.cfg.TimeScale
		if simWait < s.cfg.TimeSliceS {
			continue
		}
		victimID := s.longestServedAtPriority(s.priority(waiter.Fan), now)
		if victimID == "" {
			continue
		}
		s.moveToWaitQueue(s.rooms[victimID], now, events.EventServiceRotated, "时间片轮转")
		s.removeFromWait(waiterID)
		s.addToServiceQueue(waiter, now)
		logger.Info("时间片轮转 - 房间 %s 换出, 房间 %s 换入", victimID, waiterID)
		return
	}
}

// dynamicPreemptionCheck 动态抢占:等待队列中的最高优先级若严格高于
// 服务队列中的最低优先级则换入,每个周期至多抢占一对
func (s *Scheduler) dynamicPreemptionCheck(now time.Time) {
	if len(s.waitQueue) == 0 || len(s.serviceQueue) == 0 {
		return
	}
	var top *Room
	for _, id := range s.waitQueue {
		room := s.rooms[id]
		if top == nil {
			top = room
			continue
		}
		pt, pr := s.priority(top.Fan), s.priority(room.Fan)
		if pr > pt || (pr == pt && s.waitStart[id].Before(s.waitStart[top.ID])) {
			top = room
		}
	}
	victimID, pMin := s.selectVictim(now)
	if victimID == "" || s.priority(top.Fan) <= pMin {
		return
	}
	s.moveToWaitQueue(s.rooms[victimID], now, events.EventServicePreempted, "被高优先级请求抢占")
	s.removeFromWait(top.ID)
	s.addToServiceQueue(top, now)
	logger.Info("动态抢占 - 房间 %s 换出, 房间 %s 换入", victimID, top.ID)
}

// advanceRoom 推进单个房间,任何异常只影响该房间的本周期
func (s *Scheduler) advanceRoom(roomID string, dSim float64, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("房间 %s 状态推进异常,本周期跳过: %v", roomID, r)
		}
	}()
	room := s.rooms[roomID]
	if s.inService(roomID) {
		s.advanceServed(room, dSim, now)
		return
	}
	s.recoverTemp(room, dSim)
	if room.Power != types.PowerOn {
		return
	}
	if _, idle := s.hysteresis[roomID]; idle && s.needsService(room) {
		delete(s.hysteresis, roomID)
		s.publish(events.EventRedispatch, room, "回温超过阈值")
		logger.Info("房间 %s 回温至 %.2f°C,重新请求送风", roomID, room.CurrentTemp)
		s.dispatch(room, now)
	}
}

// advanceServed 推进在服房间:按风速温变速率改温并计费,
// 末段不足一个整周期时按到达目标所需的有效时长折算
func (s *Scheduler) advanceServed(room *Room, dSim float64, now time.Time) {
	if s.remainingToTarget(room) <= epsilonTemp {
		// 入队时刻与达温之间出现过调参,本周期不送风不计费
		s.autoStop(room, now)
		return
	}
	profile := s.cfg.Fans[room.Fan]
	degPerSec := profile.TempRate / 60
	dEff := dSim
	if remaining := s.remainingToTarget(room); degPerSec*dSim > remaining {
		dEff = remaining / degPerSec
	}
	if s.mode == types.ModeCool {
		room.CurrentTemp -= degPerSec * dEff
	} else {
		room.CurrentTemp += degPerSec * dEff
	}
	fee := profile.FeeRate / 60 * dEff
	room.CurrentFee += fee
	room.TotalFee += fee
	if rec := room.openRecord; rec != nil {
		rec.Fee += fee
		rec.Duration += dEff
		if err := s.store.UpdateRecord(rec); err != nil {
			s.reportStorageError(room.ID, err)
		}
	}
	if s.remainingToTarget(room) <= epsilonTemp {
		s.autoStop(room, now)
	}
	s.flushRoom(room)
}

// autoStop 达温停送风:结清详单、让出槽位、转入回温待命并立即补位
func (s *Scheduler) autoStop(room *Room, now time.Time) {
	s.closeRecord(room, now)
	s.removeFromService(room.ID)
	s.hysteresis[room.ID] = struct{}{}
	s.publish(events.EventAutoStop, room, "达到目标温度")
	logger.Info("房间 %s 达到目标温度 %.2f°C,停止送风", room.ID, room.TargetTemp)
	s.scheduleNext(now)
}

// recoverTemp 非在服房间以固定速率向初始温度回归,到达后钳位
func (s *Scheduler) recoverTemp(room *Room, dSim float64) {
	if room.CurrentTemp == room.InitialTemp {
		return
	}
	step := s.cfg.RecoverRate / 60 * dSim
	if room.CurrentTemp < room.InitialTemp {
		room.CurrentTemp += step
		if room.CurrentTemp > room.InitialTemp {
			room.CurrentTemp = room.InitialTemp
		}
	} else {
		room.CurrentTemp -= step
		if room.CurrentTemp < room.InitialTemp {
			room.CurrentTemp = room.InitialTemp
		}
	}
	s.flushRoom(room)
}

// remainingToTarget 沿当前模式作用方向到目标温度的剩余度数,
// 已越过目标时为非正数
func (s *Scheduler) remainingToTarget(room *Room) float64 {
	if s.mode == types.ModeCool {
		return room.CurrentTemp - room.TargetTemp
	}
	return room.TargetTemp - room.CurrentTemp
}
