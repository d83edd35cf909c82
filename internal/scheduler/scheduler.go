package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotelac/internal/config"
	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/metrics"
	"hotelac/internal/types"
)

const (
	// 判定达到目标温度的容差
	epsilonTemp = 0.001
	// 回温超过多少度后重新请求送风
	restartDrift = 1.0
)

// Scheduler 中央空调调度器:优先级 + 时间片调度,服务队列容量受限,
// 达温自动停送风并在回温超过阈值后重新调度。
// 进程内长生命周期单例,所有状态由一把互斥锁保护,
// 指令线程和模拟步进线程在锁上串行。
type Scheduler struct {
	mu sync.Mutex

	cfg   *config.Config
	store Store
	bus   *events.EventBus
	mets  *metrics.Metrics

	rooms   map[string]*Room
	roomIDs []string // 升序,逐房间推进的固定顺序

	serviceQueue []string
	waitQueue    []string
	serviceStart map[string]time.Time
	waitStart    map[string]time.Time
	hysteresis   map[string]struct{} // 达温待命的房间

	mode     types.Mode
	paused   bool
	lastTick time.Time
	simStart time.Time // 模拟时间原点,详单导出换算用

	now func() time.Time // 可注入时钟,测试用

	stopCh chan struct{}
	doneCh chan struct{}
}

// New 从配置构建调度器,所有房间初始关机、温度为模式基线
func New(cfg *config.Config, store Store, bus *events.EventBus, mets *metrics.Metrics) (*Scheduler, error) {
	profile, ok := cfg.Modes[cfg.DefaultMode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMode, cfg.DefaultMode)
	}
	s := &Scheduler{
		cfg:          cfg,
		store:        store,
		bus:          bus,
		mets:         mets,
		rooms:        make(map[string]*Room, len(cfg.Rooms)),
		roomIDs:      make([]string, 0, len(cfg.Rooms)),
		serviceStart: make(map[string]time.Time),
		waitStart:    make(map[string]time.Time),
		hysteresis:   make(map[string]struct{}),
		mode:         cfg.DefaultMode,
		now:          time.Now,
	}
	for _, seed := range cfg.Rooms {
		initial := profile.InitialTemps[seed.ID]
		s.rooms[seed.ID] = &Room{
			ID:          seed.ID,
			CurrentTemp: initial,
			TargetTemp:  profile.DefaultTarget,
			InitialTemp: initial,
			Fan:         cfg.DefaultFan,
			Power:       types.PowerOff,
			DailyRate:   seed.DailyRate,
		}
		s.roomIDs = append(s.roomIDs, seed.ID)
	}
	sort.Strings(s.roomIDs)
	start := s.now()
	s.simStart = start
	s.lastTick = start
	return s, nil
}

// ResyncStore 进程启动时结清遗留的未关闭详单,并把初始状态写回存储
func (s *Scheduler) ResyncStore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.CloseDanglingRecords(s.now()); err != nil {
		return err
	}
	for _, id := range s.roomIDs {
		if err := s.store.SaveRoom(s.rooms[id]); err != nil {
			return err
		}
	}
	return nil
}

// RequestPower 统一的开机/调参入口:开机、调温、调风速都走这里。
// 与当前状态完全一致的重复请求是空操作。
func (s *Scheduler) RequestPower(roomID string, fan types.FanSpeed, targetTemp float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if _, ok := s.cfg.Fans[fan]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidFanSpeed, fan)
	}
	profile := s.cfg.Modes[s.mode]
	if targetTemp < profile.MinTarget || targetTemp > profile.MaxTarget {
		return fmt.Errorf("%w: %.1f 不在 [%.1f, %.1f] 内",
			ErrInvalidTargetTemp, targetTemp, profile.MinTarget, profile.MaxTarget)
	}

	if room.Power == types.PowerOn && room.Fan == fan && room.TargetTemp == targetTemp {
		return nil
	}

	now := s.now()
	if room.Power == types.PowerOff || room.SessionID == "" {
		room.SessionID = uuid.New().String()
		s.publish(events.EventPowerOn, room, "")
		logger.Info("房间 %s 开机 - 会话: %s", roomID, room.SessionID)
	}
	s.closeRecord(room, now)
	room.Fan = fan
	room.TargetTemp = targetTemp
	room.Power = types.PowerOn
	delete(s.hysteresis, roomID)

	storageErr := s.flushRoom(room)

	if !s.needsService(room) {
		// 当前温度已满足目标,开机但不送风
		if s.inService(roomID) {
			s.removeFromService(roomID)
			s.hysteresis[roomID] = struct{}{}
			s.scheduleNext(now)
		} else {
			s.removeFromWait(roomID)
			s.hysteresis[roomID] = struct{}{}
		}
		logger.Info("房间 %s 已在目标温度,暂不送风", roomID)
		return wrapStorage(storageErr)
	}

	switch {
	case s.inService(roomID):
		// 服务中调参:原地重开详单,优先级提升交给下一个 tick 的动态抢占
		s.openRecord(room, now)
	case s.inWait(roomID):
		// 等待中调参:保留排队位置
	default:
		s.dispatch(room, now)
	}
	return wrapStorage(storageErr)
}

// StopPower 关机:出队、结单、清空会话和本次费用,并为空出的槽位补位。
// 已关机时为空操作。
func (s *Scheduler) StopPower(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if room.Power == types.PowerOff {
		return nil
	}
	now := s.now()
	s.closeRecord(room, now)
	wasServing := s.inService(roomID)
	s.removeFromService(roomID)
	s.removeFromWait(roomID)
	delete(s.hysteresis, roomID)
	room.Power = types.PowerOff
	room.SessionID = ""
	room.CurrentFee = 0
	storageErr := s.flushRoom(room)
	s.publish(events.EventPowerOff, room, "")
	logger.Info("房间 %s 关机", roomID)
	if wasServing {
		s.scheduleNext(now)
	}
	return wrapStorage(storageErr)
}

// SetMode 切换工作模式:暂停模拟,清空队列、详单和账单,重写各房间的
// 基线温度并全部关机。显式 Resume 之前保持暂停。
func (s *Scheduler) SetMode(mode types.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.cfg.Modes[mode]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
	now := s.now()
	s.paused = true
	s.mode = mode
	s.serviceQueue = nil
	s.waitQueue = nil
	s.serviceStart = make(map[string]time.Time)
	s.waitStart = make(map[string]time.Time)
	s.hysteresis = make(map[string]struct{})

	rooms := make([]*Room, 0, len(s.roomIDs))
	for _, id := range s.roomIDs {
		room := s.rooms[id]
		room.openRecord = nil // 详单整表清空,无需逐一结单
		room.Power = types.PowerOff
		room.SessionID = ""
		room.Fan = s.cfg.DefaultFan
		room.TargetTemp = profile.DefaultTarget
		room.InitialTemp = profile.InitialTemps[id]
		room.CurrentTemp = room.InitialTemp
		room.CurrentFee = 0
		room.TotalFee = 0
		rooms = append(rooms, room)
	}
	s.simStart = now
	s.lastTick = now

	storageErr := s.store.Reset(mode, rooms)
	if storageErr != nil {
		s.reportStorageError("", storageErr)
	}
	s.bus.Publish(events.Event{Type: events.EventModeReset, Timestamp: now, Data: string(mode)})
	logger.Info("工作模式切换为 %s,模拟已暂停,等待恢复指令", mode)
	return wrapStorage(storageErr)
}

// Pause 暂停模拟,温度与费用停止推进
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return
	}
	s.paused = true
	s.bus.Publish(events.Event{Type: events.EventPaused, Timestamp: s.now()})
	logger.Info("模拟暂停")
}

// Resume 恢复模拟,暂停区间不产生温度变化和费用
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	s.lastTick = s.now()
	s.bus.Publish(events.Event{Type: events.EventResumed, Timestamp: s.lastTick})
	logger.Info("模拟恢复")
}

// Status 返回单个房间的面板快照
func (s *Scheduler) Status(roomID string) (RoomStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return RoomStatus{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return s.statusLocked(room), nil
}

// AllStatus 按房间号升序返回全部房间快照
func (s *Scheduler) AllStatus() []RoomStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RoomStatus, 0, len(s.roomIDs))
	for _, id := range s.roomIDs {
		out = append(out, s.statusLocked(s.rooms[id]))
	}
	return out
}

// QueueSnapshot 管理端监控用的调度全景
func (s *Scheduler) QueueSnapshot() QueueInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	info := QueueInfo{
		Mode:         s.mode,
		Paused:       s.paused,
		ServiceQueue: make([]ServiceSlot, 0, len(s.serviceQueue)),
		WaitQueue:    make([]WaitSlot, 0, len(s.waitQueue)),
		Hysteresis:   make([]string, 0, len(s.hysteresis)),
	}
	for _, id := range s.serviceQueue {
		room := s.rooms[id]
		info.ServiceQueue = append(info.ServiceQueue, ServiceSlot{
			RoomID:      id,
			FanSpeed:    room.Fan,
			Priority:    s.priority(room.Fan),
			CurrentTemp: room.CurrentTemp,
			TargetTemp:  room.TargetTemp,
			SimDuration: now.Sub(s.serviceStart[id]).Seconds() * s.cfg.TimeScale,
			SessionFee:  room.CurrentFee,
		})
	}
	for _, id := range s.waitQueue {
		room := s.rooms[id]
		info.WaitQueue = append(info.WaitQueue, WaitSlot{
			RoomID:   id,
			FanSpeed: room.Fan,
			Priority: s.priority(room.Fan),
			SimWait:  now.Sub(s.waitStart[id]).Seconds() * s.cfg.TimeScale,
		})
	}
	for _, id := range s.roomIDs {
		if _, ok := s.hysteresis[id]; ok {
			info.Hysteresis = append(info.Hysteresis, id)
		}
	}
	return info
}

// Mode 当前工作模式
func (s *Scheduler) Mode() types.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SimStart 模拟时间原点
func (s *Scheduler) SimStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.simStart
}

/*-------------以下方法均要求调用方已持有锁-------------*/

// dispatch 放置决策:有空位直接服务,否则按严格优先级抢占,再不然排队
func (s *Scheduler) dispatch(room *Room, now time.Time) {
	if len(s.serviceQueue) < s.cfg.MaxServices {
		s.addToServiceQueue(room, now)
		return
	}
	victimID, pMin := s.selectVictim(now)
	if victimID != "" && s.priority(room.Fan) > pMin {
		s.moveToWaitQueue(s.rooms[victimID], now, events.EventServicePreempted, "被高优先级请求抢占")
		s.addToServiceQueue(room, now)
		logger.Info("优先级抢占 - 房间 %s 换出, 房间 %s 换入", victimID, room.ID)
		return
	}
	s.addToWaitQueue(room, now)
}

// scheduleNext 服务槽位空出后从等待队列补位:优先级最高者先行,
// 平局按等待开始时间先来先服务。等待期间已达标的房间转入回温待命。
func (s *Scheduler) scheduleNext(now time.Time) {
	for len(s.serviceQueue) < s.cfg.MaxServices {
		kept := s.waitQueue[:0]
		for _, id := range s.waitQueue {
			if s.needsService(s.rooms[id]) {
				kept = append(kept, id)
				continue
			}
			delete(s.waitStart, id)
			s.hysteresis[id] = struct{}{}
			logger.Info("房间 %s 等待期间已达目标温度,转入回温待命", id)
		}
		s.waitQueue = kept

		var best *Room
		for _, id := range s.waitQueue {
			room := s.rooms[id]
			if best == nil {
				best = room
				continue
			}
			pb, pr := s.priority(best.Fan), s.priority(room.Fan)
			if pr > pb || (pr == pb && s.waitStart[id].Before(s.waitStart[best.ID])) {
				best = room
			}
		}
		if best == nil {
			return
		}
		s.removeFromWait(best.ID)
		s.addToServiceQueue(best, now)
	}
}

// needsService 迟滞感知的温度判定,纯谓词不修改任何状态
func (s *Scheduler) needsService(room *Room) bool {
	if _, idle := s.hysteresis[room.ID]; idle {
		return s.remainingToTarget(room) >= restartDrift
	}
	return s.remainingToTarget(room) > epsilonTemp
}

// selectVictim 在最低优先级的在服房间中选服务时长最大者
func (s *Scheduler) selectVictim(now time.Time) (string, int) {
	if len(s.serviceQueue) == 0 {
		return "", 0
	}
	pMin := 0
	for _, id := range s.serviceQueue {
		p := s.priority(s.rooms[id].Fan)
		if pMin == 0 || p < pMin {
			pMin = p
		}
	}
	return s.longestServedAtPriority(pMin, now), pMin
}

// longestServedAtPriority 指定优先级的在服房间中服务时长最大者,
// 平局按队列顺序取靠前者,无匹配返回空串
func (s *Scheduler) longestServedAtPriority(p int, now time.Time) string {
	victimID := ""
	longest := time.Duration(-1)
	for _, id := range s.serviceQueue {
		if s.priority(s.rooms[id].Fan) != p {
			continue
		}
		elapsed := now.Sub(s.serviceStart[id])
		if elapsed > longest {
			longest = elapsed
			victimID = id
		}
	}
	return victimID
}

// addToServiceQueue 入服务队列并开单
func (s *Scheduler) addToServiceQueue(room *Room, now time.Time) {
	s.serviceQueue = append(s.serviceQueue, room.ID)
	s.serviceStart[room.ID] = now
	s.openRecord(room, now)
	s.publish(events.EventServiceStart, room, "")
	logger.Info("房间 %s 进入服务队列 - 风速: %s, 当前: %.2f°C, 目标: %.2f°C",
		room.ID, room.Fan, room.CurrentTemp, room.TargetTemp)
}

// addToWaitQueue 入等待队列
func (s *Scheduler) addToWaitQueue(room *Room, now time.Time) {
	s.waitQueue = append(s.waitQueue, room.ID)
	s.waitStart[room.ID] = now
	s.publish(events.EventEnterWaitQueue, room, "")
	logger.Info("房间 %s 进入等待队列 - 风速: %s", room.ID, room.Fan)
}

// moveToWaitQueue 把在服房间换出到等待队列尾部并结清其详单
func (s *Scheduler) moveToWaitQueue(victim *Room, now time.Time, evt events.EventType, reason string) {
	s.closeRecord(victim, now)
	s.removeFromService(victim.ID)
	s.waitQueue = append(s.waitQueue, victim.ID)
	s.waitStart[victim.ID] = now
	s.publish(evt, victim, reason)
}

func (s *Scheduler) inService(roomID string) bool {
	for _, id := range s.serviceQueue {
		if id == roomID {
			return true
		}
	}
	return false
}

func (s *Scheduler) inWait(roomID string) bool {
	for _, id := range s.waitQueue {
		if id == roomID {
			return true
		}
	}
	return false
}

func (s *Scheduler) removeFromService(roomID string) {
	for i, id := range s.serviceQueue {
		if id == roomID {
			s.serviceQueue = append(s.serviceQueue[:i], s.serviceQueue[i+1:]...)
			break
		}
	}
	delete(s.serviceStart, roomID)
}

func (s *Scheduler) removeFromWait(roomID string) {
	for i, id := range s.waitQueue {
		if id == roomID {
			s.waitQueue = append(s.waitQueue[:i], s.waitQueue[i+1:]...)
			break
		}
	}
	delete(s.waitStart, roomID)
}

func (s *Scheduler) statusLocked(room *Room) RoomStatus {
	return RoomStatus{
		RoomID:      room.ID,
		SchedState:  s.schedState(room),
		CurrentTemp: room.CurrentTemp,
		TargetTemp:  room.TargetTemp,
		FanSpeed:    room.Fan,
		Power:       room.Power,
		Mode:        s.mode,
		CurrentFee:  room.CurrentFee,
		TotalFee:    room.TotalFee,
	}
}

// schedState 由电源状态和队列成员关系推导
func (s *Scheduler) schedState(room *Room) types.SchedState {
	switch {
	case room.Power == types.PowerOff:
		return types.StateOff
	case s.inService(room.ID):
		if s.paused {
			return types.StateReady
		}
		return types.StateRunning
	case s.inWait(room.ID):
		return types.StateWaiting
	default:
		return types.StateIdle
	}
}

func (s *Scheduler) priority(fan types.FanSpeed) int {
	return s.cfg.Fans[fan].Priority
}

func (s *Scheduler) publish(t events.EventType, room *Room, reason string) {
	s.bus.Publish(events.Event{
		Type:      t,
		RoomID:    room.ID,
		Timestamp: s.now(),
		Data: events.ServiceEventData{
			RoomID:      room.ID,
			FanSpeed:    string(room.Fan),
			Priority:    s.priority(room.Fan),
			CurrentTemp: room.CurrentTemp,
			TargetTemp:  room.TargetTemp,
			Reason:      reason,
		},
	})
}

func (s *Scheduler) reportStorageError(roomID string, err error) {
	s.mets.IncStorageError()
	s.bus.Publish(events.Event{
		Type:      events.EventStorageError,
		RoomID:    roomID,
		Timestamp: s.now(),
		Data:      err.Error(),
	})
	logger.Error("存储写入失败 - 房间: %s, 错误: %v", roomID, err)
}

func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
