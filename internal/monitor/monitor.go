// internal/monitor/monitor.go

package monitor

import (
	"time"

	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/metrics"
	"hotelac/internal/scheduler"
)

// watchedEvents 需要计数的调度事件
var watchedEvents = []events.EventType{
	events.EventPowerOn,
	events.EventPowerOff,
	events.EventServiceStart,
	events.EventServicePreempted,
	events.EventServiceRotated,
	events.EventEnterWaitQueue,
	events.EventAutoStop,
	events.EventRedispatch,
	events.EventModeReset,
	events.EventPaused,
	events.EventResumed,
	events.EventCheckIn,
	events.EventCheckOut,
}

// Monitor 订阅调度事件换算为计数指标,并周期性采样调度器全景,
// 刷新仪表盘指标和状态日志
type Monitor struct {
	sched    *scheduler.Scheduler
	bus      *events.EventBus
	mets     *metrics.Metrics
	interval time.Duration

	subs   []events.Subscription
	stopCh chan struct{}
	doneCh chan struct{}
}

// New 创建监控服务,interval 为 0 时默认 5 秒采样一次
func New(sched *scheduler.Scheduler, bus *events.EventBus, mets *metrics.Metrics, interval time.Duration) *Monitor {
	if interval == 0 {
		interval = 5 * time.Second
	}
	return &Monitor{
		sched:    sched,
		bus:      bus,
		mets:     mets,
		interval: interval,
	}
}

// Start 订阅事件并启动采样线程,重复调用为空操作
func (m *Monitor) Start() {
	if m.stopCh != nil {
		return
	}
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	for _, t := range watchedEvents {
		m.subs = append(m.subs, m.bus.Subscribe(t, m.onEvent))
	}
	go m.run(m.stopCh, m.doneCh)
	logger.Info("监控服务启动 - 采样间隔: %v", m.interval)
}

// Stop 取消订阅并等待采样线程退出
func (m *Monitor) Stop() {
	if m.stopCh == nil {
		return
	}
	for _, sub := range m.subs {
		m.bus.Unsubscribe(sub)
	}
	m.subs = nil
	close(m.stopCh)
	<-m.doneCh
	m.stopCh = nil
	m.doneCh = nil
	logger.Info("监控服务已停止")
}

func (m *Monitor) onEvent(e events.Event) {
	m.mets.IncEvent(e.Type.Name())
	logger.Debug("调度事件 %s - 房间: %s", e.Type.Name(), e.RoomID)
}

func (m *Monitor) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample 采样一次调度器全景,刷新仪表盘指标并输出状态日志
func (m *Monitor) sample() {
	info := m.sched.QueueSnapshot()
	m.mets.SetQueueSizes(len(info.ServiceQueue), len(info.WaitQueue), len(info.Hysteresis))
	m.mets.SetPaused(info.Paused)
	for _, st := range m.sched.AllStatus() {
		m.mets.SetRoomState(st.RoomID, st.CurrentTemp, st.CurrentFee, st.TotalFee)
	}

	logger.Info("=== 调度状态报告 (模式: %s, 暂停: %v) ===", info.Mode, info.Paused)
	logger.Info("--- 服务队列 (共 %d 个房间) ---", len(info.ServiceQueue))
	for _, slot := range info.ServiceQueue {
		logger.Info("房间 %s: %.1f°C -> %.1f°C, 风速: %s, 已服务: %.1f 模拟秒, 本次费用: %.2f 元",
			slot.RoomID, slot.CurrentTemp, slot.TargetTemp, slot.FanSpeed, slot.SimDuration, slot.SessionFee)
	}
	logger.Info("--- 等待队列 (共 %d 个房间) ---", len(info.WaitQueue))
	for _, slot := range info.WaitQueue {
		logger.Info("房间 %s: 风速: %s, 优先级: %d, 已等待: %.1f 模拟秒",
			slot.RoomID, slot.FanSpeed, slot.Priority, slot.SimWait)
	}
	if len(info.Hysteresis) > 0 {
		logger.Info("--- 回温待命: %v ---", info.Hysteresis)
	}
	logger.Info("==============================")
}
