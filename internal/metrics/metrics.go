package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotel_ac"

// Metrics 聚合调度器与业务层的 prometheus 指标
type Metrics struct {
	registry *prometheus.Registry

	// Counters
	schedulerEvents *prometheus.CounterVec
	storageErrors   prometheus.Counter

	// Histograms
	tickDuration prometheus.Histogram

	// Gauges
	serviceQueueSize prometheus.Gauge
	waitQueueSize    prometheus.Gauge
	hysteresisSize   prometheus.Gauge
	paused           prometheus.Gauge
	roomTemperature  *prometheus.GaugeVec
	roomSessionFee   *prometheus.GaugeVec
	roomTotalFee     *prometheus.GaugeVec
}

// New 创建独立注册表的指标集
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,

		schedulerEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_events_total",
				Help:      "Scheduler state transitions by event type",
			},
			[]string{"type"},
		),

		storageErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Persistent store write failures",
			},
		),

		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Duration of one simulation tick",
				Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
		),

		serviceQueueSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_queue_size",
				Help:      "Rooms currently being served",
			},
		),

		waitQueueSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "wait_queue_size",
				Help:      "Rooms waiting for a service slot",
			},
		),

		hysteresisSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "hysteresis_size",
				Help:      "Rooms powered on but idle at target temperature",
			},
		),

		paused: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "simulation_paused",
				Help:      "Whether the simulation is paused (1) or running (0)",
			},
		),

		roomTemperature: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "room_temperature_celsius",
				Help:      "Current room temperature",
			},
			[]string{"room"},
		),

		roomSessionFee: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "room_session_fee",
				Help:      "Accumulated fee of the current power-on session",
			},
			[]string{"room"},
		),

		roomTotalFee: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "room_total_fee",
				Help:      "Accumulated fee across sessions since the last mode reset",
			},
			[]string{"room"},
		),
	}

	registry.MustRegister(
		m.schedulerEvents,
		m.storageErrors,
		m.tickDuration,
		m.serviceQueueSize,
		m.waitQueueSize,
		m.hysteresisSize,
		m.paused,
		m.roomTemperature,
		m.roomSessionFee,
		m.roomTotalFee,
	)
	return m
}

// IncEvent 按事件类型累加调度事件计数
func (m *Metrics) IncEvent(eventName string) {
	m.schedulerEvents.WithLabelValues(eventName).Inc()
}

// IncStorageError 累加存储写入失败次数
func (m *Metrics) IncStorageError() {
	m.storageErrors.Inc()
}

// ObserveTick 记录一次模拟步进耗时,单位秒
func (m *Metrics) ObserveTick(seconds float64) {
	m.tickDuration.Observe(seconds)
}

// SetQueueSizes 刷新三个队列规模
func (m *Metrics) SetQueueSizes(service, wait, hysteresis int) {
	m.serviceQueueSize.Set(float64(service))
	m.waitQueueSize.Set(float64(wait))
	m.hysteresisSize.Set(float64(hysteresis))
}

// SetPaused 刷新暂停标志
func (m *Metrics) SetPaused(paused bool) {
	if paused {
		m.paused.Set(1)
	} else {
		m.paused.Set(0)
	}
}

// SetRoomState 刷新单个房间的温度与费用
func (m *Metrics) SetRoomState(roomID string, temp, sessionFee, totalFee float64) {
	m.roomTemperature.WithLabelValues(roomID).Set(temp)
	m.roomSessionFee.WithLabelValues(roomID).Set(sessionFee)
	m.roomTotalFee.WithLabelValues(roomID).Set(totalFee)
}

// Handler 返回指标抓取端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
