// internal/app/app.go

package app

import (
	"context"
	"time"

	"hotelac/api"
	"hotelac/internal/ac"
	"hotelac/internal/billing"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/events"
	"hotelac/internal/handlers"
	"hotelac/internal/logger"
	"hotelac/internal/metrics"
	"hotelac/internal/monitor"
	"hotelac/internal/scheduler"
	"hotelac/internal/types"
	"hotelac/server"
)

// App 组装各组件并管理其生命周期
type App struct {
	cfg   *config.Config
	bus   *events.EventBus
	mets  *metrics.Metrics
	sched *scheduler.Scheduler
	mon   *monitor.Monitor
	srv   *server.Server
}

func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Initialize 按依赖顺序构建组件:存储、事件总线、调度器、业务服务和路由
func (a *App) Initialize() error {
	logger.SetLevel(logger.ParseLevel(a.cfg.LogLevel))

	if err := db.Init(a.cfg.DBPath); err != nil {
		return err
	}
	if err := db.EnsureRooms(db.GetDB(), seedRooms(a.cfg)); err != nil {
		return err
	}

	a.bus = events.NewEventBus()
	a.mets = metrics.New()

	store := scheduler.NewDBStore(db.GetDB())
	sched, err := scheduler.New(a.cfg, store, a.bus, a.mets)
	if err != nil {
		return err
	}
	a.sched = sched
	if err := a.sched.ResyncStore(); err != nil {
		return err
	}

	acSvc := ac.NewService(a.cfg, a.sched)
	billSvc := billing.NewService(a.cfg, db.GetDB(), a.bus, a.sched)
	a.mon = monitor.New(a.sched, a.bus, a.mets, a.cfg.MonitorInterval())

	router := api.SetupRouter(
		handlers.NewPanelHandler(acSvc),
		handlers.NewAdminHandler(acSvc, billSvc),
		handlers.NewFrontHandler(a.cfg, billSvc),
		a.mets,
	)
	a.srv = server.New(router)
	return nil
}

// Start 启动调度器、监控和 HTTP 服务,HTTP 监听在独立线程上
func (a *App) Start() error {
	a.sched.Start()
	a.mon.Start()

	go func() {
		if err := a.srv.Start(a.cfg.Host, a.cfg.Port); err != nil {
			logger.Error("HTTP 服务异常退出: %v", err)
		}
	}()

	a.bus.Publish(events.Event{Type: events.EventSystemStartup, Timestamp: time.Now()})
	logger.Info("系统启动完成 - 监听 %s:%d", a.cfg.Host, a.cfg.Port)
	return nil
}

// Stop 按启动的逆序停机:先停外部流量,再停监控和调度
func (a *App) Stop(ctx context.Context) error {
	a.bus.Publish(events.Event{Type: events.EventSystemShutdown, Timestamp: time.Now()})

	err := a.srv.Stop(ctx)
	a.mon.Stop()
	a.sched.Stop()
	logger.Info("系统已停机")
	return err
}

// seedRooms 首次启动写入数据库的房间基础数据
func seedRooms(cfg *config.Config) []db.RoomInfo {
	profile := cfg.Modes[cfg.DefaultMode]
	rooms := make([]db.RoomInfo, 0, len(cfg.Rooms))
	for _, seed := range cfg.Rooms {
		initial := profile.InitialTemps[seed.ID]
		rooms = append(rooms, db.RoomInfo{
			RoomID:      seed.ID,
			CurrentTemp: initial,
			TargetTemp:  profile.DefaultTarget,
			InitialTemp: initial,
			FanSpeed:    string(cfg.DefaultFan),
			Power:       string(types.PowerOff),
			Mode:        string(cfg.DefaultMode),
			DailyRate:   seed.DailyRate,
		})
	}
	return rooms
}
