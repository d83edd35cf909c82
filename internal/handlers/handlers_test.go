package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"hotelac/api"
	"hotelac/internal/ac"
	"hotelac/internal/billing"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/events"
	"hotelac/internal/handlers"
	"hotelac/internal/metrics"
	"hotelac/internal/scheduler"
	"hotelac/internal/types"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
	Err  string          `json:"err"`
}

// newTestRouter 组装不启动步进线程的完整接口栈
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	cfg := config.Default()
	profile := cfg.Modes[cfg.DefaultMode]
	rooms := make([]db.RoomInfo, 0, len(cfg.Rooms))
	for _, seed := range cfg.Rooms {
		rooms = append(rooms, db.RoomInfo{
			RoomID:      seed.ID,
			CurrentTemp: profile.InitialTemps[seed.ID],
			TargetTemp:  profile.DefaultTarget,
			InitialTemp: profile.InitialTemps[seed.ID],
			FanSpeed:    string(cfg.DefaultFan),
			Power:       string(types.PowerOff),
			Mode:        string(cfg.DefaultMode),
			DailyRate:   seed.DailyRate,
		})
	}
	require.NoError(t, db.EnsureRooms(gdb, rooms))

	bus := events.NewEventBus()
	mets := metrics.New()
	sched, err := scheduler.New(cfg, scheduler.NewDBStore(gdb), bus, mets)
	require.NoError(t, err)
	require.NoError(t, sched.ResyncStore())

	acSvc := ac.NewService(cfg, sched)
	billSvc := billing.NewService(cfg, gdb, bus, sched)
	return api.SetupRouter(
		handlers.NewPanelHandler(acSvc),
		handlers.NewAdminHandler(acSvc, billSvc),
		handlers.NewFrontHandler(cfg, billSvc),
		mets,
	)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPanelPowerFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/panel/powerOn",
		gin.H{"roomId": "101", "fanSpeed": "HIGH", "targetTemp": 24})
	require.Equal(t, http.StatusOK, w.Code)

	var status scheduler.RoomStatus
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.Equal(t, types.PowerOn, status.Power)
	require.Equal(t, types.StateRunning, status.SchedState)
	require.Equal(t, types.FanHigh, status.FanSpeed)
	require.InDelta(t, 24.0, status.TargetTemp, 1e-9)

	w = doJSON(t, router, http.MethodGet, "/panel/status/101", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.Equal(t, types.StateRunning, status.SchedState)

	w = doJSON(t, router, http.MethodGet, "/panel/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []scheduler.RoomStatus
	env = decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 5)

	w = doJSON(t, router, http.MethodPost, "/panel/powerOff", gin.H{"roomId": "101"})
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.Equal(t, types.PowerOff, status.Power)
	require.Equal(t, types.StateOff, status.SchedState)
}

func TestPanelPowerOnDefaults(t *testing.T) {
	router := newTestRouter(t)

	// 不带参数开机时使用缺省风速和当前模式的缺省目标温度
	w := doJSON(t, router, http.MethodPost, "/panel/powerOn", gin.H{"roomId": "103"})
	require.Equal(t, http.StatusOK, w.Code)

	var status scheduler.RoomStatus
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.Equal(t, types.FanMedium, status.FanSpeed)
	require.InDelta(t, 25.0, status.TargetTemp, 1e-9)
}

func TestPanelValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/panel/powerOn", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/panel/powerOn", gin.H{"roomId": "999"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/panel/powerOn",
		gin.H{"roomId": "101", "fanSpeed": "TURBO"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/panel/powerOn",
		gin.H{"roomId": "101", "targetTemp": 50})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotEmpty(t, decode(t, w).Err)

	w = doJSON(t, router, http.MethodGet, "/panel/status/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangeStatePowersOnIdleRoom(t *testing.T) {
	router := newTestRouter(t)

	// 对关机房间调风速按统一送风请求处理,连带开机
	w := doJSON(t, router, http.MethodPost, "/panel/changeState",
		gin.H{"roomId": "102", "fanSpeed": "HIGH"})
	require.Equal(t, http.StatusOK, w.Code)

	var status scheduler.RoomStatus
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.Equal(t, types.PowerOn, status.Power)
	require.Equal(t, types.FanHigh, status.FanSpeed)
	require.InDelta(t, 25.0, status.TargetTemp, 1e-9)
}

func TestAdminModeAndPause(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/admin/setMode", gin.H{"mode": "HEAT"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/admin/queueInfo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info scheduler.QueueInfo
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &info))
	require.True(t, info.Paused)
	require.Equal(t, types.ModeHeat, info.Mode)
	require.Empty(t, info.ServiceQueue)

	w = doJSON(t, router, http.MethodPost, "/admin/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, doJSON(t, router, http.MethodGet, "/admin/queueInfo", nil))
	require.NoError(t, json.Unmarshal(env.Data, &info))
	require.False(t, info.Paused)

	w = doJSON(t, router, http.MethodPost, "/admin/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env = decode(t, doJSON(t, router, http.MethodGet, "/admin/queueInfo", nil))
	require.NoError(t, json.Unmarshal(env.Data, &info))
	require.True(t, info.Paused)

	w = doJSON(t, router, http.MethodPost, "/admin/setMode", gin.H{"mode": "DRY"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/admin/setMode", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminReport(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/admin/report", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/admin/report?period=weekly", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/admin/report?period=hourly", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFrontDeskFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/front/checkIn",
		gin.H{"roomId": "101", "name": "张三", "idNumber": "110101199001010011"})
	require.Equal(t, http.StatusOK, w.Code)

	// 重复入住与未知房间
	w = doJSON(t, router, http.MethodPost, "/front/checkIn", gin.H{"roomId": "101", "name": "李四"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, router, http.MethodPost, "/front/checkIn", gin.H{"roomId": "999", "name": "王五"})
	require.Equal(t, http.StatusNotFound, w.Code)

	// 入住期间还没有账单
	w = doJSON(t, router, http.MethodGet, "/front/bill/101", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// 用一次空调产生详单
	w = doJSON(t, router, http.MethodPost, "/panel/powerOn", gin.H{"roomId": "101", "fanSpeed": "HIGH"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/front/details/101", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details []db.DetailRecord
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &details))
	require.Len(t, details, 1)
	require.Equal(t, "HIGH", details[0].FanSpeed)

	// 退房生成账单并关停空调
	w = doJSON(t, router, http.MethodPost, "/front/checkOut", gin.H{"roomId": "101"})
	require.Equal(t, http.StatusOK, w.Code)
	var invoice db.Invoice
	env = decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &invoice))
	require.Equal(t, 1, invoice.StayDays)
	require.InDelta(t, 100.0, invoice.AccommodationFee, 1e-9)
	require.InDelta(t, 100.0, invoice.TotalFee, 1e-6)

	var status scheduler.RoomStatus
	env = decode(t, doJSON(t, router, http.MethodGet, "/panel/status/101", nil))
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.Equal(t, types.PowerOff, status.Power)

	w = doJSON(t, router, http.MethodGet, "/front/bill/101", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 已退房的房间不能再次退房
	w = doJSON(t, router, http.MethodPost, "/front/checkOut", gin.H{"roomId": "101"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFrontExports(t *testing.T) {
	router := newTestRouter(t)

	// 没有账单时导出失败
	w := doJSON(t, router, http.MethodGet, "/front/exportBill/101", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, router, http.MethodGet, "/front/exportBill/101/pdf", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	doJSON(t, router, http.MethodPost, "/front/checkIn", gin.H{"roomId": "101", "name": "张三"})
	doJSON(t, router, http.MethodPost, "/front/checkOut", gin.H{"roomId": "101"})

	w = doJSON(t, router, http.MethodGet, "/front/exportBill/101", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), `filename="bill_101.csv"`)
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))

	w = doJSON(t, router, http.MethodGet, "/front/exportDetail/101", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	require.Contains(t, w.Header().Get("Content-Disposition"), `filename="detail_101.csv"`)

	// 房态一览
	w = doJSON(t, router, http.MethodGet, "/front/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []db.RoomInfo
	env := decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &rooms))
	require.Len(t, rooms, 5)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")

	w = doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "hotel_ac_service_queue_size")
}
