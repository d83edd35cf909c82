package billing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/events"
	"hotelac/internal/types"
)

// fakePower 记录关机调用的调度器替身
type fakePower struct {
	stopped  []string
	simStart time.Time
	stopErr  error
}

var _ PowerController = (*fakePower)(nil)

func (f *fakePower) StopPower(roomID string) error {
	f.stopped = append(f.stopped, roomID)
	return f.stopErr
}

func (f *fakePower) SimStart() time.Time { return f.simStart }

func newTestService(t *testing.T) (*Service, *fakePower) {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "billing.db"))
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

	power := &fakePower{simStart: time.Now()}
	return NewService(cfg, gdb, events.NewEventBus(), power), power
}

// addDetail 直接落一条详单,end 为 nil 表示仍在计费
func addDetail(t *testing.T, svc *Service, roomID, sessionID, fan string, start time.Time, end *time.Time, feeRate, fee, duration float64) {
	t.Helper()
	require.NoError(t, svc.details.CreateDetail(&db.DetailRecord{
		RoomID:    roomID,
		SessionID: sessionID,
		StartTime: start,
		EndTime:   end,
		FanSpeed:  fan,
		FeeRate:   feeRate,
		Fee:       fee,
		Duration:  duration,
	}))
}

func TestCheckInAndOut(t *testing.T) {
	svc, power := newTestService(t)

	require.NoError(t, svc.CheckIn("101", "", "张三", "110101199001010011"))

	room, err := svc.rooms.GetRoom("101")
	require.NoError(t, err)
	require.Equal(t, 1, room.State)
	require.Equal(t, "张三", room.ClientName)
	require.NotEmpty(t, room.ClientID)

	customer, err := svc.Customer("101")
	require.NoError(t, err)
	require.NotNil(t, customer)
	require.Equal(t, "张三", customer.Name)

	// 已入住房间不能重复入住
	require.ErrorIs(t, svc.CheckIn("101", "", "李四", ""), ErrRoomOccupied)

	// 住宿期间两个送风会话,住宿天数按会话数折算
	now := time.Now()
	addDetail(t, svc, "101", "session-1", "HIGH", now, &now, 1.0, 3.5, 210)
	addDetail(t, svc, "101", "session-2", "MEDIUM", now, &now, 0.5, 1.5, 180)

	invoice, err := svc.CheckOut("101")
	require.NoError(t, err)
	require.NotNil(t, invoice)
	require.Contains(t, power.stopped, "101")
	require.Equal(t, 2, invoice.StayDays)
	require.InDelta(t, 100.0, invoice.DailyRate, 1e-9)
	require.InDelta(t, 200.0, invoice.AccommodationFee, 1e-9)
	require.InDelta(t, 5.0, invoice.ACFee, 1e-9)
	require.InDelta(t, 205.0, invoice.TotalFee, 1e-9)
	require.Equal(t, "张三", invoice.ClientName)

	room, err = svc.rooms.GetRoom("101")
	require.NoError(t, err)
	require.Equal(t, 0, room.State)
	require.Empty(t, room.ClientName)

	customer, err = svc.Customer("101")
	require.NoError(t, err)
	require.Nil(t, customer)

	latest, err := svc.LatestInvoice("101")
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, invoice.ID, latest.ID)

	// 已退房的房间不能再次退房
	_, err = svc.CheckOut("101")
	require.ErrorIs(t, err, ErrRoomVacant)
}

func TestCheckOutWithoutACUsage(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.CheckIn("104", "c-104", "王五", ""))
	invoice, err := svc.CheckOut("104")
	require.NoError(t, err)

	// 没用过空调也至少按一天收住宿费
	require.Equal(t, 1, invoice.StayDays)
	require.InDelta(t, 200.0, invoice.AccommodationFee, 1e-9)
	require.Zero(t, invoice.ACFee)
	require.InDelta(t, 200.0, invoice.TotalFee, 1e-9)
}

func TestCheckOutToleratesStopPowerFailure(t *testing.T) {
	svc, power := newTestService(t)
	power.stopErr = errors.New("scheduler unavailable")

	require.NoError(t, svc.CheckIn("103", "c-103", "赵六", ""))
	invoice, err := svc.CheckOut("103")
	require.NoError(t, err)
	require.NotNil(t, invoice)
	require.Contains(t, power.stopped, "103")
}

func TestCheckInUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t)
	require.ErrorIs(t, svc.CheckIn("999", "", "无名", ""), db.ErrRoomNotFound)
}

func TestLatestInvoiceEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	invoice, err := svc.LatestInvoice("105")
	require.NoError(t, err)
	require.Nil(t, invoice)
}

func TestExportDetailCSV(t *testing.T) {
	svc, power := newTestService(t)
	power.simStart = time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)

	// 真实 100 秒 = 模拟 10 分钟(时间倍率 6)
	start1 := power.simStart.Add(100 * time.Second)
	end1 := power.simStart.Add(200 * time.Second)
	addDetail(t, svc, "102", "sess-1", "HIGH", start1, &end1, 1.0, 1.0, 600)
	addDetail(t, svc, "102", "sess-2", "MEDIUM", power.simStart.Add(300*time.Second), nil, 0.5, 0.5, 120)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportDetailCSV(&buf, "102"))
	require.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "房间号", rows[0][0])
	require.Equal(t, []string{"102", "sess-1", "HIGH", "10.00", "20.00", "600.00", "1.00", "1.00", "1.00"}, rows[1])

	// 未结束的详单没有结束时间,累计费用继续累加
	require.Equal(t, "-", rows[2][4])
	require.Equal(t, "30.00", rows[2][3])
	require.Equal(t, "1.50", rows[2][8])
}

func TestExportBillCSV(t *testing.T) {
	svc, _ := newTestService(t)

	// 没有账单时导出失败
	var buf bytes.Buffer
	require.ErrorIs(t, svc.ExportBillCSV(&buf, "101"), ErrRoomVacant)

	require.NoError(t, svc.CheckIn("101", "c-101", "张三", ""))
	now := time.Now()
	addDetail(t, svc, "101", "sess-1", "HIGH", now, &now, 1.0, 4.5, 270)
	invoice, err := svc.CheckOut("101")
	require.NoError(t, err)
	require.NotNil(t, invoice)

	buf.Reset()
	require.NoError(t, svc.ExportBillCSV(&buf, "101"))
	require.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "101", rows[1][0])
	require.Equal(t, "张三", rows[1][1])
	require.Equal(t, "1", rows[1][4])
	require.Equal(t, "100.00", rows[1][5])
	require.Equal(t, "100.00", rows[1][6])
	require.Equal(t, "4.50", rows[1][7])
	require.Equal(t, "104.50", rows[1][8])
}

func TestReport(t *testing.T) {
	svc, _ := newTestService(t)

	now := time.Now()
	// 101: 同一会话内换过一次风速,开始时间相同时按主键次序稳定排序
	addDetail(t, svc, "101", "sess-1", "HIGH", now, &now, 1.0, 1.0, 60)
	addDetail(t, svc, "101", "sess-1", "MEDIUM", now, &now, 0.5, 0.5, 60)
	// 103: 单会话单详单
	addDetail(t, svc, "103", "sess-2", "LOW", now, &now, 1.0/3.0, 0.2, 36)

	report, err := svc.Report("daily")
	require.NoError(t, err)
	require.Len(t, report, 2)

	require.Equal(t, "101", report[0].RoomID)
	require.Equal(t, 1, report[0].Sessions)
	require.Equal(t, 2, report[0].Records)
	require.Equal(t, 1, report[0].FanChanges)
	require.InDelta(t, 120.0, report[0].DurationSim, 1e-9)
	require.InDelta(t, 1.5, report[0].TotalFee, 1e-9)

	require.Equal(t, "103", report[1].RoomID)
	require.Equal(t, 1, report[1].Sessions)
	require.Zero(t, report[1].FanChanges)

	// 周报表覆盖今天,空周期名等同日报表
	weekly, err := svc.Report("weekly")
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	daily, err := svc.Report("")
	require.NoError(t, err)
	require.Len(t, daily, 2)

	_, err = svc.Report("hourly")
	require.ErrorIs(t, err, ErrInvalidPeriod)
}
