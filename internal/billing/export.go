// internal/billing/export.go

package billing

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// utf8BOM Excel 识别 UTF-8 中文表头需要的字节序标记
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// simMinutes 把真实时刻换算为自模拟原点起的模拟分钟数
func (s *Service) simMinutes(t time.Time) float64 {
	return t.Sub(s.power.SimStart()).Seconds() * s.cfg.TimeScale / 60
}

// ExportDetailCSV 导出指定房间的详单表,时间轴换算为模拟分钟
func (s *Service) ExportDetailCSV(w io.Writer, roomID string) error {
	details, err := s.details.GetDetailsByRoom(roomID)
	if err != nil {
		return err
	}
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{"房间号", "会话编号", "风速", "开始(模拟分)", "结束(模拟分)",
		"时长(模拟秒)", "费率(元/模拟分)", "费用(元)", "累计费用(元)"}
	if err := cw.Write(header); err != nil {
		return err
	}
	cumulative := 0.0
	for _, d := range details {
		cumulative += d.Fee
		end := "-"
		if d.EndTime != nil {
			end = fmt.Sprintf("%.2f", s.simMinutes(*d.EndTime))
		}
		row := []string{
			d.RoomID,
			d.SessionID,
			d.FanSpeed,
			fmt.Sprintf("%.2f", s.simMinutes(d.StartTime)),
			end,
			fmt.Sprintf("%.2f", d.Duration),
			fmt.Sprintf("%.2f", d.FeeRate),
			fmt.Sprintf("%.2f", d.Fee),
			fmt.Sprintf("%.2f", cumulative),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportBillCSV 导出指定房间最近一次退房的账单
func (s *Service) ExportBillCSV(w io.Writer, roomID string) error {
	invoice, err := s.invoices.GetLatestByRoom(roomID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return fmt.Errorf("%w: %s", ErrRoomVacant, roomID)
	}
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := []string{"房间号", "顾客", "入住时间", "退房时间", "住宿天数",
		"每日房费(元)", "住宿费(元)", "空调费(元)", "总费用(元)"}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := []string{
		invoice.RoomID,
		invoice.ClientName,
		invoice.CheckinTime.Format(timeLayout),
		invoice.CheckoutTime.Format(timeLayout),
		fmt.Sprintf("%d", invoice.StayDays),
		fmt.Sprintf("%.2f", invoice.DailyRate),
		fmt.Sprintf("%.2f", invoice.AccommodationFee),
		fmt.Sprintf("%.2f", invoice.ACFee),
		fmt.Sprintf("%.2f", invoice.TotalFee),
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
