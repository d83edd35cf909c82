// internal/utils/pdf_generator.go

package utils

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hotelac/internal/db"
)

// GenerateDetailPDF 生成空调使用详单,时间轴为模拟分钟
func GenerateDetailPDF(roomID, clientName string, details []db.DetailRecord,
	simStart time.Time, timeScale float64) (*gofpdf.Fpdf, error) {
	// 横向A4纸,详单列较多
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// 添加中文字体
	pdf.AddUTF8Font("chinese", "", "./SimHei.ttf")

	pdf.SetFont("chinese", "", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(280, 15, "空调使用详单")
	pdf.Ln(20)

	pdf.Line(10, pdf.GetY(), 280, pdf.GetY())
	pdf.Ln(5)

	pdf.SetFont("chinese", "", 11)
	pdf.Cell(20, 8, "房间号:")
	pdf.SetTextColor(0, 102, 204)
	pdf.Cell(30, 8, roomID)
	pdf.SetTextColor(0, 0, 0)
	pdf.Cell(25, 8, "客户姓名:")
	pdf.Cell(60, 8, clientName)
	pdf.Cell(25, 8, "导出时间:")
	pdf.Cell(120, 8, time.Now().Format("2006-01-02 15:04:05"))
	pdf.Ln(10)

	pdf.Ln(5)
	pdf.Line(10, pdf.GetY(), 280, pdf.GetY())
	pdf.Ln(5)

	total := drawDetailTable(pdf, details, simStart, timeScale)

	pdf.Ln(5)
	pdf.SetFont("chinese", "", 12)
	pdf.SetTextColor(0, 102, 204)
	pdf.Cell(220, 10, "空调费合计:")
	pdf.Cell(40, 10, fmt.Sprintf("%.2f元", total))

	footerHeight := 15.0
	bottomMargin := 10.0
	pageHeight := 210.0 // A4横向高度

	remainingHeight := pageHeight - pdf.GetY() - footerHeight - bottomMargin
	if remainingHeight > 0 {
		pdf.Ln(remainingHeight)
	}
	drawFooter(pdf)

	return pdf, nil
}

func drawDetailTable(pdf *gofpdf.Fpdf, details []db.DetailRecord,
	simStart time.Time, timeScale float64) float64 {
	headers := []struct {
		width float64
		name  string
	}{
		{25, "房间号"},
		{35, "会话"},
		{25, "风速"},
		{35, "开始(模拟分)"},
		{35, "结束(模拟分)"},
		{35, "时长(模拟秒)"},
		{30, "费率(元/分)"},
		{30, "费用(元)"},
		{30, "累计(元)"},
	}

	simMinutes := func(t time.Time) float64 {
		return t.Sub(simStart).Seconds() * timeScale / 60
	}

	pdf.SetFont("chinese", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(0, 0, 0)
	for _, h := range headers {
		pdf.Cell(h.width, 10, h.name)
	}
	pdf.Ln(10)

	pdf.SetFont("chinese", "", 9)
	rowHeight := 8.0
	cumulative := 0.0

	for _, d := range details {
		// 留出页脚空间,必要时换页并重画表头
		if pdf.GetY() > 180 {
			pdf.AddPage()
			pdf.SetFont("chinese", "", 10)
			for _, h := range headers {
				pdf.Cell(h.width, 10, h.name)
			}
			pdf.Ln(10)
			pdf.SetFont("chinese", "", 9)
		}

		cumulative += d.Fee
		end := "计费中"
		if d.EndTime != nil {
			end = fmt.Sprintf("%.2f", simMinutes(*d.EndTime))
		}

		pdf.Cell(25, rowHeight, d.RoomID)
		pdf.Cell(35, rowHeight, shortSession(d.SessionID))
		pdf.Cell(25, rowHeight, d.FanSpeed)
		pdf.Cell(35, rowHeight, fmt.Sprintf("%.2f", simMinutes(d.StartTime)))
		if d.EndTime == nil {
			pdf.SetTextColor(0, 153, 0)
		}
		pdf.Cell(35, rowHeight, end)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(35, rowHeight, fmt.Sprintf("%.2f", d.Duration))
		pdf.Cell(30, rowHeight, fmt.Sprintf("%.2f", d.FeeRate))
		if d.Fee > 0 {
			pdf.SetTextColor(204, 0, 0)
		}
		pdf.Cell(30, rowHeight, fmt.Sprintf("%.2f", d.Fee))
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(30, rowHeight, fmt.Sprintf("%.2f", cumulative))
		pdf.Ln(rowHeight)
	}
	return cumulative
}

func shortSession(sessionID string) string {
	if len(sessionID) > 8 {
		return sessionID[:8]
	}
	return sessionID
}

func drawFooter(pdf *gofpdf.Fpdf) {
	pdf.SetFont("chinese", "", 8)
	pdf.SetTextColor(128, 128, 128)

	footerText := fmt.Sprintf(
		"打印时间: %s    本详单仅作查询使用，如有疑问请咨询前台",
		time.Now().Format("2006-01-02 15:04:05"),
	)

	footerWidth := pdf.GetStringWidth(footerText)
	pageWidth := 297.0 // A4横向宽度
	x := (pageWidth - footerWidth) / 2

	pdf.Text(x, pdf.GetY(), footerText)
}

// GenerateBillPDF 生成住宿账单
func GenerateBillPDF(invoice *db.Invoice) (*gofpdf.Fpdf, error) {
	// 竖向A4纸
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// 添加中文字体
	pdf.AddUTF8Font("chinese", "", "./SimHei.ttf")

	pdf.SetFont("chinese", "", 20)
	pdf.Cell(190, 15, "住宿账单")
	pdf.Ln(20)

	pdf.SetFont("chinese", "", 12)
	pdf.Cell(95, 8, fmt.Sprintf("账单编号: %s", shortSession(invoice.ID)))
	pdf.Cell(95, 8, fmt.Sprintf("打印日期: %s",
		time.Now().Format("2006-01-02 15:04:05")))
	pdf.Ln(15)

	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(10)

	pdf.SetFont("chinese", "", 12)
	pdf.Cell(30, 8, "房间号:")
	pdf.Cell(65, 8, invoice.RoomID)
	pdf.Cell(30, 8, "客户姓名:")
	pdf.Cell(65, 8, invoice.ClientName)
	pdf.Ln(10)

	pdf.Cell(30, 8, "入住时间:")
	pdf.Cell(160, 8, invoice.CheckinTime.Format("2006-01-02 15:04:05"))
	pdf.Ln(10)

	pdf.Cell(30, 8, "退房时间:")
	pdf.Cell(160, 8, invoice.CheckoutTime.Format("2006-01-02 15:04:05"))
	pdf.Ln(10)

	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(10)

	pdf.SetFont("chinese", "", 12)
	pdf.Cell(190, 10, "费用明细")
	pdf.Ln(12)

	pdf.SetFont("chinese", "", 11)
	pdf.Cell(95, 8, "住宿天数:")
	pdf.Cell(95, 8, fmt.Sprintf("%d天", invoice.StayDays))
	pdf.Ln(8)
	pdf.Cell(95, 8, "房间日费率:")
	pdf.Cell(95, 8, fmt.Sprintf("%.2f元/天", invoice.DailyRate))
	pdf.Ln(8)
	pdf.Cell(95, 8, "住宿费用小计:")
	pdf.Cell(95, 8, fmt.Sprintf("%.2f元", invoice.AccommodationFee))
	pdf.Ln(8)
	pdf.Cell(95, 8, "空调费用小计:")
	pdf.Cell(95, 8, fmt.Sprintf("%.2f元", invoice.ACFee))
	pdf.Ln(15)

	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(10)

	pdf.SetFont("chinese", "", 14)
	pdf.Cell(95, 10, "应付总额:")
	pdf.Cell(95, 10, fmt.Sprintf("%.2f元", invoice.TotalFee))
	pdf.Ln(20)

	pdf.SetFont("chinese", "", 10)
	pdf.Cell(190, 8, "备注：")
	pdf.Ln(8)
	pdf.Cell(190, 8, "1. 应付总额 = 住宿费用 + 空调费用")
	pdf.Ln(8)
	pdf.Cell(190, 8, "2. 如需空调费用详单，请向前台索取")
	pdf.Ln(8)
	pdf.Cell(190, 8, "3. 请保管好此账单，作为缴费凭证")

	pdf.SetY(-15)
	pdf.SetFont("chinese", "", 8)
	pdf.Cell(190, 10, fmt.Sprintf("打印时间: %s",
		time.Now().Format("2006-01-02 15:04:05")))

	return pdf, nil
}
