// internal/handlers/front_handler.go

package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/billing"
	"hotelac/internal/config"
	"hotelac/internal/utils"
)

// CheckInRequest 入住登记请求
type CheckInRequest struct {
	RoomID     string `json:"roomId" binding:"required"`
	CustomerID string `json:"customerId,omitempty"`
	Name       string `json:"name" binding:"required"`
	IDNumber   string `json:"idNumber,omitempty"`
}

// CheckOutRequest 退房请求
type CheckOutRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

// FrontHandler 前台接口:入住退房、账单详单查询与导出
type FrontHandler struct {
	cfg     *config.Config
	billing *billing.Service
}

func NewFrontHandler(cfg *config.Config, billing *billing.Service) *FrontHandler {
	return &FrontHandler{cfg: cfg, billing: billing}
}

// CheckIn 入住登记
func (h *FrontHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求格式", err)
		return
	}
	if err := h.billing.CheckIn(req.RoomID, req.CustomerID, req.Name, req.IDNumber); err != nil {
		fail(c, "入住登记失败", err)
		return
	}
	ok(c, "入住登记成功", nil)
}

// CheckOut 退房并生成账单
func (h *FrontHandler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求格式", err)
		return
	}
	invoice, err := h.billing.CheckOut(req.RoomID)
	if err != nil {
		fail(c, "退房失败", err)
		return
	}
	ok(c, "退房成功", invoice)
}

// Bill 查询最近一次退房生成的账单
func (h *FrontHandler) Bill(c *gin.Context) {
	roomID := c.Param("roomId")
	invoice, err := h.billing.LatestInvoice(roomID)
	if err != nil {
		fail(c, "查询账单失败", err)
		return
	}
	if invoice == nil {
		c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Msg: "暂无账单"})
		return
	}
	ok(c, "获取账单成功", invoice)
}

// Details 查询房间详单
func (h *FrontHandler) Details(c *gin.Context) {
	details, err := h.billing.Details(c.Param("roomId"))
	if err != nil {
		fail(c, "获取详单失败", err)
		return
	}
	ok(c, "获取详单成功", details)
}

// Rooms 前台房态一览
func (h *FrontHandler) Rooms(c *gin.Context) {
	rooms, err := h.billing.RoomBoard()
	if err != nil {
		fail(c, "获取房态失败", err)
		return
	}
	ok(c, "获取房态成功", rooms)
}

// ExportBillCSV 导出账单 CSV
func (h *FrontHandler) ExportBillCSV(c *gin.Context) {
	roomID := c.Param("roomId")
	var buf bytes.Buffer
	if err := h.billing.ExportBillCSV(&buf, roomID); err != nil {
		fail(c, "导出账单失败", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="bill_%s.csv"`, roomID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportDetailCSV 导出详单 CSV,时间轴为模拟分钟
func (h *FrontHandler) ExportDetailCSV(c *gin.Context) {
	roomID := c.Param("roomId")
	var buf bytes.Buffer
	if err := h.billing.ExportDetailCSV(&buf, roomID); err != nil {
		fail(c, "导出详单失败", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="detail_%s.csv"`, roomID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportBillPDF 导出账单 PDF
func (h *FrontHandler) ExportBillPDF(c *gin.Context) {
	roomID := c.Param("roomId")
	invoice, err := h.billing.LatestInvoice(roomID)
	if err != nil {
		fail(c, "查询账单失败", err)
		return
	}
	if invoice == nil {
		c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Msg: "暂无账单"})
		return
	}
	pdf, err := utils.GenerateBillPDF(invoice)
	if err != nil {
		fail(c, "生成账单PDF失败", err)
		return
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		fail(c, "生成账单PDF失败", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="bill_%s.pdf"`, roomID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ExportDetailPDF 导出详单 PDF
func (h *FrontHandler) ExportDetailPDF(c *gin.Context) {
	roomID := c.Param("roomId")
	details, err := h.billing.Details(roomID)
	if err != nil {
		fail(c, "获取详单失败", err)
		return
	}
	clientName := "-"
	if customer, err := h.billing.Customer(roomID); err == nil && customer != nil {
		clientName = customer.Name
	}
	pdf, err := utils.GenerateDetailPDF(roomID, clientName, details, h.billing.SimStart(), h.cfg.TimeScale)
	if err != nil {
		fail(c, "生成详单PDF失败", err)
		return
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		fail(c, "生成详单PDF失败", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="detail_%s.pdf"`, roomID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
