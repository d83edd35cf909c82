// internal/handlers/panel_handler.go

package handlers

import (
	"github.com/gin-gonic/gin"

	"hotelac/internal/ac"
)

// PowerRequest 开机/调节请求,风速和目标温度可选
type PowerRequest struct {
	RoomID     string   `json:"roomId" binding:"required"`
	FanSpeed   string   `json:"fanSpeed,omitempty"`
	TargetTemp *float64 `json:"targetTemp,omitempty"` // 指针类型使其可选
}

// PowerOffRequest 关机请求
type PowerOffRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

// PanelHandler 房间面板接口
type PanelHandler struct {
	svc *ac.Service
}

func NewPanelHandler(svc *ac.Service) *PanelHandler {
	return &PanelHandler{svc: svc}
}

// PowerOn 开启房间空调
func (h *PanelHandler) PowerOn(c *gin.Context) {
	var req PowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求格式", err)
		return
	}
	if err := h.svc.PowerOn(req.RoomID, req.FanSpeed, req.TargetTemp); err != nil {
		fail(c, "开机失败", err)
		return
	}
	status, err := h.svc.Status(req.RoomID)
	if err != nil {
		fail(c, "获取状态失败", err)
		return
	}
	ok(c, "空调开启成功", status)
}

// PowerOff 关闭房间空调
func (h *PanelHandler) PowerOff(c *gin.Context) {
	var req PowerOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求格式", err)
		return
	}
	if err := h.svc.PowerOff(req.RoomID); err != nil {
		fail(c, "关机失败", err)
		return
	}
	status, err := h.svc.Status(req.RoomID)
	if err != nil {
		fail(c, "获取状态失败", err)
		return
	}
	ok(c, "空调关闭成功", status)
}

// ChangeState 调节风速或目标温度
func (h *PanelHandler) ChangeState(c *gin.Context) {
	var req PowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求格式", err)
		return
	}
	if err := h.svc.ChangeState(req.RoomID, req.FanSpeed, req.TargetTemp); err != nil {
		fail(c, "调节失败", err)
		return
	}
	status, err := h.svc.Status(req.RoomID)
	if err != nil {
		fail(c, "获取状态失败", err)
		return
	}
	ok(c, "调节成功", status)
}

// Status 查询单个房间状态
func (h *PanelHandler) Status(c *gin.Context) {
	status, err := h.svc.Status(c.Param("roomId"))
	if err != nil {
		fail(c, "获取状态失败", err)
		return
	}
	ok(c, "获取状态成功", status)
}

// AllStatus 查询全部房间状态
func (h *PanelHandler) AllStatus(c *gin.Context) {
	ok(c, "获取状态成功", h.svc.AllStatus())
}
