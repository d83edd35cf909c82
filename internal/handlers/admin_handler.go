// internal/handlers/admin_handler.go

package handlers

import (
	"github.com/gin-gonic/gin"

	"hotelac/internal/ac"
	"hotelac/internal/billing"
)

// SetModeRequest 设置工作模式请求
type SetModeRequest struct {
	Mode string `json:"mode" binding:"required"` // COOL/HEAT
}

// AdminHandler 管理端接口:模式切换、暂停恢复、队列监控、使用报表
type AdminHandler struct {
	svc     *ac.Service
	billing *billing.Service
}

func NewAdminHandler(svc *ac.Service, billing *billing.Service) *AdminHandler {
	return &AdminHandler{svc: svc, billing: billing}
}

// SetMode 切换中央空调工作模式,切换后需显式恢复模拟
func (h *AdminHandler) SetMode(c *gin.Context) {
	var req SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求格式", err)
		return
	}
	if err := h.svc.SetMode(req.Mode); err != nil {
		fail(c, "设置工作模式失败", err)
		return
	}
	ok(c, "设置工作模式成功,模拟已暂停", gin.H{"mode": req.Mode})
}

// Pause 暂停模拟
func (h *AdminHandler) Pause(c *gin.Context) {
	h.svc.Pause()
	ok(c, "模拟已暂停", nil)
}

// Resume 恢复模拟
func (h *AdminHandler) Resume(c *gin.Context) {
	h.svc.Resume()
	ok(c, "模拟已恢复", nil)
}

// QueueInfo 查询调度队列全景
func (h *AdminHandler) QueueInfo(c *gin.Context) {
	ok(c, "获取队列状态成功", h.svc.QueueInfo())
}

// Report 按日或按周查询各房间空调使用报表
func (h *AdminHandler) Report(c *gin.Context) {
	report, err := h.billing.Report(c.DefaultQuery("period", "daily"))
	if err != nil {
		fail(c, "获取报表失败", err)
		return
	}
	ok(c, "获取报表成功", report)
}
