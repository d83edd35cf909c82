// api/router.go

package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotelac/internal/handlers"
	"hotelac/internal/metrics"
	"hotelac/middleware"
)

// SetupRouter 组装全部路由:面板、管理端、前台和观测接口
func SetupRouter(
	panelHandler *handlers.PanelHandler,
	adminHandler *handlers.AdminHandler,
	frontHandler *handlers.FrontHandler,
	mets *metrics.Metrics,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// 配置CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RequestLog())
	router.Use(gin.Recovery())

	// 顾客空调控制面板路由组
	panel := router.Group("/panel")
	{
		panel.POST("/powerOn", panelHandler.PowerOn)
		panel.POST("/powerOff", panelHandler.PowerOff)
		panel.POST("/changeState", panelHandler.ChangeState)
		panel.GET("/status", panelHandler.AllStatus)
		panel.GET("/status/:roomId", panelHandler.Status)
	}

	// 管理端路由组
	admin := router.Group("/admin")
	{
		admin.POST("/setMode", adminHandler.SetMode)
		admin.POST("/pause", adminHandler.Pause)
		admin.POST("/resume", adminHandler.Resume)
		admin.GET("/queueInfo", adminHandler.QueueInfo)
		admin.GET("/report", adminHandler.Report)
	}

	// 前台路由组
	front := router.Group("/front")
	{
		front.POST("/checkIn", frontHandler.CheckIn)
		front.POST("/checkOut", frontHandler.CheckOut)
		front.GET("/bill/:roomId", frontHandler.Bill)
		front.GET("/details/:roomId", frontHandler.Details)
		front.GET("/rooms", frontHandler.Rooms)
		front.GET("/exportBill/:roomId", frontHandler.ExportBillCSV)
		front.GET("/exportBill/:roomId/pdf", frontHandler.ExportBillPDF)
		front.GET("/exportDetail/:roomId", frontHandler.ExportDetailCSV)
		front.GET("/exportDetail/:roomId/pdf", frontHandler.ExportDetailPDF)
	}

	// 观测接口
	router.GET("/metrics", gin.WrapH(mets.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
