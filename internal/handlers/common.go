package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/billing"
	"hotelac/internal/db"
	"hotelac/internal/scheduler"
)

// Response 统一响应信封
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
	Err  string      `json:"err,omitempty"`
}

func ok(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Msg: msg, Data: data})
}

func fail(c *gin.Context, msg string, err error) {
	status := httpStatus(err)
	resp := Response{Code: status, Msg: msg}
	if err != nil {
		resp.Err = err.Error()
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := Response{Code: http.StatusBadRequest, Msg: msg}
	if err != nil {
		resp.Err = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// httpStatus 按错误类别映射状态码
func httpStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, scheduler.ErrRoomNotFound),
		errors.Is(err, db.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrInvalidFanSpeed),
		errors.Is(err, scheduler.ErrInvalidTargetTemp),
		errors.Is(err, scheduler.ErrInvalidMode),
		errors.Is(err, billing.ErrRoomOccupied),
		errors.Is(err, billing.ErrRoomVacant),
		errors.Is(err, billing.ErrInvalidPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
