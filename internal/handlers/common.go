// internal/handlers/common.go

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/db"
	"hotelac/internal/scheduler"
)

// Response 统一响应包装
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
	Err  string      `json:"err,omitempty"`
}

func respondOK(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 200, Msg: msg, Data: data})
}

// respondErr 失败响应，HTTP 状态码按业务错误归类
func respondErr(c *gin.Context, msg string, err error) {
	status := statusOf(err)
	resp := Response{Code: status, Msg: msg}
	if err != nil {
		resp.Err = err.Error()
	}
	c.JSON(status, resp)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Code: 400, Msg: "请求参数不合法", Err: err.Error()})
}

// statusOf 业务错误到 HTTP 状态码的映射
func statusOf(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrUnknownRoom),
		errors.Is(err, db.ErrRoomNotFound),
		errors.Is(err, db.ErrNoActiveOrder),
		errors.Is(err, db.ErrBillNotFound),
		errors.Is(err, db.ErrDetailNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrInvalidRequest),
		errors.Is(err, db.ErrRoomOccupied),
		errors.Is(err, db.ErrRoomVacant),
		errors.Is(err, db.ErrBillPaid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
