// internal/handlers/ac_handler.go

package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"hotelac/internal/ac"
	"hotelac/internal/monitor"
)

// ControlRequest 空调控制请求
type ControlRequest struct {
	RoomID     string   `json:"room_id" binding:"required"`
	Action     string   `json:"action" binding:"required"` // power_on/power_off/change_temp/change_speed
	TargetTemp *float64 `json:"target_temp,omitempty"`
	FanSpeed   string   `json:"fan_speed,omitempty"`
	Mode       string   `json:"mode,omitempty"` // cooling/heating
}

// ACHandler 空调控制与状态查询
type ACHandler struct {
	gateway *ac.Gateway
	monitor *monitor.Monitor
}

func NewACHandler(gateway *ac.Gateway, mon *monitor.Monitor) *ACHandler {
	return &ACHandler{gateway: gateway, monitor: mon}
}

// Control 提交控制请求，返回受理结果和提交后的房间状态
func (h *ACHandler) Control(c *gin.Context) {
	var req ControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.gateway.Submit(req.RoomID, req.Action, req.TargetTemp, req.FanSpeed, req.Mode)
	if err != nil {
		respondErr(c, "控制请求失败", err)
		return
	}

	view, _ := h.gateway.State(req.RoomID)
	respondOK(c, result.Message, gin.H{
		"result": result,
		"state":  view,
	})
}

// State 查询单个房间的实时空调状态
func (h *ACHandler) State(c *gin.Context) {
	roomID := c.Param("roomId")
	view, err := h.gateway.State(roomID)
	if err != nil {
		respondErr(c, fmt.Sprintf("房间 %s 不在调度中", roomID), err)
		return
	}
	respondOK(c, "查询成功", view)
}

// Monitor 全楼实时状态，附带监控汇总
func (h *ACHandler) Monitor(c *gin.Context) {
	data := gin.H{"rooms": h.gateway.Snapshot()}
	if h.monitor != nil {
		data["summary"] = h.monitor.Metrics()
	}
	respondOK(c, "查询成功", data)
}
