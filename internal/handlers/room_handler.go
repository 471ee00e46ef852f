// internal/handlers/room_handler.go

package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotelac/internal/ac"
	"hotelac/internal/clock"
	"hotelac/internal/db"
)

// CheckInRequest 入住登记请求
type CheckInRequest struct {
	RoomID      string `json:"room_id" binding:"required"`
	GuestName   string `json:"guest_name" binding:"required"`
	GuestIDCard string `json:"guest_id_card" binding:"required"`
	GuestPhone  string `json:"guest_phone"`
}

// RoomHandler 前台房务：入住登记与房态查询
type RoomHandler struct {
	rooms   *db.RoomRepository
	orders  *db.OrderRepository
	gateway *ac.Gateway
	clk     clock.Clock
}

func NewRoomHandler(conn *gorm.DB, gateway *ac.Gateway, clk clock.Clock) *RoomHandler {
	return &RoomHandler{
		rooms:   db.NewRoomRepository(conn),
		orders:  db.NewOrderRepository(conn),
		gateway: gateway,
		clk:     clk,
	}
}

// CheckIn 办理入住：占房、建订单、把房间登记进空调调度
func (h *RoomHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// 同一证件不允许重复在住
	if existing, err := h.orders.ActiveByGuest(req.GuestIDCard); err == nil {
		respondErr(c, fmt.Sprintf("该住客已入住房间 %s", existing.RoomID), db.ErrRoomOccupied)
		return
	}

	now := h.clk.Now()
	if err := h.rooms.CheckIn(req.RoomID, req.GuestName, req.GuestIDCard, req.GuestPhone, now); err != nil {
		respondErr(c, "入住失败", err)
		return
	}

	order := &db.AccommodationOrder{
		OrderNo:     uuid.NewString(),
		RoomID:      req.RoomID,
		GuestName:   req.GuestName,
		GuestIDCard: req.GuestIDCard,
		GuestPhone:  req.GuestPhone,
		CheckinTime: now,
		Status:      db.OrderActive,
	}
	if err := h.orders.Create(order); err != nil {
		respondErr(c, "创建订单失败", err)
		return
	}

	h.gateway.Init(req.RoomID)

	respondOK(c, "入住成功", gin.H{
		"order_no":     order.OrderNo,
		"room_id":      req.RoomID,
		"guest_name":   req.GuestName,
		"checkin_time": now.Format("2006-01-02 15:04:05"),
	})
}

// ListRooms 全部房间及其空调镜像状态
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListAll()
	if err != nil {
		respondErr(c, "查询房间失败", err)
		return
	}
	respondOK(c, "查询成功", rooms)
}

// ListAvailable 可入住的空闲房间
func (h *RoomHandler) ListAvailable(c *gin.Context) {
	rooms, err := h.rooms.ListAvailable()
	if err != nil {
		respondErr(c, "查询房间失败", err)
		return
	}
	respondOK(c, "查询成功", rooms)
}

// ListOrders 订单列表，?status=active|completed 过滤
func (h *RoomHandler) ListOrders(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != db.OrderActive && status != db.OrderCompleted {
		respondBindError(c, fmt.Errorf("未知订单状态: %q", status))
		return
	}
	orders, err := h.orders.List(status)
	if err != nil {
		respondErr(c, "查询订单失败", err)
		return
	}
	respondOK(c, "查询成功", orders)
}
