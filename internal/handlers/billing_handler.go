// internal/handlers/billing_handler.go

package handlers

import (
	"github.com/gin-gonic/gin"

	"hotelac/internal/billing"
)

// CheckOutRequest 退房请求
type CheckOutRequest struct {
	RoomID string `json:"room_id" binding:"required"`
}

// PayRequest 缴费请求
type PayRequest struct {
	BillNo string `json:"bill_no" binding:"required"`
}

// BillingHandler 退房结账、账单与详单查询
type BillingHandler struct {
	billing *billing.Service
}

func NewBillingHandler(svc *billing.Service) *BillingHandler {
	return &BillingHandler{billing: svc}
}

// CheckOut 办理退房，返回账单
func (h *BillingHandler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.billing.Checkout(req.RoomID)
	if err != nil {
		respondErr(c, "退房失败", err)
		return
	}
	respondOK(c, "退房成功", result)
}

// GetBill 在住费用预览
func (h *BillingHandler) GetBill(c *gin.Context) {
	preview, err := h.billing.Preview(c.Param("roomId"))
	if err != nil {
		respondErr(c, "生成账单失败", err)
		return
	}
	respondOK(c, "获取账单成功", preview)
}

// Pay 按账单号缴费
func (h *BillingHandler) Pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.billing.Pay(req.BillNo); err != nil {
		respondErr(c, "缴费失败", err)
		return
	}
	respondOK(c, "缴费成功", gin.H{"bill_no": req.BillNo})
}

// GetDetails 空调使用详单
func (h *BillingHandler) GetDetails(c *gin.Context) {
	list, err := h.billing.Details(c.Param("roomId"))
	if err != nil {
		respondErr(c, "获取详单失败", err)
		return
	}
	respondOK(c, "获取详单成功", list)
}
