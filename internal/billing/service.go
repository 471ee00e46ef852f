// internal/billing/service.go

package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hotelac/internal/ac"
	"hotelac/internal/clock"
	"hotelac/internal/db"
	"hotelac/internal/scheduler"
)

const timeLayout = "2006-01-02 15:04:05"

// Service 结账与详单服务。房费按自然天起算，
// 空调费以详单为准，十进制精确累加
type Service struct {
	gateway   *ac.Gateway
	rooms     *db.RoomRepository
	orders    *db.OrderRepository
	details   *db.DetailRepository
	bills     *db.BillRepository
	clk       clock.Clock
	timeScale float64
}

// NewService 创建结账服务。timeScale 是详单展示用的时间压缩比
func NewService(gateway *ac.Gateway, conn *gorm.DB, clk clock.Clock, timeScale float64) *Service {
	return &Service{
		gateway:   gateway,
		rooms:     db.NewRoomRepository(conn),
		orders:    db.NewOrderRepository(conn),
		details:   db.NewDetailRepository(conn),
		bills:     db.NewBillRepository(conn),
		clk:       clk,
		timeScale: timeScale,
	}
}

// BillPreview 退房前的费用预览
type BillPreview struct {
	RoomID      string  `json:"room_id"`
	OrderNo     string  `json:"order_no"`
	GuestName   string  `json:"guest_name"`
	CheckinTime string  `json:"checkin_time"`
	QueryTime   string  `json:"query_time"`
	Nights      int     `json:"nights"`
	RoomFee     float64 `json:"room_fee"`
	ACFee       float64 `json:"ac_fee"`
	TotalFee    float64 `json:"total_fee"`
}

// CheckoutResult 退房结果，账单号用于后续缴费
type CheckoutResult struct {
	BillNo       string  `json:"bill_no"`
	RoomID       string  `json:"room_id"`
	GuestName    string  `json:"guest_name"`
	CheckinTime  string  `json:"checkin_time"`
	CheckoutTime string  `json:"checkout_time"`
	Nights       int     `json:"nights"`
	RoomFee      float64 `json:"room_fee"`
	ACFee        float64 `json:"ac_fee"`
	TotalFee     float64 `json:"total_fee"`
}

// DetailItem 一段送风服务的详单
type DetailItem struct {
	Seq        int     `json:"seq"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time,omitempty"` // 空表示仍在服务
	Duration   float64 `json:"duration"`           // 秒，按时间压缩比换算
	FanSpeed   string  `json:"fan_speed"`
	Mode       string  `json:"mode"`
	StartTemp  float64 `json:"start_temp"`
	EndTemp    float64 `json:"end_temp"`
	TargetTemp float64 `json:"target_temp"`
	Energy     float64 `json:"energy"`
	Cost       float64 `json:"cost"`
}

// DetailList 一次入住的详单汇总
type DetailList struct {
	RoomID      string       `json:"room_id"`
	OrderNo     string       `json:"order_no"`
	Count       int          `json:"count"`
	TotalEnergy float64      `json:"total_energy"`
	TotalCost   float64      `json:"total_cost"`
	Items       []DetailItem `json:"items"`
}

// stayNights 房费天数：不足一天按一天，跨过整天再加一天
func stayNights(checkin, now time.Time) int {
	nights := int(now.Sub(checkin).Hours()/24) + 1
	if nights < 1 {
		nights = 1
	}
	return nights
}

// Preview 生成费用预览。空调费优先取调度器的实时读数，
// 房间不在调度器里时退回已结详单合计
func (s *Service) Preview(roomID string) (*BillPreview, error) {
	order, err := s.orders.ActiveByRoom(roomID)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(roomID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	nights := stayNights(order.CheckinTime, now)
	roomFee := room.DailyRate.Mul(decimal.NewFromInt(int64(nights)))

	acFee, _, err := s.closedConsumption(order.ID)
	if err != nil {
		return nil, err
	}
	if view, err := s.gateway.State(roomID); err == nil {
		acFee = decimal.NewFromFloat(view.Cost)
	}

	return &BillPreview{
		RoomID:      roomID,
		OrderNo:     order.OrderNo,
		GuestName:   order.GuestName,
		CheckinTime: order.CheckinTime.Format(timeLayout),
		QueryTime:   now.Format(timeLayout),
		Nights:      nights,
		RoomFee:     roomFee.InexactFloat64(),
		ACFee:       acFee.InexactFloat64(),
		TotalFee:    roomFee.Add(acFee).InexactFloat64(),
	}, nil
}

// Checkout 退房：结清空调服务、生成账单、关闭订单、释放房间
func (s *Service) Checkout(roomID string) (*CheckoutResult, error) {
	order, err := s.orders.ActiveByRoom(roomID)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(roomID)
	if err != nil {
		return nil, err
	}

	// 先把房间移出调度，未结详单此时全部落库
	if _, err := s.gateway.Clear(roomID); err != nil && !errors.Is(err, scheduler.ErrUnknownRoom) {
		return nil, fmt.Errorf("结清房间 %s 空调状态失败: %v", roomID, err)
	}

	now := s.clk.Now()
	nights := stayNights(order.CheckinTime, now)
	roomFee := room.DailyRate.Mul(decimal.NewFromInt(int64(nights)))

	acFee, _, err := s.closedConsumption(order.ID)
	if err != nil {
		return nil, err
	}

	bill := &db.Bill{
		BillNo:    uuid.NewString(),
		OrderID:   order.ID,
		RoomID:    roomID,
		RoomFee:   roomFee,
		ACFee:     acFee,
		TotalFee:  roomFee.Add(acFee),
		CreatedAt: now,
	}
	if err := s.bills.Create(bill); err != nil {
		return nil, err
	}
	if err := s.orders.Complete(order.ID, now, roomFee); err != nil {
		return nil, fmt.Errorf("关闭订单失败: %v", err)
	}
	if err := s.rooms.CheckOut(roomID); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		BillNo:       bill.BillNo,
		RoomID:       roomID,
		GuestName:    order.GuestName,
		CheckinTime:  order.CheckinTime.Format(timeLayout),
		CheckoutTime: now.Format(timeLayout),
		Nights:       nights,
		RoomFee:      roomFee.InexactFloat64(),
		ACFee:        acFee.InexactFloat64(),
		TotalFee:     bill.TotalFee.InexactFloat64(),
	}, nil
}

// Pay 按账单号缴费
func (s *Service) Pay(billNo string) error {
	return s.bills.MarkPaid(billNo)
}

// Details 列出一次入住的空调详单。在住取当前订单，
// 已退房取最近一张订单供补打
func (s *Service) Details(roomID string) (*DetailList, error) {
	order, err := s.orders.ActiveByRoom(roomID)
	if errors.Is(err, db.ErrNoActiveOrder) {
		order, err = s.orders.LatestByRoom(roomID)
	}
	if err != nil {
		return nil, err
	}

	records, err := s.details.ListByOrder(order.ID)
	if err != nil {
		return nil, fmt.Errorf("查询详单失败: %v", err)
	}

	now := s.clk.Now()
	list := &DetailList{RoomID: roomID, OrderNo: order.OrderNo, Count: len(records)}

	// 未结段的消耗 = 实时累计 − 已结详单合计
	var liveView *scheduler.RoomView
	if view, err := s.gateway.State(roomID); err == nil {
		liveView = &view
	}
	closedEnergy, closedCost := 0.0, decimal.Zero
	for _, rec := range records {
		if rec.EndTime != nil {
			closedEnergy += rec.Energy
			closedCost = closedCost.Add(rec.Cost)
		}
	}

	for i, rec := range records {
		item := DetailItem{
			Seq:        i + 1,
			StartTime:  rec.StartTime.Format(timeLayout),
			FanSpeed:   rec.FanSpeed,
			Mode:       rec.Mode,
			StartTemp:  rec.StartTemp,
			TargetTemp: rec.TargetTemp,
			Energy:     rec.Energy,
			Cost:       rec.Cost.InexactFloat64(),
		}
		end := now
		if rec.EndTime != nil {
			end = *rec.EndTime
			item.EndTime = end.Format(timeLayout)
			if rec.EndTemp != nil {
				item.EndTemp = *rec.EndTemp
			}
		} else if liveView != nil {
			item.Energy = liveView.EnergyConsumed - closedEnergy
			item.Cost = liveView.Cost - closedCost.InexactFloat64()
			item.EndTemp = liveView.CurrentTemp
		}
		item.Duration = end.Sub(rec.StartTime).Seconds() * s.timeScale
		list.Items = append(list.Items, item)
		list.TotalEnergy += item.Energy
		list.TotalCost += item.Cost
	}
	return list, nil
}

// closedConsumption 已结详单的费用与耗电合计
func (s *Service) closedConsumption(orderID uint) (decimal.Decimal, float64, error) {
	records, err := s.details.ListByOrder(orderID)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("查询详单失败: %v", err)
	}
	fee, energy := decimal.Zero, 0.0
	for _, rec := range records {
		if rec.EndTime == nil {
			continue
		}
		fee = fee.Add(rec.Cost)
		energy += rec.Energy
	}
	return fee, energy, nil
}
