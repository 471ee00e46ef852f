package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// 房间状态
const (
	RoomAvailable = "available" // 空闲
	RoomOccupied  = "occupied"  // 在住
)

// 订单状态
const (
	OrderActive    = "active"    // 在住中
	OrderCompleted = "completed" // 已退房
)

// RoomInfo 房间信息表。附带一份空调状态镜像供前台界面直接读取；
// 调度期间的权威状态始终在调度器内存里，镜像只在控制调用后刷新
type RoomInfo struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	RoomID    string          `gorm:"uniqueIndex;type:varchar(10)" json:"room_id"`
	RoomType  string          `gorm:"type:varchar(20)" json:"room_type"`
	DailyRate decimal.Decimal `gorm:"type:decimal(10,2)" json:"daily_rate"`
	Status    string          `gorm:"type:varchar(20)" json:"status"`

	GuestName   string     `gorm:"type:varchar(50)" json:"guest_name,omitempty"`
	GuestIDCard string     `gorm:"type:varchar(18)" json:"guest_id_card,omitempty"`
	GuestPhone  string     `gorm:"type:varchar(11)" json:"guest_phone,omitempty"`
	CheckinTime *time.Time `json:"checkin_time,omitempty"`

	ACPhase     string  `gorm:"type:varchar(10)" json:"ac_phase"`
	ACIsOn      bool    `json:"ac_is_on"`
	ACMode      string  `gorm:"type:varchar(10)" json:"ac_mode"`
	ACFanSpeed  string  `gorm:"type:varchar(10)" json:"ac_fan_speed"`
	CurrentTemp float64 `json:"current_temp"`
	TargetTemp  float64 `json:"target_temp"`
	ACEnergy    float64 `json:"ac_energy"`
	ACCost      float64 `json:"ac_cost"`
}

// AccommodationOrder 入住订单表
type AccommodationOrder struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderNo      string          `gorm:"uniqueIndex;type:varchar(40)" json:"order_no"`
	RoomID       string          `gorm:"index;type:varchar(10)" json:"room_id"`
	GuestName    string          `gorm:"type:varchar(50)" json:"guest_name"`
	GuestIDCard  string          `gorm:"type:varchar(18)" json:"guest_id_card"`
	GuestPhone   string          `gorm:"type:varchar(11)" json:"guest_phone"`
	CheckinTime  time.Time       `json:"checkin_time"`
	CheckoutTime *time.Time      `json:"checkout_time,omitempty"`
	Status       string          `gorm:"index;type:varchar(20)" json:"status"`
	RoomFee      decimal.Decimal `gorm:"type:decimal(10,2)" json:"room_fee"`
}

// DetailRecord 空调计费详单表，一条对应一个送风服务段。
// EndTime 为空表示该段还在送风中
type DetailRecord struct {
	RecordID   int64           `gorm:"primaryKey;autoIncrement" json:"record_id"`
	RoomID     string          `gorm:"index;type:varchar(10)" json:"room_id"`
	OrderID    *uint           `gorm:"index" json:"order_id,omitempty"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    *time.Time      `json:"end_time,omitempty"`
	StartTemp  float64         `json:"start_temp"`
	EndTemp    *float64        `json:"end_temp,omitempty"`
	TargetTemp float64         `json:"target_temp"`
	FanSpeed   string          `gorm:"type:varchar(10)" json:"fan_speed"`
	Mode       string          `gorm:"type:varchar(10)" json:"mode"`
	Energy     float64         `json:"energy"`
	Cost       decimal.Decimal `gorm:"type:decimal(10,2)" json:"cost"`
}

// Bill 住宿账单表：房费加空调费
type Bill struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	BillNo    string          `gorm:"uniqueIndex;type:varchar(40)" json:"bill_no"`
	OrderID   uint            `gorm:"index" json:"order_id"`
	RoomID    string          `gorm:"type:varchar(10)" json:"room_id"`
	RoomFee   decimal.Decimal `gorm:"type:decimal(10,2)" json:"room_fee"`
	ACFee     decimal.Decimal `gorm:"type:decimal(10,2)" json:"ac_fee"`
	TotalFee  decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_fee"`
	IsPaid    bool            `json:"is_paid"`
	CreatedAt time.Time       `json:"created_at"`
}
