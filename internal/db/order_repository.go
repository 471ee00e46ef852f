package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNoActiveOrder = errors.New("房间没有在住订单")

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(conn *gorm.DB) *OrderRepository {
	return &OrderRepository{db: conn}
}

// Create 创建入住订单
func (r *OrderRepository) Create(order *AccommodationOrder) error {
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("创建订单失败: %v", err)
	}
	return nil
}

// ActiveByRoom 房间当前的在住订单
func (r *OrderRepository) ActiveByRoom(roomID string) (*AccommodationOrder, error) {
	var order AccommodationOrder
	err := r.db.Where("room_id = ? AND status = ?", roomID, OrderActive).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoActiveOrder, roomID)
		}
		return nil, fmt.Errorf("查询房间 %s 在住订单失败: %v", roomID, err)
	}
	return &order, nil
}

// ActiveByGuest 证件号对应的在住订单，用于挡重复入住
func (r *OrderRepository) ActiveByGuest(idCard string) (*AccommodationOrder, error) {
	var order AccommodationOrder
	err := r.db.Where("guest_id_card = ? AND status = ?", idCard, OrderActive).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveOrder
		}
		return nil, fmt.Errorf("查询住客订单失败: %v", err)
	}
	return &order, nil
}

// LatestByRoom 房间最近一张订单，含已完成的，供退房后补打详单
func (r *OrderRepository) LatestByRoom(roomID string) (*AccommodationOrder, error) {
	var order AccommodationOrder
	err := r.db.Where("room_id = ?", roomID).Order("checkin_time DESC").First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoActiveOrder, roomID)
		}
		return nil, fmt.Errorf("查询房间 %s 历史订单失败: %v", roomID, err)
	}
	return &order, nil
}

// Complete 关闭订单并写入最终房费
func (r *OrderRepository) Complete(orderID uint, at time.Time, roomFee decimal.Decimal) error {
	return r.db.Model(&AccommodationOrder{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"status":        OrderCompleted,
		"checkout_time": at,
		"room_fee":      roomFee,
	}).Error
}

// List 按状态过滤订单，status 为空返回全部
func (r *OrderRepository) List(status string) ([]AccommodationOrder, error) {
	query := r.db.Order("checkin_time DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []AccommodationOrder
	err := query.Find(&orders).Error
	return orders, err
}

// CountCheckinsBetween 统计时间段内的入住数
func (r *OrderRepository) CountCheckinsBetween(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&AccommodationOrder{}).
		Where("checkin_time BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return count, err
}
