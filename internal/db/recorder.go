package db

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hotelac/internal/logger"
	"hotelac/internal/types"
)

// DetailRecorder 基于 GORM 的详单记录器，供调度器在服务段起止时调用。
// Open 时自动关联房间当前的在住订单；Close 幂等，重复结算只记日志
type DetailRecorder struct {
	details *DetailRepository
	orders  *OrderRepository
}

func NewDetailRecorder(conn *gorm.DB) *DetailRecorder {
	return &DetailRecorder{
		details: NewDetailRepository(conn),
		orders:  NewOrderRepository(conn),
	}
}

// Open 打开一段送风详单，返回详单号
func (r *DetailRecorder) Open(roomID string, at time.Time, startTemp, targetTemp float64, fan types.FanSpeed, mode types.Mode) (int64, error) {
	record := &DetailRecord{
		RoomID:     roomID,
		StartTime:  at,
		StartTemp:  startTemp,
		TargetTemp: targetTemp,
		FanSpeed:   string(fan),
		Mode:       string(mode),
		Cost:       decimal.Zero,
	}
	order, err := r.orders.ActiveByRoom(roomID)
	switch {
	case err == nil:
		record.OrderID = &order.ID
	case errors.Is(err, ErrNoActiveOrder):
		// 没有订单也照记，详单挂在房间名下
	default:
		return 0, err
	}

	if err := r.details.Create(record); err != nil {
		return 0, err
	}
	return record.RecordID, nil
}

// Close 结算详单：写入结束时刻、结束温度和本段的耗电与费用
func (r *DetailRecorder) Close(recordID int64, at time.Time, endTemp, energy float64, cost decimal.Decimal) error {
	record, err := r.details.GetByID(recordID)
	if errors.Is(err, ErrDetailNotFound) {
		logger.Warn("结算的详单 %d 不存在, 忽略", recordID)
		return nil
	}
	if err != nil {
		return err
	}
	if record.EndTime != nil {
		logger.Warn("详单 %d 已经结算过, 忽略重复结算", recordID)
		return nil
	}

	record.EndTime = &at
	record.EndTemp = &endTemp
	record.Energy = energy
	record.Cost = cost
	return r.details.Update(record)
}
