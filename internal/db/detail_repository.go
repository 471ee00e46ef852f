// internal/db/detail_repository.go
package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrDetailNotFound = errors.New("详单不存在")

type DetailRepository struct {
	db *gorm.DB
}

func NewDetailRepository(conn *gorm.DB) *DetailRepository {
	return &DetailRepository{db: conn}
}

// Create 创建详单记录
func (r *DetailRepository) Create(record *DetailRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("创建详单失败: %v", err)
	}
	return nil
}

// GetByID 按详单号查询
func (r *DetailRepository) GetByID(recordID int64) (*DetailRecord, error) {
	var record DetailRecord
	err := r.db.Where("record_id = ?", recordID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrDetailNotFound, recordID)
		}
		return nil, fmt.Errorf("查询详单 %d 失败: %v", recordID, err)
	}
	return &record, nil
}

// Update 整条保存详单
func (r *DetailRepository) Update(record *DetailRecord) error {
	if err := r.db.Save(record).Error; err != nil {
		return fmt.Errorf("更新详单 %d 失败: %v", record.RecordID, err)
	}
	return nil
}

// ListByOrder 订单的全部详单，按开始时间排序
func (r *DetailRepository) ListByOrder(orderID uint) ([]DetailRecord, error) {
	var records []DetailRecord
	err := r.db.Where("order_id = ?", orderID).Order("start_time ASC").Find(&records).Error
	return records, err
}

// ListBetween 时间段内开始送风的全部详单
func (r *DetailRepository) ListBetween(start, end time.Time) ([]DetailRecord, error) {
	var records []DetailRecord
	err := r.db.Where("start_time BETWEEN ? AND ?", start, end).
		Order("start_time ASC").Find(&records).Error
	return records, err
}
