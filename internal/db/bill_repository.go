package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrBillNotFound = errors.New("账单不存在")
	ErrBillPaid     = errors.New("账单已支付")
)

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(conn *gorm.DB) *BillRepository {
	return &BillRepository{db: conn}
}

// Create 创建账单
func (r *BillRepository) Create(bill *Bill) error {
	if err := r.db.Create(bill).Error; err != nil {
		return fmt.Errorf("创建账单失败: %v", err)
	}
	return nil
}

// GetByNo 按账单号查询
func (r *BillRepository) GetByNo(billNo string) (*Bill, error) {
	var bill Bill
	err := r.db.Where("bill_no = ?", billNo).First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBillNotFound, billNo)
		}
		return nil, fmt.Errorf("查询账单 %s 失败: %v", billNo, err)
	}
	return &bill, nil
}

// MarkPaid 标记账单已支付，重复支付报错
func (r *BillRepository) MarkPaid(billNo string) error {
	bill, err := r.GetByNo(billNo)
	if err != nil {
		return err
	}
	if bill.IsPaid {
		return fmt.Errorf("%w: %s", ErrBillPaid, billNo)
	}
	return r.db.Model(&Bill{}).Where("bill_no = ?", billNo).Update("is_paid", true).Error
}

// ListBetween 时间段内生成的账单
func (r *BillRepository) ListBetween(start, end time.Time) ([]Bill, error) {
	var bills []Bill
	err := r.db.Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at ASC").Find(&bills).Error
	return bills, err
}
