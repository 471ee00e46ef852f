// internal/reports/service.go

package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hotelac/internal/db"
)

const dateLayout = "2006-01-02"

// Service 经营报表：按账单统计收入，按详单统计空调用量
type Service struct {
	orders  *db.OrderRepository
	details *db.DetailRepository
	bills   *db.BillRepository
}

// NewService 创建报表服务
func NewService(conn *gorm.DB) *Service {
	return &Service{
		orders:  db.NewOrderRepository(conn),
		details: db.NewDetailRepository(conn),
		bills:   db.NewBillRepository(conn),
	}
}

// IncomeReport 一段时间的经营汇总
type IncomeReport struct {
	ReportType    string  `json:"report_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalCheckins int64   `json:"total_checkins"`
	BillCount     int     `json:"bill_count"`
	PaidBills     int     `json:"paid_bills"`
	RoomIncome    float64 `json:"room_income"`
	ACIncome      float64 `json:"ac_income"`
	TotalIncome   float64 `json:"total_income"`
}

// RoomUsage 单个房间的空调用量汇总
type RoomUsage struct {
	RoomID       string  `json:"room_id"`
	SegmentCount int     `json:"segment_count"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalEnergy  float64 `json:"total_energy"`
	TotalCost    float64 `json:"total_cost"`
}

// Daily 指定日期的日报
func (s *Service) Daily(date time.Time) (*IncomeReport, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(24 * time.Hour).Add(-time.Second)
	return s.aggregate("daily", start, end)
}

// Weekly 指定日期所在周的周报，周一起算
func (s *Service) Weekly(date time.Time) (*IncomeReport, error) {
	offset := int(date.Weekday())
	if offset == 0 {
		offset = 7
	}
	monday := date.AddDate(0, 0, -offset+1)
	start := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, date.Location())
	end := start.Add(7 * 24 * time.Hour).Add(-time.Second)
	return s.aggregate("weekly", start, end)
}

func (s *Service) aggregate(reportType string, start, end time.Time) (*IncomeReport, error) {
	checkins, err := s.orders.CountCheckinsBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("统计入住数失败: %v", err)
	}
	bills, err := s.bills.ListBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("统计账单失败: %v", err)
	}

	roomIncome, acIncome := decimal.Zero, decimal.Zero
	paid := 0
	for _, bill := range bills {
		roomIncome = roomIncome.Add(bill.RoomFee)
		acIncome = acIncome.Add(bill.ACFee)
		if bill.IsPaid {
			paid++
		}
	}

	return &IncomeReport{
		ReportType:    reportType,
		StartDate:     start.Format(dateLayout),
		EndDate:       end.Format(dateLayout),
		TotalCheckins: checkins,
		BillCount:     len(bills),
		PaidBills:     paid,
		RoomIncome:    roomIncome.InexactFloat64(),
		ACIncome:      acIncome.InexactFloat64(),
		TotalIncome:   roomIncome.Add(acIncome).InexactFloat64(),
	}, nil
}

// Usage 时间段内按房间汇总的空调用量，只计已结详单
func (s *Service) Usage(start, end time.Time) ([]RoomUsage, error) {
	records, err := s.details.ListBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("统计详单失败: %v", err)
	}

	byRoom := make(map[string]*RoomUsage)
	for _, rec := range records {
		if rec.EndTime == nil {
			continue
		}
		usage, ok := byRoom[rec.RoomID]
		if !ok {
			usage = &RoomUsage{RoomID: rec.RoomID}
			byRoom[rec.RoomID] = usage
		}
		usage.SegmentCount++
		usage.TotalMinutes += rec.EndTime.Sub(rec.StartTime).Minutes()
		usage.TotalEnergy += rec.Energy
		usage.TotalCost += rec.Cost.InexactFloat64()
	}

	result := make([]RoomUsage, 0, len(byRoom))
	for _, usage := range byRoom {
		result = append(result, *usage)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RoomID < result[j].RoomID })
	return result, nil
}
