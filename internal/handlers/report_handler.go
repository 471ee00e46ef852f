// internal/handlers/report_handler.go

package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/internal/reports"
)

const dateLayout = "2006-01-02"

// ReportHandler 经营报表查询
type ReportHandler struct {
	reports *reports.Service
}

func NewReportHandler(svc *reports.Service) *ReportHandler {
	return &ReportHandler{reports: svc}
}

// Income 收入报表。?period=daily|weekly，?date=2006-01-02，缺省为当天日报
func (h *ReportHandler) Income(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondBindError(c, fmt.Errorf("日期格式应为 %s: %v", dateLayout, err))
			return
		}
		date = parsed
	}

	var (
		report *reports.IncomeReport
		err    error
	)
	switch period := c.DefaultQuery("period", "daily"); period {
	case "daily":
		report, err = h.reports.Daily(date)
	case "weekly":
		report, err = h.reports.Weekly(date)
	default:
		respondBindError(c, fmt.Errorf("无效的报表周期 %q，必须是 daily 或 weekly", period))
		return
	}

	if err != nil {
		respondErr(c, "获取报表失败", err)
		return
	}
	respondOK(c, "获取报表成功", report)
}

// Usage 空调用量报表。?start= 与 ?end= 必填，按日期闭区间统计
func (h *ReportHandler) Usage(c *gin.Context) {
	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw == "" || endRaw == "" {
		respondBindError(c, fmt.Errorf("start 与 end 参数必填，格式 %s", dateLayout))
		return
	}

	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		respondBindError(c, fmt.Errorf("无效的开始日期: %v", err))
		return
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		respondBindError(c, fmt.Errorf("无效的结束日期: %v", err))
		return
	}
	if end.Before(start) {
		respondBindError(c, fmt.Errorf("结束日期不能早于开始日期"))
		return
	}

	usage, err := h.reports.Usage(start, end.Add(24*time.Hour).Add(-time.Second))
	if err != nil {
		respondErr(c, "获取用量报表失败", err)
		return
	}
	respondOK(c, "查询成功", usage)
}
