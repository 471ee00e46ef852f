// internal/scheduler/types.go

package scheduler

import (
	"time"

	"github.com/shopspring/decimal"

	"hotelac/internal/types"
)

// Request 一次控制请求。除调温外的动作先落入待处理表，
// 静默期过后由调度循环统一受理
type Request struct {
	Action     types.Action
	TargetTemp *float64       // 开机/调温使用，nil 表示采用缺省温度
	FanSpeed   types.FanSpeed // 开机/调风使用
	Mode       types.Mode     // 开机/调温使用
}

// pendingRequest 待处理表中的表项，同一房间只保留最后一条
type pendingRequest struct {
	roomID      string
	req         Request
	submittedAt time.Time
}

// SubmitResult 提交结果。success 表示请求已受理，
// pending 表示覆盖了静默期内的前一条请求
type SubmitResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// roomState 房间空调的权威状态，只由调度循环修改
type roomState struct {
	roomID      string
	phase       types.Phase
	mode        types.Mode
	fan         types.FanSpeed
	currentTemp float64
	targetTemp  float64

	energy float64         // 本次入住累计耗电（度）
	cost   decimal.Decimal // 本次入住累计费用，十进制精确累加

	phaseEnteredAt time.Time // 最近一次阶段切换时刻
	waitDeadline   time.Time // 等待时间片到期时刻，仅等待阶段有效

	// 打开中的详单与打开时刻的累计基数，结算时求差得到本段消耗
	recordID         int64
	recordBaseEnergy float64
	recordBaseCost   decimal.Decimal
}

func (r *roomState) priority() int { return r.fan.Priority() }

// serviceDuration 本次送风服务已持续的时长
func (r *roomState) serviceDuration(now time.Time) time.Duration {
	if r.phase != types.PhaseServing {
		return 0
	}
	return now.Sub(r.phaseEnteredAt)
}

// RoomView 房间状态的只读快照，供查询接口返回
type RoomView struct {
	RoomID          string         `json:"room_id"`
	IsOn            bool           `json:"is_on"`
	Phase           types.Phase    `json:"status"`
	CurrentTemp     float64        `json:"current_temp"`
	TargetTemp      float64        `json:"target_temp"`
	FanSpeed        types.FanSpeed `json:"fan_speed"`
	Mode            types.Mode     `json:"mode"`
	EnergyConsumed  float64        `json:"energy_consumed"`
	Cost            float64        `json:"cost"`
	ServiceDuration float64        `json:"service_duration,omitempty"` // 秒，仅服务中
	RemainingWait   float64        `json:"remaining_wait,omitempty"`   // 秒，仅等待中
}

// Recorder 详单记录器。调度器在服务段的起止时刻调用；
// 持久化失败只记日志，不回滚调度状态
type Recorder interface {
	Open(roomID string, at time.Time, startTemp, targetTemp float64, fan types.FanSpeed, mode types.Mode) (int64, error)
	Close(recordID int64, at time.Time, endTemp, energy float64, cost decimal.Decimal) error
}
