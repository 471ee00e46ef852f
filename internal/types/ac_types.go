// internal/types/ac_types.go

package types

import "fmt"

// Mode 空调工作模式
type Mode string

const (
	ModeCooling Mode = "cooling"
	ModeHeating Mode = "heating"
)

// FanSpeed 风速档位
type FanSpeed string

const (
	FanLow    FanSpeed = "low"
	FanMedium FanSpeed = "medium"
	FanHigh   FanSpeed = "high"
)

// Phase 房间空调所处的调度阶段
type Phase string

const (
	PhaseOff     Phase = "off"     // 关机
	PhaseServing Phase = "serving" // 送风服务中
	PhaseWaiting Phase = "waiting" // 排队等待服务
	PhaseStandby Phase = "standby" // 达到目标温度后待机
)

// Action 控制请求动作
type Action string

const (
	ActionPowerOn     Action = "power_on"
	ActionPowerOff    Action = "power_off"
	ActionChangeTemp  Action = "change_temp"
	ActionChangeSpeed Action = "change_speed"
)

// Priority 返回风速对应的调度优先级：低风1 < 中风2 < 高风3
func (s FanSpeed) Priority() int {
	switch s {
	case FanLow:
		return 1
	case FanMedium:
		return 2
	case FanHigh:
		return 3
	default:
		return 0
	}
}

func (s FanSpeed) Valid() bool {
	return s == FanLow || s == FanMedium || s == FanHigh
}

func (m Mode) Valid() bool {
	return m == ModeCooling || m == ModeHeating
}

func (p Phase) Valid() bool {
	return p == PhaseOff || p == PhaseServing || p == PhaseWaiting || p == PhaseStandby
}

func (a Action) Valid() bool {
	switch a {
	case ActionPowerOn, ActionPowerOff, ActionChangeTemp, ActionChangeSpeed:
		return true
	}
	return false
}

// ParseFanSpeed 解析风速字符串
func ParseFanSpeed(s string) (FanSpeed, error) {
	fs := FanSpeed(s)
	if !fs.Valid() {
		return "", fmt.Errorf("未知风速: %q", s)
	}
	return fs, nil
}

// ParseMode 解析模式字符串
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("未知模式: %q", s)
	}
	return m, nil
}

// ParseAction 解析动作字符串
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("未知操作: %q", s)
	}
	return a, nil
}
