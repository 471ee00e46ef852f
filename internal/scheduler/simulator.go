// internal/scheduler/simulator.go

package scheduler

import (
	"math"

	"github.com/shopspring/decimal"

	"hotelac/internal/types"
)

// 每个节拍推进一次温度与费用模拟：
// 送风中按风速变温计费，等待中完全冻结，关机/待机向环境温度回温。

func (s *Scheduler) simulateAll() {
	dtMin := s.cfg.TickInterval.D().Minutes()
	for _, room := range s.rooms {
		switch room.phase {
		case types.PhaseServing:
			s.simulateServing(room, dtMin)
		case types.PhaseWaiting:
			// 停止送风，等待期间的温漂忽略不计
		default:
			s.simulateDrift(room, dtMin)
		}
	}
}

// simulateServing 送风中的房间：尚未到达目标温度时变温并计费。
// 费用按扫过的温度计价，和耗电同一口径
func (s *Scheduler) simulateServing(room *roomState, dtMin float64) {
	delta := s.cfg.ChangeRate[room.fan] * dtMin
	power := s.cfg.FanPower[room.fan] * dtMin

	switch {
	case room.mode == types.ModeCooling && room.currentTemp > room.targetTemp:
		room.currentTemp -= delta
	case room.mode == types.ModeHeating && room.currentTemp < room.targetTemp:
		room.currentTemp += delta
	default:
		// 已在目标温度上，等节拍检查转入待机
		return
	}
	room.energy += power
	room.cost = room.cost.Add(decimal.NewFromFloat(power * s.cfg.PricePerDegree))
}

// simulateDrift 关机或待机的房间向环境温度回温，到达后停住
func (s *Scheduler) simulateDrift(room *roomState, dtMin float64) {
	ambient := s.cfg.InitialRoomTemp
	step := s.cfg.TempRestoreRate * dtMin
	switch {
	case room.currentTemp < ambient:
		room.currentTemp = math.Min(room.currentTemp+step, ambient)
	case room.currentTemp > ambient:
		room.currentTemp = math.Max(room.currentTemp-step, ambient)
	}
}
