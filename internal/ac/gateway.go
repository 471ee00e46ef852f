// internal/ac/gateway.go

package ac

import (
	"fmt"

	"hotelac/internal/db"
	"hotelac/internal/logger"
	"hotelac/internal/scheduler"
	"hotelac/internal/types"
)

// Gateway 空调控制入口：把外部的字符串请求翻译成调度请求，
// 受理后把最新房态回写数据库镜像，供前台和报表直接查询。
type Gateway struct {
	sched *scheduler.Scheduler
	rooms *db.RoomRepository // 可为空，空则只调度不落镜像
}

// NewGateway 创建空调网关
func NewGateway(sched *scheduler.Scheduler, rooms *db.RoomRepository) *Gateway {
	return &Gateway{sched: sched, rooms: rooms}
}

// Submit 提交一次控制请求。字段解析失败按非法请求处理，
// 不会进入调度循环
func (g *Gateway) Submit(roomID, action string, targetTemp *float64, fanSpeed, mode string) (scheduler.SubmitResult, error) {
	act, err := types.ParseAction(action)
	if err != nil {
		return scheduler.SubmitResult{}, fmt.Errorf("%w: %v", scheduler.ErrInvalidRequest, err)
	}

	req := scheduler.Request{Action: act, TargetTemp: targetTemp}
	if fanSpeed != "" {
		fs, err := types.ParseFanSpeed(fanSpeed)
		if err != nil {
			return scheduler.SubmitResult{}, fmt.Errorf("%w: %v", scheduler.ErrInvalidRequest, err)
		}
		req.FanSpeed = fs
	}
	if mode != "" {
		m, err := types.ParseMode(mode)
		if err != nil {
			return scheduler.SubmitResult{}, fmt.Errorf("%w: %v", scheduler.ErrInvalidRequest, err)
		}
		req.Mode = m
	}

	result, err := g.sched.Submit(roomID, req)
	if err != nil {
		return result, err
	}
	g.syncRoom(roomID)
	return result, nil
}

// State 返回单个房间的实时空调状态
func (g *Gateway) State(roomID string) (scheduler.RoomView, error) {
	return g.sched.StateOf(roomID)
}

// Snapshot 返回全部房间的实时空调状态
func (g *Gateway) Snapshot() []scheduler.RoomView {
	return g.sched.Snapshot()
}

// Init 入住时把房间登记进调度器并刷新镜像
func (g *Gateway) Init(roomID string) {
	g.sched.InitRoom(roomID)
	g.syncRoom(roomID)
}

// Clear 退房时结清调度状态，返回结清前的最终读数。
// 镜像列随退房流程由房态仓库统一复位，这里不再回写
func (g *Gateway) Clear(roomID string) (scheduler.RoomView, error) {
	return g.sched.ClearRoom(roomID)
}

// SyncMirrors 把所有在册房间的实时状态批量回写镜像
func (g *Gateway) SyncMirrors() {
	if g.rooms == nil {
		return
	}
	for _, view := range g.sched.Snapshot() {
		g.writeMirror(view)
	}
}

func (g *Gateway) syncRoom(roomID string) {
	if g.rooms == nil {
		return
	}
	view, err := g.sched.StateOf(roomID)
	if err != nil {
		return
	}
	g.writeMirror(view)
}

func (g *Gateway) writeMirror(view scheduler.RoomView) {
	err := g.rooms.UpdateACMirror(view.RoomID, string(view.Phase), view.IsOn,
		string(view.Mode), string(view.FanSpeed),
		view.CurrentTemp, view.TargetTemp, view.EnergyConsumed, view.Cost)
	if err != nil {
		logger.Error("回写房间 %s 空调镜像失败: %v", view.RoomID, err)
	}
}
