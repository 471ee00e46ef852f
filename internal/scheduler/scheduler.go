// internal/scheduler/scheduler.go

package scheduler

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hotelac/internal/clock"
	"hotelac/internal/config"
	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/metrics"
	"hotelac/internal/types"
)

var (
	ErrUnknownRoom    = errors.New("房间未初始化")
	ErrInvalidRequest = errors.New("请求不合法")
)

// 目标温度的全局合理范围，超出直接拒绝；带内收敛见 ClampTarget
const (
	saneTempMin = -40.0
	saneTempMax = 60.0
)

// Scheduler 中央空调调度器。一个调度 goroutine 独占全部状态写入：
// 服务队列、等待队列和房间状态只在节拍内变更。外部提交只把请求放进
// 待处理表（调温例外，持状态锁立即生效），查询走读锁拿快照。
type Scheduler struct {
	cfg config.SchedulerConfig
	clk clock.Clock
	rec Recorder
	bus *events.Bus

	mu           sync.RWMutex
	rooms        map[string]*roomState
	serviceQueue map[string]*roomState
	waitQueue    map[string]*roomState

	pendMu     sync.Mutex
	pending    map[string]*pendingRequest
	lastSubmit map[string]time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New 创建调度器。bus 可以为 nil，此时不发调度事件
func New(cfg config.SchedulerConfig, clk clock.Clock, rec Recorder, bus *events.Bus) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		clk:          clk,
		rec:          rec,
		bus:          bus,
		rooms:        make(map[string]*roomState),
		serviceQueue: make(map[string]*roomState),
		waitQueue:    make(map[string]*roomState),
		pending:      make(map[string]*pendingRequest),
		lastSubmit:   make(map[string]time.Time),
		stopChan:     make(chan struct{}),
	}
}

// Start 启动调度循环
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()
	logger.Info("调度器已启动: 服务上限=%d 时间片=%v 节拍=%v",
		s.cfg.MaxServiceSlots, s.cfg.WaitTimeSlice.D(), s.cfg.TickInterval.D())
}

// Stop 停止调度循环，正在执行的节拍会先完成
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	logger.Info("调度器已停止")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()
	for {
		s.clk.Sleep(s.cfg.TickInterval.D())
		select {
		case <-s.stopChan:
			return
		default:
		}
		s.tick()
	}
}

// Submit 提交控制请求。调温立即生效；其余动作进入待处理表，
// 静默期内对同一房间的重复提交彼此覆盖，只有最后一条生效
func (s *Scheduler) Submit(roomID string, req Request) (SubmitResult, error) {
	if err := s.validate(roomID, &req); err != nil {
		metrics.Requests.WithLabelValues(string(req.Action), "rejected").Inc()
		return SubmitResult{}, err
	}

	if req.Action == types.ActionChangeTemp {
		s.mu.Lock()
		if room, ok := s.rooms[roomID]; ok {
			s.applyChangeTemp(room, *req.TargetTemp, req.Mode)
		}
		s.mu.Unlock()
		metrics.Requests.WithLabelValues(string(req.Action), "applied").Inc()
		return SubmitResult{Status: "success", Message: "温度调节请求已处理"}, nil
	}

	now := s.clk.Now()
	s.pendMu.Lock()
	last, seen := s.lastSubmit[roomID]
	coalesced := seen && now.Sub(last) < s.cfg.DebounceWindow.D()
	s.pending[roomID] = &pendingRequest{roomID: roomID, req: req, submittedAt: now}
	s.lastSubmit[roomID] = now
	s.pendMu.Unlock()

	if coalesced {
		metrics.Requests.WithLabelValues(string(req.Action), "coalesced").Inc()
		return SubmitResult{Status: "pending", Message: "请求已更新，等待处理"}, nil
	}
	metrics.Requests.WithLabelValues(string(req.Action), "accepted").Inc()
	return SubmitResult{Status: "success", Message: "请求已受理"}, nil
}

// validate 校验请求并补齐缺省参数
func (s *Scheduler) validate(roomID string, req *Request) error {
	if !req.Action.Valid() {
		return fmt.Errorf("%w: 未知动作 %q", ErrInvalidRequest, req.Action)
	}
	switch req.Action {
	case types.ActionPowerOn:
		if req.FanSpeed == "" {
			req.FanSpeed = types.FanMedium
		}
		if req.Mode == "" {
			req.Mode = types.ModeCooling
		}
		if req.TargetTemp == nil {
			t := s.cfg.DefaultTemp
			req.TargetTemp = &t
		}
	case types.ActionChangeTemp:
		if req.TargetTemp == nil {
			return fmt.Errorf("%w: 调温请求缺少目标温度", ErrInvalidRequest)
		}
		if req.Mode == "" {
			req.Mode = types.ModeCooling
		}
	case types.ActionChangeSpeed:
		if req.FanSpeed == "" {
			return fmt.Errorf("%w: 调风请求缺少风速", ErrInvalidRequest)
		}
	}
	if req.FanSpeed != "" && !req.FanSpeed.Valid() {
		return fmt.Errorf("%w: 未知风速 %q", ErrInvalidRequest, req.FanSpeed)
	}
	if req.Mode != "" && !req.Mode.Valid() {
		return fmt.Errorf("%w: 未知模式 %q", ErrInvalidRequest, req.Mode)
	}
	if req.TargetTemp != nil {
		t := *req.TargetTemp
		if math.IsNaN(t) || t < saneTempMin || t > saneTempMax {
			return fmt.Errorf("%w: 目标温度 %.1f 超出合理范围", ErrInvalidRequest, t)
		}
	}

	s.mu.RLock()
	_, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
	}
	return nil
}

// InitRoom 入住时初始化房间：关机、环境温度、缺省目标温度、
// 中风制冷、累计清零。重复初始化会先结清已打开的详单
func (s *Scheduler) InitRoom(roomID string) {
	now := s.clk.Now()

	s.mu.Lock()
	if old, ok := s.rooms[roomID]; ok {
		s.closeRecord(old, now)
		delete(s.serviceQueue, roomID)
		delete(s.waitQueue, roomID)
	}
	s.rooms[roomID] = &roomState{
		roomID:         roomID,
		phase:          types.PhaseOff,
		mode:           types.ModeCooling,
		fan:            types.FanMedium,
		currentTemp:    s.cfg.InitialRoomTemp,
		targetTemp:     s.cfg.DefaultTemp,
		cost:           decimal.Zero,
		phaseEnteredAt: now,
	}
	s.mu.Unlock()

	// 上一次入住遗留的请求作废
	s.pendMu.Lock()
	delete(s.pending, roomID)
	delete(s.lastSubmit, roomID)
	s.pendMu.Unlock()

	logger.Info("房间 %s 空调状态已初始化", roomID)
}

// ClearRoom 退房时结清并移除房间，返回最终状态快照。
// 打开中的详单在这里收尾，让出的服务槽立即补位
func (s *Scheduler) ClearRoom(roomID string) (RoomView, error) {
	now := s.clk.Now()

	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return RoomView{}, fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
	}
	view := s.viewOf(room, now)
	s.closeRecord(room, now)
	wasServing := room.phase == types.PhaseServing
	delete(s.serviceQueue, roomID)
	delete(s.waitQueue, roomID)
	delete(s.rooms, roomID)
	if wasServing {
		s.admitFromWait(now)
	}
	s.mu.Unlock()

	s.pendMu.Lock()
	delete(s.pending, roomID)
	delete(s.lastSubmit, roomID)
	s.pendMu.Unlock()

	s.publish(events.EventServiceStop, roomID, "退房结清")
	logger.Info("房间 %s 已退房结清, 空调费用 %.2f 元", roomID, view.Cost)
	return view, nil
}

// StateOf 查询单个房间的状态快照
func (s *Scheduler) StateOf(roomID string) (RoomView, error) {
	now := s.clk.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return RoomView{}, fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
	}
	return s.viewOf(room, now), nil
}

// Snapshot 查询全部房间的状态快照，按房间号排序
func (s *Scheduler) Snapshot() []RoomView {
	now := s.clk.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]RoomView, 0, len(s.rooms))
	for _, room := range sortByID(s.rooms) {
		views = append(views, s.viewOf(room, now))
	}
	return views
}

// viewOf 生成只读快照。温度保留一位小数、耗电两位，与前端展示一致
func (s *Scheduler) viewOf(r *roomState, now time.Time) RoomView {
	v := RoomView{
		RoomID:         r.roomID,
		IsOn:           r.phase != types.PhaseOff,
		Phase:          r.phase,
		CurrentTemp:    math.Round(r.currentTemp*10) / 10,
		TargetTemp:     r.targetTemp,
		FanSpeed:       r.fan,
		Mode:           r.mode,
		EnergyConsumed: math.Round(r.energy*100) / 100,
		Cost:           r.cost.InexactFloat64(),
	}
	switch r.phase {
	case types.PhaseServing:
		v.ServiceDuration = now.Sub(r.phaseEnteredAt).Seconds()
	case types.PhaseWaiting:
		if rem := r.waitDeadline.Sub(now); rem > 0 {
			v.RemainingWait = rem.Seconds()
		}
	}
	return v
}

// tick 执行一个调度节拍。整个节拍持有状态锁，所有房间看到同一个 now
func (s *Scheduler) tick() {
	now := s.clk.Now()
	due := s.takeDue(now)

	s.mu.Lock()
	for _, p := range due {
		if _, ok := s.rooms[p.roomID]; !ok {
			continue // 提交后已退房
		}
		s.handleRequest(p.roomID, p.req, now)
	}
	s.simulateAll()
	s.settleReachedTargets(now)
	s.rotateTimeSlices(now)
	s.restartDrifted(now)
	s.admitFromWait(now)
	s.verifyInvariants(now)
	metrics.ServiceRooms.Set(float64(len(s.serviceQueue)))
	metrics.WaitingRooms.Set(float64(len(s.waitQueue)))
	s.mu.Unlock()

	metrics.TickDuration.Observe(s.clk.Now().Sub(now).Seconds())
}

// takeDue 取出静默期已过的待处理请求，按到期先后、房间号排序
func (s *Scheduler) takeDue(now time.Time) []*pendingRequest {
	s.pendMu.Lock()
	defer s.pendMu.Unlock()

	var due []*pendingRequest
	for id, p := range s.pending {
		if now.Sub(p.submittedAt) >= s.cfg.DebounceWindow.D() {
			due = append(due, p)
			delete(s.pending, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].submittedAt.Equal(due[j].submittedAt) {
			return due[i].submittedAt.Before(due[j].submittedAt)
		}
		return due[i].roomID < due[j].roomID
	})
	return due
}

func (s *Scheduler) handleRequest(roomID string, req Request, now time.Time) {
	switch req.Action {
	case types.ActionPowerOn:
		s.handlePowerOn(roomID, req, now)
	case types.ActionPowerOff:
		s.handlePowerOff(roomID, now)
	case types.ActionChangeTemp:
		s.applyChangeTemp(s.rooms[roomID], *req.TargetTemp, req.Mode)
	case types.ActionChangeSpeed:
		s.handleChangeSpeed(roomID, req.FanSpeed, now)
	}
}

// handlePowerOn 开机。已开机的房间视为参数变更：服务中要结段重开详单，
// 等待中升了优先级还会立刻尝试抢占
func (s *Scheduler) handlePowerOn(roomID string, req Request, now time.Time) {
	room := s.rooms[roomID]
	target := s.cfg.ClampTarget(req.Mode, *req.TargetTemp)

	switch room.phase {
	case types.PhaseServing:
		s.closeRecord(room, now)
		room.targetTemp, room.fan, room.mode = target, req.FanSpeed, req.Mode
		s.openRecord(room, now)
		logger.Info("房间 %s 服务参数变更: 目标 %.1f°C 风速 %s 模式 %s", roomID, target, req.FanSpeed, req.Mode)
		return
	case types.PhaseWaiting:
		oldPriority := room.priority()
		room.targetTemp, room.fan, room.mode = target, req.FanSpeed, req.Mode
		if room.priority() > oldPriority {
			s.tryPreemptFromWait(room, now)
		}
		return
	}

	room.targetTemp, room.fan, room.mode = target, req.FanSpeed, req.Mode
	if len(s.serviceQueue) < s.cfg.MaxServiceSlots {
		s.promote(room, now, "直接分配")
		return
	}
	if victim := s.lowestPriorityVictim(room.priority(), now); victim != nil {
		s.demote(victim, now, events.EventPreempted, fmt.Sprintf("被房间 %s 抢占", roomID))
		metrics.Preemptions.Inc()
		s.promote(room, now, "优先级抢占")
		return
	}
	s.park(room, now)
}

// handlePowerOff 关机。服务中的房间结清详单并让出槽位，立即补位
func (s *Scheduler) handlePowerOff(roomID string, now time.Time) {
	room := s.rooms[roomID]
	switch room.phase {
	case types.PhaseServing:
		s.closeRecord(room, now)
		delete(s.serviceQueue, roomID)
		room.phase = types.PhaseOff
		room.phaseEnteredAt = now
		s.publish(events.EventServiceStop, roomID, "关机")
		s.admitFromWait(now)
	case types.PhaseWaiting:
		delete(s.waitQueue, roomID)
		room.phase = types.PhaseOff
		room.phaseEnteredAt = now
	default:
		if room.phase != types.PhaseOff {
			room.phase = types.PhaseOff
			room.phaseEnteredAt = now
		}
	}
	room.waitDeadline = time.Time{}
	logger.Info("房间 %s 空调已关机", roomID)
}

// applyChangeTemp 调温立即生效：只改目标温度和模式，
// 不碰队列也不碰详单，房间不会因此失去服务资格
func (s *Scheduler) applyChangeTemp(room *roomState, target float64, mode types.Mode) {
	room.mode = mode
	room.targetTemp = s.cfg.ClampTarget(mode, target)
	logger.Info("房间 %s 目标温度调整为 %.1f°C (%s)", room.roomID, room.targetTemp, mode)
}

// handleChangeSpeed 调风。风速决定计费档位，服务中要结段重开详单；
// 等待中的房间升档后可以抢占更低优先级的服务对象
func (s *Scheduler) handleChangeSpeed(roomID string, fan types.FanSpeed, now time.Time) {
	room := s.rooms[roomID]
	switch room.phase {
	case types.PhaseServing:
		s.closeRecord(room, now)
		room.fan = fan
		s.openRecord(room, now)
		logger.Info("房间 %s 风速调整为 %s, 详单换段", roomID, fan)
	case types.PhaseWaiting:
		room.fan = fan
		s.tryPreemptFromWait(room, now)
	default:
		room.fan = fan
	}
}

// tryPreemptFromWait 等待中的房间优先级提升后尝试抢占低优先级服务；
// 没有可抢占对象时保持原时间片继续等
func (s *Scheduler) tryPreemptFromWait(room *roomState, now time.Time) {
	victim := s.lowestPriorityVictim(room.priority(), now)
	if victim == nil {
		return
	}
	s.demote(victim, now, events.EventPreempted, fmt.Sprintf("被房间 %s 抢占", room.roomID))
	metrics.Preemptions.Inc()
	s.promote(room, now, "优先级抢占")
}

// lowestPriorityVictim 在服务队列里找优先级严格低于 prio 的牺牲者：
// 取优先级最低者，同级取服务最久者，再同取房间号最小者
func (s *Scheduler) lowestPriorityVictim(prio int, now time.Time) *roomState {
	var victim *roomState
	for _, cand := range sortByID(s.serviceQueue) {
		if cand.priority() >= prio {
			continue
		}
		if victim == nil {
			victim = cand
			continue
		}
		if cand.priority() < victim.priority() ||
			(cand.priority() == victim.priority() && cand.serviceDuration(now) > victim.serviceDuration(now)) {
			victim = cand
		}
	}
	return victim
}

// promote 将房间纳入服务队列并打开新详单
func (s *Scheduler) promote(room *roomState, now time.Time, why string) {
	delete(s.waitQueue, room.roomID)
	room.phase = types.PhaseServing
	room.phaseEnteredAt = now
	room.waitDeadline = time.Time{}
	s.serviceQueue[room.roomID] = room
	s.openRecord(room, now)
	s.publish(events.EventServiceStart, room.roomID, why)
	logger.Info("房间 %s 开始送风(%s): 目标 %.1f°C 风速 %s", room.roomID, why, room.targetTemp, room.fan)
}

// demote 将服务中的房间换出到等待队列，温度和费用累计保留
func (s *Scheduler) demote(room *roomState, now time.Time, evType events.EventType, why string) {
	s.closeRecord(room, now)
	delete(s.serviceQueue, room.roomID)
	room.phase = types.PhaseWaiting
	room.phaseEnteredAt = now
	room.waitDeadline = now.Add(s.cfg.WaitTimeSlice.D())
	s.waitQueue[room.roomID] = room
	s.publish(evType, room.roomID, why)
	logger.Info("房间 %s 暂停送风(%s), 已计费用 %.2f 元保留", room.roomID, why, room.cost.InexactFloat64())
}

// park 服务队列已满且无人可抢占时，新请求挂入等待队列
func (s *Scheduler) park(room *roomState, now time.Time) {
	room.phase = types.PhaseWaiting
	room.phaseEnteredAt = now
	room.waitDeadline = now.Add(s.cfg.WaitTimeSlice.D())
	s.waitQueue[room.roomID] = room
	s.publish(events.EventEnterWait, room.roomID, "")
	logger.Info("房间 %s 进入等待队列, 时间片 %v", room.roomID, s.cfg.WaitTimeSlice.D())
}

// settleReachedTargets 达到目标温度的服务对象转入待机并释放槽位
func (s *Scheduler) settleReachedTargets(now time.Time) {
	for _, room := range sortByID(s.serviceQueue) {
		reached := (room.mode == types.ModeCooling && room.currentTemp <= room.targetTemp) ||
			(room.mode == types.ModeHeating && room.currentTemp >= room.targetTemp)
		if !reached {
			continue
		}
		s.closeRecord(room, now)
		delete(s.serviceQueue, room.roomID)
		room.phase = types.PhaseStandby
		room.phaseEnteredAt = now
		s.publish(events.EventTargetReached, room.roomID, "")
		logger.Info("房间 %s 达到目标温度 %.1f°C, 转入待机", room.roomID, room.targetTemp)
		s.admitFromWait(now)
	}
}

// rotateTimeSlices 时间片轮转。等满一个时间片的等待者换出服务最久的
// 同级或低级服务对象；每个等待者每节拍至多换入一次
func (s *Scheduler) rotateTimeSlices(now time.Time) {
	if len(s.serviceQueue) < s.cfg.MaxServiceSlots {
		return // 有空位时直接走补位，不用换出任何人
	}

	var expired []*roomState
	for _, w := range sortByID(s.waitQueue) {
		if !w.waitDeadline.After(now) {
			expired = append(expired, w)
		}
	}
	// 高优先级先轮换，同级先到期者（等得最久）优先
	sort.SliceStable(expired, func(i, j int) bool {
		if expired[i].priority() != expired[j].priority() {
			return expired[i].priority() > expired[j].priority()
		}
		return expired[i].waitDeadline.Before(expired[j].waitDeadline)
	})

	for _, waiter := range expired {
		if waiter.phase != types.PhaseWaiting {
			continue // 本节拍已被换入
		}
		victim := s.rotationVictim(waiter, now)
		if victim == nil {
			continue
		}
		s.demote(victim, now, events.EventRotated, fmt.Sprintf("时间片轮换给房间 %s", waiter.roomID))
		metrics.Rotations.Inc()
		s.promote(waiter, now, "时间片轮换")
	}
}

// rotationVictim 为到期等待者找换出对象：只考虑优先级不高于等待者的
// 服务对象，取服务最久者；同长取优先级更低者，再同取房间号最小者
func (s *Scheduler) rotationVictim(waiter *roomState, now time.Time) *roomState {
	var victim *roomState
	for _, cand := range sortByID(s.serviceQueue) {
		if cand.priority() > waiter.priority() {
			continue
		}
		if victim == nil {
			victim = cand
			continue
		}
		cd, vd := cand.serviceDuration(now), victim.serviceDuration(now)
		if cd > vd || (cd == vd && cand.priority() < victim.priority()) {
			victim = cand
		}
	}
	return victim
}

// restartDrifted 待机房间回温超过阈值后用记住的参数自动重新开机。
// 走待处理表，和外部请求一样防抖；不覆盖房间已有的外部请求
func (s *Scheduler) restartDrifted(now time.Time) {
	for _, room := range sortByID(s.rooms) {
		if room.phase != types.PhaseStandby {
			continue
		}
		drifted := (room.mode == types.ModeCooling && room.currentTemp > room.targetTemp+s.cfg.TempThreshold) ||
			(room.mode == types.ModeHeating && room.currentTemp < room.targetTemp-s.cfg.TempThreshold)
		if !drifted {
			continue
		}

		target := room.targetTemp
		req := Request{Action: types.ActionPowerOn, TargetTemp: &target, FanSpeed: room.fan, Mode: room.mode}
		s.pendMu.Lock()
		_, exists := s.pending[room.roomID]
		if !exists {
			s.pending[room.roomID] = &pendingRequest{roomID: room.roomID, req: req, submittedAt: now}
			s.lastSubmit[room.roomID] = now
		}
		s.pendMu.Unlock()
		if exists {
			continue
		}
		s.publish(events.EventDriftRestart, room.roomID, "")
		logger.Info("房间 %s 待机回温至 %.1f°C 超过阈值(目标 %.1f°C), 自动申请送风",
			room.roomID, room.currentTemp, room.targetTemp)
	}
}

// admitFromWait 服务队列有空位时依次提拔最优等待者：优先级高者先进，
// 同级先到期者先进，再同比进入等待的时刻
func (s *Scheduler) admitFromWait(now time.Time) {
	for len(s.serviceQueue) < s.cfg.MaxServiceSlots && len(s.waitQueue) > 0 {
		var best *roomState
		for _, cand := range sortByID(s.waitQueue) {
			if best == nil || waitsBefore(cand, best) {
				best = cand
			}
		}
		s.promote(best, now, "等待队列补位")
	}
}

// waitsBefore 等待队列的出队顺序
func waitsBefore(a, b *roomState) bool {
	if a.priority() != b.priority() {
		return a.priority() > b.priority()
	}
	if !a.waitDeadline.Equal(b.waitDeadline) {
		return a.waitDeadline.Before(b.waitDeadline)
	}
	return a.phaseEnteredAt.Before(b.phaseEnteredAt)
}

// openRecord 为新服务段打开详单并记下累计基数。失败只计数、记日志，
// 本段照常送风计费，账面上缺这一段详单
func (s *Scheduler) openRecord(room *roomState, now time.Time) {
	id, err := s.rec.Open(room.roomID, now, room.currentTemp, room.targetTemp, room.fan, room.mode)
	if err != nil {
		room.recordID = 0
		metrics.RecordFailures.Inc()
		s.publish(events.EventRecordFailure, room.roomID, err.Error())
		logger.Error("房间 %s 详单创建失败: %v", room.roomID, err)
		return
	}
	room.recordID = id
	room.recordBaseEnergy = room.energy
	room.recordBaseCost = room.cost
}

// closeRecord 结清当前详单：写入本段（而非累计）的耗电与费用。
// 没有打开的详单时直接返回
func (s *Scheduler) closeRecord(room *roomState, now time.Time) {
	if room.recordID == 0 {
		return
	}
	segEnergy := room.energy - room.recordBaseEnergy
	segCost := room.cost.Sub(room.recordBaseCost)
	if err := s.rec.Close(room.recordID, now, room.currentTemp, segEnergy, segCost); err != nil {
		metrics.RecordFailures.Inc()
		s.publish(events.EventRecordFailure, room.roomID, err.Error())
		logger.Error("房间 %s 详单 %d 结算失败: %v", room.roomID, room.recordID, err)
	}
	room.recordID = 0
}

// verifyInvariants 节拍末尾自检：服务数不超上限、两队列不相交。
// 发现破坏时记错误日志并尽力修复，冲突保留服务侧
func (s *Scheduler) verifyInvariants(now time.Time) {
	for id, room := range s.waitQueue {
		if _, dup := s.serviceQueue[id]; dup {
			logger.Error("调度状态异常: 房间 %s 同时在服务和等待队列, 保留服务侧", id)
			delete(s.waitQueue, id)
			room.phase = types.PhaseServing
		}
	}
	for len(s.serviceQueue) > s.cfg.MaxServiceSlots {
		logger.Error("调度状态异常: 服务队列 %d 超出上限 %d, 换出多余对象",
			len(s.serviceQueue), s.cfg.MaxServiceSlots)
		victim := s.lowestPriorityVictim(types.FanHigh.Priority()+1, now)
		if victim == nil {
			return
		}
		s.demote(victim, now, events.EventPreempted, "超限修复")
	}
}

func (s *Scheduler) publish(t events.EventType, roomID, detail string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{Type: t, RoomID: roomID, Timestamp: s.clk.Now(), Detail: detail})
}

func sortByID(m map[string]*roomState) []*roomState {
	out := make([]*roomState, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].roomID < out[j].roomID })
	return out
}
