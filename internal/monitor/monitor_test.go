package monitor

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"hotelac/internal/events"
	"hotelac/internal/logger"
	"hotelac/internal/scheduler"
	"hotelac/internal/types"
)

func TestMain(m *testing.M) {
	logger.SetLevel(logger.OffLevel)
	os.Exit(m.Run())
}

type fakeSource struct {
	mu    sync.Mutex
	views []scheduler.RoomView
	syncs int
}

func (f *fakeSource) Snapshot() []scheduler.RoomView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views
}

func (f *fakeSource) SyncMirrors() {
	f.mu.Lock()
	f.syncs++
	f.mu.Unlock()
}

func (f *fakeSource) syncCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs
}

func TestRefreshAggregatesPhases(t *testing.T) {
	source := &fakeSource{views: []scheduler.RoomView{
		{RoomID: "301", Phase: types.PhaseServing, ServiceDuration: 10},
		{RoomID: "302", Phase: types.PhaseServing, ServiceDuration: 20},
		{RoomID: "303", Phase: types.PhaseWaiting, RemainingWait: 60},
		{RoomID: "304", Phase: types.PhaseStandby},
		{RoomID: "305", Phase: types.PhaseOff},
	}}
	m := New(source, nil, time.Hour)
	m.refresh()

	metrics := m.Metrics()
	assert.Equal(t, 5, metrics.TotalRooms)
	assert.Equal(t, 2, metrics.Serving)
	assert.Equal(t, 1, metrics.Waiting)
	assert.Equal(t, 1, metrics.Standby)
	assert.Equal(t, 1, metrics.PoweredOff)
	assert.Equal(t, 15.0, metrics.AvgServiceSeconds)
	assert.Equal(t, 60.0, metrics.AvgWaitSeconds)
}

func TestMonitorCountsEvents(t *testing.T) {
	bus := events.NewBus()
	m := New(&fakeSource{}, bus, time.Hour)
	m.Start()
	defer m.Stop()

	bus.Publish(events.Event{Type: events.EventServiceStart, RoomID: "301"})
	bus.Publish(events.Event{Type: events.EventServiceStart, RoomID: "302"})
	bus.Publish(events.Event{Type: events.EventPreempted, RoomID: "303"})

	assert.Eventually(t, func() bool {
		return m.EventCount(events.EventServiceStart) == 2 &&
			m.EventCount(events.EventPreempted) == 1
	}, time.Second, 10*time.Millisecond)

	m.refresh()
	metrics := m.Metrics()
	assert.Equal(t, int64(2), metrics.EventCounts["ServiceStart"])
	assert.Equal(t, int64(1), metrics.EventCounts["Preempted"])
}

func TestMonitorLoopSyncsMirrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := &fakeSource{views: []scheduler.RoomView{{RoomID: "301", Phase: types.PhaseServing}}}
	m := New(source, nil, 10*time.Millisecond)
	m.Start()

	assert.Eventually(t, func() bool { return source.syncCount() >= 2 },
		time.Second, 10*time.Millisecond, "刷新循环应周期性回写镜像")

	m.Stop()
	m.Stop() // 幂等
}

func TestStopUnsubscribes(t *testing.T) {
	bus := events.NewBus()
	m := New(&fakeSource{}, bus, time.Hour)
	m.Start()

	bus.Publish(events.Event{Type: events.EventRotated, RoomID: "301"})
	assert.Eventually(t, func() bool { return m.EventCount(events.EventRotated) == 1 },
		time.Second, 10*time.Millisecond)

	m.Stop()
	bus.Publish(events.Event{Type: events.EventRotated, RoomID: "301"})
	assert.Never(t, func() bool { return m.EventCount(events.EventRotated) > 1 },
		100*time.Millisecond, 20*time.Millisecond, "停止后不应再计数")
}
