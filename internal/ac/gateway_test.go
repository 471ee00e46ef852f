package ac

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hotelac/internal/clock"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/logger"
	"hotelac/internal/scheduler"
)

func TestMain(m *testing.M) {
	logger.SetLevel(logger.OffLevel)
	os.Exit(m.Run())
}

type gatewayEnv struct {
	gw    *Gateway
	rooms *db.RoomRepository
	clk   *clock.Fake
}

func newGatewayEnv(t *testing.T) *gatewayEnv {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2025, 8, 25, 8, 0, 0, 0, time.UTC))
	cfg := config.Default().Scheduler
	sched := scheduler.New(cfg, clk, db.NewDetailRecorder(conn), nil)
	rooms := db.NewRoomRepository(conn)
	return &gatewayEnv{gw: NewGateway(sched, rooms), rooms: rooms, clk: clk}
}

func (e *gatewayEnv) mirror(t *testing.T, roomID string) *db.RoomInfo {
	t.Helper()
	room, err := e.rooms.GetByID(roomID)
	require.NoError(t, err)
	return room
}

func TestInitWritesMirror(t *testing.T) {
	env := newGatewayEnv(t)
	env.gw.Init("301")

	room := env.mirror(t, "301")
	assert.Equal(t, "off", room.ACPhase)
	assert.False(t, room.ACIsOn)
	assert.Equal(t, 28.0, room.CurrentTemp)
	assert.Equal(t, 25.0, room.TargetTemp)
}

func TestChangeTempRefreshesMirrorImmediately(t *testing.T) {
	env := newGatewayEnv(t)
	env.gw.Init("302")

	target := 22.0
	result, err := env.gw.Submit("302", "change_temp", &target, "", "")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)

	room := env.mirror(t, "302")
	assert.Equal(t, 22.0, room.TargetTemp)
	assert.Equal(t, "cooling", room.ACMode)
}

func TestSubmitRejectsBadFields(t *testing.T) {
	env := newGatewayEnv(t)
	env.gw.Init("301")

	_, err := env.gw.Submit("301", "self_destruct", nil, "", "")
	assert.True(t, errors.Is(err, scheduler.ErrInvalidRequest), "got %v", err)

	_, err = env.gw.Submit("301", "power_on", nil, "turbo", "")
	assert.True(t, errors.Is(err, scheduler.ErrInvalidRequest), "got %v", err)

	_, err = env.gw.Submit("301", "power_on", nil, "", "drying")
	assert.True(t, errors.Is(err, scheduler.ErrInvalidRequest), "got %v", err)

	_, err = env.gw.Submit("999", "power_on", nil, "", "")
	assert.True(t, errors.Is(err, scheduler.ErrUnknownRoom), "got %v", err)
}

func TestSyncMirrorsCoversAllRooms(t *testing.T) {
	env := newGatewayEnv(t)
	env.gw.Init("301")
	env.gw.Init("303")

	env.gw.SyncMirrors()

	for _, id := range []string{"301", "303"} {
		room := env.mirror(t, id)
		assert.Equal(t, "off", room.ACPhase, "房间 %s", id)
		assert.Equal(t, 28.0, room.CurrentTemp, "房间 %s", id)
	}
}

func TestClearRemovesRoomFromScheduling(t *testing.T) {
	env := newGatewayEnv(t)
	env.gw.Init("304")

	view, err := env.gw.Clear("304")
	require.NoError(t, err)
	assert.Equal(t, "304", view.RoomID)

	_, err = env.gw.State("304")
	assert.True(t, errors.Is(err, scheduler.ErrUnknownRoom))

	_, err = env.gw.Clear("304")
	assert.True(t, errors.Is(err, scheduler.ErrUnknownRoom))
}

// 走真实调度循环：开机请求过静默期后开始送风，
// 周期性镜像回写应能看到送风状态
func TestRunningLoopUpdatesMirrorViaSync(t *testing.T) {
	defer goleak.VerifyNone(t)

	conn, err := db.Open(":memory:")
	require.NoError(t, err)

	cfg := config.Default().Scheduler
	cfg.TickInterval = config.Duration(10 * time.Millisecond)
	cfg.DebounceWindow = config.Duration(10 * time.Millisecond)

	sched := scheduler.New(cfg, clock.System(), db.NewDetailRecorder(conn), nil)
	rooms := db.NewRoomRepository(conn)
	gw := NewGateway(sched, rooms)

	gw.Init("301")
	sched.Start()
	defer sched.Stop()

	_, err = gw.Submit("301", "power_on", nil, "high", "cooling")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		gw.SyncMirrors()
		room, err := rooms.GetByID("301")
		return err == nil && room.ACIsOn && room.ACPhase == "serving"
	}, 2*time.Second, 20*time.Millisecond, "开机后应进入送风并回写镜像")
}
