package billing

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotelac/internal/ac"
	"hotelac/internal/clock"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/logger"
	"hotelac/internal/scheduler"
	"hotelac/internal/types"
)

func TestMain(m *testing.M) {
	logger.SetLevel(logger.OffLevel)
	os.Exit(m.Run())
}

type billingEnv struct {
	conn     *gorm.DB
	clk      *clock.Fake
	gw       *ac.Gateway
	svc      *Service
	recorder *db.DetailRecorder
	rooms    *db.RoomRepository
	orders   *db.OrderRepository
	bills    *db.BillRepository
}

func newBillingEnv(t *testing.T) *billingEnv {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)

	clk := clock.NewFake(time.Date(2025, 8, 25, 14, 0, 0, 0, time.UTC))
	sched := scheduler.New(config.Default().Scheduler, clk, db.NewDetailRecorder(conn), nil)
	rooms := db.NewRoomRepository(conn)
	gw := ac.NewGateway(sched, rooms)

	return &billingEnv{
		conn:     conn,
		clk:      clk,
		gw:       gw,
		svc:      NewService(gw, conn, clk, 6),
		recorder: db.NewDetailRecorder(conn),
		rooms:    rooms,
		orders:   db.NewOrderRepository(conn),
		bills:    db.NewBillRepository(conn),
	}
}

// checkin 办理入住并建档订单，不登记调度器
func (e *billingEnv) checkin(t *testing.T, roomID string) *db.AccommodationOrder {
	t.Helper()
	now := e.clk.Now()
	require.NoError(t, e.rooms.CheckIn(roomID, "王五", "110101199202021234", "13700137000", now))
	order := &db.AccommodationOrder{
		OrderNo:     "order-" + roomID,
		RoomID:      roomID,
		GuestName:   "王五",
		GuestIDCard: "110101199202021234",
		GuestPhone:  "13700137000",
		CheckinTime: now,
		Status:      db.OrderActive,
	}
	require.NoError(t, e.orders.Create(order))
	return order
}

// closedSegment 写入一段已结详单
func (e *billingEnv) closedSegment(t *testing.T, roomID string, start time.Time, minutes int, fan types.FanSpeed, energy float64) {
	t.Helper()
	id, err := e.recorder.Open(roomID, start, 28, 22, fan, types.ModeCooling)
	require.NoError(t, err)
	end := start.Add(time.Duration(minutes) * time.Minute)
	require.NoError(t, e.recorder.Close(id, end, 25, energy, decimal.NewFromFloat(energy)))
}

func TestStayNights(t *testing.T) {
	checkin := time.Date(2025, 8, 25, 14, 0, 0, 0, time.UTC)
	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{30 * time.Minute, 1},
		{23*time.Hour + 59*time.Minute, 1},
		{24 * time.Hour, 2},
		{26 * time.Hour, 2},
		{49 * time.Hour, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stayNights(checkin, checkin.Add(tc.elapsed)), "住了 %v", tc.elapsed)
	}
}

func TestPreviewFallsBackToClosedRecords(t *testing.T) {
	env := newBillingEnv(t)
	order := env.checkin(t, "301")

	start := env.clk.Now().Add(time.Minute)
	env.closedSegment(t, "301", start, 3, types.FanHigh, 1.25)
	env.closedSegment(t, "301", start.Add(10*time.Minute), 2, types.FanMedium, 0.75)

	env.clk.Advance(26 * time.Hour)
	preview, err := env.svc.Preview("301")
	require.NoError(t, err)

	assert.Equal(t, order.OrderNo, preview.OrderNo)
	assert.Equal(t, "王五", preview.GuestName)
	assert.Equal(t, 2, preview.Nights)
	assert.Equal(t, 200.0, preview.RoomFee, "标准间 100 元/天 × 2 天")
	assert.Equal(t, 2.0, preview.ACFee)
	assert.Equal(t, 202.0, preview.TotalFee)
}

func TestPreviewPrefersLiveReading(t *testing.T) {
	env := newBillingEnv(t)
	env.checkin(t, "302")
	env.gw.Init("302")

	// 调度器在册时以实时读数为准，哪怕详单里另有数字
	env.closedSegment(t, "302", env.clk.Now(), 3, types.FanHigh, 9.99)

	preview, err := env.svc.Preview("302")
	require.NoError(t, err)
	assert.Equal(t, 0.0, preview.ACFee)
	assert.Equal(t, 125.0, preview.TotalFee)
}

func TestPreviewWithoutOrder(t *testing.T) {
	env := newBillingEnv(t)
	_, err := env.svc.Preview("305")
	assert.True(t, errors.Is(err, db.ErrNoActiveOrder), "got %v", err)
}

func TestCheckoutFullFlow(t *testing.T) {
	env := newBillingEnv(t)
	env.checkin(t, "303")
	env.gw.Init("303")

	start := env.clk.Now().Add(time.Minute)
	env.closedSegment(t, "303", start, 3, types.FanHigh, 1.25)
	env.closedSegment(t, "303", start.Add(10*time.Minute), 2, types.FanMedium, 0.75)

	env.clk.Advance(26 * time.Hour)
	result, err := env.svc.Checkout("303")
	require.NoError(t, err)

	assert.Len(t, result.BillNo, 36, "账单号应是 UUID")
	assert.Equal(t, 2, result.Nights)
	assert.Equal(t, 300.0, result.RoomFee, "豪华间 150 元/天 × 2 天")
	assert.Equal(t, 2.0, result.ACFee)
	assert.Equal(t, 302.0, result.TotalFee)

	// 账单按十进制入库
	bill, err := env.bills.GetByNo(result.BillNo)
	require.NoError(t, err)
	assert.True(t, bill.RoomFee.Equal(decimal.NewFromInt(300)))
	assert.True(t, bill.ACFee.Equal(decimal.NewFromInt(2)))
	assert.True(t, bill.TotalFee.Equal(decimal.NewFromInt(302)))
	assert.False(t, bill.IsPaid)

	// 房间释放、订单关闭、调度器出册
	room, err := env.rooms.GetByID("303")
	require.NoError(t, err)
	assert.Equal(t, db.RoomAvailable, room.Status)

	_, err = env.orders.ActiveByRoom("303")
	assert.True(t, errors.Is(err, db.ErrNoActiveOrder))

	_, err = env.gw.State("303")
	assert.True(t, errors.Is(err, scheduler.ErrUnknownRoom))

	_, err = env.svc.Checkout("303")
	assert.True(t, errors.Is(err, db.ErrNoActiveOrder))
}

func TestPayLifecycle(t *testing.T) {
	env := newBillingEnv(t)
	env.checkin(t, "301")

	result, err := env.svc.Checkout("301")
	require.NoError(t, err)

	require.NoError(t, env.svc.Pay(result.BillNo))
	assert.True(t, errors.Is(env.svc.Pay(result.BillNo), db.ErrBillPaid))
	assert.True(t, errors.Is(env.svc.Pay("no-such-bill"), db.ErrBillNotFound))
}

func TestDetailsListing(t *testing.T) {
	env := newBillingEnv(t)
	order := env.checkin(t, "304")

	start := env.clk.Now().Add(time.Minute)
	env.closedSegment(t, "304", start, 3, types.FanHigh, 3)
	env.closedSegment(t, "304", start.Add(9*time.Minute), 2, types.FanMedium, 1)

	list, err := env.svc.Details("304")
	require.NoError(t, err)

	assert.Equal(t, order.OrderNo, list.OrderNo)
	require.Equal(t, 2, list.Count)
	require.Len(t, list.Items, 2)

	first := list.Items[0]
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, "2025-08-25 14:01:00", first.StartTime)
	assert.Equal(t, "2025-08-25 14:04:00", first.EndTime)
	assert.Equal(t, 1080.0, first.Duration, "3 分钟实际时长按压缩比 6 折算")
	assert.Equal(t, "high", first.FanSpeed)
	assert.Equal(t, 3.0, first.Cost)

	assert.Equal(t, 2, list.Items[1].Seq)
	assert.Equal(t, 4.0, list.TotalEnergy)
	assert.Equal(t, 4.0, list.TotalCost)

	// 退房后仍可按最近订单补打
	_, err = env.svc.Checkout("304")
	require.NoError(t, err)

	list, err = env.svc.Details("304")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, order.OrderNo, list.OrderNo)
}

func TestDetailsUnknownRoom(t *testing.T) {
	env := newBillingEnv(t)
	_, err := env.svc.Details("301")
	assert.True(t, errors.Is(err, db.ErrNoActiveOrder))
}
