// internal/app/app.go

package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hotelac/api"
	"hotelac/internal/ac"
	"hotelac/internal/billing"
	"hotelac/internal/clock"
	"hotelac/internal/config"
	"hotelac/internal/db"
	"hotelac/internal/events"
	"hotelac/internal/handlers"
	"hotelac/internal/logger"
	"hotelac/internal/monitor"
	"hotelac/internal/reports"
	"hotelac/internal/scheduler"
)

// App 组装整套服务：数据库、调度器、监控和 HTTP 服务
type App struct {
	cfg     *config.Config
	conn    *gorm.DB
	bus     *events.Bus
	sched   *scheduler.Scheduler
	gateway *ac.Gateway
	mon     *monitor.Monitor
	server  *http.Server
}

// New 按配置装配应用
func New(cfg *config.Config) (*App, error) {
	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	clk := clock.System()

	sched := scheduler.New(cfg.Scheduler, clk, db.NewDetailRecorder(conn), bus)
	rooms := db.NewRoomRepository(conn)
	gateway := ac.NewGateway(sched, rooms)

	// 重启后把在住房间重新登记进调度器，空调从关机状态恢复
	all, err := rooms.ListAll()
	if err != nil {
		return nil, err
	}
	for _, room := range all {
		if room.Status == db.RoomOccupied {
			gateway.Init(room.RoomID)
			logger.Info("恢复在住房间 %s 的空调登记", room.RoomID)
		}
	}

	mon := monitor.New(gateway, bus, 5*time.Second)

	billingSvc := billing.NewService(gateway, conn, clk, cfg.Billing.TimeScale)
	reportSvc := reports.NewService(conn)

	acHandler := handlers.NewACHandler(gateway, mon)
	roomHandler := handlers.NewRoomHandler(conn, gateway, clk)
	billingHandler := handlers.NewBillingHandler(billingSvc)
	reportHandler := handlers.NewReportHandler(reportSvc)

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(acHandler, roomHandler, billingHandler, reportHandler)

	return &App{
		cfg:     cfg,
		conn:    conn,
		bus:     bus,
		sched:   sched,
		gateway: gateway,
		mon:     mon,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

// Start 启动调度循环、监控和 HTTP 服务
func (a *App) Start() error {
	a.sched.Start()
	a.mon.Start()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP 服务异常退出: %v", err)
		}
	}()

	logger.Info("服务已启动，监听 %s", a.server.Addr)
	return nil
}

// Stop 优雅停机：先停外部流量，再停监控和调度循环
func (a *App) Stop(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP 服务停机失败: %v", err)
	}
	a.mon.Stop()
	a.sched.Stop()
	logger.Info("服务已停止")
	return nil
}
