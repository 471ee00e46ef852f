// api/router.go

package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hotelac/internal/handlers"
	"hotelac/middleware"
)

// SetupRouter 装配全部路由
func SetupRouter(
	acHandler *handlers.ACHandler,
	roomHandler *handlers.RoomHandler,
	billingHandler *handlers.BillingHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.RequestLogger())

	api := router.Group("/api")
	{
		// 空调控制面板
		api.POST("/ac/control", acHandler.Control)
		api.GET("/ac/state/:roomId", acHandler.State)
		api.GET("/ac/monitor", acHandler.Monitor)
		api.GET("/ac/details/:roomId", billingHandler.GetDetails)

		// 前台房务
		api.POST("/checkin", roomHandler.CheckIn)
		api.POST("/checkout", billingHandler.CheckOut)
		api.GET("/bill/:roomId", billingHandler.GetBill)
		api.POST("/pay", billingHandler.Pay)
		api.GET("/rooms", roomHandler.ListRooms)
		api.GET("/rooms/available", roomHandler.ListAvailable)
		api.GET("/orders", roomHandler.ListOrders)

		// 经理报表
		api.GET("/report", reportHandler.Income)
		api.GET("/report/usage", reportHandler.Usage)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
