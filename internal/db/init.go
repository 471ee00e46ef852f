package db

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hotelac/internal/logger"
)

// Open 打开数据库并完成迁移，房间表为空时写入基础客房数据。
// path 传 ":memory:" 可得到测试用的内存库
func Open(path string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %v", err)
	}
	if path == ":memory:" {
		// 内存库按连接隔离，多连接会各自看到一张空库
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := conn.AutoMigrate(&RoomInfo{}, &AccommodationOrder{}, &DetailRecord{}, &Bill{}); err != nil {
		return nil, fmt.Errorf("迁移数据库失败: %v", err)
	}
	if err := seedRooms(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// seedRooms 初始化五间客房的基础数据
func seedRooms(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&RoomInfo{}).Count(&count).Error; err != nil {
		return fmt.Errorf("查询房间数失败: %v", err)
	}
	if count > 0 {
		return nil
	}

	rooms := []RoomInfo{
		{RoomID: "301", RoomType: "standard", DailyRate: decimal.NewFromInt(100)},
		{RoomID: "302", RoomType: "standard", DailyRate: decimal.NewFromInt(125)},
		{RoomID: "303", RoomType: "deluxe", DailyRate: decimal.NewFromInt(150)},
		{RoomID: "304", RoomType: "suite", DailyRate: decimal.NewFromInt(200)},
		{RoomID: "305", RoomType: "standard", DailyRate: decimal.NewFromInt(100)},
	}
	for _, room := range rooms {
		room.Status = RoomAvailable
		room.ACPhase = "off"
		room.CurrentTemp = 28
		if err := conn.Create(&room).Error; err != nil {
			return fmt.Errorf("创建房间 %s 失败: %v", room.RoomID, err)
		}
		logger.Info("已创建房间 %s (%s, %s 元/天)", room.RoomID, room.RoomType, room.DailyRate)
	}
	return nil
}
