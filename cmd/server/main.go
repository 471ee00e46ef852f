package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotelac/internal/app"
	"hotelac/internal/config"
	"hotelac/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，缺省使用内置配置")
	port := flag.Int("port", 0, "HTTP 监听端口，覆盖配置文件")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("加载配置失败: %v", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	logger.SetLevel(level)

	application, err := app.New(cfg)
	if err != nil {
		logger.Error("初始化失败: %v", err)
		os.Exit(1)
	}
	if err := application.Start(); err != nil {
		logger.Error("启动失败: %v", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Stop(ctx); err != nil {
		logger.Error("停机异常: %v", err)
	}
}
