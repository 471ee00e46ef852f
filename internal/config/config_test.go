package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Scheduler.MaxServiceSlots)
	assert.Equal(t, 120*time.Second, cfg.Scheduler.WaitTimeSlice.D())
	assert.Equal(t, time.Second, cfg.Scheduler.TickInterval.D())
	assert.Equal(t, time.Second, cfg.Scheduler.DebounceWindow.D())
	assert.Equal(t, 25.0, cfg.Scheduler.DefaultTemp)
	assert.Equal(t, 28.0, cfg.Scheduler.InitialRoomTemp)
	assert.Equal(t, 1.0, cfg.Scheduler.FanPower[types.FanHigh])
	assert.Equal(t, 0.5, cfg.Scheduler.ChangeRate[types.FanMedium])
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
log:
  level: debug
scheduler:
  max_service_slots: 2
  wait_time_slice: 90s
  tick_interval: 500ms
  cooling_min: 18
  cooling_max: 25
  default_temp: 22
billing:
  time_scale: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	// 覆盖的字段
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Scheduler.MaxServiceSlots)
	assert.Equal(t, 90*time.Second, cfg.Scheduler.WaitTimeSlice.D())
	assert.Equal(t, 500*time.Millisecond, cfg.Scheduler.TickInterval.D())
	assert.Equal(t, 18.0, cfg.Scheduler.CoolingMin)
	assert.Equal(t, 10.0, cfg.Billing.TimeScale)

	// 未写的字段保持缺省
	assert.Equal(t, "hotel.db", cfg.Database.Path)
	assert.Equal(t, time.Second, cfg.Scheduler.DebounceWindow.D())
	assert.Equal(t, 1.0, cfg.Scheduler.PricePerDegree)
}

func TestLoadAcceptsNumericSeconds(t *testing.T) {
	path := writeConfig(t, `
scheduler:
  wait_time_slice: 60
  tick_interval: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Scheduler.WaitTimeSlice.D())
	assert.Equal(t, time.Second, cfg.Scheduler.TickInterval.D())
}

func TestLoadErrors(t *testing.T) {
	t.Run("文件不存在", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("YAML 不合法", func(t *testing.T) {
		_, err := Load(writeConfig(t, "scheduler: ["))
		assert.Error(t, err)
	})

	t.Run("时长格式不合法", func(t *testing.T) {
		_, err := Load(writeConfig(t, "scheduler:\n  tick_interval: fast"))
		assert.Error(t, err)
	})
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }},
		{"数据库路径为空", func(c *Config) { c.Database.Path = "" }},
		{"服务上限为零", func(c *Config) { c.Scheduler.MaxServiceSlots = 0 }},
		{"节拍为零", func(c *Config) { c.Scheduler.TickInterval = 0 }},
		{"时间片为负", func(c *Config) { c.Scheduler.WaitTimeSlice = Duration(-time.Second) }},
		{"制冷区间倒置", func(c *Config) { c.Scheduler.CoolingMin, c.Scheduler.CoolingMax = 30, 15 }},
		{"制热区间倒置", func(c *Config) { c.Scheduler.HeatingMin, c.Scheduler.HeatingMax = 30, 20 }},
		{"回温阈值为零", func(c *Config) { c.Scheduler.TempThreshold = 0 }},
		{"回温速率为零", func(c *Config) { c.Scheduler.TempRestoreRate = 0 }},
		{"电价为负", func(c *Config) { c.Scheduler.PricePerDegree = -1 }},
		{"缺省温度在两个区间之外", func(c *Config) { c.Scheduler.DefaultTemp = 10 }},
		{"缺少风速档位速率", func(c *Config) { delete(c.Scheduler.FanPower, types.FanLow) }},
		{"温变速率为负", func(c *Config) { c.Scheduler.ChangeRate[types.FanHigh] = -0.5 }},
		{"时间压缩比过小", func(c *Config) { c.Billing.TimeScale = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestClampTarget(t *testing.T) {
	sc := Default().Scheduler

	assert.Equal(t, 15.0, sc.ClampTarget(types.ModeCooling, 5))
	assert.Equal(t, 30.0, sc.ClampTarget(types.ModeCooling, 42))
	assert.Equal(t, 22.0, sc.ClampTarget(types.ModeCooling, 22))
	assert.Equal(t, 20.0, sc.ClampTarget(types.ModeHeating, 16))
	assert.Equal(t, 30.0, sc.ClampTarget(types.ModeHeating, 35))
}
