// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hotelac/internal/types"
)

// Duration 支持 "120s" 字符串或纯数字（按秒解释）两种写法
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("时长格式不正确: %q", s)
		}
		*d = Duration(parsed)
		return nil
	}
	var secs float64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("时长必须是数字或时长字符串")
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// D 返回标准库时长
func (d Duration) D() time.Duration { return time.Duration(d) }

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Billing   BillingConfig   `yaml:"billing"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig 调度核心参数。
// 缺省值与课程题目一致：5 间客房竞争 3 个服务对象，时间片 120 秒
type SchedulerConfig struct {
	MaxServiceSlots int      `yaml:"max_service_slots"` // 同时服务上限
	WaitTimeSlice   Duration `yaml:"wait_time_slice"`   // 等待时间片
	TickInterval    Duration `yaml:"tick_interval"`     // 调度节拍
	DebounceWindow  Duration `yaml:"debounce_window"`   // 请求合并静默期

	DefaultTemp     float64 `yaml:"default_temp"`      // 缺省目标温度
	InitialRoomTemp float64 `yaml:"initial_room_temp"` // 初始室温（环境温度）
	CoolingMin      float64 `yaml:"cooling_min"`
	CoolingMax      float64 `yaml:"cooling_max"`
	HeatingMin      float64 `yaml:"heating_min"`
	HeatingMax      float64 `yaml:"heating_max"`
	TempThreshold   float64 `yaml:"temp_threshold"`    // 待机回温重启阈值
	TempRestoreRate float64 `yaml:"temp_restore_rate"` // 回温速率 度/分钟
	PricePerDegree  float64 `yaml:"price_per_degree"`  // 元/度

	FanPower   map[types.FanSpeed]float64 `yaml:"fan_power"`   // 耗电 度/分钟
	ChangeRate map[types.FanSpeed]float64 `yaml:"change_rate"` // 温变 度/分钟
}

type BillingConfig struct {
	TimeScale float64 `yaml:"time_scale"` // 详单展示用的时间压缩比
}

// Default 返回全部缺省配置
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "hotel.db"},
		Log:      LogConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			MaxServiceSlots: 3,
			WaitTimeSlice:   Duration(120 * time.Second),
			TickInterval:    Duration(time.Second),
			DebounceWindow:  Duration(time.Second),
			DefaultTemp:     25,
			InitialRoomTemp: 28,
			CoolingMin:      15,
			CoolingMax:      30,
			HeatingMin:      20,
			HeatingMax:      30,
			TempThreshold:   1,
			TempRestoreRate: 0.5,
			PricePerDegree:  1,
			FanPower: map[types.FanSpeed]float64{
				types.FanLow:    1.0 / 3,
				types.FanMedium: 0.5,
				types.FanHigh:   1,
			},
			ChangeRate: map[types.FanSpeed]float64{
				types.FanLow:    1.0 / 3,
				types.FanMedium: 0.5,
				types.FanHigh:   1,
			},
		},
		Billing: BillingConfig{TimeScale: 6},
	}
}

// Load 在缺省配置之上叠加 YAML 文件并校验
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置自洽性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("端口号不合法: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("数据库路径不能为空")
	}
	if c.Billing.TimeScale < 1 {
		return fmt.Errorf("时间压缩比不能小于1: %v", c.Billing.TimeScale)
	}
	return c.Scheduler.Validate()
}

func (sc *SchedulerConfig) Validate() error {
	if sc.MaxServiceSlots < 1 {
		return fmt.Errorf("同时服务上限必须为正: %d", sc.MaxServiceSlots)
	}
	if sc.TickInterval.D() <= 0 {
		return fmt.Errorf("调度节拍必须为正: %v", sc.TickInterval.D())
	}
	if sc.WaitTimeSlice.D() <= 0 {
		return fmt.Errorf("等待时间片必须为正: %v", sc.WaitTimeSlice.D())
	}
	if sc.DebounceWindow.D() < 0 {
		return fmt.Errorf("请求静默期不能为负: %v", sc.DebounceWindow.D())
	}
	if sc.CoolingMin >= sc.CoolingMax {
		return fmt.Errorf("制冷温度区间不合法: [%.1f, %.1f]", sc.CoolingMin, sc.CoolingMax)
	}
	if sc.HeatingMin >= sc.HeatingMax {
		return fmt.Errorf("制热温度区间不合法: [%.1f, %.1f]", sc.HeatingMin, sc.HeatingMax)
	}
	if sc.TempThreshold <= 0 {
		return fmt.Errorf("回温重启阈值必须为正: %.2f", sc.TempThreshold)
	}
	if sc.TempRestoreRate <= 0 {
		return fmt.Errorf("回温速率必须为正: %.2f", sc.TempRestoreRate)
	}
	if sc.PricePerDegree < 0 {
		return fmt.Errorf("电价不能为负: %.2f", sc.PricePerDegree)
	}
	inCooling := sc.DefaultTemp >= sc.CoolingMin && sc.DefaultTemp <= sc.CoolingMax
	inHeating := sc.DefaultTemp >= sc.HeatingMin && sc.DefaultTemp <= sc.HeatingMax
	if !inCooling && !inHeating {
		return fmt.Errorf("缺省温度 %.1f 不在任何模式的温度区间内", sc.DefaultTemp)
	}
	for _, speed := range []types.FanSpeed{types.FanLow, types.FanMedium, types.FanHigh} {
		if sc.FanPower[speed] <= 0 {
			return fmt.Errorf("风速 %s 的耗电速率未配置或不为正", speed)
		}
		if sc.ChangeRate[speed] <= 0 {
			return fmt.Errorf("风速 %s 的温变速率未配置或不为正", speed)
		}
	}
	return nil
}

// Band 返回指定模式的合法温度区间
func (sc *SchedulerConfig) Band(mode types.Mode) (min, max float64) {
	if mode == types.ModeHeating {
		return sc.HeatingMin, sc.HeatingMax
	}
	return sc.CoolingMin, sc.CoolingMax
}

// ClampTarget 将目标温度收敛到模式的合法区间内
func (sc *SchedulerConfig) ClampTarget(mode types.Mode, target float64) float64 {
	min, max := sc.Band(mode)
	if target < min {
		return min
	}
	if target > max {
		return max
	}
	return target
}
