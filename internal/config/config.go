// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hotelac/internal/types"
)

// FanProfile 风速档位参数:优先级、变温速率和费率
type FanProfile struct {
	Priority int     `yaml:"priority"`
	TempRate float64 `yaml:"temp_rate"` // °C/模拟分钟
	FeeRate  float64 `yaml:"fee_rate"`  // 元/模拟分钟
}

// ModeProfile 工作模式参数:缺省目标温度、可调范围和各房间的初始温度
type ModeProfile struct {
	DefaultTarget float64            `yaml:"default_target"`
	MinTarget     float64            `yaml:"min_target"`
	MaxTarget     float64            `yaml:"max_target"`
	InitialTemps  map[string]float64 `yaml:"initial_temps"`
}

// RoomSeed 房间基础数据
type RoomSeed struct {
	ID        string  `yaml:"id"`
	DailyRate float64 `yaml:"daily_rate"` // 住宿费,元/天
}

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	// 调度参数
	MaxServices int     `yaml:"max_services"` // 同时送风的房间数上限
	TimeScale   float64 `yaml:"time_scale"`   // 真实秒 → 模拟秒的倍率
	TimeSliceS  float64 `yaml:"time_slice_s"` // 时间片长度,模拟秒
	StepMillis  int     `yaml:"step_millis"`  // 模拟步进周期,毫秒
	RecoverRate float64 `yaml:"recover_rate"` // 回温速率,°C/模拟分钟

	DefaultMode types.Mode     `yaml:"default_mode"`
	DefaultFan  types.FanSpeed `yaml:"default_fan"`

	Fans  map[types.FanSpeed]FanProfile `yaml:"fans"`
	Modes map[types.Mode]ModeProfile    `yaml:"modes"`
	Rooms []RoomSeed                    `yaml:"rooms"`

	MonitorIntervalS int `yaml:"monitor_interval_s"`
}

// Step 模拟步进周期
func (c *Config) Step() time.Duration {
	return time.Duration(c.StepMillis) * time.Millisecond
}

// MonitorInterval 监控快照刷新周期
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.MonitorIntervalS) * time.Second
}

// Default 返回全部缺省配置
func Default() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     8080,
		DBPath:   "hotel.db",
		LogLevel: "info",

		MaxServices: 3,
		TimeScale:   6,
		TimeSliceS:  120,
		StepMillis:  250,
		RecoverRate: 0.5,

		DefaultMode: types.ModeCool,
		DefaultFan:  types.FanMedium,

		Fans: map[types.FanSpeed]FanProfile{
			types.FanLow:    {Priority: 1, TempRate: 1.0 / 3.0, FeeRate: 1.0 / 3.0},
			types.FanMedium: {Priority: 2, TempRate: 0.5, FeeRate: 0.5},
			types.FanHigh:   {Priority: 3, TempRate: 1, FeeRate: 1},
		},
		Modes: map[types.Mode]ModeProfile{
			types.ModeCool: {
				DefaultTarget: 25,
				MinTarget:     18,
				MaxTarget:     28,
				InitialTemps: map[string]float64{
					"101": 32, "102": 28, "103": 30, "104": 29, "105": 35,
				},
			},
			types.ModeHeat: {
				DefaultTarget: 23,
				MinTarget:     18,
				MaxTarget:     25,
				InitialTemps: map[string]float64{
					"101": 10, "102": 15, "103": 18, "104": 12, "105": 14,
				},
			},
		},
		Rooms: []RoomSeed{
			{ID: "101", DailyRate: 100},
			{ID: "102", DailyRate: 125},
			{ID: "103", DailyRate: 150},
			{ID: "104", DailyRate: 200},
			{ID: "105", DailyRate: 100},
		},

		MonitorIntervalS: 5,
	}
}

// Load 读取配置文件并覆盖缺省值,path 为空则直接使用缺省配置
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置的完整性,调度核心对这里通过的值不再做防御
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("非法端口: %d", c.Port)
	}
	if c.MaxServices < 1 {
		return fmt.Errorf("max_services 必须不小于 1: %d", c.MaxServices)
	}
	if c.TimeScale <= 0 {
		return fmt.Errorf("time_scale 必须为正: %v", c.TimeScale)
	}
	if c.TimeSliceS <= 0 {
		return fmt.Errorf("time_slice_s 必须为正: %v", c.TimeSliceS)
	}
	if c.StepMillis <= 0 {
		return fmt.Errorf("step_millis 必须为正: %d", c.StepMillis)
	}
	if c.RecoverRate <= 0 {
		return fmt.Errorf("recover_rate 必须为正: %v", c.RecoverRate)
	}
	for _, fan := range []types.FanSpeed{types.FanLow, types.FanMedium, types.FanHigh} {
		prof, ok := c.Fans[fan]
		if !ok {
			return fmt.Errorf("缺少风速档位配置: %s", fan)
		}
		if prof.Priority <= 0 || prof.TempRate <= 0 || prof.FeeRate < 0 {
			return fmt.Errorf("风速档位 %s 配置非法: %+v", fan, prof)
		}
	}
	if _, ok := c.Fans[c.DefaultFan]; !ok {
		return fmt.Errorf("缺省风速 %s 不在档位表中", c.DefaultFan)
	}
	if len(c.Rooms) == 0 {
		return fmt.Errorf("至少需要配置一个房间")
	}
	seen := make(map[string]bool, len(c.Rooms))
	for _, room := range c.Rooms {
		if room.ID == "" {
			return fmt.Errorf("房间号不能为空")
		}
		if seen[room.ID] {
			return fmt.Errorf("房间号重复: %s", room.ID)
		}
		seen[room.ID] = true
	}
	for _, mode := range []types.Mode{types.ModeCool, types.ModeHeat} {
		prof, ok := c.Modes[mode]
		if !ok {
			return fmt.Errorf("缺少工作模式配置: %s", mode)
		}
		if prof.MinTarget >= prof.MaxTarget {
			return fmt.Errorf("模式 %s 温度范围非法: [%v, %v]", mode, prof.MinTarget, prof.MaxTarget)
		}
		if prof.DefaultTarget < prof.MinTarget || prof.DefaultTarget > prof.MaxTarget {
			return fmt.Errorf("模式 %s 缺省目标温度 %v 超出范围", mode, prof.DefaultTarget)
		}
		for _, room := range c.Rooms {
			if _, ok := prof.InitialTemps[room.ID]; !ok {
				return fmt.Errorf("模式 %s 缺少房间 %s 的初始温度", mode, room.ID)
			}
		}
	}
	if _, ok := c.Modes[c.DefaultMode]; !ok {
		return fmt.Errorf("缺省模式 %s 不在模式表中", c.DefaultMode)
	}
	if c.MonitorIntervalS <= 0 {
		return fmt.Errorf("monitor_interval_s 必须为正: %d", c.MonitorIntervalS)
	}
	return nil
}
