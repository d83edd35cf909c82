package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hotelac/internal/types"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 3, cfg.MaxServices)
	require.Equal(t, types.ModeCool, cfg.DefaultMode)
	require.Len(t, cfg.Rooms, 5)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
port: 9090
db_path: /tmp/test-hotel.db
log_level: debug
max_services: 2
time_slice_s: 60
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "/tmp/test-hotel.db", cfg.DBPath)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 2, cfg.MaxServices)
	require.InDelta(t, 60.0, cfg.TimeSliceS, 1e-9)

	// 未出现在文件里的字段保持缺省值
	require.InDelta(t, 6.0, cfg.TimeScale, 1e-9)
	require.Equal(t, types.FanMedium, cfg.DefaultFan)
	require.Len(t, cfg.Rooms, 5)
	require.InDelta(t, 1.0, cfg.Fans[types.FanHigh].TempRate, 1e-9)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: ["), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Port = 0 }},
		{"max services below one", func(c *Config) { c.MaxServices = 0 }},
		{"non positive time scale", func(c *Config) { c.TimeScale = 0 }},
		{"non positive time slice", func(c *Config) { c.TimeSliceS = -1 }},
		{"non positive step", func(c *Config) { c.StepMillis = 0 }},
		{"non positive recover rate", func(c *Config) { c.RecoverRate = 0 }},
		{"missing fan profile", func(c *Config) { delete(c.Fans, types.FanHigh) }},
		{"zero fan priority", func(c *Config) {
			c.Fans[types.FanLow] = FanProfile{Priority: 0, TempRate: 1, FeeRate: 1}
		}},
		{"unknown default fan", func(c *Config) { c.DefaultFan = types.FanSpeed("TURBO") }},
		{"no rooms", func(c *Config) { c.Rooms = nil }},
		{"blank room id", func(c *Config) { c.Rooms = append(c.Rooms, RoomSeed{ID: ""}) }},
		{"duplicate room id", func(c *Config) { c.Rooms = append(c.Rooms, RoomSeed{ID: "101"}) }},
		{"missing mode profile", func(c *Config) { delete(c.Modes, types.ModeHeat) }},
		{"inverted target range", func(c *Config) {
			p := c.Modes[types.ModeCool]
			p.MinTarget, p.MaxTarget = 28, 18
			c.Modes[types.ModeCool] = p
		}},
		{"default target out of range", func(c *Config) {
			p := c.Modes[types.ModeCool]
			p.DefaultTarget = 30
			c.Modes[types.ModeCool] = p
		}},
		{"missing initial temperature", func(c *Config) {
			delete(c.Modes[types.ModeHeat].InitialTemps, "103")
		}},
		{"unknown default mode", func(c *Config) { c.DefaultMode = types.Mode("DRY") }},
		{"non positive monitor interval", func(c *Config) { c.MonitorIntervalS = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
