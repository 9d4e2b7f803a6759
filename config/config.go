package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"spellarena/sim"
)

// Config 服务整体配置，来源优先级：命令行 > 环境变量 > YAML 文件 > 默认值
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Sim    SimConfig    `yaml:"sim"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	DefaultArena string `yaml:"default_arena"`
	Codec        string `yaml:"codec"` // json | msgpack，客户端可用 ?codec= 覆盖
	BroadcastHz  int    `yaml:"broadcast_hz"`
	SendQueue    int    `yaml:"send_queue"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"`
}

type SimConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Tuning       sim.Tuning    `yaml:"tuning"`
}

// MaxBroadcastHz 广播频率上限，保证广播间隔不小于 1ms
const MaxBroadcastHz = 1000

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			DefaultArena: "arena-1",
			Codec:        "json",
			BroadcastHz:  20,
			SendQueue:    64,
		},
		Log: LogConfig{
			File:       "app.log",
			Level:      "debug",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Sim: SimConfig{
			TickInterval: time.Second,
			Tuning:       sim.DefaultTuning(),
		},
	}
}

// Load 读取 YAML 配置（path 为空或文件不存在时使用默认值），再叠加 .env 与环境变量
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if envFile != "" {
		// godotenv 不覆盖已存在的环境变量
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load env %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("SPELLARENA_ADDR", &c.Server.Addr)
	str("SPELLARENA_ARENA", &c.Server.DefaultArena)
	str("SPELLARENA_CODEC", &c.Server.Codec)
	str("SPELLARENA_LOG_FILE", &c.Log.File)
	str("SPELLARENA_LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("SPELLARENA_BROADCAST_HZ"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPELLARENA_BROADCAST_HZ: %w", err)
		}
		c.Server.BroadcastHz = n
	}
	if v, ok := lookup("SPELLARENA_TICK_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SPELLARENA_TICK_INTERVAL: %w", err)
		}
		c.Sim.TickInterval = d
	}
	return nil
}

// Validate 检查明显不合法的取值
func (c Config) Validate() error {
	if c.Sim.TickInterval <= 0 {
		return fmt.Errorf("sim.tick_interval must be > 0, got %s", c.Sim.TickInterval)
	}
	if c.Server.BroadcastHz <= 0 || c.Server.BroadcastHz > MaxBroadcastHz {
		return fmt.Errorf("server.broadcast_hz must be in (0, %d], got %d", MaxBroadcastHz, c.Server.BroadcastHz)
	}
	if c.Server.SendQueue <= 0 {
		return fmt.Errorf("server.send_queue must be > 0, got %d", c.Server.SendQueue)
	}
	if c.Server.Codec != "json" && c.Server.Codec != "msgpack" {
		return fmt.Errorf("server.codec must be json or msgpack, got %q", c.Server.Codec)
	}
	return ValidateTuning(c.Sim.Tuning)
}

// ValidateTuning 管理接口热更新时同样使用
func ValidateTuning(t sim.Tuning) error {
	switch {
	case t.PlayerSpeed < 0 || t.SprintMultiplier < 0:
		return fmt.Errorf("movement speeds must be >= 0")
	case t.ProjectileSpeed < 0:
		return fmt.Errorf("projectile_speed must be >= 0")
	case t.InputDelta <= 0:
		return fmt.Errorf("input_delta must be > 0")
	case t.ProjectileLifetime <= 0:
		return fmt.Errorf("projectile_lifetime must be > 0")
	case t.HitRadius < 0 || t.SpellDamage < 0:
		return fmt.Errorf("hit_radius and spell_damage must be >= 0")
	case t.DefaultHealth <= 0 || t.DefaultMana < 0:
		return fmt.Errorf("default_health must be > 0 and default_mana >= 0")
	}
	return nil
}
