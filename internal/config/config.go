package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "configs/config.yaml"

var validate = validator.New()

// Config 应用程序配置结构
type Config struct {
	Data     Data     `yaml:"data"`
	Analysis Analysis `yaml:"analysis"`
	Predict  Predict  `yaml:"predict"`
	Report   Report   `yaml:"report"`
	Database Database `yaml:"database"`
	Telegram Telegram `yaml:"telegram"`
	API      API      `yaml:"api"`
	Schedule Schedule `yaml:"schedule"`
	App      App      `yaml:"app"`
}

// Data 开奖数据来源
type Data struct {
	Source       string `yaml:"source" validate:"required_without=FromDatabase"`
	FromDatabase bool   `yaml:"from_database"`
}

// Analysis 分析参数，所有窗口与阈值都显式给出
type Analysis struct {
	RecentWindow    int     `yaml:"recent_window" validate:"gte=1"`
	TopMain         int     `yaml:"top_main" validate:"gte=5,lte=50"`
	TopBonus        int     `yaml:"top_bonus" validate:"gte=2,lte=12"`
	BalancedMain    int     `yaml:"balanced_main" validate:"gte=5,lte=50"`
	BalancedBonus   int     `yaml:"balanced_bonus" validate:"gte=2,lte=12"`
	FrequencyWeight float64 `yaml:"frequency_weight" validate:"gte=0"`
	GapWeight       float64 `yaml:"gap_weight" validate:"gte=0"`
	BacktestDraws   int     `yaml:"backtest_draws" validate:"gte=0"`
}

// Predict 预测配置
type Predict struct {
	// Seed 为 0 时按当前时间生成，并写入日志与报告
	Seed uint64 `yaml:"seed"`
}

// Report 报告输出路径，空字符串表示不输出
type Report struct {
	TextPath   string `yaml:"text_path"`
	HTMLPath   string `yaml:"html_path"`
	ChartsPath string `yaml:"charts_path"`
	JSONPath   string `yaml:"json_path"`
}

// Database 数据库配置
type Database struct {
	Enabled         bool          `yaml:"enabled"`
	Driver          string        `yaml:"driver" validate:"omitempty,oneof=mysql sqlite"`
	Path            string        `yaml:"path"`
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Username        string        `yaml:"username"`
	Database        string        `yaml:"database"`
	Password        string        `yaml:"password"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Telegram 推送配置
type Telegram struct {
	Enabled     bool          `yaml:"enabled"`
	Token       string        `yaml:"token" validate:"required_if=Enabled true"`
	ChatIDs     []int64       `yaml:"chat_ids" validate:"required_if=Enabled true"`
	APIEndpoint string        `yaml:"api_endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
}

// API 远程数据源配置
type API struct {
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count" validate:"gte=0"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// Schedule 定时任务配置
type Schedule struct {
	Cron string `yaml:"cron"`
}

// App 应用程序配置
type App struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig 默认配置，无配置文件时使用
func DefaultConfig() *Config {
	return &Config{
		Data: Data{
			Source: "lottery_results.csv",
		},
		Analysis: Analysis{
			RecentWindow:    50,
			TopMain:         10,
			TopBonus:        6,
			BalancedMain:    7,
			BalancedBonus:   3,
			FrequencyWeight: 0.6,
			GapWeight:       0.4,
			BacktestDraws:   20,
		},
		Report: Report{
			TextPath:   "docs/analysis_report.txt",
			HTMLPath:   "docs/index.html",
			ChartsPath: "docs/charts.html",
			JSONPath:   "docs/analysis.json",
		},
		Database: Database{
			Driver:          "sqlite",
			Path:            "lottery.db",
			Port:            3306,
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
		},
		Telegram: Telegram{
			Timeout: 30 * time.Second,
		},
		API: API{
			Timeout:    30 * time.Second,
			RetryCount: 3,
			RetryDelay: 2 * time.Second,
		},
		Schedule: Schedule{
			// 周二、周五开奖后
			Cron: "0 23 * * 2,5",
		},
		App: App{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// LoadConfig 加载配置文件
// path 为空时尝试默认路径，默认路径不存在则使用默认配置
func LoadConfig(path string) (*Config, error) {
	// .env 可选，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// 使用默认配置
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Analysis.FrequencyWeight+c.Analysis.GapWeight <= 0 {
		return fmt.Errorf("config validation failed: frequency_weight + gap_weight must be positive")
	}
	if c.Data.FromDatabase && !c.Database.Enabled {
		return fmt.Errorf("config validation failed: data.from_database requires database.enabled")
	}
	return nil
}

// applyEnv 环境变量覆盖敏感或常改的配置项
func (c *Config) applyEnv() error {
	if v := os.Getenv("LOTTO_DATA_SOURCE"); v != "" {
		c.Data.Source = v
	}
	if v := os.Getenv("LOTTO_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("LOTTO_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("LOTTO_TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("LOTTO_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("LOTTO_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid LOTTO_SEED %q: %w", v, err)
		}
		c.Predict.Seed = seed
	}
	return nil
}

// GetDSN 获取数据库连接字符串
func (d *Database) GetDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}
