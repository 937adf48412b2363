package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Redis     RedisConfig               `yaml:"redis"`
	YTDLP     YTDLPConfig               `yaml:"ytdlp"`
	Platforms map[string]PlatformConfig `yaml:"platforms"`
	RateLimit RateLimitConfig           `yaml:"rate_limit"`
	CORS      CORSConfig                `yaml:"cors"`
	Logging   LoggingConfig             `yaml:"logging"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int           `yaml:"port"`
	Mode           string        `yaml:"mode"` // debug, release
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	GRPCHealthPort int           `yaml:"grpc_health_port"` // 0 表示不启动
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// YTDLPConfig yt-dlp配置
type YTDLPConfig struct {
	BinaryPath      string   `yaml:"binary_path"`
	Timeout         int      `yaml:"timeout"`          // 单策略超时(秒)
	StrategyTimeout int      `yaml:"strategy_timeout"` // 回退序列每次尝试超时(秒)
	MaxOutputBytes  int64    `yaml:"max_output_bytes"`
	MaxConcurrent   int      `yaml:"max_concurrent"` // 最大并发解析数
	CookiesDir      string   `yaml:"cookies_dir"`
	Proxy           string   `yaml:"proxy"`        // 代理地址
	DefaultArgs     []string `yaml:"default_args"` // 默认参数
}

// PlatformConfig 平台特定配置
type PlatformConfig struct {
	ExtraArgs  []string `yaml:"extra_args"`
	CookieFile string   `yaml:"cookie_file"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Disabled bool          `yaml:"disabled"`
	Backend  string        `yaml:"backend"` // memory, redis
	Points   int           `yaml:"points"`
	Duration time.Duration `yaml:"duration"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default 无配置文件时使用的配置
func Default() *Config {
	cfg := &Config{}
	_ = cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// applyEnv 从环境变量覆盖配置
func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}

	// Redis
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		c.Redis.Addr = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	// CORS, 逗号分隔
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.CORS.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORS.AllowedOrigins = append(c.CORS.AllowedOrigins, o)
			}
		}
	}

	// yt-dlp
	if binary := os.Getenv("YTDLP_BINARY"); binary != "" {
		c.YTDLP.BinaryPath = binary
	}
	if proxy := os.Getenv("YTDLP_PROXY"); proxy != "" {
		c.YTDLP.Proxy = proxy
	}
	return nil
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	// 需要覆盖最长的回退序列 (4 x 90s)
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 7 * time.Minute
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 10 << 20 // 10MB
	}

	if c.YTDLP.BinaryPath == "" {
		c.YTDLP.BinaryPath = "yt-dlp"
	}
	if c.YTDLP.Timeout == 0 {
		c.YTDLP.Timeout = 120
	}
	if c.YTDLP.StrategyTimeout == 0 {
		c.YTDLP.StrategyTimeout = 90
	}
	if c.YTDLP.MaxOutputBytes == 0 {
		c.YTDLP.MaxOutputBytes = 10 << 20 // 10MiB
	}
	if c.YTDLP.MaxConcurrent == 0 {
		c.YTDLP.MaxConcurrent = 10
	}

	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "memory"
	}
	if c.RateLimit.Points == 0 {
		c.RateLimit.Points = 10
	}
	if c.RateLimit.Duration == 0 {
		c.RateLimit.Duration = 60 * time.Second
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Platform 获取平台配置, 未配置时返回零值
func (c *Config) Platform(name string) PlatformConfig {
	return c.Platforms[name]
}

// GetTimeout 获取单策略超时时间
func (c *YTDLPConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetStrategyTimeout 获取每次策略尝试的超时时间
func (c *YTDLPConfig) GetStrategyTimeout() time.Duration {
	return time.Duration(c.StrategyTimeout) * time.Second
}
