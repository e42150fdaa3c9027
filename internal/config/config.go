package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/station-rewards/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
	Email    EmailConfig    `mapstructure:"email"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 管理端 JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// EmailConfig SMTP 配置，用于向邮箱顾客发送券码及运维告警
type EmailConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	FromName string   `mapstructure:"from_name"`
	UseTLS   bool     `mapstructure:"use_tls"`
	UseSSL   bool     `mapstructure:"use_ssl"`
	AlertTo  []string `mapstructure:"alert_to"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit  RateLimitConfig      `mapstructure:"login_rate_limit"`
	ReviewRateLimit RateLimitConfig      `mapstructure:"review_rate_limit"`
	ClaimRateLimit  RateLimitConfig      `mapstructure:"claim_rate_limit"`
	PasswordPolicy  PasswordPolicyConfig `mapstructure:"password_policy"`
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// PasswordPolicyConfig 密码策略配置
type PasswordPolicyConfig struct {
	MinLength     int  `mapstructure:"min_length"`
	RequireUpper  bool `mapstructure:"require_upper"`
	RequireLower  bool `mapstructure:"require_lower"`
	RequireNumber bool `mapstructure:"require_number"`
}

// CaptchaConfig 管理端登录图片验证码配置
type CaptchaConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Length        int  `mapstructure:"length"`
	Width         int  `mapstructure:"width"`
	Height        int  `mapstructure:"height"`
	NoiseCount    int  `mapstructure:"noise_count"`
	ShowLine      int  `mapstructure:"show_line"`
	ExpireSeconds int  `mapstructure:"expire_seconds"`
	MaxStore      int  `mapstructure:"max_store"`
}

// RewardsConfig 积分与优惠券规则
type RewardsConfig struct {
	VisitThreshold     int `mapstructure:"visit_threshold"`      // 每满多少次到访发放一张券
	CooldownHours      int `mapstructure:"cooldown_hours"`       // 同一顾客两次评价的最小间隔
	CodeLength         int `mapstructure:"code_length"`          // 券码长度
	CodeMaxAttempts    int `mapstructure:"code_max_attempts"`    // 券码碰撞重试上限
	ManualMaxCount     int `mapstructure:"manual_max_count"`     // 后台单次手动发券上限
	ConflictRetries    int `mapstructure:"conflict_retries"`     // 并发冲突重试次数
	StatsCacheSeconds  int `mapstructure:"stats_cache_seconds"`  // 统计缓存时长
	StatsRankingLimit  int `mapstructure:"stats_ranking_limit"`  // 排行榜条数
	StationReviewLimit int `mapstructure:"station_review_limit"` // 每站点展示的评价条数
}

// Cooldown 返回评价冷却时长
func (c RewardsConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownHours) * time.Hour
}

// DefaultRewardsConfig 默认奖励规则
func DefaultRewardsConfig() RewardsConfig {
	return RewardsConfig{
		VisitThreshold:     5,
		CooldownHours:      18,
		CodeLength:         10,
		CodeMaxAttempts:    8,
		ManualMaxCount:     100,
		ConflictRetries:    3,
		StatsCacheSeconds:  45,
		StatsRankingLimit:  5,
		StationReviewLimit: 10,
	}
}

// Normalize 对非法取值回退默认值
func (c RewardsConfig) Normalize() RewardsConfig {
	def := DefaultRewardsConfig()
	if c.VisitThreshold <= 0 {
		c.VisitThreshold = def.VisitThreshold
	}
	if c.CooldownHours <= 0 {
		c.CooldownHours = def.CooldownHours
	}
	if c.CodeLength < 8 {
		c.CodeLength = def.CodeLength
	}
	if c.CodeMaxAttempts <= 0 {
		c.CodeMaxAttempts = def.CodeMaxAttempts
	}
	if c.ManualMaxCount <= 0 {
		c.ManualMaxCount = def.ManualMaxCount
	}
	if c.ConflictRetries <= 0 {
		c.ConflictRetries = def.ConflictRetries
	}
	if c.StatsCacheSeconds < 0 {
		c.StatsCacheSeconds = def.StatsCacheSeconds
	}
	if c.StatsRankingLimit <= 0 {
		c.StatsRankingLimit = def.StatsRankingLimit
	}
	if c.StationReviewLimit <= 0 {
		c.StationReviewLimit = def.StationReviewLimit
	}
	return c
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")   // 从 cmd/server 运行时
	v.AddConfigPath("./etc") // etc 文件夹

	setDefaults(v)

	// 环境变量支持，例如 server.port -> SERVER_PORT
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	cfg.Rewards = cfg.Rewards.Normalize()
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "rewards.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/rewards.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 18)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sr")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		"default":  5,
		"critical": 10,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Accept-Language",
		"Authorization",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.review_rate_limit.window_seconds", 60)
	v.SetDefault("security.review_rate_limit.max_attempts", 5)
	v.SetDefault("security.claim_rate_limit.window_seconds", 60)
	v.SetDefault("security.claim_rate_limit.max_attempts", 30)
	v.SetDefault("security.password_policy.min_length", 8)
	v.SetDefault("security.password_policy.require_upper", false)
	v.SetDefault("security.password_policy.require_lower", true)
	v.SetDefault("security.password_policy.require_number", true)
	v.SetDefault("captcha.enabled", false)
	v.SetDefault("captcha.length", 5)
	v.SetDefault("captcha.width", 240)
	v.SetDefault("captcha.height", 80)
	v.SetDefault("captcha.noise_count", 2)
	v.SetDefault("captcha.show_line", 2)
	v.SetDefault("captcha.expire_seconds", 300)
	v.SetDefault("captcha.max_store", 10240)
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.port", 587)
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.from_name", "Station Rewards")

	rewards := DefaultRewardsConfig()
	v.SetDefault("rewards.visit_threshold", rewards.VisitThreshold)
	v.SetDefault("rewards.cooldown_hours", rewards.CooldownHours)
	v.SetDefault("rewards.code_length", rewards.CodeLength)
	v.SetDefault("rewards.code_max_attempts", rewards.CodeMaxAttempts)
	v.SetDefault("rewards.manual_max_count", rewards.ManualMaxCount)
	v.SetDefault("rewards.conflict_retries", rewards.ConflictRetries)
	v.SetDefault("rewards.stats_cache_seconds", rewards.StatsCacheSeconds)
	v.SetDefault("rewards.stats_ranking_limit", rewards.StatsRankingLimit)
	v.SetDefault("rewards.station_review_limit", rewards.StationReviewLimit)
}
