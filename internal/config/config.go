package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Geo       GeoConfig       `mapstructure:"geo"`
	Preview   PreviewConfig   `mapstructure:"preview"`
	Redirect  RedirectConfig  `mapstructure:"redirect"`
	ShortCode ShortCodeConfig `mapstructure:"shortcode"`
	Stats     StatsConfig     `mapstructure:"stats"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	BaseURL         string        `mapstructure:"base_url"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	LinkTTL  int    `mapstructure:"link_ttl"` // 秒
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type GeoConfig struct {
	MMDBPath   string        `mapstructure:"mmdb_path"`
	ReverseURL string        `mapstructure:"reverse_url"`
	UserAgent  string        `mapstructure:"user_agent"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type PreviewConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Timeout       time.Duration `mapstructure:"timeout"`
	AssetDir      string        `mapstructure:"asset_dir"`
	URLPrefix     string        `mapstructure:"url_prefix"`
	MaxImageBytes int64         `mapstructure:"max_image_bytes"`
}

// 跳转模式
const (
	RedirectModePreview  = "preview"
	RedirectModeLocation = "location"
	RedirectModeDirect   = "direct"
)

type RedirectConfig struct {
	Mode       string        `mapstructure:"mode"`
	GeoTimeout time.Duration `mapstructure:"geo_timeout"` // 浏览器定位等待时间
	Countdown  int           `mapstructure:"countdown"`   // 上报坐标后的倒计时（秒）
}

type ShortCodeConfig struct {
	Length      int `mapstructure:"length"`
	MaxAttempts int `mapstructure:"max_attempts"`
}

type StatsConfig struct {
	Cron string `mapstructure:"cron"`
}

// setDefaults 默认值，config.yaml 缺失时也能启动
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.link_ttl", 3600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/shortlink.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("geo.mmdb_path", "./data/GeoLite2-City.mmdb")
	v.SetDefault("geo.reverse_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geo.user_agent", "shortlink-geo/1.0")
	v.SetDefault("geo.timeout", 5*time.Second)

	v.SetDefault("preview.enabled", true)
	v.SetDefault("preview.timeout", 5*time.Second)
	v.SetDefault("preview.asset_dir", "./public/uploads")
	v.SetDefault("preview.url_prefix", "/uploads")
	v.SetDefault("preview.max_image_bytes", 5<<20)

	v.SetDefault("redirect.mode", RedirectModePreview)
	v.SetDefault("redirect.geo_timeout", 5*time.Second)
	v.SetDefault("redirect.countdown", 3)

	v.SetDefault("shortcode.length", 8)
	v.SetDefault("shortcode.max_attempts", 3)

	v.SetDefault("stats.cron", "*/10 * * * *")
}

// Load 读取 .env、config.yaml 和环境变量
func Load(paths ...string) (*Config, error) {
	// .env 不存在时忽略（生产环境直接使用环境变量）
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	_ = v.BindEnv("server.base_url", "BASE_URL")
	_ = v.BindEnv("db.dsn", "DATABASE_URL")
	_ = v.BindEnv("db.driver", "DB_DRIVER")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("geo.mmdb_path", "GEOIP_DB")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Println("Warning: config.yaml not found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if port := strings.TrimSpace(v.GetString("port")); port != "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Server.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Server.BaseURL), "/")
	cfg.Preview.URLPrefix = "/" + strings.Trim(cfg.Preview.URLPrefix, "/")

	switch cfg.Redirect.Mode {
	case RedirectModePreview, RedirectModeLocation, RedirectModeDirect:
	default:
		cfg.Redirect.Mode = RedirectModePreview
	}
	if cfg.Redirect.GeoTimeout <= 0 {
		cfg.Redirect.GeoTimeout = 5 * time.Second
	}
	if cfg.Redirect.Countdown < 0 {
		cfg.Redirect.Countdown = 0
	}
	if cfg.ShortCode.Length <= 0 {
		cfg.ShortCode.Length = 8
	}
	if cfg.ShortCode.MaxAttempts <= 0 {
		cfg.ShortCode.MaxAttempts = 1
	}

	return &cfg, nil
}
