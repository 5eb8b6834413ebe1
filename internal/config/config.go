package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv 是新闻 API 凭据的环境变量名。
const APIKeyEnv = "CURRENTS_API_KEY"

// Config 是 newsroom 的顶层配置结构。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	News     NewsConfig     `yaml:"news"`
	Database DatabaseConfig `yaml:"database"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTP 服务配置。时间单位均为秒，SessionTTL 为分钟。
type ServerConfig struct {
	Addr         string          `yaml:"addr"`
	ReadTimeout  int             `yaml:"read_timeout"`
	WriteTimeout int             `yaml:"write_timeout"`
	IdleTimeout  int             `yaml:"idle_timeout"`
	SessionTTL   int             `yaml:"session_ttl"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`

	// TrustProxy 为 true 时按 X-Forwarded-For 识别客户端，仅在反向代理之后开启。
	TrustProxy bool `yaml:"trust_proxy"`
}

// RateLimitConfig 按客户端限流。
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// NewsConfig 新闻源配置。
type NewsConfig struct {
	// Provider 取值 currents 或 rss。
	Provider string    `yaml:"provider"`
	APIURL   string    `yaml:"api_url"`
	APIKey   string    `yaml:"api_key"`
	Language string    `yaml:"language"`
	Timeout  int       `yaml:"timeout"` // 秒
	RSS      RSSConfig `yaml:"rss"`

	// SnapshotTTL 首页默认第 1 页在访客间共享的缓存时长（秒），负数关闭。
	SnapshotTTL int `yaml:"snapshot_ttl"`
}

// RSSConfig RSS 新闻源配置。
type RSSConfig struct {
	Feeds    []RSSFeed `yaml:"feeds"`
	CacheTTL int       `yaml:"cache_ttl"` // 分钟
	PageSize int       `yaml:"page_size"`
}

// RSSFeed 单个订阅源。
type RSSFeed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// DatabaseConfig SQLite 配置。
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EventsConfig Kafka 事件发布配置，Brokers 为空时不发布。
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 先加载工作目录下的 .env（不存在则忽略），再展开 ${VAR_NAME} 形式的环境变量。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("加载 .env 失败: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	expanded := os.Expand(string(data), os.Getenv)

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 5
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = 30
	}
	if cfg.Server.RateLimit.RPS == 0 {
		cfg.Server.RateLimit.RPS = 5
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 10
	}

	if cfg.News.Provider == "" {
		cfg.News.Provider = "currents"
	}
	cfg.News.Provider = strings.ToLower(cfg.News.Provider)
	if cfg.News.APIURL == "" {
		cfg.News.APIURL = "https://api.currentsapi.services/v1/search"
	}
	if cfg.News.Language == "" {
		cfg.News.Language = "en"
	}
	if cfg.News.Timeout == 0 {
		cfg.News.Timeout = 10
	}
	if cfg.News.SnapshotTTL == 0 {
		cfg.News.SnapshotTTL = 60
	}
	// 去除 API Key 两端可能的空白（环境变量展开后常见）
	cfg.News.APIKey = strings.TrimSpace(cfg.News.APIKey)
	if cfg.News.APIKey == "" {
		cfg.News.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	}
	if cfg.News.RSS.CacheTTL == 0 {
		cfg.News.RSS.CacheTTL = 30
	}
	if cfg.News.RSS.PageSize == 0 {
		cfg.News.RSS.PageSize = 20
	}

	cfg.Database.Path = expandHome(cfg.Database.Path)
	if cfg.Database.Path == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.Database.Path = filepath.Join(home, ".newsroom", "newsroom.db")
		} else {
			cfg.Database.Path = "./newsroom.db"
		}
	}

	if cfg.Events.Topic == "" {
		cfg.Events.Topic = "newsroom-articles"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.File = expandHome(cfg.Log.File)
}

func validate(cfg *Config) error {
	switch cfg.News.Provider {
	case "currents", "rss":
	default:
		return fmt.Errorf("不支持的新闻源: %s", cfg.News.Provider)
	}
	for i, f := range cfg.News.RSS.Feeds {
		if strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("news.rss.feeds[%d] 缺少 url", i)
		}
	}
	return nil
}

// expandHome Go 不会自动展开 ~，需要手动替换为用户主目录。
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return path
	}
	return filepath.Join(home, path[2:])
}
