package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 缓存配置（可选，Addr 为空则不启用）
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AMQPConfig 消息队列配置（可选，URL 为空则不启用）
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// JWTConfig 鉴权配置
type JWTConfig struct {
	SecretKey      string        `mapstructure:"secret_key"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
}

// StorageConfig 图片存储配置
type StorageConfig struct {
	Provider  string `mapstructure:"provider"` // "s3" | "local"
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	CDNDomain string `mapstructure:"cdn_domain"`
	BasePath  string `mapstructure:"base_path"`
	LocalDir  string `mapstructure:"local_dir"`
	LocalURL  string `mapstructure:"local_url"`
}

// WebhookConfig 订单事件回调配置（可选，URL 为空则不发送）
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// 库存预警阈值
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

// ==================== 加载 ====================

// Load 读取配置
// 优先级：环境变量 > config.yaml > 默认值
// 环境变量前缀 TECHMART，如 TECHMART_DATABASE_DSN
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("TECHMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// 配置文件缺失不算错误，全部走默认值/环境变量
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.dsn",
		"host=localhost user=techmart password=techmart dbname=techmart port=5432 sslmode=disable")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "techmart.orders")

	v.SetDefault("jwt.secret_key", "techmart-secret-key-change-in-production")
	v.SetDefault("jwt.access_token_ttl", 2*time.Hour)
	v.SetDefault("jwt.issuer", "techmart")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.base_path", "techmart")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.local_url", "http://localhost:8080/uploads")

	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout", 15*time.Second)
	v.SetDefault("webhook.low_stock_threshold", 5)
}
