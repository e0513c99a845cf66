package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Store   StoreConfig   `mapstructure:"store"`
	Orders  OrdersConfig  `mapstructure:"orders"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type MongoDBConfig struct {
	URI         string        `mapstructure:"uri"`
	Database    string        `mapstructure:"database"`
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type StoreConfig struct {
	// FilePath is the JSON fallback store location, used when MongoDB
	// is unreachable at startup.
	FilePath string `mapstructure:"file_path"`
	SeedPath string `mapstructure:"seed_path"`
}

type OrdersConfig struct {
	// ConfirmAfter is the age at which a pending order is confirmed on read.
	ConfirmAfter time.Duration `mapstructure:"confirm_after"`
	// DeleteWindow is the age limit for deleting a pending order.
	DeleteWindow time.Duration `mapstructure:"delete_window"`
	// RejectNegativeQuantity rejects order items with quantity <= 0 at
	// creation. Off by default: negative quantities pass through and
	// reduce the computed total.
	RejectNegativeQuantity bool `mapstructure:"reject_negative_quantity"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.database", "feastly")
	v.SetDefault("mongodb.ping_timeout", 5*time.Second)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("store.file_path", "data/store.json")
	v.SetDefault("orders.confirm_after", 7*time.Minute)
	v.SetDefault("orders.delete_window", 7*time.Minute)
	v.SetDefault("orders.reject_negative_quantity", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
