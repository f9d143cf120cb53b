package config

import (
	"errors"
	"os"
	"sync"

	"github.com/spf13/viper"
)

var (
	cfg  *Config
	once sync.Once
)

type Config struct {
	DbName        string   `mapstructure:"POSTGRES_DB"`
	DbHost        string   `mapstructure:"POSTGRES_HOST"`
	DbPort        string   `mapstructure:"POSTGRES_PORT"`
	DbUser        string   `mapstructure:"POSTGRES_USER"`
	DbPas         string   `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr     string   `mapstructure:"REDIS_ADDR"`
	RedisPassword string   `mapstructure:"REDIS_PASSWORD"`
	KafkaBrokers  []string `mapstructure:"KAFKA_BROKERS"`
	OrderTopic    string   `mapstructure:"ORDER_EVENT_TOPIC"`
}

// GetConfig loads once from .env plus environment overrides.
func GetConfig() (*Config, error) {
	var err error
	once.Do(func() {
		cfg, err = loadConfig()
	})
	if err != nil {
		cfg = nil
		return nil, err
	}
	return cfg, nil
}

func loadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("POSTGRES_DB", "lab_bookstore")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("ORDER_EVENT_TOPIC", "bookstore.order.events")

	// .env 不存在時靠環境變數與預設值
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	return c, nil
}
