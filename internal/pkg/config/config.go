package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	TopicPrefix   string   `mapstructure:"topic_prefix"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	NumPartitions int      `mapstructure:"num_partitions"`
}

type EventStoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

type Config struct {
	Redis      RedisConfig      `mapstructure:"redis"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	EventStore EventStoreConfig `mapstructure:"eventstore"`
	// CommissionRate 平台抽成 字串形式讀入避免浮點誤差
	CommissionRate string `mapstructure:"commission_rate"`
}

// Load 讀取config.yaml與環境變數 環境變數優先
// 環境變數用FURNIMART_前綴 巢狀key用底線分隔
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("FURNIMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("postgres.dsn", "host=localhost user=postgres password=postgres dbname=furnimart port=5432 sslmode=disable")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "furnimart")
	v.SetDefault("kafka.consumer_group", "furnimart-core")
	v.SetDefault("kafka.num_partitions", 8)
	v.SetDefault("eventstore.dsn", "esdb://localhost:2113?tls=false")
	v.SetDefault("commission_rate", "0.10")

	if err := v.ReadInConfig(); err != nil {
		// 沒有config檔時只靠預設值與環境變數
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := cfg.Commission(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Commission 抽成率轉decimal
func (c *Config) Commission() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.CommissionRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid commission rate %q: %w", c.CommissionRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("commission rate %q out of range", c.CommissionRate)
	}
	return rate, nil
}
