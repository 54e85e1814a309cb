// Package config loads riskpulse's runtime configuration from environment
// variables and an optional config file, with sane defaults for every
// setting, layered on top of viper for file and env binding.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// KafkaConfig configures the message bus connection shared by the pipeline
// and API binaries.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	InputTopic    string        `mapstructure:"input_topic"`
	OutputTopic   string        `mapstructure:"output_topic"`
	ClientID      string        `mapstructure:"client_id"`
	ProducerFlush time.Duration `mapstructure:"producer_flush"`
	RetryMax      int           `mapstructure:"retry_max"`
}

// RedisConfig configures the cache connection.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl_seconds"`
}

// HTTPConfig configures the query/streaming API server.
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// PerformanceConfig configures the rolling performance tracker.
type PerformanceConfig struct {
	LogInterval int `mapstructure:"log_interval"`
	WindowSize  int `mapstructure:"window_size"`
}

// ShutdownConfig configures graceful drain behavior.
type ShutdownConfig struct {
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
}

// Config is the top-level configuration for both riskpulse binaries.
type Config struct {
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Redis       RedisConfig       `mapstructure:"redis"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Performance PerformanceConfig `mapstructure:"performance"`
	Shutdown    ShutdownConfig    `mapstructure:"shutdown"`
}

// Load builds a Config from defaults, an optional config file (set via
// RISKPULSE_CONFIG_FILE or passed explicitly), and environment variable
// overrides prefixed RISKPULSE_ (e.g. RISKPULSE_KAFKA_BROKERS).
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RISKPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = v.GetString("config_file")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.input_topic", "portfolio-updates-v2")
	v.SetDefault("kafka.output_topic", "risk-updates")
	v.SetDefault("kafka.client_id", "riskpulse")
	v.SetDefault("kafka.producer_flush", 10*time.Millisecond)
	v.SetDefault("kafka.retry_max", 3)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl_seconds", 300)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)

	v.SetDefault("performance.log_interval", 100)
	v.SetDefault("performance.window_size", 1000)

	v.SetDefault("shutdown.drain_timeout", 10*time.Second)
}
