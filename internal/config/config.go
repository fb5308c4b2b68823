package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Rates   RatesConfig   `mapstructure:"rates"`
	Auction AuctionConfig `mapstructure:"auction"`
	Bidders BiddersConfig `mapstructure:"bidders"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RatesConfig struct {
	File        string        `mapstructure:"file"`
	FetchURL    string        `mapstructure:"fetch_url"`
	RefreshSpec string        `mapstructure:"refresh_spec"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type AuctionConfig struct {
	TargetCurrency      string        `mapstructure:"target_currency"`
	LossProcessing      bool          `mapstructure:"loss_processing"`
	NotificationTimeout time.Duration `mapstructure:"notification_timeout"`
}

type BiddersConfig struct {
	Endpoints []string      `mapstructure:"endpoints"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Version   string        `mapstructure:"version"`
}

func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("rates.file", "")
	viper.SetDefault("rates.fetch_url", "")
	viper.SetDefault("rates.refresh_spec", "@every 1h")
	viper.SetDefault("rates.cache_ttl", 24*time.Hour)
	viper.SetDefault("auction.target_currency", "USD")
	viper.SetDefault("auction.loss_processing", true)
	viper.SetDefault("auction.notification_timeout", 5*time.Second)
	viper.SetDefault("bidders.endpoints", []string{})
	viper.SetDefault("bidders.timeout", 2*time.Second)
	viper.SetDefault("bidders.version", "2.6")

	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/openrtb-auction/")

	// Environment variable support
	viper.AutomaticEnv()

	// Environment variable mappings
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("rates.file", "RATES_FILE")
	viper.BindEnv("rates.fetch_url", "RATES_FETCH_URL")
	viper.BindEnv("rates.refresh_spec", "RATES_REFRESH_SPEC")
	viper.BindEnv("auction.target_currency", "AUCTION_TARGET_CURRENCY")
	viper.BindEnv("auction.loss_processing", "AUCTION_LOSS_PROCESSING")
	viper.BindEnv("bidders.endpoints", "BIDDER_ENDPOINTS")
	viper.BindEnv("bidders.timeout", "BIDDER_TIMEOUT")
	viper.BindEnv("bidders.version", "BIDDER_OPENRTB_VERSION")

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, continue with defaults and environment variables
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, Redis: %s, Bidders: %d, Target currency: %s",
		c.Server.Host,
		c.Server.Port,
		c.Redis.Address,
		len(c.Bidders.Endpoints),
		c.Auction.TargetCurrency,
	)
}
