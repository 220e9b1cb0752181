package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	Engine      EngineConfig     `mapstructure:"engine"`
	Optimizer   OptimizerConfig  `mapstructure:"optimizer"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	DatabaseURL  string `mapstructure:"database_url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// CandleTTLMinutes bounds how stale a cached daily history may get.
	CandleTTLMinutes int `mapstructure:"candle_ttl_minutes"`
}

type MarketDataConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	StooqFallback  bool   `mapstructure:"stooq_fallback"`
}

type EngineConfig struct {
	DefaultBudget   float64 `mapstructure:"default_budget"`
	HoldDays        int     `mapstructure:"hold_days"`
	BuyThreshold    float64 `mapstructure:"buy_threshold"`
	SellThreshold   float64 `mapstructure:"sell_threshold"`
	BacktestWorkers int     `mapstructure:"backtest_workers"`
}

type OptimizerConfig struct {
	Scale   float64 `mapstructure:"scale"`
	TopK    int     `mapstructure:"top_k"`
	Workers int     `mapstructure:"workers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("market_data.api_key", "FINNHUB_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind FINNHUB_API_KEY environment variable: %w", err)
	}

	// A missing config file is fine: defaults plus environment variables
	// form a complete configuration.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Engine.BuyThreshold <= config.Engine.SellThreshold {
		return nil, fmt.Errorf("engine buy threshold (%.1f) must exceed sell threshold (%.1f)",
			config.Engine.BuyThreshold, config.Engine.SellThreshold)
	}
	if config.Environment != "development" && config.MarketData.APIKey == "" {
		return nil, fmt.Errorf("FINNHUB_API_KEY is required in non-development environments")
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "stackiq")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.candle_ttl_minutes", 15)

	viper.SetDefault("market_data.base_url", "https://finnhub.io/api/v1")
	viper.SetDefault("market_data.api_key", "")
	viper.SetDefault("market_data.timeout_seconds", 15)
	viper.SetDefault("market_data.stooq_fallback", true)

	viper.SetDefault("engine.default_budget", 10000.0)
	viper.SetDefault("engine.hold_days", 15)
	viper.SetDefault("engine.buy_threshold", 67.0)
	viper.SetDefault("engine.sell_threshold", 33.0)
	viper.SetDefault("engine.backtest_workers", 4)

	viper.SetDefault("optimizer.scale", 0.2)
	viper.SetDefault("optimizer.top_k", 5)
	viper.SetDefault("optimizer.workers", 2)
}
