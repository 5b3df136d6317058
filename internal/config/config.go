/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables (with an
 * optional .env file), providing a centralized and straightforward way to
 * manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the transfer-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string  `mapstructure:"SERVER_PORT"`
	DatabaseURL              string  `mapstructure:"DATABASE_URL"`
	RedisURL                 string  `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string  `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string  `mapstructure:"RABBITMQ_URL"`
	TransferEventExchange    string  `mapstructure:"TRANSFER_EVENT_EXCHANGE"`
	InternalAPIKey           string  `mapstructure:"INTERNAL_API_KEY"`
	ActionRateLimitPerMinute int     `mapstructure:"ACTION_RATE_LIMIT_PER_MINUTE"`
	DefaultBaseValuation     float64 `mapstructure:"DEFAULT_BASE_VALUATION"`
	SeedDemoData             bool    `mapstructure:"SEED_DEMO_DATA"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "transfersystem:rate_limit")
	viper.SetDefault("TRANSFER_EVENT_EXCHANGE", "transfersystem.events")
	viper.SetDefault("ACTION_RATE_LIMIT_PER_MINUTE", 120)
	viper.SetDefault("DEFAULT_BASE_VALUATION", 1000000)
	viper.SetDefault("SEED_DEMO_DATA", false)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("TRANSFER_EVENT_EXCHANGE")
	_ = viper.BindEnv("INTERNAL_API_KEY", "INTERNAL_API_KEY", "TRANSFER_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("ACTION_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("DEFAULT_BASE_VALUATION")
	_ = viper.BindEnv("SEED_DEMO_DATA")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	// Unmarshal the configuration into the Config struct.
	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	if strings.TrimSpace(config.InternalAPIKey) == "" {
		config.InternalAPIKey = strings.TrimSpace(os.Getenv("TRANSFER_SERVICE_INTERNAL_API_KEY"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "transfersystem:rate_limit"
	}
	if strings.TrimSpace(config.TransferEventExchange) == "" {
		config.TransferEventExchange = "transfersystem.events"
	}

	// Allow specifying the default valuation as a plain string for operators
	// who quote the value in their env files.
	if raw := strings.TrimSpace(viper.GetString("DEFAULT_BASE_VALUATION")); raw != "" {
		if value, parseErr := strconv.ParseFloat(raw, 64); parseErr != nil {
			log.Printf("level=warn component=config msg=\"invalid DEFAULT_BASE_VALUATION\" value=%q err=%v", raw, parseErr)
		} else {
			config.DefaultBaseValuation = value
		}
	}
	if config.DefaultBaseValuation < 0 {
		log.Printf("level=warn component=config msg=\"negative default base valuation configured; coercing to zero\" value=%f", config.DefaultBaseValuation)
		config.DefaultBaseValuation = 0
	}

	if config.ActionRateLimitPerMinute < 0 {
		config.ActionRateLimitPerMinute = 0
	}

	return
}
