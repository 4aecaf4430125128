package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Thread store backend: "memory" (default) or "redis".
	ThreadStore      string `mapstructure:"THREAD_STORE"`
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisThreadDB    int    `mapstructure:"REDIS_THREAD_DB"`
	ThreadTTLMinutes int    `mapstructure:"THREAD_TTL_MINUTES"`

	// Intent extraction. When the key is empty the rule-based
	// extractor is used instead of Gemini.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Search collaborator. When the URL is empty the static catalog
	// provider is used.
	SearchAPIURL      string `mapstructure:"SEARCH_API_URL"`
	SearchAPIKey      string `mapstructure:"SEARCH_API_KEY"`
	SearchTimeoutSecs int    `mapstructure:"SEARCH_TIMEOUT_SECS"`

	// Settlement collaborator. When the URL is empty bookings settle
	// against the built-in mock ledger.
	SettlementURL         string  `mapstructure:"SETTLEMENT_URL"`
	SettlementTimeoutSecs int     `mapstructure:"SETTLEMENT_TIMEOUT_SECS"`
	SpendCeilingUSD       float64 `mapstructure:"SPEND_CEILING_USD"`
	SwapBufferPct         float64 `mapstructure:"SWAP_BUFFER_PCT"`

	// SSE pacing. Zero disables pacing; ordering never depends on it.
	StreamDelayMS int `mapstructure:"STREAM_DELAY_MS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("THREAD_STORE", "memory")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_THREAD_DB", 0)
	viper.SetDefault("THREAD_TTL_MINUTES", 0)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("SEARCH_API_URL", "")
	viper.SetDefault("SEARCH_API_KEY", "")
	viper.SetDefault("SEARCH_TIMEOUT_SECS", 10)
	viper.SetDefault("SETTLEMENT_URL", "")
	viper.SetDefault("SETTLEMENT_TIMEOUT_SECS", 15)
	viper.SetDefault("SPEND_CEILING_USD", 500.0)
	viper.SetDefault("SWAP_BUFFER_PCT", 2.0)
	viper.SetDefault("STREAM_DELAY_MS", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
