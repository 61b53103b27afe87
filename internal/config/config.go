/**
 * @description
 * This package handles the configuration management for the savings-service.
 * It uses the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings. Behavior branches that depend on optional configuration (bot
 * verification, outbound revalidation) are resolved once here into explicit
 * flags instead of being re-derived from the environment throughout the code.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the savings-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort     string `mapstructure:"SERVER_PORT"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// Outbound revalidation webhook (frontend cache refresh after writes).
	FrontendURL        string `mapstructure:"FRONTEND_URL"`
	RevalidationSecret string `mapstructure:"REVALIDATION_SECRET"`

	// Bot verification. An empty secret enables simulated mode.
	RecaptchaSecretKey string  `mapstructure:"RECAPTCHA_SECRET_KEY"`
	RecaptchaMinScore  float64 `mapstructure:"RECAPTCHA_MIN_SCORE"`

	// Catalog read facade.
	CatalogAPIURL          string `mapstructure:"CATALOG_API_URL"`
	CatalogCacheTTLSeconds int    `mapstructure:"CATALOG_CACHE_TTL_SECONDS"`

	// Optional infrastructure.
	RedisURL    string `mapstructure:"REDIS_URL"`
	CachePrefix string `mapstructure:"CACHE_PREFIX"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	// Derived once at load time.
	BotVerificationEnabled bool
	RevalidationEnabled    bool
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
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("REVALIDATION_SECRET", "dev-secret")
	viper.SetDefault("RECAPTCHA_MIN_SCORE", 0.5)
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 3600)
	viper.SetDefault("CACHE_PREFIX", "savings:catalog")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("ALLOWED_ORIGINS")
	_ = viper.BindEnv("FRONTEND_URL")
	_ = viper.BindEnv("REVALIDATION_SECRET")
	_ = viper.BindEnv("RECAPTCHA_SECRET_KEY")
	_ = viper.BindEnv("RECAPTCHA_MIN_SCORE")
	_ = viper.BindEnv("CATALOG_API_URL")
	_ = viper.BindEnv("CATALOG_CACHE_TTL_SECONDS")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("CACHE_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	config.FrontendURL = strings.TrimSpace(config.FrontendURL)
	config.RevalidationSecret = strings.TrimSpace(config.RevalidationSecret)
	config.RecaptchaSecretKey = strings.TrimSpace(config.RecaptchaSecretKey)
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RabbitMQURL = strings.TrimSpace(config.RabbitMQURL)

	if config.RecaptchaMinScore <= 0 || config.RecaptchaMinScore > 1 {
		log.Printf("level=warn component=config msg=\"recaptcha score out of range; using default\" value=%f", config.RecaptchaMinScore)
		config.RecaptchaMinScore = 0.5
	}
	if config.CatalogCacheTTLSeconds <= 0 {
		config.CatalogCacheTTLSeconds = 3600
	}

	config.BotVerificationEnabled = config.RecaptchaSecretKey != ""
	config.RevalidationEnabled = config.FrontendURL != "" && config.RevalidationSecret != ""

	return
}
