package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AppPort                int    `mapstructure:"APP_PORT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	MongoURI               string `mapstructure:"MONGO_URI"`
	MongoDBName            string `mapstructure:"MONGO_DB_NAME"`
	MongoConnectAttempts   uint   `mapstructure:"MONGO_CONNECT_ATTEMPTS"`
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	JWTExpiryMinutes       int    `mapstructure:"JWT_EXPIRY_MINUTES"`
	BcryptCost             int    `mapstructure:"BCRYPT_COST"`
	LoginRatePerMin        int    `mapstructure:"LOGIN_RATE_PER_MIN"`
	RedisURL               string `mapstructure:"REDIS_URL"`
	WSOutboxBuffer         int    `mapstructure:"WS_OUTBOX_BUFFER"`
	WSMaxSessionSec        int    `mapstructure:"WS_MAX_SESSION_SEC"`
	RouteMetricsEnabled    bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	RequestLoggingEnabled  bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
	CORSAllowOrigins       string `mapstructure:"CORS_ALLOW_ORIGINS"`
	PyroscopeServerAddress string `mapstructure:"PYROSCOPE_SERVER_ADDRESS"`
}

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file
// It caches the result for subsequent calls
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "notekeeper")
	v.SetDefault("MONGO_CONNECT_ATTEMPTS", 3)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY_MINUTES", 7*24*60)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOGIN_RATE_PER_MIN", 5)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("WS_OUTBOX_BUFFER", 256)
	v.SetDefault("WS_MAX_SESSION_SEC", 900)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("REQUEST_LOGGING_ENABLED", true)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("PYROSCOPE_SERVER_ADDRESS", "")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// A missing .env is fine, a malformed one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// Validation errors returned by Config.Validate
var (
	ErrAppPortRange         = errors.New("APP_PORT must be between 1 and 65535")
	ErrLogLevelInvalid      = errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	ErrLogFormatInvalid     = errors.New("LOG_FORMAT must be one of json, text, pretty")
	ErrMongoURIEmpty        = errors.New("MONGO_URI cannot be empty")
	ErrMongoDBNameEmpty     = errors.New("MONGO_DB_NAME cannot be empty")
	ErrMongoConnectAttempts = errors.New("MONGO_CONNECT_ATTEMPTS must be between 1 and 10")
	ErrJWTSecretRequired    = errors.New("JWT_SECRET cannot be empty")
	ErrJWTSecretTooShort    = errors.New("JWT_SECRET must be at least 32 characters")
	ErrJWTExpiryMinutes     = errors.New("JWT_EXPIRY_MINUTES must be greater than 0")
	ErrBcryptCostRange      = errors.New("BCRYPT_COST must be between 10 and 16")
	ErrLoginRatePerMin      = errors.New("LOGIN_RATE_PER_MIN cannot be negative")
	ErrWSOutboxBuffer       = errors.New("WS_OUTBOX_BUFFER must be greater than 0")
	ErrWSMaxSessionSec      = errors.New("WS_MAX_SESSION_SEC must be greater than 0")
)

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return ErrAppPortRange
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrLogLevelInvalid
	}
	switch c.LogFormat {
	case "json", "text", "pretty":
	default:
		return ErrLogFormatInvalid
	}
	if c.MongoURI == "" {
		return ErrMongoURIEmpty
	}
	if c.MongoDBName == "" {
		return ErrMongoDBNameEmpty
	}
	if c.MongoConnectAttempts < 1 || c.MongoConnectAttempts > 10 {
		return ErrMongoConnectAttempts
	}
	if c.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	if len(c.JWTSecret) < 32 {
		return ErrJWTSecretTooShort
	}
	if c.JWTExpiryMinutes <= 0 {
		return ErrJWTExpiryMinutes
	}
	if c.BcryptCost < 10 || c.BcryptCost > 16 {
		return ErrBcryptCostRange
	}
	if c.LoginRatePerMin < 0 {
		return ErrLoginRatePerMin
	}
	if c.WSOutboxBuffer <= 0 {
		return ErrWSOutboxBuffer
	}
	if c.WSMaxSessionSec <= 0 {
		return ErrWSMaxSessionSec
	}
	return nil
}
