package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	SendGrid   SendGridConfig   `mapstructure:"sendgrid"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	URL          string        `mapstructure:"url"`
	Name         string        `mapstructure:"name"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type RateLimitConfig struct {
	LookupPerMinute int `mapstructure:"lookup_per_minute"`
}

// GatewayConfig selects the payment gateway. Kind is "mock" or "stripe".
type GatewayConfig struct {
	Kind            string `mapstructure:"kind"`
	StripeSecretKey string `mapstructure:"stripe_secret_key"`
	Currency        string `mapstructure:"currency"`
}

type SendGridConfig struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

type SchedulerConfig struct {
	PaymentSweepSpec  string        `mapstructure:"payment_sweep_spec"`
	PaymentAttemptTTL time.Duration `mapstructure:"payment_attempt_ttl"`
}

type LoggingConfig struct {
	Env string `mapstructure:"env"`
}

// legacyEnv keeps the plain variable names older deployments were started with
var legacyEnv = map[string]string{
	"database.url":    "DB_URI",
	"database.name":   "DB_NAME",
	"server.base_url": "BASE_URL",
	"server.port":     "PORT",
}

// Load reads the config file at path, if any, and then the environment.
// Variables are prefixed with POLICE_CASE, e.g. POLICE_CASE_DATABASE_URL.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("database.url", "mongodb://127.0.0.1:27017")
	v.SetDefault("database.name", "police_case")
	v.SetDefault("database.query_timeout", "10s")
	v.SetDefault("auth.jwt_secret", "change-this-in-production")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("redis.url", "")
	v.SetDefault("ratelimit.lookup_per_minute", 20)
	v.SetDefault("gateway.kind", "mock")
	v.SetDefault("gateway.stripe_secret_key", "")
	v.SetDefault("gateway.currency", "irr")
	v.SetDefault("sendgrid.api_key", "")
	v.SetDefault("sendgrid.from_email", "no-reply@police-case.local")
	v.SetDefault("sendgrid.from_name", "Police Case Desk")
	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.folder", "crime-scenes")
	v.SetDefault("scheduler.payment_sweep_spec", "@every 10m")
	v.SetDefault("scheduler.payment_attempt_ttl", "2h")
	v.SetDefault("logging.env", "local")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("POLICE_CASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		_ = v.BindEnv(key, "POLICE_CASE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// New sets up all config related services: it loads the config from the
// environment and replaces the global zap logger to match logging.env
func New() *Config {
	conf, err := Load("")
	if err != nil {
		zap.S().Fatalw("failed to load config", "error", err)
	}

	logger, err := setLogger(conf.Logging.Env)
	if err != nil {
		zap.S().Fatalw("failed to build logger", "error", err)
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

// setLogger builds the zap logger for an environment
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	}
	return zap.NewExample(), nil
}

// SetupLogger replaces the global zap logger for env and returns it so the
// caller can Sync on exit
func SetupLogger(env string) (*zap.Logger, error) {
	logger, err := setLogger(env)
	if err != nil {
		return nil, err
	}
	_ = zap.ReplaceGlobals(logger)
	return logger, nil
}
