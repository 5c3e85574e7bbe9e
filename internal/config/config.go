package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "ESTIMATOR"

// Config holds application configuration sourced from config.yaml and the
// environment.
type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Admin     AdminConfig     `mapstructure:"admin"`
	DB        DBConfig        `mapstructure:"db"`
	Rates     RatesConfig     `mapstructure:"rates"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AdminConfig holds the bootstrap admin account and session signing key.
type AdminConfig struct {
	Email         string        `mapstructure:"email"`
	Password      string        `mapstructure:"password"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
}

// DBConfig points at the application SQLite database.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// RatesConfig selects where the rate configuration lives.
type RatesConfig struct {
	Driver      string        `mapstructure:"driver"`
	DatabaseURL string        `mapstructure:"database_url"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	Currency    string        `mapstructure:"currency"`
}

// RedisConfig configures the shared cache. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig configures form submission throttling.
type RateLimitConfig struct {
	Backend  string       `mapstructure:"backend"`
	Estimate WindowConfig `mapstructure:"estimate"`
	Inquiry  WindowConfig `mapstructure:"inquiry"`
}

// WindowConfig is a fixed-window allowance.
type WindowConfig struct {
	Limit  int           `mapstructure:"limit"`
	Period time.Duration `mapstructure:"period"`
}

// NotifyConfig configures inquiry emails. An empty WebhookURL logs mail
// instead of sending it. DeliveryTimeout bounds the background emails for
// one inquiry; MaxElapsed bounds relay retries for one message.
type NotifyConfig struct {
	WebhookURL      string        `mapstructure:"webhook_url"`
	Token           string        `mapstructure:"token"`
	From            string        `mapstructure:"from"`
	AdminEmail      string        `mapstructure:"admin_email"`
	RatePerSecond   float64       `mapstructure:"rate_per_second"`
	Burst           int           `mapstructure:"burst"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
	MaxElapsed      time.Duration `mapstructure:"max_elapsed"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// IsDev reports whether the service runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev" || c.Env == "development"
}

// Load reads .env (best effort), an optional config.yaml in the working
// directory, and ESTIMATOR_* environment variables, in increasing priority.
func Load() (*Config, error) {
	// Production should inject real env vars; a missing .env is fine.
	if err := loadDotEnv(".env"); err != nil {
		zap.L().Warn("failed to load .env", zap.Error(err))
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Warnings lists settings that are missing but not fatal.
func (c *Config) Warnings() []string {
	var out []string
	if c.Admin.Email == "" {
		out = append(out, "admin.email is not set")
	}
	if c.Admin.Password == "" {
		out = append(out, "admin.password is not set")
	}
	if c.Admin.SessionSecret == "" {
		out = append(out, "admin.session_secret is not set")
	}
	if c.Rates.Driver == "postgres" && c.Rates.DatabaseURL == "" {
		out = append(out, "rates.database_url is not set for the postgres driver")
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.session_secret", "")
	v.SetDefault("admin.session_ttl", 12*time.Hour)
	v.SetDefault("db.path", "./dev.db")
	v.SetDefault("rates.driver", "sqlite")
	v.SetDefault("rates.database_url", "")
	v.SetDefault("rates.cache_ttl", time.Minute)
	v.SetDefault("rates.currency", "USD")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.estimate.limit", 30)
	v.SetDefault("rate_limit.estimate.period", time.Minute)
	v.SetDefault("rate_limit.inquiry.limit", 5)
	v.SetDefault("rate_limit.inquiry.period", time.Hour)
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.token", "")
	v.SetDefault("notify.from", "hello@localhost")
	v.SetDefault("notify.admin_email", "")
	v.SetDefault("notify.rate_per_second", 2.0)
	v.SetDefault("notify.burst", 1)
	v.SetDefault("notify.delivery_timeout", 2*time.Minute)
	v.SetDefault("notify.max_elapsed", time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
