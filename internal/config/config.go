// File: internal/config/config.go
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// PaymentRateLimit is the number of payment attempts per customer per minute; 0 disables it.
	PaymentRateLimit int `yaml:"payment_rate_limit"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // catalog cache ttl
}

type PaymentConfig struct {
	Provider        string        `yaml:"provider"` // stripe | noop
	DefaultCurrency string        `yaml:"default_currency"`
	GatewayTimeout  time.Duration `yaml:"gateway_timeout"` // per charge HTTP call
	Stripe          struct {
		SecretKey string `yaml:"secret_key"`
	} `yaml:"stripe"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type BillingConfig struct {
	// LockTTL must outlive a charge plus its persistence phase.
	LockTTL time.Duration `yaml:"lock_ttl"`
	// PersistTimeout bounds the local transaction after a confirmed charge.
	PersistTimeout time.Duration `yaml:"persist_timeout"`
	StatsInterval  time.Duration `yaml:"stats_interval"`
}

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Payment  PaymentConfig  `yaml:"payment"`
	Auth     AuthConfig     `yaml:"auth"`
	Billing  BillingConfig  `yaml:"billing"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads -config and -dev from the command line.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	return Load(configPath, dev)
}

// Load parses the file at path. ${VAR} references are expanded from the environment.
func Load(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = 10 * time.Second
	}
	if cfg.HTTP.WriteTimeout <= 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	cfg.Payment.Provider = strings.ToLower(strings.TrimSpace(cfg.Payment.Provider))
	if cfg.Payment.Provider == "" {
		if cfg.Runtime.Dev {
			cfg.Payment.Provider = "noop"
		} else {
			cfg.Payment.Provider = "stripe"
		}
	}
	if cfg.Payment.DefaultCurrency == "" {
		cfg.Payment.DefaultCurrency = "DKK"
	}
	cfg.Payment.DefaultCurrency = strings.ToUpper(cfg.Payment.DefaultCurrency)
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "notionpay"
	}
	if cfg.Payment.GatewayTimeout <= 0 {
		cfg.Payment.GatewayTimeout = 30 * time.Second
	}
	if cfg.Billing.PersistTimeout <= 0 {
		cfg.Billing.PersistTimeout = 15 * time.Second
	}
	if cfg.Billing.LockTTL <= 0 {
		cfg.Billing.LockTTL = 2 * (cfg.Payment.GatewayTimeout + cfg.Billing.PersistTimeout)
	}
	if cfg.Billing.StatsInterval <= 0 {
		cfg.Billing.StatsInterval = time.Minute
	}
}

// Minimal validation
func (cfg *Config) validate() error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	switch cfg.Payment.Provider {
	case "stripe":
		if cfg.Payment.Stripe.SecretKey == "" {
			return errors.New("payment.stripe.secret_key is required for the stripe provider")
		}
	case "noop":
		if !cfg.Runtime.Dev {
			return errors.New("payment.provider noop is only allowed with -dev")
		}
	default:
		return fmt.Errorf("unknown payment.provider %q", cfg.Payment.Provider)
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if cfg.Billing.LockTTL <= cfg.Payment.GatewayTimeout+cfg.Billing.PersistTimeout {
		return fmt.Errorf("billing.lock_ttl (%s) must exceed payment.gateway_timeout + billing.persist_timeout (%s)",
			cfg.Billing.LockTTL, cfg.Payment.GatewayTimeout+cfg.Billing.PersistTimeout)
	}
	if len(cfg.Payment.DefaultCurrency) != 3 {
		return errors.New("payment.default_currency must be a 3-letter code")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
