// Package config loads process configuration from defaults, an optional
// YAML file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app" yaml:"app"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Razorpay RazorpayConfig `mapstructure:"razorpay" yaml:"razorpay"`
	Payment  PaymentConfig  `mapstructure:"payment" yaml:"payment"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

type AppConfig struct {
	Env string `mapstructure:"env" yaml:"env"`
}

type HTTPConfig struct {
	Addr        string   `mapstructure:"addr" yaml:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

type AuthConfig struct {
	SigningKeyCurrent  string        `mapstructure:"signing_key_current" yaml:"signing_key_current"`
	SigningKeyPrevious string        `mapstructure:"signing_key_previous" yaml:"signing_key_previous"`
	TokenTTL           time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	CookieSecure       bool          `mapstructure:"cookie_secure" yaml:"cookie_secure"`
}

type RazorpayConfig struct {
	KeyID     string        `mapstructure:"key_id" yaml:"key_id"`
	KeySecret string        `mapstructure:"key_secret" yaml:"key_secret"`
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Enabled reports whether both gateway credentials are present.
func (r RazorpayConfig) Enabled() bool {
	return r.KeyID != "" && r.KeySecret != ""
}

type PaymentConfig struct {
	Currency  string `mapstructure:"currency" yaml:"currency"`
	MaxAmount int64  `mapstructure:"max_amount" yaml:"max_amount"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("auth.signing_key_current", "")
	v.SetDefault("auth.signing_key_previous", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("razorpay.key_id", "")
	v.SetDefault("razorpay.key_secret", "")
	v.SetDefault("razorpay.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("razorpay.timeout", 10*time.Second)
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.max_amount", int64(50_000_000))
	v.SetDefault("log.level", "info")
}

// Load reads configuration. configFile may be empty; envFile is optional and
// a missing one is not an error.
func Load(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// HTTP_CORS_ORIGINS arrives as one comma separated string.
	cfg.HTTP.CORSOrigins = splitList(strings.Join(cfg.HTTP.CORSOrigins, ","))

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Auth.SigningKeyCurrent == "" {
		return errors.New("AUTH_SIGNING_KEY_CURRENT is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	if c.Payment.MaxAmount <= 0 {
		return errors.New("PAYMENT_MAX_AMOUNT must be positive")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "******"
	}
	c.Database.URL = mask(c.Database.URL)
	c.Auth.SigningKeyCurrent = mask(c.Auth.SigningKeyCurrent)
	c.Auth.SigningKeyPrevious = mask(c.Auth.SigningKeyPrevious)
	c.Razorpay.KeySecret = mask(c.Razorpay.KeySecret)
	return c
}
