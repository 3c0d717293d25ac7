package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jeancollas/paypal-sdk-go/pkg/paypal"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	PayPalMode         string `mapstructure:"paypal_mode"`
	PayPalEndpoint     string `mapstructure:"paypal_endpoint"`
	PayPalClientID     string `mapstructure:"paypal_client_id"`
	PayPalClientSecret string `mapstructure:"paypal_client_secret"`
	PayPalAccessToken  string `mapstructure:"paypal_access_token"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	HTTPProxy          string        `mapstructure:"http_proxy"`

	DiagnosticsStore           string        `mapstructure:"diagnostics_store"`
	DiagnosticsPath            string        `mapstructure:"diagnostics_path"`
	DiagnosticsTTLSeconds      int64         `mapstructure:"diagnostics_ttl_seconds"`
	DiagnosticsCleanupSeconds  int64         `mapstructure:"diagnostics_cleanup_interval_seconds"`
	DiagnosticsTTL             time.Duration `mapstructure:"-"`
	DiagnosticsCleanupInterval time.Duration `mapstructure:"-"`

	AuditSinksFile string `mapstructure:"audit_sinks_file"`
}

// Load reads configuration from configs/.env, the environment and their defaults.
func Load() (*Config, error) {
	return LoadFrom("configs/.env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is not an error.
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()

	v.SetDefault("app_name", "paypalctl")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("paypal_mode", paypal.ModeSandbox)
	v.SetDefault("paypal_endpoint", "")
	v.SetDefault("paypal_client_id", "")
	v.SetDefault("paypal_client_secret", "")
	v.SetDefault("paypal_access_token", "")
	v.SetDefault("http_timeout_seconds", 360)
	v.SetDefault("http_proxy", "")
	v.SetDefault("diagnostics_store", "bbolt")
	v.SetDefault("diagnostics_path", "./data/diagnostics.db")
	v.SetDefault("diagnostics_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("diagnostics_cleanup_interval_seconds", int64(time.Hour/time.Second))
	v.SetDefault("audit_sinks_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.PayPalMode = strings.ToLower(strings.TrimSpace(cfg.PayPalMode))
	switch cfg.PayPalMode {
	case paypal.ModeLive, paypal.ModeSandbox, paypal.ModeSecurityTestSandbox:
	default:
		return nil, fmt.Errorf("invalid paypal_mode %q", cfg.PayPalMode)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.DiagnosticsTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid diagnostics_ttl_seconds (must be positive seconds)")
	}
	if cfg.DiagnosticsCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid diagnostics_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.DiagnosticsTTL = time.Duration(cfg.DiagnosticsTTLSeconds) * time.Second
	cfg.DiagnosticsCleanupInterval = time.Duration(cfg.DiagnosticsCleanupSeconds) * time.Second

	return &cfg, nil
}

// SDKConfig converts the settings into the key/value map read by the dispatcher.
// Empty values are left out so they never shadow SDK defaults.
func (c *Config) SDKConfig() paypal.ConfigMap {
	out := paypal.ConfigMap{
		paypal.ConfigMode:              c.PayPalMode,
		paypal.ConfigConnectionTimeout: strconv.FormatInt(c.HTTPTimeout.Milliseconds(), 10),
	}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			out[key] = value
		}
	}
	set(paypal.ConfigEndpoint, c.PayPalEndpoint)
	set(paypal.ConfigClientID, c.PayPalClientID)
	set(paypal.ConfigClientSecret, c.PayPalClientSecret)
	set(paypal.ConfigProxyAddress, c.HTTPProxy)
	return out
}

// Redacted returns a copy that is safe to log.
func (c Config) Redacted() Config {
	if c.PayPalClientSecret != "" {
		c.PayPalClientSecret = "[REDACTED]"
	}
	if c.PayPalAccessToken != "" {
		c.PayPalAccessToken = "[REDACTED]"
	}
	return c
}
