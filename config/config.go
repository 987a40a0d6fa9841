package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Daraja DarajaConfig `mapstructure:"daraja"`
	Wallet WalletConfig `mapstructure:"wallet"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// DarajaConfig holds the gateway identity and per-call budgets.
type DarajaConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	ConsumerKey     string        `mapstructure:"consumer_key"`
	ConsumerSecret  string        `mapstructure:"consumer_secret"`
	ShortCode       string        `mapstructure:"short_code"`
	PassKey         string        `mapstructure:"pass_key"`
	CallbackURL     string        `mapstructure:"callback_url"` // publicly reachable /callback
	AccountRef      string        `mapstructure:"account_ref"`
	TransactionDesc string        `mapstructure:"transaction_desc"`
	Timezone        string        `mapstructure:"timezone"`
	TokenMargin     time.Duration `mapstructure:"token_margin"`
	AuthTimeout     time.Duration `mapstructure:"auth_timeout"`
	PushTimeout     time.Duration `mapstructure:"push_timeout"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
}

// WalletConfig holds the downstream wallet-service relay target.
type WalletConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	CallbackPath string        `mapstructure:"callback_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CallbackEndpoint returns the full wallet relay URL.
func (w WalletConfig) CallbackEndpoint() string {
	return strings.TrimRight(w.BaseURL, "/") + w.CallbackPath
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: RELAY.
// Nested keys use underscore: RELAY_DARAJA_CONSUMER_KEY, RELAY_WALLET_BASE_URL, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("daraja.base_url", "https://sandbox.safaricom.co.ke")
	v.SetDefault("daraja.consumer_key", "")
	v.SetDefault("daraja.consumer_secret", "")
	v.SetDefault("daraja.short_code", "")
	v.SetDefault("daraja.pass_key", "")
	v.SetDefault("daraja.callback_url", "")
	v.SetDefault("daraja.account_ref", "Payment")
	v.SetDefault("daraja.transaction_desc", "Push payment")
	v.SetDefault("daraja.timezone", "Africa/Nairobi")
	v.SetDefault("daraja.token_margin", "10s")
	v.SetDefault("daraja.auth_timeout", "10s")
	v.SetDefault("daraja.push_timeout", "30s")
	v.SetDefault("daraja.query_timeout", "15s")
	v.SetDefault("wallet.base_url", "")
	v.SetDefault("wallet.callback_path", "/api/payments/mpesa/callback")
	v.SetDefault("wallet.timeout", "10s")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: RELAY_DARAJA_SHORT_CODE -> daraja.short_code
	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the process must refuse to start without.
func (c *Config) Validate() error {
	var missing []string
	required := map[string]string{
		"daraja.consumer_key":    c.Daraja.ConsumerKey,
		"daraja.consumer_secret": c.Daraja.ConsumerSecret,
		"daraja.short_code":      c.Daraja.ShortCode,
		"daraja.pass_key":        c.Daraja.PassKey,
		"daraja.callback_url":    c.Daraja.CallbackURL,
		"wallet.base_url":        c.Wallet.BaseURL,
	}
	for key, val := range required {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}
