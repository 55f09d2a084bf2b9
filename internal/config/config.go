// Package config defines the configuration structures for StayLedger.
// No I/O lives here; only plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// DSN renders the connection URL understood by both pgx and golang-migrate.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisConfig holds Redis connection parameters. When Enabled is false the
// in-process rate cache is used.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the domain-event producer parameters.
type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	ClientID        string   `mapstructure:"client_id"`
	TimeoutMS       int      `mapstructure:"timeout_ms"`
	ProducerRetries int      `mapstructure:"producer_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
}

// MinIOConfig holds object-storage parameters for payout receipts.
type MinIOConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ProviderConfig describes one exchange-rate HTTP source. URL may contain the
// placeholders {base} and {key}. RatesPath is a JSONPath to the rate map in
// the response body; KeyPrefixed marks envelopes whose keys are "<BASE><CODE>".
type ProviderConfig struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	APIKey      string `mapstructure:"api_key"`
	RequiresKey bool   `mapstructure:"requires_key"`
	RatesPath   string `mapstructure:"rates_path"`
	KeyPrefixed bool   `mapstructure:"key_prefixed"`
}

// ExchangeConfig configures the rate cache, provider chain and conversion.
type ExchangeConfig struct {
	BaseCurrency        string           `mapstructure:"base_currency"`
	SupportedCurrencies []string         `mapstructure:"supported_currencies"`
	CacheTTL            time.Duration    `mapstructure:"cache_ttl"`
	ProviderTimeout     time.Duration    `mapstructure:"provider_timeout"`
	ChainDeadline       time.Duration    `mapstructure:"chain_deadline"`
	RequestsPerMinute   int              `mapstructure:"requests_per_minute"`
	Providers           []ProviderConfig `mapstructure:"providers"`
}

// CommissionConfig holds the commission split rates, all in percent.
// Portfolio-manager and referral-agent shares stay zero until configured.
type CommissionConfig struct {
	DefaultManagementRate float64 `mapstructure:"default_management_rate"`
	PortfolioManagerRate  float64 `mapstructure:"portfolio_manager_rate"`
	ReferralAgentRate     float64 `mapstructure:"referral_agent_rate"`
}

// BookingConfig controls provenance detection.
type BookingConfig struct {
	LegacySources []string `mapstructure:"legacy_sources"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Exchange   ExchangeConfig   `mapstructure:"exchange"`
	Commission CommissionConfig `mapstructure:"commission"`
	Booking    BookingConfig    `mapstructure:"booking"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	// MinIO
	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
	}

	// Exchange
	if err := c.Exchange.validate(); err != nil {
		return err
	}

	// Commission
	for name, rate := range map[string]float64{
		"default_management_rate": c.Commission.DefaultManagementRate,
		"portfolio_manager_rate":  c.Commission.PortfolioManagerRate,
		"referral_agent_rate":     c.Commission.ReferralAgentRate,
	} {
		if rate < 0 || rate > 100 {
			return fmt.Errorf("config: commission.%s %.4f is out of range [0, 100]", name, rate)
		}
	}
	if total := c.Commission.DefaultManagementRate + c.Commission.PortfolioManagerRate + c.Commission.ReferralAgentRate; total > 100 {
		return fmt.Errorf("config: commission rates sum to %.4f, exceeding 100", total)
	}

	// Booking
	if len(c.Booking.LegacySources) == 0 {
		return fmt.Errorf("config: booking.legacy_sources must not be empty")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

func (e ExchangeConfig) validate() error {
	if len(e.BaseCurrency) != 3 {
		return fmt.Errorf("config: exchange.base_currency %q must be a 3-letter ISO code", e.BaseCurrency)
	}
	found := false
	for _, code := range e.SupportedCurrencies {
		if strings.EqualFold(code, e.BaseCurrency) {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config: exchange.base_currency %s is not in exchange.supported_currencies", e.BaseCurrency)
	}
	if e.CacheTTL <= 0 {
		return fmt.Errorf("config: exchange.cache_ttl must be positive")
	}
	if e.ProviderTimeout <= 0 {
		return fmt.Errorf("config: exchange.provider_timeout must be positive")
	}
	if e.ChainDeadline < e.ProviderTimeout {
		return fmt.Errorf("config: exchange.chain_deadline %s must be >= provider_timeout %s", e.ChainDeadline, e.ProviderTimeout)
	}
	for i, p := range e.Providers {
		if p.Name == "" || p.URL == "" || p.RatesPath == "" {
			return fmt.Errorf("config: exchange.providers[%d] requires name, url and rates_path", i)
		}
	}
	return nil
}

//Personal.AI order the ending
