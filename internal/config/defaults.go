package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBName          = "stayledger"
	DefaultDBMaxConns      = 25
	DefaultDBMigrationPath = "file://migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "stayledger:"

	DefaultKafkaBroker   = "localhost:9092"
	DefaultKafkaClientID = "stayledger"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "payout-receipts"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "stayledger"
	DefaultMetricsPath      = "/metrics"

	DefaultBaseCurrency      = "USD"
	DefaultRateCacheTTL      = 12 * time.Hour
	DefaultProviderTimeout   = 5 * time.Second
	DefaultChainDeadline     = 15 * time.Second
	DefaultRequestsPerMinute = 30
)

// DefaultSupportedCurrencies lists the codes a provider response must cover
// before it is accepted.
var DefaultSupportedCurrencies = []string{
	"USD", "EUR", "GBP", "THB", "AUD", "SGD", "JPY", "CNY", "HKD", "IDR", "MYR", "CAD",
}

// DefaultLegacySources are raw booking sources written by the legacy
// confirmed/checked-in booking store.
var DefaultLegacySources = []string{"direct", "retail_agent", "retail-agent", "pms_internal"}

// DefaultProviders is the fixed-priority exchange-rate chain. The free
// provider comes first; credentialed ones are skipped until a key is set.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			Name:      "open-er-api",
			URL:       "https://open.er-api.com/v6/latest/{base}",
			RatesPath: "$.rates",
		},
		{
			Name:        "exchangerate-api",
			URL:         "https://v6.exchangerate-api.com/v6/{key}/latest/{base}",
			RequiresKey: true,
			RatesPath:   "$.conversion_rates",
		},
		{
			Name:        "freecurrencyapi",
			URL:         "https://api.freecurrencyapi.com/v1/latest?apikey={key}&base_currency={base}",
			RequiresKey: true,
			RatesPath:   "$.data",
		},
		{
			Name:        "currencylayer",
			URL:         "http://api.currencylayer.com/live?access_key={key}&source={base}",
			RequiresKey: true,
			RatesPath:   "$.quotes",
			KeyPrefixed: true,
		},
	}
}

// ApplyDefaults fills every zero-value field in cfg. Explicit values win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = cfg.Database.MaxConns / 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultDBMigrationPath
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = DefaultKafkaClientID
	}
	if cfg.Kafka.TimeoutMS == 0 {
		cfg.Kafka.TimeoutMS = 10000
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = 15 * time.Minute
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Exchange ──────────────────────────────────────────────────────────────
	if cfg.Exchange.BaseCurrency == "" {
		cfg.Exchange.BaseCurrency = DefaultBaseCurrency
	}
	if len(cfg.Exchange.SupportedCurrencies) == 0 {
		cfg.Exchange.SupportedCurrencies = append([]string(nil), DefaultSupportedCurrencies...)
	}
	if cfg.Exchange.CacheTTL == 0 {
		cfg.Exchange.CacheTTL = DefaultRateCacheTTL
	}
	if cfg.Exchange.ProviderTimeout == 0 {
		cfg.Exchange.ProviderTimeout = DefaultProviderTimeout
	}
	if cfg.Exchange.ChainDeadline == 0 {
		cfg.Exchange.ChainDeadline = DefaultChainDeadline
	}
	if cfg.Exchange.RequestsPerMinute == 0 {
		cfg.Exchange.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if len(cfg.Exchange.Providers) == 0 {
		cfg.Exchange.Providers = DefaultProviders()
	}

	// ── Booking ───────────────────────────────────────────────────────────────
	if len(cfg.Booking.LegacySources) == 0 {
		cfg.Booking.LegacySources = append([]string(nil), DefaultLegacySources...)
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

//Personal.AI order the ending
