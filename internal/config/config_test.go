package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/StayLedger/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Database.User = "stayledger"
	cfg.Database.Password = "secret"
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"port out of range", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"missing db host", func(c *config.Config) { c.Database.Host = "" }, "database.host"},
		{"missing db user", func(c *config.Config) { c.Database.User = "" }, "database.user"},
		{"missing db name", func(c *config.Config) { c.Database.DBName = "" }, "database.db_name"},
		{"redis enabled no addr", func(c *config.Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis.addr"},
		{"kafka enabled no brokers", func(c *config.Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"minio enabled no bucket", func(c *config.Config) { c.MinIO.Enabled = true; c.MinIO.Bucket = "" }, "minio.endpoint"},
		{"base currency length", func(c *config.Config) { c.Exchange.BaseCurrency = "BAHT" }, "exchange.base_currency"},
		{"base not supported", func(c *config.Config) { c.Exchange.BaseCurrency = "CHF" }, "supported_currencies"},
		{"zero ttl", func(c *config.Config) { c.Exchange.CacheTTL = -time.Second }, "cache_ttl"},
		{"deadline shorter than timeout", func(c *config.Config) { c.Exchange.ChainDeadline = time.Second }, "chain_deadline"},
		{"provider without path", func(c *config.Config) { c.Exchange.Providers[0].RatesPath = "" }, "providers[0]"},
		{"negative rate", func(c *config.Config) { c.Commission.ReferralAgentRate = -1 }, "referral_agent_rate"},
		{"rates exceed 100", func(c *config.Config) {
			c.Commission.DefaultManagementRate = 60
			c.Commission.PortfolioManagerRate = 50
		}, "exceeding 100"},
		{"empty legacy sources", func(c *config.Config) { c.Booking.LegacySources = nil }, "legacy_sources"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "USD", cfg.Exchange.BaseCurrency)
	assert.Equal(t, 12*time.Hour, cfg.Exchange.CacheTTL)
	assert.Len(t, cfg.Exchange.Providers, 4)
	assert.Equal(t, "open-er-api", cfg.Exchange.Providers[0].Name)
	assert.False(t, cfg.Exchange.Providers[0].RequiresKey)
	assert.True(t, cfg.Exchange.Providers[3].KeyPrefixed)
	assert.Contains(t, cfg.Booking.LegacySources, "retail-agent")
	assert.Zero(t, cfg.Commission.PortfolioManagerRate)
	assert.Zero(t, cfg.Commission.ReferralAgentRate)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Exchange.BaseCurrency = "THB"
	cfg.Exchange.CacheTTL = time.Hour
	cfg.Database.Port = 6543
	config.ApplyDefaults(cfg)

	assert.Equal(t, "THB", cfg.Exchange.BaseCurrency)
	assert.Equal(t, time.Hour, cfg.Exchange.CacheTTL)
	assert.Equal(t, 6543, cfg.Database.Port)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { config.ApplyDefaults(nil) })
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/ledger?sslmode=disable", d.DSN())
}

//Personal.AI order the ending
