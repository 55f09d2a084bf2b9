package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 9090
  mode: debug
database:
  host: db.internal
  port: 5432
  user: ledger
  password: secret
  db_name: stayledger
redis:
  enabled: true
  addr: redis:6379
exchange:
  base_currency: THB
  cache_ttl: 6h
  provider_timeout: 2s
  chain_deadline: 10s
  providers:
    - name: open-er-api
      url: https://open.er-api.com/v6/latest/{base}
      rates_path: $.rates
    - name: currencylayer
      url: http://api.currencylayer.com/live?access_key={key}&source={base}
      requires_key: true
      rates_path: $.quotes
      key_prefixed: true
commission:
  default_management_rate: 15
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "THB", cfg.Exchange.BaseCurrency)
	assert.Equal(t, 6*time.Hour, cfg.Exchange.CacheTTL)
	require.Len(t, cfg.Exchange.Providers, 2)
	assert.True(t, cfg.Exchange.Providers[1].KeyPrefixed)
	assert.Equal(t, 15.0, cfg.Commission.DefaultManagementRate)
	// defaults still applied
	assert.Equal(t, DefaultDBMaxConns, cfg.Database.MaxConns)
	assert.Equal(t, DefaultLegacySources, cfg.Booking.LegacySources)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("STAYLEDGER_DATABASE_HOST", "override.internal")
	t.Setenv("STAYLEDGER_CURRENCYLAYER_KEY", "cl-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "cl-key", cfg.Exchange.Providers[1].APIKey)
	assert.Empty(t, cfg.Exchange.Providers[0].APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := createTempConfigFile(t, "server:\n  mode: nope\ndatabase:\n  user: ledger\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STAYLEDGER_DATABASE_USER", "env-user")
	t.Setenv("STAYLEDGER_EXCHANGE_BASE_CURRENCY", "EUR")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-user", cfg.Database.User)
	assert.Equal(t, "EUR", cfg.Exchange.BaseCurrency)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad("/nonexistent/config.yaml") })
}

//Personal.AI order the ending
