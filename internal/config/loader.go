package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "STAYLEDGER"

// envKeys are bound explicitly so that STAYLEDGER_* variables are honoured
// even when the key is absent from the config file.
var envKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
	"database.host", "database.port", "database.user", "database.password", "database.db_name",
	"database.ssl_mode", "database.max_conns", "database.migration_path",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.key_prefix",
	"kafka.enabled", "kafka.brokers", "kafka.client_id",
	"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket", "minio.use_ssl",
	"log.level", "log.format", "log.output",
	"metrics.enabled", "metrics.namespace", "metrics.path",
	"exchange.base_currency", "exchange.supported_currencies", "exchange.cache_ttl",
	"exchange.provider_timeout", "exchange.chain_deadline", "exchange.requests_per_minute",
	"commission.default_management_rate", "commission.portfolio_manager_rate", "commission.referral_agent_rate",
	"booking.legacy_sources",
}

// providerKeyEnv maps provider names to the env var carrying their API key.
var providerKeyEnv = map[string]string{
	"exchangerate-api": "EXCHANGERATE_API_KEY",
	"freecurrencyapi":  "FREECURRENCYAPI_KEY",
	"currencylayer":    "CURRENCYLAYER_KEY",
}

// newViper builds a Viper instance with YAML file type, the STAYLEDGER_ env
// prefix and a "." → "_" key replacer, so "database.host" resolves to
// STAYLEDGER_DATABASE_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	for name, env := range providerKeyEnv {
		_ = v.BindEnv("provider_keys."+name, envPrefix+"_"+env)
	}
	return v
}

// Load reads the YAML file at configPath, merges STAYLEDGER_* overrides,
// applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from STAYLEDGER_* environment variables only.
//
//	STAYLEDGER_<SECTION>_<FIELD>   e.g.  STAYLEDGER_DATABASE_HOST
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)
	applyProviderKeys(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// applyProviderKeys injects provider API keys from the environment into
// providers whose key is not already set in the file.
func applyProviderKeys(v *viper.Viper, cfg *Config) {
	for i := range cfg.Exchange.Providers {
		p := &cfg.Exchange.Providers[i]
		if p.APIKey != "" {
			continue
		}
		if key := v.GetString("provider_keys." + p.Name); key != "" {
			p.APIKey = key
		}
	}
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config on every write. Invalid intermediate states are skipped. Only the
// log level and provider settings are meant to be applied at runtime.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on error. For use in main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
