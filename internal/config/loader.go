package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "MATCHDAY"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every field.
// A missing file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers a value for every key so environment overrides work
// even when the file omits the section.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "matchday-consensus")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")
	v.SetDefault("app.language", "en")

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "matchday")
	v.SetDefault("database.user", "matchday")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("reasoning.base_url", "https://api.openai.com")
	v.SetDefault("reasoning.api_key", "")
	v.SetDefault("reasoning.model", "gpt-4o-mini")
	v.SetDefault("reasoning.temperature", 0.3)
	v.SetDefault("reasoning.max_tokens", 1200)
	v.SetDefault("reasoning.timeout_seconds", 12)
	v.SetDefault("reasoning.max_retries", 2)
	v.SetDefault("reasoning.retry_wait_min_ms", 500)
	v.SetDefault("reasoning.retry_wait_max_ms", 3000)
	v.SetDefault("reasoning.rate_limit", 5.0)
	v.SetDefault("reasoning.circuit_breaker_max", 5)
	v.SetDefault("reasoning.cooldown_seconds", 30)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl_seconds", 600)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 10)
	v.SetDefault("cache.redis.tls_enabled", false)
	v.SetDefault("cache.redis.key_prefix", "matchday:reasoning:")

	v.SetDefault("consensus.match_result.stats", 40.0)
	v.SetDefault("consensus.match_result.odds", 35.0)
	v.SetDefault("consensus.match_result.strategy", 25.0)
	v.SetDefault("consensus.over_under.stats", 40.0)
	v.SetDefault("consensus.over_under.odds", 35.0)
	v.SetDefault("consensus.over_under.strategy", 25.0)
	v.SetDefault("consensus.btts.stats", 40.0)
	v.SetDefault("consensus.btts.odds", 35.0)
	v.SetDefault("consensus.btts.strategy", 25.0)

	v.SetDefault("arbitration.enabled", true)
	v.SetDefault("arbitration.weights.stats", 30.0)
	v.SetDefault("arbitration.weights.odds", 25.0)
	v.SetDefault("arbitration.weights.deep_analysis", 25.0)
	v.SetDefault("arbitration.weights.strategy", 20.0)
	v.SetDefault("arbitration.trap_agreement_max", 0.65)
	v.SetDefault("arbitration.value_edge_min", 20.0)
	v.SetDefault("arbitration.value_agreement_max", 0.70)
	v.SetDefault("arbitration.low_agreement_max", 0.45)
	v.SetDefault("arbitration.low_value_edge_max", 10.0)
	v.SetDefault("arbitration.fallback_confidence_cap", 70.0)
	v.SetDefault("arbitration.reasoned_confidence_cap", 85.0)
	v.SetDefault("arbitration.surprise_min_odds", 3.20)
	v.SetDefault("arbitration.surprise_min_prob", 0.25)
	v.SetDefault("arbitration.surprise_min_edge", 0.05)
	v.SetDefault("arbitration.contradiction_threshold", 0.3)

	v.SetDefault("markets.first_half_factor", 0.45)
	v.SetDefault("markets.home_lambda_min", 0.5)
	v.SetDefault("markets.home_lambda_max", 4.0)
	v.SetDefault("markets.away_lambda_min", 0.3)
	v.SetDefault("markets.away_lambda_max", 3.5)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout_seconds", 90)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.pending_gauge_interval_seconds", 60)
	v.SetDefault("scheduler.cache_sweep_interval_seconds", 300)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sampling_rate", 0.05)
	v.SetDefault("tracing.daemon_addr", "127.0.0.1:2000")

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")
}
