// Package config provides configuration management for the matchday analyzer.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Reasoning   ReasoningConfig   `mapstructure:"reasoning" validate:"required"`
	Cache       CacheConfig       `mapstructure:"cache" validate:"required"`
	Consensus   ConsensusConfig   `mapstructure:"consensus" validate:"required"`
	Arbitration ArbitrationConfig `mapstructure:"arbitration" validate:"required"`
	Markets     MarketsConfig     `mapstructure:"markets" validate:"required"`
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler" validate:"required"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Secrets     SecretsConfig     `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
	Language    string `mapstructure:"language" validate:"omitempty,oneof=en tr de"`
}

// DatabaseConfig represents database connection configuration. An empty host
// selects the in-memory repository.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_with=Host"`
	User               string `mapstructure:"user" validate:"required_with=Host"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// Enabled reports whether a postgres database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// ReasoningConfig configures the external reasoning provider
type ReasoningConfig struct {
	BaseURL            string            `mapstructure:"base_url" validate:"required,url"`
	APIKey             string            `mapstructure:"api_key"`
	Model              string            `mapstructure:"model" validate:"required"`
	AgentModels        map[string]string `mapstructure:"agent_models"`
	Temperature        float64           `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens          int               `mapstructure:"max_tokens" validate:"required,gt=0"`
	TimeoutSeconds     int               `mapstructure:"timeout_seconds" validate:"required,min=8,max=15"`
	MaxRetries         int               `mapstructure:"max_retries" validate:"gte=0,lte=2"`
	RetryWaitMinMillis int               `mapstructure:"retry_wait_min_ms" validate:"required,gt=0"`
	RetryWaitMaxMillis int               `mapstructure:"retry_wait_max_ms" validate:"required,gt=0"`
	RateLimit          float64           `mapstructure:"rate_limit" validate:"required,gt=0"`
	CircuitBreakerMax  int               `mapstructure:"circuit_breaker_max" validate:"required,gt=0"`
	CooldownSeconds    int               `mapstructure:"cooldown_seconds" validate:"required,gt=0"`
}

// Timeout returns the per-call timeout
func (r ReasoningConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// ModelFor returns the model configured for an agent, or the default model
func (r ReasoningConfig) ModelFor(agent string) string {
	if m, ok := r.AgentModels[agent]; ok && m != "" {
		return m
	}
	return r.Model
}

// CacheConfig configures the reasoning response cache
type CacheConfig struct {
	Backend    string      `mapstructure:"backend" validate:"required,cachebackend"`
	TTLSeconds int         `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	MaxSize    int         `mapstructure:"max_size" validate:"required,gt=0"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// TTL returns the cache entry lifetime
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RedisConfig holds redis connection parameters
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db" validate:"gte=0"`
	PoolSize   int    `mapstructure:"pool_size" validate:"gte=0"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// AgentWeights is a per-agent weight table for one family
type AgentWeights struct {
	Stats    float64 `mapstructure:"stats" validate:"gte=0"`
	Odds     float64 `mapstructure:"odds" validate:"gte=0"`
	Strategy float64 `mapstructure:"strategy" validate:"gte=0"`
}

// ConsensusConfig holds the weight tables of the consensus calculator
type ConsensusConfig struct {
	MatchResult AgentWeights `mapstructure:"match_result" validate:"required"`
	OverUnder   AgentWeights `mapstructure:"over_under" validate:"required"`
	BTTS        AgentWeights `mapstructure:"btts" validate:"required"`
}

// ArbitrationVoteWeights weights the four fallback vote sources
type ArbitrationVoteWeights struct {
	Stats        float64 `mapstructure:"stats" validate:"gte=0"`
	Odds         float64 `mapstructure:"odds" validate:"gte=0"`
	DeepAnalysis float64 `mapstructure:"deep_analysis" validate:"gte=0"`
	Strategy     float64 `mapstructure:"strategy" validate:"gte=0"`
}

// ArbitrationConfig holds the arbitration thresholds
type ArbitrationConfig struct {
	Enabled                bool                   `mapstructure:"enabled"`
	Weights                ArbitrationVoteWeights `mapstructure:"weights" validate:"required"`
	TrapAgreementMax       float64                `mapstructure:"trap_agreement_max" validate:"gt=0,lte=1"`
	ValueEdgeMin           float64                `mapstructure:"value_edge_min" validate:"gt=0"`
	ValueAgreementMax      float64                `mapstructure:"value_agreement_max" validate:"gt=0,lte=1"`
	LowAgreementMax        float64                `mapstructure:"low_agreement_max" validate:"gt=0,lte=1"`
	LowValueEdgeMax        float64                `mapstructure:"low_value_edge_max" validate:"gte=0"`
	FallbackConfidenceCap  float64                `mapstructure:"fallback_confidence_cap" validate:"gt=0,lte=100"`
	ReasonedConfidenceCap  float64                `mapstructure:"reasoned_confidence_cap" validate:"gt=0,lte=100"`
	SurpriseMinOdds        float64                `mapstructure:"surprise_min_odds" validate:"gt=1"`
	SurpriseMinProb        float64                `mapstructure:"surprise_min_prob" validate:"gt=0,lt=1"`
	SurpriseMinEdge        float64                `mapstructure:"surprise_min_edge" validate:"gte=0"`
	ContradictionThreshold float64                `mapstructure:"contradiction_threshold" validate:"gte=0,lt=1"`
}

// MarketsConfig holds the tunable constants of the markets engine
type MarketsConfig struct {
	FirstHalfFactor         float64            `mapstructure:"first_half_factor" validate:"gt=0,lt=1"`
	HomeLambdaMin           float64            `mapstructure:"home_lambda_min" validate:"gt=0"`
	HomeLambdaMax           float64            `mapstructure:"home_lambda_max" validate:"gtfield=HomeLambdaMin"`
	AwayLambdaMin           float64            `mapstructure:"away_lambda_min" validate:"gt=0"`
	AwayLambdaMax           float64            `mapstructure:"away_lambda_max" validate:"gtfield=AwayLambdaMin"`
	HTFTMultipliers         map[string]float64 `mapstructure:"ht_ft_multipliers"`
	AsianHandicapThresholds []float64          `mapstructure:"asian_handicap_thresholds" validate:"omitempty,len=5"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port                int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	RequestTimeoutSecs  int      `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	ShutdownTimeoutSecs int      `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig configures housekeeping jobs
type SchedulerConfig struct {
	Enabled                   bool `mapstructure:"enabled"`
	PendingGaugeIntervalSecs  int  `mapstructure:"pending_gauge_interval_seconds" validate:"required,gte=5"`
	CacheSweepIntervalSeconds int  `mapstructure:"cache_sweep_interval_seconds" validate:"required,gte=5"`
}

// TracingConfig configures AWS X-Ray tracing
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"gte=0,lte=1"`
	DaemonAddr   string  `mapstructure:"daemon_addr" validate:"required_if=Enabled true"`
}

// SecretsConfig locates the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
