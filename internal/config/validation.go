package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("cachebackend", validateCacheBackend)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateCacheBackend(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "memory", "redis", "none":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Reasoning.RetryWaitMinMillis > cfg.Reasoning.RetryWaitMaxMillis {
		return fmt.Errorf("retry_wait_min_ms cannot exceed retry_wait_max_ms")
	}

	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Addr == "" {
		return fmt.Errorf("redis cache backend requires cache.redis.addr")
	}

	for _, table := range []struct {
		name string
		w    AgentWeights
	}{
		{"match_result", cfg.Consensus.MatchResult},
		{"over_under", cfg.Consensus.OverUnder},
		{"btts", cfg.Consensus.BTTS},
	} {
		if table.w.Stats+table.w.Odds+table.w.Strategy <= 0 {
			return fmt.Errorf("consensus %s weights must not all be zero", table.name)
		}
	}

	w := cfg.Arbitration.Weights
	if w.Stats+w.Odds+w.DeepAnalysis+w.Strategy <= 0 {
		return fmt.Errorf("arbitration weights must not all be zero")
	}

	if cfg.Arbitration.FallbackConfidenceCap > cfg.Arbitration.ReasonedConfidenceCap {
		return fmt.Errorf("fallback_confidence_cap cannot exceed reasoned_confidence_cap")
	}

	if t := cfg.Markets.AsianHandicapThresholds; len(t) > 0 {
		for i := 1; i < len(t); i++ {
			if t[i] >= t[i-1] {
				return fmt.Errorf("asian_handicap_thresholds must be strictly descending")
			}
		}
	}

	if cfg.Database.Enabled() && cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	if cfg.IsProduction() && cfg.Database.Enabled() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_with", "required_if":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max", "len":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte", "gtfield":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "cachebackend":
			fmt.Fprintf(&b, "- Field '%s' must be one of: memory, redis, none\n", field)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.Reasoning.APIKey == "" {
			return fmt.Errorf("production environment requires a reasoning API key")
		}
		if isTestCredential(cfg.Reasoning.APIKey) {
			return fmt.Errorf("production environment should not use a placeholder reasoning API key")
		}
	}
	return nil
}

var testCredentialPattern = regexp.MustCompile(`(?i)(test|demo|example|placeholder|YOUR_)`)

func isTestCredential(credential string) bool {
	return testCredentialPattern.MatchString(credential)
}
