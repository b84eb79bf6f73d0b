package markets

import (
	"fmt"
	"strings"

	"github.com/yourusername/matchday-consensus/internal/config"
)

// DefaultHTFTMultipliers weights each half-time/full-time combination before
// renormalization. Comebacks are rarer than holding a half-time state.
var DefaultHTFTMultipliers = map[string]float64{
	"1/1": 1.2, "X/1": 0.9, "2/1": 0.3,
	"1/X": 0.4, "X/X": 1.1, "2/X": 0.4,
	"1/2": 0.3, "X/2": 0.9, "2/2": 1.2,
}

// DefaultAsianHandicapThresholds are the goal-difference cut points, in
// descending order, separating the six handicap lines.
var DefaultAsianHandicapThresholds = [5]float64{1, 0.5, 0, -0.5, -1}

// Config holds the tunable constants of the engine
type Config struct {
	FirstHalfFactor         float64
	HomeLambdaMin           float64
	HomeLambdaMax           float64
	AwayLambdaMin           float64
	AwayLambdaMax           float64
	HTFTMultipliers         map[string]float64
	AsianHandicapThresholds [5]float64
}

// DefaultConfig returns the standard engine constants
func DefaultConfig() Config {
	mult := make(map[string]float64, len(DefaultHTFTMultipliers))
	for k, v := range DefaultHTFTMultipliers {
		mult[k] = v
	}
	return Config{
		FirstHalfFactor:         0.45,
		HomeLambdaMin:           0.5,
		HomeLambdaMax:           4.0,
		AwayLambdaMin:           0.3,
		AwayLambdaMax:           3.5,
		HTFTMultipliers:         mult,
		AsianHandicapThresholds: DefaultAsianHandicapThresholds,
	}
}

// FromConfig converts app config to engine config. Zero values keep the
// defaults and multiplier overrides are merged onto the default table.
func FromConfig(cfg config.MarketsConfig) (Config, error) {
	out := DefaultConfig()
	if cfg.FirstHalfFactor > 0 {
		out.FirstHalfFactor = cfg.FirstHalfFactor
	}
	if cfg.HomeLambdaMin > 0 {
		out.HomeLambdaMin = cfg.HomeLambdaMin
	}
	if cfg.HomeLambdaMax > 0 {
		out.HomeLambdaMax = cfg.HomeLambdaMax
	}
	if cfg.AwayLambdaMin > 0 {
		out.AwayLambdaMin = cfg.AwayLambdaMin
	}
	if cfg.AwayLambdaMax > 0 {
		out.AwayLambdaMax = cfg.AwayLambdaMax
	}
	for k, v := range cfg.HTFTMultipliers {
		key := strings.ToUpper(k)
		if _, ok := out.HTFTMultipliers[key]; !ok {
			return Config{}, fmt.Errorf("unknown ht/ft combination %q", k)
		}
		out.HTFTMultipliers[key] = v
	}
	if len(cfg.AsianHandicapThresholds) > 0 {
		if len(cfg.AsianHandicapThresholds) != len(out.AsianHandicapThresholds) {
			return Config{}, fmt.Errorf("asian handicap needs %d thresholds, got %d",
				len(out.AsianHandicapThresholds), len(cfg.AsianHandicapThresholds))
		}
		copy(out.AsianHandicapThresholds[:], cfg.AsianHandicapThresholds)
	}
	return out, out.Validate()
}

// Validate validates engine constants
func (c Config) Validate() error {
	if c.FirstHalfFactor <= 0 || c.FirstHalfFactor >= 1 {
		return fmt.Errorf("first half factor must be in (0,1)")
	}
	if c.HomeLambdaMin <= 0 || c.HomeLambdaMin >= c.HomeLambdaMax {
		return fmt.Errorf("home lambda bounds are invalid")
	}
	if c.AwayLambdaMin <= 0 || c.AwayLambdaMin >= c.AwayLambdaMax {
		return fmt.Errorf("away lambda bounds are invalid")
	}
	for k, v := range c.HTFTMultipliers {
		if v < 0 {
			return fmt.Errorf("ht/ft multiplier %s must not be negative", k)
		}
	}
	t := c.AsianHandicapThresholds
	for i := 1; i < len(t); i++ {
		if t[i] >= t[i-1] {
			return fmt.Errorf("asian handicap thresholds must be strictly descending")
		}
	}
	return nil
}
