package simulator

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the intent generator settings, loaded from environment
// variables.
type Config struct {
	Instruments []string
	PriceMin    float64
	PriceMax    float64
	// InvalidRate is the fraction of generated intents that deliberately
	// violate a validation rule, to exercise the rejection path.
	InvalidRate float64
	Seed        int64
}

// LoadConfig loads generator configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SIM_INSTRUMENTS", []string{"Rose", "Lavender", "Lotus", "Tulip", "Orchid"})
	v.SetDefault("SIM_PRICE_MIN", 5.0)
	v.SetDefault("SIM_PRICE_MAX", 15.0)
	v.SetDefault("SIM_INVALID_RATE", 0.0)
	v.SetDefault("SIM_SEED", 1)

	v.AutomaticEnv()

	cfg := &Config{
		Instruments: v.GetStringSlice("SIM_INSTRUMENTS"),
		PriceMin:    v.GetFloat64("SIM_PRICE_MIN"),
		PriceMax:    v.GetFloat64("SIM_PRICE_MAX"),
		InvalidRate: v.GetFloat64("SIM_INVALID_RATE"),
		Seed:        v.GetInt64("SIM_SEED"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if len(cfg.Instruments) == 0 {
		return fmt.Errorf("SIM_INSTRUMENTS must not be empty")
	}
	if cfg.PriceMin <= 0 {
		return fmt.Errorf("SIM_PRICE_MIN must be positive")
	}
	if cfg.PriceMax < cfg.PriceMin {
		return fmt.Errorf("SIM_PRICE_MAX must be at least SIM_PRICE_MIN")
	}
	if cfg.InvalidRate < 0 || cfg.InvalidRate > 1 {
		return fmt.Errorf("SIM_INVALID_RATE must be within [0, 1]")
	}
	return nil
}
