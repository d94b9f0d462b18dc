package config

import "fmt"

// RiskConfig tunes deviation risk calculation. FunctionCriticality maps a
// root function code (the two-letter prefix of a requirement code, e.g. "GV")
// to an impact multiplier applied before severity bucketing.
type RiskConfig struct {
	FunctionCriticality map[string]float64 `toml:"function_criticality"`
}

// Finalize applies defaults and validation.
func (c *RiskConfig) Finalize() error {
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites configured multipliers from overlay.
func (c *RiskConfig) Merge(overlay *RiskConfig) {
	if len(overlay.FunctionCriticality) > 0 {
		if c.FunctionCriticality == nil {
			c.FunctionCriticality = make(map[string]float64)
		}
		for fn, mult := range overlay.FunctionCriticality {
			c.FunctionCriticality[fn] = mult
		}
	}
}

func (c *RiskConfig) loadDefaults() {
	if c.FunctionCriticality == nil {
		c.FunctionCriticality = map[string]float64{
			"GV": 1.2,
			"ID": 1.0,
			"PR": 1.1,
			"DE": 1.0,
			"RS": 1.1,
			"RC": 1.0,
		}
	}
}

func (c *RiskConfig) validate() error {
	for fn, mult := range c.FunctionCriticality {
		if mult <= 0 {
			return fmt.Errorf("invalid function_criticality[%s]: %f", fn, mult)
		}
	}
	return nil
}
