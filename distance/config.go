package distance

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// SolverConfig selects and parameterizes a transport solver backend. The
// zero value is not useful; start from DefaultSolverConfig or decode a TOML
// document over it.
type SolverConfig struct {
	// Method is either "exact" or "sinkhorn".
	Method string `toml:"method"`

	// Epsilon, MaxIterations and Tolerance apply to the sinkhorn method
	// and are ignored by the exact solver.
	Epsilon       float64 `toml:"epsilon"`
	MaxIterations int     `toml:"max_iterations"`
	Tolerance     float64 `toml:"tolerance"`
}

// DefaultSolverConfig returns the configuration used when a caller supplies
// none: the exact backend, with sinkhorn parameters preset to sensible
// values should the method be switched.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Method:        "exact",
		Epsilon:       0.01,
		MaxIterations: 10000,
		Tolerance:     1e-6,
	}
}

// DecodeSolverConfig decodes a TOML document into a solver configuration,
// with defaults for any field the document omits.
func DecodeSolverConfig(data string) (SolverConfig, error) {
	cfg := DefaultSolverConfig()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return SolverConfig{}, fmt.Errorf("decoding solver config: %w", err)
	}
	return cfg, nil
}

// Solver constructs the backend the configuration describes.
func (c SolverConfig) Solver() (Solver, error) {
	switch c.Method {
	case "exact":
		return Exact{}, nil
	case "sinkhorn":
		return Sinkhorn{
			Epsilon:       c.Epsilon,
			MaxIterations: c.MaxIterations,
			Tolerance:     c.Tolerance,
		}, nil
	default:
		return nil, fmt.Errorf("unknown solver method %q", c.Method)
	}
}
