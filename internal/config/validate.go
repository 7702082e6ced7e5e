package config

import (
	"fmt"

	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/model"
)

// Accepted bounds for user-supplied run parameters.
const (
	MinIterations = 3
	MaxIterations = 20
)

// Validate rejects degenerate run configurations before any trial begins.
func Validate(cfg model.RunConfig) error {
	if cfg.Groups < 2 {
		return fmt.Errorf("groups must be >= 2, got %d", cfg.Groups)
	}
	if cfg.Iterations < MinIterations || cfg.Iterations > MaxIterations {
		return fmt.Errorf("iterations must be between %d and %d, got %d",
			MinIterations, MaxIterations, cfg.Iterations)
	}
	if cfg.SamplesPerTrial < 1 {
		return fmt.Errorf("samples-per-trial must be > 0, got %d", cfg.SamplesPerTrial)
	}
	return nil
}
