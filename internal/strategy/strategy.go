// Package strategy implements the sampling strategies under comparison.
//
// Every strategy draws one group identifier from the population [1, N] per
// call. Each instance exclusively owns its random source; two strategies
// never share one, which keeps per-strategy results attributable and, for
// the seeded constructors, reproducible.
package strategy

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// DefaultGroups is the reference population size.
const DefaultGroups = 33

// ErrGroupOutOfRange reports a Sample call with a group start outside [1, N].
var ErrGroupOutOfRange = errors.New("group start out of range")

// Strategy produces one sample per call from the population [1, N].
type Strategy interface {
	// Name returns a stable identifier used for lookup and ranking.
	Name() string
	// Description explains how the strategy draws samples.
	Description() string
	// Sample returns a group in [1, N]. groupStart is validated against
	// [1, N]; the draw itself always covers the whole population.
	Sample(groupStart int) (int, error)
	// TimeComplexity reports the per-sample cost.
	TimeComplexity() string
	// Secure reports whether the bit source is cryptographically secure.
	Secure() bool
}

// Defaults returns the three reference strategies for a population,
// each seeded from the clock.
func Defaults(groups int) ([]Strategy, error) {
	uniform, err := NewUniform(groups)
	if err != nil {
		return nil, err
	}
	shuffle, err := NewShuffle(groups)
	if err != nil {
		return nil, err
	}
	corrected, err := NewCorrected(groups)
	if err != nil {
		return nil, err
	}
	return []Strategy{uniform, shuffle, corrected}, nil
}

// DefaultsSeeded returns the three reference strategies with fixed seeds
// derived from base. Each strategy gets its own offset so their sources
// stay independent.
func DefaultsSeeded(groups int, base int64) ([]Strategy, error) {
	uniform, err := NewUniformSeeded(groups, base)
	if err != nil {
		return nil, err
	}
	shuffle, err := NewShuffleSeeded(groups, base+1)
	if err != nil {
		return nil, err
	}
	corrected, err := NewCorrectedSeeded(groups, base+2)
	if err != nil {
		return nil, err
	}
	return []Strategy{uniform, shuffle, corrected}, nil
}

func validateGroups(groups int) error {
	if groups < 2 {
		return fmt.Errorf("population must have at least 2 groups, got %d", groups)
	}
	return nil
}

func checkGroupStart(groupStart, groups int) error {
	if groupStart < 1 || groupStart > groups {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrGroupOutOfRange, groupStart, groups)
	}
	return nil
}

func clockSeed() int64 {
	return time.Now().UnixNano()
}

func newSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
