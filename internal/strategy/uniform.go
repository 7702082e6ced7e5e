package strategy

import "math/rand"

// Uniform maps one draw from the underlying source directly onto [1, N].
// Its bias is exactly the bias of the source, which is what the evaluator
// measures against the other strategies.
type Uniform struct {
	groups int
	rnd    *rand.Rand
}

// NewUniform returns a clock-seeded uniform strategy.
func NewUniform(groups int) (*Uniform, error) {
	return NewUniformSeeded(groups, clockSeed())
}

// NewUniformSeeded returns a uniform strategy with a fixed seed.
func NewUniformSeeded(groups int, seed int64) (*Uniform, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}
	return &Uniform{groups: groups, rnd: newSource(seed)}, nil
}

// Name implements Strategy.
func (u *Uniform) Name() string { return "uniform draw" }

// Description implements Strategy.
func (u *Uniform) Description() string {
	return "Single direct draw from the pseudo-random source mapped onto the " +
		"population range. Fast and simple; inherits whatever bias the source has."
}

// TimeComplexity implements Strategy.
func (u *Uniform) TimeComplexity() string { return "O(1)" }

// Secure implements Strategy.
func (u *Uniform) Secure() bool { return false }

// Reseed resets the strategy's random source.
func (u *Uniform) Reseed(seed int64) { u.rnd.Seed(seed) }

// Sample implements Strategy.
func (u *Uniform) Sample(groupStart int) (int, error) {
	if err := checkGroupStart(groupStart, u.groups); err != nil {
		return 0, err
	}
	return u.rnd.Intn(u.groups) + 1, nil
}
