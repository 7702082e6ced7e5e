package strategy

import (
	"math"
	"math/bits"
	"math/rand"
	"time"
)

// Mixing constants inherited from the reference configuration. The prime
// modulus is not verified against the population size; whether the staged
// reduction covers every group evenly is exactly the question the evaluator
// answers empirically, so the constants must stay as they are.
const (
	xorMask      = 0x5A5A5A5A
	primeModulus = 97
	lcgA         = 31
	lcgC         = 17
	lcgM         = 101
	rotateBits   = 3
)

// Corrected layers an experimental bit-mixing pipeline over the raw source:
// XOR mask, modular reduction by a prime, a linear congruential pass, a bit
// rotation, and a clock-derived entropy XOR. None of it is mathematically
// justified; the strategy exists to test whether ad hoc mixing can stand in
// for a proven unbiased algorithm.
//
// The clock step makes output non-reproducible even under a fixed seed.
// WithClock substitutes the clock for tests.
type Corrected struct {
	groups int
	rnd    *rand.Rand
	now    func() int64
}

// NewCorrected returns a clock-seeded corrected strategy.
func NewCorrected(groups int) (*Corrected, error) {
	return NewCorrectedSeeded(groups, clockSeed())
}

// NewCorrectedSeeded returns a corrected strategy with a fixed seed. The
// entropy step still reads the real clock unless WithClock replaces it.
func NewCorrectedSeeded(groups int, seed int64) (*Corrected, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}
	return &Corrected{
		groups: groups,
		rnd:    newSource(seed),
		now:    func() int64 { return time.Now().UnixNano() },
	}, nil
}

// WithClock replaces the entropy clock and returns the strategy.
func (c *Corrected) WithClock(now func() int64) *Corrected {
	c.now = now
	return c
}

// Name implements Strategy.
func (c *Corrected) Name() string { return "corrected draw" }

// Description implements Strategy.
func (c *Corrected) Description() string {
	return "Raw draw followed by XOR masking, modular reduction, a linear " +
		"congruential pass, bit rotation, and clock-derived entropy. " +
		"Experimental: the bias characteristics are unverified."
}

// TimeComplexity implements Strategy.
func (c *Corrected) TimeComplexity() string { return "O(1)" }

// Secure implements Strategy.
func (c *Corrected) Secure() bool { return false }

// Reseed resets the strategy's random source.
func (c *Corrected) Reseed(seed int64) { c.rnd.Seed(seed) }

// Sample implements Strategy.
func (c *Corrected) Sample(groupStart int) (int, error) {
	if err := checkGroupStart(groupStart, c.groups); err != nil {
		return 0, err
	}
	base := int32(c.rnd.Uint32())
	masked := base ^ xorMask
	reduced := abs64(int64(masked)) % primeModulus
	mixed := c.mix(reduced)
	return int(mixed%int64(c.groups)) + 1, nil
}

func (c *Corrected) mix(value int64) int64 {
	lcg := (lcgA*value + lcgC) % lcgM
	rotated := int64(bits.RotateLeft32(uint32(lcg), rotateBits))
	entropy := c.now() % int64(math.MaxInt32)
	return abs64(rotated ^ entropy)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
