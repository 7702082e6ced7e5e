package strategy

import "math/rand"

// Shuffle draws by running an unbiased Fisher-Yates shuffle over the full
// population and taking the element that lands first. Every permutation is
// equally likely, so the marginal distribution of the first element is
// perfectly uniform as long as the source is unbiased.
//
// The population list is rebuilt on every call. That costs O(N) time and
// memory per sample, which is deliberate: the point is measuring bias, not
// throughput.
type Shuffle struct {
	groups int
	rnd    *rand.Rand
}

// NewShuffle returns a clock-seeded shuffle strategy.
func NewShuffle(groups int) (*Shuffle, error) {
	return NewShuffleSeeded(groups, clockSeed())
}

// NewShuffleSeeded returns a shuffle strategy with a fixed seed.
func NewShuffleSeeded(groups int, seed int64) (*Shuffle, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}
	return &Shuffle{groups: groups, rnd: newSource(seed)}, nil
}

// Name implements Strategy.
func (s *Shuffle) Name() string { return "fisher-yates shuffle" }

// Description implements Strategy.
func (s *Shuffle) Description() string {
	return "Full Fisher-Yates shuffle of the population list, returning the " +
		"first element. Mathematically unbiased: all permutations are equally " +
		"probable given an unbiased source."
}

// TimeComplexity implements Strategy.
func (s *Shuffle) TimeComplexity() string { return "O(n)" }

// Secure implements Strategy.
func (s *Shuffle) Secure() bool { return false }

// Reseed resets the strategy's random source.
func (s *Shuffle) Reseed(seed int64) { s.rnd.Seed(seed) }

// Sample implements Strategy.
func (s *Shuffle) Sample(groupStart int) (int, error) {
	if err := checkGroupStart(groupStart, s.groups); err != nil {
		return 0, err
	}
	list := make([]int, s.groups)
	for i := range list {
		list[i] = i + 1
	}
	for i := len(list) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		list[i], list[j] = list[j], list[i]
	}
	return list[0], nil
}
