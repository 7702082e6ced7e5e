package strategy

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestDefaultsReturnsThreeDistinctStrategies(t *testing.T) {
	strategies, err := Defaults(DefaultGroups)
	if err != nil {
		t.Fatalf("Defaults failed: %v", err)
	}
	if len(strategies) != 3 {
		t.Fatalf("expected 3 strategies, got %d", len(strategies))
	}
	seen := map[string]bool{}
	for _, s := range strategies {
		if s.Name() == "" {
			t.Fatalf("strategy has empty name")
		}
		if seen[s.Name()] {
			t.Fatalf("duplicate strategy name %q", s.Name())
		}
		seen[s.Name()] = true
		if s.Description() == "" {
			t.Fatalf("%s: empty description", s.Name())
		}
		if s.TimeComplexity() == "" {
			t.Fatalf("%s: empty time complexity", s.Name())
		}
		if s.Secure() {
			t.Fatalf("%s: reports a secure source, but uses math/rand", s.Name())
		}
	}
}

func TestSampleStaysWithinPopulation(t *testing.T) {
	sizes := []int{2, DefaultGroups}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 4; i++ {
		sizes = append(sizes, 2+rnd.Intn(199))
	}
	for _, groups := range sizes {
		strategies, err := DefaultsSeeded(groups, 42)
		if err != nil {
			t.Fatalf("DefaultsSeeded(%d) failed: %v", groups, err)
		}
		for _, s := range strategies {
			for i := 0; i < 1000; i++ {
				got, err := s.Sample(1)
				if err != nil {
					t.Fatalf("%s: sample %d failed: %v", s.Name(), i, err)
				}
				if got < 1 || got > groups {
					t.Fatalf("%s: sample %d out of range: got %d, want 1..%d", s.Name(), i, got, groups)
				}
			}
		}
	}
}

func TestSampleRejectsGroupStartOutOfRange(t *testing.T) {
	strategies, err := DefaultsSeeded(DefaultGroups, 7)
	if err != nil {
		t.Fatalf("DefaultsSeeded failed: %v", err)
	}
	for _, s := range strategies {
		for _, groupStart := range []int{0, -1, DefaultGroups + 1} {
			if _, err := s.Sample(groupStart); !errors.Is(err, ErrGroupOutOfRange) {
				t.Fatalf("%s: Sample(%d) = %v, want ErrGroupOutOfRange", s.Name(), groupStart, err)
			}
		}
	}
}

func TestSampleAcceptsAnyGroupStartInRange(t *testing.T) {
	strategies, err := DefaultsSeeded(DefaultGroups, 7)
	if err != nil {
		t.Fatalf("DefaultsSeeded failed: %v", err)
	}
	for _, s := range strategies {
		for _, groupStart := range []int{1, DefaultGroups / 2, DefaultGroups} {
			if _, err := s.Sample(groupStart); err != nil {
				t.Fatalf("%s: Sample(%d) failed: %v", s.Name(), groupStart, err)
			}
		}
	}
}

func TestUniformSeededIsDeterministic(t *testing.T) {
	a, err := NewUniformSeeded(DefaultGroups, 123)
	if err != nil {
		t.Fatalf("NewUniformSeeded failed: %v", err)
	}
	b, err := NewUniformSeeded(DefaultGroups, 123)
	if err != nil {
		t.Fatalf("NewUniformSeeded failed: %v", err)
	}
	assertSameSequence(t, a, b, 100)
}

func TestShuffleSeededIsDeterministic(t *testing.T) {
	a, err := NewShuffleSeeded(DefaultGroups, 123)
	if err != nil {
		t.Fatalf("NewShuffleSeeded failed: %v", err)
	}
	b, err := NewShuffleSeeded(DefaultGroups, 123)
	if err != nil {
		t.Fatalf("NewShuffleSeeded failed: %v", err)
	}
	assertSameSequence(t, a, b, 100)
}

func TestCorrectedWithFixedClockIsDeterministic(t *testing.T) {
	clock := func() int64 { return 1_000_000 }
	a, err := NewCorrectedSeeded(DefaultGroups, 123)
	if err != nil {
		t.Fatalf("NewCorrectedSeeded failed: %v", err)
	}
	b, err := NewCorrectedSeeded(DefaultGroups, 123)
	if err != nil {
		t.Fatalf("NewCorrectedSeeded failed: %v", err)
	}
	assertSameSequence(t, a.WithClock(clock), b.WithClock(clock), 100)
}

func TestReseedRestartsSequence(t *testing.T) {
	s, err := NewUniformSeeded(DefaultGroups, 5)
	if err != nil {
		t.Fatalf("NewUniformSeeded failed: %v", err)
	}
	first := drawSequence(t, s, 50)
	s.Reseed(5)
	second := drawSequence(t, s, 50)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sequence diverged after reseed at draw %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestConstructorsRejectDegeneratePopulations(t *testing.T) {
	for _, groups := range []int{-1, 0, 1} {
		if _, err := NewUniformSeeded(groups, 1); err == nil {
			t.Fatalf("NewUniformSeeded(%d) accepted a degenerate population", groups)
		}
		if _, err := NewShuffleSeeded(groups, 1); err == nil {
			t.Fatalf("NewShuffleSeeded(%d) accepted a degenerate population", groups)
		}
		if _, err := NewCorrectedSeeded(groups, 1); err == nil {
			t.Fatalf("NewCorrectedSeeded(%d) accepted a degenerate population", groups)
		}
		if _, err := Defaults(groups); err == nil {
			t.Fatalf("Defaults(%d) accepted a degenerate population", groups)
		}
	}
}

func TestShuffleEventuallyCoversPopulation(t *testing.T) {
	const groups = 7
	s, err := NewShuffleSeeded(groups, 11)
	if err != nil {
		t.Fatalf("NewShuffleSeeded failed: %v", err)
	}
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		got, err := s.Sample(1)
		if err != nil {
			t.Fatalf("sample %d failed: %v", i, err)
		}
		seen[got] = true
	}
	for g := 1; g <= groups; g++ {
		if !seen[g] {
			t.Fatalf("group %d never drawn in 2000 samples", g)
		}
	}
}

func assertSameSequence(t *testing.T, a, b Strategy, draws int) {
	t.Helper()
	for i := 0; i < draws; i++ {
		got, err := a.Sample(1)
		if err != nil {
			t.Fatalf("first strategy draw %d failed: %v", i, err)
		}
		want, err := b.Sample(1)
		if err != nil {
			t.Fatalf("second strategy draw %d failed: %v", i, err)
		}
		if got != want {
			t.Fatalf("sequences diverged at draw %d: %d vs %d", i, got, want)
		}
	}
}

func drawSequence(t *testing.T, s Strategy, draws int) []int {
	t.Helper()
	out := make([]int, draws)
	for i := range out {
		got, err := s.Sample(1)
		if err != nil {
			t.Fatalf("draw %d failed: %v", i, err)
		}
		out[i] = got
	}
	return out
}
