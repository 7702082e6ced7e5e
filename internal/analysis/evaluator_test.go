package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/strategy"
)

// cycling walks the population in order, which gives perfectly even counts
// whenever the draw total is a multiple of the group count.
type cycling struct {
	groups int
	next   int
}

func (c *cycling) Name() string { return "cycling" }

func (c *cycling) Description() string { return "sequential walk" }

func (c *cycling) TimeComplexity() string { return "O(1)" }

func (c *cycling) Secure() bool { return false }

func (c *cycling) Sample(groupStart int) (int, error) {
	if groupStart < 1 || groupStart > c.groups {
		return 0, strategy.ErrGroupOutOfRange
	}
	c.next++
	if c.next > c.groups {
		c.next = 1
	}
	return c.next, nil
}

// failing errors on the draw at index failAt.
type failing struct {
	calls  int
	failAt int
}

func (f *failing) Name() string { return "failing" }

func (f *failing) Description() string { return "always fails" }

func (f *failing) TimeComplexity() string { return "O(1)" }

func (f *failing) Secure() bool { return false }

var errDraw = errors.New("draw broke")

func (f *failing) Sample(int) (int, error) {
	f.calls++
	if f.calls > f.failAt {
		return 0, errDraw
	}
	return 1, nil
}

func TestNewEvaluatorValidates(t *testing.T) {
	if _, err := NewEvaluator(1, 100); err == nil {
		t.Fatalf("expected error for a single-group population")
	}
	if _, err := NewEvaluator(33, 0); err == nil {
		t.Fatalf("expected error for zero samples per trial")
	}
	if _, err := NewEvaluator(33, 100); err != nil {
		t.Fatalf("NewEvaluator rejected a valid configuration: %v", err)
	}
}

func TestEvaluateRejectsNonPositiveIterations(t *testing.T) {
	eval, err := NewEvaluator(33, 100)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	if _, err := eval.Evaluate(&cycling{groups: 33}, 0); err == nil {
		t.Fatalf("expected error for zero iterations")
	}
}

func TestEvaluateProducesOneDeviationPerTrial(t *testing.T) {
	eval, err := NewEvaluator(33, 100)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	result, err := eval.Evaluate(&cycling{groups: 33}, 7)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(result.TrialDeviations) != 7 {
		t.Fatalf("expected 7 trial deviations, got %d", len(result.TrialDeviations))
	}
	for i, dev := range result.TrialDeviations {
		if dev < 0 || math.IsNaN(dev) {
			t.Fatalf("trial %d deviation invalid: %v", i, dev)
		}
	}
	if result.Strategy != "cycling" {
		t.Fatalf("expected strategy name in result, got %q", result.Strategy)
	}
	if result.Duration < 0 {
		t.Fatalf("negative duration: %v", result.Duration)
	}
}

func TestEvaluateCyclingDrawIsPerfectlyEven(t *testing.T) {
	// 990 draws over 33 groups put exactly 30 in each; the chi-square batch
	// of 1980 puts exactly 60 in each.
	eval, err := NewEvaluator(33, 990)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	result, err := eval.Evaluate(&cycling{groups: 33}, 5)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	for i, dev := range result.TrialDeviations {
		if dev != 0 {
			t.Fatalf("trial %d deviation = %v, want 0 for an even walk", i, dev)
		}
	}
	if result.AverageUniformity != 0 {
		t.Fatalf("average uniformity = %v, want 0", result.AverageUniformity)
	}
	if result.ResultStability != 0 {
		t.Fatalf("result stability = %v, want 0", result.ResultStability)
	}
	if result.ChiSquare != 0 {
		t.Fatalf("chi-square = %v, want 0 for even counts", result.ChiSquare)
	}
	if !result.Uniform {
		t.Fatalf("even counts failed the uniformity test")
	}
}

func TestEvaluateSeededUniformSource(t *testing.T) {
	s, err := strategy.NewUniformSeeded(33, 1)
	if err != nil {
		t.Fatalf("NewUniformSeeded failed: %v", err)
	}
	eval, err := NewEvaluator(33, 1000)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	result, err := eval.Evaluate(s, 5)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.AverageUniformity <= 0 {
		t.Fatalf("average uniformity = %v, want > 0 for a random source", result.AverageUniformity)
	}
	if math.IsNaN(result.ChiSquare) || result.ChiSquare < 0 {
		t.Fatalf("chi-square invalid: %v", result.ChiSquare)
	}
	// df=32 gives mean 32 and stddev 8; anything near 96 would be 8 sigma out.
	if result.ChiSquare > 96 {
		t.Fatalf("chi-square = %v, implausibly large for a uniform source", result.ChiSquare)
	}
}

func TestEvaluateTwoGroupsTwoSamples(t *testing.T) {
	// Smallest accepted batch geometry: the expected count per group drops
	// to 1 and the fit batch to 4 draws, but every statistic stays finite.
	s, err := strategy.NewUniformSeeded(2, 3)
	if err != nil {
		t.Fatalf("NewUniformSeeded failed: %v", err)
	}
	eval, err := NewEvaluator(2, 2)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	result, err := eval.Evaluate(s, 3)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if math.IsNaN(result.ChiSquare) || math.IsInf(result.ChiSquare, 0) || result.ChiSquare < 0 {
		t.Fatalf("chi-square = %v, want finite and non-negative", result.ChiSquare)
	}
	if len(result.TrialDeviations) != 3 {
		t.Fatalf("expected 3 trial deviations, got %d", len(result.TrialDeviations))
	}
	for i, dev := range result.TrialDeviations {
		if math.IsNaN(dev) || math.IsInf(dev, 0) || dev < 0 {
			t.Fatalf("trial %d deviation = %v, want finite and non-negative", i, dev)
		}
	}
	if math.IsNaN(result.AverageUniformity) || math.IsNaN(result.ResultStability) {
		t.Fatalf("aggregates invalid: %v, %v", result.AverageUniformity, result.ResultStability)
	}
}

func TestChiSquareStatisticAveragesNearDegreesOfFreedom(t *testing.T) {
	const (
		groups  = 33
		draws   = 2000
		batches = 200
	)
	s, err := strategy.NewUniformSeeded(groups, 7)
	if err != nil {
		t.Fatalf("NewUniformSeeded failed: %v", err)
	}
	var sum float64
	for b := 0; b < batches; b++ {
		freq := make([]int, groups+1)
		for i := 0; i < draws; i++ {
			got, err := s.Sample(1)
			if err != nil {
				t.Fatalf("draw failed: %v", err)
			}
			freq[got]++
		}
		sum += ChiSquareStatistic(freq, draws, groups)
	}
	mean := sum / batches
	// Expected value of the statistic is df = 32.
	if mean < 28 || mean > 36 {
		t.Fatalf("mean chi-square over %d batches = %v, want near 32", batches, mean)
	}
}

func TestCriticalValue(t *testing.T) {
	// Chi-square upper 5% quantile for 32 degrees of freedom.
	got := CriticalValue(33)
	if math.Abs(got-46.194) > 0.05 {
		t.Fatalf("CriticalValue(33) = %v, want about 46.194", got)
	}
	// The critical value grows with the population size.
	if CriticalValue(10) >= CriticalValue(33) {
		t.Fatalf("critical value did not grow with degrees of freedom")
	}
}

func TestEvaluateNotifiesObserver(t *testing.T) {
	eval, err := NewEvaluator(33, 100)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	var seen []Progress
	eval.SetObserver(func(p Progress) { seen = append(seen, p) })
	if _, err := eval.Evaluate(&cycling{groups: 33}, 4); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 progress callbacks (4 trials + fit batch), got %d", len(seen))
	}
	for i := 0; i < 4; i++ {
		if seen[i].Trial != i+1 || seen[i].Total != 4 {
			t.Fatalf("callback %d = %+v, want trial %d of 4", i, seen[i], i+1)
		}
	}
	if seen[4].Trial != 0 {
		t.Fatalf("final callback = %+v, want the fit batch marker", seen[4])
	}
}

func TestEvaluatePropagatesDrawErrors(t *testing.T) {
	eval, err := NewEvaluator(33, 100)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	if _, err := eval.Evaluate(&failing{failAt: 10}, 3); !errors.Is(err, errDraw) {
		t.Fatalf("Evaluate = %v, want wrapped draw error", err)
	}
}
