package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/model"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/strategy"
)

// Comparator evaluates several strategies under identical conditions and
// ranks them by combined score.
type Comparator struct {
	eval *Evaluator
}

// NewComparator wraps an Evaluator.
func NewComparator(eval *Evaluator) *Comparator {
	return &Comparator{eval: eval}
}

// CompareAll evaluates every strategy independently and returns the results
// in evaluation order together with a ranked copy. The sort is stable, so
// equal scores keep their input order.
func (c *Comparator) CompareAll(strategies []strategy.Strategy, iterations int) (model.ComparisonResult, error) {
	results := make([]model.AnalysisResult, 0, len(strategies))
	for _, s := range strategies {
		res, err := c.eval.Evaluate(s, iterations)
		if err != nil {
			return model.ComparisonResult{}, fmt.Errorf("evaluate %s: %w", s.Name(), err)
		}
		results = append(results, res)
	}

	ranked := make([]model.AnalysisResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedScore() < ranked[j].CombinedScore()
	})

	return model.ComparisonResult{
		RunAt:      time.Now(),
		Iterations: iterations,
		Results:    results,
		Ranked:     ranked,
	}, nil
}
