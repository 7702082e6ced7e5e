// Package analysis drives trial batches over sampling strategies and derives
// uniformity statistics from the observed frequency distributions.
package analysis

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/model"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/strategy"
)

const (
	// DefaultIterations is the trial count used when none is configured.
	DefaultIterations = 5
	// DefaultSamplesPerTrial is the draw count per trial.
	DefaultSamplesPerTrial = 1000

	significanceLevel = 0.05
)

// Progress reports evaluation state. Trial is 1-based; Trial 0 marks the
// goodness-of-fit batch that follows the trials.
type Progress struct {
	Strategy string
	Trial    int
	Total    int
}

// Observer receives progress callbacks, invoked synchronously between
// batches. The evaluator itself never writes output.
type Observer func(Progress)

// Evaluator runs repeated trials of a single strategy and computes the
// derived statistics.
type Evaluator struct {
	groups   int
	samples  int
	observer Observer
}

// NewEvaluator validates the batch geometry and returns an Evaluator.
func NewEvaluator(groups, samplesPerTrial int) (*Evaluator, error) {
	if groups < 2 {
		return nil, fmt.Errorf("population must have at least 2 groups, got %d", groups)
	}
	if samplesPerTrial < 1 {
		return nil, fmt.Errorf("samples per trial must be positive, got %d", samplesPerTrial)
	}
	return &Evaluator{groups: groups, samples: samplesPerTrial}, nil
}

// SetObserver registers a progress callback; nil disables it.
func (e *Evaluator) SetObserver(fn Observer) { e.observer = fn }

// Evaluate runs iterations trials of samplesPerTrial draws each, then one
// independent batch of twice that size for the chi-square statistic. A draw
// error aborts the evaluation; statistical noise is absorbed by the batch
// design, not by retries.
func (e *Evaluator) Evaluate(s strategy.Strategy, iterations int) (model.AnalysisResult, error) {
	if iterations < 1 {
		return model.AnalysisResult{}, fmt.Errorf("iterations must be positive, got %d", iterations)
	}

	start := time.Now()
	deviations := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		e.notify(Progress{Strategy: s.Name(), Trial: i + 1, Total: iterations})
		freq, err := e.countFrequencies(s, e.samples)
		if err != nil {
			return model.AnalysisResult{}, err
		}
		deviations[i] = deviationFromUniform(freq, e.samples, e.groups)
	}

	e.notify(Progress{Strategy: s.Name(), Trial: 0, Total: iterations})
	chiFreq, err := e.countFrequencies(s, 2*e.samples)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	chi := ChiSquareStatistic(chiFreq, 2*e.samples, e.groups)

	return model.AnalysisResult{
		Strategy:          s.Name(),
		TrialDeviations:   deviations,
		AverageUniformity: stat.Mean(deviations, nil),
		ResultStability:   popStdDev(deviations),
		ChiSquare:         chi,
		Uniform:           chi <= CriticalValue(e.groups),
		Duration:          time.Since(start),
	}, nil
}

func (e *Evaluator) notify(p Progress) {
	if e.observer != nil {
		e.observer(p)
	}
}

// countFrequencies draws from the strategy and tallies group occurrences.
// The table is 1-based to match group numbering.
func (e *Evaluator) countFrequencies(s strategy.Strategy, draws int) ([]int, error) {
	freq := make([]int, e.groups+1)
	for i := 0; i < draws; i++ {
		sample, err := s.Sample(1)
		if err != nil {
			return nil, fmt.Errorf("draw %d failed: %w", i+1, err)
		}
		freq[sample]++
	}
	return freq, nil
}

// deviationFromUniform is the population standard deviation of the observed
// counts around the expected uniform count.
func deviationFromUniform(freq []int, total, groups int) float64 {
	expected := float64(total) / float64(groups)
	var sum float64
	for g := 1; g <= groups; g++ {
		diff := float64(freq[g]) - expected
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(groups))
}

// popStdDev is the population standard deviation of the values themselves.
func popStdDev(values []float64) float64 {
	mean := stat.Mean(values, nil)
	var sum float64
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}

// ChiSquareStatistic computes the goodness-of-fit statistic against the
// uniform distribution over a 1-based frequency table.
func ChiSquareStatistic(freq []int, total, groups int) float64 {
	expected := float64(total) / float64(groups)
	var chi float64
	for g := 1; g <= groups; g++ {
		diff := float64(freq[g]) - expected
		chi += diff * diff / expected
	}
	return chi
}

// CriticalValue returns the chi-square critical value at the 0.05
// significance level for groups-1 degrees of freedom.
func CriticalValue(groups int) float64 {
	dist := distuv.ChiSquared{K: float64(groups - 1)}
	return dist.Quantile(1 - significanceLevel)
}
