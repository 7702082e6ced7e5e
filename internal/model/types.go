// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// RunConfig defines the parameters of one comparison run.
type RunConfig struct {
	Groups          int
	Iterations      int
	SamplesPerTrial int
	Seed            int64 // 0 means seed from the clock
}

// AnalysisResult aggregates the evaluation of a single strategy.
type AnalysisResult struct {
	Strategy          string
	TrialDeviations   []float64
	AverageUniformity float64
	ResultStability   float64
	ChiSquare         float64
	Uniform           bool
	Duration          time.Duration
}

// CombinedScore is the ranking key. Lower is better.
func (r AnalysisResult) CombinedScore() float64 {
	return r.AverageUniformity + r.ResultStability
}

// Grade buckets the combined score into a qualitative label.
func (r AnalysisResult) Grade() string {
	score := r.CombinedScore()
	switch {
	case score <= 2.0:
		return "excellent"
	case score <= 3.0:
		return "good"
	case score <= 4.0:
		return "fair"
	default:
		return "needs improvement"
	}
}

// ComparisonResult holds the strategy results of one run plus a ranked view.
// Results preserves the evaluation order; Ranked is a sorted copy.
type ComparisonResult struct {
	RunAt      time.Time
	Iterations int
	Results    []AnalysisResult
	Ranked     []AnalysisResult
}

// Winner returns the best-ranked result, if any.
func (c ComparisonResult) Winner() (AnalysisResult, bool) {
	if len(c.Ranked) == 0 {
		return AnalysisResult{}, false
	}
	return c.Ranked[0], true
}

// ByName finds a result by strategy name.
func (c ComparisonResult) ByName(name string) (AnalysisResult, bool) {
	for _, r := range c.Results {
		if r.Strategy == name {
			return r, true
		}
	}
	return AnalysisResult{}, false
}

// GapToWinner reports how far a result trails the winner, as an absolute
// combined-score difference and as a percentage of the winner's score.
func (c ComparisonResult) GapToWinner(r AnalysisResult) (abs, pct float64) {
	winner, ok := c.Winner()
	if !ok {
		return 0, 0
	}
	abs = r.CombinedScore() - winner.CombinedScore()
	if winner.CombinedScore() != 0 {
		pct = abs / winner.CombinedScore() * 100
	}
	return abs, pct
}

// Summary returns a one-line description of the run.
func (c ComparisonResult) Summary() string {
	winner, ok := c.Winner()
	if !ok {
		return "no strategies compared"
	}
	return fmt.Sprintf("%d strategies compared at %s; winner: %s",
		len(c.Results), c.RunAt.Format("2006-01-02 15:04"), winner.Strategy)
}

// RunSummary identifies a stored comparison run for listing.
type RunSummary struct {
	RunID           int64
	RunAt           time.Time
	Groups          int
	Iterations      int
	SamplesPerTrial int
	Winner          string
}

// StoredRun is a fully loaded comparison run.
type StoredRun struct {
	RunID  int64
	Config RunConfig
	Result ComparisonResult
}
