package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RenderComparison prints the ranked summary of a comparison run.
func RenderComparison(w io.Writer, result model.ComparisonResult) error {
	if len(result.Ranked) == 0 {
		_, err := fmt.Fprintln(w, "No strategies compared.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Comparison run %s (%d iterations)\n\n",
		result.RunAt.Format("2006-01-02 15:04:05"), result.Iterations); err != nil {
		return err
	}

	headers := []string{"Rank", "Strategy", "Avg Uniformity", "Stability", "Combined", "Chi-Square", "Uniform", "Grade"}
	rows := make([][]string, 0, len(result.Ranked))
	for i, r := range result.Ranked {
		uniform := "fail"
		if r.Uniform {
			uniform = "pass"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			r.Strategy,
			fmt.Sprintf("%.4f", r.AverageUniformity),
			fmt.Sprintf("%.4f", r.ResultStability),
			fmt.Sprintf("%.4f", r.CombinedScore()),
			fmt.Sprintf("%.4f", r.ChiSquare),
			uniform,
			r.Grade(),
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	winner, _ := result.Winner()
	if _, err := fmt.Fprintf(w, "\nRecommended strategy: %s\n", winner.Strategy); err != nil {
		return err
	}
	for _, r := range result.Ranked[1:] {
		abs, pct := result.GapToWinner(r)
		if _, err := fmt.Fprintf(w, "  %s trails by %.4f (%.1f%%)\n", r.Strategy, abs, pct); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderDetail prints the full breakdown of one strategy's evaluation.
func RenderDetail(w io.Writer, result model.AnalysisResult) error {
	if _, err := fmt.Fprintf(w, "%s\n", result.Strategy); err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("Avg uniformity:   %.4f", result.AverageUniformity),
		fmt.Sprintf("Result stability: %.4f", result.ResultStability),
		fmt.Sprintf("Combined score:   %.4f (%s)", result.CombinedScore(), result.Grade()),
		fmt.Sprintf("Chi-square:       %.4f", result.ChiSquare),
		fmt.Sprintf("Uniformity test:  %s", passFail(result.Uniform)),
		fmt.Sprintf("Duration:         %.2fs", result.Duration.Seconds()),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(result.TrialDeviations) > 0 {
		if _, err := fmt.Fprintf(w, "Trial deviations: %s\n", Sparkline(result.TrialDeviations)); err != nil {
			return err
		}
		for i, dev := range result.TrialDeviations {
			if _, err := fmt.Fprintf(w, "  trial %d: %.4f\n", i+1, dev); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderRunList prints stored runs as a table, newest first.
func RenderRunList(w io.Writer, runs []model.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No stored runs.")
		return err
	}
	headers := []string{"Run", "Date", "Groups", "Iterations", "Samples", "Winner"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", run.RunID),
			run.RunAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", run.Groups),
			fmt.Sprintf("%d", run.Iterations),
			fmt.Sprintf("%d", run.SamplesPerTrial),
			run.Winner,
		})
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}
