// Package main provides the CLI entrypoint for qsample.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/analysis"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/config"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/model"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/report"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/resultsui"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/store"
	"github.com/fromsuu/plant-quarantine-sampling-analysis/internal/strategy"
)

const defaultHistoryLimit = 20

var (
	runGroups  int
	runIters   int
	runSamples int
	runSeed    int64
	runNoSave  bool

	historyLast int

	viewRunID int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qsample",
		Short:         "Compare random sampling strategies for group selection",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runCompareCmd,
	}

	rootCmd.Flags().IntVar(&runGroups, "groups", strategy.DefaultGroups, "number of groups in the population")
	rootCmd.Flags().IntVar(&runIters, "iterations", analysis.DefaultIterations, "trials per strategy")
	rootCmd.Flags().IntVar(&runSamples, "samples", analysis.DefaultSamplesPerTrial, "draws per trial")
	rootCmd.Flags().Int64Var(&runSeed, "seed", 0, "base seed for reproducible runs (0 seeds from the clock)")
	rootCmd.Flags().BoolVar(&runNoSave, "no-save", false, "skip storing the run in history")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newViewCmd())

	return rootCmd
}

func runCompareCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "groups", &runGroups, fileCfg.Analysis.Groups)
	applyIntConfig(cmd, "iterations", &runIters, fileCfg.Analysis.Iterations)
	applyIntConfig(cmd, "samples", &runSamples, fileCfg.Analysis.SamplesPerTrial)
	applyInt64Config(cmd, "seed", &runSeed, fileCfg.Analysis.Seed)

	cfg := model.RunConfig{
		Groups:          runGroups,
		Iterations:      runIters,
		SamplesPerTrial: runSamples,
		Seed:            runSeed,
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	var strategies []strategy.Strategy
	if cfg.Seed != 0 {
		strategies, err = strategy.DefaultsSeeded(cfg.Groups, cfg.Seed)
	} else {
		strategies, err = strategy.Defaults(cfg.Groups)
	}
	if err != nil {
		return fmt.Errorf("failed to build strategies: %w", err)
	}

	eval, err := analysis.NewEvaluator(cfg.Groups, cfg.SamplesPerTrial)
	if err != nil {
		return err
	}
	eval.SetObserver(func(p analysis.Progress) {
		if p.Trial == 0 {
			logErrf("%s: goodness-of-fit batch (%d draws)\n", p.Strategy, 2*cfg.SamplesPerTrial)
			return
		}
		logErrf("%s: trial %d/%d\n", p.Strategy, p.Trial, p.Total)
	})

	comparator := analysis.NewComparator(eval)
	result, err := comparator.CompareAll(strategies, cfg.Iterations)
	if err != nil {
		return err
	}

	if err := report.RenderComparison(os.Stdout, result); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if runNoSave {
		return nil
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertRun(context.Background(), cfg, result)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	logErrf("Stored as run %d. View with: qsample view --run %d\n", id, id)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored comparison runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLimit, "limit to last N runs (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runs, err := st.ListRuns(context.Background(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return report.RenderRunList(cmd.OutOrStdout(), runs)
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse a stored run interactively",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	cmd.Flags().Int64Var(&viewRunID, "run", 0, "run id to view (default: most recent)")
	return cmd
}

func runViewCmd(_ *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	run, err := st.GetRun(context.Background(), viewRunID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	browser := resultsui.NewModel(run)
	program := tea.NewProgram(browser, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run results TUI: %w", err)
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# qsample configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# groups = %d              # Number of groups in the population
# iterations = %d           # Trials per strategy (%d-%d)
# samples-per-trial = %d  # Draws per trial
# seed = 0                  # Base seed (0 seeds from the clock)
`,
		strategy.DefaultGroups,
		analysis.DefaultIterations,
		config.MinIterations,
		config.MaxIterations,
		analysis.DefaultSamplesPerTrial,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
