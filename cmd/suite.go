package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"voiceq/internal/cases"
	"voiceq/internal/logging"
	"voiceq/internal/report"
	"voiceq/internal/runner"
	"voiceq/internal/storage"
)

var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "Run the command test suite and score every reply",
	Long: `Sends each test case to the service, compares the returned action and
direction with the expectation and writes test_results_<timestamp>/ with
test_results.csv, analysis.json and visualization_data.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		set, err := caseSet()
		if err != nil {
			return err
		}
		if len(set.Cases) == 0 {
			return fmt.Errorf("no test cases to run")
		}

		ctx, stop := signalContext()
		defer stop()

		fmt.Printf("Running %d test cases against %s (parallel=%t)\n", len(set.Cases), cfg.URL, cfg.Parallel)
		s := runner.NewSuite(cfg)
		results, err := s.RunSuite(ctx, set.Cases, cfg.Parallel, cfg.MaxWorkers)
		if err != nil && len(results) == 0 {
			return fmt.Errorf("suite against %s: %w", cfg.URL, err)
		}
		if err != nil {
			logging.Logger.Warn("suite stopped early", "completed", len(results), "error", err)
		}

		dir, err := report.OutputDir(viper.GetString("out"), time.Now())
		if err != nil {
			return err
		}
		analysis, err := report.SuiteFiles(dir, results)
		if err != nil {
			return fmt.Errorf("write suite results: %w", err)
		}

		report.PrintAnalysis(os.Stdout, analysis)
		fmt.Printf("\nResults saved to %s/\n", dir)

		recordHistory(storage.SuiteItem(cfg.URL, analysis, time.Now()))
		return nil
	},
}

func init() {
	def := runner.DefaultConfig()
	f := suiteCmd.Flags()
	f.Bool("parallel", false, "Run cases concurrently, one connection per worker")
	f.IntP("workers", "w", def.MaxWorkers, "Maximum parallel workers")
	f.Duration("inter-test-delay", def.InterTestDelay, "Pause between sequential cases")
	f.StringP("out", "o", ".", "Directory in which the timestamped results directory is created")
}

// caseSet returns the --cases file or the built-in tables.
func caseSet() (cases.Set, error) {
	path := viper.GetString("cases")
	if path == "" {
		return cases.Builtin(), nil
	}
	set, err := cases.Load(path)
	if err != nil {
		return cases.Set{}, fmt.Errorf("load cases: %w", err)
	}
	logging.Logger.Info("loaded cases", "path", path, "cases", len(set.Cases), "pool", len(set.Pool))
	return set, nil
}
