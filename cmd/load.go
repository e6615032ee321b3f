package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"voiceq/internal/cli"
	"voiceq/internal/logging"
	"voiceq/internal/metrics"
	"voiceq/internal/report"
	"voiceq/internal/runner"
	"voiceq/internal/storage"
	"voiceq/internal/tui"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Simulate concurrent clients and measure latency and throughput",
	Long: `Runs one load test per entry of --clients. Every client opens its own
connection, waits index*stagger, then sends its commands one at a time,
pausing think-time after each reply. Summaries of all runs are written to
load_test_details.json in --out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		set, err := caseSet()
		if err != nil {
			return err
		}
		sweep := viper.GetIntSlice("clients")
		if len(sweep) == 0 {
			return errors.New("--clients needs at least one client count")
		}

		ctx, stop := signalContext()
		defer stop()

		r := runner.NewRunner(cfg, make(runner.StatsUpdateChan, 100))
		if addr := viper.GetString("metrics-addr"); addr != "" {
			collector := metrics.NewCollector()
			r.Observer = collector
			shutdown := serveMetrics(addr, collector)
			defer shutdown()
		}

		outDir := viper.GetString("out")
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}

		var sums []runner.LoadTestSummary
		for _, n := range sweep {
			if ctx.Err() != nil {
				break
			}

			var sum runner.LoadTestSummary
			if viper.GetBool("tui") {
				sum, err = tui.Run(ctx, r, n, cfg.CommandsPerClient, set.Pool)
			} else {
				sum, err = cli.Monitor(ctx, os.Stdout, r, n, cfg.CommandsPerClient, set.Pool)
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("load test with %d clients: %w", n, err)
			}
			sums = append(sums, sum)

			if err := writeRunFiles(outDir, cfg.OutPrefix, n, r.Snapshot()); err != nil {
				logging.Logger.Warn("could not write run files", "clients", n, "error", err)
			}
			recordHistory(storage.LoadItem(cfg.URL, sum, time.Now()))
		}

		cli.PrintSweep(os.Stdout, sums)

		details := filepath.Join(outDir, "load_test_details.json")
		if err := report.WriteJSON(details, sums); err != nil {
			return fmt.Errorf("write %s: %w", details, err)
		}
		fmt.Printf("\nLoad test details saved to %s\n", details)
		return nil
	},
}

func init() {
	def := runner.DefaultConfig()
	f := loadCmd.Flags()
	f.IntSliceP("clients", "c", []int{1, 2, 5}, "Client counts to run, one load test each")
	f.IntP("commands-per-client", "n", def.CommandsPerClient, "Commands each client sends")
	f.Duration("stagger", def.Stagger, "Start offset between consecutive clients")
	f.Duration("think-time", def.ThinkTime, "Pause after each reply")
	f.Int64("seed", 0, "Random seed for command draws (0 = time based)")
	f.StringP("out", "o", ".", "Directory for load_test_details.json and per-run files")
	f.String("out-prefix", "", "When set, write <prefix>_<n>c.csv and <prefix>_<n>c_timeline.json per run")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	f.Bool("tui", false, "Show the live terminal view")
}

func writeRunFiles(dir, prefix string, clients int, results []runner.CommandResult) error {
	if prefix == "" {
		return nil
	}
	base := filepath.Join(dir, fmt.Sprintf("%s_%dc", prefix, clients))
	if err := report.ExportCSV(results, base+".csv"); err != nil {
		return err
	}
	if err := report.WriteJSON(base+"_timeline.json", report.Timeline(results)); err != nil {
		return err
	}
	logging.Logger.Info("run files written", "csv", base+".csv", "timeline", base+"_timeline.json")
	return nil
}

func serveMetrics(addr string, c *metrics.Collector) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logging.Logger.Info("serving metrics", "url", fmt.Sprintf("http://%s/metrics", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
