package commands

import (
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/poolserve/internal/bench"
)

func newBenchCmd() *cobra.Command {
	var (
		cfg        = bench.DefaultConfig()
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure pool throughput and latency across pool sizes",
		Example: `  poolserve bench --sizes 1,2,4,8 --jobs 1000 --work sleep
  poolserve bench --work cpu --iterations 50000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var bar *progressbar.ProgressBar
			if !noProgress {
				bar = progressbar.NewOptions(len(cfg.Sizes),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("Benchmarking pool sizes"),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}

			results, err := bench.Run(ctx, cfg, func(r bench.Result) {
				if bar != nil {
					_ = bar.Add(1)
				}
			})
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			return bench.Render(cmd.OutOrStdout(), cfg, results)
		},
	}

	f := cmd.Flags()
	f.IntSliceVar(&cfg.Sizes, "sizes", cfg.Sizes, "pool sizes to benchmark")
	f.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "jobs per pool size")
	f.StringVar(&cfg.Work, "work", cfg.Work, "job workload (sleep, cpu)")
	f.IntVar(&cfg.Submitters, "submitters", cfg.Submitters, "concurrent goroutines submitting jobs")
	f.DurationVar(&cfg.SleepFor, "sleep", cfg.SleepFor, "duration of each sleep job")
	f.IntVar(&cfg.CPUIterations, "iterations", cfg.CPUIterations, "inner loop count of each cpu job")
	f.BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}
