package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/sysdiag/core"
)

func runCmd(opts *globalOptions) *cobra.Command {
	var (
		duration time.Duration
		interval time.Duration
		format   string
		output   string
		save     bool
	)
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Collect for a while, then print a diagnosis",
		Example: `sysdiag run --duration 1m --interval 1s --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var store core.ReportStore
			if save {
				store = core.NewReportStore(s.config.Storage)
			}
			app, cleanup, err := s.newApp(ctx, store)
			if err != nil {
				return err
			}
			defer cleanup()

			errOut := cmd.ErrOrStderr()
			fmt.Fprintf(errOut, "🔄 Sampling for %v every %v (Ctrl+C to analyze early)\n", duration, interval)
			samples, err := app.CollectFor(ctx, duration, interval, func(n int, sample core.Sample) {
				fmt.Fprintf(errOut, "\r📈 %d samples  cpu %5.1f%%  mem %5.1f%% (%s)", n, sample.CPUPercent, sample.MemoryPercent, formatBytes(sample.MemoryUsedBytes))
			})
			fmt.Fprintln(errOut)
			if err != nil {
				return err
			}
			if output != "" {
				if err := writeSamples(output, samples); err != nil {
					return err
				}
			}

			report, err := app.Analyzer.Analyze(samples)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			id := app.Archive(report)
			return writeReport(cmd.OutOrStdout(), report, format, id)
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 2*time.Minute, "how long to collect")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "time between samples")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the samples to this file")
	cmd.Flags().BoolVar(&save, "save", false, "store the report in the archive")
	return cmd
}
